package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewOrder_Defaults(t *testing.T) {
	order, err := NewOrder("mango", "Mango Juice", decimal.RequireFromString("10.00"), "device-1", MethodCash, "")
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	require.NotEqual(t, order.ID.String(), "00000000-0000-0000-0000-000000000000")
	require.Len(t, order.DispenseCode, 6)
	require.Regexp(t, `^\d{6}$`, order.DispenseCode)
	require.False(t, order.CreatedAt.IsZero())
	require.Nil(t, order.PaidAt)
}

func TestNewOrder_Validation(t *testing.T) {
	price := decimal.RequireFromString("10.00")

	_, err := NewOrder("", "Mango Juice", price, "device-1", MethodCash, "")
	require.ErrorIs(t, err, ErrInvalidProductID)

	_, err = NewOrder("mango", "Mango Juice", price, "", MethodCash, "")
	require.ErrorIs(t, err, ErrInvalidDeviceID)

	_, err = NewOrder("mango", "Mango Juice", price, "device-1", PaymentMethod("paypal"), "")
	require.ErrorIs(t, err, ErrInvalidMethod)

	_, err = NewOrder("mango", "Mango Juice", decimal.Zero, "device-1", MethodCash, "")
	require.ErrorIs(t, err, ErrInvalidPrice)
}

func TestOrder_StatusHelpers(t *testing.T) {
	order, err := NewOrder("mango", "Mango Juice", decimal.RequireFromString("10.00"), "device-1", MethodCash, "")
	require.NoError(t, err)

	require.True(t, order.Active())
	require.False(t, order.Settled())
	require.True(t, order.AwaitingCash())

	order.Status = StatusCashCapturePending
	require.True(t, order.AwaitingCash())

	order.Status = StatusPaid
	require.True(t, order.Settled())
	require.False(t, order.AwaitingCash())

	order.Status = StatusRedeemed
	require.False(t, order.Active())
	require.True(t, order.Settled())
}

func TestOrder_AwaitingCash_BkashNever(t *testing.T) {
	order, err := NewOrder("mango", "Mango Juice", decimal.RequireFromString("10.00"), "device-1", MethodBkash, "01700000000")
	require.NoError(t, err)
	require.False(t, order.AwaitingCash())
}

func TestNewDispenseCode_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := NewDispenseCode()
		require.NoError(t, err)
		require.Regexp(t, `^\d{6}$`, code)
	}
}
