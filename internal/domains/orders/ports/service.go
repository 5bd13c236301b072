package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendibd/vendi-server/internal/domains/orders/domain"
)

// CreateOrderInput carries the fields accepted at order creation.
type CreateOrderInput struct {
	ProductID     string
	DeviceID      string
	PaymentMethod domain.PaymentMethod
	CustomerPhone string
}

// PaymentMatch reports which order a bKash confirmation settled.
type PaymentMatch struct {
	OrderID      uuid.UUID
	DispenseCode string
}

// CashImageResult reports the outcome of a banknote verification attempt.
// A rejected banknote is a normal outcome, not an error: the order stays retryable.
type CashImageResult struct {
	Accepted bool
	Message  string
}

// Service exposes the order lifecycle use cases to adapters.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// ConfirmExternalPayment matches a relayed bKash confirmation against the
	// single oldest pending order with an exactly equal price.
	ConfirmExternalPayment(ctx context.Context, amount decimal.Decimal, payerRef string) (*PaymentMatch, error)
	// SubmitCashImage runs the banknote through the verification oracle and, on a
	// genuine note of the exact denomination, settles the order and enqueues a vend.
	SubmitCashImage(ctx context.Context, orderID uuid.UUID, image []byte) (*CashImageResult, error)
	// Redeem exchanges a dispense code at a device for a vend command, exactly once.
	Redeem(ctx context.Context, dispenseCode, deviceID string) (*domain.Order, error)
}
