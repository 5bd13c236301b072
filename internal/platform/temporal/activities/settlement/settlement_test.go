package settlement

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	ordersapp "github.com/vendibd/vendi-server/internal/domains/orders/application"
	"github.com/vendibd/vendi-server/internal/domains/orders/domain"
	ordersports "github.com/vendibd/vendi-server/internal/domains/orders/ports"
	settlementworkflows "github.com/vendibd/vendi-server/internal/platform/temporal/workflows/settlement"
)

type stubOrderService struct {
	submitResult *ordersports.CashImageResult
	submitErr    error
	submitCalls  int
}

func (s *stubOrderService) CreateOrder(context.Context, ordersports.CreateOrderInput) (*domain.Order, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrderService) GetOrder(context.Context, uuid.UUID) (*domain.Order, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrderService) ConfirmExternalPayment(context.Context, decimal.Decimal, string) (*ordersports.PaymentMatch, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrderService) SubmitCashImage(context.Context, uuid.UUID, []byte) (*ordersports.CashImageResult, error) {
	s.submitCalls++
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return s.submitResult, nil
}

func (s *stubOrderService) Redeem(context.Context, string, string) (*domain.Order, error) {
	return nil, errors.New("not implemented")
}

func executeSettleCashImage(t *testing.T, stub *stubOrderService) error {
	t.Helper()
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()
	acts := NewActivities(stub)
	env.RegisterActivityWithOptions(acts.SettleCashImage, activity.RegisterOptions{
		Name: settlementworkflows.SettleCashImageActivityName,
	})

	val, err := env.ExecuteActivity(settlementworkflows.SettleCashImageActivityName, settlementworkflows.CashSettlementWorkflowInput{
		OrderID: uuid.New(),
		Image:   []byte("note"),
	})
	if err != nil {
		return err
	}
	var result ordersports.CashImageResult
	require.NoError(t, val.Get(&result))
	require.NotNil(t, stub.submitResult)
	assert.Equal(t, stub.submitResult.Accepted, result.Accepted)
	return nil
}

func TestSettleCashImage_ReturnsVerdict(t *testing.T) {
	stub := &stubOrderService{submitResult: &ordersports.CashImageResult{Accepted: true, Message: "payment confirmed"}}
	require.NoError(t, executeSettleCashImage(t, stub))
	assert.Equal(t, 1, stub.submitCalls)
}

func TestSettleCashImage_GuardFailuresAreNonRetryable(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantType string
	}{
		{"unknown order", ordersports.ErrNotFound, settlementworkflows.ErrTypeOrderNotFound},
		{"order left payable states", ordersports.ErrNotPayable, settlementworkflows.ErrTypeOrderNotSettleable},
		{"bkash order", ordersapp.ErrNotCashOrder, settlementworkflows.ErrTypeOrderNotCash},
		{"already settled", ordersapp.ErrAlreadySettled, settlementworkflows.ErrTypeAlreadySettled},
		{"missing image", ordersapp.ErrMissingImage, settlementworkflows.ErrTypeInvalidSubmission},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := executeSettleCashImage(t, &stubOrderService{submitErr: tc.err})
			require.Error(t, err)

			var appErr *temporal.ApplicationError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tc.wantType, appErr.Type())
			assert.True(t, appErr.NonRetryable())
		})
	}
}

func TestGuardErrorType_TransientFailuresStayRetryable(t *testing.T) {
	_, ok := guardErrorType(errors.New("store unavailable"))
	assert.False(t, ok)

	_, ok = guardErrorType(context.DeadlineExceeded)
	assert.False(t, ok)
}
