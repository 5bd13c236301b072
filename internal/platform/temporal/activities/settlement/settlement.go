package settlement

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	ordersapp "github.com/vendibd/vendi-server/internal/domains/orders/application"
	ordersports "github.com/vendibd/vendi-server/internal/domains/orders/ports"
	settlementworkflows "github.com/vendibd/vendi-server/internal/platform/temporal/workflows/settlement"
)

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	orders ordersports.Service
}

// NewActivities wires the orders service into the Temporal activities bundle.
func NewActivities(orders ordersports.Service) *Activities {
	return &Activities{orders: orders}
}

// SettleCashImage verifies the banknote and settles the order when it passes.
// Guard failures are marked non-retryable: replaying them cannot succeed and
// must not hammer the store.
func (a *Activities) SettleCashImage(ctx context.Context, input settlementworkflows.CashSettlementWorkflowInput) (*ordersports.CashImageResult, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.orders == nil {
		return nil, errors.New("settlement activity not initialized")
	}
	logger.Info("SettleCashImage activity started", "orderId", input.OrderID.String())
	result, err := a.orders.SubmitCashImage(ctx, input.OrderID, input.Image)
	if err != nil {
		logger.Error("SettleCashImage activity failed", "orderId", input.OrderID.String(), "error", err)
		if typeName, ok := guardErrorType(err); ok {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), typeName, err)
		}
		return nil, err
	}
	logger.Info("SettleCashImage activity completed", "orderId", input.OrderID.String(), "accepted", result.Accepted)
	return result, nil
}

// guardErrorType classifies deterministic guard failures. Anything else is a
// transient store or verifier fault and stays retryable.
func guardErrorType(err error) (string, bool) {
	switch {
	case errors.Is(err, ordersports.ErrNotFound):
		return settlementworkflows.ErrTypeOrderNotFound, true
	case errors.Is(err, ordersports.ErrNotPayable):
		return settlementworkflows.ErrTypeOrderNotSettleable, true
	case errors.Is(err, ordersapp.ErrNotCashOrder):
		return settlementworkflows.ErrTypeOrderNotCash, true
	case errors.Is(err, ordersapp.ErrAlreadySettled):
		return settlementworkflows.ErrTypeAlreadySettled, true
	case errors.Is(err, ordersapp.ErrInvalidInput):
		return settlementworkflows.ErrTypeInvalidSubmission, true
	}
	return "", false
}
