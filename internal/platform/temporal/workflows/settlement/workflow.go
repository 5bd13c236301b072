package settlement

import (
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	ordersports "github.com/vendibd/vendi-server/internal/domains/orders/ports"
)

const (
	// CashSettlementWorkflowName is the public identifier for registering the workflow.
	CashSettlementWorkflowName = "orders.workflows.CashSettlement"
	// CashSettlementTaskQueue is the queue consumed by the worker processing settlements.
	CashSettlementTaskQueue = "CASH_SETTLEMENT"
	// SettleCashImageActivityName verifies a banknote and settles the order.
	SettleCashImageActivityName = "orders.activities.SettleCashImage"
)

// Application error types the settlement activity attaches to deterministic
// guard failures. Retrying these cannot change the outcome, so the retry
// policy stops on them and the orchestrator maps them back to sentinels.
const (
	ErrTypeOrderNotFound      = "OrderNotFound"
	ErrTypeOrderNotSettleable = "OrderNotSettleable"
	ErrTypeOrderNotCash       = "OrderNotCash"
	ErrTypeAlreadySettled     = "OrderAlreadySettled"
	ErrTypeInvalidSubmission  = "InvalidSubmission"
)

// CashSettlementWorkflowInput carries one banknote submission through the pipeline.
type CashSettlementWorkflowInput struct {
	OrderID uuid.UUID
	Image   []byte
	TraceID string
}

// CashSettlementWorkflow runs the verify-settle-enqueue sequence for a banknote
// submission. The activity owns the state transitions; the workflow only adds
// durable retries around transient store failures. A rejected banknote is a
// successful run with Accepted=false, not a retryable failure.
func CashSettlementWorkflow(ctx workflow.Context, input CashSettlementWorkflowInput) (*ordersports.CashImageResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("cash settlement started", withTraceID(input.TraceID, "orderId", input.OrderID.String())...)

	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
			NonRetryableErrorTypes: []string{
				ErrTypeOrderNotFound,
				ErrTypeOrderNotSettleable,
				ErrTypeOrderNotCash,
				ErrTypeAlreadySettled,
				ErrTypeInvalidSubmission,
			},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var result ordersports.CashImageResult
	if err := workflow.ExecuteActivity(ctx, SettleCashImageActivityName, input).Get(ctx, &result); err != nil {
		logger.Error("cash settlement failed", withTraceID(input.TraceID, "orderId", input.OrderID.String(), "error", err)...)
		return nil, err
	}
	logger.Info("cash settlement completed", withTraceID(input.TraceID, "orderId", input.OrderID.String(), "accepted", result.Accepted)...)
	return &result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
