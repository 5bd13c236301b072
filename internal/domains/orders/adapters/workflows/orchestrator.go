package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/vendibd/vendi-server/internal/domains/orders/application"
	"github.com/vendibd/vendi-server/internal/domains/orders/ports"
	settlementworkflows "github.com/vendibd/vendi-server/internal/platform/temporal/workflows/settlement"
)

var (
	_ ports.SettlementOrchestrator = (*TemporalSettlement)(nil)
	_ ports.SettlementOrchestrator = (*InlineSettlement)(nil)
)

// TemporalSettlement runs cash settlements on a Temporal cluster.
type TemporalSettlement struct {
	client    client.Client
	taskQueue string
}

// NewTemporalSettlement wires a Temporal client into the orchestrator.
func NewTemporalSettlement(c client.Client) *TemporalSettlement {
	return &TemporalSettlement{client: c, taskQueue: settlementworkflows.CashSettlementTaskQueue}
}

// SubmitCashImage starts the settlement workflow and waits for its verdict.
// Each submission is its own workflow run: a rejected note can be retried with
// a fresh image, so the workflow ID carries a trace component, not just the order.
func (o *TemporalSettlement) SubmitCashImage(ctx context.Context, orderID uuid.UUID, image []byte) (*ports.CashImageResult, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal settlement not configured")
	}
	traceComponent := settlementTraceComponent(ctx)
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("cash-settlement-%s-%s", orderID, traceComponent),
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		settlementworkflows.CashSettlementWorkflow,
		settlementworkflows.CashSettlementWorkflowInput{OrderID: orderID, Image: image, TraceID: traceComponent},
	)
	if err != nil {
		return nil, err
	}
	var result ports.CashImageResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, settlementError(err)
	}
	return &result, nil
}

// settlementError restores the sentinel identity lost on the wire: the
// activity tags guard failures with an application error type, and callers
// match on errors.Is to pick the response.
func settlementError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case settlementworkflows.ErrTypeOrderNotFound:
		return ports.ErrNotFound
	case settlementworkflows.ErrTypeOrderNotSettleable:
		return ports.ErrNotPayable
	case settlementworkflows.ErrTypeOrderNotCash:
		return application.ErrNotCashOrder
	case settlementworkflows.ErrTypeAlreadySettled:
		return application.ErrAlreadySettled
	case settlementworkflows.ErrTypeInvalidSubmission:
		return fmt.Errorf("%w: %s", application.ErrInvalidInput, appErr.Message())
	}
	return err
}

// InlineSettlement executes the service directly without Temporal, useful for
// tests or dev fallbacks.
type InlineSettlement struct {
	service ports.Service
}

// NewInlineSettlement wraps the orders service for synchronous execution.
func NewInlineSettlement(service ports.Service) *InlineSettlement {
	return &InlineSettlement{service: service}
}

// SubmitCashImage delegates to the application service without durable orchestration.
func (o *InlineSettlement) SubmitCashImage(ctx context.Context, orderID uuid.UUID, image []byte) (*ports.CashImageResult, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline settlement not configured")
	}
	return o.service.SubmitCashImage(ctx, orderID, image)
}

func settlementTraceComponent(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span != nil {
		if spanCtx := span.SpanContext(); spanCtx.IsValid() && spanCtx.TraceID().IsValid() {
			return spanCtx.TraceID().String()
		}
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}
