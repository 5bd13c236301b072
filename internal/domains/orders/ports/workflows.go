package ports

import (
	"context"

	"github.com/google/uuid"
)

// SettlementOrchestrator runs the cash settlement pipeline (verify, settle,
// enqueue) either inline or on a durable workflow engine.
type SettlementOrchestrator interface {
	SubmitCashImage(ctx context.Context, orderID uuid.UUID, image []byte) (*CashImageResult, error)
}
