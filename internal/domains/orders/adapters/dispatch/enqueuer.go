package dispatch

import (
	"context"
	"errors"

	"github.com/google/uuid"

	dispatchports "github.com/vendibd/vendi-server/internal/domains/dispatch/ports"
	ordersports "github.com/vendibd/vendi-server/internal/domains/orders/ports"
)

var _ ordersports.CommandEnqueuer = (*Enqueuer)(nil)

// Enqueuer lets the order lifecycle mint vend commands through the dispatch
// context, translating its sentinel errors into the orders vocabulary.
type Enqueuer struct {
	dispatch dispatchports.Service
}

func NewEnqueuer(dispatch dispatchports.Service) *Enqueuer {
	return &Enqueuer{dispatch: dispatch}
}

func (e *Enqueuer) EnqueueVend(ctx context.Context, deviceID string, orderID uuid.UUID, productID string) (uuid.UUID, error) {
	if e == nil || e.dispatch == nil {
		return uuid.Nil, errors.New("dispatch enqueuer not configured")
	}
	id, err := e.dispatch.EnqueueVend(ctx, deviceID, orderID, productID)
	if errors.Is(err, dispatchports.ErrOrderAlreadyQueued) {
		return uuid.Nil, ordersports.ErrOrderAlreadyQueued
	}
	return id, err
}
