package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrOrderAlreadyQueued signals the order already yielded its one vend command.
// An order yields at most one command ever, even when the cash settlement path
// and a later code redemption race on the same order.
var ErrOrderAlreadyQueued = errors.New("order already has a vend command")

// CommandEnqueuer is the narrow slice of the dispatch context the order
// lifecycle needs: minting the vend command once payment is confirmed.
type CommandEnqueuer interface {
	EnqueueVend(ctx context.Context, deviceID string, orderID uuid.UUID, productID string) (uuid.UUID, error)
}
