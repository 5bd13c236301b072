package ports

import (
	"context"

	"github.com/google/uuid"
)

// CashCapture identifies the order a device should capture a banknote for.
type CashCapture struct {
	OrderID uuid.UUID
}

// CaptureSource is the narrow slice of the orders context the poll handler
// needs: claiming the next cash order awaiting banknote capture on a device.
// Implementations must be idempotent across repeated polls.
type CaptureSource interface {
	NextCashCapture(ctx context.Context, deviceID string) (*CashCapture, error)
}
