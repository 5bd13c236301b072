package orders

import (
	"context"
	"errors"

	dispatchports "github.com/vendibd/vendi-server/internal/domains/dispatch/ports"
	ordersports "github.com/vendibd/vendi-server/internal/domains/orders/ports"
)

var _ dispatchports.CaptureSource = (*CaptureSource)(nil)

// CaptureSource feeds the poll handler's waitForCash branch from the orders
// context. The pending -> cash_capture_pending claim happens inside the orders
// repository, so repeated polls resume the same capture without side effects.
type CaptureSource struct {
	orders ordersports.Repository
}

func NewCaptureSource(orders ordersports.Repository) *CaptureSource {
	return &CaptureSource{orders: orders}
}

func (s *CaptureSource) NextCashCapture(ctx context.Context, deviceID string) (*dispatchports.CashCapture, error) {
	if s == nil || s.orders == nil {
		return nil, errors.New("capture source not configured")
	}
	order, err := s.orders.BeginCashCapture(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, nil
	}
	return &dispatchports.CashCapture{OrderID: order.ID}, nil
}
