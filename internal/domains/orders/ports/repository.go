package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendibd/vendi-server/internal/domains/orders/domain"
)

var (
	// ErrNotFound signals the order (or code/device pair) does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrNoMatch signals no pending order matched a payment confirmation.
	ErrNoMatch = errors.New("no pending order matches the payment")
	// ErrCodeTaken signals the generated dispense code collides with an active order.
	ErrCodeTaken = errors.New("dispense code already in use")
	// ErrCodeRedeemed signals the dispense code was already exchanged once.
	ErrCodeRedeemed = errors.New("dispense code already redeemed")
	// ErrNotPaid signals a redemption attempt against an order that is not paid yet.
	ErrNotPaid = errors.New("order is not paid")
	// ErrNotPayable signals a settlement attempt against an order that already left
	// the pending/capture states.
	ErrNotPayable = errors.New("order is not awaiting payment")
)

// Repository persists orders. Every method that depends on a prior read is a
// single conditional update against the store; callers never read-then-write.
type Repository interface {
	// Create persists a new pending order. Returns ErrCodeTaken when the dispense
	// code collides with another active order.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// GetByID loads an order by identifier.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// ClaimOldestPendingByAmount atomically marks the oldest pending bKash order with
	// an exactly matching price as paid, stamping the payer reference. Returns
	// ErrNoMatch when nothing qualifies. Oldest-first is the documented tie-break
	// when two pending orders share a price.
	ClaimOldestPendingByAmount(ctx context.Context, amount decimal.Decimal, payerRef string) (*domain.Order, error)
	// BeginCashCapture returns the cash order the device should capture a banknote
	// for, atomically flipping it pending -> cash_capture_pending on first claim.
	// An order already in cash_capture_pending is returned again without side
	// effects so repeated polls see a stable instruction. Returns nil, nil when
	// the device has no cash order waiting.
	BeginCashCapture(ctx context.Context, deviceID string) (*domain.Order, error)
	// SettleCashPayment atomically moves a pending/cash_capture_pending cash order
	// to paid. Returns ErrNotPayable when the order already left those states.
	SettleCashPayment(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	// RevertCashCapture moves a cash_capture_pending order back to pending after a
	// failed verification, keeping it retryable. No-op when not capture-pending.
	RevertCashCapture(ctx context.Context, id uuid.UUID) error
	// Redeem atomically moves the paid order matching (code, device) to redeemed.
	// Returns ErrNotFound for an unknown pair, ErrCodeRedeemed when the code was
	// spent already, and ErrNotPaid for any other state.
	Redeem(ctx context.Context, dispenseCode, deviceID string) (*domain.Order, error)
	// RevertStaleCaptures returns cash_capture_pending orders untouched since the
	// cutoff back to pending, reporting how many were reverted.
	RevertStaleCaptures(ctx context.Context, cutoff time.Time) (int64, error)
}
