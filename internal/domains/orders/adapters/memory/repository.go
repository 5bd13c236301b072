package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendibd/vendi-server/internal/domains/orders/domain"
	"github.com/vendibd/vendi-server/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order store. Every conditional transition runs
// under one mutex, which makes it the moral equivalent of the postgres
// adapter's single-statement updates.
type Repository struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]*domain.Order
	seq     map[uuid.UUID]int64
	nextSeq int64
	// touched tracks the last transition time per order for stale-capture reverts.
	touched map[uuid.UUID]time.Time
	now     func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		orders:  map[uuid.UUID]*domain.Order{},
		seq:     map[uuid.UUID]int64{},
		touched: map[uuid.UUID]time.Time{},
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := *order
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.Active() && existing.DispenseCode == clone.DispenseCode {
			return nil, ports.ErrCodeTaken
		}
	}
	r.nextSeq++
	r.seq[clone.ID] = r.nextSeq
	r.touched[clone.ID] = r.now()
	r.orders[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

func (r *Repository) ClaimOldestPendingByAmount(_ context.Context, amount decimal.Decimal, payerRef string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order := r.oldestLocked(func(o *domain.Order) bool {
		return o.Status == domain.StatusPending &&
			o.PaymentMethod == domain.MethodBkash &&
			o.Price.Equal(amount)
	})
	if order == nil {
		return nil, ports.ErrNoMatch
	}
	now := r.now().UTC()
	order.Status = domain.StatusPaid
	order.PaidAt = &now
	order.PayerRef = payerRef
	r.touched[order.ID] = now
	clone := *order
	return &clone, nil
}

func (r *Repository) BeginCashCapture(_ context.Context, deviceID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Resume an in-flight capture before starting a new one: the machine holds
	// at most one banknote session at a time.
	if order := r.oldestLocked(func(o *domain.Order) bool {
		return o.DeviceID == deviceID && o.PaymentMethod == domain.MethodCash && o.Status == domain.StatusCashCapturePending
	}); order != nil {
		clone := *order
		return &clone, nil
	}
	order := r.oldestLocked(func(o *domain.Order) bool {
		return o.DeviceID == deviceID && o.PaymentMethod == domain.MethodCash && o.Status == domain.StatusPending
	})
	if order == nil {
		return nil, nil
	}
	order.Status = domain.StatusCashCapturePending
	r.touched[order.ID] = r.now()
	clone := *order
	return &clone, nil
}

func (r *Repository) SettleCashPayment(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if !order.AwaitingCash() {
		return nil, ports.ErrNotPayable
	}
	now := r.now().UTC()
	order.Status = domain.StatusPaid
	order.PaidAt = &now
	r.touched[id] = now
	clone := *order
	return &clone, nil
}

func (r *Repository) RevertCashCapture(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	if order.Status == domain.StatusCashCapturePending {
		order.Status = domain.StatusPending
		r.touched[id] = r.now()
	}
	return nil
}

func (r *Repository) Redeem(_ context.Context, dispenseCode, deviceID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// A redeemed order releases its code, so prefer the active holder when an
	// old redeemed order still carries the same digits.
	var match *domain.Order
	for _, order := range r.orders {
		if order.DispenseCode != dispenseCode || order.DeviceID != deviceID {
			continue
		}
		if match == nil || (!match.Active() && order.Active()) {
			match = order
		}
	}
	if match == nil {
		return nil, ports.ErrNotFound
	}
	switch match.Status {
	case domain.StatusPaid:
		match.Status = domain.StatusRedeemed
		r.touched[match.ID] = r.now()
		clone := *match
		return &clone, nil
	case domain.StatusRedeemed:
		return nil, ports.ErrCodeRedeemed
	default:
		return nil, ports.ErrNotPaid
	}
}

func (r *Repository) RevertStaleCaptures(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var reverted int64
	for id, order := range r.orders {
		if order.Status == domain.StatusCashCapturePending && r.touched[id].Before(cutoff) {
			order.Status = domain.StatusPending
			r.touched[id] = r.now()
			reverted++
		}
	}
	return reverted, nil
}

// oldestLocked returns the matching order with the lowest insertion sequence.
// Caller must hold the mutex.
func (r *Repository) oldestLocked(match func(*domain.Order) bool) *domain.Order {
	var candidates []*domain.Order
	for _, order := range r.orders {
		if match(order) {
			candidates = append(candidates, order)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return r.seq[candidates[i].ID] < r.seq[candidates[j].ID]
	})
	return candidates[0]
}
