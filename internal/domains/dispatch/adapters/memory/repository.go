package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vendibd/vendi-server/internal/domains/dispatch/domain"
	"github.com/vendibd/vendi-server/internal/domains/dispatch/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory command queue. One mutex serializes every claim,
// so concurrent polls for the same device contend the same way they would on
// the postgres adapter's row lock.
type Repository struct {
	mu       sync.Mutex
	commands map[uuid.UUID]*domain.Command
	// queues preserves FIFO creation order per device.
	queues  map[string][]uuid.UUID
	byOrder map[uuid.UUID]uuid.UUID
	now     func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		commands: map[uuid.UUID]*domain.Command{},
		queues:   map[string][]uuid.UUID{},
		byOrder:  map[uuid.UUID]uuid.UUID{},
		now:      time.Now,
	}
}

func (r *Repository) Enqueue(_ context.Context, cmd *domain.Command) (*domain.Command, error) {
	if cmd == nil {
		return nil, errors.New("command is nil")
	}
	clone := *cmd
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byOrder[clone.OrderID]; exists {
		return nil, ports.ErrOrderAlreadyQueued
	}
	r.commands[clone.ID] = &clone
	r.queues[clone.DeviceID] = append(r.queues[clone.DeviceID], clone.ID)
	r.byOrder[clone.OrderID] = clone.ID
	result := clone
	return &result, nil
}

func (r *Repository) ClaimNext(_ context.Context, deviceID string) (*domain.Command, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.queues[deviceID] {
		cmd := r.commands[id]
		if cmd.Status != domain.StatusPending {
			continue
		}
		now := r.now().UTC()
		cmd.Status = domain.StatusDispatched
		cmd.DispatchedAt = &now
		clone := *cmd
		return &clone, nil
	}
	return nil, nil
}

func (r *Repository) ReportStatus(_ context.Context, id uuid.UUID, status domain.Status, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd, ok := r.commands[id]
	if !ok {
		return ports.ErrNotFound
	}
	switch {
	case cmd.Status == domain.StatusDispatched:
		cmd.Status = status
		cmd.ResultMessage = message
		return nil
	case cmd.Status == status:
		// Device retried the same report after a dropped response.
		return nil
	default:
		return ports.ErrStatusConflict
	}
}

func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (*domain.Command, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd, ok := r.commands[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *cmd
	return &clone, nil
}
