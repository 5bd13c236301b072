package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/vendibd/vendi-server/internal/domains/dispatch/domain"
)

var (
	// ErrNotFound signals the command does not exist.
	ErrNotFound = errors.New("command not found")
	// ErrOrderAlreadyQueued signals the originating order already minted its one command.
	ErrOrderAlreadyQueued = errors.New("order already has a command")
	// ErrStatusConflict signals a terminal report that disagrees with the stored state.
	ErrStatusConflict = errors.New("command status conflict")
)

// Repository is the durable per-device command queue. ClaimNext is the core
// correctness requirement: selecting the oldest pending command and marking it
// dispatched happens in one atomic step, so two simultaneous polls for the same
// device can never both receive the same command.
type Repository interface {
	// Enqueue persists a pending command. Returns ErrOrderAlreadyQueued when the
	// order already yielded a command.
	Enqueue(ctx context.Context, cmd *domain.Command) (*domain.Command, error)
	// ClaimNext atomically selects the oldest pending command for the device and
	// transitions it to dispatched. Returns nil, nil when the queue is empty;
	// an empty claim has no side effects.
	ClaimNext(ctx context.Context, deviceID string) (*domain.Command, error)
	// ReportStatus records the device's terminal report for a dispatched command.
	// Re-reporting the same terminal status is a no-op; a divergent re-report or a
	// report against a never-dispatched command returns ErrStatusConflict.
	ReportStatus(ctx context.Context, id uuid.UUID, status domain.Status, message string) error
	// GetByID loads a command by identifier.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Command, error)
}
