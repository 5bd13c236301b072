package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/vendibd/vendi-server/internal/domains/dispatch/domain"
)

// InstructionKind is the verb handed to a polling device.
type InstructionKind string

const (
	InstructionVend        InstructionKind = "vend"
	InstructionWaitForCash InstructionKind = "waitForCash"
	InstructionNone        InstructionKind = ""
)

// Instruction is the single decision returned per poll.
type Instruction struct {
	Kind      InstructionKind
	CommandID uuid.UUID
	OrderID   uuid.UUID
	ProductID string
}

// Service exposes the dispatch use cases to adapters.
type Service interface {
	// EnqueueVend mints the vend command for a confirmed order.
	EnqueueVend(ctx context.Context, deviceID string, orderID uuid.UUID, productID string) (uuid.UUID, error)
	// Poll decides the one instruction for a device: a claimable vend command
	// wins over starting (or resuming) a cash-capture cycle, which wins over nothing.
	Poll(ctx context.Context, deviceID string) (*Instruction, error)
	// ReportStatus records a device's terminal report for a dispatched command.
	ReportStatus(ctx context.Context, commandID uuid.UUID, status domain.Status, message string) error
}
