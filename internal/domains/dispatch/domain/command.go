package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status tracks a command from creation through delivery to the device report.
// pending -> dispatched is a one-time transition: no two polls may carry the
// same command to a machine.
type Status string

const (
	StatusPending    Status = "pending"
	StatusDispatched Status = "dispatched"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

var (
	ErrInvalidDeviceID  = errors.New("command device id is required")
	ErrInvalidOrderID   = errors.New("command must reference an order")
	ErrInvalidProductID = errors.New("command product id is required")
	ErrInvalidStatus    = errors.New("command status is invalid")
)

// Command is a single instruction queued for a specific device.
type Command struct {
	ID            uuid.UUID
	DeviceID      string
	OrderID       uuid.UUID
	ProductID     string
	Status        Status
	ResultMessage string
	CreatedAt     time.Time
	DispatchedAt  *time.Time
}

// NewVendCommand constructs a pending vend instruction for the device.
func NewVendCommand(deviceID string, orderID uuid.UUID, productID string) (*Command, error) {
	cmd := &Command{
		ID:        uuid.New(),
		DeviceID:  deviceID,
		OrderID:   orderID,
		ProductID: productID,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// Validate enforces invariants on the aggregate.
func (c *Command) Validate() error {
	if c.DeviceID == "" {
		return ErrInvalidDeviceID
	}
	if c.OrderID == uuid.Nil {
		return ErrInvalidOrderID
	}
	if c.ProductID == "" {
		return ErrInvalidProductID
	}
	switch c.Status {
	case StatusPending, StatusDispatched, StatusDone, StatusFailed:
		return nil
	default:
		return ErrInvalidStatus
	}
}

// Terminal reports whether the status is a device-reported end state.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// ParseTerminalStatus validates a device-reported terminal status string.
func ParseTerminalStatus(raw string) (Status, error) {
	status := Status(raw)
	if !status.Terminal() {
		return "", ErrInvalidStatus
	}
	return status, nil
}
