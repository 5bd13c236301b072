package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status enumerates order progression. Transitions only move forward:
// pending -> cash_capture_pending (cash only) -> paid -> redeemed,
// except for the documented capture revert back to pending.
type Status string

const (
	StatusPending            Status = "pending"
	StatusCashCapturePending Status = "cash_capture_pending"
	StatusPaid               Status = "paid"
	StatusRedeemed           Status = "redeemed"
)

// PaymentMethod identifies how the customer pays for an order.
type PaymentMethod string

const (
	MethodBkash PaymentMethod = "bkash"
	MethodCash  PaymentMethod = "cash"
)

var (
	ErrInvalidProductID = errors.New("product id is required")
	ErrInvalidDeviceID  = errors.New("device id is required")
	ErrInvalidMethod    = errors.New("payment method must be bkash or cash")
	ErrInvalidPrice     = errors.New("price must be greater than zero")
	ErrInvalidStatus    = errors.New("order status is invalid")
)

// Order models a purchase intent tracked from creation through payment to fulfillment.
// Orders are never deleted; a redeemed order stays behind as the audit trail.
type Order struct {
	ID            uuid.UUID
	ProductID     string
	ProductName   string
	Price         decimal.Decimal
	DeviceID      string
	PaymentMethod PaymentMethod
	DispenseCode  string
	Status        Status
	CustomerPhone string
	PayerRef      string
	CreatedAt     time.Time
	PaidAt        *time.Time
}

// NewOrder validates and constructs a pending Order with a freshly minted dispense code.
func NewOrder(productID, productName string, price decimal.Decimal, deviceID string, method PaymentMethod, customerPhone string) (*Order, error) {
	order := &Order{
		ID:            uuid.New(),
		ProductID:     productID,
		ProductName:   productName,
		Price:         price,
		DeviceID:      deviceID,
		PaymentMethod: method,
		Status:        StatusPending,
		CustomerPhone: customerPhone,
		CreatedAt:     time.Now().UTC(),
	}
	code, err := NewDispenseCode()
	if err != nil {
		return nil, err
	}
	order.DispenseCode = code
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.ProductID == "" {
		return ErrInvalidProductID
	}
	if o.DeviceID == "" {
		return ErrInvalidDeviceID
	}
	if !IsValidMethod(o.PaymentMethod) {
		return ErrInvalidMethod
	}
	if !o.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if !isValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// Active reports whether the order can still progress toward dispensing.
func (o *Order) Active() bool {
	return o.Status != StatusRedeemed
}

// Settled reports whether payment has been confirmed for the order.
func (o *Order) Settled() bool {
	return o.Status == StatusPaid || o.Status == StatusRedeemed
}

// AwaitingCash reports whether the order is waiting on banknote capture.
func (o *Order) AwaitingCash() bool {
	return o.PaymentMethod == MethodCash &&
		(o.Status == StatusPending || o.Status == StatusCashCapturePending)
}

// IsValidMethod reports whether the payment method is a known value.
func IsValidMethod(method PaymentMethod) bool {
	return method == MethodBkash || method == MethodCash
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusCashCapturePending, StatusPaid, StatusRedeemed:
		return true
	default:
		return false
	}
}

// NewDispenseCode mints a 6-digit numeric code the customer types at the machine.
// Uniqueness among active orders is enforced by the repository, not here.
func NewDispenseCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate dispense code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
