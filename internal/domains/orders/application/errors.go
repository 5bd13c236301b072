package application

import (
	"errors"
	"fmt"

	"github.com/vendibd/vendi-server/internal/domains/orders/domain"
	"github.com/vendibd/vendi-server/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrMissingPayerRef signals a payment confirmation without a payer reference.
	ErrMissingPayerRef = fmt.Errorf("%w: payer reference is required", ErrInvalidInput)
	// ErrMissingImage signals a cash submission without banknote image bytes.
	ErrMissingImage = fmt.Errorf("%w: banknote image is required", ErrInvalidInput)
	// ErrMissingRedeemFields signals a redemption without code or device.
	ErrMissingRedeemFields = fmt.Errorf("%w: dispense code and device id are required", ErrInvalidInput)
	// ErrNotCashOrder signals a banknote submission against a bKash order.
	ErrNotCashOrder = errors.New("order is not payable in cash")
	// ErrAlreadySettled signals a banknote submission against an order that is
	// already paid or redeemed.
	ErrAlreadySettled = errors.New("order payment already confirmed")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidProductID) ||
		errors.Is(err, domain.ErrInvalidDeviceID) ||
		errors.Is(err, domain.ErrInvalidMethod) ||
		errors.Is(err, domain.ErrInvalidPrice) ||
		errors.Is(err, domain.ErrInvalidStatus) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, ports.ErrUnknownProduct) {
		return err
	}
	return err
}
