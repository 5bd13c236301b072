package application

import "errors"

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid dispatch input")
	// ErrMissingDeviceID signals a poll without a device identifier.
	ErrMissingDeviceID = errors.New("device id is required")
)
