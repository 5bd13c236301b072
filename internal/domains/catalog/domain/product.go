package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidID    = errors.New("product id is required")
	ErrInvalidName  = errors.New("product name is required")
	ErrInvalidPrice = errors.New("product price must be greater than zero")
)

// Product is a vendable item. The catalog is static configuration: machines
// reference products by id and the exact price is stamped onto each order.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Available bool
}

// Validate enforces invariants on the product.
func (p *Product) Validate() error {
	if p.ID == "" {
		return ErrInvalidID
	}
	if p.Name == "" {
		return ErrInvalidName
	}
	if !p.Price.IsPositive() {
		return ErrInvalidPrice
	}
	return nil
}
