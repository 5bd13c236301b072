package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrUnknownProduct signals the referenced product is not sold by any machine.
var ErrUnknownProduct = errors.New("unknown product")

// ProductRef is the slice of catalog data stamped onto an order at creation.
type ProductRef struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// ProductCatalog resolves a product reference to its exact price.
type ProductCatalog interface {
	Lookup(ctx context.Context, productID string) (*ProductRef, error)
}
