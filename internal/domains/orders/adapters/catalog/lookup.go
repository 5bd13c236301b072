package catalog

import (
	"context"
	"errors"

	catalogports "github.com/vendibd/vendi-server/internal/domains/catalog/ports"
	ordersports "github.com/vendibd/vendi-server/internal/domains/orders/ports"
)

var _ ordersports.ProductCatalog = (*Lookup)(nil)

// Lookup resolves product references for order creation through the catalog context.
type Lookup struct {
	catalog catalogports.Service
}

func NewLookup(catalog catalogports.Service) *Lookup {
	return &Lookup{catalog: catalog}
}

func (l *Lookup) Lookup(ctx context.Context, productID string) (*ordersports.ProductRef, error) {
	if l == nil || l.catalog == nil {
		return nil, errors.New("catalog lookup not configured")
	}
	product, err := l.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			return nil, ordersports.ErrUnknownProduct
		}
		return nil, err
	}
	return &ordersports.ProductRef{ID: product.ID, Name: product.Name, Price: product.Price}, nil
}
