package ports

import (
	"context"

	"github.com/vendibd/vendi-server/internal/domains/catalog/domain"
)

// Service exposes catalog use cases to adapters.
type Service interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
}
