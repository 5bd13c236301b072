package ports

import (
	"context"
	"errors"

	"github.com/vendibd/vendi-server/internal/domains/catalog/domain"
)

var ErrNotFound = errors.New("product not found")

// Repository reads the product catalog.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}
