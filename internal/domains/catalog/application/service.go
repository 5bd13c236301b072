package application

import (
	"context"
	"errors"
	"strings"

	"github.com/vendibd/vendi-server/internal/domains/catalog/domain"
	"github.com/vendibd/vendi-server/internal/domains/catalog/ports"
)

// ErrInvalidInput signals a malformed product lookup.
var ErrInvalidInput = errors.New("invalid catalog input")

// Service orchestrates catalog use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

var _ ports.Service = (*Service)(nil)
