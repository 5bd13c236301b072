package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vendibd/vendi-server/internal/domains/catalog/domain"
	"github.com/vendibd/vendi-server/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory product catalog, seeded from configuration.
type Repository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

// NewRepository seeds the default product list.
func NewRepository() *Repository {
	repo := &Repository{products: map[string]*domain.Product{}}
	for _, p := range defaultProducts() {
		product := p
		repo.products[product.ID] = &product
	}
	return repo
}

// NewRepositoryFromFile loads the catalog from a JSON file.
func NewRepositoryFromFile(path string) (*Repository, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var entries []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Price     string `json:"price"`
		Available *bool  `json:"available"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	repo := &Repository{products: map[string]*domain.Product{}}
	for _, entry := range entries {
		price, err := decimal.NewFromString(entry.Price)
		if err != nil {
			return nil, fmt.Errorf("product %q price: %w", entry.ID, err)
		}
		product := domain.Product{ID: entry.ID, Name: entry.Name, Price: price, Available: entry.Available == nil || *entry.Available}
		if err := product.Validate(); err != nil {
			return nil, fmt.Errorf("product %q: %w", entry.ID, err)
		}
		repo.products[product.ID] = &product
	}
	return repo, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok || !product.Available {
		return nil, ports.ErrNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		if !product.Available {
			continue
		}
		clone := *product
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func defaultProducts() []domain.Product {
	return []domain.Product{
		{ID: "mango", Name: "Mango Juice", Price: decimal.RequireFromString("10.00"), Available: true},
		{ID: "lemonade", Name: "Fresh Lemonade", Price: decimal.RequireFromString("15.00"), Available: true},
		{ID: "chips", Name: "Potato Chips", Price: decimal.RequireFromString("20.00"), Available: true},
		{ID: "water", Name: "Mineral Water", Price: decimal.RequireFromString("10.00"), Available: true},
		{ID: "cola", Name: "Cola Can", Price: decimal.RequireFromString("25.00"), Available: true},
	}
}
