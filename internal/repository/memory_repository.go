package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/jeswanthjohn/api-forge/internal/domain"

	"github.com/google/uuid"
)

type memoryProductRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]domain.Product
}

// NewMemoryProductRepository returns a ProductRepository that keeps products in
// process memory. It answers queries with the same filtering, ordering and
// paging rules as the Postgres repository.
func NewMemoryProductRepository() ProductRepository {
	return &memoryProductRepository{products: make(map[uuid.UUID]domain.Product)}
}

func (r *memoryProductRepository) Find(_ context.Context, q domain.ProductQuery) ([]*domain.Product, error) {
	r.mu.RLock()
	matched := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if matches(q.Filter, p) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, compareBy(q.Sort))

	products := []*domain.Product{}
	offset := q.Page.Offset()
	if offset >= len(matched) || q.Page.Size <= 0 {
		return products, nil
	}
	end := min(offset+q.Page.Size, len(matched))
	for i := offset; i < end; i++ {
		p := matched[i]
		products = append(products, &p)
	}
	return products, nil
}

func matches(f domain.ProductFilter, p domain.Product) bool {
	if f.PriceMin != nil && p.Price < *f.PriceMin {
		return false
	}
	if f.PriceMax != nil && p.Price > *f.PriceMax {
		return false
	}
	if f.Category != nil && p.Category != *f.Category {
		return false
	}
	return true
}

func compareBy(s domain.SortSpec) func(a, b domain.Product) int {
	return func(a, b domain.Product) int {
		var c int
		switch s.Field {
		case domain.SortFieldPrice:
			c = cmp.Compare(a.Price, b.Price)
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if s.Order != domain.SortOrderAsc {
			c = -c
		}
		if c == 0 {
			c = cmp.Compare(a.ID.String(), b.ID.String())
		}
		return c
	}
}

func (r *memoryProductRepository) Insert(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = *product
	return nil
}

func (r *memoryProductRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (r *memoryProductRepository) UpdateByID(_ context.Context, id uuid.UUID, patch domain.ProductPatch, updatedAt time.Time) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	patch.Apply(&p)
	p.UpdatedAt = updatedAt
	r.products[id] = p
	return &p, nil
}

func (r *memoryProductRepository) DeleteByID(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}
