package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jeswanthjohn/api-forge/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func seed(t *testing.T, repo ProductRepository, prices []float64, category string) []*domain.Product {
	t.Helper()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*domain.Product, 0, len(prices))
	for i, price := range prices {
		p := &domain.Product{
			ID:        uuid.New(),
			Name:      "Product",
			Price:     price,
			Category:  category,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Insert(context.Background(), p); err != nil {
			t.Fatalf("insert: %v", err)
		}
		out = append(out, p)
	}
	return out
}

func TestMemoryFind_FilterSortPage(t *testing.T) {
	repo := NewMemoryProductRepository()
	seed(t, repo, []float64{5, 50, 20, 80, 150}, "Tools")
	seed(t, repo, []float64{30}, "Garden")

	products, err := repo.Find(context.Background(), domain.ProductQuery{
		Filter: domain.ProductFilter{PriceMin: ptr(10.0), PriceMax: ptr(100.0), Category: ptr("Tools")},
		Sort:   domain.SortSpec{Field: domain.SortFieldPrice, Order: domain.SortOrderAsc},
		Page:   domain.PageSpec{Number: 1, Size: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 || products[0].Price != 20 || products[1].Price != 50 {
		t.Fatalf("unexpected page: %+v", products)
	}

	products, _ = repo.Find(context.Background(), domain.ProductQuery{
		Filter: domain.ProductFilter{PriceMin: ptr(10.0), PriceMax: ptr(100.0), Category: ptr("Tools")},
		Sort:   domain.SortSpec{Field: domain.SortFieldPrice, Order: domain.SortOrderAsc},
		Page:   domain.PageSpec{Number: 2, Size: 2},
	})
	if len(products) != 1 || products[0].Price != 80 {
		t.Fatalf("unexpected second page: %+v", products)
	}
}

func TestMemoryFind_DefaultSortIsNewestFirst(t *testing.T) {
	repo := NewMemoryProductRepository()
	seeded := seed(t, repo, []float64{1, 2, 3}, "Tools")

	products, _ := repo.Find(context.Background(), domain.ProductQuery{
		Sort: domain.DefaultSort,
		Page: domain.PageSpec{Number: 1, Size: 10},
	})
	if len(products) != 3 || products[0].ID != seeded[2].ID || products[2].ID != seeded[0].ID {
		t.Fatalf("expected newest first, got %+v", products)
	}
}

func TestMemoryFind_PastTheEndIsEmpty(t *testing.T) {
	repo := NewMemoryProductRepository()
	seed(t, repo, []float64{1}, "Tools")

	products, err := repo.Find(context.Background(), domain.ProductQuery{Page: domain.PageSpec{Number: 5, Size: 10}})
	if err != nil || products == nil || len(products) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v, %v", products, err)
	}
}

func TestMemoryUpdateAndDelete(t *testing.T) {
	repo := NewMemoryProductRepository()
	p := seed(t, repo, []float64{10}, "Tools")[0]
	ctx := context.Background()
	later := p.UpdatedAt.Add(time.Hour)

	updated, err := repo.UpdateByID(ctx, p.ID, domain.ProductPatch{Name: ptr("Hammer")}, later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Hammer" || updated.Price != 10 || !updated.UpdatedAt.Equal(later) || !updated.CreatedAt.Equal(p.CreatedAt) {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := repo.DeleteByID(ctx, p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.FindByID(ctx, p.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if _, err := repo.UpdateByID(ctx, p.ID, domain.ProductPatch{}, later); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
	if err := repo.DeleteByID(ctx, p.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestMemoryFindByID_ReturnsCopy(t *testing.T) {
	repo := NewMemoryProductRepository()
	p := seed(t, repo, []float64{10}, "Tools")[0]

	got, _ := repo.FindByID(context.Background(), p.ID)
	got.Name = "mutated"

	again, _ := repo.FindByID(context.Background(), p.ID)
	if again.Name != "Product" {
		t.Fatalf("stored product was mutated through a returned pointer")
	}
}

func TestProperty_MemoryFindRespectsFilterAndPage(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every listed product satisfies the filter and pages never exceed the size", prop.ForAll(
		func(prices []float64, lo, span float64, size, number int) bool {
			repo := NewMemoryProductRepository()
			seed(t, repo, prices, "Tools")
			hi := lo + span

			products, err := repo.Find(context.Background(), domain.ProductQuery{
				Filter: domain.ProductFilter{PriceMin: &lo, PriceMax: &hi},
				Sort:   domain.SortSpec{Field: domain.SortFieldPrice, Order: domain.SortOrderDesc},
				Page:   domain.PageSpec{Number: number, Size: size},
			})
			if err != nil || len(products) > size {
				return false
			}
			for i, p := range products {
				if p.Price < lo || p.Price > hi {
					return false
				}
				if i > 0 && products[i-1].Price < p.Price {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(0, 1000)),
		gen.Float64Range(0, 500),
		gen.Float64Range(0, 500),
		gen.IntRange(1, 20),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
