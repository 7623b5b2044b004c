package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeswanthjohn/api-forge/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Find(ctx context.Context, q domain.ProductQuery) ([]*domain.Product, error)
	Insert(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	UpdateByID(ctx context.Context, id uuid.UUID, patch domain.ProductPatch, updatedAt time.Time) (*domain.Product, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

const productColumns = `id, name, price, category, description, created_at, updated_at`

// sortColumns maps the whitelisted sort fields to SQL, nothing else is ever
// interpolated into ORDER BY.
var sortColumns = map[domain.SortField]string{
	domain.SortFieldPrice:     "price",
	domain.SortFieldCreatedAt: "created_at",
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a Postgres backed ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Find lists products matching the filter using parameterized queries
func (r *productRepository) Find(ctx context.Context, q domain.ProductQuery) ([]*domain.Product, error) {
	where, args := buildWhere(q.Filter)

	column, ok := sortColumns[q.Sort.Field]
	if !ok {
		column = sortColumns[domain.DefaultSort.Field]
	}
	order := q.Sort.Order
	if order != domain.SortOrderAsc && order != domain.SortOrderDesc {
		order = domain.DefaultSort.Order
	}

	argIndex := len(args) + 1
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY %s %s, id ASC
		LIMIT $%d OFFSET $%d
	`, productColumns, where, column, order, argIndex, argIndex+1)

	args = append(args, q.Page.Size, q.Page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func buildWhere(f domain.ProductFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)

	if f.PriceMin != nil {
		args = append(args, *f.PriceMin)
		clauses = append(clauses, fmt.Sprintf("price >= $%d", len(args)))
	}
	if f.PriceMax != nil {
		args = append(args, *f.PriceMax)
		clauses = append(clauses, fmt.Sprintf("price <= $%d", len(args)))
	}
	if f.Category != nil {
		args = append(args, *f.Category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// Insert stores a new product
func (r *productRepository) Insert(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, price, category, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Price,
		product.Category,
		product.Description,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// UpdateByID applies the supplied patch fields in a single statement and
// returns the stored result. Fields left nil keep their current value.
func (r *productRepository) UpdateByID(ctx context.Context, id uuid.UUID, patch domain.ProductPatch, updatedAt time.Time) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = COALESCE($2, name),
		    price = COALESCE($3, price),
		    category = COALESCE($4, category),
		    description = COALESCE($5, description),
		    updated_at = $6
		WHERE id = $1
		RETURNING ` + productColumns

	product, err := scanProduct(r.db.QueryRowContext(
		ctx,
		query,
		id,
		patch.Name,
		patch.Price,
		patch.Category,
		patch.Description,
		updatedAt,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteByID removes a product permanently
func (r *productRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Category,
		&product.Description,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}
