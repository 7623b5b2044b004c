package service

import (
	"context"
	"errors"
	"time"

	"github.com/jeswanthjohn/api-forge/internal/apperror"
	"github.com/jeswanthjohn/api-forge/internal/domain"
	"github.com/jeswanthjohn/api-forge/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService defines the product operations exposed over HTTP. Every
// error it returns is an *apperror.Error.
type ProductService interface {
	List(ctx context.Context, q domain.ProductQuery) ([]*domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo   repository.ProductRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewProductService creates a new instance of ProductService
func NewProductService(repo repository.ProductRepository, logger *zap.Logger) ProductService {
	return &productService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns the requested page, never nil
func (s *productService) List(ctx context.Context, q domain.ProductQuery) ([]*domain.Product, error) {
	products, err := s.repo.Find(ctx, q)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return products, nil
}

// Create stores a validated product with a fresh id and timestamps
func (s *productService) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	now := s.now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        in.Name,
		Price:       in.Price,
		Category:    in.Category,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, product); err != nil {
		return nil, apperror.Internal(err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("category", product.Category),
	)
	return product, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return product, nil
}

// Update applies the supplied fields and refreshes updatedAt, even when the
// patch is empty.
func (s *productService) Update(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (*domain.Product, error) {
	product, err := s.repo.UpdateByID(ctx, id, patch, s.now())
	if err != nil {
		return nil, translate(err)
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return translate(err)
	}

	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

func translate(err error) error {
	if errors.Is(err, repository.ErrProductNotFound) {
		return apperror.NotFound("Product")
	}
	return apperror.Internal(err)
}
