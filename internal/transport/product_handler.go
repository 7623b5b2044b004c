package transport

import (
	"errors"
	"io"
	"net/http"

	"github.com/jeswanthjohn/api-forge/internal/apperror"
	"github.com/jeswanthjohn/api-forge/internal/middleware"
	"github.com/jeswanthjohn/api-forge/internal/query"
	"github.com/jeswanthjohn/api-forge/internal/service"
	"github.com/jeswanthjohn/api-forge/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxBodyBytes caps request bodies of write operations
const MaxBodyBytes = 1 << 20

// ProductMountPoints are the prefixes the product routes are served under
var ProductMountPoints = []string{"/products", "/api/products"}

// MessageResponse is the body of operations that return no resource
type MessageResponse struct {
	Message string `json:"message"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers the product routes under every mount point
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	for _, prefix := range ProductMountPoints {
		r.Route(prefix, func(r chi.Router) {
			r.Get("/", middleware.Handle(h.logger, h.List))
			r.Post("/", middleware.Handle(h.logger, h.Create))
			r.Get("/{id}", middleware.Handle(h.logger, h.Get))
			r.Put("/{id}", middleware.Handle(h.logger, h.Update))
			r.Delete("/{id}", middleware.Handle(h.logger, h.Delete))
		})
	}
}

// List handles GET with filter, sort and paging query parameters
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) error {
	q := query.Build(r.URL.Query())

	products, err := h.productService.List(r.Context(), q)
	if err != nil {
		return err
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
	return nil
}

// Create handles POST
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}

	in, err := validation.ValidateCreate(body)
	if err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		return err
	}

	product, err := h.productService.Create(r.Context(), in)
	if err != nil {
		return err
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
	return nil
}

// Get handles GET /{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := productID(r)
	if err != nil {
		return err
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		return err
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
	return nil
}

// Update handles PUT /{id} as a partial update
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) error {
	id, err := productID(r)
	if err != nil {
		return err
	}

	body, err := readBody(w, r)
	if err != nil {
		return err
	}

	patch, err := validation.ValidateUpdate(body)
	if err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		return err
	}

	product, err := h.productService.Update(r.Context(), id, patch)
	if err != nil {
		return err
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
	return nil
}

// Delete handles DELETE /{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	id, err := productID(r)
	if err != nil {
		return err
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		return err
	}

	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
	return nil
}

func productID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperror.BadRequest("Invalid product ID")
	}
	return id, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperror.BadRequest("Request body too large")
		}
		return nil, validation.ErrInvalidBody
	}
	return body, nil
}
