package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Price       float64   `json:"price" db:"price"`
	Category    string    `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// ProductInput is a sanitized create payload. It carries exactly the
// recognized product fields.
type ProductInput struct {
	Name        string
	Price       float64
	Category    string
	Description string
}

// ProductPatch is a sanitized partial update. Nil fields were not supplied
// and must be left untouched by storage.
type ProductPatch struct {
	Name        *string
	Price       *float64
	Category    *string
	Description *string
}

// IsEmpty reports whether the patch changes no field
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.Category == nil && p.Description == nil
}

// Apply copies the supplied patch fields onto product
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
}
