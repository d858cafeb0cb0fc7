package dto

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// CreateProductRequest payload for new products.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PriceCents  int64   `json:"price_cents"`
	Stock       int     `json:"stock"`
	CategoryID  *string `json:"category_id"`
	Active      *bool   `json:"active"`
}

// UpdateProductRequest payload for product changes.
type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents"`
	Stock       *int    `json:"stock"`
	CategoryID  *string `json:"category_id"`
	Active      *bool   `json:"active"`
}

// ProductResponse is the wire shape of a product.
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	CategoryID  *string   `json:"category_id,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProductResponse maps a domain product to its wire shape.
func NewProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		PriceCents:  product.PriceCents,
		Stock:       product.Stock,
		CategoryID:  product.CategoryID,
		Active:      product.Active,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// NewProductResponses maps a slice of domain products.
func NewProductResponses(products []*domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		out = append(out, NewProductResponse(product))
	}
	return out
}
