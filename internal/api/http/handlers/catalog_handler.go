package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/service"
)

// CatalogHandler exposes the external, API-key-authenticated product catalog.
type CatalogHandler struct {
	products *service.ProductService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(productService *service.ProductService) *CatalogHandler {
	return &CatalogHandler{products: productService}
}

// ListProducts handles GET /public/products.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.products.PublicList(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponses(products)})
}

// GetProduct handles GET /public/products/:id.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.products.PublicGet(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}
