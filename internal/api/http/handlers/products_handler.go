package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/service"
)

// ProductsHandler exposes catalog management endpoints.
type ProductsHandler struct {
	products *service.ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(productService *service.ProductService) *ProductsHandler {
	return &ProductsHandler{products: productService}
}

// List handles GET /api/products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	products, err := h.products.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponses(products)})
}

// Get handles GET /api/products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	product, err := h.products.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name required")
	}
	if req.PriceCents < 0 || req.Stock < 0 {
		return fiber.NewError(http.StatusBadRequest, "price and stock must not be negative")
	}

	product := &domain.Product{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		Active:      true,
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := h.products.Create(c.Context(), product); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Update handles PUT /api/products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	product, err := h.products.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.PriceCents != nil {
		if *req.PriceCents < 0 {
			return fiber.NewError(http.StatusBadRequest, "price must not be negative")
		}
		product.PriceCents = *req.PriceCents
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return fiber.NewError(http.StatusBadRequest, "stock must not be negative")
		}
		product.Stock = *req.Stock
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := h.products.Update(c.Context(), product); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Delete handles DELETE /api/products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	if err := h.products.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
