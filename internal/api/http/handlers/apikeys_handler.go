package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/service"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// APIKeysHandler exposes API key management endpoints for staff and admin.
type APIKeysHandler struct {
	keys *service.APIKeyService
}

// NewAPIKeysHandler constructs handler.
func NewAPIKeysHandler(keyService *service.APIKeyService) *APIKeysHandler {
	return &APIKeysHandler{keys: keyService}
}

// List handles GET /api/api-keys.
func (h *APIKeysHandler) List(c *fiber.Ctx) error {
	keys, err := h.keys.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAPIKeyResponses(keys)})
}

// Get handles GET /api/api-keys/:id.
func (h *APIKeysHandler) Get(c *fiber.Ctx) error {
	key, err := h.keys.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAPIKeyResponse(key, false)})
}

// Create handles POST /api/api-keys. The generated secret is returned once.
func (h *APIKeysHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateAPIKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name required")
	}

	key, err := h.keys.Create(c.Context(), principal.ID, service.CreateAPIKeyInput{
		Name:        req.Name,
		Description: req.Description,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAPIKeyResponse(key, true)})
}

// Update handles PUT /api/api-keys/:id.
func (h *APIKeysHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateAPIKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	key, err := h.keys.Update(c.Context(), c.Params("id"), service.UpdateAPIKeyInput{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.Active,
		ExpiresAt:   req.ExpiresAt,
		ClearExpiry: req.ClearExpiry,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAPIKeyResponse(key, false)})
}

// Regenerate handles POST /api/api-keys/:id/regenerate. The fresh secret is
// returned once; the old one stops working immediately.
func (h *APIKeysHandler) Regenerate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	key, err := h.keys.Regenerate(c.Context(), principal.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAPIKeyResponse(key, true)})
}

// Delete handles DELETE /api/api-keys/:id.
func (h *APIKeysHandler) Delete(c *fiber.Ctx) error {
	if err := h.keys.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
