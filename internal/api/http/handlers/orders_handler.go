package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/api/dto"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/service"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// OrdersHandler exposes order endpoints. Customers see their own orders;
// staff and admin see all of them.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orderService}
}

// Create handles POST /api/orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	items := make([]service.OrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.orders.Create(c.Context(), principal.ID, items)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// List handles GET /api/orders.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var (
		orders []*domain.Order
		err    error
	)
	if principal.Role == domain.UserRoleCustomer {
		orders, err = h.orders.ListForUser(c.Context(), principal.ID)
	} else {
		orders, err = h.orders.ListAll(c.Context())
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponses(orders)})
}

// Get handles GET /api/orders/:id.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	order, err := h.orders.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	// Customers cannot see, or confirm the existence of, other users' orders.
	if principal.Role == domain.UserRoleCustomer && order.UserID != principal.ID {
		return apperrors.NewNotFound("order", nil)
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// UpdateStatus handles PUT /api/orders/:id/status.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Status == "" {
		return fiber.NewError(http.StatusBadRequest, "status required")
	}

	order, err := h.orders.UpdateStatus(c.Context(), c.Params("id"), domain.OrderStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}
