package dto

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// CreateOrderRequest payload for order placement.
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items"`
}

// OrderItemRequest is one requested line.
type OrderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateOrderStatusRequest payload for status changes.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderItemResponse is the wire shape of an order line.
type OrderItemResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

// OrderResponse is the wire shape of an order.
type OrderResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	Status     string              `json:"status"`
	TotalCents int64               `json:"total_cents"`
	Items      []OrderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// NewOrderResponse maps a domain order to its wire shape.
func NewOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceCents: item.PriceCents,
		})
	}
	return OrderResponse{
		ID:         order.ID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		TotalCents: order.TotalCents,
		Items:      items,
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
}

// NewOrderResponses maps a slice of domain orders.
func NewOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, NewOrderResponse(order))
	}
	return out
}
