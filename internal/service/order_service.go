package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// OrderService coordinates order placement and management.
type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	dispatcher events.Dispatcher
}

// NewOrderService builds the service.
func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, dispatcher events.Dispatcher) *OrderService {
	return &OrderService{orders: orders, products: products, dispatcher: dispatcher}
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID string
	Quantity  int
}

// Create places an order for the user. Prices come from the store, never
// from the request.
func (s *OrderService) Create(ctx context.Context, userID string, items []OrderItemInput) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, apperrors.NewValidationError("order requires at least one item", nil)
	}

	order := &domain.Order{
		UserID: userID,
		Status: domain.OrderStatusPending,
	}

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, apperrors.NewValidationError("item quantity must be positive", map[string]any{"product_id": item.ProductID})
		}
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("unknown product", map[string]any{"product_id": item.ProductID})
			}
			return nil, err
		}
		if !product.Active {
			return nil, apperrors.NewValidationError("product unavailable", map[string]any{"product_id": item.ProductID})
		}
		if product.Stock < item.Quantity {
			return nil, apperrors.NewConflict("insufficient stock", map[string]any{"product_id": item.ProductID})
		}

		order.Items = append(order.Items, domain.OrderItem{
			ProductID:  product.ID,
			Quantity:   item.Quantity,
			PriceCents: product.PriceCents,
		})
		order.TotalCents += product.PriceCents * int64(item.Quantity)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventOrderCreated,
			ActorID:   userID,
			Timestamp: time.Now(),
			Payload: events.OrderCreatedPayload{
				OrderID:    order.ID,
				TotalCents: order.TotalCents,
				ItemCount:  len(order.Items),
			},
		})
	}
	return order, nil
}

// Get returns one order.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListForUser returns a customer's own orders.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListAll returns every order for staff and admin views.
func (s *OrderService) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.List(ctx)
}

// UpdateStatus moves an order to a new lifecycle state.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown order status", map[string]any{"status": status})
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, id)
}
