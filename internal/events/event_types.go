package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered    EventType = "user_registered"
	EventUserLoggedIn      EventType = "user_logged_in"
	EventAPIKeyRegenerated EventType = "api_key_regenerated"
	EventOrderCreated      EventType = "order_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserLoggedInPayload payload.
type UserLoggedInPayload struct {
	Email string `json:"email"`
}

// APIKeyRegeneratedPayload payload.
type APIKeyRegeneratedPayload struct {
	KeyID string `json:"key_id"`
	Name  string `json:"name"`
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	OrderID    string `json:"order_id"`
	TotalCents int64  `json:"total_cents"`
	ItemCount  int    `json:"item_count"`
}
