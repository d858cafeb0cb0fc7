package domain

import "time"

// Product is a catalog item.
type Product struct {
	ID          string
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	CategoryID  *string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
