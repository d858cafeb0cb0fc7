package domain

import "time"

// APIKey models an opaque bearer credential for the public catalog API.
// The secret value is generated server-side and never derived from input.
type APIKey struct {
	ID          string
	Name        string
	Key         string
	Description *string
	CreatedBy   string
	Active      bool
	ExpiresAt   *time.Time
	LastUsedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Usable reports whether the key may authenticate requests at the given
// instant: it must be active and, when an expiry is set, still within it.
func (k *APIKey) Usable(now time.Time) bool {
	if !k.Active {
		return false
	}
	if k.ExpiresAt != nil && !k.ExpiresAt.After(now) {
		return false
	}
	return true
}
