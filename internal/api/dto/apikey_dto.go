package dto

import (
	"time"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// CreateAPIKeyRequest payload for new keys.
type CreateAPIKeyRequest struct {
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// UpdateAPIKeyRequest payload for key metadata changes.
type UpdateAPIKeyRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Active      *bool      `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at"`
	ClearExpiry bool       `json:"clear_expiry"`
}

// APIKeyResponse is the wire shape of a key. The secret value is included
// only by the create and regenerate endpoints.
type APIKeyResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Key         string     `json:"key,omitempty"`
	Description *string    `json:"description,omitempty"`
	CreatedBy   string     `json:"created_by"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewAPIKeyResponse maps a key, optionally revealing the secret.
func NewAPIKeyResponse(key *domain.APIKey, revealSecret bool) APIKeyResponse {
	resp := APIKeyResponse{
		ID:          key.ID,
		Name:        key.Name,
		Description: key.Description,
		CreatedBy:   key.CreatedBy,
		Active:      key.Active,
		ExpiresAt:   key.ExpiresAt,
		LastUsedAt:  key.LastUsedAt,
		CreatedAt:   key.CreatedAt,
		UpdatedAt:   key.UpdatedAt,
	}
	if revealSecret {
		resp.Key = key.Key
	}
	return resp
}

// NewAPIKeyResponses maps a slice of keys without secrets.
func NewAPIKeyResponses(keys []*domain.APIKey) []APIKeyResponse {
	out := make([]APIKeyResponse, 0, len(keys))
	for _, key := range keys {
		out = append(out, NewAPIKeyResponse(key, false))
	}
	return out
}
