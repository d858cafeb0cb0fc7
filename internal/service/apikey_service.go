package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/events"
	"github.com/spec-kit/commerce-service/internal/repository"
)

// APIKeyService manages the lifecycle of API keys. Authentication of
// presented keys lives in auth.KeyAuth; this service covers the management
// surface used by staff and admin routes.
type APIKeyService struct {
	keys       repository.APIKeyRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	prefix     string
}

// NewAPIKeyService builds the service.
func NewAPIKeyService(keys repository.APIKeyRepository, dispatcher events.Dispatcher, logger *zap.Logger, prefix string) *APIKeyService {
	return &APIKeyService{keys: keys, dispatcher: dispatcher, logger: logger, prefix: prefix}
}

// CreateAPIKeyInput carries creation parameters. The secret is always
// generated; callers cannot supply one.
type CreateAPIKeyInput struct {
	Name        string
	Description *string
	ExpiresAt   *time.Time
}

// Create generates a fresh secret and stores the key.
func (s *APIKeyService) Create(ctx context.Context, creatorID string, input CreateAPIKeyInput) (*domain.APIKey, error) {
	secret, err := auth.GenerateAPIKey(s.prefix)
	if err != nil {
		return nil, err
	}

	key := &domain.APIKey{
		Name:        input.Name,
		Key:         secret,
		Description: input.Description,
		CreatedBy:   creatorID,
		Active:      true,
		ExpiresAt:   input.ExpiresAt,
	}
	if err := s.keys.Create(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

// List returns all keys.
func (s *APIKeyService) List(ctx context.Context) ([]*domain.APIKey, error) {
	return s.keys.List(ctx)
}

// Get returns one key by identifier.
func (s *APIKeyService) Get(ctx context.Context, id string) (*domain.APIKey, error) {
	return s.keys.GetByID(ctx, id)
}

// UpdateAPIKeyInput carries mutable metadata. Nil fields are left unchanged.
type UpdateAPIKeyInput struct {
	Name        *string
	Description *string
	Active      *bool
	ExpiresAt   *time.Time
	ClearExpiry bool
}

// Update mutates key metadata. The secret value is untouched.
func (s *APIKeyService) Update(ctx context.Context, id string, input UpdateAPIKeyInput) (*domain.APIKey, error) {
	key, err := s.keys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		key.Name = *input.Name
	}
	if input.Description != nil {
		key.Description = input.Description
	}
	if input.Active != nil {
		key.Active = *input.Active
	}
	if input.ClearExpiry {
		key.ExpiresAt = nil
	} else if input.ExpiresAt != nil {
		key.ExpiresAt = input.ExpiresAt
	}

	if err := s.keys.Update(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Regenerate replaces the secret in place, invalidating the old value
// immediately. Active flag and expiry are preserved.
func (s *APIKeyService) Regenerate(ctx context.Context, actorID, id string) (*domain.APIKey, error) {
	secret, err := auth.GenerateAPIKey(s.prefix)
	if err != nil {
		return nil, err
	}
	if err := s.keys.UpdateSecret(ctx, id, secret); err != nil {
		return nil, err
	}

	key, err := s.keys.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventAPIKeyRegenerated,
			ActorID:   actorID,
			Timestamp: time.Now(),
			Payload:   events.APIKeyRegeneratedPayload{KeyID: key.ID, Name: key.Name},
		})
	}
	return key, nil
}

// Delete removes the key permanently.
func (s *APIKeyService) Delete(ctx context.Context, id string) error {
	return s.keys.Delete(ctx, id)
}
