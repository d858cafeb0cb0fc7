package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// API key authentication failures.
var (
	ErrKeyMissing = errors.New("api key missing")
	ErrKeyInvalid = errors.New("api key invalid")
	ErrKeyExpired = errors.New("api key expired")
)

const (
	apiKeyContextKey = "auth_api_key"

	// HeaderAPIKey is checked before QueryAPIKey when both are supplied.
	HeaderAPIKey = "X-API-Key"
	QueryAPIKey  = "api_key"
)

// GenerateAPIKey produces a new opaque secret: the configured prefix followed
// by 128 bits from crypto/rand, hex encoded.
func GenerateAPIKey(prefix string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return prefix + hex.EncodeToString(buf), nil
}

// KeyAuth authenticates requests bearing an API key.
type KeyAuth struct {
	keys   repository.APIKeyRepository
	logger *zap.Logger
}

// NewKeyAuth constructs the middleware.
func NewKeyAuth(keys repository.APIKeyRepository, logger *zap.Logger) *KeyAuth {
	return &KeyAuth{keys: keys, logger: logger}
}

// Authenticate validates a presented secret. The store lookup only returns
// active keys; expiry is evaluated separately so an expired-but-active key
// still fails. On success the last-used timestamp is recorded asynchronously,
// last write wins under concurrent use of the same key.
func (m *KeyAuth) Authenticate(ctx context.Context, presented string) (*domain.APIKey, error) {
	if presented == "" {
		return nil, ErrKeyMissing
	}

	key, err := m.keys.GetByValue(ctx, presented)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyInvalid
		}
		return nil, err
	}

	// The lookup already excluded inactive keys, so unusable here means expired.
	if !key.Usable(time.Now()) {
		return nil, ErrKeyExpired
	}

	m.touch(key.ID)
	return key, nil
}

// touch records key usage without holding up the request.
func (m *KeyAuth) touch(id string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.keys.UpdateLastUsed(ctx, id, time.Now()); err != nil {
			m.logger.Warn("api key last-used update failed", zap.String("key_id", id), zap.Error(err))
		}
	}()
}

// Handle enforces API key authentication. The header takes precedence over
// the query parameter when both are present.
func (m *KeyAuth) Handle(c *fiber.Ctx) error {
	presented := c.Get(HeaderAPIKey)
	if presented == "" {
		presented = c.Query(QueryAPIKey)
	}

	key, err := m.Authenticate(c.Context(), presented)
	if err != nil {
		switch {
		case errors.Is(err, ErrKeyMissing):
			return apperrors.NewUnauthorized("missing api key")
		case errors.Is(err, ErrKeyExpired):
			m.logger.Debug("expired api key presented")
			return apperrors.NewUnauthorized("invalid api key")
		case errors.Is(err, ErrKeyInvalid):
			return apperrors.NewUnauthorized("invalid api key")
		default:
			return apperrors.MapError(err)
		}
	}

	c.Locals(apiKeyContextKey, key)
	return c.Next()
}

// APIKeyFromContext retrieves the validated key record, if any.
func APIKeyFromContext(c *fiber.Ctx) (*domain.APIKey, bool) {
	val := c.Locals(apiKeyContextKey)
	if val == nil {
		return nil, false
	}
	key, ok := val.(*domain.APIKey)
	return key, ok
}
