package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller attached to a request.
// The role comes from the signed claims, not the store, so a role change
// only takes effect once the subject's token is reissued.
type Principal struct {
	ID    string
	Email string
	Role  domain.UserRole
}

// SessionAuth validates bearer tokens and re-confirms the subject against
// the store before letting a request through.
type SessionAuth struct {
	tokens *TokenManager
	users  repository.UserRepository
	logger *zap.Logger
}

// NewSessionAuth constructs the middleware.
func NewSessionAuth(tokens *TokenManager, users repository.UserRepository, logger *zap.Logger) *SessionAuth {
	return &SessionAuth{tokens: tokens, users: users, logger: logger}
}

// Handle enforces authentication for protected routes. Checks run strictly
// in sequence and the principal is attached only after all of them pass.
func (m *SessionAuth) Handle(c *fiber.Ctx) error {
	token, ok := ExtractBearer(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return apperrors.NewUnauthorized("missing bearer token")
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		m.logger.Debug("token rejected", zap.Error(err))
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			m.logger.Debug("token subject not found", zap.String("user_id", claims.UserID()))
			return apperrors.NewUnauthorized("invalid or expired token")
		}
		return apperrors.MapError(err)
	}

	if !user.Active {
		m.logger.Debug("token subject inactive", zap.String("user_id", user.ID))
		return apperrors.NewUnauthorized("account disabled")
	}

	c.Locals(principalKey, &Principal{ID: user.ID, Email: claims.Email, Role: claims.Role})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller, if any.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
