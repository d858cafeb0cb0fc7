package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/commerce-service/internal/domain"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

// RequireRoles restricts a route to callers whose role is in the allow-set.
// It must run after SessionAuth; a missing principal is treated as an
// authentication failure, not a server error.
func RequireRoles(allowed ...domain.UserRole) fiber.Handler {
	allowedSet := make(map[domain.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden("insufficient permissions")
		}
		return c.Next()
	}
}

// RequireAdmin allows only administrators.
func RequireAdmin() fiber.Handler {
	return RequireRoles(domain.UserRoleAdmin)
}

// RequireStaff allows staff and administrators.
func RequireStaff() fiber.Handler {
	return RequireRoles(domain.UserRoleAdmin, domain.UserRoleStaff)
}
