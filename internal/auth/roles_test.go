package auth_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
)

func issueFor(t *testing.T, tm *auth.TokenManager, repo *fakeUserRepo, role domain.UserRole) string {
	t.Helper()
	user := seedUser(t, repo, role)
	token, _, err := tm.Issue(user)
	require.NoError(t, err)
	return token
}

func TestRequireRolesWithoutPrincipal(t *testing.T) {
	// The role gate alone, with no session gate before it, rejects as an
	// authentication failure rather than crashing.
	app := newApp()
	app.Get("/guarded", auth.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAdmin(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Hour)
	repo := newFakeUserRepo()
	gate := auth.NewSessionAuth(tm, repo, zap.NewNop())

	app := newApp()
	app.Get("/admin", gate.Handle, auth.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	staffToken := issueFor(t, tm, repo, domain.UserRoleStaff)
	adminToken := issueFor(t, tm, repo, domain.UserRoleAdmin)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+staffToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+adminToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireStaff(t *testing.T) {
	tm := auth.NewTokenManager("secret", time.Hour)
	repo := newFakeUserRepo()
	gate := auth.NewSessionAuth(tm, repo, zap.NewNop())

	app := newApp()
	app.Get("/staff", gate.Handle, auth.RequireStaff(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for role, want := range map[domain.UserRole]int{
		domain.UserRoleCustomer: fiber.StatusForbidden,
		domain.UserRoleStaff:    fiber.StatusOK,
		domain.UserRoleAdmin:    fiber.StatusOK,
	} {
		token := issueFor(t, tm, repo, role)
		req := httptest.NewRequest("GET", "/staff", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, "role %s", role)
	}
}
