package auth_test

import (
	"context"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/domain"
)

type fakeKeyRepo struct {
	mu   sync.Mutex
	seq  int
	keys map[string]*domain.APIKey
}

func newFakeKeyRepo() *fakeKeyRepo {
	return &fakeKeyRepo{keys: make(map[string]*domain.APIKey)}
}

func (r *fakeKeyRepo) Create(_ context.Context, key *domain.APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	key.ID = "key-" + strconv.Itoa(r.seq)
	key.CreatedAt = time.Now()
	key.UpdatedAt = key.CreatedAt
	copied := *key
	r.keys[key.ID] = &copied
	return nil
}

func (r *fakeKeyRepo) Update(_ context.Context, key *domain.APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[key.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *key
	r.keys[key.ID] = &copied
	return nil
}

func (r *fakeKeyRepo) GetByID(_ context.Context, id string) (*domain.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.keys[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *key
	return &copied, nil
}

func (r *fakeKeyRepo) GetByValue(_ context.Context, value string) (*domain.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range r.keys {
		if key.Key == value && key.Active {
			copied := *key
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeKeyRepo) List(_ context.Context) ([]*domain.APIKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.APIKey, 0, len(r.keys))
	for _, key := range r.keys {
		copied := *key
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeKeyRepo) UpdateSecret(_ context.Context, id, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.keys[id]
	if !ok {
		return pgx.ErrNoRows
	}
	key.Key = value
	return nil
}

func (r *fakeKeyRepo) UpdateLastUsed(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.keys[id]
	if !ok {
		return pgx.ErrNoRows
	}
	key.LastUsedAt = &at
	return nil
}

func (r *fakeKeyRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.keys, id)
	return nil
}

func (r *fakeKeyRepo) lastUsed(id string) *time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if key, ok := r.keys[id]; ok {
		return key.LastUsedAt
	}
	return nil
}

func seedKey(t *testing.T, repo *fakeKeyRepo, active bool, expiresAt *time.Time) *domain.APIKey {
	t.Helper()
	secret, err := auth.GenerateAPIKey("csk_")
	require.NoError(t, err)
	key := &domain.APIKey{Name: "test", Key: secret, CreatedBy: "user-1", Active: active, ExpiresAt: expiresAt}
	require.NoError(t, repo.Create(context.Background(), key))
	return key
}

func TestGenerateAPIKey(t *testing.T) {
	secret, err := auth.GenerateAPIKey("csk_")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(secret, "csk_"))
	assert.Len(t, secret, len("csk_")+32)
}

func TestGenerateAPIKeyUnique(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		secret, err := auth.GenerateAPIKey("csk_")
		require.NoError(t, err)
		_, dup := seen[secret]
		require.False(t, dup, "duplicate secret after %d draws", i)
		seen[secret] = struct{}{}
	}
}

func TestAuthenticateMissing(t *testing.T) {
	ka := auth.NewKeyAuth(newFakeKeyRepo(), zap.NewNop())
	_, err := ka.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, auth.ErrKeyMissing)
}

func TestAuthenticateUnknown(t *testing.T) {
	ka := auth.NewKeyAuth(newFakeKeyRepo(), zap.NewNop())
	_, err := ka.Authenticate(context.Background(), "csk_nope")
	assert.ErrorIs(t, err, auth.ErrKeyInvalid)
}

func TestAuthenticateInactive(t *testing.T) {
	repo := newFakeKeyRepo()
	future := time.Now().Add(time.Hour)
	key := seedKey(t, repo, false, &future)

	ka := auth.NewKeyAuth(repo, zap.NewNop())
	_, err := ka.Authenticate(context.Background(), key.Key)
	// An inactive key is indistinguishable from an unknown one.
	assert.ErrorIs(t, err, auth.ErrKeyInvalid)
}

func TestAuthenticateExpired(t *testing.T) {
	repo := newFakeKeyRepo()
	past := time.Now().Add(-time.Hour)
	key := seedKey(t, repo, true, &past)

	ka := auth.NewKeyAuth(repo, zap.NewNop())
	_, err := ka.Authenticate(context.Background(), key.Key)
	// Expiry rejects the key even though it is still marked active.
	assert.ErrorIs(t, err, auth.ErrKeyExpired)
}

func TestAuthenticateSuccessTouchesLastUsed(t *testing.T) {
	repo := newFakeKeyRepo()
	key := seedKey(t, repo, true, nil)

	ka := auth.NewKeyAuth(repo, zap.NewNop())
	got, err := ka.Authenticate(context.Background(), key.Key)
	require.NoError(t, err)
	assert.Equal(t, key.ID, got.ID)

	require.Eventually(t, func() bool {
		return repo.lastUsed(key.ID) != nil
	}, time.Second, 10*time.Millisecond)
}

func TestKeyAuthHeaderPrecedence(t *testing.T) {
	repo := newFakeKeyRepo()
	headerKey := seedKey(t, repo, true, nil)
	queryKey := seedKey(t, repo, true, nil)

	ka := auth.NewKeyAuth(repo, zap.NewNop())
	app := newApp()
	app.Get("/catalog", ka.Handle, func(c *fiber.Ctx) error {
		key, _ := auth.APIKeyFromContext(c)
		return c.JSON(fiber.Map{"key_id": key.ID})
	})

	// Header wins when both are supplied.
	req := httptest.NewRequest("GET", "/catalog?api_key="+queryKey.Key, nil)
	req.Header.Set(auth.HeaderAPIKey, headerKey.Key)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		return repo.lastUsed(headerKey.ID) != nil
	}, time.Second, 10*time.Millisecond)
	assert.Nil(t, repo.lastUsed(queryKey.ID))

	// Query parameter alone also authenticates.
	resp, err = app.Test(httptest.NewRequest("GET", "/catalog?api_key="+queryKey.Key, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// No credential at all is a 401.
	resp, err = app.Test(httptest.NewRequest("GET", "/catalog", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
