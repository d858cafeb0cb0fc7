package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
)

type fakeKeyStore struct {
	mu   sync.Mutex
	seq  int
	keys map[string]*domain.APIKey
}

func newFakeKeyStore() *fakeKeyStore {
	return &fakeKeyStore{keys: make(map[string]*domain.APIKey)}
}

func (s *fakeKeyStore) Create(_ context.Context, key *domain.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	key.ID = "key-" + strconv.Itoa(s.seq)
	key.CreatedAt = time.Now()
	key.UpdatedAt = key.CreatedAt
	copied := *key
	s.keys[key.ID] = &copied
	return nil
}

func (s *fakeKeyStore) Update(_ context.Context, key *domain.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *key
	s.keys[key.ID] = &copied
	return nil
}

func (s *fakeKeyStore) GetByID(_ context.Context, id string) (*domain.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.keys[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *key
	return &copied, nil
}

func (s *fakeKeyStore) GetByValue(_ context.Context, value string) (*domain.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range s.keys {
		if key.Key == value && key.Active {
			copied := *key
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeKeyStore) List(_ context.Context) ([]*domain.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.APIKey, 0, len(s.keys))
	for _, key := range s.keys {
		copied := *key
		out = append(out, &copied)
	}
	return out, nil
}

func (s *fakeKeyStore) UpdateSecret(_ context.Context, id, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.keys[id]
	if !ok {
		return pgx.ErrNoRows
	}
	key.Key = value
	return nil
}

func (s *fakeKeyStore) UpdateLastUsed(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.keys[id]
	if !ok {
		return pgx.ErrNoRows
	}
	key.LastUsedAt = &at
	return nil
}

func (s *fakeKeyStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.keys, id)
	return nil
}

func newKeyService(store *fakeKeyStore) *APIKeyService {
	return NewAPIKeyService(store, nil, zap.NewNop(), "csk_")
}

func TestAPIKeyCreate(t *testing.T) {
	svc := newKeyService(newFakeKeyStore())

	key, err := svc.Create(context.Background(), "user-1", CreateAPIKeyInput{Name: "integration"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key.Key, "csk_"))
	assert.True(t, key.Active)
	assert.Equal(t, "user-1", key.CreatedBy)
	assert.Nil(t, key.ExpiresAt)
}

func TestAPIKeyRegenerate(t *testing.T) {
	store := newFakeKeyStore()
	svc := newKeyService(store)

	expiry := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	created, err := svc.Create(context.Background(), "user-1", CreateAPIKeyInput{Name: "rotating", ExpiresAt: &expiry})
	require.NoError(t, err)

	rotated, err := svc.Regenerate(context.Background(), "user-1", created.ID)
	require.NoError(t, err)

	// The secret changes but active state and expiry survive rotation.
	assert.NotEqual(t, created.Key, rotated.Key)
	assert.True(t, strings.HasPrefix(rotated.Key, "csk_"))
	assert.True(t, rotated.Active)
	require.NotNil(t, rotated.ExpiresAt)
	assert.True(t, expiry.Equal(*rotated.ExpiresAt))

	// The old secret no longer resolves.
	_, err = store.GetByValue(context.Background(), created.Key)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestAPIKeyUpdateMetadata(t *testing.T) {
	store := newFakeKeyStore()
	svc := newKeyService(store)

	expiry := time.Now().Add(time.Hour)
	created, err := svc.Create(context.Background(), "user-1", CreateAPIKeyInput{Name: "before", ExpiresAt: &expiry})
	require.NoError(t, err)

	name := "after"
	inactive := false
	updated, err := svc.Update(context.Background(), created.ID, UpdateAPIKeyInput{
		Name:        &name,
		Active:      &inactive,
		ClearExpiry: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Name)
	assert.False(t, updated.Active)
	assert.Nil(t, updated.ExpiresAt)
	// Metadata updates never touch the secret.
	assert.Equal(t, created.Key, updated.Key)
}

func TestAPIKeyDelete(t *testing.T) {
	store := newFakeKeyStore()
	svc := newKeyService(store)

	created, err := svc.Create(context.Background(), "user-1", CreateAPIKeyInput{Name: "doomed"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
