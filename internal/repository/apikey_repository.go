package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// APIKeyRepository defines persistence access for API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	Update(ctx context.Context, key *domain.APIKey) error
	GetByID(ctx context.Context, id string) (*domain.APIKey, error)
	// GetByValue resolves a presented secret to its record, restricted to
	// active keys.
	GetByValue(ctx context.Context, value string) (*domain.APIKey, error)
	List(ctx context.Context) ([]*domain.APIKey, error)
	UpdateSecret(ctx context.Context, id, value string) error
	UpdateLastUsed(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type apiKeyRepository struct {
	pool *pgxpool.Pool
}

// NewAPIKeyRepository returns a Postgres-backed implementation.
func NewAPIKeyRepository(pool *pgxpool.Pool) APIKeyRepository {
	return &apiKeyRepository{pool: pool}
}

func (r *apiKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	const query = `
        INSERT INTO api_keys (name, key, description, created_by, active, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		key.Name,
		key.Key,
		key.Description,
		key.CreatedBy,
		key.Active,
		key.ExpiresAt,
	).Scan(&key.ID, &key.CreatedAt, &key.UpdatedAt)
}

func (r *apiKeyRepository) Update(ctx context.Context, key *domain.APIKey) error {
	const query = `
        UPDATE api_keys SET name=$1, description=$2, active=$3, expires_at=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		key.Name,
		key.Description,
		key.Active,
		key.ExpiresAt,
		key.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *apiKeyRepository) GetByID(ctx context.Context, id string) (*domain.APIKey, error) {
	const query = `
        SELECT id, name, key, description, created_by, active, expires_at, last_used_at, created_at, updated_at
        FROM api_keys WHERE id=$1`

	return scanAPIKey(r.pool.QueryRow(ctx, query, id))
}

func (r *apiKeyRepository) GetByValue(ctx context.Context, value string) (*domain.APIKey, error) {
	const query = `
        SELECT id, name, key, description, created_by, active, expires_at, last_used_at, created_at, updated_at
        FROM api_keys WHERE key=$1 AND active=TRUE`

	return scanAPIKey(r.pool.QueryRow(ctx, query, value))
}

func (r *apiKeyRepository) List(ctx context.Context) ([]*domain.APIKey, error) {
	const query = `
        SELECT id, name, key, description, created_by, active, expires_at, last_used_at, created_at, updated_at
        FROM api_keys ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*domain.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (r *apiKeyRepository) UpdateSecret(ctx context.Context, id, value string) error {
	const query = `UPDATE api_keys SET key=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, value, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *apiKeyRepository) UpdateLastUsed(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE api_keys SET last_used_at=$1 WHERE id=$2`
	_, err := r.pool.Exec(ctx, query, at, id)
	return err
}

func (r *apiKeyRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM api_keys WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAPIKey(row pgx.Row) (*domain.APIKey, error) {
	var key domain.APIKey
	if err := row.Scan(
		&key.ID,
		&key.Name,
		&key.Key,
		&key.Description,
		&key.CreatedBy,
		&key.Active,
		&key.ExpiresAt,
		&key.LastUsedAt,
		&key.CreatedAt,
		&key.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &key, nil
}
