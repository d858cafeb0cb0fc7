package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/commerce-service/internal/domain"
)

// ProductRepository defines persistence access for catalog products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	ListActive(ctx context.Context) ([]*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a Postgres-backed implementation.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (name, description, price_cents, stock, category_id, active)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Stock,
		product.CategoryID,
		product.Active,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	const query = `
        UPDATE products SET name=$1, description=$2, price_cents=$3, stock=$4, category_id=$5, active=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Stock,
		product.CategoryID,
		product.Active,
		product.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const query = `
        SELECT id, name, description, price_cents, stock, category_id, active, created_at, updated_at
        FROM products WHERE id=$1`

	return scanProduct(r.pool.QueryRow(ctx, query, id))
}

func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	const query = `
        SELECT id, name, description, price_cents, stock, category_id, active, created_at, updated_at
        FROM products ORDER BY created_at`

	return r.queryProducts(ctx, query)
}

func (r *productRepository) ListActive(ctx context.Context) ([]*domain.Product, error) {
	const query = `
        SELECT id, name, description, price_cents, stock, category_id, active, created_at, updated_at
        FROM products WHERE active=TRUE ORDER BY created_at`

	return r.queryProducts(ctx, query)
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM products WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string) ([]*domain.Product, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.PriceCents,
		&product.Stock,
		&product.CategoryID,
		&product.Active,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &product, nil
}
