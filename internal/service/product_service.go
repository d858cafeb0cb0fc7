package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/persistence"
	"github.com/spec-kit/commerce-service/internal/repository"
	apperrors "github.com/spec-kit/commerce-service/pkg/util"
)

const catalogCacheKey = "catalog:products"

// ProductService covers catalog product management and the public,
// API-key-authenticated read path. The public listing is cached in Redis
// best-effort; cache failures fall back to the store.
type ProductService struct {
	products repository.ProductRepository
	cache    *persistence.Redis
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewProductService builds the service.
func NewProductService(products repository.ProductRepository, cache *persistence.Redis, cacheTTL time.Duration, logger *zap.Logger) *ProductService {
	return &ProductService{products: products, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Create stores a product and invalidates the public cache.
func (s *ProductService) Create(ctx context.Context, product *domain.Product) error {
	if err := s.products.Create(ctx, product); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// Update stores product changes and invalidates the public cache.
func (s *ProductService) Update(ctx context.Context, product *domain.Product) error {
	if err := s.products.Update(ctx, product); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// List returns all products, including inactive ones.
func (s *ProductService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.products.List(ctx)
}

// Delete removes a product and invalidates the public cache.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// PublicList returns active products for the external catalog API.
func (s *ProductService) PublicList(ctx context.Context) ([]*domain.Product, error) {
	if data, err := s.cache.GetBytes(ctx, catalogCacheKey); err == nil {
		var cached []*domain.Product
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		s.logger.Warn("corrupt catalog cache entry; dropping", zap.Error(err))
		s.invalidateCache(ctx)
	} else if !errors.Is(err, redis.Nil) && !errors.Is(err, persistence.ErrCacheUnavailable) {
		s.logger.Warn("catalog cache read failed", zap.Error(err))
	}

	products, err := s.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(products); err == nil {
		if err := s.cache.SetBytes(ctx, catalogCacheKey, data, s.cacheTTL); err != nil && !errors.Is(err, persistence.ErrCacheUnavailable) {
			s.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return products, nil
}

// PublicGet returns one active product for the external catalog API.
func (s *ProductService) PublicGet(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, apperrors.NewNotFound("product", nil)
	}
	return product, nil
}

func (s *ProductService) invalidateCache(ctx context.Context) {
	if err := s.cache.Delete(ctx, catalogCacheKey); err != nil && !errors.Is(err, persistence.ErrCacheUnavailable) {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
