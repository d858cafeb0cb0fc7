package service

import (
	"context"

	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/repository"
)

// CategoryService covers category management.
type CategoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService builds the service.
func NewCategoryService(categories repository.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// Create stores a category.
func (s *CategoryService) Create(ctx context.Context, category *domain.Category) error {
	return s.categories.Create(ctx, category)
}

// Update stores category changes.
func (s *CategoryService) Update(ctx context.Context, category *domain.Category) error {
	return s.categories.Update(ctx, category)
}

// Get returns one category.
func (s *CategoryService) Get(ctx context.Context, id string) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}
