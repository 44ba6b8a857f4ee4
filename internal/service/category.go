package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/cache"
	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryDraft is the input of CreateCategory. An empty Slug lets the
// resolver derive it from the name.
type CategoryDraft struct {
	Name     string
	Slug     string
	ParentID *uuid.UUID
}

// CreateCategory adds a category to the two-level tree. A parent must be an
// existing root category.
func (s *catalogService) CreateCategory(ctx context.Context, draft CategoryDraft) (*domain.Category, error) {
	name, err := requireText("name", draft.Name)
	if err != nil {
		return nil, err
	}

	slug := ""
	if strings.TrimSpace(draft.Slug) != "" {
		if slug = catalog.Normalize(draft.Slug); slug == "" {
			return nil, domain.NewValidationError("slug", "slug must contain at least one letter or digit")
		}
	}

	if draft.ParentID != nil {
		parent, err := s.categories.FindByID(ctx, *draft.ParentID)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, domain.NewValidationError("parentId", "parent category does not exist")
			}
			return nil, &domain.UpstreamError{Op: "find category", Err: err}
		}
		if !parent.IsRoot() {
			return nil, domain.NewValidationError("parentId", "categories nest at most two levels deep")
		}
	}

	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		ParentID:  draft.ParentID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, &domain.ConflictError{Slug: catalog.CategorySlug(*category)}
		}
		return nil, &domain.UpstreamError{Op: "create category", Err: err}
	}

	if err := s.snapshot.Invalidate(ctx, cache.CategoriesKey); err != nil {
		s.logger.Warn("Category cache invalidation failed", zap.Error(err))
	}
	s.logger.Info("Category created", zap.String("category_id", category.ID.String()), zap.String("name", name))

	return category, nil
}
