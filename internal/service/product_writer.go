package service

import (
	"context"
	"errors"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errNoImagesStored = errors.New("none of the submitted images could be stored")

// Create validates a draft, uploads its images and persists it. Nothing is
// uploaded or written unless every validation passes.
func (s *catalogService) Create(ctx context.Context, identity domain.Identity, draft ProductDraft) (product *domain.Product, err error) {
	defer s.observe("create", time.Now(), &err)

	if !identity.HasStore() {
		return nil, &domain.AuthorizationError{Reason: "caller has no store"}
	}

	name, err := requireText("name", draft.Name)
	if err != nil {
		return nil, err
	}
	description, err := requireText("description", draft.Description)
	if err != nil {
		return nil, err
	}
	category, err := requireText("category", draft.Category)
	if err != nil {
		return nil, err
	}

	slug := catalog.Normalize(draft.Slug)
	if slug == "" {
		slug = catalog.Normalize(name)
	}
	if slug == "" {
		return nil, domain.NewValidationError("slug", "slug must contain at least one letter or digit")
	}

	pricing, err := draftPricing(draft)
	if err != nil {
		return nil, err
	}

	plan, err := planCreate(draft.Images)
	if err != nil {
		return nil, err
	}

	if err := s.ensureSlugFree(ctx, slug, uuid.Nil); err != nil {
		return nil, err
	}

	images := append(plan.base, s.uploadAll(ctx, plan.uploads)...)
	if len(images) == 0 {
		return nil, &domain.UpstreamError{Op: "upload images", Err: errNoImagesStored}
	}

	now := time.Now().UTC()
	product = &domain.Product{
		ID:               uuid.New(),
		StoreID:          identity.StoreID,
		Slug:             slug,
		Name:             name,
		Description:      description,
		ShortDescription: draft.ShortDescription,
		Category:         category,
		SKU:              draft.SKU,
		Tags:             normalizeTags(draft.Tags),
		Pricing:          pricing,
		Images:           images,
		Attributes:       draft.Attributes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	s.invalidate(ctx)
	if err := s.products.Insert(ctx, product); err != nil {
		if errors.Is(err, repository.ErrSlugTaken) {
			return nil, &domain.ConflictError{Slug: slug}
		}
		return nil, &domain.UpstreamError{Op: "insert product", Err: err}
	}

	s.invalidate(ctx)
	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug),
		zap.Bool("has_variants", product.HasVariants()),
		zap.Int("images", len(product.Images)),
	)

	return product, nil
}

// Update applies a partial patch to an existing product owned by the
// caller. Concurrent updates of one product are last-writer-wins.
func (s *catalogService) Update(ctx context.Context, identity domain.Identity, id uuid.UUID, patch ProductPatch) (product *domain.Product, err error) {
	defer s.observe("update", time.Now(), &err)

	existing, err := s.ownedProduct(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	updated := *existing

	if patch.Name != nil {
		if updated.Name, err = requireText("name", *patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Description != nil {
		if updated.Description, err = requireText("description", *patch.Description); err != nil {
			return nil, err
		}
	}
	if patch.Category != nil {
		if updated.Category, err = requireText("category", *patch.Category); err != nil {
			return nil, err
		}
	}
	if patch.ShortDescription != nil {
		updated.ShortDescription = *patch.ShortDescription
	}
	if patch.SKU != nil {
		updated.SKU = *patch.SKU
	}
	if patch.Tags != nil {
		updated.Tags = normalizeTags(patch.Tags)
	}
	if patch.Attributes != nil {
		updated.Attributes = patch.Attributes
	}

	if patch.Slug != nil {
		slug := catalog.Normalize(*patch.Slug)
		if slug == "" {
			return nil, domain.NewValidationError("slug", "slug must contain at least one letter or digit")
		}
		if slug != existing.Slug {
			if err := s.ensureSlugFree(ctx, slug, id); err != nil {
				return nil, err
			}
		}
		updated.Slug = slug
	}

	if updated.Pricing, err = patchPricing(existing.Pricing, patch); err != nil {
		return nil, err
	}

	plan, err := planUpdate(existing.Images, patch.Images, patch.ImageMode)
	if err != nil {
		return nil, err
	}
	if !plan.keep {
		images := append(plan.base, s.uploadAll(ctx, plan.uploads)...)
		if len(images) == 0 {
			return nil, &domain.UpstreamError{Op: "upload images", Err: errNoImagesStored}
		}
		updated.Images = images
	}

	updated.UpdatedAt = time.Now().UTC()

	s.invalidate(ctx)
	if err := s.products.UpdateByID(ctx, id, &updated); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlugTaken):
			return nil, &domain.ConflictError{Slug: updated.Slug}
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, &domain.NotFoundError{ID: id}
		}
		return nil, &domain.UpstreamError{Op: "update product", Err: err}
	}

	s.invalidate(ctx)
	s.logger.Info("Product updated",
		zap.String("product_id", id.String()),
		zap.String("slug", updated.Slug),
		zap.Int("images", len(updated.Images)),
	)

	return &updated, nil
}

// Delete removes a product owned by the caller
func (s *catalogService) Delete(ctx context.Context, identity domain.Identity, id uuid.UUID) (err error) {
	defer s.observe("delete", time.Now(), &err)

	if _, err := s.ownedProduct(ctx, identity, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return &domain.NotFoundError{ID: id}
		}
		return &domain.UpstreamError{Op: "delete product", Err: err}
	}

	s.invalidate(ctx)
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))

	return nil
}

// ownedProduct loads a product and checks that the caller's store owns it.
func (s *catalogService) ownedProduct(ctx context.Context, identity domain.Identity, id uuid.UUID) (*domain.Product, error) {
	if !identity.HasStore() {
		return nil, &domain.AuthorizationError{Reason: "caller has no store"}
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, &domain.NotFoundError{ID: id}
		}
		return nil, &domain.UpstreamError{Op: "find product", Err: err}
	}

	if !identity.Owns(product) {
		s.logger.Warn("Product write rejected for non-owner",
			zap.String("product_id", id.String()),
			zap.String("user_id", identity.UserID.String()),
		)
		return nil, &domain.AuthorizationError{Reason: "product belongs to another store"}
	}
	return product, nil
}

// ensureSlugFree is the fast-path uniqueness check. The unique index on
// products.slug stays the authority for concurrent writers.
func (s *catalogService) ensureSlugFree(ctx context.Context, slug string, self uuid.UUID) error {
	found, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil
		}
		return &domain.UpstreamError{Op: "check slug", Err: err}
	}
	if found.ID == self {
		return nil
	}
	return &domain.ConflictError{Slug: slug}
}

func (s *catalogService) observe(op string, started time.Time, errp *error) {
	s.metrics.ObserveWrite(op, outcomeOf(*errp), started)
}

func outcomeOf(err error) string {
	var (
		validation *domain.ValidationError
		conflict   *domain.ConflictError
		notFound   *domain.NotFoundError
		forbidden  *domain.AuthorizationError
	)
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &validation):
		return metrics.OutcomeValidation
	case errors.As(err, &conflict):
		return metrics.OutcomeConflict
	case errors.As(err, &notFound):
		return metrics.OutcomeNotFound
	case errors.As(err, &forbidden):
		return metrics.OutcomeForbidden
	default:
		return metrics.OutcomeError
	}
}
