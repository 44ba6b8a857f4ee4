package service

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/cache"
	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/imagestore"
	"storefront/internal/metrics"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService defines the catalog write and read operations
type CatalogService interface {
	Create(ctx context.Context, identity domain.Identity, draft ProductDraft) (*domain.Product, error)
	Update(ctx context.Context, identity domain.Identity, id uuid.UUID, patch ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, identity domain.Identity, id uuid.UUID) error
	ListAll(ctx context.Context) ([]domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, draft CategoryDraft) (*domain.Category, error)
	Browse(ctx context.Context, query BrowseQuery) (*BrowseResult, error)
}

// Options tunes the catalog service
type Options struct {
	// UploadConcurrency bounds the parallel image uploads of one write.
	UploadConcurrency int
}

type catalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	images     imagestore.Store
	snapshot   cache.Cache
	metrics    *metrics.Metrics
	logger     *zap.Logger
	opts       Options
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	images imagestore.Store,
	snapshot cache.Cache,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts Options,
) CatalogService {
	if opts.UploadConcurrency <= 0 {
		opts.UploadConcurrency = 4
	}
	if snapshot == nil {
		snapshot = cache.NewNopCache()
	}
	return &catalogService{
		products:   products,
		categories: categories,
		images:     images,
		snapshot:   snapshot,
		metrics:    m,
		logger:     logger,
		opts:       opts,
	}
}

// ListAll returns the full catalog snapshot. No filtering or authorization
// happens here; selection belongs to Browse and to clients.
func (s *catalogService) ListAll(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	hit, err := s.snapshot.Get(ctx, cache.ProductsKey, &products)
	if err != nil {
		s.logger.Warn("Snapshot cache read failed", zap.Error(err))
	}
	if hit {
		s.metrics.SnapshotReads.WithLabelValues("hit").Inc()
		return products, nil
	}
	s.metrics.SnapshotReads.WithLabelValues("miss").Inc()

	products, err = s.products.ListAll(ctx)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "list products", Err: err}
	}

	if err := s.snapshot.Set(ctx, cache.ProductsKey, products); err != nil {
		s.logger.Warn("Snapshot cache write failed", zap.Error(err))
	}
	return products, nil
}

// GetBySlug returns a single product for the detail page
func (s *catalogService) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, &domain.NotFoundError{Slug: slug}
	}

	product, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, &domain.NotFoundError{Slug: slug}
		}
		return nil, &domain.UpstreamError{Op: "find product", Err: err}
	}
	return product, nil
}

// ListCategories returns the category tree used by the resolver
func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	hit, err := s.snapshot.Get(ctx, cache.CategoriesKey, &categories)
	if err != nil {
		s.logger.Warn("Category cache read failed", zap.Error(err))
	}
	if hit {
		return categories, nil
	}

	categories, err = s.categories.List(ctx)
	if err != nil {
		return nil, &domain.UpstreamError{Op: "list categories", Err: err}
	}

	if err := s.snapshot.Set(ctx, cache.CategoriesKey, categories); err != nil {
		s.logger.Warn("Category cache write failed", zap.Error(err))
	}
	return categories, nil
}

// BrowseQuery is a facet request. CategoryPath is a route path or slug; the
// other facets are applied as given.
type BrowseQuery struct {
	CategoryPath string
	Filter       catalog.Filter
	Sort         catalog.SortKey
}

// BrowseResult is the visible subset plus the header label. Category is nil
// when the path did not resolve, in which case Label is prettified.
type BrowseResult struct {
	Products []domain.Product `json:"products"`
	Category *domain.Category `json:"category,omitempty"`
	Label    string           `json:"label"`
	Total    int              `json:"total"`
}

// Browse runs the facet engine over the catalog snapshot.
func (s *catalogService) Browse(ctx context.Context, query BrowseQuery) (*BrowseResult, error) {
	products, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &BrowseResult{}
	filter := query.Filter

	if strings.TrimSpace(query.CategoryPath) != "" {
		categories, err := s.ListCategories(ctx)
		if err != nil {
			return nil, err
		}

		if matched, ok := catalog.ResolvePath(query.CategoryPath, categories); ok {
			result.Category = matched
			result.Label = matched.Name
			filter.Categories = catalog.Subtree(*matched, categories)
		} else {
			result.Label = catalog.Prettify(query.CategoryPath)
			filter.Categories = categoriesMatching(products, catalog.Leaf(query.CategoryPath))
			if len(filter.Categories) == 0 {
				// Nothing carries this category; keep the predicate active.
				filter.Categories = []string{result.Label}
			}
		}
	}

	result.Products = catalog.FilterAndSort(products, filter, query.Sort)
	result.Total = len(result.Products)

	s.metrics.FacetRuns.WithLabelValues(string(query.Sort)).Inc()
	s.metrics.FacetResults.Observe(float64(result.Total))

	return result, nil
}

// categoriesMatching collects the product category names whose slug form
// equals the slug form of candidate.
func categoriesMatching(products []domain.Product, candidate string) []string {
	want := catalog.Normalize(candidate)
	if want == "" {
		return nil
	}

	seen := map[string]bool{}
	var names []string
	for _, p := range products {
		if !seen[p.Category] && catalog.Normalize(p.Category) == want {
			seen[p.Category] = true
			names = append(names, p.Category)
		}
	}
	return names
}

// invalidate drops the cached snapshot. Writers call it on both sides of the
// store write: a reader that loaded the old catalog mid-write can still set
// it again, so the snapshot TTL bounds how long that copy stays visible.
func (s *catalogService) invalidate(ctx context.Context) {
	if err := s.snapshot.Invalidate(ctx, cache.ProductsKey); err != nil {
		s.logger.Warn("Snapshot cache invalidation failed", zap.Error(err))
	}
}
