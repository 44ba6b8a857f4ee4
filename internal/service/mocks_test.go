package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/imagestore"
	"storefront/internal/metrics"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mock repositories for testing
type mockProductRepository struct {
	mu        sync.Mutex
	products  map[uuid.UUID]*domain.Product
	listCalls int
	failWith  error
	// skipSlugIndex makes FindBySlug miss so the insert-time unique check
	// is the one that fires.
	skipSlugIndex bool
	// onWrite runs at the start of every mutating call, outside the lock.
	onWrite func()
}

func (m *mockProductRepository) writing() {
	if m.onWrite != nil {
		m.onWrite()
	}
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockProductRepository) slugTaken(slug string, self uuid.UUID) bool {
	for id, p := range m.products {
		if p.Slug == slug && id != self {
			return true
		}
	}
	return false
}

func (m *mockProductRepository) Insert(ctx context.Context, product *domain.Product) error {
	m.writing()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if m.slugTaken(product.Slug, product.ID) {
		return repository.ErrSlugTaken
	}
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepository) UpdateByID(ctx context.Context, id uuid.UUID, product *domain.Product) error {
	m.writing()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	if m.slugTaken(product.Slug, id) {
		return repository.ErrSlugTaken
	}
	stored := *product
	m.products[id] = &stored
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.writing()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.skipSlugIndex {
		for _, p := range m.products {
			if p.Slug == slug {
				cp := *p
				return &cp, nil
			}
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProductRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products)
}

type mockCategoryRepository struct {
	categories []domain.Category
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	m.categories = append(m.categories, *category)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	return append([]domain.Category{}, m.categories...), nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	for _, c := range m.categories {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

var errUploadRejected = errors.New("upload rejected")

// mockImageStore hands out predictable URLs and fails any upload whose
// filename starts with "broken".
type mockImageStore struct {
	mu    sync.Mutex
	calls int
}

func (m *mockImageStore) Upload(ctx context.Context, upload imagestore.Upload) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if strings.HasPrefix(upload.Filename, "broken") {
		return "", errUploadRejected
	}
	return fmt.Sprintf("https://cdn.test/%s", upload.Filename), nil
}

func (m *mockImageStore) uploads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type testEnv struct {
	service    CatalogService
	products   *mockProductRepository
	categories *mockCategoryRepository
	images     *mockImageStore
	metrics    *metrics.Metrics
	identity   domain.Identity
}

func newTestEnv() *testEnv {
	env := &testEnv{
		products:   newMockProductRepository(),
		categories: &mockCategoryRepository{},
		images:     &mockImageStore{},
		metrics:    metrics.New(),
		identity:   domain.Identity{UserID: uuid.New(), StoreID: uuid.New()},
	}
	env.service = NewCatalogService(env.products, env.categories, env.images, nil, env.metrics, zap.NewNop(), Options{UploadConcurrency: 2})
	return env
}

func upload(name string) imagestore.Upload {
	return imagestore.Upload{Filename: name, Data: []byte("img")}
}

func ptr[T any](v T) *T {
	return &v
}
