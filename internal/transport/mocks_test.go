package transport

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/imagestore"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

// Mock repositories for testing
type mockProductRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]domain.Product
}

func (m *mockProductRepository) Insert(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Slug == product.Slug {
			return repository.ErrSlugTaken
		}
	}
	m.products[product.ID] = *product
	return nil
}

func (m *mockProductRepository) UpdateByID(ctx context.Context, id uuid.UUID, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[id] = *product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
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
	return &p, nil
}

func (m *mockProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
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
			return &c, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

type mockStoreRepository struct {
	stores map[uuid.UUID]domain.Store
}

func (m *mockStoreRepository) Create(ctx context.Context, store *domain.Store) error {
	if _, ok := m.stores[store.OwnerID]; ok {
		return repository.ErrStoreAlreadyExists
	}
	m.stores[store.OwnerID] = *store
	return nil
}

func (m *mockStoreRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Store, error) {
	s, ok := m.stores[ownerID]
	if !ok {
		return nil, repository.ErrStoreNotFound
	}
	return &s, nil
}

type mockImageStore struct{}

func (mockImageStore) Upload(ctx context.Context, upload imagestore.Upload) (string, error) {
	return "https://cdn.test/" + upload.Filename, nil
}

// testAPI is a router wired like the server, backed by in-memory mocks.
type testAPI struct {
	router     http.Handler
	products   *mockProductRepository
	categories *mockCategoryRepository
	stores     *mockStoreRepository
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	api := &testAPI{
		products:   &mockProductRepository{products: map[uuid.UUID]domain.Product{}},
		categories: &mockCategoryRepository{},
		stores:     &mockStoreRepository{stores: map[uuid.UUID]domain.Store{}},
	}

	logger := zap.NewNop()
	svc := service.NewCatalogService(api.products, api.categories, mockImageStore{}, nil, metrics.New(), logger, service.Options{})

	r := chi.NewRouter()
	auth := middleware.AuthMiddleware(testSecret, logger)
	NewProductHandler(svc, api.stores, logger, 1<<20).RegisterRoutes(r, auth, middleware.RequireRole([]string{"merchant", "admin"}, logger))
	NewCategoryHandler(svc, logger).RegisterRoutes(r, auth, middleware.RequireAdmin(logger))
	api.router = r
	return api
}

// merchant registers a user owning a store and returns a bearer token.
func (api *testAPI) merchant(t *testing.T) (string, domain.Store) {
	t.Helper()
	store := domain.Store{ID: uuid.New(), OwnerID: uuid.New(), Name: "Atelier"}
	if err := api.stores.Create(context.Background(), &store); err != nil {
		t.Fatalf("create store: %v", err)
	}
	return token(t, store.OwnerID, "merchant"), store
}

func token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}
