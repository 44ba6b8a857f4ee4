package transport

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/imagestore"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for catalog products
type ProductHandler struct {
	catalog        service.CatalogService
	stores         repository.StoreRepository
	logger         *zap.Logger
	maxUploadBytes int64
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog service.CatalogService, stores repository.StoreRepository, logger *zap.Logger, maxUploadBytes int64) *ProductHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &ProductHandler{
		catalog:        catalog,
		stores:         stores,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes registers all product routes. Writes go through the auth
// middleware followed by the given write middlewares.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler, writeMiddlewares ...func(http.Handler) http.Handler) {
	r.Get("/api/catalog/browse", h.Browse)

	r.Route("/api/products", func(r chi.Router) {
		// Public routes
		r.Get("/", h.List)
		r.Get("/{slug}", h.Get)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(writeMiddlewares...)
			r.Post("/", h.Create)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns the full catalog snapshot
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListAll(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Get returns a single product by slug
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Browse runs the facet engine for a storefront listing page
func (h *ProductHandler) Browse(w http.ResponseWriter, r *http.Request) {
	query, err := parseBrowseQuery(r)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	result, err := h.catalog.Browse(r.Context(), query)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	req, uploads, ok := h.decode(w, r)
	if !ok {
		return
	}

	product, err := h.catalog.Create(r.Context(), identity, req.Draft(uploads))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update handles partial product updates
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	req, uploads, ok := h.decode(w, r)
	if !ok {
		return
	}
	patch, err := req.Patch(uploads)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	product, err := h.catalog.Update(r.Context(), identity, id, patch)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.catalog.Delete(r.Context(), identity, id); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	identity, err := identityFromRequest(r.Context(), h.stores)
	if err != nil {
		if errors.Is(err, errMissingIdentity) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
			return domain.Identity{}, false
		}
		respondWithServiceError(w, h.logger, err)
		return domain.Identity{}, false
	}
	return identity, true
}

func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		return uuid.Nil, false
	}
	return id, true
}

func (h *ProductHandler) decode(w http.ResponseWriter, r *http.Request) (*ProductRequest, []imagestore.Upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	req, uploads, err := decodeProductRequest(r, h.maxUploadBytes)
	if err == nil {
		return req, uploads, true
	}

	h.logger.Debug("Product request rejected", zap.Error(err))

	var validation *domain.ValidationError
	switch {
	case isBodyTooLarge(err):
		middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.As(err, &validation):
		respondWithServiceError(w, h.logger, err)
	default:
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return nil, nil, false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
	}
	return nil, nil, false
}

// parseBrowseQuery reads the facet query string. A single price bound
// leaves the other end open.
func parseBrowseQuery(r *http.Request) (service.BrowseQuery, error) {
	q := r.URL.Query()
	query := service.BrowseQuery{
		CategoryPath: q.Get("category"),
		Sort:         catalog.SortNewest,
	}

	if s := q.Get("sort"); s != "" {
		key, ok := catalog.ParseSortKey(s)
		if !ok {
			return query, domain.NewValidationError("sort", "unknown sort key "+s)
		}
		query.Sort = key
	}

	minPrice, hasMin, err := floatParam(q.Get("minPrice"), "minPrice")
	if err != nil {
		return query, err
	}
	maxPrice, hasMax, err := floatParam(q.Get("maxPrice"), "maxPrice")
	if err != nil {
		return query, err
	}
	if hasMin || hasMax {
		if !hasMax {
			maxPrice = math.Inf(1)
		}
		if minPrice > maxPrice {
			return query, domain.NewValidationError("minPrice", "minPrice must not exceed maxPrice")
		}
		query.Filter.PriceRange = &catalog.PriceRange{Min: minPrice, Max: maxPrice}
	}

	if query.Filter.MinRating, _, err = floatParam(q.Get("minRating"), "minRating"); err != nil {
		return query, err
	}

	if s := strings.TrimSpace(q.Get("inStock")); s != "" {
		inStock, err := cast.ToBoolE(s)
		if err != nil {
			return query, domain.NewValidationError("inStock", "inStock must be true or false")
		}
		query.Filter.InStock = inStock
	}

	return query, nil
}

func floatParam(raw, name string) (float64, bool, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, false, nil
	}
	n, ok := domain.ParseNumber(raw)
	if !ok {
		return 0, false, domain.NewValidationError(name, name+" must be a number")
	}
	return n, true, nil
}
