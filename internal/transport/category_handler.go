package transport

import (
	"net/http"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateCategoryRequest represents the category creation payload
type CreateCategoryRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Slug     string  `json:"slug" validate:"omitempty,max=100"`
	ParentID *string `json:"parentId" validate:"omitempty,uuid"`
}

// ResolveResponse is the resolver outcome for a category path. Category is
// nil when nothing matched; Label is always set for display.
type ResolveResponse struct {
	Category *domain.Category `json:"category"`
	Slug     string           `json:"slug"`
	Label    string           `json:"label"`
	Matched  bool             `json:"matched"`
}

// CategoryHandler handles HTTP requests for the category tree
type CategoryHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(catalog service.CatalogService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{catalog: catalog, logger: logger}
}

// RegisterRoutes registers all category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/resolve/*", h.Resolve)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Post("/", h.Create)
		})
	})
}

// List returns every category
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// Resolve maps a route path such as /jewellery/gold-rings to a category
func (h *CategoryHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(chi.URLParam(r, "*"), "/")
	if path == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "category path is required")
		return
	}

	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	resp := ResolveResponse{Label: catalog.Prettify(path), Slug: catalog.Normalize(catalog.Leaf(path))}
	if matched, ok := catalog.ResolvePath(path, categories); ok {
		resp = ResolveResponse{
			Category: matched,
			Slug:     catalog.CategorySlug(*matched),
			Label:    matched.Name,
			Matched:  true,
		}
	}
	middleware.RespondWithJSON(w, http.StatusOK, resp)
}

// Create adds a category. Admin only.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category validation failed", zap.Error(err))
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft := service.CategoryDraft{Name: req.Name, Slug: req.Slug}
	if req.ParentID != nil {
		parentID := uuid.MustParse(*req.ParentID)
		draft.ParentID = &parentID
	}

	category, err := h.catalog.CreateCategory(r.Context(), draft)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}
