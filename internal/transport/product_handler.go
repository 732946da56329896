package transport

import (
	"context"
	"net/http"
	"strconv"

	"catalog-curator/internal/middleware"
	"catalog-curator/internal/service"
	"catalog-curator/internal/slug"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BulkRequest represents a bulk operation payload
type BulkRequest struct {
	IDs []int64 `json:"ids" validate:"required"`
}

// GenerateSlugRequest represents a slug generation payload
type GenerateSlugRequest struct {
	SourceText    string `json:"source_text" validate:"required"`
	EntityType    string `json:"entity_type" validate:"required,oneof=product category marketplace"`
	ExcludeID     int64  `json:"exclude_id"`
	KeepStopWords bool   `json:"keep_stop_words"`
	MaxWords      int    `json:"max_words" validate:"gte=0"`
}

// GenerateSlugResponse carries the generated slug
type GenerateSlugResponse struct {
	Slug string `json:"slug"`
}

// SlugCheckResponse carries a uniqueness verdict
type SlugCheckResponse struct {
	Slug   string `json:"slug"`
	Unique bool   `json:"unique"`
}

// ProductHandler handles HTTP requests for product curation operations
type ProductHandler struct {
	catalog *service.CatalogService
	slugs   *slug.Service
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog *service.CatalogService, slugs *slug.Service, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		slugs:   slugs,
		logger:  logger,
	}
}

// RegisterRoutes registers all curation routes behind the given middleware
// chain, usually token auth followed by the admin-role check
func (h *ProductHandler) RegisterRoutes(r chi.Router, middlewares ...func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middlewares...)

		r.Route("/products", func(r chi.Router) {
			r.Post("/", h.Create)
			r.Post("/bulk/{op}", h.Bulk)
			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", h.Update)
				r.Delete("/", h.Delete)
				r.Post("/submit", h.Submit)
				r.Post("/verify", h.Verify)
				r.Post("/publish", h.Publish)
				r.Post("/archive", h.Archive)
				r.Post("/restore", h.Restore)
				r.Delete("/purge", h.Purge)
			})
		})

		r.Post("/categories/{id}/activate", h.ActivateCategory)
		r.Post("/slug/generate", h.GenerateSlug)
		r.Get("/slug/check", h.CheckSlug)
	})
}

// adminID pulls the acting admin from the authenticated request
func (h *ProductHandler) adminID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	adminID, ok := middleware.GetAdminID(r.Context())
	if !ok {
		h.logger.Error("Missing admin id on authenticated request")
		middleware.RespondWithJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return 0, false
	}
	return adminID, true
}

// pathID parses the {id} route parameter
func (h *ProductHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// respondResult renders a validation result with the right status code
func (h *ProductHandler) respondResult(w http.ResponseWriter, result *service.Result, okStatus int) {
	if result.Valid {
		middleware.RespondWithJSON(w, okStatus, result)
		return
	}
	middleware.RespondWithJSON(w, http.StatusUnprocessableEntity, result)
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.adminID(w, r)
	if !ok {
		return
	}

	var input service.CreateProductInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		if errs := middleware.FormatValidationErrors(err); len(errs) > 0 {
			middleware.RespondWithValidationErrors(w, errs)
			return
		}
		middleware.RespondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, product, err := h.catalog.Create(r.Context(), adminID, input)
	if err != nil {
		middleware.RespondWithInfraError(w, h.logger, err)
		return
	}
	if !result.Valid {
		h.respondResult(w, result, http.StatusCreated)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, map[string]any{
		"result":  result,
		"product": product,
	})
}

// Update handles partial product updates
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.adminID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var patch service.UpdateProductPatch
	if err := middleware.DecodeAndValidate(r, &patch); err != nil {
		if errs := middleware.FormatValidationErrors(err); len(errs) > 0 {
			middleware.RespondWithValidationErrors(w, errs)
			return
		}
		middleware.RespondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.catalog.Update(r.Context(), adminID, id, patch)
	if err != nil {
		middleware.RespondWithInfraError(w, h.logger, err)
		return
	}
	h.respondResult(w, result, http.StatusOK)
}

// Submit moves a draft into the verification queue
func (h *ProductHandler) Submit(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.adminID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	result, err := h.catalog.Submit(r.Context(), adminID, id)
	if err != nil {
		middleware.RespondWithInfraError(w, h.logger, err)
		return
	}
	h.respondResult(w, result, http.StatusOK)
}

// Verify runs the publication gate toward VERIFIED
func (h *ProductHandler) Verify(w http.ResponseWriter, r *http.Request) {
	h.gateTransition(w, r, h.catalog.Verify)
}

// Publish runs the publication gate toward PUBLISHED
func (h *ProductHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.gateTransition(w, r, h.catalog.Publish)
}

func (h *ProductHandler) gateTransition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, req service.PublishRequest) (*service.Result, error),
) {
	adminID, ok := h.adminID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	force := r.URL.Query().Get("force") == "true"

	result, err := op(r.Context(), service.PublishRequest{
		ProductID: id,
		AdminID:   adminID,
		Force:     force,
	})
	if err != nil {
		middleware.RespondWithInfraError(w, h.logger, err)
		return
	}
	h.respondResult(w, result, http.StatusOK)
}

// Archive moves a product into ARCHIVED
func (h *ProductHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.catalog.Archive)
}

// Restore brings an archived or deleted product back for re-verification
func (h *ProductHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.simpleTransition(w, r, h.catalog.Restore)
}

func (h *ProductHandler) simpleTransition(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, adminID, productID int64) (*service.Result, error),
) {
	adminID, ok := h.adminID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	result, err := op(r.Context(), adminID, id)
	if err != nil {
		middleware.RespondWithInfraError(w, h.logger, err)
		return
	}
	h.respondResult(w, result, http.StatusOK)
}

// Delete soft-deletes a product; force bypasses the archive-first and
// active-link guards
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.adminID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	force := r.URL.Query().Get("force") == "true"

	result, err := h.catalog.Delete(r.Context(), adminID, id, force)
	if err != nil {
		middleware.RespondWithInfraError(w, h.logger, err)
		return
	}
	h.respondResult(w, result, http.StatusOK)
}

// Purge physically removes a product; always requires force
func (h *ProductHandler) Purge(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.adminID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	force := r.URL.Query().Get("force") == "true"

	result, err := h.catalog.Purge(r.Context(), adminID, id, force)
	if err != nil {
		middleware.RespondWithInfraError(w, h.logger, err)
		return
	}
	h.respondResult(w, result, http.StatusOK)
}

// Bulk applies archive, restore or delete to a batch of ids
func (h *ProductHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.adminID(w, r)
	if !ok {
		return
	}

	op := service.BulkOperation(chi.URLParam(r, "op"))

	var req BulkRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if errs := middleware.FormatValidationErrors(err); len(errs) > 0 {
			middleware.RespondWithValidationErrors(w, errs)
			return
		}
		middleware.RespondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := h.catalog.Bulk(r.Context(), adminID, req.IDs, op)
	if err != nil {
		middleware.RespondWithInfraError(w, h.logger, err)
		return
	}
	h.respondResult(w, result, http.StatusOK)
}

// ActivateCategory flips a category active, honoring the active cap
func (h *ProductHandler) ActivateCategory(w http.ResponseWriter, r *http.Request) {
	adminID, ok := h.adminID(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	result, err := h.catalog.ActivateCategory(r.Context(), adminID, id)
	if err != nil {
		middleware.RespondWithInfraError(w, h.logger, err)
		return
	}
	h.respondResult(w, result, http.StatusOK)
}

// GenerateSlug produces a unique slug from free-form source text
func (h *ProductHandler) GenerateSlug(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.adminID(w, r); !ok {
		return
	}

	var req GenerateSlugRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if errs := middleware.FormatValidationErrors(err); len(errs) > 0 {
			middleware.RespondWithValidationErrors(w, errs)
			return
		}
		middleware.RespondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	generated, err := h.slugs.Generate(r.Context(), req.SourceText, slug.EntityType(req.EntityType), req.ExcludeID, slug.GenerateOptions{
		KeepStopWords: req.KeepStopWords,
		MaxWords:      req.MaxWords,
	})
	if err != nil {
		middleware.RespondWithInfraError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, GenerateSlugResponse{Slug: generated})
}

// CheckSlug reports whether a slug is free within an entity namespace
func (h *ProductHandler) CheckSlug(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.adminID(w, r); !ok {
		return
	}

	rawSlug := r.URL.Query().Get("slug")
	entityType := r.URL.Query().Get("entity_type")
	if rawSlug == "" || entityType == "" {
		middleware.RespondWithJSON(w, http.StatusBadRequest, map[string]string{"error": "slug and entity_type are required"})
		return
	}
	excludeID, _ := strconv.ParseInt(r.URL.Query().Get("exclude_id"), 10, 64)

	unique, err := h.slugs.IsUnique(r.Context(), slug.EntityType(entityType), rawSlug, excludeID)
	if err != nil {
		middleware.RespondWithInfraError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, SlugCheckResponse{Slug: slug.Normalize(rawSlug), Unique: unique})
}
