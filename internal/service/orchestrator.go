package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"catalog-curator/internal/cache"
	"catalog-curator/internal/config"
	"catalog-curator/internal/domain"
	"catalog-curator/internal/repository"
	"catalog-curator/internal/slug"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// CurationService is the validation orchestrator: one entry point per
// admin-facing operation. Every entry point is synchronous, holds no state
// between calls, and returns a structured Result for expected business
// conditions; a non-nil error means store or cache infrastructure failed.
type CurationService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	links      repository.LinkRepository
	slugs      *slug.Service
	gate       *Gate
	cache      cache.Cache
	cfg        config.CatalogConfig
	logger     *zap.Logger
	validate   *validator.Validate
}

// NewCurationService creates the validation orchestrator
func NewCurationService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	links repository.LinkRepository,
	slugs *slug.Service,
	c cache.Cache,
	cfg config.CatalogConfig,
	logger *zap.Logger,
) *CurationService {
	return &CurationService{
		products:   products,
		categories: categories,
		links:      links,
		slugs:      slugs,
		gate:       NewGate(slugs),
		cache:      c,
		cfg:        cfg,
		logger:     logger,
		validate:   validator.New(),
	}
}

// Gate exposes the publication gate for callers that hold their own snapshots
func (s *CurationService) Gate() *Gate {
	return s.gate
}

// shapeErrors converts validator failures into the engine's error shape
func shapeErrors(err error) []FieldError {
	errs := []FieldError{}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errs = append(errs, FieldError{
			Field: "", Rule: "invalid_input", Kind: KindShape, Message: err.Error(),
		})
		return errs
	}
	for _, e := range validationErrors {
		errs = append(errs, FieldError{
			Field:          e.Field(),
			Rule:           e.Tag(),
			Kind:           KindShape,
			Message:        fmt.Sprintf("field %s fails rule %s", e.Field(), e.Tag()),
			OffendingValue: e.Value(),
		})
	}
	return errs
}

// checkSlugShape runs format and reserved-word checks on a raw slug
func (s *CurationService) checkSlugShape(rawSlug string, result *Result) (normalized string, ok bool) {
	normalized = slug.Normalize(rawSlug)
	if err := slug.ValidateFormat(normalized, s.slugs.Bounds()); err != nil {
		fe, _ := err.(*slug.FormatError)
		rule := "format"
		if fe != nil {
			rule = fe.Rule
		}
		result.addError(FieldError{
			Field: "slug", Rule: rule, Kind: KindShape,
			Message:        "slug must be 3-100 lowercase alphanumeric words separated by single hyphens",
			OffendingValue: rawSlug,
		})
		return normalized, false
	}
	if slug.IsReserved(normalized, slug.EntityProduct) {
		result.addError(FieldError{
			Field: "slug", Rule: "reserved", Kind: KindShape,
			Message:        "slug is a reserved word",
			OffendingValue: rawSlug,
		})
		return normalized, false
	}
	return normalized, true
}

// quotaDay formats the UTC day bucket for the creation quota counter
func quotaDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ValidateCreate decides whether a new product may be created. Checks run
// in order: field shape, slug uniqueness, category existence/activity,
// price bounds, catalog cap, daily creation quota. The caps are counted
// store-side immediately before the decision, never from cache.
func (s *CurationService) ValidateCreate(ctx context.Context, adminID int64, input CreateProductInput) (*Result, error) {
	result := newResult("product.create")

	if err := s.validate.Struct(input); err != nil {
		for _, fe := range shapeErrors(err) {
			result.addError(fe)
		}
	}

	var normalizedSlug string
	if input.Slug != "" {
		var ok bool
		normalizedSlug, ok = s.checkSlugShape(input.Slug, result)
		if ok {
			unique, err := s.slugs.IsUnique(ctx, slug.EntityProduct, normalizedSlug, 0)
			if err != nil {
				return nil, err
			}
			if !unique {
				result.addError(FieldError{
					Field: "slug", Rule: "slug_taken", Kind: KindBusinessRule,
					Message:        "slug is already used by another product",
					OffendingValue: normalizedSlug,
				})
			}
		}
	}

	if input.CategoryID != nil {
		exists, err := s.categories.ExistsActive(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			result.addError(FieldError{
				Field: "category_id", Rule: "category_not_active", Kind: KindBusinessRule,
				Message:        "category does not exist or is not active",
				OffendingValue: *input.CategoryID,
			})
		}
	}

	if input.MarketPrice.IsZero() {
		result.addError(FieldError{
			Field: "market_price", Rule: "required", Kind: KindShape,
			Message: "market price is required",
		})
	} else if input.MarketPrice.LessThan(domain.MinMarketPrice) || input.MarketPrice.GreaterThan(domain.MaxMarketPrice) {
		result.addError(FieldError{
			Field: "market_price", Rule: "price_out_of_bounds", Kind: KindBusinessRule,
			Message:        fmt.Sprintf("market price must be between %s and %s", domain.MinMarketPrice, domain.MaxMarketPrice),
			OffendingValue: input.MarketPrice.String(),
		})
	}

	// Catalog cap, counted as close to the write as the caller allows. The
	// remaining check-then-act window is documented and accepted for the
	// low write concurrency of an admin-curated catalog.
	count, err := s.products.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	if count >= s.cfg.MaxProducts {
		result.addError(FieldError{
			Field: "catalog", Rule: "catalog_cap_reached", Kind: KindCapacity,
			Message:        fmt.Sprintf("catalog is limited to %d products", s.cfg.MaxProducts),
			OffendingValue: count,
		})
	}

	used, err := s.creationsToday(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if used >= s.cfg.DailyCreateQuota {
		result.addError(FieldError{
			Field: "quota", Rule: "daily_quota_reached", Kind: KindCapacity,
			Message:        fmt.Sprintf("daily creation quota of %d products reached", s.cfg.DailyCreateQuota),
			OffendingValue: used,
		})
	}

	if result.Valid {
		audit := domain.NewAuditEntry(adminID, "product.create", "product", 0)
		audit.After = map[string]any{"slug": normalizedSlug, "name": input.Name, "status": string(domain.StatusDraft)}
		audit.Summary = fmt.Sprintf("create product %q", input.Name)
		result.Audit = audit
	}

	return result, nil
}

// creationsToday reads the acting admin's creation counter for the current
// UTC day. The counter is advanced by RecordCreation after a persisted write.
func (s *CurationService) creationsToday(ctx context.Context, adminID int64) (int, error) {
	key := cache.DailyCreateQuotaKey(adminID, quotaDay(time.Now()))
	val, err := s.cache.Get(ctx, key)
	if err != nil {
		if err == cache.ErrCacheMiss {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read creation quota: %w", err)
	}
	used, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("corrupt creation quota counter %q: %w", val, err)
	}
	return used, nil
}

// RecordCreation advances the acting admin's daily creation counter. Called
// by the persisting caller after a create has actually been written.
func (s *CurationService) RecordCreation(ctx context.Context, adminID int64) error {
	key := cache.DailyCreateQuotaKey(adminID, quotaDay(time.Now()))
	_, err := s.cache.Incr(ctx, key, 24*time.Hour)
	return err
}

// checkFrozenFields guards the closed set of fields that may not change
// while a product is PUBLISHED. Setting one to its current value is a
// permitted no-op; any real change requires archive-edit-republish.
func (s *CurationService) checkFrozenFields(product *domain.Product, patch *UpdateProductPatch, result *Result) {
	if product.Status != domain.StatusPublished {
		return
	}

	if patch.Slug != nil && slug.Normalize(*patch.Slug) != product.Slug {
		result.addError(FieldError{
			Field: "slug", Rule: "published_fields_frozen", Kind: KindBusinessRule,
			Message:        "slug cannot change while the product is published",
			OffendingValue: *patch.Slug,
		})
	}
	if patch.CategoryID != nil && (product.CategoryID == nil || *patch.CategoryID != *product.CategoryID) {
		result.addError(FieldError{
			Field: "category_id", Rule: "published_fields_frozen", Kind: KindBusinessRule,
			Message:        "category cannot change while the product is published",
			OffendingValue: *patch.CategoryID,
		})
	}
	if patch.MarketPrice != nil && !patch.MarketPrice.Equal(product.MarketPrice) {
		result.addError(FieldError{
			Field: "market_price", Rule: "published_fields_frozen", Kind: KindBusinessRule,
			Message:        "market price cannot change while the product is published",
			OffendingValue: patch.MarketPrice.String(),
		})
	}
}

// ValidateUpdate decides whether a partial update may be applied. Only
// fields present in the patch are validated.
func (s *CurationService) ValidateUpdate(ctx context.Context, adminID, productID int64, patch UpdateProductPatch) (*Result, error) {
	result := newResult("product.update")

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			result.addError(FieldError{
				Field: "id", Rule: "not_found", Kind: KindNotFound,
				Message:        "product does not exist",
				OffendingValue: productID,
			})
			return result, nil
		}
		return nil, err
	}

	if product.IsDeleted() {
		result.addError(FieldError{
			Field: "id", Rule: "deleted", Kind: KindBusinessRule,
			Message:        "product is deleted; restore it before editing",
			OffendingValue: productID,
		})
		return result, nil
	}

	if patch.IsEmpty() {
		result.addError(FieldError{
			Field: "", Rule: "empty_patch", Kind: KindShape,
			Message: "update carries no fields",
		})
		return result, nil
	}

	if err := s.validate.Struct(patch); err != nil {
		for _, fe := range shapeErrors(err) {
			result.addError(fe)
		}
	}

	s.checkFrozenFields(product, &patch, result)

	if patch.Slug != nil {
		normalized, ok := s.checkSlugShape(*patch.Slug, result)
		if ok && normalized != product.Slug {
			unique, err := s.slugs.IsUnique(ctx, slug.EntityProduct, normalized, productID)
			if err != nil {
				return nil, err
			}
			if !unique {
				result.addError(FieldError{
					Field: "slug", Rule: "slug_taken", Kind: KindBusinessRule,
					Message:        "slug is already used by another product",
					OffendingValue: normalized,
				})
			}
		}
	}

	if patch.CategoryID != nil {
		exists, err := s.categories.ExistsActive(ctx, *patch.CategoryID)
		if err != nil {
			return nil, err
		}
		if !exists {
			result.addError(FieldError{
				Field: "category_id", Rule: "category_not_active", Kind: KindBusinessRule,
				Message:        "category does not exist or is not active",
				OffendingValue: *patch.CategoryID,
			})
		}
	}

	if patch.MarketPrice != nil {
		if patch.MarketPrice.LessThan(domain.MinMarketPrice) || patch.MarketPrice.GreaterThan(domain.MaxMarketPrice) {
			result.addError(FieldError{
				Field: "market_price", Rule: "price_out_of_bounds", Kind: KindBusinessRule,
				Message:        fmt.Sprintf("market price must be between %s and %s", domain.MinMarketPrice, domain.MaxMarketPrice),
				OffendingValue: patch.MarketPrice.String(),
			})
		}
	}

	if result.Valid {
		audit := domain.NewAuditEntry(adminID, "product.update", "product", productID)
		audit.Before = map[string]any{"slug": product.Slug, "status": string(product.Status)}
		audit.Summary = fmt.Sprintf("update product %d", productID)
		result.Audit = audit
	}

	return result, nil
}

// loadGateInputs assembles the snapshots the publication gate evaluates
func (s *CurationService) loadGateInputs(ctx context.Context, productID int64) (*domain.Product, *domain.Category, []*domain.Link, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, nil, nil, err
	}

	var category *domain.Category
	if product.CategoryID != nil {
		category, err = s.categories.FindByID(ctx, *product.CategoryID)
		if err != nil && err != repository.ErrCategoryNotFound {
			return nil, nil, nil, err
		}
	}

	activeLinks, err := s.links.FindActiveByProduct(ctx, productID)
	if err != nil {
		return nil, nil, nil, err
	}

	return product, category, activeLinks, nil
}

// validateTransition runs the publication gate toward the target status
func (s *CurationService) validateTransition(ctx context.Context, req PublishRequest, target domain.Status, contextName string) (*Result, error) {
	result := newResult(contextName)

	if err := s.validate.Struct(req); err != nil {
		for _, fe := range shapeErrors(err) {
			result.addError(fe)
		}
		return result, nil
	}

	product, category, activeLinks, err := s.loadGateInputs(ctx, req.ProductID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			result.addError(FieldError{
				Field: "id", Rule: "not_found", Kind: KindNotFound,
				Message:        "product does not exist",
				OffendingValue: req.ProductID,
			})
			return result, nil
		}
		return nil, err
	}

	gateResult, err := s.gate.Evaluate(ctx, product, category, activeLinks, target, req.Force)
	if err != nil {
		return nil, err
	}

	result.Errors = append(result.Errors, gateResult.Errors...)
	for _, w := range gateResult.Warnings {
		result.addWarning(w)
	}
	result.Valid = gateResult.Eligible

	if result.Valid {
		audit := domain.NewAuditEntry(req.AdminID, contextName, "product", product.ID)
		audit.Before = map[string]any{"status": string(product.Status)}
		audit.After = map[string]any{"status": string(target)}
		audit.Summary = fmt.Sprintf("transition product %d from %s to %s", product.ID, product.Status, target)
		if req.Force && len(result.Warnings) > 0 {
			audit.Summary += " (forced)"
		}
		result.Audit = audit
	}

	return result, nil
}

// ValidatePublish decides whether a product may reach PUBLISHED
func (s *CurationService) ValidatePublish(ctx context.Context, req PublishRequest) (*Result, error) {
	return s.validateTransition(ctx, req, domain.StatusPublished, "product.publish")
}

// ValidateVerify decides whether a product may reach VERIFIED
func (s *CurationService) ValidateVerify(ctx context.Context, req PublishRequest) (*Result, error) {
	return s.validateTransition(ctx, req, domain.StatusVerified, "product.verify")
}

// ValidateSubmit decides whether a draft may enter PENDING_VERIFICATION
func (s *CurationService) ValidateSubmit(ctx context.Context, adminID, productID int64) (*Result, error) {
	result := newResult("product.submit")

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			result.addError(FieldError{
				Field: "id", Rule: "not_found", Kind: KindNotFound,
				Message:        "product does not exist",
				OffendingValue: productID,
			})
			return result, nil
		}
		return nil, err
	}

	if !domain.CanTransition(product.Status, domain.StatusPendingVerification) {
		result.addError(FieldError{
			Field:          "status",
			Rule:           "illegal_transition",
			Kind:           KindBusinessRule,
			Message:        fmt.Sprintf("cannot transition from %s to %s", product.Status, domain.StatusPendingVerification),
			OffendingValue: string(product.Status),
		})
		return result, nil
	}

	audit := domain.NewAuditEntry(adminID, "product.submit", "product", productID)
	audit.Before = map[string]any{"status": string(product.Status)}
	audit.After = map[string]any{"status": string(domain.StatusPendingVerification)}
	audit.Summary = fmt.Sprintf("submit product %d for verification", productID)
	result.Audit = audit
	return result, nil
}

// ValidateArchive decides whether a product may be archived. Archiving is
// legal only from VERIFIED or PUBLISHED.
func (s *CurationService) ValidateArchive(ctx context.Context, adminID, productID int64) (*Result, error) {
	result := newResult("product.archive")

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			result.addError(FieldError{
				Field: "id", Rule: "not_found", Kind: KindNotFound,
				Message:        "product does not exist",
				OffendingValue: productID,
			})
			return result, nil
		}
		return nil, err
	}

	if product.Status == domain.StatusArchived {
		result.addError(FieldError{
			Field: "status", Rule: "already_archived", Kind: KindBusinessRule,
			Message:        "product is already archived",
			OffendingValue: string(product.Status),
		})
		return result, nil
	}

	if !domain.CanTransition(product.Status, domain.StatusArchived) {
		result.addError(FieldError{
			Field:          "status",
			Rule:           "illegal_transition",
			Kind:           KindBusinessRule,
			Message:        fmt.Sprintf("cannot archive a product in status %s", product.Status),
			OffendingValue: string(product.Status),
		})
		return result, nil
	}

	audit := domain.NewAuditEntry(adminID, "product.archive", "product", productID)
	audit.Before = map[string]any{"status": string(product.Status)}
	audit.After = map[string]any{"status": string(domain.StatusArchived)}
	audit.Summary = fmt.Sprintf("archive product %d", productID)
	result.Audit = audit
	return result, nil
}

// RestoreLandingStatus is where every restored product lands. The
// pre-archive status is not stored, so restore always forces the product
// back through verification.
const RestoreLandingStatus = domain.StatusPendingVerification

// ValidateRestore decides whether an archived or soft-deleted product may
// be restored. Restored products always land in PENDING_VERIFICATION.
func (s *CurationService) ValidateRestore(ctx context.Context, adminID, productID int64) (*Result, error) {
	result := newResult("product.restore")

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			result.addError(FieldError{
				Field: "id", Rule: "not_found", Kind: KindNotFound,
				Message:        "product does not exist",
				OffendingValue: productID,
			})
			return result, nil
		}
		return nil, err
	}

	if !product.IsDeleted() && product.Status != domain.StatusArchived {
		result.addError(FieldError{
			Field:          "status",
			Rule:           "not_restorable",
			Kind:           KindBusinessRule,
			Message:        "only archived or deleted products can be restored",
			OffendingValue: string(product.Status),
		})
		return result, nil
	}

	audit := domain.NewAuditEntry(adminID, "product.restore", "product", productID)
	audit.Before = map[string]any{"status": string(product.Status), "deleted": product.IsDeleted()}
	audit.After = map[string]any{"status": string(RestoreLandingStatus), "deleted": false}
	audit.Summary = fmt.Sprintf("restore product %d to %s", productID, RestoreLandingStatus)
	result.Audit = audit
	return result, nil
}

// ValidateDelete decides whether a product may be soft-deleted. A
// PUBLISHED product must be archived first unless force is set; products
// with active links require force as well.
func (s *CurationService) ValidateDelete(ctx context.Context, adminID, productID int64, force bool) (*Result, error) {
	result := newResult("product.delete")

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			result.addError(FieldError{
				Field: "id", Rule: "not_found", Kind: KindNotFound,
				Message:        "product does not exist",
				OffendingValue: productID,
			})
			return result, nil
		}
		return nil, err
	}

	if product.IsDeleted() {
		result.addError(FieldError{
			Field: "id", Rule: "already_deleted", Kind: KindBusinessRule,
			Message:        "product is already deleted",
			OffendingValue: productID,
		})
		return result, nil
	}

	if product.Status == domain.StatusPublished && !force {
		result.addError(FieldError{
			Field: "status", Rule: "published_delete_requires_force", Kind: KindBusinessRule,
			Message:        "published products must be archived before deletion",
			OffendingValue: string(product.Status),
		})
	}

	activeLinks, err := s.links.CountActiveByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if activeLinks > 0 && !force {
		result.addError(FieldError{
			Field: "links", Rule: "active_links_block_delete", Kind: KindBusinessRule,
			Message:        "product still has active marketplace links",
			OffendingValue: activeLinks,
		})
	}

	if result.Valid {
		audit := domain.NewAuditEntry(adminID, "product.delete", "product", productID)
		audit.Before = map[string]any{"status": string(product.Status), "deleted": false}
		audit.After = map[string]any{"deleted": true}
		audit.Summary = fmt.Sprintf("soft delete product %d", productID)
		result.Audit = audit
	}

	return result, nil
}

// ValidatePurge decides whether a product row may be physically removed.
// Purge always requires force; it is the only path that destroys data.
func (s *CurationService) ValidatePurge(ctx context.Context, adminID, productID int64, force bool) (*Result, error) {
	result := newResult("product.purge")

	if !force {
		result.addError(FieldError{
			Field: "force", Rule: "force_required", Kind: KindBusinessRule,
			Message: "physical removal requires the force flag",
		})
		return result, nil
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			result.addError(FieldError{
				Field: "id", Rule: "not_found", Kind: KindNotFound,
				Message:        "product does not exist",
				OffendingValue: productID,
			})
			return result, nil
		}
		return nil, err
	}

	audit := domain.NewAuditEntry(adminID, "product.purge", "product", productID)
	audit.Before = map[string]any{"slug": product.Slug, "status": string(product.Status)}
	audit.Summary = fmt.Sprintf("purge product %d", productID)
	result.Audit = audit
	return result, nil
}

// ValidateCategoryActivation decides whether a category may be flipped
// active. The 15-active-category ceiling is enforced here, at activation
// time, and the count is read store-side immediately before the decision.
func (s *CurationService) ValidateCategoryActivation(ctx context.Context, adminID, categoryID int64) (*Result, error) {
	result := newResult("category.activate")

	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			result.addError(FieldError{
				Field: "id", Rule: "not_found", Kind: KindNotFound,
				Message:        "category does not exist",
				OffendingValue: categoryID,
			})
			return result, nil
		}
		return nil, err
	}

	if category.Active {
		result.addError(FieldError{
			Field: "active", Rule: "already_active", Kind: KindBusinessRule,
			Message:        "category is already active",
			OffendingValue: categoryID,
		})
		return result, nil
	}

	count, err := s.categories.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	if count >= s.cfg.MaxActiveCategories {
		result.addError(FieldError{
			Field: "active", Rule: "category_cap_reached", Kind: KindCapacity,
			Message:        fmt.Sprintf("at most %d categories may be active", s.cfg.MaxActiveCategories),
			OffendingValue: count,
		})
		return result, nil
	}

	audit := domain.NewAuditEntry(adminID, "category.activate", "category", categoryID)
	audit.Before = map[string]any{"active": false}
	audit.After = map[string]any{"active": true}
	audit.Summary = fmt.Sprintf("activate category %d", categoryID)
	result.Audit = audit
	return result, nil
}

// ValidateBulk applies one operation's per-item rules to a batch of ids.
// The batch is rejected wholesale when it exceeds the configured size or
// carries duplicate ids; otherwise per-item failures are collected and the
// batch is never auto-rolled-back.
func (s *CurationService) ValidateBulk(ctx context.Context, adminID int64, ids []int64, op BulkOperation) (*Result, error) {
	result := newResult("product.bulk." + string(op))

	switch op {
	case BulkArchive, BulkRestore, BulkDelete:
	default:
		result.addError(FieldError{
			Field: "operation", Rule: "unknown_operation", Kind: KindShape,
			Message:        "unsupported bulk operation",
			OffendingValue: string(op),
		})
		return result, nil
	}

	if len(ids) == 0 {
		result.addError(FieldError{
			Field: "ids", Rule: "required", Kind: KindShape,
			Message: "batch carries no ids",
		})
		return result, nil
	}

	if len(ids) > s.cfg.MaxBatchSize {
		result.addError(FieldError{
			Field: "ids", Rule: "batch_too_large", Kind: KindCapacity,
			Message:        fmt.Sprintf("batch is limited to %d ids", s.cfg.MaxBatchSize),
			OffendingValue: len(ids),
		})
		return result, nil
	}

	// Duplicate ids are a batch-level defect, rejected before any
	// per-item check runs.
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			result.addError(FieldError{
				Field: "ids", Rule: "duplicate_id", Kind: KindShape,
				Message:        fmt.Sprintf("id %d appears more than once in the batch", id),
				OffendingValue: id,
			})
			return result, nil
		}
		seen[id] = true
	}

	for _, id := range ids {
		var itemResult *Result
		var err error
		switch op {
		case BulkArchive:
			itemResult, err = s.ValidateArchive(ctx, adminID, id)
		case BulkRestore:
			itemResult, err = s.ValidateRestore(ctx, adminID, id)
		case BulkDelete:
			itemResult, err = s.ValidateDelete(ctx, adminID, id, false)
		}
		if err != nil {
			return nil, err
		}

		item := BulkItemResult{ID: id, Valid: itemResult.Valid, Errors: itemResult.Errors}
		result.Items = append(result.Items, item)
		if !itemResult.Valid {
			result.Valid = false
		}
	}

	if !result.Valid {
		result.Errors = append(result.Errors, FieldError{
			Field: "items", Rule: "partial_failure", Kind: KindBusinessRule,
			Message: "one or more batch items failed validation",
		})
	} else {
		audit := domain.NewAuditEntry(adminID, "product.bulk."+string(op), "product", 0)
		audit.After = map[string]any{"ids": ids}
		audit.Summary = fmt.Sprintf("bulk %s of %d products", op, len(ids))
		result.Audit = audit
	}

	return result, nil
}
