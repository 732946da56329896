package service

import (
	"context"
	"time"

	"catalog-curator/internal/domain"
	"catalog-curator/internal/repository"
	"catalog-curator/internal/slug"

	"go.uber.org/zap"
)

// AuditSink receives audit entries after the matching write has been
// persisted. Implementations must not block the request path; failures are
// the sink's problem, never the mutation's.
type AuditSink interface {
	Record(entry *domain.AuditEntry)
}

// LogAuditSink writes audit entries to the structured log
type LogAuditSink struct {
	Logger *zap.Logger
}

func (s *LogAuditSink) Record(entry *domain.AuditEntry) {
	s.Logger.Info("audit",
		zap.String("event_id", entry.EventID.String()),
		zap.Int64("admin_id", entry.AdminID),
		zap.String("action", entry.Action),
		zap.String("entity_type", entry.EntityType),
		zap.Int64("entity_id", entry.EntityID),
		zap.String("summary", entry.Summary),
	)
}

// CatalogService performs the admin operations end to end: it asks the
// orchestrator for a decision, persists the write when the decision is
// valid, invalidates the exact cache keys the write made stale, and hands
// the audit entry to the sink. The orchestrator itself never writes.
type CatalogService struct {
	curation *CurationService
	products repository.ProductRepository
	links    repository.LinkRepository
	cats     repository.CategoryRepository
	slugs    *slug.Service
	audit    AuditSink
	logger   *zap.Logger
}

// NewCatalogService creates the persisting wrapper around the orchestrator
func NewCatalogService(
	curation *CurationService,
	products repository.ProductRepository,
	links repository.LinkRepository,
	cats repository.CategoryRepository,
	slugs *slug.Service,
	audit AuditSink,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		curation: curation,
		products: products,
		links:    links,
		cats:     cats,
		slugs:    slugs,
		audit:    audit,
		logger:   logger,
	}
}

// Curation exposes the orchestrator for callers that only need decisions
func (s *CatalogService) Curation() *CurationService {
	return s.curation
}

func (s *CatalogService) record(entry *domain.AuditEntry) {
	if entry != nil && s.audit != nil {
		s.audit.Record(entry)
	}
}

// Create validates and persists a new draft product
func (s *CatalogService) Create(ctx context.Context, adminID int64, input CreateProductInput) (*Result, *domain.Product, error) {
	result, err := s.curation.ValidateCreate(ctx, adminID, input)
	if err != nil {
		return nil, nil, err
	}
	if !result.Valid {
		return result, nil, nil
	}

	now := time.Now().UTC()
	imageSource := input.ImageSource
	if imageSource == "" {
		imageSource = domain.ImageSourceUpload
	}
	product := &domain.Product{
		Slug:        slug.Normalize(input.Slug),
		Name:        input.Name,
		Description: input.Description,
		MarketPrice: input.MarketPrice,
		CategoryID:  input.CategoryID,
		Status:      domain.StatusDraft,
		ImageRef:    input.ImageRef,
		ImageSource: imageSource,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, nil, err
	}

	if err := s.curation.RecordCreation(ctx, adminID); err != nil {
		s.logger.Warn("failed to advance creation quota", zap.Error(err), zap.Int64("admin_id", adminID))
	}
	if err := s.slugs.Invalidate(ctx, slug.EntityProduct, []string{product.Slug}, product.ID); err != nil {
		s.logger.Warn("failed to invalidate slug cache", zap.Error(err), zap.String("slug", product.Slug))
	}

	result.Audit.EntityID = product.ID
	s.record(result.Audit)
	return result, product, nil
}

// Update validates and persists a partial product update
func (s *CatalogService) Update(ctx context.Context, adminID, productID int64, patch UpdateProductPatch) (*Result, error) {
	result, err := s.curation.ValidateUpdate(ctx, adminID, productID, patch)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return result, nil
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	var oldSlug, newSlug string
	if patch.Slug != nil {
		newSlug = slug.Normalize(*patch.Slug)
		if newSlug != product.Slug {
			oldSlug = product.Slug
			fields["slug"] = newSlug
		}
	}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.MarketPrice != nil {
		fields["market_price"] = *patch.MarketPrice
	}
	if patch.CategoryID != nil {
		fields["category_id"] = *patch.CategoryID
	}
	if patch.ImageRef != nil {
		fields["image_ref"] = *patch.ImageRef
	}
	if patch.ImageSource != nil {
		fields["image_source"] = *patch.ImageSource
	}

	if len(fields) > 0 {
		if err := s.products.UpdateFields(ctx, productID, fields); err != nil {
			return nil, err
		}
	}

	// A slug change makes both the old and new uniqueness verdicts stale.
	if oldSlug != "" {
		if err := s.slugs.Invalidate(ctx, slug.EntityProduct, []string{oldSlug, newSlug}, productID); err != nil {
			s.logger.Warn("failed to invalidate slug cache", zap.Error(err), zap.String("slug", newSlug))
		}
	}

	s.record(result.Audit)
	return result, nil
}

// transition persists a validated status change
func (s *CatalogService) transition(ctx context.Context, result *Result, productID int64, target domain.Status) (*Result, error) {
	if !result.Valid {
		return result, nil
	}
	if err := s.products.UpdateStatus(ctx, productID, target, time.Now().UTC()); err != nil {
		return nil, err
	}
	s.record(result.Audit)
	return result, nil
}

// Submit moves a draft into PENDING_VERIFICATION
func (s *CatalogService) Submit(ctx context.Context, adminID, productID int64) (*Result, error) {
	result, err := s.curation.ValidateSubmit(ctx, adminID, productID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, result, productID, domain.StatusPendingVerification)
}

// Verify moves a pending product into VERIFIED when the gate allows it
func (s *CatalogService) Verify(ctx context.Context, req PublishRequest) (*Result, error) {
	result, err := s.curation.ValidateVerify(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, result, req.ProductID, domain.StatusVerified)
}

// Publish moves a verified product into PUBLISHED when the gate allows it
func (s *CatalogService) Publish(ctx context.Context, req PublishRequest) (*Result, error) {
	result, err := s.curation.ValidatePublish(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, result, req.ProductID, domain.StatusPublished)
}

// Archive moves a verified or published product into ARCHIVED
func (s *CatalogService) Archive(ctx context.Context, adminID, productID int64) (*Result, error) {
	result, err := s.curation.ValidateArchive(ctx, adminID, productID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, result, productID, domain.StatusArchived)
}

// Restore brings an archived or soft-deleted product back into
// PENDING_VERIFICATION
func (s *CatalogService) Restore(ctx context.Context, adminID, productID int64) (*Result, error) {
	result, err := s.curation.ValidateRestore(ctx, adminID, productID)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return result, nil
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := s.products.Restore(ctx, productID, RestoreLandingStatus); err != nil {
		return nil, err
	}

	// The restored row re-occupies its slug, so cached "unique" verdicts
	// for it are stale.
	if err := s.slugs.Invalidate(ctx, slug.EntityProduct, []string{product.Slug}, productID); err != nil {
		s.logger.Warn("failed to invalidate slug cache", zap.Error(err), zap.String("slug", product.Slug))
	}

	s.record(result.Audit)
	return result, nil
}

// Delete soft-deletes a product, leaving the row tombstoned
func (s *CatalogService) Delete(ctx context.Context, adminID, productID int64, force bool) (*Result, error) {
	result, err := s.curation.ValidateDelete(ctx, adminID, productID, force)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return result, nil
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := s.products.SoftDelete(ctx, productID, time.Now().UTC()); err != nil {
		return nil, err
	}

	// The tombstoned slug no longer counts toward uniqueness.
	if err := s.slugs.Invalidate(ctx, slug.EntityProduct, []string{product.Slug}, productID); err != nil {
		s.logger.Warn("failed to invalidate slug cache", zap.Error(err), zap.String("slug", product.Slug))
	}

	s.record(result.Audit)
	return result, nil
}

// Purge physically removes a product row; force is mandatory
func (s *CatalogService) Purge(ctx context.Context, adminID, productID int64, force bool) (*Result, error) {
	result, err := s.curation.ValidatePurge(ctx, adminID, productID, force)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return result, nil
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := s.products.Purge(ctx, productID); err != nil {
		return nil, err
	}

	if err := s.slugs.Invalidate(ctx, slug.EntityProduct, []string{product.Slug}, productID); err != nil {
		s.logger.Warn("failed to invalidate slug cache", zap.Error(err), zap.String("slug", product.Slug))
	}

	s.record(result.Audit)
	return result, nil
}

// ActivateCategory flips a category active, honoring the active-category cap
func (s *CatalogService) ActivateCategory(ctx context.Context, adminID, categoryID int64) (*Result, error) {
	result, err := s.curation.ValidateCategoryActivation(ctx, adminID, categoryID)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return result, nil
	}
	if err := s.cats.SetActive(ctx, categoryID, true); err != nil {
		return nil, err
	}
	s.record(result.Audit)
	return result, nil
}

// Bulk validates a batch and applies the operation to every item that
// passed. Failed items are reported in the result and never roll back the
// items that succeeded.
func (s *CatalogService) Bulk(ctx context.Context, adminID int64, ids []int64, op BulkOperation) (*Result, error) {
	result, err := s.curation.ValidateBulk(ctx, adminID, ids, op)
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		// Batch-level rejection; nothing to apply.
		return result, nil
	}

	for i := range result.Items {
		item := &result.Items[i]
		if !item.Valid {
			continue
		}
		var applyErr error
		var staleSlug string
		switch op {
		case BulkArchive:
			applyErr = s.products.UpdateStatus(ctx, item.ID, domain.StatusArchived, time.Now().UTC())
		case BulkRestore, BulkDelete:
			// Restore re-occupies the slug, delete frees it; either way
			// the cached verdicts for it are stale after the write.
			product, findErr := s.products.FindByID(ctx, item.ID)
			if findErr != nil {
				return nil, findErr
			}
			staleSlug = product.Slug
			if op == BulkRestore {
				applyErr = s.products.Restore(ctx, item.ID, RestoreLandingStatus)
			} else {
				applyErr = s.products.SoftDelete(ctx, item.ID, time.Now().UTC())
			}
		}
		if applyErr != nil {
			return nil, applyErr
		}
		if staleSlug != "" {
			if err := s.slugs.Invalidate(ctx, slug.EntityProduct, []string{staleSlug}, item.ID); err != nil {
				s.logger.Warn("failed to invalidate slug cache", zap.Error(err), zap.String("slug", staleSlug))
			}
		}
	}

	s.record(result.Audit)
	return result, nil
}
