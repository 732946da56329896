package service

import (
	"context"
	"testing"

	"catalog-curator/internal/domain"

	"go.uber.org/zap"
)

// captureSink collects audit entries for assertions
type captureSink struct {
	entries []*domain.AuditEntry
}

func (s *captureSink) Record(entry *domain.AuditEntry) {
	s.entries = append(s.entries, entry)
}

func newCatalog(t *testing.T) (*fixture, *CatalogService, *captureSink) {
	t.Helper()
	f := newFixture(t)
	sink := &captureSink{}
	catalog := NewCatalogService(f.svc, f.products, f.links, f.categories, f.slugs, sink, zap.NewNop())
	return f, catalog, sink
}

func TestCatalogLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	f, catalog, sink := newCatalog(t)
	categoryID := f.activeCategory("Electronics")

	input := validInput("Wireless Headphones", "wireless-headphones")
	input.CategoryID = &categoryID
	input.ImageRef = "images/wireless-headphones.jpg"

	result, product, err := catalog.Create(ctx, 1, input)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if !result.Valid || product == nil {
		t.Fatalf("Create failed: %+v", result.Errors)
	}
	if product.Status != domain.StatusDraft {
		t.Fatalf("new product status = %s, want DRAFT", product.Status)
	}

	// The gate needs an active marketplace link before verification
	f.links.add(&domain.Link{ProductID: product.ID, MarketplaceID: 1, URL: "https://example.test/wh", Active: true})

	req := PublishRequest{ProductID: product.ID, AdminID: 1}
	steps := []struct {
		name string
		run  func() (*Result, error)
		want domain.Status
	}{
		{
			"submit",
			func() (*Result, error) { return catalog.Submit(ctx, 1, product.ID) },
			domain.StatusPendingVerification,
		},
		{
			"verify",
			func() (*Result, error) { return catalog.Verify(ctx, req) },
			domain.StatusVerified,
		},
		{
			"publish",
			func() (*Result, error) { return catalog.Publish(ctx, req) },
			domain.StatusPublished,
		},
		{
			"archive",
			func() (*Result, error) { return catalog.Archive(ctx, 1, product.ID) },
			domain.StatusArchived,
		},
		{
			"restore",
			func() (*Result, error) { return catalog.Restore(ctx, 1, product.ID) },
			domain.StatusPendingVerification,
		},
	}

	for _, step := range steps {
		result, err := step.run()
		if err != nil {
			t.Fatalf("%s returned error: %v", step.name, err)
		}
		if !result.Valid {
			t.Fatalf("%s failed: %+v", step.name, result.Errors)
		}
		stored, err := f.products.FindByID(ctx, product.ID)
		if err != nil {
			t.Fatalf("FindByID after %s: %v", step.name, err)
		}
		if stored.Status != step.want {
			t.Fatalf("status after %s = %s, want %s", step.name, stored.Status, step.want)
		}
	}

	// One audit entry per persisted mutation: create plus five transitions
	if len(sink.entries) != 6 {
		t.Errorf("audit entries = %d, want 6", len(sink.entries))
	}
}

func TestCatalogRejectedDecisionPersistsNothing(t *testing.T) {
	ctx := context.Background()
	f, catalog, sink := newCatalog(t)
	p := f.products.add(&domain.Product{Name: "Live", Slug: "live-item", Status: domain.StatusPublished})

	result, err := catalog.Submit(ctx, 1, p.ID)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if result.Valid {
		t.Fatal("PUBLISHED cannot be resubmitted")
	}

	stored, _ := f.products.FindByID(ctx, p.ID)
	if stored.Status != domain.StatusPublished {
		t.Errorf("status changed to %s on a rejected decision", stored.Status)
	}
	if len(sink.entries) != 0 {
		t.Errorf("rejected decision recorded %d audit entries", len(sink.entries))
	}
}

func TestCatalogDeleteFreesTheSlugForReuse(t *testing.T) {
	ctx := context.Background()
	f, catalog, _ := newCatalog(t)

	_, product, err := catalog.Create(ctx, 1, validInput("Wireless Headphones", "wireless-headphones"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// The slug is taken while the product lives; the verdict is cached here.
	result, err := f.svc.ValidateCreate(ctx, 1, validInput("Clone", "wireless-headphones"))
	if err != nil {
		t.Fatalf("ValidateCreate returned error: %v", err)
	}
	if errByRule(result.Errors, "slug_taken") == nil {
		t.Fatalf("expected slug_taken, got %+v", result.Errors)
	}

	result, err = catalog.Delete(ctx, 1, product.ID, false)
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("deleting a draft must pass, got %+v", result.Errors)
	}

	// Tombstoning invalidated the cached verdict; the slug is free again.
	result, err = f.svc.ValidateCreate(ctx, 1, validInput("Clone", "wireless-headphones"))
	if err != nil {
		t.Fatalf("ValidateCreate returned error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("a tombstoned slug must be reusable, got %+v", result.Errors)
	}
}

func TestCatalogBulkDeleteFreesTheSlugForReuse(t *testing.T) {
	ctx := context.Background()
	f, catalog, _ := newCatalog(t)

	_, product, err := catalog.Create(ctx, 1, validInput("Widget", "widget"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Cache the taken verdict while the product lives.
	result, err := f.svc.ValidateCreate(ctx, 1, validInput("Clone", "widget"))
	if err != nil {
		t.Fatalf("ValidateCreate returned error: %v", err)
	}
	if errByRule(result.Errors, "slug_taken") == nil {
		t.Fatalf("expected slug_taken, got %+v", result.Errors)
	}

	result, err = catalog.Bulk(ctx, 1, []int64{product.ID}, BulkDelete)
	if err != nil {
		t.Fatalf("Bulk returned error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("bulk-deleting a draft must pass, got %+v", result.Errors)
	}

	// The bulk path must drop the stale verdict just like the singular delete.
	result, err = f.svc.ValidateCreate(ctx, 1, validInput("Clone", "widget"))
	if err != nil {
		t.Fatalf("ValidateCreate returned error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("a bulk-tombstoned slug must be reusable, got %+v", result.Errors)
	}
}

func TestCatalogRestoreReclaimsTheSlug(t *testing.T) {
	ctx := context.Background()
	f, catalog, _ := newCatalog(t)

	_, product, err := catalog.Create(ctx, 1, validInput("Widget", "widget"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := catalog.Delete(ctx, 1, product.ID, false); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	// Cache the free verdict while the row is tombstoned.
	result, err := f.svc.ValidateCreate(ctx, 1, validInput("Clone", "widget"))
	if err != nil {
		t.Fatalf("ValidateCreate returned error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("a tombstoned slug must read as free, got %+v", result.Errors)
	}

	result, err = catalog.Restore(ctx, 1, product.ID)
	if err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("restoring a tombstoned product must pass, got %+v", result.Errors)
	}

	// The restored row re-occupies its slug; the cached free verdict is gone.
	result, err = f.svc.ValidateCreate(ctx, 1, validInput("Clone", "widget"))
	if err != nil {
		t.Fatalf("ValidateCreate returned error: %v", err)
	}
	if errByRule(result.Errors, "slug_taken") == nil {
		t.Fatalf("expected slug_taken after restore, got %+v", result.Errors)
	}
}

func TestCatalogBulkAppliesOnlyValidItems(t *testing.T) {
	ctx := context.Background()
	f, catalog, _ := newCatalog(t)
	live := f.products.add(&domain.Product{Name: "Live", Slug: "live-item", Status: domain.StatusPublished})
	draft := f.products.add(&domain.Product{Name: "Draft", Slug: "draft-item", Status: domain.StatusDraft})

	result, err := catalog.Bulk(ctx, 1, []int64{live.ID, draft.ID}, BulkArchive)
	if err != nil {
		t.Fatalf("Bulk returned error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected a partial failure")
	}

	stored, _ := f.products.FindByID(ctx, live.ID)
	if stored.Status != domain.StatusArchived {
		t.Errorf("valid item was not applied, status = %s", stored.Status)
	}
	stored, _ = f.products.FindByID(ctx, draft.ID)
	if stored.Status != domain.StatusDraft {
		t.Errorf("invalid item was applied, status = %s", stored.Status)
	}
}

func TestCatalogPurgeRemovesTheRow(t *testing.T) {
	ctx := context.Background()
	f, catalog, _ := newCatalog(t)
	p := f.products.add(&domain.Product{Name: "Doomed", Slug: "doomed-item"})

	result, err := catalog.Purge(ctx, 1, p.ID, true)
	if err != nil {
		t.Fatalf("Purge returned error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("forced purge must pass, got %+v", result.Errors)
	}
	if _, err := f.products.FindByID(ctx, p.ID); err == nil {
		t.Error("purged row is still findable")
	}
}

func TestCatalogActivateCategoryPersistsTheFlip(t *testing.T) {
	ctx := context.Background()
	f, catalog, _ := newCatalog(t)
	c := f.categories.add(&domain.Category{Name: "Dormant", Slug: "dormant", Active: false})

	result, err := catalog.ActivateCategory(ctx, 1, c.ID)
	if err != nil {
		t.Fatalf("ActivateCategory returned error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("activation must pass, got %+v", result.Errors)
	}
	if !f.categories.categories[c.ID].Active {
		t.Error("category was not flipped active")
	}
}
