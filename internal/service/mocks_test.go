package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"catalog-curator/internal/cache"
	"catalog-curator/internal/config"
	"catalog-curator/internal/domain"
	"catalog-curator/internal/repository"
	"catalog-curator/internal/slug"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// In-memory repository doubles. They mirror the store semantics the engine
// relies on: soft-deleted rows stay findable, CountActive excludes them,
// slug counts compare case-insensitively and exclude the given id.

type mockProductRepo struct {
	products map[int64]*domain.Product
	nextID   int64
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: map[int64]*domain.Product{}, nextID: 1}
}

func (m *mockProductRepo) add(p *domain.Product) *domain.Product {
	if p.ID == 0 {
		p.ID = m.nextID
	}
	if p.ID >= m.nextID {
		m.nextID = p.ID + 1
	}
	if p.Status == "" {
		p.Status = domain.StatusDraft
	}
	m.products[p.ID] = p
	return p
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	product.ID = m.nextID
	m.nextID++
	product.CreatedAt = time.Now().UTC()
	m.products[product.ID] = product
	return nil
}

func (m *mockProductRepo) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockProductRepo) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	p, ok := m.products[id]
	if !ok || p.IsDeleted() {
		return repository.ErrProductNotFound
	}
	if v, ok := fields["slug"]; ok {
		p.Slug = v.(string)
	}
	if v, ok := fields["name"]; ok {
		p.Name = v.(string)
	}
	return nil
}

func (m *mockProductRepo) UpdateStatus(ctx context.Context, id int64, status domain.Status, at time.Time) error {
	p, ok := m.products[id]
	if !ok || p.IsDeleted() {
		return repository.ErrProductNotFound
	}
	p.Status = status
	return nil
}

func (m *mockProductRepo) CountActive(ctx context.Context) (int, error) {
	count := 0
	for _, p := range m.products {
		if !p.IsDeleted() {
			count++
		}
	}
	return count, nil
}

func (m *mockProductRepo) CountBySlug(ctx context.Context, normalizedSlug string, excludeID int64) (int, error) {
	count := 0
	for _, p := range m.products {
		if p.IsDeleted() || p.ID == excludeID {
			continue
		}
		if strings.EqualFold(p.Slug, normalizedSlug) {
			count++
		}
	}
	return count, nil
}

func (m *mockProductRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	p, ok := m.products[id]
	if !ok || p.IsDeleted() {
		return repository.ErrProductNotFound
	}
	p.DeletedAt = &at
	return nil
}

func (m *mockProductRepo) Restore(ctx context.Context, id int64, status domain.Status) error {
	p, ok := m.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.DeletedAt = nil
	p.Status = status
	return nil
}

func (m *mockProductRepo) Purge(ctx context.Context, id int64) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

type mockCategoryRepo struct {
	categories map[int64]*domain.Category
	nextID     int64
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: map[int64]*domain.Category{}, nextID: 1}
}

func (m *mockCategoryRepo) add(c *domain.Category) *domain.Category {
	if c.ID == 0 {
		c.ID = m.nextID
	}
	if c.ID >= m.nextID {
		m.nextID = c.ID + 1
	}
	m.categories[c.ID] = c
	return c
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *domain.Category) error {
	category.ID = m.nextID
	m.nextID++
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, c := range m.categories {
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (m *mockCategoryRepo) ExistsActive(ctx context.Context, id int64) (bool, error) {
	c, ok := m.categories[id]
	return ok && c.Active, nil
}

func (m *mockCategoryRepo) CountActive(ctx context.Context) (int, error) {
	count := 0
	for _, c := range m.categories {
		if c.Active {
			count++
		}
	}
	return count, nil
}

func (m *mockCategoryRepo) CountBySlug(ctx context.Context, normalizedSlug string, excludeID int64) (int, error) {
	count := 0
	for _, c := range m.categories {
		if c.ID != excludeID && strings.EqualFold(c.Slug, normalizedSlug) {
			count++
		}
	}
	return count, nil
}

func (m *mockCategoryRepo) SetActive(ctx context.Context, id int64, active bool) error {
	c, ok := m.categories[id]
	if !ok {
		return repository.ErrCategoryNotFound
	}
	c.Active = active
	return nil
}

type mockLinkRepo struct {
	links  map[int64]*domain.Link
	nextID int64
}

func newMockLinkRepo() *mockLinkRepo {
	return &mockLinkRepo{links: map[int64]*domain.Link{}, nextID: 1}
}

func (m *mockLinkRepo) add(l *domain.Link) *domain.Link {
	if l.ID == 0 {
		l.ID = m.nextID
	}
	if l.ID >= m.nextID {
		m.nextID = l.ID + 1
	}
	m.links[l.ID] = l
	return l
}

func (m *mockLinkRepo) Create(ctx context.Context, link *domain.Link) error {
	link.ID = m.nextID
	m.nextID++
	m.links[link.ID] = link
	return nil
}

func (m *mockLinkRepo) FindByID(ctx context.Context, id int64) (*domain.Link, error) {
	l, ok := m.links[id]
	if !ok {
		return nil, repository.ErrLinkNotFound
	}
	clone := *l
	return &clone, nil
}

func (m *mockLinkRepo) FindActiveByProduct(ctx context.Context, productID int64) ([]*domain.Link, error) {
	out := []*domain.Link{}
	for _, l := range m.links {
		if l.ProductID == productID && l.Active {
			clone := *l
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *mockLinkRepo) CountActiveByProduct(ctx context.Context, productID int64) (int, error) {
	links, _ := m.FindActiveByProduct(ctx, productID)
	return len(links), nil
}

// mockSlugLookup multiplexes the uniqueness probe over the repo doubles
type mockSlugLookup struct {
	products   *mockProductRepo
	categories *mockCategoryRepo
}

func (m *mockSlugLookup) CountBySlug(ctx context.Context, entityType slug.EntityType, normalizedSlug string, excludeID int64) (int, error) {
	switch entityType {
	case slug.EntityCategory:
		return m.categories.CountBySlug(ctx, normalizedSlug, excludeID)
	default:
		return m.products.CountBySlug(ctx, normalizedSlug, excludeID)
	}
}

// fixture wires a CurationService over the in-memory doubles and a
// miniredis-backed cache
type fixture struct {
	products   *mockProductRepo
	categories *mockCategoryRepo
	links      *mockLinkRepo
	cache      cache.Cache
	redis      *miniredis.Miniredis
	slugs      *slug.Service
	svc        *CurationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.NewRedis(client)

	products := newMockProductRepo()
	categories := newMockCategoryRepo()
	links := newMockLinkRepo()

	slugs := slug.NewService(
		&mockSlugLookup{products: products, categories: categories},
		c,
		config.SlugConfig{MinLength: 3, MaxLength: 100, MaxSuffixAttempts: 10, UniquenessCacheTTL: time.Minute},
		zap.NewNop(),
	)

	cfg := config.CatalogConfig{
		MaxProducts:         300,
		MaxActiveCategories: 15,
		MaxBatchSize:        100,
		DailyCreateQuota:    50,
	}

	return &fixture{
		products:   products,
		categories: categories,
		links:      links,
		cache:      c,
		redis:      mr,
		slugs:      slugs,
		svc:        NewCurationService(products, categories, links, slugs, c, cfg, zap.NewNop()),
	}
}

// activeCategory seeds an active category and returns its id
func (f *fixture) activeCategory(name string) int64 {
	c := f.categories.add(&domain.Category{Name: name, Slug: slug.Normalize(name), Active: true})
	return c.ID
}

// verifiedProduct seeds a product that satisfies every publication
// prerequisite: VERIFIED status, required fields, active category, one
// active marketplace link, price in bounds
func (f *fixture) verifiedProduct(name string) *domain.Product {
	categoryID := f.activeCategory("Electronics " + name)
	p := f.products.add(&domain.Product{
		Name:        name,
		Slug:        slug.Normalize(name),
		MarketPrice: decimal.NewFromInt(4999),
		CategoryID:  &categoryID,
		Status:      domain.StatusVerified,
		ImageRef:    "images/" + slug.Normalize(name) + ".jpg",
		ImageSource: domain.ImageSourceUpload,
	})
	f.links.add(&domain.Link{ProductID: p.ID, MarketplaceID: 1, URL: "https://example.test/" + p.Slug, Active: true})
	return p
}

// errByRule finds a collected failure by its rule name
func errByRule(errs []FieldError, rule string) *FieldError {
	for i := range errs {
		if errs[i].Rule == rule {
			return &errs[i]
		}
	}
	return nil
}
