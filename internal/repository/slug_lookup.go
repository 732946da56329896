package repository

import (
	"context"
	"fmt"

	"catalog-curator/internal/slug"
)

type slugLookup struct {
	products     ProductRepository
	categories   CategoryRepository
	marketplaces MarketplaceRepository
}

// NewSlugLookup multiplexes the per-entity slug counts behind the
// uniqueness service's lookup contract
func NewSlugLookup(p ProductRepository, c CategoryRepository, m MarketplaceRepository) slug.Lookup {
	return &slugLookup{products: p, categories: c, marketplaces: m}
}

func (l *slugLookup) CountBySlug(ctx context.Context, entityType slug.EntityType, normalizedSlug string, excludeID int64) (int, error) {
	switch entityType {
	case slug.EntityProduct:
		return l.products.CountBySlug(ctx, normalizedSlug, excludeID)
	case slug.EntityCategory:
		return l.categories.CountBySlug(ctx, normalizedSlug, excludeID)
	case slug.EntityMarketplace:
		return l.marketplaces.CountBySlug(ctx, normalizedSlug, excludeID)
	default:
		return 0, fmt.Errorf("unknown slug entity type %q", entityType)
	}
}
