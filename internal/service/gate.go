package service

import (
	"context"
	"fmt"

	"catalog-curator/internal/domain"
	"catalog-curator/internal/slug"
)

// Gate decides whether a specific product snapshot may reach VERIFIED or
// PUBLISHED, beyond the bare state-machine legality. It holds no state of
// its own; every call is a fresh decision over the snapshots it is handed.
type Gate struct {
	slugs *slug.Service
}

// NewGate creates a publication gate backed by the slug uniqueness service
func NewGate(slugs *slug.Service) *Gate {
	return &Gate{slugs: slugs}
}

// Evaluate runs every gate check in documented order and collects all
// failures, so the admin sees the complete correction list in one pass.
// With force=true only the state-machine check can block; every other
// failure is reported as a warning and the transition stays eligible.
func (g *Gate) Evaluate(
	ctx context.Context,
	product *domain.Product,
	category *domain.Category,
	activeLinks []*domain.Link,
	target domain.Status,
	force bool,
) (*GateResult, error) {
	result := &GateResult{Eligible: true, Errors: []FieldError{}}

	blocking := []FieldError{}
	advisory := []FieldError{}

	// 1. State-machine legality is mandatory even under force.
	if !domain.CanTransition(product.Status, target) {
		blocking = append(blocking, FieldError{
			Field:          "status",
			Rule:           "illegal_transition",
			Kind:           KindBusinessRule,
			Message:        fmt.Sprintf("cannot transition from %s to %s", product.Status, target),
			OffendingValue: string(product.Status),
		})
	}

	// 2. Required fields.
	if product.Name == "" {
		advisory = append(advisory, FieldError{
			Field: "name", Rule: "required", Kind: KindShape,
			Message: "name is required for publication",
		})
	}
	if product.Slug == "" {
		advisory = append(advisory, FieldError{
			Field: "slug", Rule: "required", Kind: KindShape,
			Message: "slug is required for publication",
		})
	}
	if product.MarketPrice.IsZero() {
		advisory = append(advisory, FieldError{
			Field: "market_price", Rule: "required", Kind: KindShape,
			Message: "market price is required for publication",
		})
	}
	if product.CategoryID == nil {
		advisory = append(advisory, FieldError{
			Field: "category_id", Rule: "required", Kind: KindShape,
			Message: "category is required for publication",
		})
	}
	if !product.HasImage() {
		advisory = append(advisory, FieldError{
			Field: "image", Rule: "required", Kind: KindShape,
			Message: "image is required for publication",
		})
	}

	// 3. Category exists and is active, only when a category is set.
	if product.CategoryID != nil {
		if category == nil {
			advisory = append(advisory, FieldError{
				Field:          "category_id",
				Rule:           "category_not_found",
				Kind:           KindNotFound,
				Message:        "referenced category does not exist",
				OffendingValue: *product.CategoryID,
			})
		} else if !category.Active {
			advisory = append(advisory, FieldError{
				Field:          "category_id",
				Rule:           "category_inactive",
				Kind:           KindBusinessRule,
				Message:        "referenced category is not active",
				OffendingValue: *product.CategoryID,
			})
		}
	}

	// 4. At least one active marketplace link.
	if len(activeLinks) == 0 {
		advisory = append(advisory, FieldError{
			Field:   "links",
			Rule:    "active_links_required",
			Kind:    KindBusinessRule,
			Message: "at least one active marketplace link is required",
		})
	}

	// 5. Price inside the absolute publishable range.
	if !product.MarketPrice.IsZero() && !product.PriceInBounds() {
		advisory = append(advisory, FieldError{
			Field:          "market_price",
			Rule:           "price_out_of_bounds",
			Kind:           KindBusinessRule,
			Message:        fmt.Sprintf("market price must be between %s and %s", domain.MinMarketPrice, domain.MaxMarketPrice),
			OffendingValue: product.MarketPrice.String(),
		})
	}

	// 6. Slug globally unique among products, excluding this product.
	if product.Slug != "" {
		unique, err := g.slugs.IsUnique(ctx, slug.EntityProduct, product.Slug, product.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check slug uniqueness: %w", err)
		}
		if !unique {
			advisory = append(advisory, FieldError{
				Field:          "slug",
				Rule:           "slug_taken",
				Kind:           KindBusinessRule,
				Message:        "slug is already used by another product",
				OffendingValue: product.Slug,
			})
		}
	}

	result.Errors = append(result.Errors, blocking...)
	if force {
		result.Warnings = append(result.Warnings, advisory...)
	} else {
		result.Errors = append(result.Errors, advisory...)
	}
	result.Eligible = len(result.Errors) == 0

	return result, nil
}
