package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalog-curator/internal/domain"
)

var (
	ErrMarketplaceNotFound = errors.New("marketplace not found")
)

// MarketplaceRepository defines lookup access to marketplaces and their badges
type MarketplaceRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Marketplace, error)
	Exists(ctx context.Context, id int64) (bool, error)
	CountBySlug(ctx context.Context, normalizedSlug string, excludeID int64) (int, error)
	BadgeExists(ctx context.Context, badgeID int64) (bool, error)
}

type marketplaceRepository struct {
	db *sql.DB
}

// NewMarketplaceRepository creates a new instance of MarketplaceRepository
func NewMarketplaceRepository(db *sql.DB) MarketplaceRepository {
	return &marketplaceRepository{db: db}
}

// FindByID retrieves a marketplace by ID
func (r *marketplaceRepository) FindByID(ctx context.Context, id int64) (*domain.Marketplace, error) {
	query := `SELECT id, name, slug, icon_ref, created_at FROM marketplaces WHERE id = $1`

	marketplace := &domain.Marketplace{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&marketplace.ID,
		&marketplace.Name,
		&marketplace.Slug,
		&marketplace.IconRef,
		&marketplace.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrMarketplaceNotFound
		}
		return nil, fmt.Errorf("failed to find marketplace by ID: %w", err)
	}

	return marketplace, nil
}

// Exists reports whether a marketplace with the id exists
func (r *marketplaceRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM marketplaces WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check marketplace existence: %w", err)
	}
	return exists, nil
}

// CountBySlug counts marketplaces holding the normalized slug, case-insensitively
func (r *marketplaceRepository) CountBySlug(ctx context.Context, normalizedSlug string, excludeID int64) (int, error) {
	query := `SELECT COUNT(*) FROM marketplaces WHERE LOWER(slug) = LOWER($1) AND id <> $2`

	var count int
	err := r.db.QueryRowContext(ctx, query, normalizedSlug, excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count marketplaces by slug: %w", err)
	}
	return count, nil
}

// BadgeExists reports whether a marketplace badge with the id exists
func (r *marketplaceRepository) BadgeExists(ctx context.Context, badgeID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM marketplace_badges WHERE id = $1)`,
		badgeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check marketplace badge existence: %w", err)
	}
	return exists, nil
}
