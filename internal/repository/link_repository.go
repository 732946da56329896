package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalog-curator/internal/domain"
)

var (
	ErrLinkNotFound = errors.New("link not found")
)

// LinkRepository defines the interface for marketplace-link data access
type LinkRepository interface {
	Create(ctx context.Context, link *domain.Link) error
	FindByID(ctx context.Context, id int64) (*domain.Link, error)
	FindActiveByProduct(ctx context.Context, productID int64) ([]*domain.Link, error)
	CountActiveByProduct(ctx context.Context, productID int64) (int, error)
}

type linkRepository struct {
	db *sql.DB
}

// NewLinkRepository creates a new instance of LinkRepository
func NewLinkRepository(db *sql.DB) LinkRepository {
	return &linkRepository{db: db}
}

const linkColumns = `id, product_id, marketplace_id, store_name, price, url, rating, active,
	click_count, sold_count, revenue, marketplace_badge_id,
	price_updated_at, validated_at, created_at, updated_at`

// Create inserts a new link using parameterized queries
func (r *linkRepository) Create(ctx context.Context, link *domain.Link) error {
	query := `
		INSERT INTO links (product_id, marketplace_id, store_name, price, url, rating, active,
			click_count, sold_count, revenue, marketplace_badge_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		link.ProductID,
		link.MarketplaceID,
		link.StoreName,
		link.Price,
		link.URL,
		link.Rating,
		link.Active,
		link.ClickCount,
		link.SoldCount,
		link.Revenue,
		link.MarketplaceBadgeID,
		link.CreatedAt,
		link.UpdatedAt,
	).Scan(&link.ID)

	if err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// FindByID retrieves a link by ID
func (r *linkRepository) FindByID(ctx context.Context, id int64) (*domain.Link, error) {
	query := fmt.Sprintf(`SELECT %s FROM links WHERE id = $1`, linkColumns)

	link := &domain.Link{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&link.ID,
		&link.ProductID,
		&link.MarketplaceID,
		&link.StoreName,
		&link.Price,
		&link.URL,
		&link.Rating,
		&link.Active,
		&link.ClickCount,
		&link.SoldCount,
		&link.Revenue,
		&link.MarketplaceBadgeID,
		&link.PriceUpdatedAt,
		&link.ValidatedAt,
		&link.CreatedAt,
		&link.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to find link by ID: %w", err)
	}

	return link, nil
}

// FindActiveByProduct retrieves all active links for a product
func (r *linkRepository) FindActiveByProduct(ctx context.Context, productID int64) ([]*domain.Link, error) {
	query := fmt.Sprintf(`SELECT %s FROM links WHERE product_id = $1 AND active ORDER BY id`, linkColumns)

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to find active links: %w", err)
	}
	defer rows.Close()

	links := []*domain.Link{}
	for rows.Next() {
		link := &domain.Link{}
		err := rows.Scan(
			&link.ID,
			&link.ProductID,
			&link.MarketplaceID,
			&link.StoreName,
			&link.Price,
			&link.URL,
			&link.Rating,
			&link.Active,
			&link.ClickCount,
			&link.SoldCount,
			&link.Revenue,
			&link.MarketplaceBadgeID,
			&link.PriceUpdatedAt,
			&link.ValidatedAt,
			&link.CreatedAt,
			&link.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

// CountActiveByProduct counts a product's active links
func (r *linkRepository) CountActiveByProduct(ctx context.Context, productID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM links WHERE product_id = $1 AND active`,
		productID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active links: %w", err)
	}
	return count, nil
}
