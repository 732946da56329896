package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-curator/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the narrow query contract the curation engine
// reads through, plus the write-back paths the caller persists with.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	UpdateStatus(ctx context.Context, id int64, status domain.Status, at time.Time) error
	CountActive(ctx context.Context) (int, error)
	CountBySlug(ctx context.Context, normalizedSlug string, excludeID int64) (int, error)
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	Restore(ctx context.Context, id int64, status domain.Status) error
	Purge(ctx context.Context, id int64) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, slug, name, description, market_price, category_id, status,
	image_ref, image_source, view_count, created_at, updated_at,
	published_at, verified_at, price_checked_at, link_checked_at, deleted_at`

// Create inserts a new product using parameterized queries and backfills
// the generated id into the passed struct
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (slug, name, description, market_price, category_id, status,
			image_ref, image_source, view_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.Slug,
		product.Name,
		product.Description,
		product.MarketPrice,
		product.CategoryID,
		product.Status,
		product.ImageRef,
		product.ImageSource,
		product.ViewCount,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&product.ID)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID, soft-deleted rows included so the
// restore path can see tombstoned products
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Slug,
		&product.Name,
		&product.Description,
		&product.MarketPrice,
		&product.CategoryID,
		&product.Status,
		&product.ImageRef,
		&product.ImageSource,
		&product.ViewCount,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.PublishedAt,
		&product.VerifiedAt,
		&product.PriceCheckedAt,
		&product.LinkCheckedAt,
		&product.DeletedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// updatableProductColumns whitelists the columns UpdateFields may touch.
// Status and lifecycle timestamps go through their dedicated paths.
var updatableProductColumns = map[string]bool{
	"slug":         true,
	"name":         true,
	"description":  true,
	"market_price": true,
	"category_id":  true,
	"image_ref":    true,
	"image_source": true,
}

// UpdateFields applies a partial update to the whitelisted columns
func (r *productRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	setClauses := make([]string, 0, len(fields)+1)
	args := []any{id}
	argIndex := 2

	// Deterministic clause order keeps the generated SQL stable
	for _, col := range []string{"slug", "name", "description", "market_price", "category_id", "image_ref", "image_source"} {
		val, ok := fields[col]
		if !ok {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, argIndex))
		args = append(args, val)
		argIndex++
	}

	for col := range fields {
		if !updatableProductColumns[col] {
			return fmt.Errorf("column %q is not updatable through UpdateFields", col)
		}
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argIndex))
	args = append(args, time.Now().UTC())

	query := fmt.Sprintf(
		`UPDATE products SET %s WHERE id = $1 AND deleted_at IS NULL`,
		strings.Join(setClauses, ", "),
	)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update product fields: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// UpdateStatus moves a product to the given status and stamps the matching
// lifecycle timestamp. published_at and verified_at are written once, the
// first time each status is reached.
func (r *productRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status, at time.Time) error {
	var stampClause string
	switch status {
	case domain.StatusPublished:
		stampClause = ", published_at = COALESCE(published_at, $3)"
	case domain.StatusVerified:
		stampClause = ", verified_at = COALESCE(verified_at, $3)"
	default:
		stampClause = ""
	}

	query := fmt.Sprintf(
		`UPDATE products SET status = $2, updated_at = $3%s WHERE id = $1 AND deleted_at IS NULL`,
		stampClause,
	)

	result, err := r.db.ExecContext(ctx, query, id, status, at)
	if err != nil {
		return fmt.Errorf("failed to update product status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// CountActive counts non-soft-deleted products. Read immediately before
// admitting a create so the catalog-cap window stays as narrow as the
// store allows.
func (r *productRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active products: %w", err)
	}
	return count, nil
}

// CountBySlug counts non-soft-deleted products holding the normalized slug,
// case-insensitively, excluding the given id (0 excludes nothing)
func (r *productRepository) CountBySlug(ctx context.Context, normalizedSlug string, excludeID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM products
		WHERE LOWER(slug) = LOWER($1) AND id <> $2 AND deleted_at IS NULL
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, normalizedSlug, excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products by slug: %w", err)
	}
	return count, nil
}

// SoftDelete tombstones a product without removing the row
func (r *productRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE products SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to soft delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Restore clears the tombstone and lands the product in the given status
func (r *productRepository) Restore(ctx context.Context, id int64, status domain.Status) error {
	query := `UPDATE products SET deleted_at = NULL, status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to restore product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Purge physically removes a product row. Links are removed by the schema's
// ON DELETE CASCADE.
func (r *productRepository) Purge(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to purge product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}
