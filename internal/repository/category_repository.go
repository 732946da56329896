package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"catalog-curator/internal/domain"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	ExistsActive(ctx context.Context, id int64) (bool, error)
	CountActive(ctx context.Context) (int, error)
	CountBySlug(ctx context.Context, normalizedSlug string, excludeID int64) (int, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = `id, name, slug, sort_order, active, parent_id, created_at, updated_at`

// Create inserts a new category using parameterized queries
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (name, slug, sort_order, active, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		category.Name,
		category.Slug,
		category.SortOrder,
		category.Active,
		category.ParentID,
		category.CreatedAt,
		category.UpdatedAt,
	).Scan(&category.ID)

	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// FindByID retrieves a category by ID
func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE id = $1`, categoryColumns)

	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
		&category.SortOrder,
		&category.Active,
		&category.ParentID,
		&category.CreatedAt,
		&category.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

// List retrieves all categories ordered by sort order
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories ORDER BY sort_order, name`, categoryColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.Slug,
			&category.SortOrder,
			&category.Active,
			&category.ParentID,
			&category.CreatedAt,
			&category.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// ExistsActive reports whether an active category with the id exists
func (r *categoryRepository) ExistsActive(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1 AND active)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active category: %w", err)
	}
	return exists, nil
}

// CountActive counts active categories. Read immediately before admitting
// an activation so the category-cap window stays narrow.
func (r *categoryRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE active`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active categories: %w", err)
	}
	return count, nil
}

// CountBySlug counts categories holding the normalized slug, case-insensitively
func (r *categoryRepository) CountBySlug(ctx context.Context, normalizedSlug string, excludeID int64) (int, error) {
	query := `SELECT COUNT(*) FROM categories WHERE LOWER(slug) = LOWER($1) AND id <> $2`

	var count int
	err := r.db.QueryRowContext(ctx, query, normalizedSlug, excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count categories by slug: %w", err)
	}
	return count, nil
}

// SetActive flips the active flag on a category
func (r *categoryRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `UPDATE categories SET active = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set category active flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
