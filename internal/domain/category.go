package domain

import "time"

// Category represents a product category. The hierarchy is shallow: a
// category either has no parent or points at a root category.
type Category struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	Active    bool      `json:"active" db:"active"`
	ParentID  *int64    `json:"parent_id" db:"parent_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
