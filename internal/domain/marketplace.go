package domain

import "time"

// Marketplace represents a storefront platform products link out to
type Marketplace struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	IconRef   string    `json:"icon_ref" db:"icon_ref"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Badge is a visual label attachable to products
type Badge struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MarketplaceBadge is a marketplace-specific label attachable to links
type MarketplaceBadge struct {
	ID            int64     `json:"id" db:"id"`
	MarketplaceID int64     `json:"marketplace_id" db:"marketplace_id"`
	Name          string    `json:"name" db:"name"`
	Color         string    `json:"color" db:"color"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
