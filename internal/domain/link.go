package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Link represents a product's listing on a marketplace storefront
type Link struct {
	ID                 int64           `json:"id" db:"id"`
	ProductID          int64           `json:"product_id" db:"product_id"`
	MarketplaceID      int64           `json:"marketplace_id" db:"marketplace_id"`
	StoreName          string          `json:"store_name" db:"store_name"`
	Price              decimal.Decimal `json:"price" db:"price"`
	URL                string          `json:"url" db:"url"`
	Rating             float64         `json:"rating" db:"rating"`
	Active             bool            `json:"active" db:"active"`
	ClickCount         int64           `json:"click_count" db:"click_count"`
	SoldCount          int64           `json:"sold_count" db:"sold_count"`
	Revenue            decimal.Decimal `json:"revenue" db:"revenue"`
	MarketplaceBadgeID *int64          `json:"marketplace_badge_id" db:"marketplace_badge_id"`
	PriceUpdatedAt     *time.Time      `json:"price_updated_at" db:"price_updated_at"`
	ValidatedAt        *time.Time      `json:"validated_at" db:"validated_at"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}
