package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImageSource describes where a product image comes from
type ImageSource string

const (
	ImageSourceUpload   ImageSource = "upload"
	ImageSourceExternal ImageSource = "external"
)

// Product represents a curated product in the catalog
type Product struct {
	ID             int64           `json:"id" db:"id"`
	Slug           string          `json:"slug" db:"slug"`
	Name           string          `json:"name" db:"name"`
	Description    string          `json:"description" db:"description"`
	MarketPrice    decimal.Decimal `json:"market_price" db:"market_price"`
	CategoryID     *int64          `json:"category_id" db:"category_id"`
	Status         Status          `json:"status" db:"status"`
	ImageRef       string          `json:"image_ref" db:"image_ref"`
	ImageSource    ImageSource     `json:"image_source" db:"image_source"`
	ViewCount      int64           `json:"view_count" db:"view_count"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
	PublishedAt    *time.Time      `json:"published_at" db:"published_at"`
	VerifiedAt     *time.Time      `json:"verified_at" db:"verified_at"`
	PriceCheckedAt *time.Time      `json:"price_checked_at" db:"price_checked_at"`
	LinkCheckedAt  *time.Time      `json:"link_checked_at" db:"link_checked_at"`
	DeletedAt      *time.Time      `json:"deleted_at" db:"deleted_at"`
}

// IsDeleted reports whether the product carries a soft-delete tombstone
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// HasImage reports whether an image reference is present
func (p *Product) HasImage() bool {
	return p.ImageRef != ""
}

// Price bounds for publishable products. Currency minor-unit-agnostic;
// compared as fixed-point decimals, never as floats.
var (
	MinMarketPrice = decimal.NewFromInt(100)
	MaxMarketPrice = decimal.NewFromInt(1_000_000_000)
)

// PriceInBounds reports whether the market price sits inside the absolute
// publishable range [MinMarketPrice, MaxMarketPrice]
func (p *Product) PriceInBounds() bool {
	return p.MarketPrice.GreaterThanOrEqual(MinMarketPrice) &&
		p.MarketPrice.LessThanOrEqual(MaxMarketPrice)
}
