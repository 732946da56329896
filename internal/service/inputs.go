package service

import (
	"github.com/shopspring/decimal"

	"catalog-curator/internal/domain"
)

// CreateProductInput is the typed input for product creation. Fields are
// explicit so nothing reaches the store that was not deliberately listed
// here; there is no generic map hydration anywhere in the engine.
type CreateProductInput struct {
	Name        string             `json:"name" validate:"required,min=2,max=255"`
	Slug        string             `json:"slug" validate:"required"`
	Description string             `json:"description" validate:"max=5000"`
	MarketPrice decimal.Decimal    `json:"market_price"`
	CategoryID  *int64             `json:"category_id"`
	ImageRef    string             `json:"image_ref" validate:"max=500"`
	ImageSource domain.ImageSource `json:"image_source" validate:"omitempty,oneof=upload external"`
}

// UpdateProductPatch is the typed partial update for a product. A nil
// pointer means the field is absent from the patch and is neither
// validated nor written.
type UpdateProductPatch struct {
	Name        *string             `json:"name" validate:"omitempty,min=2,max=255"`
	Slug        *string             `json:"slug"`
	Description *string             `json:"description" validate:"omitempty,max=5000"`
	MarketPrice *decimal.Decimal    `json:"market_price"`
	CategoryID  *int64              `json:"category_id"`
	ImageRef    *string             `json:"image_ref" validate:"omitempty,max=500"`
	ImageSource *domain.ImageSource `json:"image_source" validate:"omitempty,oneof=upload external"`
}

// IsEmpty reports whether the patch carries no fields at all
func (p *UpdateProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Slug == nil && p.Description == nil &&
		p.MarketPrice == nil && p.CategoryID == nil &&
		p.ImageRef == nil && p.ImageSource == nil
}

// PublishRequest asks the gate whether a product may reach PUBLISHED or
// VERIFIED. AdminID is the explicit acting admin, never read from ambient
// session state.
type PublishRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	AdminID   int64 `json:"admin_id" validate:"required"`
	Force     bool  `json:"force"`
}

// BulkOperation names the per-item operation a bulk call applies
type BulkOperation string

const (
	BulkArchive BulkOperation = "archive"
	BulkRestore BulkOperation = "restore"
	BulkDelete  BulkOperation = "delete"
)
