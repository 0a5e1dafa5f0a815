package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/rmehra-dev/techshop-backend/pkg/db/models"
)

// ProductFilters describe the inputs supported by the product list.
type ProductFilters struct {
	Brand    string
	Query    string
	IsActive *bool
}

// ProductList wraps the paginated products plus the next page cursor.
type ProductList struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// VariantWithProduct joins a variant to the product fields the inventory
// layer needs for threshold and policy decisions.
type VariantWithProduct struct {
	Variant models.ProductVariant
	Product models.Product
}

// VariantInput carries the per-variant fields accepted at product creation.
type VariantInput struct {
	SKU           string          `json:"sku" validate:"required"`
	Color         string          `json:"color" validate:"required"`
	Size          *string         `json:"size,omitempty"`
	Barcode       *string         `json:"barcode,omitempty"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	MarketPrice   decimal.Decimal `json:"market_price"`
	Quantity      int             `json:"quantity" validate:"gte=0"`
	MinStockLevel int             `json:"min_stock_level" validate:"gte=0"`
}

// CreateProductInput is the service-level payload for adding a product.
type CreateProductInput struct {
	Name              string         `json:"name" validate:"required"`
	Brand             string         `json:"brand" validate:"required"`
	Model             *string        `json:"model,omitempty"`
	Description       *string        `json:"description,omitempty"`
	Tags              []string       `json:"tags,omitempty"`
	TrackInventory    *bool          `json:"track_inventory,omitempty"`
	AllowBackorders   bool           `json:"allow_backorders"`
	LowStockThreshold int            `json:"low_stock_threshold" validate:"gte=0"`
	Variants          []VariantInput `json:"variants" validate:"required,min=1,dive"`
}

// UpdateVariantPricingInput adjusts a variant's price triplet.
type UpdateVariantPricingInput struct {
	SKU          string          `json:"sku" validate:"required"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	MarketPrice  decimal.Decimal `json:"market_price"`
}
