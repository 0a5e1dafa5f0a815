package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rmehra-dev/techshop-backend/pkg/enums"
)

// ProductVariant is one purchasable SKU of a product. Quantity and
// reserved counters are mutated only through the inventory engine so the
// stock ledger stays reconciled with them.
type ProductVariant struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProductID       uuid.UUID             `gorm:"column:product_id;type:uuid;not null;index" json:"productId"`
	SKU             string                `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Color           string                `gorm:"column:color;not null" json:"color"`
	Size            *string               `gorm:"column:size" json:"size,omitempty"`
	Barcode         *string               `gorm:"column:barcode" json:"barcode,omitempty"`
	CostPrice       decimal.Decimal       `gorm:"column:cost_price;type:numeric(12,2);not null" json:"costPrice"`
	SellingPrice    decimal.Decimal       `gorm:"column:selling_price;type:numeric(12,2);not null" json:"sellingPrice"`
	MarketPrice     decimal.Decimal       `gorm:"column:market_price;type:numeric(12,2);not null" json:"marketPrice"`
	Quantity        int                   `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Reserved        int                   `gorm:"column:reserved;not null;default:0" json:"reserved"`
	MinStockLevel   int                   `gorm:"column:min_stock_level;not null;default:5" json:"minStockLevel"`
	TotalSold       int                   `gorm:"column:total_sold;not null;default:0" json:"totalSold"`
	InventoryStatus enums.InventoryStatus `gorm:"column:inventory_status;not null;default:'out_of_stock'" json:"inventoryStatus"`
	LastRestockedAt *time.Time            `gorm:"column:last_restocked_at" json:"lastRestockedAt,omitempty"`
	IsActive        bool                  `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (v *ProductVariant) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// Threshold returns the low-stock threshold for the variant, falling back
// to the product-level default when the variant does not set one.
func (v *ProductVariant) Threshold(product *Product) int {
	if v.MinStockLevel > 0 {
		return v.MinStockLevel
	}
	if product != nil {
		return product.LowStockThreshold
	}
	return 0
}
