package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Product is the catalog aggregate root; variants have no independent
// lifecycle outside their owning product.
type Product struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name              string           `gorm:"column:name;not null" json:"name"`
	Brand             string           `gorm:"column:brand;not null" json:"brand"`
	Model             *string          `gorm:"column:model" json:"model,omitempty"`
	Description       *string          `gorm:"column:description" json:"description,omitempty"`
	Tags              pq.StringArray   `gorm:"column:tags;type:text[]" json:"tags,omitempty"`
	TrackInventory    bool             `gorm:"column:track_inventory;not null;default:true" json:"trackInventory"`
	AllowBackorders   bool             `gorm:"column:allow_backorders;not null;default:false" json:"allowBackorders"`
	LowStockThreshold int              `gorm:"column:low_stock_threshold;not null;default:5" json:"lowStockThreshold"`
	TotalSold         int              `gorm:"column:total_sold;not null;default:0" json:"totalSold"`
	IsActive          bool             `gorm:"column:is_active;not null;default:true" json:"isActive"`
	Variants          []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// VariantBySKU returns the owned variant carrying sku, or nil.
func (p *Product) VariantBySKU(sku string) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			return &p.Variants[i]
		}
	}
	return nil
}
