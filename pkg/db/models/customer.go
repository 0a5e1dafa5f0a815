package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rmehra-dev/techshop-backend/pkg/enums"
)

// Customer carries purchase aggregates that only successful order
// completion mutates; refunds intentionally leave them untouched.
type Customer struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name           string             `gorm:"column:name;not null" json:"name"`
	Phone          string             `gorm:"column:phone;not null" json:"phone"`
	Email          *string            `gorm:"column:email" json:"email,omitempty"`
	Address        *string            `gorm:"column:address" json:"address,omitempty"`
	CustomerType   enums.CustomerType `gorm:"column:customer_type;not null;default:'regular'" json:"customerType"`
	TotalOrders    int                `gorm:"column:total_orders;not null;default:0" json:"totalOrders"`
	TotalSpent     decimal.Decimal    `gorm:"column:total_spent;type:numeric(14,2);not null;default:0" json:"totalSpent"`
	LastPurchaseAt *time.Time         `gorm:"column:last_purchase_at" json:"lastPurchaseAt,omitempty"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (c *Customer) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
