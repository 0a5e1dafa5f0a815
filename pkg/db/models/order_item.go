package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem snapshots the product/variant at sale time; catalog edits
// after the sale never change what the customer bought.
type OrderItem struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID          uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index" json:"orderId"`
	ProductID        uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"productId"`
	ProductName      string          `gorm:"column:product_name;not null" json:"productName"`
	VariantSKU       string          `gorm:"column:variant_sku;not null;index" json:"variantSku"`
	VariantColor     string          `gorm:"column:variant_color;not null" json:"variantColor"`
	VariantSize      *string         `gorm:"column:variant_size" json:"variantSize,omitempty"`
	Quantity         int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unitPrice"`
	TotalPrice       decimal.Decimal `gorm:"column:total_price;type:numeric(14,2);not null" json:"totalPrice"`
	SerialNumber     *string         `gorm:"column:serial_number" json:"serialNumber,omitempty"`
	RefundedQuantity int             `gorm:"column:refunded_quantity;not null;default:0" json:"refundedQuantity"`
	RefundedAmount   decimal.Decimal `gorm:"column:refunded_amount;type:numeric(14,2);not null;default:0" json:"refundedAmount"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (i *OrderItem) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// RefundableQuantity returns how many units of the item can still be
// refunded.
func (i *OrderItem) RefundableQuantity() int {
	remaining := i.Quantity - i.RefundedQuantity
	if remaining < 0 {
		return 0
	}
	return remaining
}
