package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Refund is an append-only sub-record of an order; it is never updated
// or removed once written.
type Refund struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index" json:"orderId"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	Reason    string          `gorm:"column:reason;not null" json:"reason"`
	StaffID   uuid.UUID       `gorm:"column:staff_id;type:uuid;not null" json:"staffId"`
	Items     []RefundItem    `gorm:"foreignKey:RefundID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (r *Refund) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RefundItem records how much of one order item a refund covered.
type RefundItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	RefundID    uuid.UUID       `gorm:"column:refund_id;type:uuid;not null;index" json:"refundId"`
	OrderItemID uuid.UUID       `gorm:"column:order_item_id;type:uuid;not null" json:"orderItemId"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
}

func (r *RefundItem) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
