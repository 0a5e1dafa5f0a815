package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmehra-dev/techshop-backend/pkg/enums"
)

// StockMovement is one immutable stock ledger entry. PreviousStock and
// NewStock are captured from the mutation that produced the entry, never
// recomputed from a separate read.
type StockMovement struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProductID     uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index:idx_stock_movements_product_date" json:"productId"`
	VariantSKU    string                  `gorm:"column:variant_sku;not null;index" json:"variantSku"`
	MovementType  enums.MovementType      `gorm:"column:movement_type;not null;index" json:"movementType"`
	Quantity      int                     `gorm:"column:quantity;not null" json:"quantity"`
	PreviousStock int                     `gorm:"column:previous_stock;not null" json:"previousStock"`
	NewStock      int                     `gorm:"column:new_stock;not null" json:"newStock"`
	Reference     enums.MovementReference `gorm:"column:reference;not null" json:"reference"`
	ReferenceID   *uuid.UUID              `gorm:"column:reference_id;type:uuid" json:"referenceId,omitempty"`
	Reason        string                  `gorm:"column:reason;not null" json:"reason"`
	Notes         *string                 `gorm:"column:notes" json:"notes,omitempty"`
	StaffID       uuid.UUID               `gorm:"column:staff_id;type:uuid;not null" json:"staffId"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime;index:idx_stock_movements_product_date" json:"createdAt"`
}

func (m *StockMovement) BeforeCreate(_ *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
