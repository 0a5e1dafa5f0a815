package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rmehra-dev/techshop-backend/pkg/db/models"
	"github.com/rmehra-dev/techshop-backend/pkg/enums"
)

// DebitInput removes stock from a variant. Backorder policy decides what
// happens when the requested quantity exceeds the level on hand.
type DebitInput struct {
	SKU            string
	Quantity       int
	AllowBackorder bool
	Threshold      int
	BumpSold       bool
	MovementType   enums.MovementType
	Reference      enums.MovementReference
	ReferenceID    *uuid.UUID
	Reason         string
	Notes          *string
	StaffID        uuid.UUID
}

// CreditInput returns stock to a variant.
type CreditInput struct {
	SKU           string
	Quantity      int
	Threshold     int
	MarkRestocked bool
	MovementType  enums.MovementType
	Reference     enums.MovementReference
	ReferenceID   *uuid.UUID
	Reason        string
	Notes         *string
	StaffID       uuid.UUID
}

// AbsoluteInput replaces a variant's stock level with an exact count.
type AbsoluteInput struct {
	SKU         string
	NewQuantity int
	Threshold   int
	Reference   enums.MovementReference
	ReferenceID *uuid.UUID
	Reason      string
	Notes       *string
	StaffID     uuid.UUID
}

// StockChange reports the outcome of one engine mutation. LedgerStock may
// be negative on a backordered debit even though PersistedStock is
// floored at zero.
type StockChange struct {
	SKU            string
	PreviousStock  int
	LedgerStock    int
	PersistedStock int
	Status         enums.InventoryStatus
}

// MovementFilters narrow a ledger history query.
type MovementFilters struct {
	MovementType *enums.MovementType
	DateFrom     *time.Time
	DateTo       *time.Time
}

// MovementList wraps paginated ledger entries plus the next cursor.
type MovementList struct {
	Movements  []models.StockMovement `json:"movements"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

// AdjustInput is the service-level payload for a manual stock adjustment.
type AdjustInput struct {
	ProductID uuid.UUID
	SKU       string
	Type      enums.MovementType
	Quantity  int
	Reason    string
	Notes     *string
	CostPrice *decimal.Decimal
	StaffID   uuid.UUID
}

// AdjustResult reports the applied adjustment.
type AdjustResult struct {
	SKU           string                `json:"sku"`
	PreviousStock int                   `json:"previous_stock"`
	NewStock      int                   `json:"new_stock"`
	Status        enums.InventoryStatus `json:"status"`
}

// StockHealth buckets a variant in the low-stock report.
type StockHealth string

const (
	StockHealthRed    StockHealth = "red"
	StockHealthYellow StockHealth = "yellow"
	StockHealthGreen  StockHealth = "green"
)

// LowStockEntry is one row of the low-stock report.
type LowStockEntry struct {
	ProductID   uuid.UUID             `json:"product_id"`
	ProductName string                `json:"product_name"`
	SKU         string                `json:"sku"`
	Color       string                `json:"color"`
	Quantity    int                   `json:"quantity"`
	Threshold   int                   `json:"threshold"`
	Status      enums.InventoryStatus `json:"status"`
	Health      StockHealth           `json:"health"`
}

// LowStockReport aggregates variants at or below their threshold.
type LowStockReport struct {
	Entries     []LowStockEntry `json:"entries"`
	RedCount    int             `json:"red_count"`
	YellowCount int             `json:"yellow_count"`
	GeneratedAt time.Time       `json:"generated_at"`
}
