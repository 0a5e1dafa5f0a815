package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmehra-dev/techshop-backend/pkg/db/models"
	"github.com/rmehra-dev/techshop-backend/pkg/pagination"
)

// MovementRepository persists and queries the append-only stock ledger.
type MovementRepository interface {
	WithTx(tx *gorm.DB) MovementRepository
	Create(ctx context.Context, movement *models.StockMovement) (*models.StockMovement, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params, filters MovementFilters) (*MovementList, error)
}

// Engine applies stock mutations inside a caller-owned transaction. Every
// successful mutation writes exactly one ledger entry capturing the
// before/after levels of that mutation.
type Engine interface {
	Debit(ctx context.Context, tx *gorm.DB, input DebitInput) (*StockChange, error)
	Credit(ctx context.Context, tx *gorm.DB, input CreditInput) (*StockChange, error)
	SetAbsolute(ctx context.Context, tx *gorm.DB, input AbsoluteInput) (*StockChange, error)
}
