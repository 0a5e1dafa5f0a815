package inventory

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rmehra-dev/techshop-backend/pkg/db/models"
	"github.com/rmehra-dev/techshop-backend/pkg/enums"
	pkgerrors "github.com/rmehra-dev/techshop-backend/pkg/errors"
)

type engine struct {
	movements MovementRepository
}

// NewEngine builds the stock mutation engine.
func NewEngine(movements MovementRepository) (Engine, error) {
	if movements == nil {
		return nil, fmt.Errorf("movement repository required")
	}
	return &engine{movements: movements}, nil
}

func (e *engine) Debit(ctx context.Context, tx *gorm.DB, input DebitInput) (*StockChange, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debit quantity must be positive")
	}
	if !input.MovementType.IsValid() || input.MovementType.Direction() >= 0 {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "movement type %s cannot debit stock", input.MovementType)
	}

	variant, err := loadVariantBySKU(ctx, tx, input.SKU)
	if err != nil {
		return nil, err
	}

	prev := variant.Quantity
	if input.Quantity > prev && !input.AllowBackorder {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"sku":       input.SKU,
				"requested": input.Quantity,
				"available": prev,
			})
	}

	// The ledger records the raw arithmetic result; the stored quantity
	// is floored at zero when a backorder oversells.
	ledgerStock := prev - input.Quantity
	persisted := ledgerStock
	if persisted < 0 {
		persisted = 0
	}
	status := enums.DeriveInventoryStatus(persisted, input.Threshold)

	updates := map[string]any{
		"quantity":         persisted,
		"inventory_status": status,
	}
	if input.BumpSold {
		updates["total_sold"] = gorm.Expr("total_sold + ?", input.Quantity)
	}
	if err := e.applyGuardedUpdate(ctx, tx, variant.ID, prev, updates); err != nil {
		return nil, err
	}
	if input.BumpSold {
		err := tx.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ?", variant.ProductID).
			Update("total_sold", gorm.Expr("total_sold + ?", input.Quantity)).Error
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump product total sold")
		}
	}

	movement := &models.StockMovement{
		ProductID:     variant.ProductID,
		VariantSKU:    variant.SKU,
		MovementType:  input.MovementType,
		Quantity:      input.Quantity,
		PreviousStock: prev,
		NewStock:      ledgerStock,
		Reference:     input.Reference,
		ReferenceID:   input.ReferenceID,
		Reason:        input.Reason,
		Notes:         input.Notes,
		StaffID:       input.StaffID,
	}
	if _, err := e.movements.WithTx(tx).Create(ctx, movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}

	return &StockChange{
		SKU:            variant.SKU,
		PreviousStock:  prev,
		LedgerStock:    ledgerStock,
		PersistedStock: persisted,
		Status:         status,
	}, nil
}

func (e *engine) Credit(ctx context.Context, tx *gorm.DB, input CreditInput) (*StockChange, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit quantity must be positive")
	}
	if !input.MovementType.IsValid() || input.MovementType.Direction() <= 0 {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "movement type %s cannot credit stock", input.MovementType)
	}

	variant, err := loadVariantBySKU(ctx, tx, input.SKU)
	if err != nil {
		return nil, err
	}

	prev := variant.Quantity
	newStock := prev + input.Quantity
	status := enums.DeriveInventoryStatus(newStock, input.Threshold)

	updates := map[string]any{
		"quantity":         newStock,
		"inventory_status": status,
	}
	if input.MarkRestocked {
		updates["last_restocked_at"] = time.Now().UTC()
	}
	if err := e.applyGuardedUpdate(ctx, tx, variant.ID, prev, updates); err != nil {
		return nil, err
	}

	movement := &models.StockMovement{
		ProductID:     variant.ProductID,
		VariantSKU:    variant.SKU,
		MovementType:  input.MovementType,
		Quantity:      input.Quantity,
		PreviousStock: prev,
		NewStock:      newStock,
		Reference:     input.Reference,
		ReferenceID:   input.ReferenceID,
		Reason:        input.Reason,
		Notes:         input.Notes,
		StaffID:       input.StaffID,
	}
	if _, err := e.movements.WithTx(tx).Create(ctx, movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}

	return &StockChange{
		SKU:            variant.SKU,
		PreviousStock:  prev,
		LedgerStock:    newStock,
		PersistedStock: newStock,
		Status:         status,
	}, nil
}

func (e *engine) SetAbsolute(ctx context.Context, tx *gorm.DB, input AbsoluteInput) (*StockChange, error) {
	if input.NewQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "absolute quantity must not be negative")
	}

	variant, err := loadVariantBySKU(ctx, tx, input.SKU)
	if err != nil {
		return nil, err
	}

	prev := variant.Quantity
	status := enums.DeriveInventoryStatus(input.NewQuantity, input.Threshold)

	updates := map[string]any{
		"quantity":         input.NewQuantity,
		"inventory_status": status,
	}
	if err := e.applyGuardedUpdate(ctx, tx, variant.ID, prev, updates); err != nil {
		return nil, err
	}

	delta := input.NewQuantity - prev
	if delta < 0 {
		delta = -delta
	}
	movement := &models.StockMovement{
		ProductID:     variant.ProductID,
		VariantSKU:    variant.SKU,
		MovementType:  enums.MovementTypeAdjustment,
		Quantity:      delta,
		PreviousStock: prev,
		NewStock:      input.NewQuantity,
		Reference:     input.Reference,
		ReferenceID:   input.ReferenceID,
		Reason:        input.Reason,
		Notes:         input.Notes,
		StaffID:       input.StaffID,
	}
	if _, err := e.movements.WithTx(tx).Create(ctx, movement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}

	return &StockChange{
		SKU:            variant.SKU,
		PreviousStock:  prev,
		LedgerStock:    input.NewQuantity,
		PersistedStock: input.NewQuantity,
		Status:         status,
	}, nil
}

// applyGuardedUpdate mutates the variant only when its quantity still
// matches the level read in this transaction. A zero row count means
// another writer got there first.
func (e *engine) applyGuardedUpdate(ctx context.Context, tx *gorm.DB, variantID any, expectedQty int, updates map[string]any) error {
	res := tx.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ? AND quantity = ?", variantID, expectedQty).
		Updates(updates)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update variant stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConcurrentUpdate, "variant stock changed concurrently")
	}
	return nil
}

func loadVariantBySKU(ctx context.Context, tx *gorm.DB, sku string) (*models.ProductVariant, error) {
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	var variant models.ProductVariant
	err := tx.WithContext(ctx).Where("sku = ?", sku).First(&variant).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "variant %s not found", sku)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	return &variant, nil
}
