package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmehra-dev/techshop-backend/internal/catalog"
	"github.com/rmehra-dev/techshop-backend/pkg/enums"
	pkgerrors "github.com/rmehra-dev/techshop-backend/pkg/errors"
	"github.com/rmehra-dev/techshop-backend/pkg/pagination"
)

type txRetryRunner interface {
	WithTxRetry(ctx context.Context, maxAttempts int, fn func(tx *gorm.DB) error) error
}

// Service defines inventory operations above the stock engine.
type Service interface {
	AdjustInventory(ctx context.Context, input AdjustInput) (*AdjustResult, error)
	ListMovements(ctx context.Context, productID uuid.UUID, params pagination.Params, filters MovementFilters) (*MovementList, error)
	LowStockReport(ctx context.Context) (*LowStockReport, error)
}

type service struct {
	catalog     catalog.Repository
	movements   MovementRepository
	engine      Engine
	tx          txRetryRunner
	maxAttempts int
}

// NewService builds an inventory service with the required dependencies.
func NewService(catalogRepo catalog.Repository, movements MovementRepository, engine Engine, tx txRetryRunner, maxAttempts int) (Service, error) {
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if movements == nil {
		return nil, fmt.Errorf("movement repository required")
	}
	if engine == nil {
		return nil, fmt.Errorf("stock engine required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &service{
		catalog:     catalogRepo,
		movements:   movements,
		engine:      engine,
		tx:          tx,
		maxAttempts: maxAttempts,
	}, nil
}

func (s *service) AdjustInventory(ctx context.Context, input AdjustInput) (*AdjustResult, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.SKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if input.StaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "staff identity missing")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown movement type %s", input.Type)
	}
	if input.Type == enums.MovementTypeAdjustment {
		if input.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjusted quantity must not be negative")
		}
	} else if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var result *AdjustResult
	err := s.tx.WithTxRetry(ctx, s.maxAttempts, func(tx *gorm.DB) error {
		repo := s.catalog.WithTx(tx)
		product, err := repo.FindProductByID(ctx, input.ProductID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		variant := product.VariantBySKU(input.SKU)
		if variant == nil {
			return pkgerrors.Newf(pkgerrors.CodeNotFound, "variant %s not found on product", input.SKU)
		}
		if !product.TrackInventory {
			return pkgerrors.New(pkgerrors.CodeValidation, "inventory tracking disabled for product")
		}
		threshold := variant.Threshold(product)

		var change *StockChange
		switch input.Type {
		case enums.MovementTypeIn, enums.MovementTypeReturn:
			change, err = s.engine.Credit(ctx, tx, CreditInput{
				SKU:           input.SKU,
				Quantity:      input.Quantity,
				Threshold:     threshold,
				MarkRestocked: true,
				MovementType:  input.Type,
				Reference:     enums.MovementReferenceManual,
				Reason:        input.Reason,
				Notes:         input.Notes,
				StaffID:       input.StaffID,
			})
			if err != nil {
				return err
			}
			if input.CostPrice != nil {
				if input.CostPrice.GreaterThan(variant.SellingPrice) {
					return pkgerrors.New(pkgerrors.CodeInvalidPrice, "cost price exceeds selling price")
				}
				updates := map[string]any{"cost_price": *input.CostPrice}
				if err := repo.UpdateVariant(ctx, variant.ID, updates); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cost price")
				}
			}

		case enums.MovementTypeOut, enums.MovementTypeDamage:
			change, err = s.engine.Debit(ctx, tx, DebitInput{
				SKU:            input.SKU,
				Quantity:       input.Quantity,
				AllowBackorder: product.AllowBackorders,
				Threshold:      threshold,
				MovementType:   input.Type,
				Reference:      enums.MovementReferenceManual,
				Reason:         input.Reason,
				Notes:          input.Notes,
				StaffID:        input.StaffID,
			})
			if err != nil {
				return err
			}

		case enums.MovementTypeAdjustment:
			change, err = s.engine.SetAbsolute(ctx, tx, AbsoluteInput{
				SKU:         input.SKU,
				NewQuantity: input.Quantity,
				Threshold:   threshold,
				Reference:   enums.MovementReferenceManual,
				Reason:      input.Reason,
				Notes:       input.Notes,
				StaffID:     input.StaffID,
			})
			if err != nil {
				return err
			}
		}

		result = &AdjustResult{
			SKU:           change.SKU,
			PreviousStock: change.PreviousStock,
			NewStock:      change.PersistedStock,
			Status:        change.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListMovements(ctx context.Context, productID uuid.UUID, params pagination.Params, filters MovementFilters) (*MovementList, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	list, err := s.movements.ListByProduct(ctx, productID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}
	return list, nil
}

func (s *service) LowStockReport(ctx context.Context) (*LowStockReport, error) {
	variants, err := s.catalog.ListActiveVariants(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list variants")
	}

	report := &LowStockReport{GeneratedAt: time.Now().UTC()}
	for _, vp := range variants {
		if !vp.Product.TrackInventory {
			continue
		}
		threshold := vp.Variant.Threshold(&vp.Product)
		if vp.Variant.Quantity > threshold {
			continue
		}
		status := enums.DeriveInventoryStatus(vp.Variant.Quantity, threshold)
		health := StockHealthYellow
		if vp.Variant.Quantity <= 0 {
			health = StockHealthRed
			report.RedCount++
		} else {
			report.YellowCount++
		}
		report.Entries = append(report.Entries, LowStockEntry{
			ProductID:   vp.Product.ID,
			ProductName: vp.Product.Name,
			SKU:         vp.Variant.SKU,
			Color:       vp.Variant.Color,
			Quantity:    vp.Variant.Quantity,
			Threshold:   threshold,
			Status:      status,
			Health:      health,
		})
	}
	return report, nil
}
