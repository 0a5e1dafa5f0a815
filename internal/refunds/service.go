package refunds

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rmehra-dev/techshop-backend/internal/catalog"
	"github.com/rmehra-dev/techshop-backend/internal/inventory"
	"github.com/rmehra-dev/techshop-backend/internal/orders"
	"github.com/rmehra-dev/techshop-backend/pkg/db/models"
	"github.com/rmehra-dev/techshop-backend/pkg/enums"
	pkgerrors "github.com/rmehra-dev/techshop-backend/pkg/errors"
)

type txRetryRunner interface {
	WithTxRetry(ctx context.Context, maxAttempts int, fn func(tx *gorm.DB) error) error
}

// Service processes refunds against existing orders.
type Service interface {
	ProcessRefund(ctx context.Context, input ProcessRefundInput) (*ProcessRefundResult, error)
}

type service struct {
	orders      orders.Repository
	catalog     catalog.Repository
	engine      inventory.Engine
	tx          txRetryRunner
	maxAttempts int
}

// NewService builds a refunds service with the required dependencies.
func NewService(ordersRepo orders.Repository, catalogRepo catalog.Repository, engine inventory.Engine, tx txRetryRunner, maxAttempts int) (Service, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
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
		orders:      ordersRepo,
		catalog:     catalogRepo,
		engine:      engine,
		tx:          tx,
		maxAttempts: maxAttempts,
	}, nil
}

// grantedLine is a refund line after clamping against what remains
// refundable on the order item.
type grantedLine struct {
	item   *models.OrderItem
	qty    int
	amount decimal.Decimal
}

func (s *service) ProcessRefund(ctx context.Context, input ProcessRefundInput) (*ProcessRefundResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.StaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "staff identity missing")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one refund item required")
	}
	for _, line := range input.Items {
		if line.OrderItemID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order item id required")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund quantity must be positive")
		}
	}

	var result *ProcessRefundResult
	err := s.tx.WithTxRetry(ctx, s.maxAttempts, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)

		order, err := repo.FindOrderByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		// Clamp each requested line to what is still refundable; lines
		// with nothing left are dropped rather than failing the refund.
		// A fully refunded order falls out here too, with every line
		// clamped to zero.
		granted := make([]grantedLine, 0, len(input.Items))
		refundTotal := decimal.Zero
		for _, line := range input.Items {
			item := order.ItemByID(line.OrderItemID)
			if item == nil {
				return pkgerrors.Newf(pkgerrors.CodeNotFound, "order item %s not found on order", line.OrderItemID)
			}
			qty := line.Quantity
			if remaining := item.RefundableQuantity(); qty > remaining {
				qty = remaining
			}
			if qty <= 0 {
				continue
			}
			amount := item.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
			granted = append(granted, grantedLine{item: item, qty: qty, amount: amount})
			refundTotal = refundTotal.Add(amount)
		}
		if len(granted) == 0 || refundTotal.IsZero() {
			return pkgerrors.New(pkgerrors.CodeNoRefundableItems, "no refundable items on order")
		}

		refund := &models.Refund{
			OrderID: order.ID,
			Amount:  refundTotal,
			Reason:  input.Reason,
			StaffID: input.StaffID,
		}
		for _, g := range granted {
			refund.Items = append(refund.Items, models.RefundItem{
				OrderItemID: g.item.ID,
				Quantity:    g.qty,
				Amount:      g.amount,
			})
		}
		if _, err := repo.CreateRefund(ctx, refund); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refund")
		}

		productCache := make(map[uuid.UUID]*models.Product)
		refundID := refund.ID
		for _, g := range granted {
			updates := map[string]any{
				"refunded_quantity": gorm.Expr("refunded_quantity + ?", g.qty),
				"refunded_amount":   gorm.Expr("refunded_amount + ?", g.amount),
			}
			if err := repo.UpdateOrderItem(ctx, g.item.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order item refund totals")
			}

			product, ok := productCache[g.item.ProductID]
			if !ok {
				product, err = catalogRepo.FindProductByID(ctx, g.item.ProductID)
				if err != nil {
					if err == gorm.ErrRecordNotFound {
						return pkgerrors.Newf(pkgerrors.CodeNotFound, "product %s not found", g.item.ProductID)
					}
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
				}
				productCache[g.item.ProductID] = product
			}
			if !product.TrackInventory {
				continue
			}
			variant := product.VariantBySKU(g.item.VariantSKU)
			if variant == nil {
				continue
			}

			_, err := s.engine.Credit(ctx, tx, inventory.CreditInput{
				SKU:          g.item.VariantSKU,
				Quantity:     g.qty,
				Threshold:    variant.Threshold(product),
				MovementType: enums.MovementTypeIn,
				Reference:    enums.MovementReferenceRefund,
				ReferenceID:  &refundID,
				Reason:       "Refund restock",
				StaffID:      input.StaffID,
			})
			if err != nil {
				return err
			}
		}

		cumulative := order.TotalRefunded().Add(refundTotal)
		status := enums.PaymentStatusPartiallyRefunded
		if cumulative.GreaterThanOrEqual(order.Total) {
			status = enums.PaymentStatusRefunded
		}
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"payment_status": status}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order payment status")
		}

		result = &ProcessRefundResult{
			Refund:        refund,
			PaymentStatus: status,
			TotalRefunded: cumulative,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
