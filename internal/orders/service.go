package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rmehra-dev/techshop-backend/internal/catalog"
	"github.com/rmehra-dev/techshop-backend/internal/customers"
	"github.com/rmehra-dev/techshop-backend/internal/inventory"
	"github.com/rmehra-dev/techshop-backend/pkg/config"
	"github.com/rmehra-dev/techshop-backend/pkg/db/models"
	"github.com/rmehra-dev/techshop-backend/pkg/enums"
	pkgerrors "github.com/rmehra-dev/techshop-backend/pkg/errors"
	"github.com/rmehra-dev/techshop-backend/pkg/pagination"
)

type txRetryRunner interface {
	WithTxRetry(ctx context.Context, maxAttempts int, fn func(tx *gorm.DB) error) error
}

// Service defines order assembly and lifecycle operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*models.Order, error)
	ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error)
	ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*OrderList, error)
	UpdateOrderStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
}

type service struct {
	repo      Repository
	catalog   catalog.Repository
	customers customers.Repository
	engine    inventory.Engine
	tx        txRetryRunner
	cfg       config.OrdersConfig
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, catalogRepo catalog.Repository, customersRepo customers.Repository, engine inventory.Engine, tx txRetryRunner, cfg config.OrdersConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if customersRepo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if engine == nil {
		return nil, fmt.Errorf("stock engine required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cfg.TxMaxAttempts <= 0 {
		cfg.TxMaxAttempts = 3
	}
	return &service{
		repo:      repo,
		catalog:   catalogRepo,
		customers: customersRepo,
		engine:    engine,
		tx:        tx,
		cfg:       cfg,
	}, nil
}

// trackedItem pairs a staged order item with the policy of the product
// it debits, so the stock phase runs after the order row exists.
type trackedItem struct {
	item            *models.OrderItem
	allowBackorders bool
	threshold       int
	trackInventory  bool
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := validateCreateOrder(input); err != nil {
		return nil, err
	}

	var created *models.Order
	err := s.tx.WithTxRetry(ctx, s.cfg.TxMaxAttempts, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)
		customersRepo := s.customers.WithTx(tx)
		now := time.Now().UTC()

		customer, err := s.resolveCustomer(ctx, customersRepo, input.Customer)
		if err != nil {
			return err
		}

		staged, err := s.stageItems(ctx, catalogRepo, input.Items)
		if err != nil {
			return err
		}

		order := &models.Order{
			CustomerID:    customer.ID,
			StaffID:       input.StaffID,
			Discount:      input.Discount,
			Shipping:      input.Shipping,
			PaymentMethod: input.PaymentMethod,
			PaymentStatus: enums.PaymentStatusPaid,
			OrderType:     input.OrderType,
			Notes:         input.Notes,
		}
		for _, st := range staged {
			order.Items = append(order.Items, *st.item)
		}

		// First pass derives the subtotal, second folds in the tax.
		order.RecomputeTotals()
		order.Tax = order.Subtotal.Mul(decimal.NewFromFloat(s.cfg.TaxRate)).Round(2)
		order.RecomputeTotals()
		if order.Total.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds order total")
		}

		order.OrderStatus = enums.OrderStatusCompleted
		if input.OrderType == enums.OrderTypeOnline {
			order.OrderStatus = enums.OrderStatusPending
		}

		number, err := NextOrderNumber(ctx, tx, now, s.cfg.SequenceDigits)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		for _, st := range staged {
			if !st.trackInventory {
				continue
			}
			orderID := order.ID
			_, err := s.engine.Debit(ctx, tx, inventory.DebitInput{
				SKU:            st.item.VariantSKU,
				Quantity:       st.item.Quantity,
				AllowBackorder: st.allowBackorders,
				Threshold:      st.threshold,
				BumpSold:       true,
				MovementType:   enums.MovementTypeOut,
				Reference:      enums.MovementReferenceOrder,
				ReferenceID:    &orderID,
				Reason:         "Order sale",
				StaffID:        input.StaffID,
			})
			if err != nil {
				return err
			}
		}

		if err := customersRepo.BumpPurchaseStats(ctx, customer.ID, order.Total, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer stats")
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func validateCreateOrder(input CreateOrderInput) error {
	if input.StaffID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "staff identity missing")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil || item.SKU == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "item product id and sku required")
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown payment method %s", input.PaymentMethod)
	}
	if !input.OrderType.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown order type %s", input.OrderType)
	}
	if input.Discount.IsNegative() || input.Shipping.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount and shipping must not be negative")
	}
	return nil
}

func (s *service) resolveCustomer(ctx context.Context, repo customers.Repository, input CustomerInput) (*models.Customer, error) {
	if input.ID != nil && *input.ID != uuid.Nil {
		customer, err := repo.FindByID(ctx, *input.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}
		return customer, nil
	}

	if input.Phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id or phone required")
	}

	customer, err := repo.FindByPhone(ctx, input.Phone)
	if err == nil {
		return customer, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer by phone")
	}

	name := input.Name
	if name == "" {
		name = "Walk-in Customer"
	}
	fresh := &models.Customer{
		Name:         name,
		Phone:        input.Phone,
		Email:        input.Email,
		Address:      input.Address,
		CustomerType: enums.CustomerTypeWalkIn,
	}
	if _, err := repo.Create(ctx, fresh); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return fresh, nil
}

func (s *service) stageItems(ctx context.Context, repo catalog.Repository, inputs []OrderItemInput) ([]trackedItem, error) {
	staged := make([]trackedItem, 0, len(inputs))
	productCache := make(map[uuid.UUID]*models.Product)

	for _, in := range inputs {
		product, ok := productCache[in.ProductID]
		if !ok {
			var err error
			product, err = repo.FindProductByID(ctx, in.ProductID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %s not found", in.ProductID)
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			productCache[in.ProductID] = product
		}
		if !product.IsActive {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "product %s is inactive", product.Name)
		}

		variant := product.VariantBySKU(in.SKU)
		if variant == nil {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "variant %s not found on product", in.SKU)
		}
		if !variant.IsActive {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "variant %s is inactive", in.SKU)
		}

		// Availability applies to every variant; only the debit below is
		// limited to tracked products.
		if in.Quantity > variant.Quantity && !product.AllowBackorders {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{
					"sku":       in.SKU,
					"requested": in.Quantity,
					"available": variant.Quantity,
				})
		}

		item := &models.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			VariantSKU:   variant.SKU,
			VariantColor: variant.Color,
			VariantSize:  variant.Size,
			Quantity:     in.Quantity,
			UnitPrice:    variant.SellingPrice,
			TotalPrice:   variant.SellingPrice.Mul(decimal.NewFromInt(int64(in.Quantity))),
			SerialNumber: in.SerialNumber,
		}
		staged = append(staged, trackedItem{
			item:            item,
			allowBackorders: product.AllowBackorders,
			threshold:       variant.Threshold(product),
			trackInventory:  product.TrackInventory,
		})
	}
	return staged, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrderByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindOrderByNumber(ctx, number)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	list, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	list, err := s.repo.ListOrdersByCustomer(ctx, customerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	return list, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.StaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "staff identity missing")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown order status %s", input.Status)
	}

	var updated *models.Order
	err := s.tx.WithTxRetry(ctx, 1, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.OrderStatus == input.Status {
			updated = order
			return nil
		}
		if order.OrderStatus == enums.OrderStatusCancelled || order.OrderStatus == enums.OrderStatusCompleted {
			return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is %s and cannot change status", order.OrderStatus)
		}

		updates := map[string]any{"order_status": input.Status}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		order.OrderStatus = input.Status
		if input.Notes != nil {
			order.Notes = input.Notes
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
