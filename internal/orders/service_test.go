package orders

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmehra-dev/techshop-backend/internal/catalog"
	"github.com/rmehra-dev/techshop-backend/internal/customers"
	"github.com/rmehra-dev/techshop-backend/internal/inventory"
	"github.com/rmehra-dev/techshop-backend/pkg/config"
	"github.com/rmehra-dev/techshop-backend/pkg/db"
	"github.com/rmehra-dev/techshop-backend/pkg/db/models"
	"github.com/rmehra-dev/techshop-backend/pkg/enums"
	pkgerrors "github.com/rmehra-dev/techshop-backend/pkg/errors"
)

func setupOrdersTestDB(t *testing.T) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", uuid.NewString())
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn, Driver: "sqlite"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	stmts := []string{`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  brand TEXT NOT NULL,
  model TEXT,
  description TEXT,
  tags TEXT,
  track_inventory INTEGER NOT NULL DEFAULT 1,
  allow_backorders INTEGER NOT NULL DEFAULT 0,
  low_stock_threshold INTEGER NOT NULL DEFAULT 5,
  total_sold INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  sku TEXT NOT NULL UNIQUE,
  color TEXT NOT NULL,
  size TEXT,
  barcode TEXT,
  cost_price NUMERIC NOT NULL,
  selling_price NUMERIC NOT NULL,
  market_price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  reserved INTEGER NOT NULL DEFAULT 0,
  min_stock_level INTEGER NOT NULL DEFAULT 5,
  total_sold INTEGER NOT NULL DEFAULT 0,
  inventory_status TEXT NOT NULL DEFAULT 'out_of_stock',
  last_restocked_at DATETIME,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT NOT NULL,
  email TEXT,
  address TEXT,
  customer_type TEXT NOT NULL DEFAULT 'regular',
  total_orders INTEGER NOT NULL DEFAULT 0,
  total_spent NUMERIC NOT NULL DEFAULT 0,
  last_purchase_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  customer_id TEXT NOT NULL,
  staff_id TEXT NOT NULL,
  subtotal NUMERIC NOT NULL,
  tax NUMERIC NOT NULL DEFAULT 0,
  discount NUMERIC NOT NULL DEFAULT 0,
  shipping NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  order_status TEXT NOT NULL DEFAULT 'pending',
  order_type TEXT NOT NULL DEFAULT 'instore',
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  variant_sku TEXT NOT NULL,
  variant_color TEXT NOT NULL,
  variant_size TEXT,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  serial_number TEXT,
  refunded_quantity INTEGER NOT NULL DEFAULT 0,
  refunded_amount NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS refunds (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  reason TEXT NOT NULL,
  staff_id TEXT NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS refund_items (
  id TEXT PRIMARY KEY,
  refund_id TEXT NOT NULL,
  order_item_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  amount NUMERIC NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS stock_movements (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  variant_sku TEXT NOT NULL,
  movement_type TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  previous_stock INTEGER NOT NULL,
  new_stock INTEGER NOT NULL,
  reference TEXT NOT NULL,
  reference_id TEXT,
  reason TEXT NOT NULL,
  notes TEXT,
  staff_id TEXT NOT NULL,
  created_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_sequences (
  period TEXT PRIMARY KEY,
  counter INTEGER NOT NULL DEFAULT 0
);`}
	for _, stmt := range stmts {
		require.NoError(t, client.DB().Exec(stmt).Error)
	}
	return client
}

func newOrdersService(t *testing.T, client *db.Client) Service {
	t.Helper()

	movements := inventory.NewMovementRepository(client.DB())
	engine, err := inventory.NewEngine(movements)
	require.NoError(t, err)

	svc, err := NewService(
		NewRepository(client.DB()),
		catalog.NewRepository(client.DB()),
		customers.NewRepository(client.DB()),
		engine,
		client,
		config.OrdersConfig{TaxRate: 0.10, TxMaxAttempts: 3, SequenceDigits: 4},
	)
	require.NoError(t, err)
	return svc
}

func seedProduct(t *testing.T, client *db.Client, sku string, qty int, price int64, allowBackorders bool) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:              "Redmi Note 13",
		Brand:             "Xiaomi",
		TrackInventory:    true,
		AllowBackorders:   allowBackorders,
		LowStockThreshold: 3,
		IsActive:          true,
		Variants: []models.ProductVariant{
			{
				SKU:             sku,
				Color:           "Blue",
				CostPrice:       decimal.NewFromInt(price - 50),
				SellingPrice:    decimal.NewFromInt(price),
				MarketPrice:     decimal.NewFromInt(price + 30),
				Quantity:        qty,
				MinStockLevel:   3,
				InventoryStatus: enums.DeriveInventoryStatus(qty, 3),
				IsActive:        true,
			},
		},
	}
	require.NoError(t, client.DB().Create(product).Error)
	return product
}

func seedCustomer(t *testing.T, client *db.Client, phone string) *models.Customer {
	t.Helper()

	customer := &models.Customer{
		Name:  "Ravi Kumar",
		Phone: phone,
	}
	require.NoError(t, client.DB().Create(customer).Error)
	return customer
}

func variantBySKU(t *testing.T, client *db.Client, sku string) *models.ProductVariant {
	t.Helper()
	var variant models.ProductVariant
	require.NoError(t, client.DB().Where("sku = ?", sku).First(&variant).Error)
	return &variant
}

func TestCreateOrderDebitsStockAndWritesLedger(t *testing.T) {
	client := setupOrdersTestDB(t)
	svc := newOrdersService(t, client)
	product := seedProduct(t, client, "RN13-BLU", 10, 300, false)
	customer := seedCustomer(t, client, "+919900112233")
	staffID := uuid.New()

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer:      CustomerInput{ID: &customer.ID},
		Items:         []OrderItemInput{{ProductID: product.ID, SKU: "RN13-BLU", Quantity: 4}},
		PaymentMethod: enums.PaymentMethodCash,
		OrderType:     enums.OrderTypeInStore,
		StaffID:       staffID,
	})
	require.NoError(t, err)

	// subtotal 1200, tax 120, total 1320
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(1200)), "subtotal %s", order.Subtotal)
	assert.True(t, order.Tax.Equal(decimal.NewFromInt(120)), "tax %s", order.Tax)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(1320)), "total %s", order.Total)
	expected := order.Subtotal.Add(order.Tax).Add(order.Shipping).Sub(order.Discount)
	assert.True(t, order.Total.Equal(expected))

	assert.Equal(t, enums.OrderStatusCompleted, order.OrderStatus)
	assert.Equal(t, enums.PaymentStatusPaid, order.PaymentStatus)

	period := time.Now().UTC().Format("200601")
	assert.Regexp(t, regexp.MustCompile(`^ORD-`+period+`-\d{4}$`), order.OrderNumber)

	variant := variantBySKU(t, client, "RN13-BLU")
	assert.Equal(t, 6, variant.Quantity)
	assert.Equal(t, 4, variant.TotalSold)

	var movements []models.StockMovement
	require.NoError(t, client.DB().Where("variant_sku = ?", "RN13-BLU").Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, enums.MovementTypeOut, movements[0].MovementType)
	assert.Equal(t, enums.MovementReferenceOrder, movements[0].Reference)
	require.NotNil(t, movements[0].ReferenceID)
	assert.Equal(t, order.ID, *movements[0].ReferenceID)
	assert.Equal(t, 10, movements[0].PreviousStock)
	assert.Equal(t, 6, movements[0].NewStock)

	var reloadedCustomer models.Customer
	require.NoError(t, client.DB().Where("id = ?", customer.ID).First(&reloadedCustomer).Error)
	assert.Equal(t, 1, reloadedCustomer.TotalOrders)
	assert.True(t, reloadedCustomer.TotalSpent.Equal(order.Total))
	require.NotNil(t, reloadedCustomer.LastPurchaseAt)
}

func TestCreateOrderInsufficientStockRollsBackEverything(t *testing.T) {
	client := setupOrdersTestDB(t)
	svc := newOrdersService(t, client)
	good := seedProduct(t, client, "RN13-BLU", 10, 300, false)
	scarce := seedProduct(t, client, "RN13-GRN", 1, 300, false)
	customer := seedCustomer(t, client, "+919900112233")

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer: CustomerInput{ID: &customer.ID},
		Items: []OrderItemInput{
			{ProductID: good.ID, SKU: "RN13-BLU", Quantity: 2},
			{ProductID: scarce.ID, SKU: "RN13-GRN", Quantity: 5},
		},
		PaymentMethod: enums.PaymentMethodCard,
		OrderType:     enums.OrderTypeInStore,
		StaffID:       uuid.New(),
	})
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))

	var orderCount int64
	require.NoError(t, client.DB().Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)

	var movementCount int64
	require.NoError(t, client.DB().Model(&models.StockMovement{}).Count(&movementCount).Error)
	assert.Zero(t, movementCount)

	assert.Equal(t, 10, variantBySKU(t, client, "RN13-BLU").Quantity)
	assert.Equal(t, 1, variantBySKU(t, client, "RN13-GRN").Quantity)

	var reloadedCustomer models.Customer
	require.NoError(t, client.DB().Where("id = ?", customer.ID).First(&reloadedCustomer).Error)
	assert.Zero(t, reloadedCustomer.TotalOrders)
}

func TestCreateOrderUntrackedVariantStillChecksAvailability(t *testing.T) {
	client := setupOrdersTestDB(t)
	svc := newOrdersService(t, client)
	product := seedProduct(t, client, "RN13-BLU", 1, 300, false)
	require.NoError(t, client.DB().Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("track_inventory", false).Error)
	customer := seedCustomer(t, client, "+919900112233")

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer:      CustomerInput{ID: &customer.ID},
		Items:         []OrderItemInput{{ProductID: product.ID, SKU: "RN13-BLU", Quantity: 5}},
		PaymentMethod: enums.PaymentMethodCash,
		OrderType:     enums.OrderTypeInStore,
		StaffID:       uuid.New(),
	})
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock))

	// within the level on hand the order goes through, but the variant is
	// never debited and no ledger entry appears
	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer:      CustomerInput{ID: &customer.ID},
		Items:         []OrderItemInput{{ProductID: product.ID, SKU: "RN13-BLU", Quantity: 1}},
		PaymentMethod: enums.PaymentMethodCash,
		OrderType:     enums.OrderTypeInStore,
		StaffID:       uuid.New(),
	})
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, 1, variantBySKU(t, client, "RN13-BLU").Quantity)

	var movementCount int64
	require.NoError(t, client.DB().Model(&models.StockMovement{}).Count(&movementCount).Error)
	assert.Zero(t, movementCount)
}

func TestCreateOrderBackorderFloorsStockAtZero(t *testing.T) {
	client := setupOrdersTestDB(t)
	svc := newOrdersService(t, client)
	product := seedProduct(t, client, "RN13-BLU", 2, 300, true)
	customer := seedCustomer(t, client, "+919900112233")

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer:      CustomerInput{ID: &customer.ID},
		Items:         []OrderItemInput{{ProductID: product.ID, SKU: "RN13-BLU", Quantity: 5}},
		PaymentMethod: enums.PaymentMethodUPI,
		OrderType:     enums.OrderTypeInStore,
		StaffID:       uuid.New(),
	})
	require.NoError(t, err)

	variant := variantBySKU(t, client, "RN13-BLU")
	assert.Equal(t, 0, variant.Quantity)
	assert.Equal(t, enums.InventoryStatusOutOfStock, variant.InventoryStatus)

	var movements []models.StockMovement
	require.NoError(t, client.DB().Where("variant_sku = ?", "RN13-BLU").Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, 2, movements[0].PreviousStock)
	assert.Equal(t, -3, movements[0].NewStock)

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(1500)))
}

func TestGetOrderByNumber(t *testing.T) {
	client := setupOrdersTestDB(t)
	svc := newOrdersService(t, client)
	product := seedProduct(t, client, "RN13-BLU", 10, 300, false)
	customer := seedCustomer(t, client, "+919900112233")

	created, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer:      CustomerInput{ID: &customer.ID},
		Items:         []OrderItemInput{{ProductID: product.ID, SKU: "RN13-BLU", Quantity: 1}},
		PaymentMethod: enums.PaymentMethodCash,
		OrderType:     enums.OrderTypeInStore,
		StaffID:       uuid.New(),
	})
	require.NoError(t, err)

	found, err := svc.GetOrderByNumber(context.Background(), created.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	require.Len(t, found.Items, 1)

	_, err = svc.GetOrderByNumber(context.Background(), "ORD-209901-9999")
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCreateOrderFindsOrCreatesCustomerByPhone(t *testing.T) {
	client := setupOrdersTestDB(t)
	svc := newOrdersService(t, client)
	product := seedProduct(t, client, "RN13-BLU", 10, 300, false)

	first, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer:      CustomerInput{Name: "Meera Shah", Phone: "+918800445566"},
		Items:         []OrderItemInput{{ProductID: product.ID, SKU: "RN13-BLU", Quantity: 1}},
		PaymentMethod: enums.PaymentMethodCash,
		OrderType:     enums.OrderTypeInStore,
		StaffID:       uuid.New(),
	})
	require.NoError(t, err)

	second, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer:      CustomerInput{Phone: "+918800445566"},
		Items:         []OrderItemInput{{ProductID: product.ID, SKU: "RN13-BLU", Quantity: 1}},
		PaymentMethod: enums.PaymentMethodCash,
		OrderType:     enums.OrderTypeInStore,
		StaffID:       uuid.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, first.CustomerID, second.CustomerID)

	var customer models.Customer
	require.NoError(t, client.DB().Where("phone = ?", "+918800445566").First(&customer).Error)
	assert.Equal(t, "Meera Shah", customer.Name)
	assert.Equal(t, enums.CustomerTypeWalkIn, customer.CustomerType)
	assert.Equal(t, 2, customer.TotalOrders)
}

func TestCreateOrderNumbersAreSequentialWithinPeriod(t *testing.T) {
	client := setupOrdersTestDB(t)
	svc := newOrdersService(t, client)
	product := seedProduct(t, client, "RN13-BLU", 10, 300, false)
	customer := seedCustomer(t, client, "+919900112233")

	var numbers []string
	for i := 0; i < 3; i++ {
		order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
			Customer:      CustomerInput{ID: &customer.ID},
			Items:         []OrderItemInput{{ProductID: product.ID, SKU: "RN13-BLU", Quantity: 1}},
			PaymentMethod: enums.PaymentMethodCash,
			OrderType:     enums.OrderTypeInStore,
			StaffID:       uuid.New(),
		})
		require.NoError(t, err)
		numbers = append(numbers, order.OrderNumber)
	}

	period := time.Now().UTC().Format("200601")
	assert.Equal(t, "ORD-"+period+"-0001", numbers[0])
	assert.Equal(t, "ORD-"+period+"-0002", numbers[1])
	assert.Equal(t, "ORD-"+period+"-0003", numbers[2])
}

func TestCreateOrderOnlineStartsPending(t *testing.T) {
	client := setupOrdersTestDB(t)
	svc := newOrdersService(t, client)
	product := seedProduct(t, client, "RN13-BLU", 10, 300, false)
	customer := seedCustomer(t, client, "+919900112233")

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer:      CustomerInput{ID: &customer.ID},
		Items:         []OrderItemInput{{ProductID: product.ID, SKU: "RN13-BLU", Quantity: 1}},
		PaymentMethod: enums.PaymentMethodCard,
		OrderType:     enums.OrderTypeOnline,
		Shipping:      decimal.NewFromInt(40),
		StaffID:       uuid.New(),
	})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, order.OrderStatus)
	// subtotal 300, tax 30, shipping 40
	assert.True(t, order.Total.Equal(decimal.NewFromInt(370)), "total %s", order.Total)
}

func TestUpdateOrderStatusRejectsTerminalStates(t *testing.T) {
	client := setupOrdersTestDB(t)
	svc := newOrdersService(t, client)
	product := seedProduct(t, client, "RN13-BLU", 10, 300, false)
	customer := seedCustomer(t, client, "+919900112233")

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer:      CustomerInput{ID: &customer.ID},
		Items:         []OrderItemInput{{ProductID: product.ID, SKU: "RN13-BLU", Quantity: 1}},
		PaymentMethod: enums.PaymentMethodCash,
		OrderType:     enums.OrderTypeInStore,
		StaffID:       uuid.New(),
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCompleted, order.OrderStatus)

	_, err = svc.UpdateOrderStatus(context.Background(), UpdateStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusProcessing,
		StaffID: uuid.New(),
	})
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestUpdateOrderStatusAdvancesOnlineOrder(t *testing.T) {
	client := setupOrdersTestDB(t)
	svc := newOrdersService(t, client)
	product := seedProduct(t, client, "RN13-BLU", 10, 300, false)
	customer := seedCustomer(t, client, "+919900112233")

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		Customer:      CustomerInput{ID: &customer.ID},
		Items:         []OrderItemInput{{ProductID: product.ID, SKU: "RN13-BLU", Quantity: 1}},
		PaymentMethod: enums.PaymentMethodCard,
		OrderType:     enums.OrderTypeOnline,
		StaffID:       uuid.New(),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateOrderStatus(context.Background(), UpdateStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusProcessing,
		StaffID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, updated.OrderStatus)

	reloaded, err := svc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusProcessing, reloaded.OrderStatus)
}
