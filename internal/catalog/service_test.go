package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmehra-dev/techshop-backend/pkg/config"
	"github.com/rmehra-dev/techshop-backend/pkg/db"
	"github.com/rmehra-dev/techshop-backend/pkg/enums"
	pkgerrors "github.com/rmehra-dev/techshop-backend/pkg/errors"
	"github.com/rmehra-dev/techshop-backend/pkg/pagination"
)

func newCatalogHarness(t *testing.T) (Service, *db.Client) {
	t.Helper()

	dsn := fmt.Sprintf("file:catalog_%s?mode=memory&cache=shared", uuid.NewString())
	client, err := db.New(context.Background(), config.DBConfig{DSN: dsn, Driver: "sqlite"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	products := `
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
);`
	variants := `
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
);`
	require.NoError(t, client.DB().Exec(products).Error)
	require.NoError(t, client.DB().Exec(variants).Error)

	svc, err := NewService(NewRepository(client.DB()), client)
	require.NoError(t, err)
	return svc, client
}

func TestValidatePricing(t *testing.T) {
	cases := []struct {
		name    string
		cost    int64
		selling int64
		market  int64
		wantErr bool
	}{
		{"ordered", 100, 150, 180, false},
		{"equal", 100, 100, 100, false},
		{"cost above selling", 160, 150, 180, true},
		{"selling above market", 100, 200, 180, true},
		{"negative", -1, 150, 180, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePricing(
				decimal.NewFromInt(tc.cost),
				decimal.NewFromInt(tc.selling),
				decimal.NewFromInt(tc.market),
			)
			if tc.wantErr {
				require.Error(t, err)
				require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidPrice))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCreateProductDerivesVariantStatus(t *testing.T) {
	svc, _ := newCatalogHarness(t)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:              "Galaxy S24",
		Brand:             "Samsung",
		LowStockThreshold: 3,
		Variants: []VariantInput{
			{
				SKU: "S24-BLK", Color: "Black",
				CostPrice: decimal.NewFromInt(500), SellingPrice: decimal.NewFromInt(600), MarketPrice: decimal.NewFromInt(650),
				Quantity: 10, MinStockLevel: 3,
			},
			{
				SKU: "S24-GRY", Color: "Gray",
				CostPrice: decimal.NewFromInt(500), SellingPrice: decimal.NewFromInt(600), MarketPrice: decimal.NewFromInt(650),
				Quantity: 0, MinStockLevel: 3,
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, product.Variants, 2)

	assert.Equal(t, enums.InventoryStatusInStock, product.Variants[0].InventoryStatus)
	require.NotNil(t, product.Variants[0].LastRestockedAt)
	assert.Equal(t, enums.InventoryStatusOutOfStock, product.Variants[1].InventoryStatus)
	assert.Nil(t, product.Variants[1].LastRestockedAt)
}

func TestCreateProductRejectsDuplicateSKUInPayload(t *testing.T) {
	svc, _ := newCatalogHarness(t)

	variant := VariantInput{
		SKU: "S24-BLK", Color: "Black",
		CostPrice: decimal.NewFromInt(500), SellingPrice: decimal.NewFromInt(600), MarketPrice: decimal.NewFromInt(650),
		Quantity: 1,
	}
	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:     "Galaxy S24",
		Brand:    "Samsung",
		Variants: []VariantInput{variant, variant},
	})
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestCreateProductRejectsInvalidPricing(t *testing.T) {
	svc, _ := newCatalogHarness(t)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Galaxy S24",
		Brand: "Samsung",
		Variants: []VariantInput{{
			SKU: "S24-BLK", Color: "Black",
			CostPrice: decimal.NewFromInt(700), SellingPrice: decimal.NewFromInt(600), MarketPrice: decimal.NewFromInt(650),
			Quantity: 1,
		}},
	})
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidPrice))
}

func TestUpdateVariantPricing(t *testing.T) {
	svc, _ := newCatalogHarness(t)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Galaxy S24",
		Brand: "Samsung",
		Variants: []VariantInput{{
			SKU: "S24-BLK", Color: "Black",
			CostPrice: decimal.NewFromInt(500), SellingPrice: decimal.NewFromInt(600), MarketPrice: decimal.NewFromInt(650),
			Quantity: 1,
		}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateVariantPricing(context.Background(), UpdateVariantPricingInput{
		SKU:          "S24-BLK",
		CostPrice:    decimal.NewFromInt(520),
		SellingPrice: decimal.NewFromInt(640),
		MarketPrice:  decimal.NewFromInt(700),
	})
	require.NoError(t, err)
	assert.True(t, updated.SellingPrice.Equal(decimal.NewFromInt(640)))

	_, err = svc.UpdateVariantPricing(context.Background(), UpdateVariantPricingInput{
		SKU:          "S24-BLK",
		CostPrice:    decimal.NewFromInt(800),
		SellingPrice: decimal.NewFromInt(640),
		MarketPrice:  decimal.NewFromInt(700),
	})
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidPrice))

	_, err = svc.UpdateVariantPricing(context.Background(), UpdateVariantPricingInput{
		SKU:          "MISSING",
		CostPrice:    decimal.NewFromInt(1),
		SellingPrice: decimal.NewFromInt(2),
		MarketPrice:  decimal.NewFromInt(3),
	})
	require.Error(t, err)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestListProductsPagination(t *testing.T) {
	svc, _ := newCatalogHarness(t)

	for i := 0; i < 4; i++ {
		_, err := svc.CreateProduct(context.Background(), CreateProductInput{
			Name:  fmt.Sprintf("Phone %d", i),
			Brand: "Acme",
			Variants: []VariantInput{{
				SKU: fmt.Sprintf("ACME-%d", i), Color: "Black",
				CostPrice: decimal.NewFromInt(100), SellingPrice: decimal.NewFromInt(120), MarketPrice: decimal.NewFromInt(150),
				Quantity: 1,
			}},
		})
		require.NoError(t, err)
	}

	page1, err := svc.ListProducts(context.Background(), pagination.Params{Limit: 3}, ProductFilters{})
	require.NoError(t, err)
	require.Len(t, page1.Products, 3)
	require.NotEmpty(t, page1.NextCursor)

	page2, err := svc.ListProducts(context.Background(), pagination.Params{Limit: 3, Cursor: page1.NextCursor}, ProductFilters{})
	require.NoError(t, err)
	require.Len(t, page2.Products, 1)
	assert.Empty(t, page2.NextCursor)
}
