package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rmehra-dev/techshop-backend/pkg/db"
	"github.com/rmehra-dev/techshop-backend/pkg/db/models"
	"github.com/rmehra-dev/techshop-backend/pkg/enums"
	pkgerrors "github.com/rmehra-dev/techshop-backend/pkg/errors"
	"github.com/rmehra-dev/techshop-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines catalog operations beyond repository reads.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, params pagination.Params, filters ProductFilters) (*ProductList, error)
	UpdateVariantPricing(ctx context.Context, input UpdateVariantPricingInput) (*models.ProductVariant, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// ValidatePricing enforces the cost <= selling <= market ordering that
// every stored variant must satisfy.
func ValidatePricing(cost, selling, market decimal.Decimal) error {
	if cost.IsNegative() || selling.IsNegative() || market.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeInvalidPrice, "prices must not be negative")
	}
	if cost.GreaterThan(selling) {
		return pkgerrors.New(pkgerrors.CodeInvalidPrice, "cost price exceeds selling price")
	}
	if selling.GreaterThan(market) {
		return pkgerrors.New(pkgerrors.CodeInvalidPrice, "selling price exceeds market price")
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if len(input.Variants) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one variant required")
	}

	seen := make(map[string]struct{}, len(input.Variants))
	for _, v := range input.Variants {
		if v.SKU == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant sku required")
		}
		if _, dup := seen[v.SKU]; dup {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "duplicate sku %s in payload", v.SKU)
		}
		seen[v.SKU] = struct{}{}
		if v.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant quantity must not be negative")
		}
		if err := ValidatePricing(v.CostPrice, v.SellingPrice, v.MarketPrice); err != nil {
			return nil, err
		}
	}

	trackInventory := true
	if input.TrackInventory != nil {
		trackInventory = *input.TrackInventory
	}
	threshold := input.LowStockThreshold
	if threshold <= 0 {
		threshold = 5
	}

	product := &models.Product{
		Name:              input.Name,
		Brand:             input.Brand,
		Model:             input.Model,
		Description:       input.Description,
		Tags:              pq.StringArray(input.Tags),
		TrackInventory:    trackInventory,
		AllowBackorders:   input.AllowBackorders,
		LowStockThreshold: threshold,
		IsActive:          true,
	}

	now := time.Now().UTC()
	for _, v := range input.Variants {
		minLevel := v.MinStockLevel
		if minLevel <= 0 {
			minLevel = threshold
		}
		variant := models.ProductVariant{
			SKU:             v.SKU,
			Color:           v.Color,
			Size:            v.Size,
			Barcode:         v.Barcode,
			CostPrice:       v.CostPrice,
			SellingPrice:    v.SellingPrice,
			MarketPrice:     v.MarketPrice,
			Quantity:        v.Quantity,
			MinStockLevel:   minLevel,
			InventoryStatus: enums.DeriveInventoryStatus(v.Quantity, minLevel),
			IsActive:        true,
		}
		if v.Quantity > 0 {
			restocked := now
			variant.LastRestockedAt = &restocked
		}
		product.Variants = append(product.Variants, variant)
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).CreateProduct(ctx, product)
		return err
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params, filters ProductFilters) (*ProductList, error) {
	list, err := s.repo.ListProducts(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

func (s *service) UpdateVariantPricing(ctx context.Context, input UpdateVariantPricingInput) (*models.ProductVariant, error) {
	if input.SKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku required")
	}
	if err := ValidatePricing(input.CostPrice, input.SellingPrice, input.MarketPrice); err != nil {
		return nil, err
	}

	var variant *models.ProductVariant
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.FindVariantBySKU(ctx, input.SKU)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
		}

		updates := map[string]any{
			"cost_price":    input.CostPrice,
			"selling_price": input.SellingPrice,
			"market_price":  input.MarketPrice,
		}
		if err := repo.UpdateVariant(ctx, found.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update variant pricing")
		}

		found.CostPrice = input.CostPrice
		found.SellingPrice = input.SellingPrice
		found.MarketPrice = input.MarketPrice
		variant = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return variant, nil
}
