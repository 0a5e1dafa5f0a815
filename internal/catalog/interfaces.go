package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmehra-dev/techshop-backend/pkg/db/models"
	"github.com/rmehra-dev/techshop-backend/pkg/pagination"
)

// Repository defines persistence operations for the product catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindVariantBySKU(ctx context.Context, sku string) (*models.ProductVariant, error)
	ListProducts(ctx context.Context, params pagination.Params, filters ProductFilters) (*ProductList, error)
	ListActiveVariants(ctx context.Context) ([]VariantWithProduct, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateVariant(ctx context.Context, id uuid.UUID, updates map[string]any) error
}
