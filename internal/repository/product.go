package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mescude1/skinly-ecomm/internal/model"
)

// ProductOrder selects the ORDER BY clause of a product query.
type ProductOrder int

const (
	OrderNewest ProductOrder = iota
	OrderRatingDesc
	OrderName
)

// ProductFilter is a set of AND-ed predicates over the product catalog.
// Empty slices and nil pointers are ignored.
type ProductFilter struct {
	// Query is matched case-insensitively against product name, brand name, product type and color name.
	Query        string
	BrandIDs     []string
	ProductTypes []model.ProductType
	FinishTypes  []model.FinishType
	ColorIDs     []string
	// SkinTypes matches products with no compatibility marker or one of the listed types.
	SkinTypes   []model.SkinType
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStockOnly bool
	ExcludeIDs  []string
	// SimilarBrandIDs and SimilarTypes together form one OR group: brand in X or type in Y.
	SimilarBrandIDs []string
	SimilarTypes    []model.ProductType
	OrderBy         ProductOrder
}

// ProductRepository defines data access for the catalog and its stock levels.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)

	// Search returns a page of products matching f and the total match count.
	Search(ctx context.Context, f ProductFilter, pq PageQuery) (*PageResult[model.Product], error)

	// Find returns at most limit products matching f without counting.
	Find(ctx context.Context, f ProductFilter, limit int) ([]model.Product, error)

	UpdateImageKey(ctx context.Context, id, key string) error

	// RefreshRating recomputes the product rating from its reviews and returns it.
	RefreshRating(ctx context.Context, id string) (float64, error)

	// SetStock overwrites the stock level. It reports false when the product does not exist.
	SetStock(ctx context.Context, id string, qty int) (bool, error)

	// DecrementStock removes qty units only if at least qty are available.
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)

	// IncrementStock returns sql.ErrNoRows for an unknown product.
	IncrementStock(ctx context.Context, id string, qty int) error

	// LowStock lists products whose stock is at or below threshold, lowest first.
	LowStock(ctx context.Context, threshold int) ([]model.Product, error)
}

// CatalogRepository serves reference data.
type CatalogRepository interface {
	ListBrands(ctx context.Context) ([]model.Brand, error)
	ListColors(ctx context.Context) ([]model.Color, error)
}
