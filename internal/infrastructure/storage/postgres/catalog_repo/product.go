package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"hwshop/internal/core/id"
	"hwshop/internal/domain/catalogs/product"
	"hwshop/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(txManager, BaseCatalogConfig[*product.Product]{
			TableName:  productsTable,
			EntityName: "product",
			SelectCols: postgres.ExtractDBColumns[product.Product](),
			SearchCols: []string{"sku", "name", "category"},
			New:        func() *product.Product { return &product.Product{} },
		}),
	}
}

// GetBySKU looks a product up by its unique SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*product.Product, error) {
	return r.FindOne(ctx, r.baseSelect().Where(squirrel.Eq{"sku": sku}), sku)
}

func (r *ProductRepo) referencedQuery(productID id.ID) squirrel.SelectBuilder {
	return r.builder.Select().Column(squirrel.Expr(
		"EXISTS (SELECT 1 FROM stock_movements WHERE product_id = ?)"+
			" OR EXISTS (SELECT 1 FROM sale_items WHERE product_id = ?)"+
			" OR EXISTS (SELECT 1 FROM purchase_items WHERE product_id = ?)",
		productID, productID, productID,
	))
}

// IsReferenced reports whether movements or document lines reference the product.
func (r *ProductRepo) IsReferenced(ctx context.Context, productID id.ID) (bool, error) {
	sql, args, err := r.referencedQuery(productID).ToSql()
	if err != nil {
		return false, fmt.Errorf("build referenced query: %w", err)
	}

	var referenced bool
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&referenced); err != nil {
		return false, postgres.MapError(fmt.Errorf("product referenced: %w", err))
	}
	return referenced, nil
}
