package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/commercekit/fulfillment/internal/domain"
	"github.com/commercekit/fulfillment/pkg/database"
	apperrors "github.com/commercekit/fulfillment/pkg/errors"
)

// CatalogRepository reads variant pricing and product policy from PostgreSQL.
type CatalogRepository struct {
	db database.DBTX
}

// NewCatalogRepository creates a catalog repository over the given query surface.
func NewCatalogRepository(db database.DBTX) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetVariant(ctx context.Context, organizationID, variantID uuid.UUID) (*domain.Variant, error) {
	var v domain.Variant
	err := r.db.QueryRow(ctx, `
		SELECT id, product_id, sku, name, price
		FROM product_variants
		WHERE id = $1 AND organization_id = $2`,
		variantID, organizationID,
	).Scan(&v.ID, &v.ProductID, &v.SKU, &v.Name, &v.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ReferenceDataMissing("variant", variantID.String())
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}

	return &v, nil
}

func (r *CatalogRepository) GetProduct(ctx context.Context, organizationID, productID uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	err := r.db.QueryRow(ctx, `
		SELECT id, name, allow_backorders
		FROM products
		WHERE id = $1 AND organization_id = $2`,
		productID, organizationID,
	).Scan(&p.ID, &p.Name, &p.AllowBackorders)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ReferenceDataMissing("product", productID.String())
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &p, nil
}
