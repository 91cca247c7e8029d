package ports

import (
	"context"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
)

// ProductCatalog is a read-only lookup of product records.
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID string) (*entity.Product, error)
}

// CatalogSeeder loads products into a catalog backend. It is used at process
// start only and is not reachable from request handlers.
type CatalogSeeder interface {
	SeedProducts(ctx context.Context, products []entity.Product) error
}
