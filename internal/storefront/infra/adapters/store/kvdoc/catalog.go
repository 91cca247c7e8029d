package kvdoc

import (
	"context"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

var (
	_ ports.ProductCatalog = (*Catalog)(nil)
	_ ports.CatalogSeeder  = (*Catalog)(nil)
)

type Catalog struct {
	db *DB
}

func (c *Catalog) GetProduct(_ context.Context, productID string) (*entity.Product, error) {
	var p entity.Product
	ok, err := c.db.getJSON(productKey(productID), &p)
	if err != nil {
		return nil, apperr.Store("get product", err)
	}
	if !ok {
		return nil, apperr.NotFound("product", productID)
	}
	return &p, nil
}

// SeedProducts upserts products in a single batch.
func (c *Catalog) SeedProducts(_ context.Context, products []entity.Product) error {
	pairs := make([]Pair, 0, len(products))
	for i := range products {
		p, err := jsonPair(productKey(products[i].ProductID), &products[i])
		if err != nil {
			return apperr.Store("seed products", err)
		}
		pairs = append(pairs, p)
	}
	if len(pairs) == 0 {
		return nil
	}
	if err := c.db.kv.Set(pairs...); err != nil {
		return apperr.Store("seed products", err)
	}
	return nil
}
