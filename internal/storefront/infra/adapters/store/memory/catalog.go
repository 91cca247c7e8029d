package memory

import (
	"context"
	"sync"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

var (
	_ ports.ProductCatalog = (*Catalog)(nil)
	_ ports.CatalogSeeder  = (*Catalog)(nil)
)

type Catalog struct {
	mu       sync.RWMutex
	products map[string]entity.Product
}

func NewCatalog() *Catalog {
	return &Catalog{products: make(map[string]entity.Product)}
}

func (c *Catalog) GetProduct(_ context.Context, productID string) (*entity.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[productID]
	if !ok {
		return nil, apperr.NotFound("product", productID)
	}
	return &p, nil
}

func (c *Catalog) SeedProducts(_ context.Context, products []entity.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range products {
		c.products[p.ProductID] = p
	}
	return nil
}
