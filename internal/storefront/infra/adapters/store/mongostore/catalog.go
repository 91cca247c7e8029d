package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

var (
	_ ports.ProductCatalog = (*Catalog)(nil)
	_ ports.CatalogSeeder  = (*Catalog)(nil)
)

type Catalog struct {
	coll *mongo.Collection
}

func (c *Catalog) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	var doc productDoc
	err := c.coll.FindOne(ctx, bson.M{"productId": productID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("product", productID)
	}
	if err != nil {
		return nil, apperr.Store("get product", err)
	}
	return doc.toEntity(), nil
}

// SeedProducts upserts every product by productId.
func (c *Catalog) SeedProducts(ctx context.Context, products []entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(products))
	for _, p := range products {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"productId": p.ProductID}).
			SetReplacement(fromProduct(p)).
			SetUpsert(true))
	}
	if _, err := c.coll.BulkWrite(ctx, models); err != nil {
		return apperr.Store("seed products", err)
	}
	return nil
}
