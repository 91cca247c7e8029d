package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

var _ ports.OrderStore = (*OrderStore)(nil)

type OrderStore struct {
	coll *mongo.Collection
}

func (s *OrderStore) Insert(ctx context.Context, order *entity.Order) error {
	_, err := s.coll.InsertOne(ctx, fromOrder(order))
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("order", order.OrderID, "order id already exists")
	}
	if err != nil {
		return apperr.Store("insert order", err)
	}
	return nil
}

func (s *OrderStore) FindByOrderID(ctx context.Context, orderID string) (*entity.Order, error) {
	var doc orderDoc
	err := s.coll.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("order", orderID)
	}
	if err != nil {
		return nil, apperr.Store("find order", err)
	}
	return doc.toEntity(), nil
}

func (s *OrderStore) FindByUser(ctx context.Context, userID string) ([]*entity.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, apperr.Store("find orders by user", err)
	}
	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperr.Store("find orders by user", err)
	}

	out := make([]*entity.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}
