package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

// maxCASAttempts bounds the optimistic retry loop in CartStore.Update.
const maxCASAttempts = 8

var _ ports.CartStore = (*CartStore)(nil)

type CartStore struct {
	coll *mongo.Collection
}

func (s *CartStore) Get(ctx context.Context, userID string) (*entity.Cart, error) {
	var doc cartDoc
	err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("cart", userID)
	}
	if err != nil {
		return nil, apperr.Store("get cart", err)
	}
	return doc.toEntity(), nil
}

// Update is a compare-and-swap on the cart revision. A concurrent writer
// makes the replace match nothing and the mutation is replayed on a fresh
// read.
func (s *CartStore) Update(ctx context.Context, userID string, create bool, fn ports.CartMutation) (*entity.Cart, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		var doc cartDoc
		err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc)
		found := true
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			if !create {
				return nil, apperr.NotFound("cart", userID)
			}
			found = false
		case err != nil:
			return nil, apperr.Store("load cart", err)
		}

		cart := entity.NewCart(userID, time.Now().UTC())
		if found {
			cart = doc.toEntity()
		}
		prev := cart.Revision
		if err := fn(cart); err != nil {
			return nil, err
		}

		if !found {
			_, err := s.coll.InsertOne(ctx, fromCart(cart))
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			if err != nil {
				return nil, apperr.Store("create cart", err)
			}
			return cart, nil
		}

		res, err := s.coll.ReplaceOne(ctx, bson.M{"userId": userID, "revision": prev}, fromCart(cart))
		if err != nil {
			return nil, apperr.Store("save cart", err)
		}
		if res.MatchedCount == 1 {
			return cart, nil
		}
	}
	return nil, apperr.Conflict("cart", userID, "too many concurrent updates")
}
