package kvdoc

import (
	"context"
	"time"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

var _ ports.CartStore = (*CartStore)(nil)

type CartStore struct {
	db *DB
}

func (s *CartStore) Get(_ context.Context, userID string) (*entity.Cart, error) {
	var cart entity.Cart
	ok, err := s.db.getJSON(cartKey(userID), &cart)
	if err != nil {
		return nil, apperr.Store("get cart", err)
	}
	if !ok {
		return nil, apperr.NotFound("cart", userID)
	}
	return &cart, nil
}

func (s *CartStore) Update(_ context.Context, userID string, create bool, fn ports.CartMutation) (*entity.Cart, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cart := &entity.Cart{}
	ok, err := s.db.getJSON(cartKey(userID), cart)
	if err != nil {
		return nil, apperr.Store("load cart", err)
	}
	if !ok {
		if !create {
			return nil, apperr.NotFound("cart", userID)
		}
		cart = entity.NewCart(userID, time.Now().UTC())
	}
	if cart.Items == nil {
		cart.Items = []entity.LineItem{}
	}

	if err := fn(cart); err != nil {
		return nil, err
	}
	if err := s.db.putJSON(cartKey(userID), cart); err != nil {
		return nil, apperr.Store("save cart", err)
	}
	return cart, nil
}
