// Package memory holds in-process implementations of the storefront stores.
// They back the default "memory" backend and the service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

var _ ports.CartStore = (*CartStore)(nil)

type CartStore struct {
	mu    sync.Mutex
	carts map[string]*entity.Cart
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]*entity.Cart)}
}

func (s *CartStore) Get(_ context.Context, userID string) (*entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[userID]
	if !ok {
		return nil, apperr.NotFound("cart", userID)
	}
	return cart.Clone(), nil
}

func (s *CartStore) Update(_ context.Context, userID string, create bool, fn ports.CartMutation) (*entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.carts[userID]
	if !ok {
		if !create {
			return nil, apperr.NotFound("cart", userID)
		}
		cur = entity.NewCart(userID, time.Now().UTC())
	}

	work := cur.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	s.carts[userID] = work
	return work.Clone(), nil
}
