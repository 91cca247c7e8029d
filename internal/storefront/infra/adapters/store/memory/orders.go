package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

var _ ports.OrderStore = (*OrderStore)(nil)

type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]*entity.Order
	// seq keeps insertion order to break CreatedAt ties.
	seq map[string]int
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[string]*entity.Order),
		seq:    make(map[string]int),
	}
}

func (s *OrderStore) Insert(_ context.Context, order *entity.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[order.OrderID]; exists {
		return apperr.Conflict("order", order.OrderID, "order id already exists")
	}
	s.orders[order.OrderID] = order.Clone()
	s.seq[order.OrderID] = len(s.seq)
	return nil
}

func (s *OrderStore) FindByOrderID(_ context.Context, orderID string) (*entity.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, apperr.NotFound("order", orderID)
	}
	return order.Clone(), nil
}

func (s *OrderStore) FindByUser(_ context.Context, userID string) ([]*entity.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*entity.Order{}
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.seq[out[i].OrderID] > s.seq[out[j].OrderID]
	})
	return out, nil
}

// Len reports how many orders are stored.
func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
