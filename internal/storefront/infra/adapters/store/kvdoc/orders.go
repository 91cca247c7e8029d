package kvdoc

import (
	"context"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

var _ ports.OrderStore = (*OrderStore)(nil)

type OrderStore struct {
	db *DB
}

// Insert writes the order document and its per-user index entry in one batch.
func (s *OrderStore) Insert(_ context.Context, order *entity.Order) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	taken, err := s.db.exists(orderKey(order.OrderID))
	if err != nil {
		return apperr.Store("insert order", err)
	}
	if taken {
		return apperr.Conflict("order", order.OrderID, "order id already exists")
	}

	doc, err := jsonPair(orderKey(order.OrderID), order)
	if err != nil {
		return apperr.Store("insert order", err)
	}
	idx := Pair{
		Key:   userOrderKey(order.UserID, order.CreatedAt.UnixNano(), order.OrderID),
		Value: []byte(order.OrderID),
	}
	if err := s.db.kv.Set(doc, idx); err != nil {
		return apperr.Store("insert order", err)
	}
	return nil
}

func (s *OrderStore) FindByOrderID(_ context.Context, orderID string) (*entity.Order, error) {
	var order entity.Order
	ok, err := s.db.getJSON(orderKey(orderID), &order)
	if err != nil {
		return nil, apperr.Store("find order", err)
	}
	if !ok {
		return nil, apperr.NotFound("order", orderID)
	}
	return &order, nil
}

func (s *OrderStore) FindByUser(_ context.Context, userID string) ([]*entity.Order, error) {
	var ids []string
	err := s.db.kv.Scan(userOrdersPrefix(userID), func(_, val []byte) error {
		ids = append(ids, string(val))
		return nil
	})
	if err != nil {
		return nil, apperr.Store("find orders by user", err)
	}

	// The index ascends by creation time; walk it backwards.
	out := make([]*entity.Order, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		var order entity.Order
		ok, err := s.db.getJSON(orderKey(ids[i]), &order)
		if err != nil {
			return nil, apperr.Store("find orders by user", err)
		}
		if ok {
			out = append(out, &order)
		}
	}
	return out, nil
}
