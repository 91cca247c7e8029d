package services

import (
	"context"
	"strings"
	"time"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

// maxIDAttempts bounds id regeneration after a collision.
const maxIDAttempts = 5

type OrderService struct {
	store ports.OrderStore
	ids   IDGenerator
	now   func() time.Time
}

func NewOrderService(store ports.OrderStore, ids IDGenerator) *OrderService {
	if ids == nil {
		ids = NewTimestampIDGenerator()
	}
	return &OrderService{store: store, ids: ids, now: time.Now}
}

// NewOrderID allocates an id without persisting anything.
func (s *OrderService) NewOrderID() string {
	return s.ids.NewOrderID()
}

// CreateOrder persists order. An empty OrderID is assigned here and
// regenerated on collision; a caller-supplied id that collides is returned
// as apperr.ConflictError.
func (s *OrderService) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	rec := order.Clone()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}

	if rec.OrderID != "" {
		if err := s.store.Insert(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}

	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		rec.OrderID = s.ids.NewOrderID()
		if err = s.store.Insert(ctx, rec); !apperr.IsConflict(err) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *OrderService) FindByOrderID(ctx context.Context, orderID string) (*entity.Order, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, apperr.Validation("orderId is required", map[string]bool{"orderId": true})
	}
	return s.store.FindByOrderID(ctx, orderID)
}

// FindByUser returns the user's orders newest first; an empty result is a
// success with zero elements.
func (s *OrderService) FindByUser(ctx context.Context, userID string) ([]*entity.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("userId is required", map[string]bool{"userId": true})
	}
	orders, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*entity.Order{}
	}
	return orders, nil
}
