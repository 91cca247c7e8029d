package services

import (
	"context"
	"fmt"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
)

const (
	stepCreateOrder = "Create_Order_Step"
	stepClearCart   = "Clear_Cart_Step"
)

// --- CreateOrderStep ---

type createOrderStep struct {
	orders *OrderService
	order  *entity.Order
	saved  *entity.Order
}

func (s *createOrderStep) Name() string { return stepCreateOrder }

func (s *createOrderStep) Execute(ctx context.Context) error {
	saved, err := s.orders.CreateOrder(ctx, s.order)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	s.saved = saved
	return nil
}

// Compensate is a no-op: orders are immutable and nothing after this step
// is critical.
func (s *createOrderStep) Compensate(context.Context) error { return nil }

// --- ClearCartStep ---

type clearCartStep struct {
	carts   *CartService
	userID  string
	orderID string
}

func (s *clearCartStep) Name() string { return stepClearCart }

func (s *clearCartStep) Execute(ctx context.Context) error {
	if err := s.carts.ClearForOrder(ctx, s.userID, s.orderID); err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", s.userID, err)
	}
	return nil
}

func (s *clearCartStep) Compensate(context.Context) error { return nil }
