package ports

import (
	"context"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
)

// OrderStore owns immutable order records keyed by order id.
type OrderStore interface {
	// Insert persists a new order. An existing OrderID yields
	// apperr.ConflictError and the stored record is left untouched.
	Insert(ctx context.Context, order *entity.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*entity.Order, error)
	// FindByUser returns the user's orders newest first. No orders is an
	// empty slice, not an error.
	FindByUser(ctx context.Context, userID string) ([]*entity.Order, error)
}
