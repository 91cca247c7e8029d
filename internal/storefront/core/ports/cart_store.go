package ports

import (
	"context"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
)

// CartMutation edits a loaded cart in place. Returning an error aborts the
// update and nothing is written.
type CartMutation func(cart *entity.Cart) error

// CartStore owns the per-user cart documents.
type CartStore interface {
	// Get returns the cart for userID or an apperr.NotFoundError.
	Get(ctx context.Context, userID string) (*entity.Cart, error)

	// Update loads the cart for userID, applies fn and persists the result.
	// Concurrent updates of the same cart never interleave. When create is
	// true a missing cart is created empty before fn runs; otherwise a missing
	// cart yields apperr.NotFoundError.
	Update(ctx context.Context, userID string, create bool, fn CartMutation) (*entity.Cart, error)
}
