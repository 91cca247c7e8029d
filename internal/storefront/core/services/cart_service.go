package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

// CartService implements the cart operations on top of a CartStore.
type CartService struct {
	store ports.CartStore
	now   func() time.Time
}

func NewCartService(store ports.CartStore) *CartService {
	return &CartService{store: store, now: time.Now}
}

func requireIDs(userID, productID string, needProduct bool) error {
	fields := map[string]bool{"userId": strings.TrimSpace(userID) == ""}
	if needProduct {
		fields["productId"] = strings.TrimSpace(productID) == ""
	}
	for _, bad := range fields {
		if bad {
			return apperr.Validation("userId and productId are required", fields)
		}
	}
	return nil
}

func errQuantityTooLarge(field string) error {
	return apperr.Validation(fmt.Sprintf("%s may not exceed %d per line", field, entity.MaxQuantity), map[string]bool{field: true})
}

// AddItem merges quantity into the user's cart, creating the cart when the
// user has none.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*entity.Cart, error) {
	if err := requireIDs(userID, productID, true); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, apperr.Validation("quantity must be a positive integer", map[string]bool{"quantity": true})
	}

	return s.store.Update(ctx, userID, true, func(cart *entity.Cart) error {
		if !cart.Add(productID, quantity, s.now().UTC()) {
			return errQuantityTooLarge("quantity")
		}
		return nil
	})
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*entity.Cart, error) {
	if err := requireIDs(userID, "", false); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, userID)
}

// SetItemQuantity overwrites the quantity of a line that is already in the
// cart. A missing cart or product leaves everything untouched.
func (s *CartService) SetItemQuantity(ctx context.Context, userID, productID string, quantity int) (*entity.Cart, error) {
	if err := requireIDs(userID, productID, true); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, apperr.Validation("productQty must be a number of at least 1", map[string]bool{"productQty": true})
	}
	if quantity > entity.MaxQuantity {
		return nil, errQuantityTooLarge("productQty")
	}

	return s.store.Update(ctx, userID, false, func(cart *entity.Cart) error {
		if !cart.SetQuantity(productID, quantity, s.now().UTC()) {
			return apperr.NotFound("cart item", productID)
		}
		return nil
	})
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) error {
	if err := requireIDs(userID, productID, true); err != nil {
		return err
	}

	_, err := s.store.Update(ctx, userID, false, func(cart *entity.Cart) error {
		if !cart.Remove(productID, s.now().UTC()) {
			return apperr.NotFound("cart item", productID)
		}
		return nil
	})
	return err
}

// Clear empties the user's cart. A user without a cart is reported as
// not found.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := requireIDs(userID, "", false); err != nil {
		return err
	}

	_, err := s.store.Update(ctx, userID, false, func(cart *entity.Cart) error {
		cart.Clear(s.now().UTC())
		return nil
	})
	return err
}

// ClearForOrder empties the cart after orderID was placed. A missing cart is
// not an error and replays for the same order are no-ops.
func (s *CartService) ClearForOrder(ctx context.Context, userID, orderID string) error {
	_, err := s.store.Update(ctx, userID, false, func(cart *entity.Cart) error {
		cart.ClearForOrder(orderID, s.now().UTC())
		return nil
	})
	if apperr.IsNotFound(err) {
		return nil
	}
	return err
}
