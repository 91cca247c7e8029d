// Package storetest is a conformance suite for storefront store backends.
// Each backend's tests call the Run* functions with a factory producing a
// fresh, empty store.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

func addItem(productID string, qty int) ports.CartMutation {
	return func(c *entity.Cart) error {
		c.Add(productID, qty, time.Now().UTC())
		return nil
	}
}

// RunCartStore checks the CartStore contract.
func RunCartStore(t *testing.T, newStore func(t *testing.T) ports.CartStore) {
	t.Run("get missing cart", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "ghost")
		if !apperr.IsNotFound(err) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("update without create on missing cart", func(t *testing.T) {
		s := newStore(t)
		called := false
		_, err := s.Update(context.Background(), "ghost", false, func(*entity.Cart) error {
			called = true
			return nil
		})
		if !apperr.IsNotFound(err) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
		if called {
			t.Fatalf("mutation must not run for a missing cart")
		}
	})

	t.Run("create then merge", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		if _, err := s.Update(ctx, "u1", true, addItem("p1", 2)); err != nil {
			t.Fatalf("first add: %v", err)
		}
		cart, err := s.Update(ctx, "u1", true, addItem("p1", 3))
		if err != nil {
			t.Fatalf("second add: %v", err)
		}
		if len(cart.Items) != 1 || cart.Items[0].Quantity != 5 {
			t.Fatalf("expected one line with quantity 5, got %+v", cart.Items)
		}

		got, err := s.Get(ctx, "u1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.UserID != "u1" || len(got.Items) != 1 || got.Items[0].Quantity != 5 {
			t.Fatalf("stored cart mismatch: %+v", got)
		}
		if got.Revision != 2 {
			t.Fatalf("expected revision 2, got %d", got.Revision)
		}
	})

	t.Run("failed mutation writes nothing", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		if _, err := s.Update(ctx, "u1", true, addItem("p1", 1)); err != nil {
			t.Fatalf("seed: %v", err)
		}
		boom := errors.New("boom")
		_, err := s.Update(ctx, "u1", false, func(c *entity.Cart) error {
			c.Add("p2", 4, time.Now())
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected mutation error, got %v", err)
		}
		got, _ := s.Get(ctx, "u1")
		if len(got.Items) != 1 || got.Revision != 1 {
			t.Fatalf("cart changed after failed mutation: %+v", got)
		}
	})

	t.Run("clear keeps an empty cart", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		if _, err := s.Update(ctx, "u1", true, addItem("p1", 1)); err != nil {
			t.Fatalf("seed: %v", err)
		}
		_, err := s.Update(ctx, "u1", false, func(c *entity.Cart) error {
			c.ClearForOrder("ORDER-1", time.Now())
			return nil
		})
		if err != nil {
			t.Fatalf("clear: %v", err)
		}
		got, err := s.Get(ctx, "u1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(got.Items) != 0 || got.LastOrderID != "ORDER-1" {
			t.Fatalf("expected empty cart cleared by ORDER-1, got %+v", got)
		}
	})
}

func sampleOrder(id, user string, at time.Time) *entity.Order {
	return &entity.Order{
		OrderID:   id,
		UserID:    user,
		Name:      "Ada",
		Email:     "ada@example.com",
		Items:     []entity.LineItem{{ProductID: "p1", Quantity: 5}, {ProductID: "p2", Quantity: 1}},
		Price:     100,
		Address:   "1 Main St",
		CreatedAt: at,
	}
}

// RunOrderStore checks the OrderStore contract.
func RunOrderStore(t *testing.T, newStore func(t *testing.T) ports.OrderStore) {
	t.Run("insert and find", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		if err := s.Insert(ctx, sampleOrder("ORDER-1", "u1", at)); err != nil {
			t.Fatalf("insert: %v", err)
		}
		got, err := s.FindByOrderID(ctx, "ORDER-1")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got.UserID != "u1" || got.Price != 100 || got.Address != "1 Main St" {
			t.Fatalf("unexpected order: %+v", got)
		}
		if len(got.Items) != 2 || got.Items[0] != (entity.LineItem{ProductID: "p1", Quantity: 5}) {
			t.Fatalf("items snapshot mismatch: %+v", got.Items)
		}
		if !got.CreatedAt.Equal(at) {
			t.Fatalf("created at mismatch: %v", got.CreatedAt)
		}
	})

	t.Run("duplicate id conflicts", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		now := time.Now().UTC()
		if err := s.Insert(ctx, sampleOrder("ORDER-1", "u1", now)); err != nil {
			t.Fatalf("insert: %v", err)
		}
		err := s.Insert(ctx, sampleOrder("ORDER-1", "u2", now))
		if !apperr.IsConflict(err) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		got, _ := s.FindByOrderID(ctx, "ORDER-1")
		if got.UserID != "u1" {
			t.Fatalf("conflicting insert overwrote the order: %+v", got)
		}
	})

	t.Run("find missing", func(t *testing.T) {
		_, err := newStore(t).FindByOrderID(context.Background(), "ORDER-404")
		if !apperr.IsNotFound(err) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("find by user newest first", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		for i, id := range []string{"ORDER-1", "ORDER-2", "ORDER-3"} {
			if err := s.Insert(ctx, sampleOrder(id, "u1", base.Add(time.Duration(i)*time.Minute))); err != nil {
				t.Fatalf("insert %s: %v", id, err)
			}
		}
		if err := s.Insert(ctx, sampleOrder("ORDER-9", "u2", base)); err != nil {
			t.Fatalf("insert: %v", err)
		}

		got, err := s.FindByUser(ctx, "u1")
		if err != nil {
			t.Fatalf("find by user: %v", err)
		}
		var ids []string
		for _, o := range got {
			ids = append(ids, o.OrderID)
		}
		if fmt.Sprint(ids) != "[ORDER-3 ORDER-2 ORDER-1]" {
			t.Fatalf("unexpected order: %v", ids)
		}
	})

	t.Run("find by user keeps users with shared prefixes apart", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		for id, user := range map[string]string{"ORDER-A": "a", "ORDER-AB": "a/b", "ORDER-AC": "a/c/d"} {
			if err := s.Insert(ctx, sampleOrder(id, user, at)); err != nil {
				t.Fatalf("insert %s: %v", id, err)
			}
		}

		for user, want := range map[string]string{"a": "ORDER-A", "a/b": "ORDER-AB", "a/c/d": "ORDER-AC"} {
			got, err := s.FindByUser(ctx, user)
			if err != nil {
				t.Fatalf("find by user %q: %v", user, err)
			}
			if len(got) != 1 || got[0].OrderID != want || got[0].UserID != user {
				t.Fatalf("user %q: expected only %s, got %+v", user, want, got)
			}
		}
	})

	t.Run("find by user without orders", func(t *testing.T) {
		got, err := newStore(t).FindByUser(context.Background(), "nobody")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no orders, got %d", len(got))
		}
	})
}

// RunComplaintStore checks the ComplaintStore contract.
func RunComplaintStore(t *testing.T, newStore func(t *testing.T) ports.ComplaintStore) {
	complaint := func(num string) *entity.Complaint {
		return &entity.Complaint{
			ComplaintNumber: num,
			Name:            "Ada",
			Email:           "ada@example.com",
			Message:         "parcel arrived damaged",
			UserType:        "customer",
			CreatedAt:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		}
	}

	t.Run("insert list update", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		for _, num := range []string{"C-100001", "C-100002"} {
			if err := s.Insert(ctx, complaint(num)); err != nil {
				t.Fatalf("insert %s: %v", num, err)
			}
		}
		list, err := s.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 complaints, got %d", len(list))
		}

		updated, err := s.UpdateStatus(ctx, "C-100002", "resolved")
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Status != "resolved" || updated.Message != "parcel arrived damaged" {
			t.Fatalf("unexpected updated complaint: %+v", updated)
		}
	})

	t.Run("duplicate number conflicts", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		if err := s.Insert(ctx, complaint("C-123456")); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := s.Insert(ctx, complaint("C-123456")); !apperr.IsConflict(err) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
	})

	t.Run("update missing", func(t *testing.T) {
		_, err := newStore(t).UpdateStatus(context.Background(), "C-000000", "resolved")
		if !apperr.IsNotFound(err) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})
}

// CatalogStore is what RunCatalog needs from a backend.
type CatalogStore interface {
	ports.ProductCatalog
	ports.CatalogSeeder
}

// RunCatalog checks seeding and lookup.
func RunCatalog(t *testing.T, newStore func(t *testing.T) CatalogStore) {
	ctx := context.Background()
	s := newStore(t)
	err := s.SeedProducts(ctx, []entity.Product{
		{ProductID: "p1", Name: "Teddy bear", Price: 19.5, Stock: 3, Category: "toys"},
		{ProductID: "p2", Name: "Mug", Price: 7},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	p, err := s.GetProduct(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Name != "Teddy bear" || p.Price != 19.5 || p.Stock != 3 || p.Category != "toys" {
		t.Fatalf("unexpected product: %+v", p)
	}

	if _, err := s.GetProduct(ctx, "p404"); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
