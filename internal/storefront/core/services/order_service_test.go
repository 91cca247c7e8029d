package services

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/infra/adapters/store/memory"
)

// fixedIDs returns the queued ids in order, then repeats the last one.
type fixedIDs struct {
	mu  sync.Mutex
	ids []string
}

func (f *fixedIDs) NewOrderID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.ids[0]
	if len(f.ids) > 1 {
		f.ids = f.ids[1:]
	}
	return id
}

func TestTimestampIDGenerator_Distinct(t *testing.T) {
	g := NewTimestampIDGenerator()
	frozen := time.UnixMilli(1_700_000_000_000)
	g.now = func() time.Time { return frozen }

	pattern := regexp.MustCompile(`^ORDER-\d+$`)
	seen := make(map[string]bool, 2000)
	for i := 0; i < 2000; i++ {
		id := g.NewOrderID()
		if !pattern.MatchString(id) {
			t.Fatalf("malformed id %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q after %d ids", id, i)
		}
		seen[id] = true
	}
}

func TestTimestampIDGenerator_Concurrent(t *testing.T) {
	g := NewTimestampIDGenerator()
	var (
		mu   sync.Mutex
		seen = map[string]bool{}
		wg   sync.WaitGroup
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := g.NewOrderID()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != 1600 {
		t.Fatalf("expected 1600 distinct ids, got %d", len(seen))
	}
}

func newOrder(user string) *entity.Order {
	return &entity.Order{
		UserID:  user,
		Name:    "Ada",
		Email:   "ada@example.com",
		Items:   []entity.LineItem{{ProductID: "p1", Quantity: 1}},
		Price:   10,
		Address: "1 Main St",
	}
}

func TestOrderService_RetriesGeneratedIDOnConflict(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()
	if err := store.Insert(ctx, &entity.Order{OrderID: "ORDER-1", UserID: "other"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewOrderService(store, &fixedIDs{ids: []string{"ORDER-1", "ORDER-2"}})

	saved, err := svc.CreateOrder(ctx, newOrder("u1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if saved.OrderID != "ORDER-2" {
		t.Fatalf("expected regenerated id ORDER-2, got %s", saved.OrderID)
	}
	if saved.CreatedAt.IsZero() {
		t.Fatalf("created at not assigned")
	}
}

func TestOrderService_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()
	_ = store.Insert(ctx, &entity.Order{OrderID: "ORDER-1"})
	svc := NewOrderService(store, &fixedIDs{ids: []string{"ORDER-1"}})

	if _, err := svc.CreateOrder(ctx, newOrder("u1")); !apperr.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected the store untouched, got %d orders", store.Len())
	}
}

func TestOrderService_CallerSuppliedIDConflicts(t *testing.T) {
	ctx := context.Background()
	store := memory.NewOrderStore()
	svc := NewOrderService(store, nil)

	o := newOrder("u1")
	o.OrderID = "ORDER-7"
	if _, err := svc.CreateOrder(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateOrder(ctx, o); !apperr.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestOrderService_SnapshotIsCopied(t *testing.T) {
	ctx := context.Background()
	svc := NewOrderService(memory.NewOrderStore(), nil)

	o := newOrder("u1")
	saved, err := svc.CreateOrder(ctx, o)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	o.Items[0].Quantity = 99

	got, err := svc.FindByOrderID(ctx, saved.OrderID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Items[0].Quantity != 1 {
		t.Fatalf("stored snapshot aliased caller items: %v", got.Items)
	}
}

func TestOrderService_FindByUser(t *testing.T) {
	ctx := context.Background()
	svc := NewOrderService(memory.NewOrderStore(), nil)

	orders, err := svc.FindByUser(ctx, "nobody")
	if err != nil || orders == nil || len(orders) != 0 {
		t.Fatalf("expected an empty non-nil slice, got %v %v", orders, err)
	}

	for i := 0; i < 3; i++ {
		o := newOrder("u1")
		o.CreatedAt = time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC)
		if _, err := svc.CreateOrder(ctx, o); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	orders, err = svc.FindByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("find by user: %v", err)
	}
	if len(orders) != 3 || !orders[0].CreatedAt.After(orders[2].CreatedAt) {
		t.Fatalf("expected 3 orders newest first, got %s", fmt.Sprint(orders))
	}

	if _, err := svc.FindByUser(ctx, ""); !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError for blank user, got %v", err)
	}
	if _, err := svc.FindByOrderID(ctx, "ORDER-404"); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
