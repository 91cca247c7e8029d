package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jcmexdev/storefront-api/internal/coordinator/sagalog"
	"github.com/jcmexdev/storefront-api/internal/pkg/cache"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront-api/internal/storefront/infra/adapters/store/memory"
)

// flakyCartStore fails every update of an existing cart while failing is set.
type flakyCartStore struct {
	*memory.CartStore
	mu      sync.Mutex
	failing bool
}

func (s *flakyCartStore) setFailing(v bool) {
	s.mu.Lock()
	s.failing = v
	s.mu.Unlock()
}

func (s *flakyCartStore) Update(ctx context.Context, userID string, create bool, fn ports.CartMutation) (*entity.Cart, error) {
	s.mu.Lock()
	failing := s.failing
	s.mu.Unlock()
	if failing && !create {
		return nil, apperr.Store("save cart", errors.New("connection reset"))
	}
	return s.CartStore.Update(ctx, userID, create, fn)
}

type countingMetrics struct {
	mu                                          sync.Mutex
	placed, clearFailed, complaints, notifyFail int
}

func (m *countingMetrics) OrderPlaced()         { m.mu.Lock(); m.placed++; m.mu.Unlock() }
func (m *countingMetrics) CartClearFailed()     { m.mu.Lock(); m.clearFailed++; m.mu.Unlock() }
func (m *countingMetrics) ComplaintRegistered() { m.mu.Lock(); m.complaints++; m.mu.Unlock() }
func (m *countingMetrics) NotificationFailed()  { m.mu.Lock(); m.notifyFail++; m.mu.Unlock() }

type checkoutFixture struct {
	carts    *flakyCartStore
	orders   *memory.OrderStore
	sagas    *sagalog.MemoryRepository
	metrics  *countingMetrics
	cartSvc  *CartService
	orderSvc *OrderService
	checkout *CheckoutService
}

func newCheckoutFixture(t *testing.T, ids IDGenerator) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		carts:   &flakyCartStore{CartStore: memory.NewCartStore()},
		orders:  memory.NewOrderStore(),
		sagas:   sagalog.NewMemoryRepository(),
		metrics: &countingMetrics{},
	}
	f.cartSvc = NewCartService(f.carts)
	f.orderSvc = NewOrderService(f.orders, ids)
	f.checkout = NewCheckoutService(f.cartSvc, f.orderSvc, f.sagas, cache.NewMemoryCache("storefront"), time.Hour, f.metrics)
	return f
}

func price(v float64) *float64 { return &v }

func validInput(items ...entity.LineItem) PlaceOrderInput {
	return PlaceOrderInput{
		UserID:  "u1",
		Name:    "Ada",
		Email:   "ada@example.com",
		Items:   items,
		Price:   price(100),
		Address: "1 Main St",
	}
}

func TestCheckout_AddAddFinalizeScenario(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)

	_, _ = f.cartSvc.AddItem(ctx, "u1", "p1", 2)
	cart, _ := f.cartSvc.AddItem(ctx, "u1", "p1", 3)

	res, err := f.checkout.PlaceOrder(ctx, validInput(cart.Items...))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if len(res.Warnings) != 0 || res.Replayed {
		t.Fatalf("unexpected result flags: %+v", res)
	}
	if got := res.Order.Items; len(got) != 1 || got[0] != (entity.LineItem{ProductID: "p1", Quantity: 5}) {
		t.Fatalf("order items mismatch: %v", got)
	}
	if res.Order.Price != 100 || res.Order.UserID != "u1" {
		t.Fatalf("order fields mismatch: %+v", res.Order)
	}

	after, err := f.cartSvc.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("cart must still exist: %v", err)
	}
	if len(after.Items) != 0 || after.LastOrderID != res.Order.OrderID {
		t.Fatalf("cart not cleared for the order: %+v", after)
	}
	if f.orders.Len() != 1 || f.metrics.placed != 1 {
		t.Fatalf("expected one order and one metric, got %d/%d", f.orders.Len(), f.metrics.placed)
	}

	entry, err := f.checkout.SagaStatus(ctx, res.Order.OrderID)
	if err != nil {
		t.Fatalf("saga status: %v", err)
	}
	if entry.Status != sagalog.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", entry.Status)
	}
}

func TestCheckout_ValidationStoresNothing(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)
	_, _ = f.cartSvc.AddItem(ctx, "u1", "p1", 2)

	cases := []struct {
		name  string
		field string
		edit  func(*PlaceOrderInput)
	}{
		{"missing price", "price", func(in *PlaceOrderInput) { in.Price = nil }},
		{"negative price", "price", func(in *PlaceOrderInput) { in.Price = price(-1) }},
		{"missing user", "userId", func(in *PlaceOrderInput) { in.UserID = "" }},
		{"missing name", "name", func(in *PlaceOrderInput) { in.Name = " " }},
		{"missing email", "email", func(in *PlaceOrderInput) { in.Email = "" }},
		{"missing address", "address", func(in *PlaceOrderInput) { in.Address = "" }},
		{"no items", "items", func(in *PlaceOrderInput) { in.Items = nil }},
		{"zero quantity", "items", func(in *PlaceOrderInput) { in.Items = []entity.LineItem{{ProductID: "p1"}} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput(entity.LineItem{ProductID: "p1", Quantity: 2})
			tc.edit(&in)

			_, err := f.checkout.PlaceOrder(ctx, in)
			var verr *apperr.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !verr.Fields[tc.field] {
				t.Fatalf("expected %s flagged, got %v", tc.field, verr.Fields)
			}
		})
	}

	if f.orders.Len() != 0 {
		t.Fatalf("expected zero orders, got %d", f.orders.Len())
	}
	cart, _ := f.cartSvc.GetCart(ctx, "u1")
	if len(cart.Items) != 1 {
		t.Fatalf("cart was modified by a rejected checkout: %v", cart.Items)
	}
}

func TestCheckout_ZeroPriceIsValid(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	in := validInput(entity.LineItem{ProductID: "p1", Quantity: 1})
	in.Price = price(0)
	if _, err := f.checkout.PlaceOrder(context.Background(), in); err != nil {
		t.Fatalf("zero price must be accepted: %v", err)
	}
}

func TestCheckout_ClearFailureDegradesThenReconciles(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)
	_, _ = f.cartSvc.AddItem(ctx, "u1", "p1", 2)
	f.carts.setFailing(true)

	res, err := f.checkout.PlaceOrder(ctx, validInput(entity.LineItem{ProductID: "p1", Quantity: 2}))
	if err != nil {
		t.Fatalf("order must succeed despite the clear failure: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
	if f.orders.Len() != 1 || f.metrics.clearFailed != 1 {
		t.Fatalf("expected 1 order and 1 clear failure, got %d/%d", f.orders.Len(), f.metrics.clearFailed)
	}
	entry, _ := f.sagas.GetLatest(ctx, res.Order.OrderID)
	if entry.Status != sagalog.StatusDegraded || len(entry.Errors()) != 1 {
		t.Fatalf("expected a degraded saga entry, got %+v", entry)
	}

	f.carts.setFailing(false)
	n, err := f.checkout.ReconcilePending(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 reconciled saga, got %d (%v)", n, err)
	}
	cart, _ := f.cartSvc.GetCart(ctx, "u1")
	if len(cart.Items) != 0 {
		t.Fatalf("reconcile did not clear the cart: %v", cart.Items)
	}
	entry, _ = f.sagas.GetLatest(ctx, res.Order.OrderID)
	if entry.Status != sagalog.StatusCompleted {
		t.Fatalf("expected COMPLETED after reconcile, got %s", entry.Status)
	}
	if n, _ := f.checkout.ReconcilePending(ctx); n != 0 {
		t.Fatalf("nothing should be pending, got %d", n)
	}
}

func TestCheckout_OrderStoreFailureLeavesCart(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)
	_ = f.orders.Insert(ctx, &entity.Order{OrderID: "ORDER-1"})
	f.checkout.orders = NewOrderService(f.orders, &fixedIDs{ids: []string{"ORDER-1"}})
	_, _ = f.cartSvc.AddItem(ctx, "u1", "p1", 2)

	if _, err := f.checkout.PlaceOrder(ctx, validInput(entity.LineItem{ProductID: "p1", Quantity: 2})); !apperr.IsConflict(err) {
		t.Fatalf("expected ConflictError once ids are exhausted, got %v", err)
	}
	cart, _ := f.cartSvc.GetCart(ctx, "u1")
	if len(cart.Items) != 1 || cart.LastOrderID != "" {
		t.Fatalf("cart touched after a failed order: %+v", cart)
	}
}

func TestCheckout_RegeneratesIDOnConflict(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, &fixedIDs{ids: []string{"ORDER-1", "ORDER-2"}})
	_ = f.orders.Insert(ctx, &entity.Order{OrderID: "ORDER-1", UserID: "someone"})

	res, err := f.checkout.PlaceOrder(ctx, validInput(entity.LineItem{ProductID: "p1", Quantity: 1}))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if res.Order.OrderID != "ORDER-2" {
		t.Fatalf("expected ORDER-2, got %s", res.Order.OrderID)
	}
}

func TestCheckout_CollidingIDLeavesOtherSagaHistory(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, &fixedIDs{ids: []string{"ORDER-1", "ORDER-2", "ORDER-3"}})
	_ = f.orders.Insert(ctx, &entity.Order{OrderID: "ORDER-1", UserID: "someone"})
	_ = f.sagas.Save(ctx, sagalog.NewEntry(ctx, "ORDER-1", sagalog.StatusCompleted, "", "", nil))
	// ORDER-2 only has a saga history, as after a crash before the insert.
	_ = f.sagas.Save(ctx, sagalog.NewEntry(ctx, "ORDER-2", sagalog.StatusFailed, stepCreateOrder, "", nil))

	res, err := f.checkout.PlaceOrder(ctx, validInput(entity.LineItem{ProductID: "p1", Quantity: 1}))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if res.Order.OrderID != "ORDER-3" {
		t.Fatalf("expected ORDER-3, got %s", res.Order.OrderID)
	}

	for id, want := range map[string]sagalog.Status{"ORDER-1": sagalog.StatusCompleted, "ORDER-2": sagalog.StatusFailed} {
		rows := f.sagas.History(id)
		if len(rows) != 1 || rows[0].Status != want {
			t.Fatalf("saga %s gained rows from another checkout: %v", id, statusesOf(rows))
		}
	}
	if _, err := f.orders.FindByOrderID(ctx, "ORDER-2"); !apperr.IsNotFound(err) {
		t.Fatalf("no order should be stored under a used saga id, got %v", err)
	}
}

func statusesOf(rows []sagalog.SagaLog) []sagalog.Status {
	out := make([]sagalog.Status, len(rows))
	for i, r := range rows {
		out[i] = r.Status
	}
	return out
}

func TestCheckout_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)

	in := validInput(entity.LineItem{ProductID: "p1", Quantity: 1})
	in.IdempotencyKey = "key-1"
	first, err := f.checkout.PlaceOrder(ctx, in)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := f.checkout.PlaceOrder(ctx, in)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !second.Replayed || second.Order.OrderID != first.Order.OrderID {
		t.Fatalf("expected replay of %s, got %+v", first.Order.OrderID, second)
	}
	if f.orders.Len() != 1 {
		t.Fatalf("expected one order, got %d", f.orders.Len())
	}

	in.IdempotencyKey = "key-2"
	third, err := f.checkout.PlaceOrder(ctx, in)
	if err != nil || third.Replayed || third.Order.OrderID == first.Order.OrderID {
		t.Fatalf("a new key must create a new order: %+v %v", third, err)
	}
}

func TestCheckout_IdempotencyKeyIsScopedToUser(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)

	first := validInput(entity.LineItem{ProductID: "p1", Quantity: 1})
	first.IdempotencyKey = "k1"
	a, err := f.checkout.PlaceOrder(ctx, first)
	if err != nil {
		t.Fatalf("u1: %v", err)
	}

	_, _ = f.cartSvc.AddItem(ctx, "u2", "p2", 4)
	second := validInput(entity.LineItem{ProductID: "p2", Quantity: 4})
	second.UserID, second.Name, second.Email, second.Address = "u2", "Grace", "grace@example.com", "2 Side St"
	second.IdempotencyKey = "k1"
	b, err := f.checkout.PlaceOrder(ctx, second)
	if err != nil {
		t.Fatalf("u2: %v", err)
	}

	if b.Replayed || b.Order.OrderID == a.Order.OrderID {
		t.Fatalf("u2 must get its own order, got %+v", b.Order)
	}
	if b.Order.UserID != "u2" || b.Order.Email != "grace@example.com" {
		t.Fatalf("u2 received foreign order data: %+v", b.Order)
	}
	if f.orders.Len() != 2 {
		t.Fatalf("expected two orders, got %d", f.orders.Len())
	}
	cart, _ := f.cartSvc.GetCart(ctx, "u2")
	if len(cart.Items) != 0 {
		t.Fatalf("u2 cart not cleared: %+v", cart.Items)
	}
}

func TestCheckout_StaleRevisionConflicts(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)
	cart, _ := f.cartSvc.AddItem(ctx, "u1", "p1", 1)
	seen := cart.Revision
	_, _ = f.cartSvc.AddItem(ctx, "u1", "p2", 1)

	in := validInput(entity.LineItem{ProductID: "p1", Quantity: 1})
	in.CartRevision = &seen
	if _, err := f.checkout.PlaceOrder(ctx, in); !apperr.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if f.orders.Len() != 0 {
		t.Fatalf("stale checkout created an order")
	}

	current := seen + 1
	in.CartRevision = &current
	if _, err := f.checkout.PlaceOrder(ctx, in); err != nil {
		t.Fatalf("current revision must be accepted: %v", err)
	}
}

func TestCheckout_ConcurrentSameUser(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.checkout.PlaceOrder(ctx, validInput(entity.LineItem{ProductID: "p1", Quantity: 1}))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("place order: %v", err)
		}
	}
	orders, _ := f.orderSvc.FindByUser(ctx, "u1")
	if len(orders) != 10 {
		t.Fatalf("expected 10 distinct orders, got %d", len(orders))
	}
}

func TestCheckout_ReconcileAndSagaStatusUnknown(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)
	if err := f.checkout.ReconcileCart(ctx, "ORDER-404"); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if _, err := f.checkout.SagaStatus(ctx, "ORDER-404"); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
