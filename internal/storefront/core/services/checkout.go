package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jcmexdev/storefront-api/internal/coordinator"
	"github.com/jcmexdev/storefront-api/internal/coordinator/sagalog"
	"github.com/jcmexdev/storefront-api/internal/pkg/cache"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
)

var tracer = otel.Tracer("github.com/jcmexdev/storefront-api/internal/storefront/core/services")

// PlaceOrderInput is the checkout request. Items is trusted as the order
// snapshot; the live cart is not re-read.
type PlaceOrderInput struct {
	UserID  string
	Name    string
	Email   string
	Items   []entity.LineItem
	Price   *float64
	Address string

	// CartRevision, when set, must equal the live cart revision.
	CartRevision *int64
	// IdempotencyKey, when set, makes a repeated submission return the
	// order created by the first one.
	IdempotencyKey string
}

// Validate checks every required field and reports all of them at once.
func (in PlaceOrderInput) Validate() error {
	itemsBad := len(in.Items) == 0
	for _, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" || it.Quantity <= 0 || it.Quantity > entity.MaxQuantity {
			itemsBad = true
		}
	}

	fields := map[string]bool{
		"userId":  strings.TrimSpace(in.UserID) == "",
		"name":    strings.TrimSpace(in.Name) == "",
		"email":   strings.TrimSpace(in.Email) == "",
		"items":   itemsBad,
		"price":   in.Price == nil || *in.Price < 0,
		"address": strings.TrimSpace(in.Address) == "",
	}
	for _, bad := range fields {
		if bad {
			return apperr.Validation("All fields are required and cart must not be empty.", fields)
		}
	}
	return nil
}

type PlaceOrderResult struct {
	Order *entity.Order
	// Warnings lists best-effort steps that failed after the order was stored.
	Warnings []string
	// Replayed is true when the order came from an earlier submission with the
	// same idempotency key.
	Replayed bool
}

type sagaPayload struct {
	UserID  string            `json:"userId"`
	Items   []entity.LineItem `json:"items"`
	Price   float64           `json:"price"`
	Address string            `json:"address"`
}

// CheckoutService finalizes orders: it stores the order snapshot and then
// clears the source cart, as a saga recorded in the saga log.
type CheckoutService struct {
	carts    *CartService
	orders   *OrderService
	sagaLog  sagalog.Repository // nil-safe
	idem     cache.Cache        // nil disables idempotency replay
	idemTTL  time.Duration
	metrics  Metrics
	userLock *keyedMutex
	now      func() time.Time
}

func NewCheckoutService(
	carts *CartService,
	orders *OrderService,
	sagaLog sagalog.Repository,
	idem cache.Cache,
	idemTTL time.Duration,
	metrics Metrics,
) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		orders:   orders,
		sagaLog:  sagaLog,
		idem:     idem,
		idemTTL:  idemTTL,
		metrics:  metricsOrNoop(metrics),
		userLock: newKeyedMutex(),
		now:      time.Now,
	}
}

// PlaceOrder validates in, creates the order and clears the user's cart. A
// failed cart clear does not undo the order; it is returned as a warning.
func (s *CheckoutService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "checkout.PlaceOrder")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", in.UserID), attribute.Int("order.items", len(in.Items)))

	unlock := s.userLock.Lock(in.UserID)
	defer unlock()

	if replay, err := s.replay(ctx, in.UserID, in.IdempotencyKey); err != nil || replay != nil {
		return replay, err
	}

	if err := s.checkRevision(ctx, in); err != nil {
		return nil, err
	}

	payload := sagaPayload{UserID: in.UserID, Items: in.Items, Price: *in.Price, Address: in.Address}

	var lastErr error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		orderID := s.orders.NewOrderID()
		if err := s.orderIDFree(ctx, orderID); err != nil {
			lastErr = err
			if apperr.IsConflict(err) {
				continue
			}
			return nil, err
		}
		order := &entity.Order{
			OrderID:   orderID,
			UserID:    in.UserID,
			Name:      in.Name,
			Email:     in.Email,
			Items:     entity.CloneItems(in.Items),
			Price:     *in.Price,
			Address:   in.Address,
			CreatedAt: s.now().UTC(),
		}
		createStep := &createOrderStep{orders: s.orders, order: order}
		clearStep := &clearCartStep{carts: s.carts, userID: in.UserID, orderID: order.OrderID}

		steps := []coordinator.Step{createStep, coordinator.BestEffort(clearStep)}
		report, err := coordinator.NewOrchestrator(order.OrderID, steps, s.sagaLog).
			WithPayload(payload).
			Start(ctx)
		if errors.Is(err, coordinator.ErrSagaExists) {
			lastErr = apperr.Conflict("order", order.OrderID, "saga id already used")
			continue
		}
		if apperr.IsConflict(err) {
			lastErr = err
			continue
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "create order failed")
			return nil, err
		}

		result := &PlaceOrderResult{Order: createStep.saved}
		for _, f := range report.Degraded {
			s.metrics.CartClearFailed()
			slog.ErrorContext(ctx, "order stored but cart was not cleared",
				"order_id", order.OrderID,
				"user_id", in.UserID,
				"step", f.Step,
				"error", f.Err,
			)
			result.Warnings = append(result.Warnings, "cart could not be cleared; it will be reconciled")
		}
		s.metrics.OrderPlaced()
		s.remember(ctx, in.UserID, in.IdempotencyKey, order.OrderID)
		span.SetAttributes(attribute.String("order.id", order.OrderID))
		return result, nil
	}

	slog.ErrorContext(ctx, "could not allocate a unique order id", "user_id", in.UserID, "error", lastErr)
	return nil, lastErr
}

// orderIDFree reports a ConflictError when orderID already names an order,
// so a colliding id never gets a saga started under it.
func (s *CheckoutService) orderIDFree(ctx context.Context, orderID string) error {
	_, err := s.orders.FindByOrderID(ctx, orderID)
	switch {
	case err == nil:
		return apperr.Conflict("order", orderID, "order id already in use")
	case apperr.IsNotFound(err):
		return nil
	default:
		return err
	}
}

// idemKey scopes a client idempotency key to the user that sent it. The
// length prefix keeps "a/b"+"c" apart from "a"+"b/c".
func (s *CheckoutService) idemKey(userID, key string) string {
	return s.idem.GenerateKey("place-order", fmt.Sprintf("%d:%s:%s", len(userID), userID, key))
}

func (s *CheckoutService) replay(ctx context.Context, userID, key string) (*PlaceOrderResult, error) {
	if s.idem == nil || key == "" {
		return nil, nil
	}
	orderID, err := s.idem.Get(ctx, s.idemKey(userID, key))
	if err != nil {
		slog.WarnContext(ctx, "idempotency lookup failed", "error", err)
		return nil, nil
	}
	if orderID == "" {
		return nil, nil
	}
	order, err := s.orders.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		slog.WarnContext(ctx, "idempotency key points at another user's order, ignoring",
			"order_id", orderID,
			"user_id", userID,
		)
		return nil, nil
	}
	slog.InfoContext(ctx, "idempotent replay of place order", "order_id", orderID)
	return &PlaceOrderResult{Order: order, Replayed: true}, nil
}

func (s *CheckoutService) remember(ctx context.Context, userID, key, orderID string) {
	if s.idem == nil || key == "" {
		return
	}
	if err := s.idem.Set(ctx, s.idemKey(userID, key), orderID, s.idemTTL); err != nil {
		slog.WarnContext(ctx, "failed to store idempotency key", "order_id", orderID, "error", err)
	}
}

func (s *CheckoutService) checkRevision(ctx context.Context, in PlaceOrderInput) error {
	if in.CartRevision == nil {
		return nil
	}
	cart, err := s.carts.GetCart(ctx, in.UserID)
	if apperr.IsNotFound(err) {
		return apperr.Conflict("cart", in.UserID, "cart no longer exists")
	}
	if err != nil {
		return err
	}
	if cart.Revision != *in.CartRevision {
		return apperr.Conflict("cart", in.UserID, "cart changed since it was read")
	}
	return nil
}

// ReconcileCart re-issues the cart clear of an existing order. It is safe to
// call any number of times.
func (s *CheckoutService) ReconcileCart(ctx context.Context, orderID string) error {
	order, err := s.orders.FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	unlock := s.userLock.Lock(order.UserID)
	defer unlock()

	if err := s.carts.ClearForOrder(ctx, order.UserID, order.OrderID); err != nil {
		s.metrics.CartClearFailed()
		return err
	}

	if s.sagaLog != nil {
		entry := sagalog.NewEntry(ctx, order.OrderID, sagalog.StatusCompleted, stepClearCart, "", nil)
		if err := s.sagaLog.Save(ctx, entry); err != nil {
			slog.ErrorContext(ctx, "failed to persist saga log entry", "saga_id", order.OrderID, "error", err)
		}
	}
	slog.InfoContext(ctx, "cart reconciled", "order_id", order.OrderID, "user_id", order.UserID)
	return nil
}

// ReconcilePending re-drives the cart clear of every checkout whose saga
// ended COMPLETED_WITH_ERRORS and reports how many were reconciled.
func (s *CheckoutService) ReconcilePending(ctx context.Context) (int, error) {
	if s.sagaLog == nil {
		return 0, nil
	}
	pending, err := s.sagaLog.ListLatestByStatus(ctx, sagalog.StatusDegraded)
	if err != nil {
		return 0, fmt.Errorf("list degraded sagas: %w", err)
	}
	done := 0
	for _, entry := range pending {
		if err := s.ReconcileCart(ctx, entry.SagaID); err != nil {
			slog.WarnContext(ctx, "cart reconciliation failed", "saga_id", entry.SagaID, "error", err)
			continue
		}
		done++
	}
	return done, nil
}

// SagaStatus returns the latest saga log entry for sagaID.
func (s *CheckoutService) SagaStatus(ctx context.Context, sagaID string) (*sagalog.SagaLog, error) {
	if s.sagaLog == nil {
		return nil, apperr.NotFound("saga", sagaID)
	}
	entry, err := s.sagaLog.GetLatest(ctx, sagaID)
	if errors.Is(err, sagalog.ErrNotFound) {
		return nil, apperr.NotFound("saga", sagaID)
	}
	if err != nil {
		return nil, apperr.Store("get saga log", err)
	}
	return entry, nil
}
