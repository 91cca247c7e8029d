package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/infra/adapters/store/memory"
)

type stubNotifier struct {
	err  error
	sent []string
}

func (n *stubNotifier) ComplaintRegistered(_ context.Context, c entity.Complaint) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, c.ComplaintNumber)
	return nil
}

func complaintInput() RegisterComplaintInput {
	return RegisterComplaintInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Message:  "parcel arrived damaged",
		UserType: "customer",
	}
}

func TestComplaintService_ThreeDistinctNumbers(t *testing.T) {
	ctx := context.Background()
	notifier := &stubNotifier{}
	svc := NewComplaintService(memory.NewComplaintStore(), notifier, nil)

	pattern := regexp.MustCompile(`^C-\d{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		res, err := svc.Register(ctx, complaintInput())
		if err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		num := res.Complaint.ComplaintNumber
		if !pattern.MatchString(num) {
			t.Fatalf("malformed complaint number %q", num)
		}
		if seen[num] {
			t.Fatalf("duplicate complaint number %q", num)
		}
		seen[num] = true
		if res.NotificationWarning != "" {
			t.Fatalf("unexpected warning: %s", res.NotificationWarning)
		}
	}

	list, err := svc.ListAll(ctx)
	if err != nil || len(list) != 3 {
		t.Fatalf("expected 3 complaints, got %d (%v)", len(list), err)
	}
	if len(notifier.sent) != 3 {
		t.Fatalf("expected 3 confirmations, got %d", len(notifier.sent))
	}
}

func TestComplaintService_RetriesOnCollision(t *testing.T) {
	ctx := context.Background()
	svc := NewComplaintService(memory.NewComplaintStore(), nil, nil)
	draws := []int{123456, 123456, 654321}
	svc.draw = func() int {
		d := draws[0]
		draws = draws[1:]
		return d
	}

	first, err := svc.Register(ctx, complaintInput())
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.Register(ctx, complaintInput())
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Complaint.ComplaintNumber != "C-123456" || second.Complaint.ComplaintNumber != "C-654321" {
		t.Fatalf("unexpected numbers %s, %s", first.Complaint.ComplaintNumber, second.Complaint.ComplaintNumber)
	}
}

func TestComplaintService_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	svc := NewComplaintService(memory.NewComplaintStore(), nil, nil)
	svc.draw = func() int { return 111111 }

	if _, err := svc.Register(ctx, complaintInput()); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := svc.Register(ctx, complaintInput()); !apperr.IsConflict(err) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestComplaintService_NotificationFailureIsAWarning(t *testing.T) {
	ctx := context.Background()
	store := memory.NewComplaintStore()
	m := &countingMetrics{}
	svc := NewComplaintService(store, &stubNotifier{err: errors.New("smtp down")}, m)

	res, err := svc.Register(ctx, complaintInput())
	if err != nil {
		t.Fatalf("registration must succeed: %v", err)
	}
	if res.NotificationWarning == "" {
		t.Fatalf("expected a notification warning")
	}
	list, _ := store.List(ctx)
	if len(list) != 1 {
		t.Fatalf("complaint not persisted")
	}
	if m.complaints != 1 || m.notifyFail != 1 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestComplaintService_Validation(t *testing.T) {
	svc := NewComplaintService(memory.NewComplaintStore(), nil, nil)
	in := complaintInput()
	in.UserType = ""

	_, err := svc.Register(context.Background(), in)
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) || !verr.Fields["userType"] || verr.Fields["name"] {
		t.Fatalf("expected userType flagged, got %v", err)
	}
}

func TestComplaintService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	svc := NewComplaintService(memory.NewComplaintStore(), nil, nil)
	res, _ := svc.Register(ctx, complaintInput())

	updated, err := svc.UpdateStatus(ctx, res.Complaint.ComplaintNumber, "resolved")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != "resolved" {
		t.Fatalf("status not updated: %+v", updated)
	}
	if _, err := svc.UpdateStatus(ctx, "C-000000", "resolved"); !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, " ", "resolved"); !apperr.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
