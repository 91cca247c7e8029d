package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jcmexdev/storefront-api/internal/coordinator/sagalog"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "saga.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepository_SaveAndGetLatest(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	entries := []*sagalog.SagaLog{
		sagalog.NewEntry(ctx, "ORDER-1", sagalog.StatusStarted, "", `{"userId":"u1"}`, nil),
		sagalog.NewEntry(ctx, "ORDER-1", sagalog.StatusStepDone, "Create_Order_Step", "", nil),
		sagalog.NewEntry(ctx, "ORDER-1", sagalog.StatusCompleted, "", "", nil),
	}
	for _, e := range entries {
		if err := repo.Save(ctx, e); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := repo.GetLatest(ctx, "ORDER-1")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if got.Status != sagalog.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", got.Status)
	}
	if got.Payload != "" {
		t.Fatalf("expected empty payload on non-STARTED row, got %q", got.Payload)
	}
}

func TestRepository_GetLatestMissing(t *testing.T) {
	repo := openTestRepo(t)
	_, err := repo.GetLatest(context.Background(), "nope")
	if !errors.Is(err, sagalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_ListLatestByStatus(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	save := func(id string, st sagalog.Status, errs []string) {
		t.Helper()
		if err := repo.Save(ctx, sagalog.NewEntry(ctx, id, st, "", "", errs)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	save("ORDER-1", sagalog.StatusStarted, nil)
	save("ORDER-1", sagalog.StatusDegraded, []string{"step Clear_Cart_Step failed: boom"})
	save("ORDER-2", sagalog.StatusStarted, nil)
	save("ORDER-2", sagalog.StatusCompleted, nil)
	save("ORDER-3", sagalog.StatusDegraded, nil)
	save("ORDER-3", sagalog.StatusCompleted, nil)

	got, err := repo.ListLatestByStatus(ctx, sagalog.StatusDegraded)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].SagaID != "ORDER-1" {
		t.Fatalf("expected only ORDER-1, got %+v", got)
	}
	if errs := got[0].Errors(); len(errs) != 1 {
		t.Fatalf("expected one error message, got %v", errs)
	}
}
