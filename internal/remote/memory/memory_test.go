package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"spotcheck/internal/core"
	"spotcheck/internal/remote"
)

func date(s string) core.Date {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return core.Date{Time: t}
}

func TestCreateAssignsServerFields(t *testing.T) {
	fixed := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	store := NewWithClock(func() time.Time { return fixed })

	created, err := store.Create(context.Background(), core.Item{
		OwnerID:       "owner-1",
		Title:         "Home Insurance",
		Category:      core.CategoryInsurance,
		RenewalStatus: core.StatusActive,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if created.ID == "" {
		t.Error("Create() should assign an id")
	}
	if !created.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", created.CreatedAt, fixed)
	}
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	store := New()

	_, err := store.Create(context.Background(), core.Item{OwnerID: "owner-1"})
	var storeErr *remote.StoreError
	if !errors.As(err, &storeErr) || storeErr.Code != remote.CodeRejected {
		t.Errorf("err = %v, want StoreError with code rejected", err)
	}
}

func TestListByOwnerScopesAndSorts(t *testing.T) {
	store := New()
	store.Seed([]core.Item{
		{ID: "late", OwnerID: "owner-1", Title: "A", Category: core.CategoryContract, ExpiryDate: date("2026-06-01"), RenewalStatus: core.StatusActive},
		{ID: "none", OwnerID: "owner-1", Title: "B", Category: core.CategoryWarranty, RenewalStatus: core.StatusActive},
		{ID: "soon", OwnerID: "owner-1", Title: "C", Category: core.CategoryInsurance, ExpiryDate: date("2025-10-01"), RenewalStatus: core.StatusActive},
		{ID: "other", OwnerID: "owner-2", Title: "D", Category: core.CategoryInsurance, RenewalStatus: core.StatusActive},
	})

	items, err := store.ListByOwner(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("ListByOwner() failed: %v", err)
	}

	var got []string
	for _, it := range items {
		got = append(got, it.ID)
	}
	want := []string{"soon", "late", "none"}
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
}

func TestDeleteUnknownItem(t *testing.T) {
	store := New()

	err := store.Delete(context.Background(), "owner-1", "missing")
	if !errors.Is(err, remote.ErrNotFound) {
		t.Errorf("Delete() = %v, want ErrNotFound", err)
	}
}

func TestFailNextClearsAfterOneCall(t *testing.T) {
	store := New()
	injected := errors.New("connection refused")
	store.FailNext("list", injected)

	_, err := store.ListByOwner(context.Background(), "owner-1")
	if !errors.Is(err, injected) {
		t.Errorf("first call err = %v, want injected failure", err)
	}
	if _, err := store.ListByOwner(context.Background(), "owner-1"); err != nil {
		t.Errorf("second call err = %v, want nil", err)
	}
}
