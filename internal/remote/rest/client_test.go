package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"spotcheck/internal/core"
	"spotcheck/internal/remote"
)

func TestListByOwner(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/items" {
			t.Errorf("path = %q, want /rest/v1/items", r.URL.Path)
		}
		if got := r.URL.Query().Get("owner_id"); got != "eq.owner-1" {
			t.Errorf("owner_id filter = %q, want eq.owner-1", got)
		}
		if got := r.URL.Query().Get("order"); got != "expiry_date.asc.nullslast,created_at.asc" {
			t.Errorf("order = %q", got)
		}
		if got := r.Header.Get("apikey"); got != "key" {
			t.Errorf("apikey header = %q, want key", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization header = %q", got)
		}

		expiry := "2026-03-01"
		json.NewEncoder(w).Encode([]itemRecord{
			{
				ID:            "item-1",
				OwnerID:       "owner-1",
				Title:         "Car Tax",
				Category:      "gov",
				ExpiryDate:    &expiry,
				RenewalStatus: core.StatusActive,
				CreatedAt:     "2025-08-01T10:00:00Z",
			},
		})
	}))
	defer server.Close()

	items, err := New(server.URL, "key", "tok").ListByOwner(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("ListByOwner() failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Category != core.CategoryVehicle {
		t.Errorf("category = %q, want vehicle (wire alias gov)", items[0].Category)
	}
	if items[0].ExpiryDate.Format("2006-01-02") != "2026-03-01" {
		t.Errorf("expiry = %v", items[0].ExpiryDate)
	}
}

func TestCreateReturnsServerItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation" {
			t.Errorf("Prefer header = %q", got)
		}

		var rec itemRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if rec.Category != "sub" {
			t.Errorf("wire category = %q, want sub", rec.Category)
		}
		if rec.ID != "" {
			t.Errorf("draft id should not be sent, got %q", rec.ID)
		}

		rec.ID = "server-id-1"
		rec.CreatedAt = "2025-08-15T09:30:00Z"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]itemRecord{rec})
	}))
	defer server.Close()

	cost := core.Money{Cents: 1599}
	created, err := New(server.URL, "key", "tok").Create(context.Background(), core.Item{
		OwnerID:       "owner-1",
		Title:         "Netflix",
		Category:      core.CategorySubscription,
		MonthlyCost:   &cost,
		RenewalStatus: core.StatusActive,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if created.ID != "server-id-1" {
		t.Errorf("created.ID = %q, want server-id-1", created.ID)
	}
	if created.CreatedAt.IsZero() {
		t.Error("created.CreatedAt should come from the server")
	}
	if created.MonthlyCost == nil || created.MonthlyCost.Cents != 1599 {
		t.Errorf("created.MonthlyCost = %+v, want 1599 cents", created.MonthlyCost)
	}
}

func TestCreateRejectsInvalidDraft(t *testing.T) {
	// No server: validation must fail before any request is made.
	client := New("http://localhost:1", "key", "tok")

	_, err := client.Create(context.Background(), core.Item{OwnerID: "owner-1"})
	if err == nil {
		t.Fatal("Create() with empty title should fail")
	}
	var storeErr *remote.StoreError
	if !errors.As(err, &storeErr) || storeErr.Code != remote.CodeRejected {
		t.Errorf("err = %v, want StoreError with code rejected", err)
	}
}

func TestDeleteNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Filter matched nothing
		json.NewEncoder(w).Encode([]itemRecord{})
	}))
	defer server.Close()

	err := New(server.URL, "key", "tok").Delete(context.Background(), "owner-1", "missing")
	if !errors.Is(err, remote.ErrNotFound) {
		t.Errorf("Delete() = %v, want ErrNotFound", err)
	}
}

func TestServerErrorClassifiedAsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusForbidden)
	}))
	defer server.Close()

	_, err := New(server.URL, "key", "tok").ListByOwner(context.Background(), "owner-1")
	var storeErr *remote.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("err = %v, want *remote.StoreError", err)
	}
	if storeErr.Code != remote.CodeRejected {
		t.Errorf("code = %q, want rejected", storeErr.Code)
	}
}

func TestConnectionErrorClassifiedAsNetwork(t *testing.T) {
	// Closed server to force a transport failure
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := New(server.URL, "key", "tok").ListByOwner(context.Background(), "owner-1")
	var storeErr *remote.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("err = %v, want *remote.StoreError", err)
	}
	if storeErr.Code != remote.CodeNetwork {
		t.Errorf("code = %q, want network", storeErr.Code)
	}
}
