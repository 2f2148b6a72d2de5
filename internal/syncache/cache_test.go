package syncache

import (
	"context"
	"errors"
	"testing"
	"time"

	"spotcheck/internal/core"
	"spotcheck/internal/remote"
	"spotcheck/internal/remote/memory"
)

const owner = "owner-1"

func seedItems() []core.Item {
	return []core.Item{
		{
			ID:            "aaaa-1",
			OwnerID:       owner,
			Title:         "Car insurance",
			Category:      core.CategoryInsurance,
			ExpiryDate:    core.NewDate(2025, 10, 1),
			RenewalStatus: core.StatusActive,
			CreatedAt:     time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "bbbb-2",
			OwnerID:       owner,
			Title:         "Phone contract",
			Category:      core.CategoryContract,
			ExpiryDate:    core.NewDate(2025, 11, 15),
			RenewalStatus: core.StatusActive,
			CreatedAt:     time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "cccc-3",
			OwnerID:       owner,
			Title:         "Boiler warranty",
			Category:      core.CategoryWarranty,
			RenewalStatus: core.StatusActive,
			CreatedAt:     time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC),
		},
	}
}

func newSeededCache(t *testing.T, opts ...Option) (*Cache, *memory.Store) {
	t.Helper()
	store := memory.New()
	store.Seed(seedItems())
	cache := New(store, owner, opts...)
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	return cache, store
}

func ids(items []core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func netflixDraft() core.Item {
	cost := core.Money{Cents: 1599}
	return core.Item{
		Title:         "Netflix",
		Category:      core.CategorySubscription,
		MonthlyCost:   &cost,
		RenewalStatus: core.StatusActive,
	}
}

func TestAddReplacesTempID(t *testing.T) {
	cache, _ := newSeededCache(t)
	ctx := context.Background()

	optimistic, result := cache.Add(ctx, netflixDraft())

	if !core.IsTempID(optimistic.ID) {
		t.Fatalf("optimistic item id %q should be temporary", optimistic.ID)
	}

	// The UI sees the addition before the remote call settles.
	found := false
	for _, it := range cache.List(ctx) {
		if it.ID == optimistic.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("optimistic item not visible in cached collection")
	}

	res := <-result
	if res.Err != nil {
		t.Fatalf("Add settled with error: %v", res.Err)
	}
	if core.IsTempID(res.Item.ID) {
		t.Errorf("confirmed item still carries temp id %q", res.Item.ID)
	}
	if res.Item.Title != "Netflix" || res.Item.Category != core.CategorySubscription {
		t.Errorf("confirmed item fields do not match submission: %+v", res.Item)
	}
	if res.Item.MonthlyCost == nil || res.Item.MonthlyCost.Cents != 1599 {
		t.Errorf("confirmed item cost = %+v, want 1599 cents", res.Item.MonthlyCost)
	}

	cache.wait()
	for _, it := range cache.List(ctx) {
		if core.IsTempID(it.ID) {
			t.Errorf("cached collection still contains temp id %q", it.ID)
		}
	}
}

func TestAddRollbackRestoresSnapshot(t *testing.T) {
	cache, store := newSeededCache(t)
	ctx := context.Background()

	before := ids(cache.List(ctx))
	store.FailNext("create", errors.New("network down"))

	optimistic, result := cache.Add(ctx, netflixDraft())

	// Visible immediately, then gone after the rollback.
	if got := len(cache.List(ctx)); got != len(before)+1 {
		t.Fatalf("collection size during mutation = %d, want %d", got, len(before)+1)
	}

	res := <-result
	var mutErr *MutationError
	if !errors.As(res.Err, &mutErr) || mutErr.Op != "add" {
		t.Fatalf("Add settled with %v, want *MutationError{Op: add}", res.Err)
	}

	cache.wait()
	after := ids(cache.List(ctx))
	if !sameIDs(before, after) {
		t.Errorf("rollback mismatch: before %v, after %v", before, after)
	}
	for _, id := range after {
		if id == optimistic.ID {
			t.Error("optimistic item survived rollback")
		}
	}
	if cache.Err() == nil {
		t.Error("Err() should surface the settled failure")
	}
}

func TestRemoveCommits(t *testing.T) {
	cache, _ := newSeededCache(t)
	ctx := context.Background()

	result := cache.Remove(ctx, "bbbb-2")

	for _, it := range cache.List(ctx) {
		if it.ID == "bbbb-2" {
			t.Fatal("removed item still visible in cached collection")
		}
	}

	if err := <-result; err != nil {
		t.Fatalf("Remove settled with error: %v", err)
	}

	cache.wait()
	if got := len(cache.List(ctx)); got != 2 {
		t.Errorf("collection size = %d, want 2", got)
	}
}

func TestRemoveRollbackRestoresPosition(t *testing.T) {
	cache, store := newSeededCache(t)
	ctx := context.Background()

	store.FailNext("delete", errors.New("network down"))
	result := cache.Remove(ctx, "bbbb-2")

	var mutErr *MutationError
	if err := <-result; !errors.As(err, &mutErr) || mutErr.Op != "remove" {
		t.Fatalf("Remove settled with %v, want *MutationError{Op: remove}", err)
	}

	cache.wait()
	after := ids(cache.List(ctx))
	want := []string{"aaaa-1", "bbbb-2", "cccc-3"}
	if !sameIDs(after, want) {
		t.Errorf("rollback order = %v, want %v", after, want)
	}
}

func TestRemoveUnknownID(t *testing.T) {
	cache, _ := newSeededCache(t)

	err := <-cache.Remove(context.Background(), "missing")
	if err == nil {
		t.Fatal("Remove of unknown id should fail")
	}
	if !errors.Is(err, remote.ErrNotFound) {
		t.Errorf("Remove error = %v, want wrapping ErrNotFound", err)
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	cache, _ := newSeededCache(t)
	ctx := context.Background()

	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("first Refresh failed: %v", err)
	}
	first := ids(cache.List(ctx))

	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("second Refresh failed: %v", err)
	}
	second := ids(cache.List(ctx))

	if !sameIDs(first, second) {
		t.Errorf("refresh not idempotent: %v then %v", first, second)
	}

	// Items without an expiry date sort last.
	if first[len(first)-1] != "cccc-3" {
		t.Errorf("no-expiry item should sort last, got order %v", first)
	}
}

func TestListTriggersRefreshWhenStale(t *testing.T) {
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := memory.New()
	store.Seed(seedItems())
	cache := New(store, owner, WithClock(clock))

	// Empty cache: first List returns nothing but starts a fetch.
	if got := cache.List(context.Background()); len(got) != 0 {
		t.Fatalf("cold cache returned %d items, want 0", len(got))
	}
	cache.wait()

	if got := cache.List(context.Background()); len(got) != 3 {
		t.Fatalf("after background refresh got %d items, want 3", len(got))
	}
	cache.wait()

	// Within the staleness window nothing new is fetched even if the
	// server state changed.
	store.Seed(nil)
	now = now.Add(4 * time.Minute)
	if got := cache.List(context.Background()); len(got) != 3 {
		t.Fatalf("fresh cache re-fetched: got %d items, want 3", len(got))
	}
	cache.wait()

	// Past the window the next List picks up the new server state.
	now = now.Add(2 * time.Minute)
	cache.List(context.Background())
	cache.wait()
	if got := cache.List(context.Background()); len(got) != 0 {
		t.Errorf("stale cache not refreshed: got %d items, want 0", len(got))
	}
	cache.wait()
}

// blockingStore wraps the memory store and parks ListByOwner until released,
// so tests can interleave a fetch with optimistic mutations.
type blockingStore struct {
	*memory.Store
	release chan struct{}
}

func (s *blockingStore) ListByOwner(ctx context.Context, ownerID string) ([]core.Item, error) {
	// Snapshot first, then park: the caller receives data that is stale by
	// the time it is delivered.
	items, err := s.Store.ListByOwner(ctx, ownerID)
	<-s.release
	return items, err
}

func TestBackgroundRefreshNeverClobbersMutations(t *testing.T) {
	inner := memory.New()
	inner.Seed(seedItems())
	store := &blockingStore{Store: inner, release: make(chan struct{})}

	cache := New(store, owner)
	ctx := context.Background()

	// Cold List starts a fetch that stays parked.
	cache.List(ctx)

	// An add settles while the fetch is still in flight.
	_, result := cache.Add(ctx, netflixDraft())
	res := <-result
	if res.Err != nil {
		t.Fatalf("Add settled with error: %v", res.Err)
	}

	close(store.release)
	cache.wait()

	// The stale fetch result must not have overwritten the confirmed add.
	found := false
	for _, it := range cache.List(ctx) {
		if it.ID == res.Item.ID {
			found = true
		}
	}
	if !found {
		t.Error("background refresh clobbered a settled mutation")
	}
	cache.wait()
}

// erroringStore fails deletes for specific item ids, letting overlapping
// mutations settle in either order with deterministic outcomes.
type erroringStore struct {
	*memory.Store
	failIDs map[string]error
}

func (s *erroringStore) Delete(ctx context.Context, ownerID, itemID string) error {
	if err, ok := s.failIDs[itemID]; ok {
		return remote.NewError("delete", remote.CodeNetwork, err)
	}
	return s.Store.Delete(ctx, ownerID, itemID)
}

func TestOverlappingMutationsRollBackIndependently(t *testing.T) {
	inner := memory.New()
	inner.Seed(seedItems())
	store := &erroringStore{
		Store:   inner,
		failIDs: map[string]error{"aaaa-1": errors.New("network down")},
	}

	cache := New(store, owner)
	ctx := context.Background()
	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}

	resA := cache.Remove(ctx, "aaaa-1") // will fail and roll back
	resB := cache.Remove(ctx, "bbbb-2") // will commit

	if err := <-resB; err != nil {
		t.Fatalf("Remove(bbbb-2) settled with error: %v", err)
	}
	if err := <-resA; err == nil {
		t.Fatal("Remove(aaaa-1) should have failed")
	}

	cache.wait()
	after := ids(cache.List(ctx))
	want := []string{"aaaa-1", "cccc-3"}
	if !sameIDs(after, want) {
		t.Errorf("after overlapping mutations got %v, want %v", after, want)
	}
}
