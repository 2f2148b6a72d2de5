// Package syncache maintains the owner-scoped, client-side view of tracked
// items. Mutations apply optimistically so the UI reflects them with zero
// latency; the remote store settles each mutation in the background and a
// failure restores the snapshot taken when the mutation started.
package syncache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"spotcheck/internal/core"
	"spotcheck/internal/remote"
)

// DefaultStaleAfter is how long a successful fetch stays fresh before List
// triggers an advisory background refresh.
const DefaultStaleAfter = 5 * time.Minute

// MutationError reports a settled mutation that was rolled back. Callers
// receive it on the mutation's result channel, never as a panic.
type MutationError struct {
	Op  string // "add" or "remove"
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s mutation failed: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// AddResult is delivered exactly once per Add: either the server-confirmed
// item or the rollback error.
type AddResult struct {
	Item core.Item
	Err  error
}

type Option func(*Cache)

// WithStaleAfter overrides the staleness window used by List.
func WithStaleAfter(d time.Duration) Option {
	return func(c *Cache) { c.staleAfter = d }
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache is the optimistic sync cache for a single owner session. The cached
// collection is owned exclusively by this instance; the UI reads through
// List/Items and mutates only through Add, Remove and Refresh.
type Cache struct {
	store      remote.ItemStore
	ownerID    string
	staleAfter time.Duration
	now        func() time.Time

	mu        sync.Mutex
	items     []core.Item
	loaded    bool
	lastFetch time.Time
	loading   bool
	pending   int    // optimistic mutations not yet settled
	version   uint64 // bumped on every collection change
	lastErr   error

	wg sync.WaitGroup
}

func New(store remote.ItemStore, ownerID string, opts ...Option) *Cache {
	c := &Cache{
		store:      store,
		ownerID:    ownerID,
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns the current cached collection immediately, never blocking on
// the network. When the cache is empty or stale it kicks an advisory
// background refresh whose result is discarded if any optimistic mutation
// starts or settles while the fetch is in flight.
func (c *Cache) List(ctx context.Context) []core.Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	stale := !c.loaded || c.now().Sub(c.lastFetch) > c.staleAfter
	if stale && !c.loading {
		c.loading = true
		startVersion := c.version
		c.wg.Add(1)
		go c.backgroundRefresh(ctx, startVersion)
	}

	return append([]core.Item(nil), c.items...)
}

// Loading reports whether a background fetch is in flight.
func (c *Cache) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the most recent settled failure, or nil. It is cleared by the
// next successful fetch or mutation.
func (c *Cache) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Add inserts an optimistic copy of draft with a temporary id and dispatches
// the create in the background. The returned item is the optimistic one; the
// channel settles exactly once with the confirmed item or the rollback error.
func (c *Cache) Add(ctx context.Context, draft core.Item) (core.Item, <-chan AddResult) {
	draft.OwnerID = c.ownerID

	optimistic := draft
	optimistic.ID = core.TempIDPrefix + uuid.NewString()
	optimistic.CreatedAt = c.now()

	c.mu.Lock()
	snapshot := append([]core.Item(nil), c.items...)
	snapVersion := c.version
	c.items = append(c.items, optimistic)
	c.version++
	c.pending++
	c.mu.Unlock()

	ch := make(chan AddResult, 1)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		stored, err := c.store.Create(ctx, draft)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.pending--

		if err != nil {
			c.rollback(snapshot, snapVersion, func(items []core.Item) []core.Item {
				return removeByID(items, optimistic.ID)
			})
			mutErr := &MutationError{Op: "add", Err: err}
			c.lastErr = mutErr
			slog.WarnContext(ctx, "Add rolled back",
				"owner_id", c.ownerID,
				"temp_id", optimistic.ID,
				"error", err)
			ch <- AddResult{Err: mutErr}
			return
		}

		// Replace the temporary item in place, matched by its temp id.
		for i := range c.items {
			if c.items[i].ID == optimistic.ID {
				c.items[i] = stored
				break
			}
		}
		c.version++
		c.lastErr = nil
		ch <- AddResult{Item: stored}
	}()

	return optimistic, ch
}

// Remove deletes the item optimistically and dispatches the remote delete.
// The channel settles exactly once: nil on commit, a MutationError after a
// rollback that restored the item in its original relative position.
func (c *Cache) Remove(ctx context.Context, itemID string) <-chan error {
	ch := make(chan error, 1)

	c.mu.Lock()
	idx := -1
	for i := range c.items {
		if c.items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		ch <- &MutationError{Op: "remove", Err: remote.ErrNotFound}
		return ch
	}

	snapshot := append([]core.Item(nil), c.items...)
	snapVersion := c.version
	removed := c.items[idx]
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	c.version++
	c.pending++
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		err := c.store.Delete(ctx, c.ownerID, itemID)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.pending--

		if err != nil {
			c.rollback(snapshot, snapVersion, func(items []core.Item) []core.Item {
				return insertAt(items, removed, idx)
			})
			mutErr := &MutationError{Op: "remove", Err: err}
			c.lastErr = mutErr
			slog.WarnContext(ctx, "Remove rolled back",
				"owner_id", c.ownerID,
				"item_id", itemID,
				"error", err)
			ch <- mutErr
			return
		}

		c.lastErr = nil
		ch <- nil
	}()

	return ch
}

// Refresh forces an unconditional re-fetch, replacing the cached collection
// with the server's current state in expiry order.
func (c *Cache) Refresh(ctx context.Context) error {
	items, err := c.store.ListByOwner(ctx, c.ownerID)
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		return err
	}
	core.SortByExpiry(items)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.loaded = true
	c.lastFetch = c.now()
	c.version++
	c.lastErr = nil
	return nil
}

// rollback restores the pre-mutation state. When nothing else touched the
// collection since the mutation started, the snapshot is restored verbatim.
// Concurrent mutations each carry their own snapshot, so in that case only
// this mutation's effect is undone.
func (c *Cache) rollback(snapshot []core.Item, snapVersion uint64, undo func([]core.Item) []core.Item) {
	if c.version == snapVersion+1 {
		c.items = append([]core.Item(nil), snapshot...)
	} else {
		c.items = undo(c.items)
	}
	c.version++
}

func (c *Cache) backgroundRefresh(ctx context.Context, startVersion uint64) {
	defer c.wg.Done()

	items, err := c.store.ListByOwner(ctx, c.ownerID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		c.lastErr = err
		return
	}

	// Advisory only: never overwrite optimistic state that changed while
	// the fetch was in flight.
	if c.version != startVersion || c.pending > 0 {
		slog.DebugContext(ctx, "Discarding stale background refresh",
			"owner_id", c.ownerID)
		return
	}

	core.SortByExpiry(items)
	c.items = items
	c.loaded = true
	c.lastFetch = c.now()
	c.lastErr = nil
}

// wait blocks until all background work settles. Test helper.
func (c *Cache) wait() {
	c.wg.Wait()
}

func removeByID(items []core.Item, id string) []core.Item {
	for i := range items {
		if items[i].ID == id {
			return append(items[:i], items[i+1:]...)
		}
	}
	return items
}

func insertAt(items []core.Item, item core.Item, idx int) []core.Item {
	if idx > len(items) {
		idx = len(items)
	}
	items = append(items, core.Item{})
	copy(items[idx+1:], items[idx:])
	items[idx] = item
	return items
}
