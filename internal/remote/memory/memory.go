// Package memory provides an in-memory ItemStore used as the default
// backend and as the test double for the sync cache.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"spotcheck/internal/core"
	"spotcheck/internal/remote"
)

type Store struct {
	mu    sync.Mutex
	items []core.Item
	now   func() time.Time

	// failures maps op name to the error returned on its next call.
	failures map[string]error
}

var _ remote.ItemStore = (*Store)(nil)

func New() *Store {
	return &Store{
		now:      time.Now,
		failures: make(map[string]error),
	}
}

// NewWithClock creates a store with an injectable clock for tests.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

// Seed replaces the store contents. Items keep their ids, so tests can
// control the exact server state.
func (s *Store) Seed(items []core.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Item(nil), items...)
}

// FailNext makes the next call of op return err, then clears the injection.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) takeFailure(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

func (s *Store) ListByOwner(_ context.Context, ownerID string) ([]core.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("list"); err != nil {
		return nil, remote.NewError("list", remote.CodeNetwork, err)
	}

	var out []core.Item
	for _, it := range s.items {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	core.SortByExpiry(out)
	return out, nil
}

func (s *Store) Create(_ context.Context, draft core.Item) (core.Item, error) {
	if err := draft.Validate(); err != nil {
		return core.Item{}, remote.NewError("create", remote.CodeRejected, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("create"); err != nil {
		return core.Item{}, remote.NewError("create", remote.CodeNetwork, err)
	}

	stored := draft
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now().UTC()
	s.items = append(s.items, stored)
	return stored, nil
}

func (s *Store) Delete(_ context.Context, ownerID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("delete"); err != nil {
		return remote.NewError("delete", remote.CodeNetwork, err)
	}

	for i, it := range s.items {
		if it.ID == itemID && it.OwnerID == ownerID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return remote.NotFound("delete")
}

func (s *Store) UpdateStatus(_ context.Context, ownerID, itemID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure("update_status"); err != nil {
		return remote.NewError("update_status", remote.CodeNetwork, err)
	}

	for i, it := range s.items {
		if it.ID == itemID && it.OwnerID == ownerID {
			s.items[i].RenewalStatus = status
			return nil
		}
	}
	return remote.NotFound("update_status")
}

func (s *Store) Close() error {
	return nil
}
