package memory

import (
	"context"
	"fmt"
	"sync"

	"spotcheck/internal/calendar"
)

// Store is an in-memory ReminderWriter used in tests and local runs.
type Store struct {
	mu        sync.Mutex
	reminders map[string]calendar.Reminder
	writes    int
	failNext  error
}

func New() *Store {
	return &Store{reminders: make(map[string]calendar.Reminder)}
}

// Upsert stores the reminder and returns a synthetic event reference.
func (s *Store) Upsert(_ context.Context, r calendar.Reminder) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failNext; err != nil {
		s.failNext = nil
		return "", err
	}
	s.reminders[r.ItemID] = r
	s.writes++
	return fmt.Sprintf("mem:%d", s.writes), nil
}

func (s *Store) Remove(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failNext; err != nil {
		s.failNext = nil
		return err
	}
	delete(s.reminders, itemID)
	return nil
}

// Get returns the stored reminder for an item, if any.
func (s *Store) Get(itemID string) (calendar.Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[itemID]
	return r, ok
}

// Count returns how many reminders are currently stored.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reminders)
}

// FailNext makes the next write or remove fail with err.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}
