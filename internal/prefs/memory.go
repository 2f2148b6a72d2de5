package prefs

import (
	"context"
	"sync"
)

// Memory is an in-memory Store for tests.
type Memory struct {
	mu      sync.Mutex
	current Preferences
	getErr  error
	setErr  error
}

func NewMemory() *Memory {
	return &Memory{current: Defaults()}
}

func (m *Memory) Get(ctx context.Context) (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return Defaults(), m.getErr
	}
	return m.current, nil
}

func (m *Memory) Set(ctx context.Context, p Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.current = p
	return nil
}

// FailGet makes every subsequent Get return err. Pass nil to clear.
func (m *Memory) FailGet(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

// FailSet makes every subsequent Set return err. Pass nil to clear.
func (m *Memory) FailSet(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}
