package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps preferences in a JSON file. Saves go through a temp file
// and rename so a crash mid-write never leaves a truncated file behind.
type FileStore struct {
	path string

	mu      sync.Mutex
	loaded  bool
	current Preferences
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get returns the stored preferences, merged over Defaults so keys added
// after a file was written still pick up their default value.
func (s *FileStore) Get(ctx context.Context) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.current, nil
	}

	p := Defaults()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.current = p
			s.loaded = true
			return p, nil
		}
		return Defaults(), fmt.Errorf("reading preferences file: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Defaults(), fmt.Errorf("parsing preferences file: %w", err)
	}

	s.current = p
	s.loaded = true
	return p, nil
}

// Set writes p to disk. The in-memory value only changes after the write
// succeeds, so a failed save leaves the previous preferences in effect.
func (s *FileStore) Set(ctx context.Context, p Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing preferences file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing preferences file: %w", err)
	}

	s.current = p
	s.loaded = true
	return nil
}
