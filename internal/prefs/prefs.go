// Package prefs persists user preferences across restarts.
package prefs

import "context"

// Preferences holds the user-tunable flags. Zero value is not meaningful;
// use Defaults as the base.
type Preferences struct {
	RequireLock    bool `json:"requireLock"`
	HapticsEnabled bool `json:"hapticsEnabled"`
	SoundsEnabled  bool `json:"soundsEnabled"`
}

// Defaults returns the preferences applied before anything was saved.
func Defaults() Preferences {
	return Preferences{
		RequireLock:    false,
		HapticsEnabled: true,
		SoundsEnabled:  true,
	}
}

// Store reads and writes preferences.
type Store interface {
	Get(ctx context.Context) (Preferences, error)
	Set(ctx context.Context, p Preferences) error
}
