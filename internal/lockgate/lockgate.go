// Package lockgate gates access to the application behind a biometric
// challenge when the lock preference asks for one.
package lockgate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"spotcheck/internal/prefs"
)

// DefaultTimeout is how long the app may stay backgrounded before the gate
// locks again on return to foreground.
const DefaultTimeout = 60 * time.Second

// State is the gate's position.
type State int

const (
	StateUnlocked State = iota
	StateAwaitingChallenge
	StateLocked
)

func (s State) String() string {
	switch s {
	case StateUnlocked:
		return "unlocked"
	case StateAwaitingChallenge:
		return "awaiting_challenge"
	case StateLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// Modality names the kind of authentication hardware present.
type Modality string

const (
	ModalityNone        Modality = "none"
	ModalityFingerprint Modality = "fingerprint"
	ModalityFace        Modality = "face"
)

var (
	ErrChallengeFailed    = errors.New("authentication challenge failed")
	ErrChallengeCancelled = errors.New("authentication challenge cancelled")
)

// Authenticator is the biometric provider. Available must swallow provider
// errors and report absence instead; a provider that cannot even answer the
// availability query is treated as missing hardware. Challenge blocks until
// the user completes or dismisses the prompt.
type Authenticator interface {
	Available(ctx context.Context) (bool, Modality)
	Challenge(ctx context.Context) error
}

// LifecyclePhase is an app lifecycle signal.
type LifecyclePhase int

const (
	PhaseForeground LifecyclePhase = iota
	PhaseBackground
	PhaseInactive
)

func (p LifecyclePhase) String() string {
	switch p {
	case PhaseForeground:
		return "foreground"
	case PhaseBackground:
		return "background"
	case PhaseInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// LifecycleEvent reports an app state change with its timestamp.
type LifecycleEvent struct {
	Phase LifecyclePhase
	At    time.Time
}

// Option configures a Gate.
type Option func(*Gate)

func WithTimeout(d time.Duration) Option {
	return func(g *Gate) { g.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// Gate is the lock state machine. It is single-owner: only the lifecycle
// handler and the challenge outcome mutate it, both serialized by the mutex.
type Gate struct {
	auth    Authenticator
	prefs   prefs.Store
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time

	mu             sync.Mutex
	state          State
	backgroundedAt time.Time
	attempts       int
	modality       Modality
}

func New(auth Authenticator, store prefs.Store, logger *slog.Logger, opts ...Option) *Gate {
	g := &Gate{
		auth:     auth,
		prefs:    store,
		logger:   logger,
		timeout:  DefaultTimeout,
		now:      time.Now,
		state:    StateUnlocked,
		modality: ModalityNone,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Start evaluates the initial state. When the lock preference is on and
// hardware is present the gate opens with a challenge; otherwise it starts
// unlocked and never gates.
func (g *Gate) Start(ctx context.Context) State {
	if !g.shouldGate(ctx) {
		g.mu.Lock()
		g.state = StateUnlocked
		g.mu.Unlock()
		return StateUnlocked
	}

	g.mu.Lock()
	g.state = StateAwaitingChallenge
	g.mu.Unlock()
	return g.runChallenge(ctx)
}

// State returns the current gate position.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Attempts returns how many challenges have run since the gate last locked.
func (g *Gate) Attempts() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attempts
}

// Modality reports the hardware kind seen at the last gate check.
func (g *Gate) Modality() Modality {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.modality
}

// HandleLifecycle feeds an app state change into the gate. Leaving the
// foreground records the timestamp; returning clears it and locks when the
// elapsed time exceeded the timeout and gating applies.
func (g *Gate) HandleLifecycle(ctx context.Context, ev LifecycleEvent) State {
	g.mu.Lock()

	switch ev.Phase {
	case PhaseBackground, PhaseInactive:
		if g.backgroundedAt.IsZero() {
			g.backgroundedAt = ev.At
		}
		state := g.state
		g.mu.Unlock()
		return state

	case PhaseForeground:
		wentAway := g.backgroundedAt
		g.backgroundedAt = time.Time{}
		if g.state != StateUnlocked || wentAway.IsZero() {
			state := g.state
			g.mu.Unlock()
			return state
		}
		elapsed := ev.At.Sub(wentAway)
		if elapsed <= g.timeout {
			g.mu.Unlock()
			return StateUnlocked
		}
		g.mu.Unlock()

		if !g.shouldGate(ctx) {
			return StateUnlocked
		}

		g.logger.InfoContext(ctx, "Gate locked after background timeout",
			"elapsed", elapsed,
			"timeout", g.timeout)

		g.mu.Lock()
		g.state = StateAwaitingChallenge
		g.attempts = 0
		g.mu.Unlock()
		return g.runChallenge(ctx)

	default:
		state := g.state
		g.mu.Unlock()
		return state
	}
}

// Retry moves a locked gate back into a challenge.
func (g *Gate) Retry(ctx context.Context) State {
	g.mu.Lock()
	if g.state != StateLocked {
		state := g.state
		g.mu.Unlock()
		return state
	}
	g.state = StateAwaitingChallenge
	g.mu.Unlock()
	return g.runChallenge(ctx)
}

// SetRequireLock writes the lock preference. Turning it off unlocks the gate
// immediately, no challenge required.
func (g *Gate) SetRequireLock(ctx context.Context, enabled bool) error {
	p, err := g.prefs.Get(ctx)
	if err != nil {
		return err
	}
	p.RequireLock = enabled
	if err := g.prefs.Set(ctx, p); err != nil {
		return err
	}

	if !enabled {
		g.mu.Lock()
		if g.state != StateUnlocked {
			g.logger.InfoContext(ctx, "Gate unlocked by preference change")
			g.state = StateUnlocked
			g.attempts = 0
		}
		g.mu.Unlock()
	}
	return nil
}

// shouldGate reports whether locking applies right now: preference on and
// hardware present. Preference read errors fall back to defaults, so a
// broken preferences store never locks anyone out.
func (g *Gate) shouldGate(ctx context.Context) bool {
	p, err := g.prefs.Get(ctx)
	if err != nil {
		g.logger.WarnContext(ctx, "Failed to read preferences, gate stays open", "error", err)
		p = prefs.Defaults()
	}
	if !p.RequireLock {
		return false
	}

	available, modality := g.auth.Available(ctx)
	g.mu.Lock()
	g.modality = modality
	g.mu.Unlock()
	if !available {
		g.logger.InfoContext(ctx, "No authentication hardware, gate stays open")
		return false
	}
	return true
}

// runChallenge drives one authentication attempt. The provider call runs
// without the mutex held; if the gate was unlocked meanwhile (preference
// toggle) the outcome is discarded.
func (g *Gate) runChallenge(ctx context.Context) State {
	g.mu.Lock()
	g.attempts++
	attempt := g.attempts
	g.mu.Unlock()

	err := g.auth.Challenge(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateAwaitingChallenge {
		return g.state
	}

	if err != nil {
		switch {
		case errors.Is(err, ErrChallengeCancelled):
			g.logger.InfoContext(ctx, "Challenge cancelled", "attempt", attempt)
		case errors.Is(err, ErrChallengeFailed):
			g.logger.InfoContext(ctx, "Challenge failed", "attempt", attempt)
		default:
			// Provider errors never unlock.
			g.logger.ErrorContext(ctx, "Challenge provider error", "attempt", attempt, "error", err)
		}
		g.state = StateLocked
		return StateLocked
	}

	g.logger.InfoContext(ctx, "Challenge succeeded", "attempt", attempt)
	g.state = StateUnlocked
	g.attempts = 0
	return StateUnlocked
}
