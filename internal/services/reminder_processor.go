package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"spotcheck/internal/calendar"
	"spotcheck/internal/core"
	"spotcheck/internal/remote"
)

// ReminderProcessorConfig holds configuration for the reminder processor.
type ReminderProcessorConfig struct {
	// OwnerID scopes which items get calendar reminders.
	OwnerID string

	// Interval is how often to sweep the item list (default: 1h).
	Interval time.Duration

	// LeadDays is how many days before expiry the reminder fires when an
	// item carries no explicit reminder date (default: 7).
	LeadDays int
}

// DefaultReminderProcessorConfig returns sensible defaults.
func DefaultReminderProcessorConfig(ownerID string) ReminderProcessorConfig {
	return ReminderProcessorConfig{
		OwnerID:  ownerID,
		Interval: time.Hour,
		LeadDays: 7,
	}
}

// ReminderProcessor keeps the user's calendar in step with their items:
// active items with an upcoming expiry get a reminder event, cancelled items
// lose theirs.
type ReminderProcessor struct {
	store  remote.ItemStore
	writer calendar.ReminderWriter
	config ReminderProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewReminderProcessor(store remote.ItemStore, writer calendar.ReminderWriter, config ReminderProcessorConfig) *ReminderProcessor {
	return &ReminderProcessor{
		store:  store,
		writer: writer,
		config: config,
	}
}

// Start begins the sweep loop. Returns an error if already running.
func (p *ReminderProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("reminder processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Reminder processor started",
		"interval", p.config.Interval,
		"lead_days", p.config.LeadDays)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *ReminderProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Reminder processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Reminder processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running.
func (p *ReminderProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ReminderProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Sweep immediately on startup
	if _, err := p.ProcessReminders(ctx, time.Now()); err != nil {
		slog.ErrorContext(ctx, "Reminder sweep failed", "error", err)
	}

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.ProcessReminders(ctx, time.Now()); err != nil {
				slog.ErrorContext(ctx, "Reminder sweep failed", "error", err)
			}
		}
	}
}

// ProcessReminders runs one sweep: every active item with a known, unexpired
// expiry date gets its calendar reminder written (Upsert is idempotent), and
// items no longer active get theirs removed. Returns the number of reminders
// written.
func (p *ReminderProcessor) ProcessReminders(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.writer == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	items, err := p.store.ListByOwner(ctx, p.config.OwnerID)
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}

	written := 0
	for _, item := range items {
		select {
		case <-p.stopCh:
			return written, nil
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		if item.RenewalStatus != core.StatusActive {
			if err := p.writer.Remove(ctx, item.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to remove reminder",
					"item_id", item.ID, "error", err)
			}
			continue
		}

		remindAt, ok := p.remindTime(item)
		if !ok || remindAt.Before(now) {
			continue
		}

		reminder := calendar.Reminder{
			ItemID:   item.ID,
			Title:    item.Title,
			Due:      item.ExpiryDate,
			RemindAt: remindAt,
			Notes:    reminderNotes(item, now),
		}

		ref, err := p.writer.Upsert(ctx, reminder)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to write reminder",
				"item_id", item.ID, "error", err)
			continue
		}

		written++
		slog.InfoContext(ctx, "Wrote calendar reminder",
			"item_id", item.ID,
			"title", item.Title,
			"remind_at", remindAt.Format("2006-01-02"),
			"event_ref", ref)
	}

	slog.InfoContext(ctx, "Reminder sweep complete",
		"written", written,
		"total_checked", len(items))

	return written, nil
}

// remindTime picks when the reminder should fire: the item's explicit
// reminder date when set, otherwise lead days before expiry.
func (p *ReminderProcessor) remindTime(item core.Item) (time.Time, bool) {
	if !item.ReminderDate.IsEmpty() {
		return item.ReminderDate.Time, true
	}
	if !item.ExpiryDate.IsEmpty() {
		return item.ExpiryDate.AddDate(0, 0, -p.config.LeadDays), true
	}
	return time.Time{}, false
}

func reminderNotes(item core.Item, now time.Time) string {
	switch ClassifyItem(item, now) {
	case UrgencyCritical:
		return "Renewal is close. Decide now whether to renew or cancel."
	case UrgencyUpcoming:
		return "Renewal coming up. Worth comparing alternatives."
	default:
		return ""
	}
}
