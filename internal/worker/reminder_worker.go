package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spotcheck/internal/amqp"
	"spotcheck/internal/calendar"
	"spotcheck/internal/core"
	"spotcheck/internal/remote"
)

// ReminderWorker keeps calendar reminders in step with item events arriving
// over the bus.
type ReminderWorker struct {
	store    remote.ItemStore
	writer   calendar.ReminderWriter
	leadDays int
}

func NewReminderWorker(store remote.ItemStore, writer calendar.ReminderWriter, leadDays int) *ReminderWorker {
	return &ReminderWorker{
		store:    store,
		writer:   writer,
		leadDays: leadDays,
	}
}

// HandleItemEvent processes a single item event message from AMQP.
func (w *ReminderWorker) HandleItemEvent(ctx context.Context, msg *amqp.ItemEventMessage) error {
	slog.InfoContext(ctx, "Processing item event",
		"event", msg.Event,
		"item_id", msg.ItemID)

	if msg.Event == amqp.ItemDeleted {
		if err := w.writer.Remove(ctx, msg.ItemID); err != nil {
			return fmt.Errorf("remove reminder: %w", err)
		}
		return nil
	}

	item, err := w.findItem(ctx, msg.OwnerID, msg.ItemID)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			// Deleted between publish and delivery; drop its reminder.
			slog.WarnContext(ctx, "Item no longer exists, removing reminder", "item_id", msg.ItemID)
			return w.writer.Remove(ctx, msg.ItemID)
		}
		return fmt.Errorf("get item from store: %w", err)
	}

	return w.syncItemReminder(ctx, item)
}

// StartupSweep re-syncs every item for an owner. Useful to recover from
// missed messages or worker downtime.
func (w *ReminderWorker) StartupSweep(ctx context.Context, ownerID string) error {
	items, err := w.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list items for startup sweep: %w", err)
	}

	if len(items) == 0 {
		slog.InfoContext(ctx, "No items found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found items on startup, syncing reminders...",
		"count", len(items))

	successCount := 0
	errorCount := 0
	for _, item := range items {
		if err := w.syncItemReminder(ctx, item); err != nil {
			slog.ErrorContext(ctx, "Failed to sync reminder during startup",
				"item_id", item.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sweep completed",
		"total", len(items),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

// syncItemReminder writes or removes the calendar entry for one item.
func (w *ReminderWorker) syncItemReminder(ctx context.Context, item core.Item) error {
	if item.RenewalStatus != core.StatusActive {
		if err := w.writer.Remove(ctx, item.ID); err != nil {
			return fmt.Errorf("remove reminder for inactive item: %w", err)
		}
		return nil
	}

	remindAt, ok := w.remindTime(item)
	if !ok || remindAt.Before(time.Now()) {
		return nil
	}

	ref, err := w.writer.Upsert(ctx, calendar.Reminder{
		ItemID:   item.ID,
		Title:    item.Title,
		Due:      item.ExpiryDate,
		RemindAt: remindAt,
	})
	if err != nil {
		return fmt.Errorf("write reminder: %w", err)
	}

	slog.InfoContext(ctx, "Synced calendar reminder",
		"item_id", item.ID,
		"title", item.Title,
		"event_ref", ref)
	return nil
}

func (w *ReminderWorker) remindTime(item core.Item) (time.Time, bool) {
	if !item.ReminderDate.IsEmpty() {
		return item.ReminderDate.Time, true
	}
	if !item.ExpiryDate.IsEmpty() {
		return item.ExpiryDate.AddDate(0, 0, -w.leadDays), true
	}
	return time.Time{}, false
}

// findItem looks an item up through the owner listing; the store port has no
// point lookup.
func (w *ReminderWorker) findItem(ctx context.Context, ownerID, itemID string) (core.Item, error) {
	items, err := w.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return core.Item{}, err
	}
	for _, item := range items {
		if item.ID == itemID {
			return item, nil
		}
	}
	return core.Item{}, remote.NotFound("find")
}
