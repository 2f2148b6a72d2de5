package calendar

import (
	"context"
	"time"

	"spotcheck/internal/core"
)

// Reminder is a renewal reminder to be placed on the user's calendar.
type Reminder struct {
	ItemID   string
	Title    string
	Due      core.Date // when the item expires
	RemindAt time.Time // when the calendar entry fires
	Notes    string
}

// Ports for outbound adapters.
type (
	// ReminderWriter places renewal reminders on a calendar. Upsert is keyed
	// by ItemID: writing the same item twice updates the existing entry.
	ReminderWriter interface {
		Upsert(ctx context.Context, r Reminder) (eventRef string, err error)
		Remove(ctx context.Context, itemID string) error
	}
)
