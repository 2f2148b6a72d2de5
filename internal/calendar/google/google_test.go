package google

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	ports "spotcheck/internal/calendar"
	"spotcheck/internal/core"
)

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	for _, key := range []string{
		"GOOGLE_SERVICE_ACCOUNT_JSON",
		"GOOGLE_SERVICE_ACCOUNT_FILE",
		"GOOGLE_APPLICATION_CREDENTIALS",
	} {
		old := os.Getenv(key)
		os.Unsetenv(key)
		defer os.Setenv(key, old)
	}

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEventStart(t *testing.T) {
	remindAt := time.Date(2025, 10, 24, 17, 45, 12, 0, time.UTC)
	got := eventStart(remindAt)

	want := time.Date(2025, 10, 24, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("eventStart() = %v, want %v", got, want)
	}
}

func TestBuildEvent(t *testing.T) {
	c := &Client{calendarID: "primary"}
	r := ports.Reminder{
		ItemID:   "item-1",
		Title:    "Car insurance",
		Due:      core.NewDate(2025, 11, 1),
		RemindAt: time.Date(2025, 10, 25, 0, 0, 0, 0, time.UTC),
		Notes:    "Shop around before renewing",
	}

	event := c.buildEvent(r)

	if event.Summary != "Renewal: Car insurance" {
		t.Errorf("summary = %q", event.Summary)
	}
	if !strings.Contains(event.Description, "Expires 1 Nov 2025") {
		t.Errorf("description missing due date: %q", event.Description)
	}
	if !strings.Contains(event.Description, "Shop around") {
		t.Errorf("description missing notes: %q", event.Description)
	}
	if event.ExtendedProperties.Private[itemIDProperty] != "item-1" {
		t.Error("item id property not set")
	}
	if event.Reminders.UseDefault {
		t.Error("event should carry explicit reminder overrides")
	}
	if len(event.Reminders.Overrides) != 2 {
		t.Fatalf("overrides = %d, want 2", len(event.Reminders.Overrides))
	}
	if event.Reminders.Overrides[1].Minutes != alarmLeadMinutes {
		t.Errorf("lead alarm = %d minutes, want %d", event.Reminders.Overrides[1].Minutes, alarmLeadMinutes)
	}
}

func TestUpsertWithoutService(t *testing.T) {
	c := &Client{calendarID: "primary"}
	_, err := c.Upsert(context.Background(), ports.Reminder{ItemID: "x", Title: "y"})
	if err == nil {
		t.Fatal("expected error when service not initialized")
	}
}
