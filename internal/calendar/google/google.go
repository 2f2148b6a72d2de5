package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	ports "spotcheck/internal/calendar"

	gcal "google.golang.org/api/calendar/v3"
	goption "google.golang.org/api/option"
)

// Reminders fire at 9am local time on the reminder date, with a second alarm
// one day ahead.
const (
	eventHour        = 9
	alarmLeadMinutes = 24 * 60
	itemIDProperty   = "spotcheck_item_id"
)

type Client struct {
	svc        *gcal.Service
	calendarID string
}

// Ensure interface conformance
var _ ports.ReminderWriter = (*Client)(nil)

// NewFromEnv creates a Calendar client using environment variables.
// Optional: GOOGLE_CALENDAR_ID (default "primary").
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	calendarID := strings.TrimSpace(os.Getenv("GOOGLE_CALENDAR_ID"))
	if calendarID == "" {
		calendarID = "primary"
	}

	svc, err := newCalendarService(ctx)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}

	return &Client{svc: svc, calendarID: calendarID}, nil
}

// newCalendarService initializes a Calendar Service using Service Account
// credentials.
func newCalendarService(ctx context.Context) (*gcal.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gcal.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gcal.CalendarEventsScope))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return service, nil
}

// Upsert writes the reminder as a calendar event. Events carry the item id in
// a private extended property so a second write for the same item updates the
// existing event instead of duplicating it.
func (c *Client) Upsert(ctx context.Context, r ports.Reminder) (string, error) {
	if c.svc == nil {
		return "", errors.New("calendar service not initialized")
	}
	if r.ItemID == "" {
		return "", errors.New("reminder missing item id")
	}

	event := c.buildEvent(r)

	existing, err := c.findEvent(ctx, r.ItemID)
	if err != nil {
		return "", err
	}

	if existing != nil {
		updated, err := c.svc.Events.Update(c.calendarID, existing.Id, event).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("update event for item %s: %w", r.ItemID, err)
		}
		slog.InfoContext(ctx, "Updated calendar reminder",
			"item_id", r.ItemID,
			"event_id", updated.Id)
		return updated.Id, nil
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event for item %s: %w", r.ItemID, err)
	}
	slog.InfoContext(ctx, "Created calendar reminder",
		"item_id", r.ItemID,
		"event_id", created.Id,
		"remind_at", r.RemindAt.Format("2006-01-02"))
	return created.Id, nil
}

// Remove deletes the calendar event for an item, if one exists.
func (c *Client) Remove(ctx context.Context, itemID string) error {
	if c.svc == nil {
		return errors.New("calendar service not initialized")
	}

	existing, err := c.findEvent(ctx, itemID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	if err := c.svc.Events.Delete(c.calendarID, existing.Id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete event for item %s: %w", itemID, err)
	}
	slog.InfoContext(ctx, "Removed calendar reminder", "item_id", itemID, "event_id", existing.Id)
	return nil
}

func (c *Client) findEvent(ctx context.Context, itemID string) (*gcal.Event, error) {
	list, err := c.svc.Events.List(c.calendarID).
		PrivateExtendedProperty(itemIDProperty + "=" + itemID).
		MaxResults(1).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("find event for item %s: %w", itemID, err)
	}
	if len(list.Items) == 0 {
		return nil, nil
	}
	return list.Items[0], nil
}

func (c *Client) buildEvent(r ports.Reminder) *gcal.Event {
	start := eventStart(r.RemindAt)
	end := start.Add(30 * time.Minute)

	description := r.Notes
	if !r.Due.IsEmpty() {
		due := "Expires " + r.Due.Format("2 Jan 2006")
		if description == "" {
			description = due
		} else {
			description = due + "\n" + description
		}
	}

	return &gcal.Event{
		Summary:     "Renewal: " + r.Title,
		Description: description,
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)},
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "popup", Minutes: 0},
				{Method: "popup", Minutes: alarmLeadMinutes},
			},
			ForceSendFields: []string{"UseDefault"},
		},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{itemIDProperty: r.ItemID},
		},
	}
}

// eventStart pins the reminder to 9am local time on the reminder's date.
func eventStart(remindAt time.Time) time.Time {
	y, m, d := remindAt.Date()
	return time.Date(y, m, d, eventHour, 0, 0, 0, remindAt.Location())
}
