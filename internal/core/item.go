package core

import (
	"errors"
	"sort"
	"strings"
	"time"
)

const (
	CategoryInsurance    Category = "insurance"
	CategoryVehicle      Category = "vehicle"
	CategorySubscription Category = "subscription"
	CategoryWarranty     Category = "warranty"
	CategoryContract     Category = "contract"
)

// Renewal status values. The field is free text on the wire; these are the
// values the application itself writes.
const (
	StatusActive      = "active"
	StatusNegotiating = "negotiating"
	StatusCancelled   = "cancelled"
)

// TempIDPrefix marks ids assigned locally before the remote store confirms a
// create. Temp ids never reach persistent storage.
const TempIDPrefix = "temp-"

type (
	Category string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Item is one tracked bill, subscription, vehicle document or policy.
	// ID and CreatedAt are assigned by the remote store on creation.
	Item struct {
		ID            string
		OwnerID       string
		Title         string
		Category      Category
		ExpiryDate    Date   // optional; zero means no expiry
		ReminderDate  Date   // optional
		MonthlyCost   *Money // optional
		RenewalStatus string
		OCRRawText    string
		Scanned       bool
		VehicleReg    string
		VehicleMake   string
		MainDealer    bool
		CreatedAt     time.Time
	}
)

var (
	ErrEmptyOwner      = errors.New("empty owner id")
	ErrEmptyTitle      = errors.New("empty title")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDay      = errors.New("invalid day")
	ErrInvalidMonth    = errors.New("invalid month")
)

// ParseCategory converts a wire value to a Category. The hosted schema used
// shorthand values for two categories; both spellings are accepted.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "insurance":
		return CategoryInsurance, nil
	case "vehicle", "gov":
		return CategoryVehicle, nil
	case "subscription", "sub":
		return CategorySubscription, nil
	case "warranty":
		return CategoryWarranty, nil
	case "contract":
		return CategoryContract, nil
	default:
		return "", ErrInvalidCategory
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryInsurance, CategoryVehicle, CategorySubscription, CategoryWarranty, CategoryContract:
		return true
	}
	return false
}

// Display returns the human-readable category name.
func (c Category) Display() string {
	switch c {
	case CategoryInsurance:
		return "Insurance"
	case CategoryVehicle:
		return "Vehicle"
	case CategorySubscription:
		return "Subscription"
	case CategoryWarranty:
		return "Warranty"
	case CategoryContract:
		return "Contract"
	default:
		return string(c)
	}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// IsEmpty returns true if the date is zero. Expiry and reminder dates are
// optional, so zero is a valid state rather than an error.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// NewDate creates a new Date from year, month, day (UTC midnight).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsTempID reports whether id is a locally assigned placeholder.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if len(strings.TrimSpace(i.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(i.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if !i.Category.Valid() {
		return ErrInvalidCategory
	}
	if !i.ExpiryDate.IsEmpty() {
		if err := i.ExpiryDate.Validate(); err != nil {
			return errors.New("invalid expiry date: " + err.Error())
		}
	}
	if !i.ReminderDate.IsEmpty() {
		if err := i.ReminderDate.Validate(); err != nil {
			return errors.New("invalid reminder date: " + err.Error())
		}
	}
	if i.MonthlyCost != nil && i.MonthlyCost.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// DaysUntilExpiry returns whole days from now until the expiry date, both
// truncated to midnight. The second return is false when the item has no
// expiry date. Yesterday's expiry returns -1, today's returns 0.
func (i Item) DaysUntilExpiry(now time.Time) (int, bool) {
	if i.ExpiryDate.IsEmpty() {
		return 0, false
	}
	expiry := startOfDay(i.ExpiryDate.Time)
	today := startOfDay(now)
	return int(expiry.Sub(today).Hours() / 24), true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SortByExpiry orders items by expiry date ascending with items lacking an
// expiry date last. Ties break on CreatedAt, then ID, so the order is stable
// across refreshes. This mirrors the remote store's listing order.
func SortByExpiry(items []Item) {
	sort.SliceStable(items, func(a, b int) bool {
		ia, ib := items[a], items[b]
		switch {
		case ia.ExpiryDate.IsEmpty() && ib.ExpiryDate.IsEmpty():
			// fall through to tiebreak
		case ia.ExpiryDate.IsEmpty():
			return false
		case ib.ExpiryDate.IsEmpty():
			return true
		case !ia.ExpiryDate.Equal(ib.ExpiryDate.Time):
			return ia.ExpiryDate.Before(ib.ExpiryDate.Time)
		}
		if !ia.CreatedAt.Equal(ib.CreatedAt) {
			return ia.CreatedAt.Before(ib.CreatedAt)
		}
		return ia.ID < ib.ID
	})
}
