package core

import (
	"testing"
	"time"
)

func TestFormatShortDate(t *testing.T) {
	d := time.Date(2025, 8, 13, 10, 3, 0, 0, time.UTC)

	if got := FormatShortDate(d, false); got != "13 Aug" {
		t.Errorf("FormatShortDate() = %q, want %q", got, "13 Aug")
	}
	if got := FormatShortDate(d, true); got != "13 Aug 2025" {
		t.Errorf("FormatShortDate(includeYear) = %q, want %q", got, "13 Aug 2025")
	}
	if got := FormatShortDate(time.Time{}, false); got != "" {
		t.Errorf("FormatShortDate(zero) = %q, want empty", got)
	}
}

func TestFormatMonthYear(t *testing.T) {
	d := time.Date(2025, 8, 13, 0, 0, 0, 0, time.UTC)

	if got := FormatMonthYear(d, false); got != "August 2025" {
		t.Errorf("FormatMonthYear() = %q, want %q", got, "August 2025")
	}
	if got := FormatMonthYear(d, true); got != "Aug 2025" {
		t.Errorf("FormatMonthYear(short) = %q, want %q", got, "Aug 2025")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 8, 13, 0, 1, 0, 0, time.UTC)
	b := time.Date(2025, 8, 13, 23, 59, 0, 0, time.UTC)
	c := time.Date(2025, 8, 14, 0, 0, 1, 0, time.UTC)

	if !SameDay(a, b) {
		t.Error("expected same day")
	}
	if SameDay(b, c) {
		t.Error("expected different days")
	}
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC))

	if start.Day() != 1 || start.Month() != 2 {
		t.Errorf("start = %v, want first of February", start)
	}
	if end.Day() != 28 || end.Month() != 2 {
		t.Errorf("end = %v, want last day of February", end)
	}
	if end.Hour() != 23 || end.Minute() != 59 {
		t.Errorf("end = %v, want end of day", end)
	}
}
