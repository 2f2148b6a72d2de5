package core

import "time"

// FormatShortDate renders a date as "13 Aug", or "13 Aug 2025" when
// includeYear is set.
func FormatShortDate(t time.Time, includeYear bool) string {
	if t.IsZero() {
		return ""
	}
	if includeYear {
		return t.Format("2 Jan 2006")
	}
	return t.Format("2 Jan")
}

// FormatMonthYear renders "August 2025", or "Aug 2025" in short form.
func FormatMonthYear(t time.Time, short bool) string {
	if t.IsZero() {
		return ""
	}
	if short {
		return t.Format("Jan 2006")
	}
	return t.Format("January 2006")
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates to local midnight.
func StartOfDay(t time.Time) time.Time {
	return startOfDay(t)
}

// EndOfDay returns the last instant of the day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// MonthBounds returns the first and last instants of t's month.
func MonthBounds(t time.Time) (start, end time.Time) {
	y, m, _ := t.Date()
	start = time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	end = EndOfDay(start.AddDate(0, 1, -1))
	return start, end
}
