package ledger

import "time"

// WeekStart returns the Monday 00:00:00 UTC on or before t. Sunday maps to
// the previous Monday.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	back := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -back)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekKey returns the ISO date of the Monday starting t's week, e.g. "2025-02-10".
func WeekKey(t time.Time) string {
	return WeekStart(t).Format("2006-01-02")
}

// WeekEnd returns the last instant of t's week (Sunday 23:59:59.999 UTC).
func WeekEnd(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 7).Add(-time.Millisecond)
}
