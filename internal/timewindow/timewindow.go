// Package timewindow provides the calendar arithmetic shared by every
// dashboard reducer: weeks, months, trailing ranges and week-of-month slots.
//
// All functions are pure. "Now" is always passed in and its location defines
// the local calendar. Month deltas outside 0..11 are normalized by calendar
// arithmetic, never rejected.
package timewindow

import (
	"time"
)

// Window is an inclusive time range [Start, End].
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func newWindow(start, end time.Time) Window {
	if end.Before(start) {
		start, end = end, start
	}
	return Window{Start: start, End: end}
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Year returns the calendar year of the window start.
func (w Window) Year() int { return w.Start.Year() }

// Month returns the calendar month of the window start.
func (w Window) Month() time.Month { return w.Start.Month() }

func (w Window) String() string {
	return "[" + w.Start.Format("2006-01-02") + ", " + w.End.Format("2006-01-02") + "]"
}

// In reports whether t falls inside w. A nil window means all-time.
func In(w *Window, t time.Time) bool {
	if w == nil {
		return true
	}
	return w.Contains(t)
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last instant of t's local day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// CurrentWeek returns the Sunday-start calendar week containing now.
func CurrentWeek(now time.Time) Window {
	start := StartOfDay(now).AddDate(0, 0, -int(now.Weekday()))
	return newWindow(start, start.AddDate(0, 0, 7).Add(-time.Nanosecond))
}

// CurrentMonth returns the calendar month containing now.
func CurrentMonth(now time.Time) Window {
	return MonthWindow(now.Year(), now.Month(), now.Location())
}

// MonthWindow returns the full calendar month. Out of range months are
// normalized (month 13 of 2025 is January 2026).
func MonthWindow(year int, month time.Month, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return newWindow(start, start.AddDate(0, 1, 0).Add(-time.Nanosecond))
}

// MonthsAgo returns the calendar month n months before now's month.
// Negative n looks forward.
func MonthsAgo(now time.Time, n int) Window {
	return MonthWindow(now.Year(), now.Month()-time.Month(n), now.Location())
}

// WeekOfMonth returns the 1-based week-of-month index of t:
// ceil((dayOfMonth + weekday of the 1st) / 7), with Sunday as weekday 0.
// Months spanning six week rows yield 6; callers must not assume a maximum.
func WeekOfMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	offset := int(first.Weekday())
	return (t.Day() + offset + 6) / 7
}

// WeeksInMonth returns the number of week-of-month slots in the month.
func WeeksInMonth(year int, month time.Month, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	return WeekOfMonth(last)
}

// WeekWindow is the inverse of WeekOfMonth: the Sunday-start week row with
// the given index, clamped to the days that belong to the month. The index
// is clamped into [1, WeeksInMonth].
func WeekWindow(year int, month time.Month, week int, loc *time.Location) Window {
	monthWin := MonthWindow(year, month, loc)
	first := monthWin.Start

	n := WeekOfMonth(monthWin.End)
	if week < 1 {
		week = 1
	}
	if week > n {
		week = n
	}

	offset := int(first.Weekday())
	start := first.AddDate(0, 0, (week-1)*7-offset)
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)

	if start.Before(monthWin.Start) {
		start = monthWin.Start
	}
	if end.After(monthWin.End) {
		end = monthWin.End
	}
	return newWindow(start, end)
}

// Trailing returns the range from local midnight `days` days ago up to now.
func Trailing(now time.Time, days int) Window {
	return newWindow(StartOfDay(now).AddDate(0, 0, -days), now)
}

// Lookahead returns the range from the start of today through the end of
// the day `days` days from now.
func Lookahead(now time.Time, days int) Window {
	return newWindow(StartOfDay(now), EndOfDay(now.AddDate(0, 0, days)))
}

// Span returns the window from the start of `from` to the end of `to`.
func Span(from, to Window) Window {
	return newWindow(from.Start, to.End)
}
