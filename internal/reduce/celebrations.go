package reduce

import (
	"sort"
	"time"

	"flock/internal/core"
	"flock/internal/timewindow"
)

// ReduceCelebrations lists birthdays, wedding anniversaries and join
// anniversaries occurring within the next 30 days of opts.Now, soonest first.
func ReduceCelebrations(people []core.Person, opts Options) core.CelebrationStats {
	stats := core.CelebrationStats{Upcoming: []core.Celebration{}}
	today := timewindow.StartOfDay(opts.Now)

	for _, p := range people {
		if p.CreatedAt.IsZero() {
			continue
		}
		dates := []struct {
			kind core.CelebrationKind
			at   *time.Time
		}{
			{core.Birthday, p.Birthday},
			{core.WeddingAnniversary, p.Anniversary},
			{core.JoinAnniversary, p.JoinedAt},
		}
		for _, d := range dates {
			if d.at == nil || d.at.IsZero() {
				continue
			}
			if d.at.Month() == today.Month() {
				stats.ThisMonth++
			}
			next := NextOccurrence(*d.at, today)
			days := daysBetween(today, next)
			if days > LookaheadDays {
				continue
			}
			years := next.Year() - d.at.Year()
			if years < 0 {
				years = 0
			}
			stats.Upcoming = append(stats.Upcoming, core.Celebration{
				PersonID: p.ID,
				Name:     p.FullName(),
				Kind:     d.kind,
				Date:     next,
				DaysAway: days,
				Years:    years,
			})
			switch d.kind {
			case core.Birthday:
				stats.Birthdays++
			case core.WeddingAnniversary:
				stats.Anniversaries++
			case core.JoinAnniversary:
				stats.JoinAnniversaries++
			}
		}
	}

	sort.SliceStable(stats.Upcoming, func(i, j int) bool {
		return stats.Upcoming[i].Date.Before(stats.Upcoming[j].Date)
	})
	return stats
}

// NextOccurrence re-anchors the month and day of date onto the year of now,
// rolling to the following year when that day is already past. February 29
// lands on February 28 in non-leap years. The result is midnight in now's
// location.
func NextOccurrence(date, now time.Time) time.Time {
	today := timewindow.StartOfDay(now)
	next := anchor(date, today.Year(), today.Location())
	if next.Before(today) {
		next = anchor(date, today.Year()+1, today.Location())
	}
	return next
}

func anchor(date time.Time, year int, loc *time.Location) time.Time {
	month, day := date.Month(), date.Day()
	if month == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
