package reduce

import (
	"sort"

	"flock/internal/core"
	"flock/internal/normalize"
	"flock/internal/timewindow"
)

// ReduceEvents counts events starting inside window and splits them into
// past and upcoming relative to opts.Now.
func ReduceEvents(events []core.Event, window *timewindow.Window, opts Options) core.EventStats {
	stats := core.EventStats{ByCategory: []core.LabelCount{}, Next: []core.EventSummary{}}
	categories := newCounter()
	var upcoming []core.Event

	for _, e := range events {
		if e.StartsAt.IsZero() || !timewindow.In(window, e.StartsAt) {
			continue
		}
		stats.Total++
		categories.add(normalize.Normalize(e.Category, normalize.EventCategory))
		if e.StartsAt.After(opts.Now) {
			stats.Upcoming++
			upcoming = append(upcoming, e)
		} else {
			stats.Past++
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartsAt.Before(upcoming[j].StartsAt)
	})
	for i, e := range upcoming {
		if i == UpcomingLimit {
			break
		}
		stats.Next = append(stats.Next, core.EventSummary{
			ID:       e.ID,
			Title:    e.Title,
			Category: normalize.Normalize(e.Category, normalize.EventCategory),
			StartsAt: e.StartsAt,
		})
	}

	stats.ByCategory = categories.result()
	return stats
}
