package reduce

import (
	"flock/internal/core"
	"flock/internal/normalize"
	"flock/internal/timewindow"
)

// ReduceAttendance summarizes attendance marks inside window and computes
// the weekly attendance rate.
//
// The weekly rate is the average share of active members present at past
// Sunday Service events. It is computed over the trailing 90 days; when no
// such event exists there it falls back to all history, and when none
// exists at all it is 0 with basis none. events and people are expected
// unfiltered.
func ReduceAttendance(marks []core.AttendanceMark, events []core.Event, people []core.Person, window *timewindow.Window, opts Options) core.AttendanceStats {
	stats := core.AttendanceStats{ByStatus: []core.LabelCount{}, RateBasis: core.RateNone}
	statuses := newCounter()
	attendees := make(map[string]struct{})
	attendedEvents := make(map[string]struct{})

	for _, m := range marks {
		if m.MarkedAt.IsZero() || !timewindow.In(window, m.MarkedAt) {
			continue
		}
		stats.Marks++
		status := normalize.Normalize(m.Status, normalize.AttendanceStatus)
		statuses.add(status)
		if status != normalize.Present {
			stats.NotPresent++
			continue
		}
		stats.Present++
		attendees[m.PersonID] = struct{}{}
		attendedEvents[m.EventID] = struct{}{}
	}

	stats.UniqueAttendees = len(attendees)
	stats.Events = len(attendedEvents)
	stats.AveragePerEvent = ratio(float64(stats.Present), float64(stats.Events))
	stats.ByStatus = statuses.result()

	active := activeMembers(people)
	stats.ActiveMembers = len(active)

	trailing := timewindow.Trailing(opts.Now, TrailingWindow)
	basis := core.RateTrailing90Days
	qualifying := qualifyingEvents(events, &trailing, opts)
	if len(qualifying) == 0 {
		basis = core.RateAllTime
		qualifying = qualifyingEvents(events, nil, opts)
	}
	if len(qualifying) == 0 {
		return stats
	}

	// Distinct active members present per qualifying event.
	present := make(map[string]map[string]struct{}, len(qualifying))
	for _, m := range marks {
		if m.MarkedAt.IsZero() {
			continue
		}
		if _, ok := qualifying[m.EventID]; !ok {
			continue
		}
		if _, ok := active[m.PersonID]; !ok {
			continue
		}
		if normalize.Normalize(m.Status, normalize.AttendanceStatus) != normalize.Present {
			continue
		}
		if present[m.EventID] == nil {
			present[m.EventID] = make(map[string]struct{})
		}
		present[m.EventID][m.PersonID] = struct{}{}
	}
	sum := 0
	for _, who := range present {
		sum += len(who)
	}

	stats.RateBasis = basis
	stats.QualifyingEvents = len(qualifying)
	perEvent := float64(sum) / float64(len(qualifying))
	stats.WeeklyRate = percent(perEvent, float64(stats.ActiveMembers))
	return stats
}

// qualifyingEvents returns the ids of Sunday Service events that have
// already started and fall inside window.
func qualifyingEvents(events []core.Event, window *timewindow.Window, opts Options) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, e := range events {
		if e.StartsAt.IsZero() || e.StartsAt.After(opts.Now) {
			continue
		}
		if !timewindow.In(window, e.StartsAt) {
			continue
		}
		if normalize.Normalize(e.Category, normalize.EventCategory) == normalize.SundayService {
			ids[e.ID] = struct{}{}
		}
	}
	return ids
}
