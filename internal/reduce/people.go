package reduce

import (
	"flock/internal/core"
	"flock/internal/normalize"
	"flock/internal/timewindow"
)

// ReducePeople counts people by status. Totals cover everyone; NewInWindow
// counts people created inside window.
func ReducePeople(people []core.Person, window *timewindow.Window, _ Options) core.PeopleStats {
	stats := core.PeopleStats{ByStatus: []core.LabelCount{}}
	statuses := newCounter()

	for _, p := range people {
		if p.CreatedAt.IsZero() {
			continue
		}
		stats.Total++
		status := normalize.Normalize(p.Status, normalize.PersonStatus)
		statuses.add(status)
		switch status {
		case normalize.StatusActive:
			stats.Active++
		case normalize.StatusInactive:
			stats.Inactive++
		case normalize.StatusVisitor:
			stats.Visitors++
		default:
			stats.Other++
		}
		if timewindow.In(window, p.CreatedAt) {
			stats.NewInWindow++
		}
	}

	stats.ByStatus = statuses.result()
	return stats
}

// activeMembers returns the ids of people whose status is Active.
func activeMembers(people []core.Person) map[string]struct{} {
	active := make(map[string]struct{})
	for _, p := range people {
		if p.ID == "" || p.CreatedAt.IsZero() {
			continue
		}
		if normalize.Normalize(p.Status, normalize.PersonStatus) == normalize.StatusActive {
			active[p.ID] = struct{}{}
		}
	}
	return active
}
