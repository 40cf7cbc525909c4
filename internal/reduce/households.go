package reduce

import (
	"flock/internal/core"
	"flock/internal/normalize"
)

// ReduceHouseholds describes how people are grouped into households. A
// person linked to the same household twice is counted once.
func ReduceHouseholds(links []core.HouseholdLink, people []core.Person, _ Options) core.HouseholdStats {
	stats := core.HouseholdStats{ByRole: []core.LabelCount{}}
	roles := newCounter()

	members := make(map[string]map[string]struct{})
	var order []string
	linked := make(map[string]struct{})

	for _, l := range links {
		if l.HouseholdID == "" || l.PersonID == "" {
			continue
		}
		set, ok := members[l.HouseholdID]
		if !ok {
			set = make(map[string]struct{})
			members[l.HouseholdID] = set
			order = append(order, l.HouseholdID)
		}
		if _, dup := set[l.PersonID]; dup {
			continue
		}
		set[l.PersonID] = struct{}{}
		linked[l.PersonID] = struct{}{}
		roles.add(normalize.Normalize(l.Role, normalize.HouseholdRole))
	}

	size := 0
	for _, id := range order {
		n := len(members[id])
		size += n
		if n == 1 {
			stats.SingleMember++
		}
	}

	stats.Households = len(order)
	stats.LinkedPeople = len(linked)
	stats.AverageSize = ratio(float64(size), float64(stats.Households))
	stats.ByRole = roles.result()

	for _, p := range people {
		if p.ID == "" || p.CreatedAt.IsZero() {
			continue
		}
		if _, ok := linked[p.ID]; !ok {
			stats.UnlinkedPeople++
		}
	}
	return stats
}
