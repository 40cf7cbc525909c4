// Package reduce turns typed domain records into dashboard statistics.
//
// Reducers are pure and never fail. Records whose relevant timestamp lies
// outside the window are ignored (a nil window means all-time), records with
// a missing required timestamp are skipped, and empty input yields zero
// stats. Every top-N list is built with a stable sort so ties keep the order
// in which records were encountered.
package reduce

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"flock/internal/core"
	"flock/internal/normalize"
)

// List sizes used when Options.TopN is not set.
const (
	DefaultTopN    = 10
	RecentLimit    = 5
	UpcomingLimit  = 5
	LookaheadDays  = 30
	TrailingWindow = 90
)

// Options carries the inputs shared by all reducers.
type Options struct {
	Now   time.Time
	TopN  int
	Names map[string]string // person id -> display name
}

func (o Options) topN() int {
	if o.TopN <= 0 {
		return DefaultTopN
	}
	return o.TopN
}

func (o Options) name(personID string) string {
	if o.Names == nil {
		return ""
	}
	return o.Names[personID]
}

// NameIndex maps person ids to display names for Options.Names.
func NameIndex(people []core.Person) map[string]string {
	names := make(map[string]string, len(people))
	for _, p := range people {
		if p.ID != "" {
			names[p.ID] = p.FullName()
		}
	}
	return names
}

// percent returns num/den*100 rounded to two decimals, or 0 when den is 0.
func percent(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return round2(num / den * 100)
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return round2(num / den)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// counter tallies labels, remembering first-encounter order.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(label string) {
	if _, ok := c.counts[label]; !ok {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

// result lists labels by count descending.
func (c *counter) result() []core.LabelCount {
	out := make([]core.LabelCount, 0, len(c.order))
	for _, l := range c.order {
		out = append(out, core.LabelCount{Label: l, Count: c.counts[l]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// summer accumulates exact decimal totals per label.
type summer struct {
	order  []string
	counts map[string]int
	totals map[string]decimal.Decimal
}

func newSummer() *summer {
	return &summer{counts: make(map[string]int), totals: make(map[string]decimal.Decimal)}
}

func (s *summer) add(label string, amount decimal.Decimal) {
	if _, ok := s.counts[label]; !ok {
		s.order = append(s.order, label)
	}
	s.counts[label]++
	s.totals[label] = s.totals[label].Add(amount)
}

// result lists labels by total descending.
func (s *summer) result() []core.LabelAmount {
	out := make([]core.LabelAmount, 0, len(s.order))
	for _, l := range s.order {
		out = append(out, core.LabelAmount{
			Label: l,
			Count: s.counts[l],
			Total: core.MoneyFromDecimal(s.totals[l]),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total.Cents > out[j].Total.Cents })
	return out
}

func isOpenTask(status string) bool {
	return status == normalize.TaskOpen || status == normalize.TaskInProgress
}
