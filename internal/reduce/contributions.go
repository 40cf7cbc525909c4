package reduce

import (
	"sort"

	"github.com/shopspring/decimal"

	"flock/internal/core"
	"flock/internal/normalize"
	"flock/internal/timewindow"
)

// ReduceContributions summarizes giving inside window. WeekTotal always
// covers the calendar week of opts.Now, whatever the window.
func ReduceContributions(gifts []core.Contribution, window *timewindow.Window, opts Options) core.ContributionStats {
	stats := core.ContributionStats{
		ByFund:          []core.LabelAmount{},
		ByMethod:        []core.LabelAmount{},
		TopContributors: []core.ContributorTotal{},
		Recent:          []core.ContributionSummary{},
	}

	week := timewindow.CurrentWeek(opts.Now)
	total := decimal.Zero
	weekTotal := decimal.Zero
	funds := newSummer()
	methods := newSummer()

	type giver struct {
		gifts int
		total decimal.Decimal
	}
	givers := make(map[string]*giver)
	var giverOrder []string
	var inWindow []core.Contribution

	for _, c := range gifts {
		if c.ReceivedAt.IsZero() {
			continue
		}
		if week.Contains(c.ReceivedAt) {
			weekTotal = weekTotal.Add(c.Amount)
		}
		if !timewindow.In(window, c.ReceivedAt) {
			continue
		}
		inWindow = append(inWindow, c)
		stats.Count++
		total = total.Add(c.Amount)
		funds.add(normalize.Normalize(c.Fund, normalize.Fund), c.Amount)
		methods.add(normalize.Normalize(c.Method, normalize.PaymentMethod), c.Amount)

		if c.PersonID == "" {
			continue
		}
		g, ok := givers[c.PersonID]
		if !ok {
			g = &giver{total: decimal.Zero}
			givers[c.PersonID] = g
			giverOrder = append(giverOrder, c.PersonID)
		}
		g.gifts++
		g.total = g.total.Add(c.Amount)
	}

	stats.Total = core.MoneyFromDecimal(total)
	stats.WeekTotal = core.MoneyFromDecimal(weekTotal)
	stats.Givers = len(givers)
	if stats.Count > 0 {
		stats.Average = core.MoneyFromDecimal(total.Div(decimal.NewFromInt(int64(stats.Count))))
	}
	stats.ByFund = funds.result()
	stats.ByMethod = methods.result()

	exact := make(map[string]decimal.Decimal, len(givers))
	for _, id := range giverOrder {
		g := givers[id]
		exact[id] = g.total
		stats.TopContributors = append(stats.TopContributors, core.ContributorTotal{
			PersonID: id,
			Name:     opts.name(id),
			Gifts:    g.gifts,
			Total:    core.MoneyFromDecimal(g.total),
		})
	}
	top := stats.TopContributors
	sort.SliceStable(top, func(i, j int) bool {
		return exact[top[i].PersonID].GreaterThan(exact[top[j].PersonID])
	})
	if len(top) > opts.topN() {
		stats.TopContributors = top[:opts.topN()]
	}

	sort.SliceStable(inWindow, func(i, j int) bool {
		return inWindow[i].ReceivedAt.After(inWindow[j].ReceivedAt)
	})
	for i, c := range inWindow {
		if i == RecentLimit {
			break
		}
		stats.Recent = append(stats.Recent, core.ContributionSummary{
			ID:         c.ID,
			PersonID:   c.PersonID,
			Name:       opts.name(c.PersonID),
			Amount:     core.MoneyFromDecimal(c.Amount),
			Fund:       normalize.Normalize(c.Fund, normalize.Fund),
			ReceivedAt: c.ReceivedAt,
		})
	}

	return stats
}
