// Package trend compares this month's giving against the same
// week-of-month slot in the months before it.
package trend

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"flock/internal/core"
	"flock/internal/timewindow"
)

// TrailingMonths is how many prior months feed the trailing average.
const TrailingMonths = 3

// Thresholds (percent) beyond which a delta is reported as up or down.
var (
	upThreshold   = decimal.NewFromInt(5)
	downThreshold = decimal.NewFromInt(-5)
	hundred       = decimal.NewFromInt(100)
)

// Window returns the range Analyze needs: the start of the month three
// months back through the end of the current month.
func Window(now time.Time) timewindow.Window {
	return timewindow.Span(timewindow.MonthsAgo(now, TrailingMonths), timewindow.CurrentMonth(now))
}

type slot struct {
	total decimal.Decimal
	gifts int
}

type ledger struct {
	gifts []core.Contribution
	loc   *time.Location
}

func (l ledger) slot(month timewindow.Window, week int) slot {
	w := timewindow.WeekWindow(month.Year(), month.Month(), week, l.loc)
	s := slot{total: decimal.Zero}
	for _, c := range l.gifts {
		if c.ReceivedAt.IsZero() || !w.Contains(c.ReceivedAt) {
			continue
		}
		s.total = s.total.Add(c.Amount)
		s.gifts++
	}
	return s
}

// Analyze computes the giving trend for the week-of-month containing now.
//
// When nothing was given yet in the current week slot and it is not the
// first week, the previous slot is used instead (one step only). The
// current total is compared with the same slot of the prior month when that
// slot has giving, otherwise with the average of the slot over the prior
// three months counting only months that had giving in it. Without either
// baseline the deltas stay nil and the direction is unknown. Slot indexes
// beyond a shorter month's last week fall on that month's last week.
func Analyze(gifts []core.Contribution, now time.Time) core.TrendReport {
	l := ledger{gifts: gifts, loc: now.Location()}
	current := timewindow.CurrentMonth(now)

	week := timewindow.WeekOfMonth(now)
	res := core.TrendResult{Week: week}
	cur := l.slot(current, week)
	if cur.total.IsZero() && week > 1 {
		week--
		res.Week = week
		res.UsedPreviousWeek = true
		cur = l.slot(current, week)
	}
	res.CurrentWindow = timewindow.WeekWindow(current.Year(), current.Month(), week, l.loc)
	res.CurrentTotal = core.MoneyFromDecimal(cur.total)

	sum := decimal.Zero
	for i := 1; i <= TrailingMonths; i++ {
		s := l.slot(timewindow.MonthsAgo(now, i), week)
		if s.gifts == 0 {
			continue
		}
		sum = sum.Add(s.total)
		res.TrailingMonths++
	}
	avg := decimal.Zero
	if res.TrailingMonths > 0 {
		avg = sum.Div(decimal.NewFromInt(int64(res.TrailingMonths)))
	}
	res.TrailingAverage = core.MoneyFromDecimal(avg)

	prior := l.slot(timewindow.MonthsAgo(now, 1), week)
	res.PriorMonthTotal = core.MoneyFromDecimal(prior.total)

	vsPrior, okPrior := delta(cur.total, prior.total)
	vsAvg, okAvg := delta(cur.total, avg)
	if okPrior {
		res.DeltaVsPriorMonth = percentPtr(vsPrior)
	}
	if okAvg {
		res.DeltaVsAverage = percentPtr(vsAvg)
	}

	switch {
	case okPrior:
		res.Basis = core.BasisPriorMonth
		res.Direction = direction(vsPrior)
	case okAvg:
		res.Basis = core.BasisTrailingAverage
		res.Direction = direction(vsAvg)
	default:
		res.Basis = core.BasisNone
		res.Direction = core.DirectionUnknown
	}
	res.Narrative = narrative(res)

	return core.TrendReport{Result: res, Weeks: weeks(l, now)}
}

// delta returns (current-base)/base*100 rounded to two decimals. It is
// undefined when base is not positive.
func delta(current, base decimal.Decimal) (decimal.Decimal, bool) {
	if !base.IsPositive() {
		return decimal.Zero, false
	}
	return current.Sub(base).Div(base).Mul(hundred).Round(2), true
}

func percentPtr(d decimal.Decimal) *float64 {
	f, _ := d.Float64()
	return &f
}

func direction(d decimal.Decimal) core.Direction {
	switch {
	case d.GreaterThanOrEqual(upThreshold):
		return core.DirectionUp
	case d.LessThanOrEqual(downThreshold):
		return core.DirectionDown
	default:
		return core.DirectionSteady
	}
}

func narrative(r core.TrendResult) string {
	var msg string
	switch r.Basis {
	case core.BasisPriorMonth:
		msg = fmt.Sprintf("Giving for week %d is %s %s vs the same week last month (%s vs %s).",
			r.Week, r.Direction, signed(*r.DeltaVsPriorMonth), r.CurrentTotal, r.PriorMonthTotal)
	case core.BasisTrailingAverage:
		msg = fmt.Sprintf("Giving for week %d is %s %s vs the %d-month average (%s vs %s).",
			r.Week, r.Direction, signed(*r.DeltaVsAverage), r.TrailingMonths, r.CurrentTotal, r.TrailingAverage)
	default:
		msg = fmt.Sprintf("Giving trend: not enough data yet for week %d.", r.Week)
	}
	if r.UsedPreviousWeek {
		msg += " No gifts recorded this week yet, showing the previous week."
	}
	return msg
}

func signed(f float64) string {
	return fmt.Sprintf("%+.2f%%", f)
}

// weeks lists the total of every week slot across the analyzed months,
// oldest first.
func weeks(l ledger, now time.Time) []core.WeekTotal {
	var out []core.WeekTotal
	for i := TrailingMonths; i >= 0; i-- {
		m := timewindow.MonthsAgo(now, i)
		n := timewindow.WeeksInMonth(m.Year(), m.Month(), l.loc)
		for w := 1; w <= n; w++ {
			s := l.slot(m, w)
			out = append(out, core.WeekTotal{
				Year:  m.Year(),
				Month: m.Month(),
				Week:  w,
				Total: core.MoneyFromDecimal(s.total),
				Gifts: s.gifts,
			})
		}
	}
	return out
}
