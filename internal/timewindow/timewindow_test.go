package timewindow

import (
	"testing"
	"time"
)

func TestWeekOfMonth(t *testing.T) {
	cases := []struct {
		date time.Time
		want int
	}{
		{time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC), 1},  // Thursday
		{time.Date(2026, 10, 3, 23, 0, 0, 0, time.UTC), 1}, // Saturday
		{time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC), 2},  // Sunday
		{time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC), 3},
		{time.Date(2026, 10, 31, 12, 0, 0, 0, time.UTC), 5},
		{time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), 1}, // Saturday start
		{time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC), 2},
		{time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), 6},
		{time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), 6},
		{time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC), 1}, // Sunday start
		{time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC), 4},
	}
	for _, tc := range cases {
		if got := WeekOfMonth(tc.date); got != tc.want {
			t.Errorf("WeekOfMonth(%s) = %d, want %d", tc.date.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestWeekWindowRoundTrip(t *testing.T) {
	locs := []*time.Location{time.UTC, time.FixedZone("UTC-5", -5*3600)}
	for _, loc := range locs {
		for year := 2023; year <= 2028; year++ {
			for month := time.January; month <= time.December; month++ {
				weeks := WeeksInMonth(year, month, loc)
				if weeks < 4 || weeks > 6 {
					t.Fatalf("%d-%02d: unexpected week count %d", year, month, weeks)
				}
				for week := 1; week <= weeks; week++ {
					w := WeekWindow(year, month, week, loc)
					if w.End.Before(w.Start) {
						t.Fatalf("%d-%02d week %d: end before start", year, month, week)
					}
					for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
						if got := WeekOfMonth(d); got != week {
							t.Fatalf("%d-%02d week %d: day %s maps to week %d", year, month, week, d.Format("2006-01-02"), got)
						}
						if d.Month() != month {
							t.Fatalf("%d-%02d week %d: day %s outside month", year, month, week, d.Format("2006-01-02"))
						}
					}
				}
			}
		}
	}
}

func TestWeekWindowClampsIndex(t *testing.T) {
	w := WeekWindow(2026, time.October, 0, time.UTC)
	if w.Start.Day() != 1 || w.End.Day() != 3 {
		t.Fatalf("week 0 should clamp to week 1, got %s", w)
	}
	w = WeekWindow(2026, time.October, 9, time.UTC)
	if w.Start.Day() != 25 || w.End.Day() != 31 {
		t.Fatalf("week 9 should clamp to the last week, got %s", w)
	}
}

func TestMonthsAgo(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	for n := 0; n <= 36; n++ {
		w := MonthsAgo(now, n)
		if w.End.Before(w.Start) {
			t.Fatalf("MonthsAgo(%d): end before start", n)
		}
		if w.Start.Day() != 1 {
			t.Fatalf("MonthsAgo(%d): start day %d", n, w.Start.Day())
		}
		next := w.End.Add(time.Nanosecond)
		if next.Day() != 1 {
			t.Fatalf("MonthsAgo(%d): end is not the last instant of the month", n)
		}
	}

	cases := []struct {
		n         int
		wantYear  int
		wantMonth time.Month
	}{
		{0, 2026, time.January},
		{1, 2025, time.December},
		{12, 2025, time.January},
		{13, 2024, time.December},
		{25, 2023, time.December},
		{-1, 2026, time.February},
	}
	for _, tc := range cases {
		w := MonthsAgo(now, tc.n)
		if w.Year() != tc.wantYear || w.Month() != tc.wantMonth {
			t.Errorf("MonthsAgo(%d) = %d-%02d, want %d-%02d", tc.n, w.Year(), w.Month(), tc.wantYear, tc.wantMonth)
		}
	}
}

func TestCurrentWeek(t *testing.T) {
	now := time.Date(2026, 10, 16, 14, 30, 0, 0, time.UTC) // Friday
	w := CurrentWeek(now)
	if w.Start.Weekday() != time.Sunday || w.Start.Day() != 11 {
		t.Fatalf("week should start Sunday 11th, got %s", w.Start)
	}
	if w.End.Weekday() != time.Saturday || w.End.Day() != 17 {
		t.Fatalf("week should end Saturday 17th, got %s", w.End)
	}
	if !w.Contains(now) {
		t.Fatalf("week should contain now")
	}

	// A Sunday is the first day of its own week.
	sunday := time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC)
	if got := CurrentWeek(sunday); !got.Start.Equal(sunday) {
		t.Fatalf("Sunday week start = %s", got.Start)
	}
}

func TestCurrentMonthAcrossYearEnd(t *testing.T) {
	now := time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)
	w := CurrentMonth(now)
	if w.Start != time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected start %s", w.Start)
	}
	if !w.End.Add(time.Nanosecond).Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %s", w.End)
	}
}

func TestInNilWindowIsAllTime(t *testing.T) {
	if !In(nil, time.Time{}) {
		t.Fatal("nil window should include everything")
	}
	w := Trailing(time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC), 90)
	if In(&w, time.Date(2026, 7, 17, 23, 0, 0, 0, time.UTC)) {
		t.Fatal("day 91 should be outside the trailing window")
	}
	if !In(&w, time.Date(2026, 7, 18, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("day 90 should be inside the trailing window")
	}
}
