package memory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"flock/internal/core"
)

// Seed fills orgID with a small, plausible data set anchored on now so a
// local run shows a populated dashboard.
func (s *Store) Seed(orgID uuid.UUID, now time.Time) {
	day := func(offset int) time.Time {
		d := now.AddDate(0, 0, offset)
		return time.Date(d.Year(), d.Month(), d.Day(), 10, 0, 0, 0, now.Location())
	}
	date := func(year int, month time.Month, d int) *time.Time {
		t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	names := [][2]string{
		{"Ruth", "Moabi"}, {"Boaz", "Ephrath"}, {"Naomi", "Ephrath"}, {"Lydia", "Thyatira"},
		{"Priscilla", "Pontus"}, {"Aquila", "Pontus"}, {"Silas", "Berea"}, {"Tabitha", "Joppa"},
	}
	statuses := []string{"Member", "Member", "Active", "Regular", "Member", "Visitor", "Inactive", "Member"}
	people := make([]core.Person, 0, len(names))
	for i, n := range names {
		p := core.Person{
			ID:        fmt.Sprintf("p%d", i+1),
			FirstName: n[0],
			LastName:  n[1],
			Status:    statuses[i],
			CreatedAt: day(-400 + i*40),
		}
		bday := now.AddDate(-30-i, 0, i*5)
		p.Birthday = date(bday.Year(), bday.Month(), bday.Day())
		if i%3 == 0 {
			p.Anniversary = date(2010+i, now.Month(), 1+i)
		}
		joined := p.CreatedAt
		p.JoinedAt = &joined
		people = append(people, p)
	}
	s.AddPeople(orgID, people...)

	funds := []string{"Tithe", "General offering", "Missions", "Building fund"}
	methods := []string{"Cash", "Check", "Online", "Card"}
	var gifts []core.Contribution
	for i := 0; i < 120; i++ {
		gifts = append(gifts, core.Contribution{
			ID:         fmt.Sprintf("c%d", i+1),
			PersonID:   people[i%len(people)].ID,
			Amount:     decimal.NewFromInt(int64(20 + (i*37)%180)),
			Fund:       funds[i%len(funds)],
			Method:     methods[(i/2)%len(methods)],
			ReceivedAt: day(-i),
		})
	}
	s.AddContributions(orgID, gifts...)

	var events []core.Event
	var marks []core.AttendanceMark
	sunday := day(-int(now.Weekday()))
	for w := -8; w <= 2; w++ {
		ev := core.Event{
			ID:       fmt.Sprintf("sun%d", w+8),
			Title:    "Sunday Worship",
			Category: "Sunday worship",
			StartsAt: sunday.AddDate(0, 0, 7*w),
		}
		events = append(events, ev)
		if ev.StartsAt.After(now) {
			continue
		}
		for i, p := range people {
			status := "Present"
			if (i+w)%4 == 0 {
				status = "Absent"
			}
			marks = append(marks, core.AttendanceMark{
				ID:       fmt.Sprintf("%s-%s", ev.ID, p.ID),
				EventID:  ev.ID,
				PersonID: p.ID,
				Status:   status,
				MarkedAt: ev.StartsAt,
			})
		}
	}
	events = append(events,
		core.Event{ID: "bs1", Title: "Romans study", Category: "Bible Study", StartsAt: day(3)},
		core.Event{ID: "fl1", Title: "Harvest potluck", Category: "Fellowship meal", StartsAt: day(9)},
		core.Event{ID: "yt1", Title: "Youth night", Category: "Youth", StartsAt: day(-2)},
	)
	s.AddEvents(orgID, events...)
	s.AddAttendance(orgID, marks...)

	due := func(offset int) *time.Time { t := day(offset); return &t }
	s.AddTasks(orgID,
		core.Task{ID: "t1", Title: "Fix sound desk", Status: "Open", Priority: "High", CreatedAt: day(-20), DueAt: due(-2)},
		core.Task{ID: "t2", Title: "Order hymnals", Status: "In progress", Priority: "Medium", CreatedAt: day(-10), DueAt: due(5)},
		core.Task{ID: "t3", Title: "Plan retreat", Status: "todo", Priority: "Low", CreatedAt: day(-3), DueAt: due(30)},
		core.Task{ID: "t4", Title: "Paint nursery", Status: "Done", Priority: "Medium", CreatedAt: day(-40), CompletedAt: due(-4)},
		core.Task{ID: "t5", Title: "Old newsletter", Status: "Cancelled", CreatedAt: day(-60)},
	)

	s.AddMessages(orgID,
		core.Message{ID: "m1", Channel: "Email", Status: "Delivered", Recipients: 120, SentAt: day(-1)},
		core.Message{ID: "m2", Channel: "SMS", Status: "Delivered", Recipients: 45, SentAt: day(-3)},
		core.Message{ID: "m3", Channel: "Email", Status: "Bounced", Recipients: 3, SentAt: day(-3)},
		core.Message{ID: "m4", Channel: "WhatsApp", Status: "Queued", Recipients: 30, SentAt: day(0)},
	)

	s.AddHouseholdLinks(orgID,
		core.HouseholdLink{HouseholdID: "h1", PersonID: "p2", Role: "Head", LinkedAt: day(-300)},
		core.HouseholdLink{HouseholdID: "h1", PersonID: "p3", Role: "Spouse", LinkedAt: day(-300)},
		core.HouseholdLink{HouseholdID: "h2", PersonID: "p5", Role: "Head", LinkedAt: day(-200)},
		core.HouseholdLink{HouseholdID: "h2", PersonID: "p6", Role: "Spouse", LinkedAt: day(-200)},
		core.HouseholdLink{HouseholdID: "h3", PersonID: "p1", Role: "Head", LinkedAt: day(-100)},
	)
}
