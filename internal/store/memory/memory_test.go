package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"flock/internal/core"
	"flock/internal/timewindow"
)

var now = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func TestMemoryStoreScopesByOrgAndWindow(t *testing.T) {
	s := New(nil)
	org, other := uuid.New(), uuid.New()
	s.AddMessages(org,
		core.Message{ID: "m1", SentAt: now.AddDate(0, 0, -1)},
		core.Message{ID: "m2", SentAt: now.AddDate(0, -2, 0)},
	)
	s.AddMessages(other, core.Message{ID: "x1", SentAt: now})

	all, err := s.Messages(context.Background(), org, nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("unexpected all-time messages: %v err=%v", all, err)
	}
	if all[0].OrgID != org {
		t.Fatalf("org id not stamped: %v", all[0].OrgID)
	}

	w := timewindow.CurrentMonth(now)
	recent, err := s.Messages(context.Background(), org, &w)
	if err != nil || len(recent) != 1 || recent[0].ID != "m1" {
		t.Fatalf("unexpected windowed messages: %v err=%v", recent, err)
	}

	none, err := s.Messages(context.Background(), uuid.New(), nil)
	if err != nil || len(none) != 0 {
		t.Fatalf("unknown org should be empty: %v err=%v", none, err)
	}
}

func TestMemoryStoreQuarantinesMalformed(t *testing.T) {
	s := New(nil)
	org := uuid.New()
	s.AddPeople(org,
		core.Person{ID: "p1", CreatedAt: now},
		core.Person{ID: "p2"},
	)
	people, err := s.People(context.Background(), org, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(people) != 1 || people[0].ID != "p1" {
		t.Fatalf("malformed person should be dropped: %v", people)
	}
}

func TestMemoryStoreAddContribution(t *testing.T) {
	s := New(nil)
	org := uuid.New()

	id, err := s.AddContribution(context.Background(), core.Contribution{
		OrgID:      org,
		PersonID:   "p1",
		Amount:     decimal.RequireFromString("25.50"),
		ReceivedAt: now,
	})
	if err != nil || id == "" {
		t.Fatalf("unexpected add: id=%q err=%v", id, err)
	}

	if _, err := s.AddContribution(context.Background(), core.Contribution{OrgID: org, ReceivedAt: now}); err == nil {
		t.Fatal("zero amount should be rejected")
	}

	gifts, _ := s.Contributions(context.Background(), org, nil)
	if len(gifts) != 1 || gifts[0].ID != id {
		t.Fatalf("unexpected contributions: %v", gifts)
	}
}

func TestSeedPopulatesEveryDomain(t *testing.T) {
	s := New(nil)
	org := uuid.New()
	s.Seed(org, now)
	ctx := context.Background()

	counts := map[string]int{}
	p, _ := s.People(ctx, org, nil)
	counts["people"] = len(p)
	c, _ := s.Contributions(ctx, org, nil)
	counts["contributions"] = len(c)
	e, _ := s.Events(ctx, org, nil)
	counts["events"] = len(e)
	a, _ := s.Attendance(ctx, org, nil)
	counts["attendance"] = len(a)
	tk, _ := s.Tasks(ctx, org, nil)
	counts["tasks"] = len(tk)
	m, _ := s.Messages(ctx, org, nil)
	counts["messages"] = len(m)
	h, _ := s.Households(ctx, org, nil)
	counts["households"] = len(h)

	for domain, n := range counts {
		if n == 0 {
			t.Errorf("seed left %s empty", domain)
		}
	}
}
