package sheets

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"flock/internal/core"
	"flock/internal/timewindow"
)

type fakeValues struct {
	tabs     map[string][][]interface{}
	err      error
	appended map[string][][]interface{}
}

func newFakeValues() *fakeValues {
	return &fakeValues{tabs: map[string][][]interface{}{}, appended: map[string][][]interface{}{}}
}

func (f *fakeValues) Get(_ context.Context, rng string) ([][]interface{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	tab, cells, _ := strings.Cut(rng, "!")
	values := f.tabs[tab]
	if cells == "1:1" && len(values) > 0 {
		return values[:1], nil
	}
	return values, nil
}

func (f *fakeValues) Append(_ context.Context, rng string, row []interface{}) error {
	if f.err != nil {
		return f.err
	}
	tab, _, _ := strings.Cut(rng, "!")
	f.appended[tab] = append(f.appended[tab], row)
	f.tabs[tab] = append(f.tabs[tab], row)
	return nil
}

func contribution(org uuid.UUID, id, amount string, at time.Time) core.Contribution {
	return core.Contribution{
		ID:         id,
		OrgID:      org,
		PersonID:   "p1",
		Amount:     decimal.RequireFromString(amount),
		Fund:       "Tithe",
		Method:     "Cash",
		ReceivedAt: at,
	}
}

func TestClient_ContributionsWindowAndQuarantine(t *testing.T) {
	api := newFakeValues()
	api.tabs[tabContributions] = [][]interface{}{
		{"ID", "Org", "Person ID", "Amount", "Fund", "Method", "Received"},
		{"c1", orgA.String(), "p1", 50.0, "Tithe", "Cash", "2026-10-04"},
		{"c2", orgA.String(), "p2", 20.0, "Tithe", "Cash", "2026-09-27"},
		{"c3", orgA.String(), "p3", "abc", "Tithe", "Cash", "2026-10-05"},
		{"", orgA.String(), "p4", 10.0, "Tithe", "Cash", "2026-10-05"},
	}
	client := NewWithAPI(api, time.UTC, nil)

	w := timewindow.CurrentMonth(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC))
	got, err := client.Contributions(context.Background(), orgA, &w)
	if err != nil {
		t.Fatalf("Contributions: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c1" {
		t.Fatalf("expected only c1, got %+v", got)
	}

	all, err := client.Contributions(context.Background(), orgA, nil)
	if err != nil {
		t.Fatalf("Contributions: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 valid contributions all-time, got %d", len(all))
	}
}

func TestClient_ReadErrorIsWrapped(t *testing.T) {
	api := newFakeValues()
	api.err = errors.New("quota exceeded")
	client := NewWithAPI(api, nil, nil)

	_, err := client.Events(context.Background(), orgA, nil)
	if err == nil || !strings.Contains(err.Error(), "read Events!A:Z: quota exceeded") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_AddContribution(t *testing.T) {
	api := newFakeValues()
	api.tabs[tabContributions] = [][]interface{}{
		{"ID", "Org", "Person ID", "Amount", "Fund", "Method", "Received"},
	}
	client := NewWithAPI(api, time.UTC, nil)
	at := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	id, err := client.AddContribution(context.Background(), contribution(orgA, "", "75.10", at))
	if err != nil {
		t.Fatalf("AddContribution: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}
	rows := api.appended[tabContributions]
	if len(rows) != 1 {
		t.Fatalf("expected one appended row, got %d", len(rows))
	}
	if rows[0][0] != id || rows[0][3] != "75.1" {
		t.Errorf("unexpected row: %v", rows[0])
	}

	got, err := client.Contributions(context.Background(), orgA, nil)
	if err != nil {
		t.Fatalf("Contributions: %v", err)
	}
	if len(got) != 1 || !got[0].ReceivedAt.Equal(at) {
		t.Fatalf("round trip failed: %+v", got)
	}
}

func TestClient_AddContributionRejectsInvalid(t *testing.T) {
	api := newFakeValues()
	client := NewWithAPI(api, nil, nil)

	_, err := client.AddContribution(context.Background(), contribution(orgA, "c1", "0", time.Now()))
	if !errors.Is(err, core.ErrMalformedRecord) {
		t.Fatalf("expected malformed record error, got %v", err)
	}
	if len(api.appended) != 0 {
		t.Fatal("nothing should be appended")
	}
}

func TestClient_AddContributionEmptyTab(t *testing.T) {
	client := NewWithAPI(newFakeValues(), nil, nil)
	_, err := client.AddContribution(context.Background(), contribution(orgA, "c1", "5", time.Now()))
	if err == nil || !strings.Contains(err.Error(), "tab is empty") {
		t.Fatalf("expected empty tab error, got %v", err)
	}
}
