package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"flock/internal/core"
	"flock/internal/log"
)

func TestValidDropsMalformedRecords(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	people := []core.Person{
		{ID: "p1", CreatedAt: now},
		{ID: "p2"},
		{CreatedAt: now},
		{ID: "p4", CreatedAt: now},
	}
	got := Valid(context.Background(), log.Discard(), core.DomainPeople, people)

	assert.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "p4", got[1].ID)
	assert.Len(t, people, 4, "input must not be modified")
}

func TestValidEmpty(t *testing.T) {
	got := Valid[core.Task](context.Background(), nil, core.DomainTasks, nil)
	assert.Empty(t, got)
}
