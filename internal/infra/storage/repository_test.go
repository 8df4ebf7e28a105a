package storage

import (
	"testing"
	"time"

	"health_notification_engine/internal/domain/rule"
	"health_notification_engine/internal/domain/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetSet(t *testing.T) {
	m := NewMemory()

	_, err := m.Get("absent")
	assert.Equal(t, ErrKeyNotFound, err)

	require.NoError(t, m.Set("k", []byte("v1")))
	v, err := m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	// The returned slice is a copy; mutating it must not affect the store.
	v[0] = 'X'
	v2, err := m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v2)

	require.NoError(t, m.Close())
}

func TestRuleRepositoryRoundTrip(t *testing.T) {
	repo := NewKVRuleRepository(NewMemory())

	_, err := repo.LoadRules()
	assert.Equal(t, ErrKeyNotFound, err, "absent key must surface as ErrKeyNotFound for seeding")

	rules := rule.DefaultRules()
	require.NoError(t, repo.SaveRules(rules))

	loaded, err := repo.LoadRules()
	require.NoError(t, err)
	assert.Equal(t, rules, loaded)
}

func TestRuleRepositoryUpsertAndSetEnabled(t *testing.T) {
	store := NewMemory()
	repo := NewKVRuleRepository(store)

	r := rule.Rule{ID: "r1", Name: "one", Category: "hydration", Priority: 1, MaxPerDay: 2, Enabled: true}
	require.NoError(t, repo.UpsertRule(r), "upsert into an empty store appends")

	r.Priority = 9
	require.NoError(t, repo.UpsertRule(r))
	loaded, err := repo.LoadRules()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 9, loaded[0].Priority)

	require.NoError(t, repo.SetEnabled("r1", false))
	loaded, err = repo.LoadRules()
	require.NoError(t, err)
	assert.False(t, loaded[0].Enabled)

	assert.Error(t, repo.SetEnabled("missing", true))
}

func TestRuleRepositoryCorruptDocument(t *testing.T) {
	store := NewMemory()
	require.NoError(t, store.Set(KeyRules, []byte("{nope")))

	_, err := NewKVRuleRepository(store).LoadRules()
	require.Error(t, err)
	assert.NotEqual(t, ErrKeyNotFound, err, "corruption is not the same as first boot")
}

func TestStateRepositoryRoundTrip(t *testing.T) {
	repo := NewKVStateRepository(NewMemory())

	states, err := repo.LoadStates()
	require.NoError(t, err, "missing states document means a fresh empty map")
	assert.Empty(t, states)

	fired := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	states = map[string]*rule.FiringState{
		"r1": {RuleID: "r1", LastFiredAt: &fired, FiredTodayCount: 2, DayBucket: "2026-03-10"},
	}
	require.NoError(t, repo.SaveStates(states))

	loaded, err := repo.LoadStates()
	require.NoError(t, err)
	require.Contains(t, loaded, "r1")
	assert.Equal(t, 2, loaded["r1"].FiredTodayCount)
	require.NotNil(t, loaded["r1"].LastFiredAt)
	assert.True(t, loaded["r1"].LastFiredAt.Equal(fired))
	assert.Equal(t, "2026-03-10", loaded["r1"].DayBucket)
}

func TestScheduleRepositoryRoundTrip(t *testing.T) {
	repo := NewKVScheduleRepository(NewMemory())

	_, err := repo.LoadEntries()
	assert.Equal(t, ErrKeyNotFound, err)

	next := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	entries := []schedule.Entry{
		{ID: "s1", Category: "morning_checkin", LocalTime: "09:00", Enabled: true, NextFireAt: &next},
	}
	require.NoError(t, repo.SaveEntries(entries))

	loaded, err := repo.LoadEntries()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "09:00", loaded[0].LocalTime)
	require.NotNil(t, loaded[0].NextFireAt)
	assert.True(t, loaded[0].NextFireAt.Equal(next))
}

func TestBoltStoreRoundTrip(t *testing.T) {
	path := t.TempDir() + "/notifier.db"
	store, err := NewBoltStore(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get("absent")
	assert.Equal(t, ErrKeyNotFound, err)

	require.NoError(t, store.Set("k", []byte("v")))
	v, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}
