package rule

import (
	"testing"
	"time"

	"health_notification_engine/internal/domain/appcontext"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultReg() *PredicateRegistry {
	reg := NewPredicateRegistry()
	RegisterDefaults(reg)
	return reg
}

func snapWith(t *testing.T, now time.Time, facts map[string]any) appcontext.Snapshot {
	t.Helper()
	return appcontext.NewBuilder().Update(facts, now)
}

func TestDefaultPredicatesAreRegisteredForAllDefaultRules(t *testing.T) {
	reg := defaultReg()
	for _, r := range DefaultRules() {
		_, ok := reg.Lookup(r.ID)
		assert.True(t, ok, "default rule %q must have a predicate", r.ID)
	}
}

func TestHydrationGapPredicate(t *testing.T) {
	reg := defaultReg()
	pred, ok := reg.Lookup("hydration_gap")
	require.True(t, ok)

	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	assert.False(t, pred(snapWith(t, now, map[string]any{}), FiringState{}),
		"no water fact reported means no nagging")
	assert.False(t, pred(snapWith(t, now, map[string]any{
		FactLastWaterAt: now.Add(-time.Hour).Format(time.RFC3339),
	}), FiringState{}))
	assert.True(t, pred(snapWith(t, now, map[string]any{
		FactLastWaterAt: now.Add(-4 * time.Hour).Format(time.RFC3339),
	}), FiringState{}))
}

func TestCaffeineCutoffPredicate(t *testing.T) {
	pred, ok := defaultReg().Lookup("caffeine_cutoff")
	require.True(t, ok)

	morning := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	afternoon := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	flag := map[string]any{FactCaffeineSlowMetab: true}

	assert.False(t, pred(snapWith(t, morning, flag), FiringState{}), "only warns in the afternoon")
	assert.True(t, pred(snapWith(t, afternoon, flag), FiringState{}))
	assert.False(t, pred(snapWith(t, afternoon, map[string]any{FactCaffeineSlowMetab: false}), FiringState{}))
}

func TestUVAlertPredicate(t *testing.T) {
	pred, ok := defaultReg().Lookup("uv_alert")
	require.True(t, ok)

	noon := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, pred(snapWith(t, noon, map[string]any{
		FactUVSensitive: true,
		FactUVIndex:     7.0,
	}), FiringState{}))
	assert.False(t, pred(snapWith(t, noon, map[string]any{
		FactUVSensitive: true,
		FactUVIndex:     3.0,
	}), FiringState{}))
	assert.False(t, pred(snapWith(t, noon, map[string]any{
		FactUVSensitive: false,
		FactUVIndex:     9.0,
	}), FiringState{}))
	assert.False(t, pred(snapWith(t, noon, map[string]any{
		FactUVSensitive: true,
	}), FiringState{}), "missing UV index reads as not high")
}

func TestLactoseWarningPredicate(t *testing.T) {
	pred, ok := defaultReg().Lookup("lactose_warning")
	require.True(t, ok)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, pred(snapWith(t, now, map[string]any{
		FactLactoseIntolerant: true,
		FactLoggedDairyToday:  true,
	}), FiringState{}))
	assert.False(t, pred(snapWith(t, now, map[string]any{
		FactLactoseIntolerant: true,
	}), FiringState{}))
}
