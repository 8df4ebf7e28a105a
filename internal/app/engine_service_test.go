package app_test

import (
	"errors"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	"health_notification_engine/internal/app"
	"health_notification_engine/internal/domain/appcontext"
	"health_notification_engine/internal/domain/notify"
	"health_notification_engine/internal/domain/rule"
	"health_notification_engine/internal/domain/schedule"
	"health_notification_engine/internal/infra/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable Clock so tests drive cooldowns and day rollovers
// without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock { return &fakeClock{now: start} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type scheduledCall struct {
	at      time.Time
	payload notify.Payload
}

// fakeSink records deliveries and can be told to fail.
type fakeSink struct {
	mu        sync.Mutex
	failWith  error
	sent      []notify.Payload
	scheduled []scheduledCall
}

func (s *fakeSink) SendNow(p notify.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.sent = append(s.sent, p)
	return nil
}

func (s *fakeSink) ScheduleAt(at time.Time, p notify.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.scheduled = append(s.scheduled, scheduledCall{at: at, payload: p})
	return nil
}

func (s *fakeSink) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *fakeSink) sentPayloads() []notify.Payload {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notify.Payload, len(s.sent))
	copy(out, s.sent)
	return out
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var testStart = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store  *storage.Memory
	clk    *fakeClock
	sink   *fakeSink
	engine *app.EngineService
}

// newFixture boots an engine over an in-memory store pre-populated with
// the given rules and slots. A nil slice leaves the store key absent so
// seeding kicks in.
func newFixture(t *testing.T, rules []rule.Rule, entries []schedule.Entry, reg *rule.PredicateRegistry) *fixture {
	t.Helper()

	store := storage.NewMemory()
	ruleRepo := storage.NewKVRuleRepository(store)
	scheduleRepo := storage.NewKVScheduleRepository(store)
	if rules != nil {
		require.NoError(t, ruleRepo.SaveRules(rules))
	}
	if entries != nil {
		require.NoError(t, scheduleRepo.SaveEntries(entries))
	}

	clk := newFakeClock(testStart)
	sink := &fakeSink{}
	engine := app.NewEngineService(
		ruleRepo,
		storage.NewKVStateRepository(store),
		scheduleRepo,
		sink,
		clk,
		reg,
		rand.New(rand.NewSource(7)),
		quietLogger(),
	)
	return &fixture{store: store, clk: clk, sink: sink, engine: engine}
}

func (f *fixture) storedStates(t *testing.T) map[string]*rule.FiringState {
	t.Helper()
	states, err := storage.NewKVStateRepository(f.store).LoadStates()
	require.NoError(t, err)
	return states
}

func alwaysOnRule(id string, priority int) rule.Rule {
	return rule.Rule{
		ID:              id,
		Name:            id,
		Category:        "hydration",
		Priority:        priority,
		CooldownSeconds: 0,
		MaxPerDay:       rule.MaxPerDayUnlimited,
		Enabled:         true,
	}
}

func alwaysOnRegistry(ids ...string) *rule.PredicateRegistry {
	reg := rule.NewPredicateRegistry()
	for _, id := range ids {
		reg.Register(id, func(_ appcontext.Snapshot, _ rule.FiringState) bool { return true })
	}
	return reg
}

func TestSeedsDefaultsOnFirstBoot(t *testing.T) {
	f := newFixture(t, nil, nil, rule.NewPredicateRegistry())

	assert.Equal(t, rule.DefaultRules(), f.engine.Rules())
	assert.Equal(t, schedule.DefaultEntries(), f.engine.Slots())

	// The seed must have been written back so the next boot loads it.
	stored, err := storage.NewKVRuleRepository(f.store).LoadRules()
	require.NoError(t, err)
	assert.Equal(t, rule.DefaultRules(), stored)
	storedSlots, err := storage.NewKVScheduleRepository(f.store).LoadEntries()
	require.NoError(t, err)
	assert.Equal(t, schedule.DefaultEntries(), storedSlots)
}

func TestFallsBackToDefaultsOnCorruptStore(t *testing.T) {
	store := storage.NewMemory()
	require.NoError(t, store.Set(storage.KeyRules, []byte("{corrupt")))
	require.NoError(t, store.Set(storage.KeyScheduleEntries, []byte("[broken")))

	engine := app.NewEngineService(
		storage.NewKVRuleRepository(store),
		storage.NewKVStateRepository(store),
		storage.NewKVScheduleRepository(store),
		&fakeSink{},
		newFakeClock(testStart),
		rule.NewPredicateRegistry(),
		rand.New(rand.NewSource(7)),
		quietLogger(),
	)

	assert.Equal(t, rule.DefaultRules(), engine.Rules())
	assert.Equal(t, schedule.DefaultEntries(), engine.Slots())
}

func TestContextUpdateTriggersSend(t *testing.T) {
	f := newFixture(t, []rule.Rule{alwaysOnRule("r1", 10)}, []schedule.Entry{}, alwaysOnRegistry("r1"))

	_, err := f.engine.UpdateContext(map[string]any{"anything": true})
	require.NoError(t, err)

	sent := f.sink.sentPayloads()
	require.Len(t, sent, 1)
	assert.Equal(t, notify.SourceRule, sent[0].Kind)
	assert.Equal(t, "r1", sent[0].SourceID)
	assert.NotEmpty(t, sent[0].ID)
	assert.NotEmpty(t, sent[0].Title)
	assert.NotEmpty(t, sent[0].Body)

	states := f.storedStates(t)
	require.Contains(t, states, "r1")
	assert.Equal(t, 1, states["r1"].FiredTodayCount)
	require.NotNil(t, states["r1"].LastFiredAt)
	assert.True(t, states["r1"].LastFiredAt.Equal(testStart))
}

func TestBatchedUpdatesDoNotEvaluate(t *testing.T) {
	f := newFixture(t, []rule.Rule{alwaysOnRule("r1", 10)}, []schedule.Entry{}, alwaysOnRegistry("r1"))

	f.engine.UpdateContextBatched(map[string]any{"a": 1})
	f.engine.UpdateContextBatched(map[string]any{"b": 2})
	assert.Empty(t, f.sink.sentPayloads(), "batched updates must not trigger sends")

	require.NoError(t, f.engine.EvaluateNow())
	assert.Len(t, f.sink.sentPayloads(), 1)
}

func TestCooldownAcrossPasses(t *testing.T) {
	r := alwaysOnRule("r1", 10)
	r.CooldownSeconds = 3600
	f := newFixture(t, []rule.Rule{r}, []schedule.Entry{}, alwaysOnRegistry("r1"))

	_, err := f.engine.UpdateContext(nil)
	require.NoError(t, err)
	require.Len(t, f.sink.sentPayloads(), 1)

	f.clk.Advance(30 * time.Minute)
	_, err = f.engine.UpdateContext(nil)
	require.NoError(t, err)
	assert.Len(t, f.sink.sentPayloads(), 1, "inside cooldown window, no new firing")

	f.clk.Advance(30 * time.Minute)
	_, err = f.engine.UpdateContext(nil)
	require.NoError(t, err)
	assert.Len(t, f.sink.sentPayloads(), 2, "cooldown elapsed")
}

func TestDailyCapAndRollover(t *testing.T) {
	r := alwaysOnRule("r1", 10)
	r.MaxPerDay = 3
	f := newFixture(t, []rule.Rule{r}, []schedule.Entry{}, alwaysOnRegistry("r1"))

	for i := 0; i < 6; i++ {
		_, err := f.engine.UpdateContext(nil)
		require.NoError(t, err)
		f.clk.Advance(time.Minute)
	}
	assert.Len(t, f.sink.sentPayloads(), 3, "at most maxPerDay firings within one local day")

	// Next local day: counter resets lazily before the cap check.
	f.clk.Set(testStart.AddDate(0, 0, 1))
	_, err := f.engine.UpdateContext(nil)
	require.NoError(t, err)
	assert.Len(t, f.sink.sentPayloads(), 4)

	states := f.storedStates(t)
	assert.Equal(t, 1, states["r1"].FiredTodayCount)
	assert.Equal(t, rule.DayBucketFor(f.clk.Now()), states["r1"].DayBucket)
}

func TestPersistAfterSuccessOnly(t *testing.T) {
	f := newFixture(t, []rule.Rule{alwaysOnRule("r1", 10)}, []schedule.Entry{}, alwaysOnRegistry("r1"))

	f.sink.fail(errors.New("delivery down"))
	_, err := f.engine.UpdateContext(nil)
	require.NoError(t, err)

	states := f.storedStates(t)
	if st, ok := states["r1"]; ok {
		assert.Zero(t, st.FiredTodayCount, "a failed send must not spend the rate-limit slot")
		assert.Nil(t, st.LastFiredAt)
	}

	// Sink recovers: the very next pass retries and records.
	f.sink.fail(nil)
	_, err = f.engine.UpdateContext(nil)
	require.NoError(t, err)
	require.Len(t, f.sink.sentPayloads(), 1)
	states = f.storedStates(t)
	require.Contains(t, states, "r1")
	assert.Equal(t, 1, states["r1"].FiredTodayCount)
}

func TestDeliveryOrderFollowsPriorityThenID(t *testing.T) {
	rules := []rule.Rule{
		alwaysOnRule("zeta", 10),
		alwaysOnRule("alpha", 10),
		alwaysOnRule("high", 50),
	}
	f := newFixture(t, rules, []schedule.Entry{}, alwaysOnRegistry("zeta", "alpha", "high"))

	_, err := f.engine.UpdateContext(nil)
	require.NoError(t, err)

	sent := f.sink.sentPayloads()
	require.Len(t, sent, 3)
	assert.Equal(t, "high", sent[0].SourceID)
	assert.Equal(t, "alpha", sent[1].SourceID)
	assert.Equal(t, "zeta", sent[2].SourceID)
}

func TestPredicatePanicDoesNotStopOtherRules(t *testing.T) {
	reg := alwaysOnRegistry("healthy")
	reg.Register("broken", func(_ appcontext.Snapshot, _ rule.FiringState) bool {
		panic("predicate bug")
	})
	rules := []rule.Rule{alwaysOnRule("broken", 99), alwaysOnRule("healthy", 1)}
	f := newFixture(t, rules, []schedule.Entry{}, reg)

	_, err := f.engine.UpdateContext(nil)
	require.NoError(t, err)

	sent := f.sink.sentPayloads()
	require.Len(t, sent, 1)
	assert.Equal(t, "healthy", sent[0].SourceID)
}

func TestSetRuleEnabledStopsFiring(t *testing.T) {
	f := newFixture(t, []rule.Rule{alwaysOnRule("r1", 10)}, []schedule.Entry{}, alwaysOnRegistry("r1"))

	require.NoError(t, f.engine.SetRuleEnabled("r1", false))
	_, err := f.engine.UpdateContext(nil)
	require.NoError(t, err)
	assert.Empty(t, f.sink.sentPayloads())

	assert.Error(t, f.engine.SetRuleEnabled("missing", false))
}

func TestUpsertRuleValidatesAndPersists(t *testing.T) {
	f := newFixture(t, []rule.Rule{alwaysOnRule("r1", 10)}, []schedule.Entry{}, alwaysOnRegistry("r1"))

	assert.Error(t, f.engine.UpsertRule(rule.Rule{ID: ""}))
	assert.Error(t, f.engine.UpsertRule(rule.Rule{ID: "x", CooldownSeconds: -1}))
	assert.Error(t, f.engine.UpsertRule(rule.Rule{ID: "x", MaxPerDay: -2}))

	updated := alwaysOnRule("r1", 10)
	updated.Enabled = false
	require.NoError(t, f.engine.UpsertRule(updated))
	_, err := f.engine.UpdateContext(nil)
	require.NoError(t, err)
	assert.Empty(t, f.sink.sentPayloads())

	added := alwaysOnRule("r2", 5)
	require.NoError(t, f.engine.UpsertRule(added))
	stored, err := storage.NewKVRuleRepository(f.store).LoadRules()
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestStateSurvivesRestart(t *testing.T) {
	r := alwaysOnRule("r1", 10)
	r.MaxPerDay = 1
	f := newFixture(t, []rule.Rule{r}, []schedule.Entry{}, alwaysOnRegistry("r1"))

	_, err := f.engine.UpdateContext(nil)
	require.NoError(t, err)
	require.Len(t, f.sink.sentPayloads(), 1)

	// Same store, fresh engine: the cap must still hold.
	sink2 := &fakeSink{}
	engine2 := app.NewEngineService(
		storage.NewKVRuleRepository(f.store),
		storage.NewKVStateRepository(f.store),
		storage.NewKVScheduleRepository(f.store),
		sink2,
		newFakeClock(testStart.Add(time.Hour)),
		alwaysOnRegistry("r1"),
		rand.New(rand.NewSource(7)),
		quietLogger(),
	)
	_, err = engine2.UpdateContext(nil)
	require.NoError(t, err)
	assert.Empty(t, sink2.sent, "daily cap persisted across restart")
}
