package app

import (
	"fmt"
	"math/rand"
	"sync"

	"health_notification_engine/internal/domain/appcontext"
	"health_notification_engine/internal/domain/notify"
	"health_notification_engine/internal/domain/rule"
	"health_notification_engine/internal/domain/schedule"
	"health_notification_engine/internal/infra/clock"
	"health_notification_engine/internal/infra/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Engine is the decision core consumed by the surrounding application and
// by the tick scheduler: context updates come in, notification decisions
// go out.
type Engine interface {
	// UpdateContext merges partial facts into the context snapshot and
	// runs a synchronous evaluation pass.
	UpdateContext(partial map[string]any) (appcontext.Snapshot, error)
	// UpdateContextBatched merges facts without evaluating, for callers
	// coalescing a burst of small updates. Follow with EvaluateNow.
	UpdateContextBatched(partial map[string]any) appcontext.Snapshot
	// EvaluateNow runs an evaluation pass against the current snapshot.
	EvaluateNow() error
	// TickSlots fires any due daily slots and re-arms them.
	TickSlots() error
}

// EngineService implements Engine. One instance per process; all state it
// owns (rule set, firing states, slot entries) is read-modify-written
// under stateMu, and whole evaluation/tick passes are serialized by
// passMu so a slot tick never races a context pass over the same
// counters. The sink is called with passMu held but stateMu released, so
// slow deliveries never block context snapshot updates.
type EngineService struct {
	ruleRepo     rule.Repository
	stateRepo    rule.StateRepository
	scheduleRepo schedule.Repository
	sink         notify.Sink
	clk          clock.Clock
	registry     *rule.PredicateRegistry
	selector     *notify.Selector
	builder      *appcontext.Builder
	logger       *logrus.Logger

	passMu  sync.Mutex // serializes evaluate/dispatch/tick passes
	stateMu sync.Mutex // guards rules, states, entries

	rules   []rule.Rule
	states  map[string]*rule.FiringState
	entries []schedule.Entry
}

// NewEngineService wires the engine and loads (or seeds) persisted state.
// Storage problems during boot are logged and fall back to the built-in
// defaults; they never prevent the engine from starting.
func NewEngineService(
	ruleRepo rule.Repository,
	stateRepo rule.StateRepository,
	scheduleRepo schedule.Repository,
	sink notify.Sink,
	clk clock.Clock,
	registry *rule.PredicateRegistry,
	rnd *rand.Rand,
	logger *logrus.Logger,
) *EngineService {
	s := &EngineService{
		ruleRepo:     ruleRepo,
		stateRepo:    stateRepo,
		scheduleRepo: scheduleRepo,
		sink:         sink,
		clk:          clk,
		registry:     registry,
		selector:     notify.NewSelector(notify.DefaultTemplates(), rnd),
		builder:      appcontext.NewBuilder(),
		logger:       logger,
	}
	s.bootstrap()
	return s
}

// bootstrap loads rules, firing states and slot entries, seeding defaults
// on first boot and falling back to them when the store is unreadable.
func (s *EngineService) bootstrap() {
	rules, err := s.ruleRepo.LoadRules()
	switch {
	case err == storage.ErrKeyNotFound:
		rules = rule.DefaultRules()
		if saveErr := s.ruleRepo.SaveRules(rules); saveErr != nil {
			s.logger.Warnf("Could not persist seeded rule set: %v", saveErr)
		} else {
			s.logger.Infof("Seeded default rule set (%d rules).", len(rules))
		}
	case err != nil:
		s.logger.Warnf("Could not load rule set, falling back to defaults: %v", err)
		rules = rule.DefaultRules()
	}
	s.rules = rules

	states, err := s.stateRepo.LoadStates()
	if err != nil {
		s.logger.Warnf("Could not load rule firing states, starting fresh: %v", err)
		states = map[string]*rule.FiringState{}
	}
	s.states = states

	entries, err := s.scheduleRepo.LoadEntries()
	switch {
	case err == storage.ErrKeyNotFound:
		entries = schedule.DefaultEntries()
		if saveErr := s.scheduleRepo.SaveEntries(entries); saveErr != nil {
			s.logger.Warnf("Could not persist seeded schedule entries: %v", saveErr)
		} else {
			s.logger.Infof("Seeded default daily slots (%d entries).", len(entries))
		}
	case err != nil:
		s.logger.Warnf("Could not load schedule entries, falling back to defaults: %v", err)
		entries = schedule.DefaultEntries()
	}
	s.entries = entries
}

// UpdateContext merges the partial facts and runs an evaluation pass on
// the same call stack.
func (s *EngineService) UpdateContext(partial map[string]any) (appcontext.Snapshot, error) {
	snap := s.builder.Update(partial, s.clk.Now())
	return snap, s.runEvaluationPass(snap)
}

// UpdateContextBatched merges facts without triggering evaluation.
func (s *EngineService) UpdateContextBatched(partial map[string]any) appcontext.Snapshot {
	return s.builder.Update(partial, s.clk.Now())
}

// EvaluateNow evaluates the current snapshot, typically after a batch of
// UpdateContextBatched calls.
func (s *EngineService) EvaluateNow() error {
	return s.runEvaluationPass(s.builder.Current())
}

// runEvaluationPass is the evaluate, send, record-on-success sequence
// for conditional rules. The lazy day-bucket rolls performed by the
// evaluator are persisted as part of the pass.
func (s *EngineService) runEvaluationPass(snap appcontext.Snapshot) error {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	now := s.clk.Now()

	s.stateMu.Lock()
	res := rule.Evaluate(s.rules, snap, s.states, s.registry, now)
	if res.StatesRolled {
		s.persistStatesLocked()
	}
	s.stateMu.Unlock()

	for _, p := range res.Panics {
		s.logger.Errorf("Predicate for rule %q panicked, treated as non-matching: %v", p.RuleID, p.Value)
	}

	for _, firing := range res.Firings {
		s.dispatchRuleFiring(firing, snap.Bucket)
	}
	return nil
}

// dispatchRuleFiring builds the payload, sends it, and records the firing
// only after the sink confirmed delivery. A failed send leaves the firing
// state untouched so the rate-limit slot is not spent on a notification
// that was never shown.
func (s *EngineService) dispatchRuleFiring(firing notify.Firing, bucket appcontext.TimeBucket) {
	payload, err := s.buildPayload(firing, bucket)
	if err != nil {
		s.logger.Errorf("Could not build payload for rule %q: %v", firing.SourceID, err)
		return
	}

	if err := s.sink.SendNow(payload); err != nil {
		s.logger.Warnf("Sink rejected notification for rule %q, will retry on a later pass: %v", firing.SourceID, err)
		return
	}

	now := s.clk.Now()
	s.stateMu.Lock()
	state, ok := s.states[firing.SourceID]
	if !ok {
		state = &rule.FiringState{RuleID: firing.SourceID, DayBucket: rule.DayBucketFor(now)}
		s.states[firing.SourceID] = state
	}
	state.RecordFiring(now)
	s.persistStatesLocked()
	s.stateMu.Unlock()

	s.logger.Infof("Sent notification for rule %q (category %s).", firing.SourceID, firing.Category)
}

// buildPayload turns an approved firing into a concrete notification via
// the content selector.
func (s *EngineService) buildPayload(firing notify.Firing, bucket appcontext.TimeBucket) (notify.Payload, error) {
	tmpl, err := s.selector.Select(firing.Category, bucket)
	if err != nil {
		return notify.Payload{}, err
	}
	return notify.Payload{
		ID:       uuid.NewString(),
		Kind:     firing.Kind,
		SourceID: firing.SourceID,
		Title:    tmpl.Title,
		Body:     tmpl.Body,
		Category: firing.Category,
		Priority: firing.Priority,
	}, nil
}

// persistStatesLocked writes the firing states back. Persistence failures
// are non-fatal: the in-memory map stays authoritative and the next
// successful save re-syncs storage. Caller holds stateMu.
func (s *EngineService) persistStatesLocked() {
	if err := s.stateRepo.SaveStates(s.states); err != nil {
		s.logger.Warnf("Could not persist rule firing states: %v", err)
	}
}

// UpsertRule adds or replaces a rule definition. The in-memory set is
// authoritative; a failed save is logged and re-synced by the next one.
func (s *EngineService) UpsertRule(r rule.Rule) error {
	if r.ID == "" {
		return fmt.Errorf("rule id must not be empty")
	}
	if r.CooldownSeconds < 0 {
		return fmt.Errorf("rule %q: cooldown must be >= 0", r.ID)
	}
	if r.MaxPerDay < rule.MaxPerDayUnlimited {
		return fmt.Errorf("rule %q: max per day must be >= -1", r.ID)
	}

	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	replaced := false
	for i := range s.rules {
		if s.rules[i].ID == r.ID {
			s.rules[i] = r
			replaced = true
			break
		}
	}
	if !replaced {
		s.rules = append(s.rules, r)
	}
	if err := s.ruleRepo.SaveRules(s.rules); err != nil {
		s.logger.Warnf("Could not persist rule set after upsert of %q: %v", r.ID, err)
	}
	return nil
}

// SetRuleEnabled enables or disables a rule. Rules are never deleted,
// only disabled.
func (s *EngineService) SetRuleEnabled(id string, enabled bool) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == id {
			s.rules[i].Enabled = enabled
			if err := s.ruleRepo.SaveRules(s.rules); err != nil {
				s.logger.Warnf("Could not persist rule set after toggling %q: %v", id, err)
			}
			return nil
		}
	}
	return fmt.Errorf("rule %q not found", id)
}

// Rules returns a copy of the current rule set.
func (s *EngineService) Rules() []rule.Rule {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	out := make([]rule.Rule, len(s.rules))
	copy(out, s.rules)
	return out
}
