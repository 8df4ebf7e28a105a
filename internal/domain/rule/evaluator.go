package rule

import (
	"sort"
	"time"

	"health_notification_engine/internal/domain/appcontext"
	"health_notification_engine/internal/domain/notify"
)

// PredicatePanic reports a predicate that panicked during evaluation. The
// rule is treated as non-matching for the pass; the caller decides how to
// log it.
type PredicatePanic struct {
	RuleID string
	Value  any
}

// Result is the outcome of one evaluation pass.
type Result struct {
	// Firings are the approved firings, sorted by priority descending,
	// ties broken by rule ID ascending.
	Firings []notify.Firing
	// StatesRolled is true when at least one firing state crossed into a
	// new local day and was reset; the caller must persist the states
	// together with any post-dispatch update.
	StatesRolled bool
	// Panics lists predicates that panicked this pass.
	Panics []PredicatePanic
}

// Evaluate runs one pass over the rule set against the snapshot. Each rule
// is checked independently: enabled, then the lazy day roll, then cooldown,
// then the daily cap, then the predicate. A missing state entry is created
// on the fly; a panicking predicate is isolated to its own rule and never
// aborts the pass.
//
// Evaluate mutates only the firing states in the map (day rolls and the
// creation of missing entries); recording an actual firing is the
// dispatcher's job, after the send succeeded.
func Evaluate(rules []Rule, snap appcontext.Snapshot, states map[string]*FiringState, reg *PredicateRegistry, now time.Time) Result {
	var res Result

	for _, r := range rules {
		if !r.Enabled {
			continue
		}

		state, ok := states[r.ID]
		if !ok {
			state = &FiringState{RuleID: r.ID, DayBucket: DayBucketFor(now)}
			states[r.ID] = state
		}
		if state.RollDay(now) {
			res.StatesRolled = true
		}

		if state.LastFiredAt != nil && now.Sub(*state.LastFiredAt) < r.Cooldown() {
			continue
		}
		if r.MaxPerDay >= 0 && state.FiredTodayCount >= r.MaxPerDay {
			continue
		}

		pred, ok := reg.Lookup(r.ID)
		if !ok {
			continue
		}

		matched, panicked := runPredicate(pred, snap, *state)
		if panicked != nil {
			res.Panics = append(res.Panics, PredicatePanic{RuleID: r.ID, Value: panicked})
			continue
		}
		if !matched {
			continue
		}

		res.Firings = append(res.Firings, notify.Firing{
			Kind:     notify.SourceRule,
			SourceID: r.ID,
			Category: r.Category,
			Priority: r.Priority,
		})
	}

	sort.SliceStable(res.Firings, func(i, j int) bool {
		if res.Firings[i].Priority != res.Firings[j].Priority {
			return res.Firings[i].Priority > res.Firings[j].Priority
		}
		return res.Firings[i].SourceID < res.Firings[j].SourceID
	})

	return res
}

// runPredicate invokes a predicate with panic isolation. The state is
// passed by value so a misbehaving predicate cannot corrupt bookkeeping.
func runPredicate(p Predicate, snap appcontext.Snapshot, state FiringState) (matched bool, panicked any) {
	defer func() {
		if v := recover(); v != nil {
			panicked = v
			matched = false
		}
	}()
	return p(snap, state), nil
}
