package rule

import (
	"time"

	"health_notification_engine/internal/domain/appcontext"
)

// Predicate decides whether a rule's condition currently holds. Predicates
// must be pure functions of the snapshot and firing state: no I/O, no
// blocking, no mutation of either argument.
type Predicate func(snap appcontext.Snapshot, state FiringState) bool

// PredicateRegistry maps rule IDs to their predicates. Keeping predicates
// out of the persisted Rule record means conditions live in code and data
// stays data.
type PredicateRegistry struct {
	predicates map[string]Predicate
}

func NewPredicateRegistry() *PredicateRegistry {
	return &PredicateRegistry{predicates: map[string]Predicate{}}
}

// Register binds a predicate to a rule ID, replacing any previous binding.
func (r *PredicateRegistry) Register(ruleID string, p Predicate) {
	r.predicates[ruleID] = p
}

// Lookup returns the predicate for a rule ID, or false when none is
// registered. A rule without a predicate never matches.
func (r *PredicateRegistry) Lookup(ruleID string) (Predicate, bool) {
	p, ok := r.predicates[ruleID]
	return p, ok
}

// Context fact keys read by the default predicates. Context sources
// (profile screens, activity tracking) publish under these names.
const (
	FactLastWaterAt       = "last_water_intake_at"
	FactLastExerciseAt    = "last_exercise_at"
	FactUVIndex           = "uv_index"
	FactLoggedDairyToday  = "logged_dairy_today"
	FactCaffeineSlowMetab = "gene_caffeine_slow_metabolizer"
	FactUVSensitive       = "gene_uv_sensitive"
	FactInsomniaRisk      = "gene_insomnia_risk"
	FactLactoseIntolerant = "gene_lactose_intolerant"
)

const (
	hydrationGap = 3 * time.Hour
	exerciseGap  = 48 * time.Hour
	highUVIndex  = 6.0
)

// RegisterDefaults installs the predicates for the seeded rule set.
func RegisterDefaults(reg *PredicateRegistry) {
	reg.Register("hydration_gap", func(snap appcontext.Snapshot, _ FiringState) bool {
		last, ok := snap.Time(FactLastWaterAt)
		if !ok {
			return false
		}
		return snap.Timestamp.Sub(last) >= hydrationGap
	})

	reg.Register("exercise_gap", func(snap appcontext.Snapshot, _ FiringState) bool {
		last, ok := snap.Time(FactLastExerciseAt)
		if !ok {
			return false
		}
		return snap.Timestamp.Sub(last) >= exerciseGap
	})

	reg.Register("caffeine_cutoff", func(snap appcontext.Snapshot, _ FiringState) bool {
		return snap.Bool(FactCaffeineSlowMetab) && snap.Bucket == appcontext.BucketAfternoon
	})

	reg.Register("uv_alert", func(snap appcontext.Snapshot, _ FiringState) bool {
		if !snap.Bool(FactUVSensitive) {
			return false
		}
		idx, ok := snap.Float(FactUVIndex)
		return ok && idx >= highUVIndex
	})

	reg.Register("sleep_wind_down", func(snap appcontext.Snapshot, _ FiringState) bool {
		return snap.Bool(FactInsomniaRisk) && snap.Bucket == appcontext.BucketEvening
	})

	reg.Register("lactose_warning", func(snap appcontext.Snapshot, _ FiringState) bool {
		return snap.Bool(FactLactoseIntolerant) && snap.Bool(FactLoggedDairyToday)
	})
}
