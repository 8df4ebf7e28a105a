package rule

import "time"

// MaxPerDayUnlimited is the sentinel for rules with no daily cap. A cap of
// zero means the rule never fires; it does not mean unlimited.
const MaxPerDayUnlimited = -1

// Rule is a named condition plus rate-limit policy. The predicate itself
// is not part of the persisted record: predicates are pure functions
// registered by rule ID in a PredicateRegistry, so stored rule data stays
// plain JSON and a stale store can never resurrect old logic.
type Rule struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category"` // content-selector category
	Priority        int    `json:"priority"` // higher fires/sorts first
	CooldownSeconds int    `json:"cooldown_seconds"`
	MaxPerDay       int    `json:"max_per_day"` // 0 = never, -1 = unlimited
	Enabled         bool   `json:"enabled"`
}

// Cooldown returns the rule's cooldown as a duration.
func (r Rule) Cooldown() time.Duration {
	return time.Duration(r.CooldownSeconds) * time.Second
}

// FiringState is the per-rule rate-limit bookkeeping. It is mutated only
// by the dispatcher after a successful send, plus the lazy day-bucket roll
// performed during evaluation.
type FiringState struct {
	RuleID          string     `json:"rule_id"`
	LastFiredAt     *time.Time `json:"last_fired_at,omitempty"`
	FiredTodayCount int        `json:"fired_today_count"`
	DayBucket       string     `json:"day_bucket"` // local calendar date, DayBucketLayout
}

// DayBucketLayout formats the local calendar date a daily counter belongs to.
const DayBucketLayout = "2006-01-02"

// DayBucketFor returns the day bucket for a local instant.
func DayBucketFor(now time.Time) string {
	return now.Format(DayBucketLayout)
}

// RollDay lazily resets the daily counter when now has crossed into a new
// local calendar day. Returns true when the state changed and needs to be
// written back. The reset is applied before any cap check in the same
// evaluation step, so no pass ever observes yesterday's count.
func (s *FiringState) RollDay(now time.Time) bool {
	today := DayBucketFor(now)
	if s.DayBucket == today {
		return false
	}
	s.DayBucket = today
	s.FiredTodayCount = 0
	return true
}

// RecordFiring updates the state after a confirmed successful send.
func (s *FiringState) RecordFiring(now time.Time) {
	t := now
	s.LastFiredAt = &t
	s.RollDay(now)
	s.FiredTodayCount++
}
