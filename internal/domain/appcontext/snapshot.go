package appcontext

import "time"

// TimeBucket is the coarse time-of-day classification used by rule
// predicates and by the content selector to pick copy appropriate for the
// moment ("good morning" vs. "wind down").
type TimeBucket string

const (
	BucketMorning   TimeBucket = "morning"   // 05:00-11:59
	BucketAfternoon TimeBucket = "afternoon" // 12:00-16:59
	BucketEvening   TimeBucket = "evening"   // 17:00-21:59
	BucketNight     TimeBucket = "night"     // 22:00-04:59
)

// BucketFor classifies a local wall-clock instant into a TimeBucket.
func BucketFor(t time.Time) TimeBucket {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return BucketMorning
	case h >= 12 && h < 17:
		return BucketAfternoon
	case h >= 17 && h < 22:
		return BucketEvening
	default:
		return BucketNight
	}
}

// Snapshot is an immutable view of the current user/app facts. A new
// snapshot replaces the previous one wholesale on every context update;
// predicates read it but never mutate it.
type Snapshot struct {
	Timestamp time.Time
	Bucket    TimeBucket
	DayOfWeek time.Weekday
	fields    map[string]any
}

// Fields returns a copy of the fact map. The snapshot's own map is never
// handed out, so callers cannot mutate a snapshot after the fact.
func (s Snapshot) Fields() map[string]any {
	out := make(map[string]any, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

// Has reports whether a fact is present at all.
func (s Snapshot) Has(key string) bool {
	_, ok := s.fields[key]
	return ok
}

// Bool reads a boolean fact. Missing or mistyped facts read as false, so
// predicates stay total without per-field error handling.
func (s Snapshot) Bool(key string) bool {
	v, ok := s.fields[key].(bool)
	return ok && v
}

// String reads a string fact, empty when missing or mistyped.
func (s Snapshot) String(key string) string {
	v, _ := s.fields[key].(string)
	return v
}

// Float reads a numeric fact. Context sources report numbers as float64
// or int depending on origin; both are accepted.
func (s Snapshot) Float(key string) (float64, bool) {
	switch v := s.fields[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Time reads a timestamp fact, either a time.Time or an RFC 3339 string.
func (s Snapshot) Time(key string) (time.Time, bool) {
	switch v := s.fields[key].(type) {
	case time.Time:
		return v, true
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
