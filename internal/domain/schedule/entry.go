package schedule

import "time"

// Entry is a fixed daily notification slot: a local time of day at which
// one notification fires per day, independent of conditional rules.
// Entries are created from the default list on first boot and are never
// deleted, only disabled.
type Entry struct {
	ID          string     `json:"id"`
	Category    string     `json:"category"`   // content-selector category
	LocalTime   string     `json:"local_time"` // "HH:MM"
	Enabled     bool       `json:"enabled"`
	NextFireAt  *time.Time `json:"next_fire_at,omitempty"`
	LastFiredAt *time.Time `json:"last_fired_at,omitempty"`
}

// SlotPriority is the payload priority used for slot firings. Slots are
// routine touchpoints; conditional rules outrank them when both fire.
const SlotPriority = 10

// Repository defines durable CRUD over schedule entries.
type Repository interface {
	LoadEntries() ([]Entry, error)
	SaveEntries(entries []Entry) error
}

// DefaultEntries is the seed slot list applied exactly once, on first boot
// when the schedule store key is absent.
func DefaultEntries() []Entry {
	return []Entry{
		{ID: "morning_checkin", Category: "morning_checkin", LocalTime: "09:00", Enabled: true},
		{ID: "midday_hydration", Category: "hydration", LocalTime: "13:00", Enabled: true},
		{ID: "evening_summary", Category: "evening_summary", LocalTime: "21:00", Enabled: true},
	}
}
