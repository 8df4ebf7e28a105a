package clock

import "time"

// Clock provides wall-clock time to the engine. It is injected everywhere
// time is read so tests can drive evaluation with a fake clock instead of
// sleeping through cooldown windows.
type Clock interface {
	Now() time.Time
}

// System is the production Clock. All times are reported in the configured
// location so that day buckets and slot arithmetic use the user's local
// calendar, not the server's.
type System struct {
	Location *time.Location
}

func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.Local
	}
	return &System{Location: loc}
}

func (s *System) Now() time.Time {
	return time.Now().In(s.Location)
}
