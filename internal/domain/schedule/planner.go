package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseLocalTime splits an "HH:MM" slot time into hour and minute.
func ParseLocalTime(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid local time %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in local time %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in local time %q", s)
	}
	return hour, minute, nil
}

// ComputeNextFire returns the next absolute instant the entry should fire
// at, strictly after now. A candidate equal to now counts as already
// passed, so re-arming immediately after a fire yields tomorrow's slot,
// never the same instant.
//
// The candidate is built with time.Date in now's location for each
// calendar day, rather than by adding 24h to a cached instant, so the
// wall-clock time stays correct across DST transitions.
func ComputeNextFire(entry Entry, now time.Time) (time.Time, error) {
	hour, minute, err := ParseLocalTime(entry.LocalTime)
	if err != nil {
		return time.Time{}, err
	}

	loc := now.Location()
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
	if !candidate.After(now) {
		tomorrow := now.AddDate(0, 0, 1)
		candidate = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), hour, minute, 0, 0, loc)
	}
	return candidate, nil
}

// Due reports whether the entry should fire on a tick at now. An entry
// with no armed NextFireAt is due immediately; otherwise it is due once
// now has reached the armed instant. However many windows were missed
// while the app was suspended, a single tick emits at most one firing,
// because re-arming seeds from now.
func Due(entry Entry, now time.Time) bool {
	if !entry.Enabled {
		return false
	}
	return entry.NextFireAt == nil || !now.Before(*entry.NextFireAt)
}
