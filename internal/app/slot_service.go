package app

import (
	"fmt"

	"health_notification_engine/internal/domain/appcontext"
	"health_notification_engine/internal/domain/notify"
	"health_notification_engine/internal/domain/schedule"
)

// TickSlots runs one pass over the fixed daily slots: every enabled entry
// whose nextFireAt is unset or has been reached produces one firing, and
// is re-armed from now. Because re-arming seeds from now rather than from
// the missed instant, a device that slept through several windows gets at
// most one notification per slot on wake, not a flood.
func (s *EngineService) TickSlots() error {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	now := s.clk.Now()
	bucket := appcontext.BucketFor(now)

	s.stateMu.Lock()
	var due []schedule.Entry
	for _, entry := range s.entries {
		if schedule.Due(entry, now) {
			due = append(due, entry)
		}
	}
	s.stateMu.Unlock()

	for _, entry := range due {
		s.dispatchSlotFiring(entry, bucket)
	}
	return nil
}

// dispatchSlotFiring sends one slot notification and, on success only,
// stamps lastFiredAt and re-arms nextFireAt. A failed send leaves the
// entry due, so the next tick retries it.
func (s *EngineService) dispatchSlotFiring(entry schedule.Entry, bucket appcontext.TimeBucket) {
	firing := notify.Firing{
		Kind:     notify.SourceSlot,
		SourceID: entry.ID,
		Category: entry.Category,
		Priority: schedule.SlotPriority,
	}

	payload, err := s.buildPayload(firing, bucket)
	if err != nil {
		s.logger.Errorf("Could not build payload for slot %q: %v", entry.ID, err)
		return
	}

	if err := s.sink.SendNow(payload); err != nil {
		s.logger.Warnf("Sink rejected notification for slot %q, will retry on next tick: %v", entry.ID, err)
		return
	}

	now := s.clk.Now()
	next, err := schedule.ComputeNextFire(entry, now)
	if err != nil {
		// Malformed localTime: the send already happened, so record it,
		// but the entry stays un-armed until the slot time is fixed.
		s.logger.Errorf("Could not re-arm slot %q: %v", entry.ID, err)
	}

	s.stateMu.Lock()
	for i := range s.entries {
		if s.entries[i].ID != entry.ID {
			continue
		}
		fired := now
		s.entries[i].LastFiredAt = &fired
		if err == nil {
			s.entries[i].NextFireAt = &next
		}
		break
	}
	s.persistEntriesLocked()
	s.stateMu.Unlock()

	s.logger.Infof("Sent notification for slot %q (category %s).", entry.ID, entry.Category)
}

// SetSlotEnabled enables or disables a daily slot. Disabling clears the
// armed instant; re-enabling leaves nextFireAt unset so the next tick
// re-arms (and fires) it.
func (s *EngineService) SetSlotEnabled(id string, enabled bool) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID != id {
			continue
		}
		s.entries[i].Enabled = enabled
		if !enabled {
			s.entries[i].NextFireAt = nil
		}
		s.persistEntriesLocked()
		return nil
	}
	return fmt.Errorf("schedule entry %q not found", id)
}

// SetSlotTime changes a slot's local fire time and recomputes its next
// occurrence from the current instant.
func (s *EngineService) SetSlotTime(id, localTime string) error {
	if _, _, err := schedule.ParseLocalTime(localTime); err != nil {
		return err
	}

	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID != id {
			continue
		}
		s.entries[i].LocalTime = localTime
		next, err := schedule.ComputeNextFire(s.entries[i], s.clk.Now())
		if err != nil {
			return err
		}
		s.entries[i].NextFireAt = &next
		s.persistEntriesLocked()
		return nil
	}
	return fmt.Errorf("schedule entry %q not found", id)
}

// PreArmOSSchedules best-effort hands armed slots to the sink's
// OS-level scheduler. Purely an optimization: the tick loop stays the
// source of truth, so failures here are logged and ignored.
func (s *EngineService) PreArmOSSchedules() {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	s.stateMu.Lock()
	entries := make([]schedule.Entry, len(s.entries))
	copy(entries, s.entries)
	s.stateMu.Unlock()

	bucket := appcontext.BucketFor(s.clk.Now())
	for _, entry := range entries {
		if !entry.Enabled || entry.NextFireAt == nil {
			continue
		}
		firing := notify.Firing{
			Kind:     notify.SourceSlot,
			SourceID: entry.ID,
			Category: entry.Category,
			Priority: schedule.SlotPriority,
		}
		payload, err := s.buildPayload(firing, bucket)
		if err != nil {
			s.logger.Errorf("Could not build payload for slot %q: %v", entry.ID, err)
			continue
		}
		if err := s.sink.ScheduleAt(*entry.NextFireAt, payload); err != nil {
			s.logger.Debugf("Sink does not accept scheduled delivery for slot %q: %v", entry.ID, err)
		}
	}
}

// persistEntriesLocked writes the slot list back. Non-fatal on failure,
// same policy as firing states. Caller holds stateMu.
func (s *EngineService) persistEntriesLocked() {
	if err := s.scheduleRepo.SaveEntries(s.entries); err != nil {
		s.logger.Warnf("Could not persist schedule entries: %v", err)
	}
}

// Slots returns a copy of the current slot list.
func (s *EngineService) Slots() []schedule.Entry {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	out := make([]schedule.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
