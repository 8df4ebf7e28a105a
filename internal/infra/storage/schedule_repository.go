package storage

import (
	"encoding/json"
	"fmt"

	"health_notification_engine/internal/domain/schedule"
)

// KVScheduleRepository persists the daily slot list as one JSON document
// under KeyScheduleEntries. Implements schedule.Repository.
type KVScheduleRepository struct {
	store KVStore
}

func NewKVScheduleRepository(store KVStore) *KVScheduleRepository {
	return &KVScheduleRepository{store: store}
}

// LoadEntries reads the stored slot list. Returns ErrKeyNotFound untouched
// on first boot so the caller can seed defaults.
func (r *KVScheduleRepository) LoadEntries() ([]schedule.Entry, error) {
	raw, err := r.store.Get(KeyScheduleEntries)
	if err != nil {
		return nil, err
	}
	var entries []schedule.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("storage: decode schedule entries: %w", err)
	}
	return entries, nil
}

func (r *KVScheduleRepository) SaveEntries(entries []schedule.Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("storage: encode schedule entries: %w", err)
	}
	return r.store.Set(KeyScheduleEntries, raw)
}
