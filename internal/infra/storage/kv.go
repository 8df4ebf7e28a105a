package storage

import (
	"errors"
	"sync"
)

// Storage keys used by the engine. Each holds one JSON document; seeding
// happens exactly once, when a key is absent.
const (
	KeyRules            = "rules"
	KeyRuleFiringStates = "rule_firing_states"
	KeyScheduleEntries  = "daily_schedule_entries"
)

// ErrKeyNotFound is returned by Get when a key has never been written.
// Repositories use it to distinguish "first boot, seed defaults" from a
// real storage failure.
var ErrKeyNotFound = errors.New("storage: key not found")

// KVStore is the generic durable key-value store the engine persists
// into. Implementations: bbolt file (default), Postgres table, in-memory.
type KVStore interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}

// Memory is a KVStore backed by a map. Used in tests and for ephemeral
// runs where durability is not wanted.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

func (m *Memory) Close() error { return nil }
