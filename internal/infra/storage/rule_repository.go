package storage

import (
	"encoding/json"
	"fmt"

	"health_notification_engine/internal/domain/rule"
)

// KVRuleRepository persists the rule set as one JSON document under
// KeyRules. Implements rule.Repository.
type KVRuleRepository struct {
	store KVStore
}

func NewKVRuleRepository(store KVStore) *KVRuleRepository {
	return &KVRuleRepository{store: store}
}

// LoadRules reads the stored rule set. Returns ErrKeyNotFound untouched on
// first boot so the caller can seed defaults.
func (r *KVRuleRepository) LoadRules() ([]rule.Rule, error) {
	raw, err := r.store.Get(KeyRules)
	if err != nil {
		return nil, err
	}
	var rules []rule.Rule
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("storage: decode rules: %w", err)
	}
	return rules, nil
}

func (r *KVRuleRepository) SaveRules(rules []rule.Rule) error {
	raw, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("storage: encode rules: %w", err)
	}
	return r.store.Set(KeyRules, raw)
}

// UpsertRule replaces the rule with the same ID, or appends it.
func (r *KVRuleRepository) UpsertRule(updated rule.Rule) error {
	rules, err := r.LoadRules()
	if err != nil && err != ErrKeyNotFound {
		return err
	}
	replaced := false
	for i := range rules {
		if rules[i].ID == updated.ID {
			rules[i] = updated
			replaced = true
			break
		}
	}
	if !replaced {
		rules = append(rules, updated)
	}
	return r.SaveRules(rules)
}

// SetEnabled flips a rule's enabled flag in place.
func (r *KVRuleRepository) SetEnabled(id string, enabled bool) error {
	rules, err := r.LoadRules()
	if err != nil {
		return err
	}
	for i := range rules {
		if rules[i].ID == id {
			rules[i].Enabled = enabled
			return r.SaveRules(rules)
		}
	}
	return fmt.Errorf("storage: rule %q not found", id)
}

// KVStateRepository persists the firing-state map as one JSON document
// under KeyRuleFiringStates. Implements rule.StateRepository.
type KVStateRepository struct {
	store KVStore
}

func NewKVStateRepository(store KVStore) *KVStateRepository {
	return &KVStateRepository{store: store}
}

func (r *KVStateRepository) LoadStates() (map[string]*rule.FiringState, error) {
	raw, err := r.store.Get(KeyRuleFiringStates)
	if err != nil {
		if err == ErrKeyNotFound {
			return map[string]*rule.FiringState{}, nil
		}
		return nil, err
	}
	var states map[string]*rule.FiringState
	if err := json.Unmarshal(raw, &states); err != nil {
		return nil, fmt.Errorf("storage: decode firing states: %w", err)
	}
	if states == nil {
		states = map[string]*rule.FiringState{}
	}
	return states, nil
}

func (r *KVStateRepository) SaveStates(states map[string]*rule.FiringState) error {
	raw, err := json.Marshal(states)
	if err != nil {
		return fmt.Errorf("storage: encode firing states: %w", err)
	}
	return r.store.Set(KeyRuleFiringStates, raw)
}
