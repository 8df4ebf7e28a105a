package rule

// Repository defines durable CRUD over rule definitions. Rules are never
// deleted during normal operation, only disabled.
type Repository interface {
	LoadRules() ([]Rule, error)
	SaveRules(rules []Rule) error
	UpsertRule(r Rule) error
	SetEnabled(id string, enabled bool) error
}

// StateRepository persists the per-rule firing states as one unit. The
// engine keeps the in-memory map authoritative; a failed save is retried
// implicitly by the next successful one.
type StateRepository interface {
	LoadStates() (map[string]*FiringState, error)
	SaveStates(states map[string]*FiringState) error
}
