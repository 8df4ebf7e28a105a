package rule

// DefaultRules is the seed rule set applied exactly once, on first boot
// when the rules store key is absent. IDs must match the predicates
// installed by RegisterDefaults.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:              "hydration_gap",
			Name:            "Hydration reminder",
			Category:        "hydration",
			Priority:        30,
			CooldownSeconds: 3 * 3600,
			MaxPerDay:       4,
			Enabled:         true,
		},
		{
			ID:              "exercise_gap",
			Name:            "Exercise gap nudge",
			Category:        "exercise",
			Priority:        40,
			CooldownSeconds: 24 * 3600,
			MaxPerDay:       1,
			Enabled:         true,
		},
		{
			ID:              "caffeine_cutoff",
			Name:            "Slow caffeine metabolizer cutoff",
			Category:        "caffeine",
			Priority:        50,
			CooldownSeconds: 12 * 3600,
			MaxPerDay:       1,
			Enabled:         true,
		},
		{
			ID:              "uv_alert",
			Name:            "UV sensitivity alert",
			Category:        "uv_protection",
			Priority:        60,
			CooldownSeconds: 6 * 3600,
			MaxPerDay:       2,
			Enabled:         true,
		},
		{
			ID:              "sleep_wind_down",
			Name:            "Insomnia-risk wind down",
			Category:        "sleep",
			Priority:        45,
			CooldownSeconds: 20 * 3600,
			MaxPerDay:       1,
			Enabled:         true,
		},
		{
			ID:              "lactose_warning",
			Name:            "Lactose intolerance warning",
			Category:        "nutrition",
			Priority:        20,
			CooldownSeconds: 8 * 3600,
			MaxPerDay:       2,
			Enabled:         true,
		},
	}
}
