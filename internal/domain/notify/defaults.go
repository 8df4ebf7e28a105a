package notify

import "health_notification_engine/internal/domain/appcontext"

// DefaultTemplates is the built-in copy pool for the seeded rule set and
// daily slots. Text is treated as opaque template data; product owns the
// wording.
func DefaultTemplates() TemplatePool {
	return TemplatePool{
		"hydration": {
			appcontext.BucketMorning: {
				{Title: "Start hydrated", Body: "A glass of water before coffee sets up your morning."},
				{Title: "Water first", Body: "You haven't logged water in a while. Start the day with a glass."},
			},
			appcontext.BucketAfternoon: {
				{Title: "Hydration check", Body: "Midday slump? It might just be thirst. Grab some water."},
			},
			BucketAny: {
				{Title: "Time for water", Body: "It's been a few hours since your last glass of water."},
				{Title: "Stay hydrated", Body: "Your body is asking for water. Take a short break and drink up."},
			},
		},
		"exercise": {
			BucketAny: {
				{Title: "Time to move", Body: "It's been a couple of days since your last workout. Even a short walk counts."},
				{Title: "Your body misses movement", Body: "A quick session today keeps your streak alive."},
			},
		},
		"caffeine": {
			appcontext.BucketAfternoon: {
				{Title: "Caffeine cutoff", Body: "Your genetic profile suggests you metabolize caffeine slowly. Consider making this your last coffee today."},
			},
			BucketAny: {
				{Title: "Easy on the caffeine", Body: "Slow caffeine metabolism means late coffee can cost you sleep tonight."},
			},
		},
		"uv_protection": {
			BucketAny: {
				{Title: "High UV today", Body: "UV is high and your skin type burns easily. Sunscreen before heading out."},
				{Title: "Sun alert", Body: "Your profile flags UV sensitivity and today's index is high. Cover up."},
			},
		},
		"sleep": {
			appcontext.BucketEvening: {
				{Title: "Wind down", Body: "Your profile flags elevated insomnia risk. Start dimming screens now for better sleep."},
			},
			appcontext.BucketNight: {
				{Title: "Bedtime window", Body: "You sleep best when you're in bed before midnight. Tonight's a good night to try."},
			},
			BucketAny: {
				{Title: "Sleep matters", Body: "Protect tonight's sleep: no heavy meals or bright screens late."},
			},
		},
		"nutrition": {
			BucketAny: {
				{Title: "Dairy heads-up", Body: "You logged dairy today and your profile flags lactose intolerance. Watch how you feel."},
			},
		},
		"morning_checkin": {
			BucketAny: {
				{Title: "Good morning", Body: "Quick check-in: log how you slept and plan one healthy choice for today."},
				{Title: "Morning check-in", Body: "A minute now to review your day keeps your goals on track."},
			},
		},
		"evening_summary": {
			BucketAny: {
				{Title: "Your day in review", Body: "See how today went: activity, hydration and choices, all in one view."},
				{Title: "Evening summary ready", Body: "Today's health summary is ready. Take a look before winding down."},
			},
		},
	}
}
