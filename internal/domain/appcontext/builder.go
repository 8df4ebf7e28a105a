package appcontext

import (
	"sync"
	"time"
)

// Builder accumulates context facts reported by the surrounding app
// (screens, background services) and materialises immutable snapshots.
// Incoming partial updates are shallow-merged: new keys overwrite, all
// other keys are retained.
type Builder struct {
	mu      sync.Mutex
	current Snapshot
}

func NewBuilder() *Builder {
	return &Builder{
		current: Snapshot{fields: map[string]any{}},
	}
}

// Update merges the partial fact map into the previous snapshot's fields,
// recomputes the time-of-day bucket and day of week from now, and returns
// the new snapshot. The returned snapshot owns a private copy of the map;
// neither the caller's partial map nor later updates can alter it.
func (b *Builder) Update(partial map[string]any, now time.Time) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	merged := make(map[string]any, len(b.current.fields)+len(partial))
	for k, v := range b.current.fields {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}

	b.current = Snapshot{
		Timestamp: now,
		Bucket:    BucketFor(now),
		DayOfWeek: now.Weekday(),
		fields:    merged,
	}
	return b.current
}

// Current returns the latest snapshot without merging anything.
func (b *Builder) Current() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}
