package notify

import (
	"fmt"
	"math/rand"

	"health_notification_engine/internal/domain/appcontext"
)

// Template is one candidate notification text for a (category, bucket)
// pair. The copy itself is opaque to the engine.
type Template struct {
	Title string
	Body  string
}

// TemplatePool maps category to time-of-day bucket to candidate templates.
// An empty bucket falls back to the category's "any" entry.
type TemplatePool map[string]map[appcontext.TimeBucket][]Template

// BucketAny is the fallback bucket key for copy that reads fine at any
// time of day.
const BucketAny appcontext.TimeBucket = "any"

// Selector picks a template for a category and time bucket. Selection is
// uniform random over the pool; repeats are acceptable. The rand source is
// injected so tests can seed it.
type Selector struct {
	pool TemplatePool
	rnd  *rand.Rand
}

func NewSelector(pool TemplatePool, rnd *rand.Rand) *Selector {
	return &Selector{pool: pool, rnd: rnd}
}

// Select returns one template for the category at the given bucket.
// Falls back to the category's BucketAny pool when the bucket has no
// dedicated copy; errors when the category is unknown or empty.
func (s *Selector) Select(category string, bucket appcontext.TimeBucket) (Template, error) {
	buckets, ok := s.pool[category]
	if !ok {
		return Template{}, fmt.Errorf("no templates for category %q", category)
	}
	candidates := buckets[bucket]
	if len(candidates) == 0 {
		candidates = buckets[BucketAny]
	}
	if len(candidates) == 0 {
		return Template{}, fmt.Errorf("no templates for category %q in bucket %q", category, bucket)
	}
	return candidates[s.rnd.Intn(len(candidates))], nil
}
