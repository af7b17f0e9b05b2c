package canvas

import "math"

// Tracker holds the per-attempt scratch budget and the scratched share.
// Budget figures are percentages of the overlay surface.
type Tracker struct {
	base, perAttempt float64

	limit     float64
	remaining float64
	scratched int
}

// NewTracker returns a tracker sized for attempt 0.
func NewTracker(base, perAttempt float64) Tracker {
	t := Tracker{base: base, perAttempt: perAttempt}
	t.Reset(0)
	return t
}

// Reset recomputes the budget for attempt and zeroes the scratched share.
func (t *Tracker) Reset(attempt int) {
	t.limit = t.base + float64(attempt)*t.perAttempt
	t.remaining = t.limit
	t.scratched = 0
}

func (t *Tracker) Limit() float64     { return t.limit }
func (t *Tracker) Remaining() float64 { return t.remaining }
func (t *Tracker) Scratched() int     { return t.scratched }
func (t *Tracker) Exhausted() bool    { return t.remaining <= 0 }

// Charge deducts percent from the budget, flooring at zero.
func (t *Tracker) Charge(percent float64) {
	t.remaining = math.Max(0, t.remaining-percent)
}

// Observe records the overlay's current transparent share. The scratched
// percentage never goes down between resets.
func (t *Tracker) Observe(transparent, total int) {
	if total <= 0 {
		return
	}
	pct := int(math.Round(float64(transparent) / float64(total) * 100))
	t.scratched = min(100, max(t.scratched, pct))
}

// Force pins the scratched share, used when the overlay is cleared outright.
func (t *Tracker) Force(pct int) { t.scratched = min(100, max(0, pct)) }
