package application

import (
	"sync"
	"time"

	"github.com/bnema/docbrain-cli/internal/ports"
)

// DefaultActivityWindow is how long after the last interaction the user
// still counts as active.
const DefaultActivityWindow = 30 * time.Second

// ActivityTracker turns raw input events into a decaying "recently active"
// signal. The signal is recomputed on every read; it is never cached past
// a decay check.
type ActivityTracker struct {
	clock  ports.Clock
	window time.Duration

	mu   sync.Mutex
	last time.Time
}

func NewActivityTracker(window time.Duration, clock ports.Clock) *ActivityTracker {
	if window <= 0 {
		window = DefaultActivityWindow
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &ActivityTracker{clock: clock, window: window}
}

// Touch records one user interaction.
func (t *ActivityTracker) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = t.clock.Now()
}

func (t *ActivityTracker) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last.IsZero() {
		return false
	}
	return t.clock.Now().Sub(t.last) <= t.window
}

func (t *ActivityTracker) LastInteraction() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}
