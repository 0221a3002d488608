package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActivityTrackerStartsInactive(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	tracker := NewActivityTracker(30*time.Second, clock)

	assert.False(t, tracker.IsActive())
	assert.True(t, tracker.LastInteraction().IsZero())
}

func TestActivityTrackerDecays(t *testing.T) {
	t.Parallel()

	clock := newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	tracker := NewActivityTracker(30*time.Second, clock)

	tracker.Touch()
	assert.True(t, tracker.IsActive())

	clock.Advance(30 * time.Second)
	assert.True(t, tracker.IsActive())

	clock.Advance(time.Millisecond)
	assert.False(t, tracker.IsActive())

	// A fresh interaction revives the signal.
	tracker.Touch()
	assert.True(t, tracker.IsActive())
}
