package clock

import (
	"time"
)

// SequencedClock decorates a Clock so that timer handlers are delivered
// through a posting function instead of on the inner clock's goroutines.
// Wrapping a RealClock with a sequencer's Post gives a strategy host timer
// callbacks on the same goroutine as every other inbound call.
type SequencedClock struct {
	inner Clock
	post  func(func())
}

// NewSequencedClock wraps the inner clock with the given posting function.
func NewSequencedClock(inner Clock, post func(func())) *SequencedClock {
	return &SequencedClock{inner: inner, post: post}
}

// TimeNow implements Clock.
func (c *SequencedClock) TimeNow() time.Time {
	return c.inner.TimeNow()
}

// SetTimer implements Clock. The handler runs via the posting function.
func (c *SequencedClock) SetTimer(label string, interval time.Duration, stop time.Time, handler TimerHandler) error {
	if handler == nil {
		return c.inner.SetTimer(label, interval, stop, nil)
	}
	return c.inner.SetTimer(label, interval, stop, c.wrap(handler))
}

// SetTimeAlert implements Clock. The handler runs via the posting function.
func (c *SequencedClock) SetTimeAlert(label string, alert time.Time, handler TimerHandler) error {
	if handler == nil {
		return c.inner.SetTimeAlert(label, alert, nil)
	}
	return c.inner.SetTimeAlert(label, alert, c.wrap(handler))
}

func (c *SequencedClock) wrap(handler TimerHandler) TimerHandler {
	return func(label string, when time.Time) {
		c.post(func() { handler(label, when) })
	}
}

// CancelTimer implements Clock.
func (c *SequencedClock) CancelTimer(label string) {
	c.inner.CancelTimer(label)
}

// CancelAllTimers implements Clock.
func (c *SequencedClock) CancelAllTimers() {
	c.inner.CancelAllTimers()
}

// TimerLabels implements Clock.
func (c *SequencedClock) TimerLabels() []string {
	return c.inner.TimerLabels()
}
