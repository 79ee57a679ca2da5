package clock

import (
	"fmt"
	"sort"
	"time"
)

// testTimer is a registered timer inside a TestClock.
type testTimer struct {
	label    string
	interval time.Duration
	nextFire time.Time
	stop     time.Time
	oneShot  bool
	handler  TimerHandler
}

// TestClock is a Clock whose time only moves when the test advances it.
// Timers fire synchronously, in chronological order, during AdvanceTime.
type TestClock struct {
	current time.Time
	timers  map[string]*testTimer
}

// NewTestClock returns a TestClock frozen at the given time.
func NewTestClock(start time.Time) *TestClock {
	return &TestClock{
		current: start.UTC(),
		timers:  make(map[string]*testTimer),
	}
}

// TimeNow implements Clock.
func (c *TestClock) TimeNow() time.Time {
	return c.current
}

// SetTime moves the clock without firing timers.
func (c *TestClock) SetTime(t time.Time) {
	c.current = t.UTC()
}

// AdvanceTime moves the clock forward to the given time, firing every timer
// due in the interval in chronological order, ties broken by label.
func (c *TestClock) AdvanceTime(to time.Time) {
	to = to.UTC()
	for {
		var next *testTimer
		for _, t := range c.timers {
			if t.nextFire.After(to) {
				continue
			}
			if next == nil || t.nextFire.Before(next.nextFire) ||
				(t.nextFire.Equal(next.nextFire) && t.label < next.label) {
				next = t
			}
		}
		if next == nil {
			break
		}

		c.current = next.nextFire
		next.handler(next.label, next.nextFire)

		if next.oneShot || (!next.stop.IsZero() && next.nextFire.Add(next.interval).After(next.stop)) {
			delete(c.timers, next.label)
			continue
		}
		next.nextFire = next.nextFire.Add(next.interval)
	}
	c.current = to
}

// SetTimer implements Clock.
func (c *TestClock) SetTimer(label string, interval time.Duration, stop time.Time, handler TimerHandler) error {
	if label == "" {
		return fmt.Errorf("timer label cannot be empty")
	}
	if interval <= 0 {
		return fmt.Errorf("timer interval must be positive, got %s", interval)
	}
	if handler == nil {
		return fmt.Errorf("timer handler cannot be nil")
	}
	if _, exists := c.timers[label]; exists {
		return fmt.Errorf("timer %q already registered", label)
	}
	c.timers[label] = &testTimer{
		label:    label,
		interval: interval,
		nextFire: c.current.Add(interval),
		stop:     stop,
		handler:  handler,
	}
	return nil
}

// SetTimeAlert implements Clock.
func (c *TestClock) SetTimeAlert(label string, alert time.Time, handler TimerHandler) error {
	if label == "" {
		return fmt.Errorf("timer label cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("timer handler cannot be nil")
	}
	if !alert.After(c.current) {
		return fmt.Errorf("alert time %s is not in the future", alert)
	}
	if _, exists := c.timers[label]; exists {
		return fmt.Errorf("timer %q already registered", label)
	}
	c.timers[label] = &testTimer{
		label:    label,
		nextFire: alert.UTC(),
		oneShot:  true,
		handler:  handler,
	}
	return nil
}

// CancelTimer implements Clock.
func (c *TestClock) CancelTimer(label string) {
	delete(c.timers, label)
}

// CancelAllTimers implements Clock.
func (c *TestClock) CancelAllTimers() {
	c.timers = make(map[string]*testTimer)
}

// TimerLabels implements Clock.
func (c *TestClock) TimerLabels() []string {
	labels := make([]string, 0, len(c.timers))
	for label := range c.timers {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
