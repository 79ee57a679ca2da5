// Package clock provides the wall-clock and timer service injected into a
// strategy host. RealClock runs timers on goroutines; TestClock advances time
// manually for deterministic tests.
package clock

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// TimerHandler is invoked when a timer fires.
type TimerHandler func(label string, when time.Time)

// Clock is the time source and timer registry owned by one strategy host.
type Clock interface {
	// TimeNow returns the current time in UTC.
	TimeNow() time.Time

	// SetTimer registers a repeating timer. A zero stop time means the timer
	// repeats until cancelled. Labels are unique per clock.
	SetTimer(label string, interval time.Duration, stop time.Time, handler TimerHandler) error

	// SetTimeAlert registers a one-shot timer firing at the alert time.
	SetTimeAlert(label string, alert time.Time, handler TimerHandler) error

	// CancelTimer cancels the timer with the given label, if any.
	CancelTimer(label string)

	// CancelAllTimers cancels every registered timer.
	CancelAllTimers()

	// TimerLabels returns the labels of all registered timers, sorted.
	TimerLabels() []string
}

// RealClock is the production Clock backed by the system wall clock.
type RealClock struct {
	mu     sync.Mutex
	timers map[string]chan struct{}
}

// NewRealClock returns a RealClock with no timers registered.
func NewRealClock() *RealClock {
	return &RealClock{timers: make(map[string]chan struct{})}
}

// TimeNow implements Clock.
func (c *RealClock) TimeNow() time.Time {
	return time.Now().UTC()
}

// SetTimer implements Clock.
func (c *RealClock) SetTimer(label string, interval time.Duration, stop time.Time, handler TimerHandler) error {
	if label == "" {
		return fmt.Errorf("timer label cannot be empty")
	}
	if interval <= 0 {
		return fmt.Errorf("timer interval must be positive, got %s", interval)
	}
	if handler == nil {
		return fmt.Errorf("timer handler cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.timers[label]; exists {
		return fmt.Errorf("timer %q already registered", label)
	}

	done := make(chan struct{})
	c.timers[label] = done

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				if !stop.IsZero() && now.After(stop) {
					c.CancelTimer(label)
					return
				}
				handler(label, now.UTC())
			case <-done:
				return
			}
		}
	}()
	return nil
}

// SetTimeAlert implements Clock.
func (c *RealClock) SetTimeAlert(label string, alert time.Time, handler TimerHandler) error {
	if label == "" {
		return fmt.Errorf("timer label cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("timer handler cannot be nil")
	}
	delay := time.Until(alert)
	if delay <= 0 {
		return fmt.Errorf("alert time %s is not in the future", alert)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.timers[label]; exists {
		return fmt.Errorf("timer %q already registered", label)
	}

	done := make(chan struct{})
	c.timers[label] = done

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case now := <-timer.C:
			c.CancelTimer(label)
			handler(label, now.UTC())
		case <-done:
		}
	}()
	return nil
}

// CancelTimer implements Clock.
func (c *RealClock) CancelTimer(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if done, exists := c.timers[label]; exists {
		close(done)
		delete(c.timers, label)
	}
}

// CancelAllTimers implements Clock.
func (c *RealClock) CancelAllTimers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for label, done := range c.timers {
		close(done)
		delete(c.timers, label)
	}
}

// TimerLabels implements Clock.
func (c *RealClock) TimerLabels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	labels := make([]string, 0, len(c.timers))
	for label := range c.timers {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
