// Package sequencer funnels every inbound callback of a strategy host onto
// one goroutine. The host performs no locking; this is the component that
// makes that legal in live trading, where NATS subscriptions and clock timers
// otherwise deliver on their own goroutines.
package sequencer

import (
	"fmt"

	"go.uber.org/zap"
)

// Sequencer executes posted tasks one at a time, in arrival order, on a
// single goroutine. Posting is safe from any goroutine.
type Sequencer struct {
	log   *zap.Logger
	tasks chan func()
	quit  chan struct{}
	done  chan struct{}
}

// New returns a stopped Sequencer with the given inbox size.
func New(inboxSize int, log *zap.Logger) (*Sequencer, error) {
	if inboxSize <= 0 {
		return nil, fmt.Errorf("sequencer inbox size must be positive, got %d", inboxSize)
	}
	return &Sequencer{
		log:   log.Named("Sequencer"),
		tasks: make(chan func(), inboxSize),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}, nil
}

// Start launches the processing goroutine.
func (s *Sequencer) Start() {
	go s.run()
}

func (s *Sequencer) run() {
	defer close(s.done)
	for {
		select {
		case <-s.quit:
			// Drain tasks accepted before the stop.
			for {
				select {
				case task := <-s.tasks:
					s.exec(task)
				default:
					return
				}
			}
		case task := <-s.tasks:
			s.exec(task)
		}
	}
}

// exec keeps the loop alive across a panicking task.
func (s *Sequencer) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("sequenced task panicked",
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	task()
}

// Post enqueues a task. Tasks posted after Stop are dropped with a warning.
func (s *Sequencer) Post(task func()) {
	select {
	case <-s.quit:
		s.log.Warn("sequencer stopped, dropping task")
	case s.tasks <- task:
	}
}

// PostWait enqueues a task and blocks until it has run, or until the
// sequencer has fully stopped.
func (s *Sequencer) PostWait(task func()) {
	ran := make(chan struct{})
	s.Post(func() {
		defer close(ran)
		task()
	})
	select {
	case <-ran:
	case <-s.done:
	}
}

// Stop stops accepting tasks, drains the inbox and waits for the processing
// goroutine to exit. Safe to call once.
func (s *Sequencer) Stop() {
	close(s.quit)
	<-s.done
}
