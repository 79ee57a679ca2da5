// Package indicators provides technical indicators for trading strategies.
// Indicators consume float64 price projections supplied by the strategy
// host's update bindings and report readiness through IsInitialized, which
// the host polls before acting on indicator values.
package indicators

// Indicator is the base interface every technical indicator implements.
type Indicator interface {
	// Name returns the indicator name, e.g. "EMA(10)".
	Name() string

	// Value returns the current indicator value.
	Value() float64

	// IsInitialized returns true once the indicator has sufficient data.
	IsInitialized() bool

	// Reset restores the indicator to its initial state.
	Reset()
}

// base carries the state shared by all indicators. No locking: the owning
// strategy host serializes all updates.
type base struct {
	name        string
	value       float64
	initialized bool
}

// Name returns the indicator name.
func (b *base) Name() string { return b.name }

// Value returns the current indicator value.
func (b *base) Value() float64 { return b.value }

// IsInitialized returns true once the indicator has sufficient data.
func (b *base) IsInitialized() bool { return b.initialized }

func (b *base) reset() {
	b.value = 0
	b.initialized = false
}
