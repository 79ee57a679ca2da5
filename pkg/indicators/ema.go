package indicators

import "fmt"

// EMA (Exponential Moving Average) weights recent inputs more heavily than
// older ones.
//
// Formula: EMA_t = α × Price_t + (1-α) × EMA_{t-1}
// where α = 2 / (period + 1) is the smoothing factor.
type EMA struct {
	base
	period  int
	alpha   float64
	isFirst bool
}

// NewEMA creates a new EMA indicator.
func NewEMA(period int) *EMA {
	if period <= 0 {
		period = 20
	}
	return &EMA{
		base:    base{name: fmt.Sprintf("EMA(%d)", period)},
		period:  period,
		alpha:   2.0 / float64(period+1),
		isFirst: true,
	}
}

// Update feeds a new input value. The first value seeds the average.
func (e *EMA) Update(value float64) {
	if e.isFirst {
		e.value = value
		e.isFirst = false
		e.initialized = true
		return
	}
	e.value = e.alpha*value + (1-e.alpha)*e.value
}

// Period returns the averaging period.
func (e *EMA) Period() int { return e.period }

// Alpha returns the smoothing factor.
func (e *EMA) Alpha() float64 { return e.alpha }

// Reset restores the indicator to its initial state.
func (e *EMA) Reset() {
	e.reset()
	e.isFirst = true
}
