package indicators

import (
	"fmt"
	"math"
)

// ATR (Average True Range) measures volatility as a moving average of the
// true range.
//
// TR_t = max(high-low, |high-prevClose|, |low-prevClose|)
// ATR uses Wilder smoothing: ATR_t = (ATR_{t-1} × (period-1) + TR_t) / period
type ATR struct {
	base
	period    int
	count     int
	prevClose float64
}

// NewATR creates a new ATR indicator.
func NewATR(period int) *ATR {
	if period <= 0 {
		period = 14
	}
	return &ATR{
		base:   base{name: fmt.Sprintf("ATR(%d)", period)},
		period: period,
	}
}

// Update feeds a new bar's high, low and close.
func (a *ATR) Update(high, low, close float64) {
	tr := high - low
	if a.count > 0 {
		tr = math.Max(tr, math.Max(math.Abs(high-a.prevClose), math.Abs(low-a.prevClose)))
	}
	a.prevClose = close
	a.count++

	if a.count == 1 {
		a.value = tr
		return
	}
	if a.count <= a.period {
		// Simple average while warming up.
		a.value = (a.value*float64(a.count-1) + tr) / float64(a.count)
	} else {
		a.value = (a.value*float64(a.period-1) + tr) / float64(a.period)
	}
	if a.count >= a.period {
		a.initialized = true
	}
}

// Period returns the smoothing period.
func (a *ATR) Period() int { return a.period }

// Reset restores the indicator to its initial state.
func (a *ATR) Reset() {
	a.reset()
	a.count = 0
	a.prevClose = 0
}
