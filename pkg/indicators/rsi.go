package indicators

import "fmt"

// RSI (Relative Strength Index) measures momentum as the ratio of average
// gains to average losses over the period, scaled to 0-100.
//
// RSI = 100 - 100 / (1 + avgGain/avgLoss), Wilder smoothing.
type RSI struct {
	base
	period  int
	count   int
	prev    float64
	avgGain float64
	avgLoss float64
}

// NewRSI creates a new RSI indicator.
func NewRSI(period int) *RSI {
	if period <= 0 {
		period = 14
	}
	return &RSI{
		base:   base{name: fmt.Sprintf("RSI(%d)", period)},
		period: period,
	}
}

// Update feeds a new input value.
func (r *RSI) Update(value float64) {
	if r.count == 0 {
		r.prev = value
		r.count++
		return
	}

	change := value - r.prev
	r.prev = value
	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	if r.count <= r.period {
		// Accumulate a simple average while warming up.
		n := float64(r.count)
		r.avgGain = (r.avgGain*(n-1) + gain) / n
		r.avgLoss = (r.avgLoss*(n-1) + loss) / n
	} else {
		n := float64(r.period)
		r.avgGain = (r.avgGain*(n-1) + gain) / n
		r.avgLoss = (r.avgLoss*(n-1) + loss) / n
	}
	r.count++

	if r.avgLoss == 0 {
		r.value = 100
	} else {
		rs := r.avgGain / r.avgLoss
		r.value = 100 - 100/(1+rs)
	}
	if r.count > r.period {
		r.initialized = true
	}
}

// Period returns the smoothing period.
func (r *RSI) Period() int { return r.period }

// Reset restores the indicator to its initial state.
func (r *RSI) Reset() {
	r.reset()
	r.count = 0
	r.prev = 0
	r.avgGain = 0
	r.avgLoss = 0
}
