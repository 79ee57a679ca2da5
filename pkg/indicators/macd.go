package indicators

import "fmt"

// MACD (Moving Average Convergence Divergence) is the spread between a fast
// and a slow EMA, with a signal EMA over the spread.
type MACD struct {
	base
	fast   *EMA
	slow   *EMA
	signal *EMA
	count  int
}

// NewMACD creates a new MACD indicator with the given fast/slow/signal
// periods (typically 12/26/9).
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) *MACD {
	if fastPeriod <= 0 {
		fastPeriod = 12
	}
	if slowPeriod <= 0 {
		slowPeriod = 26
	}
	if signalPeriod <= 0 {
		signalPeriod = 9
	}
	return &MACD{
		base:   base{name: fmt.Sprintf("MACD(%d,%d,%d)", fastPeriod, slowPeriod, signalPeriod)},
		fast:   NewEMA(fastPeriod),
		slow:   NewEMA(slowPeriod),
		signal: NewEMA(signalPeriod),
	}
}

// Update feeds a new input value.
func (m *MACD) Update(value float64) {
	m.fast.Update(value)
	m.slow.Update(value)
	m.value = m.fast.Value() - m.slow.Value()
	m.signal.Update(m.value)
	m.count++
	if m.count >= m.slow.Period() {
		m.initialized = true
	}
}

// Signal returns the signal line value.
func (m *MACD) Signal() float64 { return m.signal.Value() }

// Histogram returns the spread between the MACD line and the signal line.
func (m *MACD) Histogram() float64 { return m.value - m.signal.Value() }

// Reset restores the indicator to its initial state.
func (m *MACD) Reset() {
	m.reset()
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
	m.count = 0
}
