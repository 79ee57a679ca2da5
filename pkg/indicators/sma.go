package indicators

import "fmt"

// SMA (Simple Moving Average) is the arithmetic mean of the last period
// inputs. Initialized once the window is full.
type SMA struct {
	base
	period int
	window []float64
	sum    float64
}

// NewSMA creates a new SMA indicator.
func NewSMA(period int) *SMA {
	if period <= 0 {
		period = 10
	}
	return &SMA{
		base:   base{name: fmt.Sprintf("SMA(%d)", period)},
		period: period,
		window: make([]float64, 0, period),
	}
}

// Update feeds a new input value.
func (s *SMA) Update(value float64) {
	if len(s.window) == s.period {
		s.sum -= s.window[0]
		s.window = s.window[1:]
	}
	s.window = append(s.window, value)
	s.sum += value

	s.value = s.sum / float64(len(s.window))
	if len(s.window) == s.period {
		s.initialized = true
	}
}

// Period returns the averaging period.
func (s *SMA) Period() int { return s.period }

// Reset restores the indicator to its initial state.
func (s *SMA) Reset() {
	s.reset()
	s.window = s.window[:0]
	s.sum = 0
}
