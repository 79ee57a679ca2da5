package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMAWindow(t *testing.T) {
	sma := NewSMA(3)

	sma.Update(1)
	assert.False(t, sma.IsInitialized())
	assert.InDelta(t, 1, sma.Value(), 1e-9)

	sma.Update(2)
	assert.InDelta(t, 1.5, sma.Value(), 1e-9)

	sma.Update(3)
	require.True(t, sma.IsInitialized())
	assert.InDelta(t, 2, sma.Value(), 1e-9)

	// Oldest value rolls out of the window.
	sma.Update(10)
	assert.InDelta(t, 5, sma.Value(), 1e-9)
}

func TestSMAReset(t *testing.T) {
	sma := NewSMA(2)
	sma.Update(4)
	sma.Update(6)

	sma.Reset()
	require.False(t, sma.IsInitialized())
	assert.Zero(t, sma.Value())

	sma.Update(8)
	assert.InDelta(t, 8, sma.Value(), 1e-9)
}

func TestSMAName(t *testing.T) {
	assert.Equal(t, "SMA(10)", NewSMA(10).Name())
}
