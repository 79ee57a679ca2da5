package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSequencedClockPostsTimerHandlers(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	inner := NewTestClock(start)

	var posted []func()
	sc := NewSequencedClock(inner, func(fn func()) { posted = append(posted, fn) })

	var fired []string
	require.NoError(t, sc.SetTimer("T", time.Minute, time.Time{}, func(label string, when time.Time) {
		fired = append(fired, label)
	}))

	inner.AdvanceTime(start.Add(2 * time.Minute))

	// The inner clock fired twice, but the handler only runs once the
	// posted tasks are executed.
	require.Len(t, posted, 2)
	require.Empty(t, fired)

	for _, fn := range posted {
		fn()
	}
	require.Equal(t, []string{"T", "T"}, fired)
}

func TestSequencedClockDelegates(t *testing.T) {
	start := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	inner := NewTestClock(start)
	sc := NewSequencedClock(inner, func(fn func()) { fn() })

	require.Equal(t, start, sc.TimeNow())

	require.NoError(t, sc.SetTimeAlert("A", start.Add(time.Hour), func(string, time.Time) {}))
	require.Equal(t, []string{"A"}, sc.TimerLabels())

	sc.CancelTimer("A")
	require.Empty(t, sc.TimerLabels())

	require.NoError(t, sc.SetTimer("B", time.Minute, time.Time{}, func(string, time.Time) {}))
	sc.CancelAllTimers()
	require.Empty(t, sc.TimerLabels())

	require.Error(t, sc.SetTimer("", time.Minute, time.Time{}, nil))
	require.Error(t, sc.SetTimeAlert("", start, nil))
}
