package sequencer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSequencer(t *testing.T) *Sequencer {
	t.Helper()
	seq, err := New(64, zap.NewNop())
	require.NoError(t, err)
	seq.Start()
	return seq
}

func TestNewRejectsNonPositiveInbox(t *testing.T) {
	_, err := New(0, zap.NewNop())
	require.Error(t, err)

	_, err = New(-1, zap.NewNop())
	require.Error(t, err)
}

func TestTasksRunInPostOrder(t *testing.T) {
	seq := newTestSequencer(t)
	defer seq.Stop()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		seq.Post(func() { got = append(got, i) })
	}
	seq.PostWait(func() {})

	require.Len(t, got, 100)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestConcurrentPostersAreSerialized(t *testing.T) {
	seq := newTestSequencer(t)
	defer seq.Stop()

	// The counter is unguarded: only the sequencer goroutine touches it.
	counter := 0
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				seq.PostWait(func() { counter++ })
			}
		}()
	}
	wg.Wait()

	seq.PostWait(func() {})
	require.Equal(t, 8*50, counter)
}

func TestStopDrainsQueuedTasks(t *testing.T) {
	seq := newTestSequencer(t)

	ran := 0
	block := make(chan struct{})
	seq.Post(func() { <-block })
	for i := 0; i < 10; i++ {
		seq.Post(func() { ran++ })
	}
	close(block)
	seq.Stop()

	require.Equal(t, 10, ran)
}

func TestPostAfterStopIsDropped(t *testing.T) {
	seq := newTestSequencer(t)
	seq.Stop()

	seq.Post(func() { t.Fatal("task ran after stop") })
	seq.PostWait(func() { t.Fatal("task ran after stop") })
}

func TestPanickingTaskDoesNotKillTheLoop(t *testing.T) {
	seq := newTestSequencer(t)
	defer seq.Stop()

	seq.Post(func() { panic("boom") })

	ran := false
	seq.PostWait(func() { ran = true })
	require.True(t, ran)
}
