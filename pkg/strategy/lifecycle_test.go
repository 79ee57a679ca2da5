package strategy

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quantlink-strategy-host/pkg/clock"
	"github.com/yourusername/quantlink-strategy-host/pkg/model"
)

func stateLabels(entries []StateLogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label
	}
	return out
}

func seedOpenPosition(host *TradingStrategy, exec *fakeExecEngine, qty int64) *model.Position {
	position := &model.Position{
		ID:         "P-TEST-1",
		Symbol:     testSymbol(),
		StrategyID: host.ID(),
		Market:     model.MarketLong,
		Quantity:   decimal.NewFromInt(qty),
		OpenedAt:   testStart,
	}
	exec.db.putPosition(position)
	return position
}

func TestStopFlattensAndCancels(t *testing.T) {
	cb := &recordingCallbacks{}
	host, _, exec, _ := newTestHost(t, cb, func(cfg *Config) {
		cfg.FlattenOnStop = true
		cfg.CancelAllOrdersOnStop = true
	})
	host.Start()

	seedOpenPosition(host, exec, 3)
	exec.db.putOrder(&model.Order{
		ID:     "O-TEST-1",
		Symbol: testSymbol(),
		Side:   model.SideSell,
		Status: model.StatusWorking,
	}, host.ID(), "P-TEST-1")

	host.Stop()

	submits := exec.submittedOrders()
	require.Len(t, submits, 1)
	require.Equal(t, model.SideSell, submits[0].Order.Side)
	require.Equal(t, "3", submits[0].Order.Quantity.String())
	require.Equal(t, model.PurposeExit, submits[0].Order.Purpose)
	require.Equal(t, "STRATEGY_STOP", submits[0].Order.Label)

	cancels := exec.cancelledOrders()
	require.Len(t, cancels, 1)
	require.Equal(t, model.OrderID("O-TEST-1"), cancels[0].OrderID)
	require.Equal(t, "STRATEGY_STOP", cancels[0].Reason)

	require.Equal(t, StateStopped, host.State())
	require.Equal(t, 1, cb.stops)
	require.Equal(t,
		[]string{"STARTING", "RUNNING", "STOPPING", "STOPPED"},
		stateLabels(host.StateLog()))
}

func TestStopWhenFlatSkipsFlatten(t *testing.T) {
	host, _, exec, _ := newTestHost(t, nil, func(cfg *Config) {
		cfg.FlattenOnStop = true
		cfg.CancelAllOrdersOnStop = true
	})
	host.Start()
	host.Stop()

	require.Empty(t, exec.commands)
}

func TestStopGatesDisabled(t *testing.T) {
	host, _, exec, _ := newTestHost(t, nil, nil)
	host.Start()

	seedOpenPosition(host, exec, 2)
	host.Stop()

	require.Empty(t, exec.commands)
	require.Equal(t, StateStopped, host.State())
}

func TestResetWhileRunningIsNoop(t *testing.T) {
	host, _, _, _ := newTestHost(t, nil, nil)
	host.Start()
	for i := 0; i < 3; i++ {
		host.HandleTick(testTick(1.0, 1.1))
	}

	host.Reset()

	require.True(t, host.IsRunning())
	require.Equal(t, 3, host.TickCount(testSymbol()))
}

func TestResetClearsState(t *testing.T) {
	cb := &recordingCallbacks{}
	host, _, _, _ := newTestHost(t, cb, nil)
	host.Start()
	host.HandleTick(testTick(1.0, 1.1))
	host.HandleBar(testBarType(), testBar(1.0))
	host.NewOrderID()
	host.NewPositionID()
	host.Stop()

	host.Reset()

	require.Zero(t, host.TickCount(testSymbol()))
	require.Zero(t, host.BarCount(testBarType()))
	require.Empty(t, host.StateLog())
	require.Equal(t, 1, cb.resets)

	// Generators restart from 1.
	require.True(t, strings.HasSuffix(string(host.NewOrderID()), "-1"))
}

func TestSaveContainsReservedKeys(t *testing.T) {
	host, _, _, _ := newTestHost(t, nil, nil)
	host.Start()
	host.NewOrderID()
	host.NewOrderID()
	host.NewPositionID()

	state := host.Save()

	require.Equal(t, "2", string(state[KeyOrderIDCount]))
	require.Equal(t, "1", string(state[KeyPositionIDCount]))
	require.Contains(t, string(state[KeyStateLog]), "STARTING")
	require.Contains(t, string(state[KeyStateLog]), "SAVING...")
}

func TestSaveIgnoresReservedUserKeys(t *testing.T) {
	cb := &recordingCallbacks{saved: map[string][]byte{
		KeyOrderIDCount: []byte("9999"),
		"Custom":        []byte("keep"),
	}}
	host, _, _, _ := newTestHost(t, cb, nil)
	host.NewOrderID()

	state := host.Save()

	require.Equal(t, "1", string(state[KeyOrderIDCount]))
	require.Equal(t, "keep", string(state["Custom"]))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	host, _, _, _ := newTestHost(t, nil, nil)
	host.Start()
	host.NewOrderID()
	host.NewOrderID()
	state := host.Save()
	priorLog := host.StateLog()

	cb := &recordingCallbacks{}
	clk := clock.NewTestClock(testStart.Add(time.Hour))
	restoredCfg := testConfig(clk)
	restored, err := New(restoredCfg, cb)
	require.NoError(t, err)

	restored.Load(state)

	// Counter restored: the next id continues the sequence.
	require.True(t, strings.HasSuffix(string(restored.NewOrderID()), "-3"))

	// Restored log is prepended, then LOADING.../LOADED appended.
	labels := stateLabels(restored.StateLog())
	require.Equal(t, len(priorLog)+2, len(labels))
	require.Equal(t, stateLabels(priorLog), labels[:len(priorLog)])
	require.Equal(t, "LOADING...", labels[len(labels)-2])
	require.Equal(t, "LOADED", labels[len(labels)-1])

	// The full mapping reaches OnLoad.
	require.Equal(t, state, cb.loaded)
}

func TestLoadSkipsMalformedCounters(t *testing.T) {
	host, _, _, _ := newTestHost(t, nil, nil)

	host.Load(map[string][]byte{
		KeyOrderIDCount:    []byte("not-a-number"),
		KeyPositionIDCount: []byte("7"),
	})

	require.True(t, strings.HasSuffix(string(host.NewOrderID()), "-1"))
	require.True(t, strings.HasSuffix(string(host.NewPositionID()), "-8"))
}

func TestLoadEmptyState(t *testing.T) {
	host, _, _, _ := newTestHost(t, nil, nil)

	host.Load(map[string][]byte{})

	require.Equal(t, []string{"LOADING...", "LOADED"}, stateLabels(host.StateLog()))
}

func TestSavedAppendsMarkerAtCommitTime(t *testing.T) {
	host, _, _, _ := newTestHost(t, nil, nil)
	commit := testStart.Add(5 * time.Second)

	host.Saved(commit)

	log := host.StateLog()
	require.Len(t, log, 1)
	require.Equal(t, "SAVED", log[0].Label)
	require.Equal(t, commit, log[0].Timestamp)
}

func TestStateLogCodecRoundTrip(t *testing.T) {
	entries := []StateLogEntry{
		{Timestamp: testStart, Label: "STARTING"},
		{Timestamp: testStart.Add(time.Millisecond), Label: "RUNNING"},
	}

	decoded, err := decodeStateLog(encodeStateLog(entries))
	require.NoError(t, err)
	require.Equal(t, entries, decoded)

	_, err = decodeStateLog([]byte("garbage-without-space"))
	require.Error(t, err)

	decoded, err = decodeStateLog(nil)
	require.NoError(t, err)
	require.Empty(t, decoded)
}
