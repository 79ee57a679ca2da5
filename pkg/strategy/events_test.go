package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yourusername/quantlink-strategy-host/pkg/model"
)

func seedStopLossScenario(host *TradingStrategy, exec *fakeExecEngine, purpose model.OrderPurpose, open bool) *model.Order {
	position := seedOpenPosition(host, exec, 3)
	if !open {
		position.Market = model.MarketFlat
		position.ClosedAt = testStart.Add(1)
	}
	order := &model.Order{
		ID:      "O-SL-1",
		Symbol:  testSymbol(),
		Side:    model.SideSell,
		Type:    model.TypeStopMarket,
		Purpose: purpose,
		Status:  model.StatusRejected,
	}
	exec.db.putOrder(order, host.ID(), position.ID)
	return order
}

func rejectedEvent(orderID model.OrderID) *model.OrderRejected {
	return &model.OrderRejected{
		EventHeader: model.EventHeader{ID: "ev-1", Timestamp: testStart},
		OrderID:     orderID,
		Reason:      "INSUFFICIENT_MARGIN",
	}
}

func TestStopLossRejectFlattensPosition(t *testing.T) {
	cb := &recordingCallbacks{}
	host, _, exec, _ := newTestHost(t, cb, func(cfg *Config) { cfg.FlattenOnSLReject = true })
	host.Start()
	seedStopLossScenario(host, exec, model.PurposeStopLoss, true)

	host.HandleEvent(rejectedEvent("O-SL-1"))

	submits := exec.submittedOrders()
	require.Len(t, submits, 1)
	require.Equal(t, model.SideSell, submits[0].Order.Side)
	require.Equal(t, "3", submits[0].Order.Quantity.String())
	require.Equal(t, "STOP_LOSS_REJECTED", submits[0].Order.Label)
	require.Equal(t, model.PositionID("P-TEST-1"), submits[0].PositionID)

	// The event still reaches the user hook.
	require.Len(t, cb.events, 1)
}

func TestNonStopLossRejectDoesNotFlatten(t *testing.T) {
	host, _, exec, _ := newTestHost(t, nil, func(cfg *Config) { cfg.FlattenOnSLReject = true })
	host.Start()
	seedStopLossScenario(host, exec, model.PurposeEntry, true)

	host.HandleEvent(rejectedEvent("O-SL-1"))

	require.Empty(t, exec.submittedOrders())
}

func TestStopLossRejectClosedPositionDoesNotFlatten(t *testing.T) {
	host, _, exec, _ := newTestHost(t, nil, func(cfg *Config) { cfg.FlattenOnSLReject = true })
	host.Start()
	seedStopLossScenario(host, exec, model.PurposeStopLoss, false)

	host.HandleEvent(rejectedEvent("O-SL-1"))

	require.Empty(t, exec.submittedOrders())
}

func TestStopLossRejectRecoveryDisabled(t *testing.T) {
	host, _, exec, _ := newTestHost(t, nil, nil)
	host.Start()
	seedStopLossScenario(host, exec, model.PurposeStopLoss, true)

	host.HandleEvent(rejectedEvent("O-SL-1"))

	require.Empty(t, exec.submittedOrders())
}

func TestStopLossRejectUnknownOrder(t *testing.T) {
	host, _, exec, _ := newTestHost(t, nil, func(cfg *Config) { cfg.FlattenOnSLReject = true })
	host.Start()

	require.NotPanics(t, func() { host.HandleEvent(rejectedEvent("O-UNKNOWN")) })
	require.Empty(t, exec.submittedOrders())
}

func TestCancelRejectIsWarnOnly(t *testing.T) {
	cb := &recordingCallbacks{}
	host, _, exec, _ := newTestHost(t, cb, nil)
	host.Start()

	host.HandleEvent(&model.OrderCancelReject{
		EventHeader: model.EventHeader{ID: "ev-2", Timestamp: testStart},
		OrderID:     "O-1",
		Response:    "REJECT_RESPONSE_ORDER_DOES_NOT_EXIST",
		Reason:      "not found",
	})

	require.Empty(t, exec.submittedOrders())
	require.Len(t, cb.events, 1)
}

func TestEventsForwardedWhileStopped(t *testing.T) {
	cb := &recordingCallbacks{}
	host, _, _, _ := newTestHost(t, cb, nil)

	host.HandleEvent(&model.OrderAccepted{
		EventHeader: model.EventHeader{ID: "ev-3", Timestamp: testStart},
		OrderID:     "O-1",
	})

	require.Len(t, cb.events, 1)
}

func TestEventHookPanicIsolated(t *testing.T) {
	cb := &recordingCallbacks{}
	cb.onEvent = func(model.Event) error { panic("handler blew up") }
	host, _, _, _ := newTestHost(t, cb, nil)
	host.Start()

	require.NotPanics(t, func() {
		host.HandleEvent(&model.OrderAccepted{
			EventHeader: model.EventHeader{ID: "ev-4", Timestamp: testStart},
			OrderID:     "O-1",
		})
	})
	require.True(t, host.IsRunning())
}
