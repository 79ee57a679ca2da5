package execution

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/quantlink-strategy-host/pkg/model"
)

var (
	testTime     = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	testSymbol   = model.Symbol{Code: "AUDUSD", Venue: "FXCM"}
	testStrategy = model.StrategyID{Name: "EMACross", Tag: "001"}
)

type frozenClock struct{ now time.Time }

func (c frozenClock) TimeNow() time.Time { return c.now }

type eventSink struct {
	events []model.Event
}

func (s *eventSink) handle(ev model.Event) {
	s.events = append(s.events, ev)
}

func (s *eventSink) types() []string {
	out := make([]string, len(s.events))
	for i, ev := range s.events {
		out[i] = ev.EventType()
	}
	return out
}

func newTestEngine() (*Engine, *eventSink) {
	account := &model.Account{
		ID:         "ACC-1",
		Currency:   "USD",
		Balance:    decimal.NewFromInt(100000),
		FreeEquity: decimal.NewFromInt(100000),
	}
	engine := NewEngine(account, frozenClock{now: testTime}, zap.NewNop())
	engine.TrackStrategy(testStrategy)

	sink := &eventSink{}
	engine.RegisterEventHandler(sink.handle)
	return engine, sink
}

func submitHeader() model.CommandHeader {
	return model.CommandHeader{
		ID:         "cmd-1",
		Timestamp:  testTime,
		TraderID:   model.TraderID{Name: "TRADER", Tag: "001"},
		StrategyID: testStrategy,
		AccountID:  "ACC-1",
	}
}

func marketOrder(t *testing.T, id model.OrderID, side model.OrderSide, qty int64) *model.Order {
	t.Helper()
	order, err := model.NewMarketOrder(id, testSymbol, side, decimal.NewFromInt(qty),
		model.PurposeEntry, "TEST", testTime)
	require.NoError(t, err)
	return order
}

func TestMarketOrderFillsAtLastPrice(t *testing.T) {
	engine, sink := newTestEngine()
	engine.SetMarketPrice(testSymbol, decimal.NewFromFloat(1.25))

	err := engine.ExecuteCommand(&model.SubmitOrder{
		CommandHeader: submitHeader(),
		Order:         marketOrder(t, "O-1", model.SideBuy, 10),
		PositionID:    "P-1",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ORDER_SUBMITTED", "ORDER_ACCEPTED", "ORDER_WORKING",
		"ORDER_FILLED", "POSITION_OPENED",
	}, sink.types())

	fill := sink.events[3].(*model.OrderFilled)
	assert.Equal(t, "1.25", fill.AvgPrice.String())
	assert.Equal(t, "10", fill.FilledQty.String())

	position, ok := engine.Database().Position("P-1")
	require.True(t, ok)
	assert.True(t, position.IsLong())
	assert.Equal(t, "10", position.Quantity.String())
	assert.False(t, engine.Portfolio().IsStrategyFlat(testStrategy))
}

func TestMarketOrderWithoutPriceStaysWorking(t *testing.T) {
	engine, sink := newTestEngine()

	err := engine.ExecuteCommand(&model.SubmitOrder{
		CommandHeader: submitHeader(),
		Order:         marketOrder(t, "O-1", model.SideBuy, 10),
		PositionID:    "P-1",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ORDER_SUBMITTED", "ORDER_ACCEPTED", "ORDER_WORKING"}, sink.types())
	assert.True(t, engine.Database().IsOrderWorking("O-1"))
}

func TestOppositeFillClosesPosition(t *testing.T) {
	engine, sink := newTestEngine()
	engine.SetMarketPrice(testSymbol, decimal.NewFromFloat(1.25))

	require.NoError(t, engine.ExecuteCommand(&model.SubmitOrder{
		CommandHeader: submitHeader(),
		Order:         marketOrder(t, "O-1", model.SideBuy, 10),
		PositionID:    "P-1",
	}))
	require.NoError(t, engine.ExecuteCommand(&model.SubmitOrder{
		CommandHeader: submitHeader(),
		Order:         marketOrder(t, "O-2", model.SideSell, 10),
		PositionID:    "P-1",
	}))

	assert.Contains(t, sink.types(), "POSITION_CLOSED")
	position, ok := engine.Database().Position("P-1")
	require.True(t, ok)
	assert.True(t, position.IsClosed())
	assert.True(t, position.Quantity.IsZero())
	assert.True(t, engine.Portfolio().IsCompletelyFlat())
}

func TestPartialReduceModifiesPosition(t *testing.T) {
	engine, _ := newTestEngine()
	engine.SetMarketPrice(testSymbol, decimal.NewFromFloat(1.25))

	require.NoError(t, engine.ExecuteCommand(&model.SubmitOrder{
		CommandHeader: submitHeader(),
		Order:         marketOrder(t, "O-1", model.SideBuy, 10),
		PositionID:    "P-1",
	}))
	require.NoError(t, engine.ExecuteCommand(&model.SubmitOrder{
		CommandHeader: submitHeader(),
		Order:         marketOrder(t, "O-2", model.SideSell, 4),
		PositionID:    "P-1",
	}))

	position, ok := engine.Database().Position("P-1")
	require.True(t, ok)
	assert.True(t, position.IsOpen())
	assert.Equal(t, "6", position.Quantity.String())
}

func TestAtomicOrderFillsEntryAndWorksStop(t *testing.T) {
	engine, sink := newTestEngine()
	engine.SetMarketPrice(testSymbol, decimal.NewFromFloat(1.25))

	entry := marketOrder(t, "O-ENTRY", model.SideBuy, 10)
	stop, err := model.NewStopMarketOrder("O-SL", testSymbol, model.SideSell,
		decimal.NewFromInt(10), decimal.NewFromFloat(1.20), model.PurposeStopLoss, "SL", testTime)
	require.NoError(t, err)
	atomic, err := model.NewAtomicOrder(entry, stop, nil)
	require.NoError(t, err)

	require.NoError(t, engine.ExecuteCommand(&model.SubmitAtomicOrder{
		CommandHeader: submitHeader(),
		AtomicOrder:   atomic,
		PositionID:    "P-1",
	}))

	assert.Contains(t, sink.types(), "POSITION_OPENED")
	assert.True(t, engine.Database().IsOrderCompleted("O-ENTRY"))
	assert.True(t, engine.Database().IsOrderWorking("O-SL"))
}

func TestCancelWorkingOrder(t *testing.T) {
	engine, sink := newTestEngine()

	require.NoError(t, engine.ExecuteCommand(&model.SubmitOrder{
		CommandHeader: submitHeader(),
		Order:         marketOrder(t, "O-1", model.SideBuy, 10),
		PositionID:    "P-1",
	}))
	require.NoError(t, engine.ExecuteCommand(&model.CancelOrder{
		CommandHeader: submitHeader(),
		OrderID:       "O-1",
		Reason:        "TEST",
	}))

	assert.Contains(t, sink.types(), "ORDER_CANCELLED")
	assert.True(t, engine.Database().IsOrderCompleted("O-1"))
}

func TestCancelUnknownOrderRejects(t *testing.T) {
	engine, sink := newTestEngine()

	require.NoError(t, engine.ExecuteCommand(&model.CancelOrder{
		CommandHeader: submitHeader(),
		OrderID:       "O-MISSING",
		Reason:        "TEST",
	}))

	require.Len(t, sink.events, 1)
	reject := sink.events[0].(*model.OrderCancelReject)
	assert.Equal(t, "REJECT_RESPONSE_ORDER_DOES_NOT_EXIST", reject.Response)
}

func TestModifyWorkingOrder(t *testing.T) {
	engine, sink := newTestEngine()

	require.NoError(t, engine.ExecuteCommand(&model.SubmitOrder{
		CommandHeader: submitHeader(),
		Order:         marketOrder(t, "O-1", model.SideBuy, 10),
		PositionID:    "P-1",
	}))
	require.NoError(t, engine.ExecuteCommand(&model.ModifyOrder{
		CommandHeader: submitHeader(),
		OrderID:       "O-1",
		NewPrice:      decimal.NewFromFloat(1.30),
		NewQuantity:   decimal.NewFromInt(5),
	}))

	assert.Contains(t, sink.types(), "ORDER_MODIFIED")
	order, ok := engine.Database().Order("O-1")
	require.True(t, ok)
	assert.Equal(t, "1.3", order.Price.String())
	assert.Equal(t, "5", order.Quantity.String())
}

func TestAccountInquiryEmitsSnapshot(t *testing.T) {
	engine, sink := newTestEngine()

	require.NoError(t, engine.ExecuteCommand(&model.AccountInquiry{CommandHeader: submitHeader()}))

	require.Len(t, sink.events, 1)
	state := sink.events[0].(*model.AccountStateEvent)
	assert.Equal(t, model.AccountID("ACC-1"), state.Account.ID)
}

func TestUnsupportedCommandErrors(t *testing.T) {
	engine, _ := newTestEngine()

	err := engine.ExecuteCommand(unknownCommand{})
	require.Error(t, err)
}

type unknownCommand struct{}

func (unknownCommand) CommandID() string           { return "x" }
func (unknownCommand) CommandTimestamp() time.Time { return testTime }
func (unknownCommand) CommandType() string         { return "UNKNOWN" }
func (unknownCommand) Strategy() model.StrategyID  { return testStrategy }

func TestDatabaseReturnsClones(t *testing.T) {
	engine, _ := newTestEngine()
	engine.SetMarketPrice(testSymbol, decimal.NewFromFloat(1.25))

	require.NoError(t, engine.ExecuteCommand(&model.SubmitOrder{
		CommandHeader: submitHeader(),
		Order:         marketOrder(t, "O-1", model.SideBuy, 10),
		PositionID:    "P-1",
	}))

	position, ok := engine.Database().Position("P-1")
	require.True(t, ok)
	position.Quantity = decimal.NewFromInt(999)

	fresh, ok := engine.Database().Position("P-1")
	require.True(t, ok)
	assert.Equal(t, "10", fresh.Quantity.String())
}
