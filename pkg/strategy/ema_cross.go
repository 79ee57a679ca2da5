package strategy

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yourusername/quantlink-strategy-host/pkg/indicators"
	"github.com/yourusername/quantlink-strategy-host/pkg/model"
	"github.com/yourusername/quantlink-strategy-host/pkg/risk"
)

// EMACrossParams configures an EMACross strategy.
type EMACrossParams struct {
	Symbol     model.Symbol
	BarType    model.BarType
	FastPeriod int
	SlowPeriod int
	Sizer      risk.PositionSizer
	StopOffset decimal.Decimal // distance of the protective stop from entry
}

// EMACross is a reference strategy: enter long when the fast EMA crosses
// above the slow EMA, flatten when it crosses back below. It demonstrates
// indicator registration, atomic order submission and state persistence on
// top of the host.
type EMACross struct {
	NoopCallbacks

	host   *TradingStrategy
	params EMACrossParams

	fast *indicators.EMA
	slow *indicators.EMA

	positionID model.PositionID
	wasAbove   bool
	hasSignal  bool
}

// NewEMACrossStrategy builds an EMACross strategy wired to a fresh host.
func NewEMACrossStrategy(cfg Config, params EMACrossParams) (*TradingStrategy, *EMACross, error) {
	if params.FastPeriod <= 0 || params.SlowPeriod <= 0 {
		return nil, nil, fmt.Errorf("EMA periods must be positive, got fast=%d slow=%d", params.FastPeriod, params.SlowPeriod)
	}
	if params.FastPeriod >= params.SlowPeriod {
		return nil, nil, fmt.Errorf("fast period %d must be below slow period %d", params.FastPeriod, params.SlowPeriod)
	}
	if params.Sizer == nil {
		return nil, nil, fmt.Errorf("position sizer cannot be nil")
	}

	ec := &EMACross{
		params: params,
		fast:   indicators.NewEMA(params.FastPeriod),
		slow:   indicators.NewEMA(params.SlowPeriod),
	}
	host, err := New(cfg, ec)
	if err != nil {
		return nil, nil, err
	}
	ec.host = host
	return host, ec, nil
}

// OnStart subscribes to market data and binds the indicators.
func (ec *EMACross) OnStart() error {
	if err := ec.host.RegisterIndicatorBars(ec.params.BarType, ec.fast, ec.updateFast); err != nil {
		return err
	}
	if err := ec.host.RegisterIndicatorBars(ec.params.BarType, ec.slow, ec.updateSlow); err != nil {
		return err
	}

	ec.host.SubscribeInstrument(ec.params.Symbol)
	ec.host.SubscribeBars(ec.params.BarType)

	// Warm the indicators from history before live bars arrive.
	return ec.host.HistoricalBars(ec.params.BarType, time.Time{}, time.Time{})
}

func (ec *EMACross) updateFast(bar model.Bar) {
	ec.fast.Update(bar.Close.InexactFloat64())
}

func (ec *EMACross) updateSlow(bar model.Bar) {
	ec.slow.Update(bar.Close.InexactFloat64())
}

// OnBar evaluates the cross once both EMAs are warm.
func (ec *EMACross) OnBar(barType model.BarType, bar model.Bar) error {
	if barType != ec.params.BarType || !ec.host.IndicatorsInitialized() {
		return nil
	}

	above := ec.fast.Value() > ec.slow.Value()
	defer func() {
		ec.wasAbove = above
		ec.hasSignal = true
	}()
	if !ec.hasSignal || above == ec.wasAbove {
		return nil
	}

	if above {
		return ec.enterLong(bar)
	}
	if !ec.host.IsFlat() {
		ec.host.FlattenAllPositions("EMA_CROSS_EXIT")
	}
	return nil
}

func (ec *EMACross) enterLong(bar model.Bar) error {
	if !ec.host.IsFlat() {
		return nil
	}

	instrument, ok := ec.host.Instrument(ec.params.Symbol)
	if !ok {
		return fmt.Errorf("instrument %s not available", ec.params.Symbol)
	}
	equity := decimal.Zero
	if account := ec.host.Account(); account != nil {
		equity = account.FreeEquity
	}

	stopPrice := bar.Close.Sub(ec.params.StopOffset)
	quantity, err := ec.params.Sizer.Calculate(instrument, equity, bar.Close, stopPrice)
	if err != nil {
		return fmt.Errorf("position sizing failed: %w", err)
	}

	now := ec.host.TimeNow()
	entry, err := model.NewMarketOrder(
		ec.host.NewOrderID(), ec.params.Symbol, model.SideBuy, quantity,
		model.PurposeEntry, "EMA_CROSS_ENTRY", now)
	if err != nil {
		return err
	}
	stop, err := model.NewStopMarketOrder(
		ec.host.NewOrderID(), ec.params.Symbol, model.SideSell, quantity, stopPrice,
		model.PurposeStopLoss, "EMA_CROSS_SL", now)
	if err != nil {
		return err
	}
	atomic, err := model.NewAtomicOrder(entry, stop, nil)
	if err != nil {
		return err
	}

	ec.positionID = ec.host.NewPositionID()
	ec.host.SubmitAtomicOrder(atomic, ec.positionID)
	return nil
}

// OnStop unsubscribes from market data.
func (ec *EMACross) OnStop() error {
	ec.host.UnsubscribeBars(ec.params.BarType)
	ec.host.UnsubscribeInstrument(ec.params.Symbol)
	return nil
}

// OnReset clears the cross detector.
func (ec *EMACross) OnReset() error {
	ec.fast.Reset()
	ec.slow.Reset()
	ec.positionID = ""
	ec.wasAbove = false
	ec.hasSignal = false
	return nil
}

// OnSave persists the working position id.
func (ec *EMACross) OnSave() (map[string][]byte, error) {
	return map[string][]byte{
		"EMACross.PositionId": []byte(ec.positionID),
	}, nil
}

// OnLoad restores the working position id.
func (ec *EMACross) OnLoad(state map[string][]byte) error {
	if raw, ok := state["EMACross.PositionId"]; ok {
		ec.positionID = model.PositionID(raw)
	}
	return nil
}

// OnEvent logs fills so operators can follow the strategy's activity.
func (ec *EMACross) OnEvent(event model.Event) error {
	if fill, ok := event.(*model.OrderFilled); ok {
		ec.host.log.Info("order filled",
			zap.String("order_id", string(fill.OrderID)),
			zap.String("avg_price", fill.AvgPrice.String()))
	}
	return nil
}
