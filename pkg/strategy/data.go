package strategy

import (
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/quantlink-strategy-host/pkg/indicators"
	"github.com/yourusername/quantlink-strategy-host/pkg/model"
	"github.com/yourusername/quantlink-strategy-host/pkg/series"
)

// indicatorEntry tracks one registered indicator, in registration order.
type indicatorEntry struct {
	indicator indicators.Indicator
}

// tickBinding binds an indicator's update function to a tick source. The
// function pointer identifies the pair for idempotent registration.
type tickBinding struct {
	indicator indicators.Indicator
	update    func(model.Tick)
	fnPtr     uintptr
}

// barBinding binds an indicator's update function to a bar source.
type barBinding struct {
	indicator indicators.Indicator
	update    func(model.Bar)
	fnPtr     uintptr
}

// RegisterIndicatorTicks binds an indicator to the tick stream of a symbol.
// The update function receives every tick before OnTick fires. Registering
// the same (indicator, update function) pair twice for a symbol is a no-op
// reported in the log. The pair is identified by the function's code
// pointer: two closures from the same source line count as the same update
// function, so an indicator that needs several bindings on one source must
// use distinct functions, not one closure constructed in a loop.
func (s *TradingStrategy) RegisterIndicatorTicks(symbol model.Symbol, indicator indicators.Indicator, update func(model.Tick)) error {
	if indicator == nil {
		return fmt.Errorf("indicator cannot be nil")
	}
	if update == nil {
		return fmt.Errorf("update function cannot be nil")
	}

	fnPtr := reflect.ValueOf(update).Pointer()
	for _, b := range s.tickBindings[symbol] {
		if b.indicator == indicator && b.fnPtr == fnPtr {
			s.log.Info("indicator already registered for symbol",
				zap.String("indicator", indicator.Name()),
				zap.Stringer("symbol", symbol))
			return nil
		}
	}

	s.tickBindings[symbol] = append(s.tickBindings[symbol], tickBinding{
		indicator: indicator,
		update:    update,
		fnPtr:     fnPtr,
	})
	s.trackIndicator(indicator)
	s.log.Info("indicator registered",
		zap.String("indicator", indicator.Name()),
		zap.Stringer("symbol", symbol))
	return nil
}

// RegisterIndicatorBars binds an indicator to the bar stream of a bar type.
// The update function receives every bar before OnBar fires. Registering the
// same (indicator, update function) pair twice for a bar type is a no-op
// reported in the log. Update-function identity is the code pointer, as for
// RegisterIndicatorTicks: closures from the same source line are one
// function regardless of captured state.
func (s *TradingStrategy) RegisterIndicatorBars(barType model.BarType, indicator indicators.Indicator, update func(model.Bar)) error {
	if indicator == nil {
		return fmt.Errorf("indicator cannot be nil")
	}
	if update == nil {
		return fmt.Errorf("update function cannot be nil")
	}

	fnPtr := reflect.ValueOf(update).Pointer()
	for _, b := range s.barBindings[barType] {
		if b.indicator == indicator && b.fnPtr == fnPtr {
			s.log.Info("indicator already registered for bar type",
				zap.String("indicator", indicator.Name()),
				zap.Stringer("bar_type", barType))
			return nil
		}
	}

	s.barBindings[barType] = append(s.barBindings[barType], barBinding{
		indicator: indicator,
		update:    update,
		fnPtr:     fnPtr,
	})
	s.trackIndicator(indicator)
	s.log.Info("indicator registered",
		zap.String("indicator", indicator.Name()),
		zap.Stringer("bar_type", barType))
	return nil
}

func (s *TradingStrategy) trackIndicator(indicator indicators.Indicator) {
	for _, e := range s.indicators {
		if e.indicator == indicator {
			return
		}
	}
	s.indicators = append(s.indicators, indicatorEntry{indicator: indicator})
}

// Indicators returns the registered indicators in registration order.
func (s *TradingStrategy) Indicators() []indicators.Indicator {
	out := make([]indicators.Indicator, len(s.indicators))
	for i, e := range s.indicators {
		out[i] = e.indicator
	}
	return out
}

// IndicatorsInitialized polls every registered indicator and returns true
// iff all report themselves initialized.
func (s *TradingStrategy) IndicatorsInitialized() bool {
	for _, e := range s.indicators {
		if !e.indicator.IsInitialized() {
			return false
		}
	}
	return true
}

// HandleTick applies one tick in arrival order: buffer update, then indicator
// fan-out in registration order, then OnTick if the host is Running. This is
// the entry point the market-data collaborator delivers ticks to.
func (s *TradingStrategy) HandleTick(tick model.Tick) {
	buf, ok := s.ticks[tick.Symbol]
	if !ok {
		var err error
		buf, err = series.New[model.Tick](s.tickCapacity)
		if err != nil {
			s.log.Error("failed to create tick buffer", zap.Error(err))
			return
		}
		s.ticks[tick.Symbol] = buf
	}
	buf.Record(tick)

	for _, b := range s.tickBindings[tick.Symbol] {
		s.guardIndicatorUpdate(b.indicator.Name(), func() { b.update(tick) })
	}

	if s.IsRunning() {
		s.guard("OnTick", func() error { return s.callbacks.OnTick(tick) })
	}
}

// HandleBar applies one bar in arrival order: buffer update, then indicator
// fan-out in registration order, then OnBar if the host is Running.
func (s *TradingStrategy) HandleBar(barType model.BarType, bar model.Bar) {
	buf, ok := s.bars[barType]
	if !ok {
		var err error
		buf, err = series.New[model.Bar](s.barCapacity)
		if err != nil {
			s.log.Error("failed to create bar buffer", zap.Error(err))
			return
		}
		s.bars[barType] = buf
	}
	buf.Record(bar)

	for _, b := range s.barBindings[barType] {
		s.guardIndicatorUpdate(b.indicator.Name(), func() { b.update(bar) })
	}

	if s.IsRunning() {
		s.guard("OnBar", func() error { return s.callbacks.OnBar(barType, bar) })
	}
}

// HandleBars applies a historical bar batch, oldest first.
func (s *TradingStrategy) HandleBars(barType model.BarType, bars []model.Bar) {
	s.log.Info("received bar batch",
		zap.Stringer("bar_type", barType),
		zap.Int("count", len(bars)))
	for _, bar := range bars {
		s.HandleBar(barType, bar)
	}
}

// HandleInstrument forwards an instrument update to OnInstrument if the host
// is Running.
func (s *TradingStrategy) HandleInstrument(instrument model.Instrument) {
	if s.IsRunning() {
		s.guard("OnInstrument", func() error { return s.callbacks.OnInstrument(instrument) })
	}
}

// guardIndicatorUpdate isolates a user-supplied indicator update function the
// same way user hooks are isolated.
func (s *TradingStrategy) guardIndicatorUpdate(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("indicator update panicked",
				zap.String("indicator", name),
				zap.Any("panic", r))
		}
	}()
	fn()
}

// Tick returns the tick at the given index for a symbol, 0 most recent.
func (s *TradingStrategy) Tick(symbol model.Symbol, index int) (model.Tick, error) {
	buf, ok := s.ticks[symbol]
	if !ok {
		return model.Tick{}, fmt.Errorf("no ticks recorded for %s", symbol)
	}
	return buf.Get(index)
}

// Ticks returns a copy of the tick history for a symbol, most recent first.
func (s *TradingStrategy) Ticks(symbol model.Symbol) []model.Tick {
	buf, ok := s.ticks[symbol]
	if !ok {
		return nil
	}
	return buf.Snapshot()
}

// TickCount returns the number of buffered ticks for a symbol.
func (s *TradingStrategy) TickCount(symbol model.Symbol) int {
	buf, ok := s.ticks[symbol]
	if !ok {
		return 0
	}
	return buf.Len()
}

// HasTicks returns true iff at least one tick is buffered for the symbol.
func (s *TradingStrategy) HasTicks(symbol model.Symbol) bool {
	return s.TickCount(symbol) > 0
}

// Bar returns the bar at the given index for a bar type, 0 most recent.
func (s *TradingStrategy) Bar(barType model.BarType, index int) (model.Bar, error) {
	buf, ok := s.bars[barType]
	if !ok {
		return model.Bar{}, fmt.Errorf("no bars recorded for %s", barType)
	}
	return buf.Get(index)
}

// Bars returns a copy of the bar history for a bar type, most recent first.
func (s *TradingStrategy) Bars(barType model.BarType) []model.Bar {
	buf, ok := s.bars[barType]
	if !ok {
		return nil
	}
	return buf.Snapshot()
}

// BarCount returns the number of buffered bars for a bar type.
func (s *TradingStrategy) BarCount(barType model.BarType) int {
	buf, ok := s.bars[barType]
	if !ok {
		return 0
	}
	return buf.Len()
}

// HasBars returns true iff at least one bar is buffered for the bar type.
func (s *TradingStrategy) HasBars(barType model.BarType) bool {
	return s.BarCount(barType) > 0
}

// SubscribeTicks subscribes this host to the tick stream of a symbol.
func (s *TradingStrategy) SubscribeTicks(symbol model.Symbol) {
	if !s.dataRegistered("SubscribeTicks") {
		return
	}
	if err := s.data.SubscribeTicks(symbol, s.HandleTick); err != nil {
		s.log.Error("failed to subscribe ticks", zap.Stringer("symbol", symbol), zap.Error(err))
		return
	}
	s.log.Info("subscribed to ticks", zap.Stringer("symbol", symbol))
}

// UnsubscribeTicks removes this host's tick subscription for a symbol.
func (s *TradingStrategy) UnsubscribeTicks(symbol model.Symbol) {
	if !s.dataRegistered("UnsubscribeTicks") {
		return
	}
	if err := s.data.UnsubscribeTicks(symbol); err != nil {
		s.log.Error("failed to unsubscribe ticks", zap.Stringer("symbol", symbol), zap.Error(err))
		return
	}
	s.log.Info("unsubscribed from ticks", zap.Stringer("symbol", symbol))
}

// SubscribeBars subscribes this host to the bar stream of a bar type.
func (s *TradingStrategy) SubscribeBars(barType model.BarType) {
	if !s.dataRegistered("SubscribeBars") {
		return
	}
	if err := s.data.SubscribeBars(barType, s.HandleBar); err != nil {
		s.log.Error("failed to subscribe bars", zap.Stringer("bar_type", barType), zap.Error(err))
		return
	}
	s.log.Info("subscribed to bars", zap.Stringer("bar_type", barType))
}

// UnsubscribeBars removes this host's bar subscription for a bar type.
func (s *TradingStrategy) UnsubscribeBars(barType model.BarType) {
	if !s.dataRegistered("UnsubscribeBars") {
		return
	}
	if err := s.data.UnsubscribeBars(barType); err != nil {
		s.log.Error("failed to unsubscribe bars", zap.Stringer("bar_type", barType), zap.Error(err))
		return
	}
	s.log.Info("unsubscribed from bars", zap.Stringer("bar_type", barType))
}

// SubscribeInstrument subscribes this host to instrument updates.
func (s *TradingStrategy) SubscribeInstrument(symbol model.Symbol) {
	if !s.dataRegistered("SubscribeInstrument") {
		return
	}
	if err := s.data.SubscribeInstrument(symbol, s.HandleInstrument); err != nil {
		s.log.Error("failed to subscribe instrument", zap.Stringer("symbol", symbol), zap.Error(err))
		return
	}
	s.log.Info("subscribed to instrument", zap.Stringer("symbol", symbol))
}

// UnsubscribeInstrument removes this host's instrument subscription.
func (s *TradingStrategy) UnsubscribeInstrument(symbol model.Symbol) {
	if !s.dataRegistered("UnsubscribeInstrument") {
		return
	}
	if err := s.data.UnsubscribeInstrument(symbol); err != nil {
		s.log.Error("failed to unsubscribe instrument", zap.Stringer("symbol", symbol), zap.Error(err))
		return
	}
	s.log.Info("unsubscribed from instrument", zap.Stringer("symbol", symbol))
}

// Instrument looks up the instrument for a symbol at the data client.
func (s *TradingStrategy) Instrument(symbol model.Symbol) (model.Instrument, bool) {
	if !s.dataRegistered("Instrument") {
		return model.Instrument{}, false
	}
	return s.data.Instrument(symbol)
}

// Instruments returns all instruments known to the data client.
func (s *TradingStrategy) Instruments() []model.Instrument {
	if !s.dataRegistered("Instruments") {
		return nil
	}
	return s.data.Instruments()
}

// Symbols returns all symbols known to the data client.
func (s *TradingStrategy) Symbols() []model.Symbol {
	if !s.dataRegistered("Symbols") {
		return nil
	}
	return s.data.Symbols()
}

// HistoricalBars requests historical bars for a bar type. A zero to defaults
// to now; a zero from defaults to one day before to. The resulting batch is
// delivered to HandleBars. The range start must be strictly before its end.
func (s *TradingStrategy) HistoricalBars(barType model.BarType, from, to time.Time) error {
	if !s.dataRegistered("HistoricalBars") {
		return nil
	}
	if to.IsZero() {
		to = s.clock.TimeNow()
	}
	if from.IsZero() {
		from = to.Add(-24 * time.Hour)
	}
	if !from.Before(to) {
		return fmt.Errorf("historical bars range start %s must be before end %s", from, to)
	}
	s.log.Info("requesting historical bars",
		zap.Stringer("bar_type", barType),
		zap.Time("from", from),
		zap.Time("to", to))
	return s.data.RequestBars(barType, from, to, s.HandleBars)
}
