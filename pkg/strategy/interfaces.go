package strategy

import (
	"time"

	"github.com/yourusername/quantlink-strategy-host/pkg/model"
)

// DataClient is the market-data collaborator. Implementations deliver ticks,
// bars and instrument updates to the handlers registered through the
// subscribe calls, serialized with every other inbound call to the host.
type DataClient interface {
	// Connect establishes the transport.
	Connect() error

	// Disconnect tears the transport down.
	Disconnect() error

	// SubscribeTicks registers a handler for ticks of the given symbol.
	SubscribeTicks(symbol model.Symbol, handler func(model.Tick)) error

	// UnsubscribeTicks removes the tick subscription for the symbol.
	UnsubscribeTicks(symbol model.Symbol) error

	// SubscribeBars registers a handler for bars of the given bar type.
	SubscribeBars(barType model.BarType, handler func(model.BarType, model.Bar)) error

	// UnsubscribeBars removes the bar subscription for the bar type.
	UnsubscribeBars(barType model.BarType) error

	// SubscribeInstrument registers a handler for instrument updates.
	SubscribeInstrument(symbol model.Symbol, handler func(model.Instrument)) error

	// UnsubscribeInstrument removes the instrument subscription.
	UnsubscribeInstrument(symbol model.Symbol) error

	// Instrument looks up the instrument for a symbol.
	Instrument(symbol model.Symbol) (model.Instrument, bool)

	// Instruments returns all known instruments.
	Instruments() []model.Instrument

	// Symbols returns all known symbols.
	Symbols() []model.Symbol

	// RequestBars requests historical bars for the half-open range
	// [from, to) and delivers them, oldest first, to the handler.
	RequestBars(barType model.BarType, from, to time.Time, handler func(model.BarType, []model.Bar)) error
}

// ExecutionDatabase is the read side of the execution subsystem's order and
// position store, the source of truth for order/position state. All queries
// taking a StrategyID are scoped to that strategy's identifiers.
type ExecutionDatabase interface {
	// Order looks up an order by id.
	Order(id model.OrderID) (*model.Order, bool)

	// Orders returns all orders for the strategy, keyed by id.
	Orders(strategyID model.StrategyID) map[model.OrderID]*model.Order

	// OrdersWorking returns the strategy's working orders.
	OrdersWorking(strategyID model.StrategyID) map[model.OrderID]*model.Order

	// OrdersCompleted returns the strategy's completed orders.
	OrdersCompleted(strategyID model.StrategyID) map[model.OrderID]*model.Order

	// Position looks up a position by id.
	Position(id model.PositionID) (*model.Position, bool)

	// PositionForOrder looks up the position an order is associated with.
	PositionForOrder(orderID model.OrderID) (*model.Position, bool)

	// Positions returns all positions for the strategy, keyed by id.
	Positions(strategyID model.StrategyID) map[model.PositionID]*model.Position

	// PositionsOpen returns the strategy's open positions.
	PositionsOpen(strategyID model.StrategyID) map[model.PositionID]*model.Position

	// PositionsClosed returns the strategy's closed positions.
	PositionsClosed(strategyID model.StrategyID) map[model.PositionID]*model.Position

	// OrderExists reports whether the order id is known.
	OrderExists(id model.OrderID) bool

	// IsOrderWorking reports whether the order rests at the venue.
	IsOrderWorking(id model.OrderID) bool

	// IsOrderCompleted reports whether the order reached a terminal state.
	IsOrderCompleted(id model.OrderID) bool

	// PositionExists reports whether the position id is known.
	PositionExists(id model.PositionID) bool

	// IsPositionOpen reports whether the position is open.
	IsPositionOpen(id model.PositionID) bool

	// IsPositionClosed reports whether the position is closed.
	IsPositionClosed(id model.PositionID) bool

	// OrdersTotalCount returns the number of orders for the strategy.
	OrdersTotalCount(strategyID model.StrategyID) int

	// OrdersWorkingCount returns the number of working orders.
	OrdersWorkingCount(strategyID model.StrategyID) int

	// OrdersCompletedCount returns the number of completed orders.
	OrdersCompletedCount(strategyID model.StrategyID) int

	// PositionsTotalCount returns the number of positions for the strategy.
	PositionsTotalCount(strategyID model.StrategyID) int

	// PositionsOpenCount returns the number of open positions.
	PositionsOpenCount(strategyID model.StrategyID) int

	// PositionsClosedCount returns the number of closed positions.
	PositionsClosedCount(strategyID model.StrategyID) int
}

// Portfolio exposes aggregate exposure queries over the execution
// subsystem's positions.
type Portfolio interface {
	// IsStrategyFlat reports whether the strategy has zero open exposure.
	IsStrategyFlat(strategyID model.StrategyID) bool

	// IsCompletelyFlat reports whether no strategy has open exposure.
	IsCompletelyFlat() bool
}

// ExecutionEngine is the execution-subsystem collaborator. Commands are
// handed off, not awaited: ExecuteCommand returns once the command has been
// accepted for transport, and results surface later as events.
type ExecutionEngine interface {
	// ExecuteCommand takes ownership of the command and forwards it.
	ExecuteCommand(cmd model.Command) error

	// Account returns the latest account snapshot.
	Account() *model.Account

	// Portfolio returns the aggregate exposure view.
	Portfolio() Portfolio

	// Database returns the order/position store.
	Database() ExecutionDatabase
}
