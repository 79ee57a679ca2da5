package strategy

import (
	"github.com/yourusername/quantlink-strategy-host/pkg/model"
)

// Query accessors over the execution subsystem's state, all scoped by this
// host's strategy identity. The execution database is the source of truth;
// the host never caches order or position state of its own. Every accessor
// is a logged no-op returning a zero value while the execution engine is
// unregistered.

// Account returns the latest account snapshot.
func (s *TradingStrategy) Account() *model.Account {
	if !s.execRegistered("Account") {
		return nil
	}
	return s.exec.Account()
}

// Order looks up an order by id.
func (s *TradingStrategy) Order(id model.OrderID) (*model.Order, bool) {
	if !s.execRegistered("Order") {
		return nil, false
	}
	return s.exec.Database().Order(id)
}

// Orders returns all of this strategy's orders, keyed by id.
func (s *TradingStrategy) Orders() map[model.OrderID]*model.Order {
	if !s.execRegistered("Orders") {
		return nil
	}
	return s.exec.Database().Orders(s.id)
}

// OrdersWorking returns this strategy's working orders.
func (s *TradingStrategy) OrdersWorking() map[model.OrderID]*model.Order {
	if !s.execRegistered("OrdersWorking") {
		return nil
	}
	return s.exec.Database().OrdersWorking(s.id)
}

// OrdersCompleted returns this strategy's completed orders.
func (s *TradingStrategy) OrdersCompleted() map[model.OrderID]*model.Order {
	if !s.execRegistered("OrdersCompleted") {
		return nil
	}
	return s.exec.Database().OrdersCompleted(s.id)
}

// Position looks up a position by id.
func (s *TradingStrategy) Position(id model.PositionID) (*model.Position, bool) {
	if !s.execRegistered("Position") {
		return nil, false
	}
	return s.exec.Database().Position(id)
}

// Positions returns all of this strategy's positions, keyed by id.
func (s *TradingStrategy) Positions() map[model.PositionID]*model.Position {
	if !s.execRegistered("Positions") {
		return nil
	}
	return s.exec.Database().Positions(s.id)
}

// PositionsOpen returns this strategy's open positions.
func (s *TradingStrategy) PositionsOpen() map[model.PositionID]*model.Position {
	if !s.execRegistered("PositionsOpen") {
		return nil
	}
	return s.exec.Database().PositionsOpen(s.id)
}

// PositionsClosed returns this strategy's closed positions.
func (s *TradingStrategy) PositionsClosed() map[model.PositionID]*model.Position {
	if !s.execRegistered("PositionsClosed") {
		return nil
	}
	return s.exec.Database().PositionsClosed(s.id)
}

// OrderExists reports whether the order id is known.
func (s *TradingStrategy) OrderExists(id model.OrderID) bool {
	if !s.execRegistered("OrderExists") {
		return false
	}
	return s.exec.Database().OrderExists(id)
}

// IsOrderWorking reports whether the order rests at the venue.
func (s *TradingStrategy) IsOrderWorking(id model.OrderID) bool {
	if !s.execRegistered("IsOrderWorking") {
		return false
	}
	return s.exec.Database().IsOrderWorking(id)
}

// IsOrderCompleted reports whether the order reached a terminal state.
func (s *TradingStrategy) IsOrderCompleted(id model.OrderID) bool {
	if !s.execRegistered("IsOrderCompleted") {
		return false
	}
	return s.exec.Database().IsOrderCompleted(id)
}

// PositionExists reports whether the position id is known.
func (s *TradingStrategy) PositionExists(id model.PositionID) bool {
	if !s.execRegistered("PositionExists") {
		return false
	}
	return s.exec.Database().PositionExists(id)
}

// IsPositionOpen reports whether the position is open.
func (s *TradingStrategy) IsPositionOpen(id model.PositionID) bool {
	if !s.execRegistered("IsPositionOpen") {
		return false
	}
	return s.exec.Database().IsPositionOpen(id)
}

// IsPositionClosed reports whether the position is closed.
func (s *TradingStrategy) IsPositionClosed(id model.PositionID) bool {
	if !s.execRegistered("IsPositionClosed") {
		return false
	}
	return s.exec.Database().IsPositionClosed(id)
}

// OrdersTotalCount returns the number of orders this strategy has issued.
func (s *TradingStrategy) OrdersTotalCount() int {
	if !s.execRegistered("OrdersTotalCount") {
		return 0
	}
	return s.exec.Database().OrdersTotalCount(s.id)
}

// OrdersWorkingCount returns the number of this strategy's working orders.
func (s *TradingStrategy) OrdersWorkingCount() int {
	if !s.execRegistered("OrdersWorkingCount") {
		return 0
	}
	return s.exec.Database().OrdersWorkingCount(s.id)
}

// OrdersCompletedCount returns the number of this strategy's completed
// orders.
func (s *TradingStrategy) OrdersCompletedCount() int {
	if !s.execRegistered("OrdersCompletedCount") {
		return 0
	}
	return s.exec.Database().OrdersCompletedCount(s.id)
}

// PositionsTotalCount returns the number of this strategy's positions.
func (s *TradingStrategy) PositionsTotalCount() int {
	if !s.execRegistered("PositionsTotalCount") {
		return 0
	}
	return s.exec.Database().PositionsTotalCount(s.id)
}

// PositionsOpenCount returns the number of this strategy's open positions.
func (s *TradingStrategy) PositionsOpenCount() int {
	if !s.execRegistered("PositionsOpenCount") {
		return 0
	}
	return s.exec.Database().PositionsOpenCount(s.id)
}

// PositionsClosedCount returns the number of this strategy's closed
// positions.
func (s *TradingStrategy) PositionsClosedCount() int {
	if !s.execRegistered("PositionsClosedCount") {
		return 0
	}
	return s.exec.Database().PositionsClosedCount(s.id)
}

// IsFlat reports whether this strategy has zero open market exposure. An
// unregistered execution engine reports flat.
func (s *TradingStrategy) IsFlat() bool {
	if !s.execRegistered("IsFlat") {
		return true
	}
	return s.exec.Portfolio().IsStrategyFlat(s.id)
}
