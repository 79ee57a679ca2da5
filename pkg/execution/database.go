// Package execution provides an in-process execution subsystem: an
// order/position database, a portfolio view and a paper-trading engine
// implementing the collaborator interfaces the strategy host consumes. It
// backs simulation mode and the strategy test-bed; live deployments replace
// it with the NATS-backed client.
package execution

import (
	"sync"

	"github.com/yourusername/quantlink-strategy-host/pkg/model"
)

// Database is the in-memory order/position store, the execution subsystem's
// source of truth. All query results are independently-owned copies so
// callers can never mutate internal state. Safe for concurrent use.
type Database struct {
	mu sync.RWMutex

	orders    map[model.OrderID]*model.Order
	positions map[model.PositionID]*model.Position

	ordersByStrategy    map[model.StrategyID][]model.OrderID
	positionsByStrategy map[model.StrategyID][]model.PositionID
	positionForOrder    map[model.OrderID]model.PositionID
}

// NewDatabase returns an empty Database.
func NewDatabase() *Database {
	return &Database{
		orders:              make(map[model.OrderID]*model.Order),
		positions:           make(map[model.PositionID]*model.Position),
		ordersByStrategy:    make(map[model.StrategyID][]model.OrderID),
		positionsByStrategy: make(map[model.StrategyID][]model.PositionID),
		positionForOrder:    make(map[model.OrderID]model.PositionID),
	}
}

// AddOrder indexes a new order under its strategy and associated position.
func (db *Database) AddOrder(order *model.Order, strategyID model.StrategyID, positionID model.PositionID) {
	db.mu.Lock()
	defer db.mu.Unlock()

	clone := *order
	db.orders[order.ID] = &clone
	db.ordersByStrategy[strategyID] = append(db.ordersByStrategy[strategyID], order.ID)
	if positionID != "" {
		db.positionForOrder[order.ID] = positionID
	}
}

// UpdateOrder replaces the stored state of an order.
func (db *Database) UpdateOrder(order *model.Order) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.orders[order.ID]; !ok {
		return
	}
	clone := *order
	db.orders[order.ID] = &clone
}

// AddPosition indexes a new position under its strategy.
func (db *Database) AddPosition(position *model.Position) {
	db.mu.Lock()
	defer db.mu.Unlock()

	clone := *position
	db.positions[position.ID] = &clone
	db.positionsByStrategy[position.StrategyID] = append(db.positionsByStrategy[position.StrategyID], position.ID)
}

// UpdatePosition replaces the stored state of a position.
func (db *Database) UpdatePosition(position *model.Position) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.positions[position.ID]; !ok {
		return
	}
	clone := *position
	db.positions[position.ID] = &clone
}

// Order implements strategy.ExecutionDatabase.
func (db *Database) Order(id model.OrderID) (*model.Order, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	order, ok := db.orders[id]
	if !ok {
		return nil, false
	}
	clone := *order
	return &clone, true
}

// Orders implements strategy.ExecutionDatabase.
func (db *Database) Orders(strategyID model.StrategyID) map[model.OrderID]*model.Order {
	return db.ordersWhere(strategyID, func(*model.Order) bool { return true })
}

// OrdersWorking implements strategy.ExecutionDatabase.
func (db *Database) OrdersWorking(strategyID model.StrategyID) map[model.OrderID]*model.Order {
	return db.ordersWhere(strategyID, func(o *model.Order) bool { return o.Status.IsWorking() })
}

// OrdersCompleted implements strategy.ExecutionDatabase.
func (db *Database) OrdersCompleted(strategyID model.StrategyID) map[model.OrderID]*model.Order {
	return db.ordersWhere(strategyID, func(o *model.Order) bool { return o.Status.IsCompleted() })
}

func (db *Database) ordersWhere(strategyID model.StrategyID, match func(*model.Order) bool) map[model.OrderID]*model.Order {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make(map[model.OrderID]*model.Order)
	for _, id := range db.ordersByStrategy[strategyID] {
		if order, ok := db.orders[id]; ok && match(order) {
			clone := *order
			out[id] = &clone
		}
	}
	return out
}

// Position implements strategy.ExecutionDatabase.
func (db *Database) Position(id model.PositionID) (*model.Position, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	position, ok := db.positions[id]
	if !ok {
		return nil, false
	}
	clone := *position
	return &clone, true
}

// PositionForOrder implements strategy.ExecutionDatabase.
func (db *Database) PositionForOrder(orderID model.OrderID) (*model.Position, bool) {
	db.mu.RLock()
	positionID, ok := db.positionForOrder[orderID]
	db.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return db.Position(positionID)
}

// Positions implements strategy.ExecutionDatabase.
func (db *Database) Positions(strategyID model.StrategyID) map[model.PositionID]*model.Position {
	return db.positionsWhere(strategyID, func(*model.Position) bool { return true })
}

// PositionsOpen implements strategy.ExecutionDatabase.
func (db *Database) PositionsOpen(strategyID model.StrategyID) map[model.PositionID]*model.Position {
	return db.positionsWhere(strategyID, func(p *model.Position) bool { return p.IsOpen() })
}

// PositionsClosed implements strategy.ExecutionDatabase.
func (db *Database) PositionsClosed(strategyID model.StrategyID) map[model.PositionID]*model.Position {
	return db.positionsWhere(strategyID, func(p *model.Position) bool { return p.IsClosed() })
}

func (db *Database) positionsWhere(strategyID model.StrategyID, match func(*model.Position) bool) map[model.PositionID]*model.Position {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make(map[model.PositionID]*model.Position)
	for _, id := range db.positionsByStrategy[strategyID] {
		if position, ok := db.positions[id]; ok && match(position) {
			clone := *position
			out[id] = &clone
		}
	}
	return out
}

// OrderExists implements strategy.ExecutionDatabase.
func (db *Database) OrderExists(id model.OrderID) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.orders[id]
	return ok
}

// IsOrderWorking implements strategy.ExecutionDatabase.
func (db *Database) IsOrderWorking(id model.OrderID) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	order, ok := db.orders[id]
	return ok && order.Status.IsWorking()
}

// IsOrderCompleted implements strategy.ExecutionDatabase.
func (db *Database) IsOrderCompleted(id model.OrderID) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	order, ok := db.orders[id]
	return ok && order.Status.IsCompleted()
}

// PositionExists implements strategy.ExecutionDatabase.
func (db *Database) PositionExists(id model.PositionID) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.positions[id]
	return ok
}

// IsPositionOpen implements strategy.ExecutionDatabase.
func (db *Database) IsPositionOpen(id model.PositionID) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	position, ok := db.positions[id]
	return ok && position.IsOpen()
}

// IsPositionClosed implements strategy.ExecutionDatabase.
func (db *Database) IsPositionClosed(id model.PositionID) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	position, ok := db.positions[id]
	return ok && position.IsClosed()
}

// OrdersTotalCount implements strategy.ExecutionDatabase.
func (db *Database) OrdersTotalCount(strategyID model.StrategyID) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.ordersByStrategy[strategyID])
}

// OrdersWorkingCount implements strategy.ExecutionDatabase.
func (db *Database) OrdersWorkingCount(strategyID model.StrategyID) int {
	return len(db.OrdersWorking(strategyID))
}

// OrdersCompletedCount implements strategy.ExecutionDatabase.
func (db *Database) OrdersCompletedCount(strategyID model.StrategyID) int {
	return len(db.OrdersCompleted(strategyID))
}

// PositionsTotalCount implements strategy.ExecutionDatabase.
func (db *Database) PositionsTotalCount(strategyID model.StrategyID) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.positionsByStrategy[strategyID])
}

// PositionsOpenCount implements strategy.ExecutionDatabase.
func (db *Database) PositionsOpenCount(strategyID model.StrategyID) int {
	return len(db.PositionsOpen(strategyID))
}

// PositionsClosedCount implements strategy.ExecutionDatabase.
func (db *Database) PositionsClosedCount(strategyID model.StrategyID) int {
	return len(db.PositionsClosed(strategyID))
}
