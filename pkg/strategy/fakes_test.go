package strategy

import (
	"time"

	"github.com/yourusername/quantlink-strategy-host/pkg/model"
)

// fakeDataClient is an in-memory DataClient recording subscriptions and
// serving canned instruments and historical bars.
type fakeDataClient struct {
	tickHandlers       map[model.Symbol]func(model.Tick)
	barHandlers        map[model.BarType]func(model.BarType, model.Bar)
	instrumentHandlers map[model.Symbol]func(model.Instrument)

	instruments map[model.Symbol]model.Instrument
	history     []model.Bar

	barsRequests int
	lastFrom     time.Time
	lastTo       time.Time
}

func newFakeDataClient() *fakeDataClient {
	return &fakeDataClient{
		tickHandlers:       make(map[model.Symbol]func(model.Tick)),
		barHandlers:        make(map[model.BarType]func(model.BarType, model.Bar)),
		instrumentHandlers: make(map[model.Symbol]func(model.Instrument)),
		instruments:        make(map[model.Symbol]model.Instrument),
	}
}

func (f *fakeDataClient) Connect() error    { return nil }
func (f *fakeDataClient) Disconnect() error { return nil }

func (f *fakeDataClient) SubscribeTicks(symbol model.Symbol, handler func(model.Tick)) error {
	f.tickHandlers[symbol] = handler
	return nil
}

func (f *fakeDataClient) UnsubscribeTicks(symbol model.Symbol) error {
	delete(f.tickHandlers, symbol)
	return nil
}

func (f *fakeDataClient) SubscribeBars(barType model.BarType, handler func(model.BarType, model.Bar)) error {
	f.barHandlers[barType] = handler
	return nil
}

func (f *fakeDataClient) UnsubscribeBars(barType model.BarType) error {
	delete(f.barHandlers, barType)
	return nil
}

func (f *fakeDataClient) SubscribeInstrument(symbol model.Symbol, handler func(model.Instrument)) error {
	f.instrumentHandlers[symbol] = handler
	return nil
}

func (f *fakeDataClient) UnsubscribeInstrument(symbol model.Symbol) error {
	delete(f.instrumentHandlers, symbol)
	return nil
}

func (f *fakeDataClient) Instrument(symbol model.Symbol) (model.Instrument, bool) {
	instrument, ok := f.instruments[symbol]
	return instrument, ok
}

func (f *fakeDataClient) Instruments() []model.Instrument {
	out := make([]model.Instrument, 0, len(f.instruments))
	for _, instrument := range f.instruments {
		out = append(out, instrument)
	}
	return out
}

func (f *fakeDataClient) Symbols() []model.Symbol {
	out := make([]model.Symbol, 0, len(f.instruments))
	for symbol := range f.instruments {
		out = append(out, symbol)
	}
	return out
}

func (f *fakeDataClient) RequestBars(barType model.BarType, from, to time.Time, handler func(model.BarType, []model.Bar)) error {
	f.barsRequests++
	f.lastFrom = from
	f.lastTo = to
	handler(barType, f.history)
	return nil
}

// fakeExecEngine records every command and answers queries from a seedable
// in-memory database.
type fakeExecEngine struct {
	db       *fakeDatabase
	account  *model.Account
	commands []model.Command
	execErr  error
}

func newFakeExecEngine() *fakeExecEngine {
	return &fakeExecEngine{
		db:      newFakeDatabase(),
		account: &model.Account{ID: "ACC-000", Currency: "USD"},
	}
}

func (f *fakeExecEngine) ExecuteCommand(cmd model.Command) error {
	f.commands = append(f.commands, cmd)
	return f.execErr
}

func (f *fakeExecEngine) Account() *model.Account { return f.account }

func (f *fakeExecEngine) Portfolio() Portfolio { return &fakePortfolio{db: f.db} }

func (f *fakeExecEngine) Database() ExecutionDatabase { return f.db }

// submittedOrders filters the recorded commands down to order submissions.
func (f *fakeExecEngine) submittedOrders() []*model.SubmitOrder {
	var out []*model.SubmitOrder
	for _, cmd := range f.commands {
		if submit, ok := cmd.(*model.SubmitOrder); ok {
			out = append(out, submit)
		}
	}
	return out
}

func (f *fakeExecEngine) cancelledOrders() []*model.CancelOrder {
	var out []*model.CancelOrder
	for _, cmd := range f.commands {
		if cancel, ok := cmd.(*model.CancelOrder); ok {
			out = append(out, cancel)
		}
	}
	return out
}

type fakePortfolio struct {
	db *fakeDatabase
}

func (p *fakePortfolio) IsStrategyFlat(strategyID model.StrategyID) bool {
	return p.db.PositionsOpenCount(strategyID) == 0
}

func (p *fakePortfolio) IsCompletelyFlat() bool {
	for _, position := range p.db.positions {
		if position.IsOpen() {
			return false
		}
	}
	return true
}

// fakeDatabase is a seedable ExecutionDatabase.
type fakeDatabase struct {
	orders           map[model.OrderID]*model.Order
	positions        map[model.PositionID]*model.Position
	orderStrategy    map[model.OrderID]model.StrategyID
	positionForOrder map[model.OrderID]model.PositionID
}

func newFakeDatabase() *fakeDatabase {
	return &fakeDatabase{
		orders:           make(map[model.OrderID]*model.Order),
		positions:        make(map[model.PositionID]*model.Position),
		orderStrategy:    make(map[model.OrderID]model.StrategyID),
		positionForOrder: make(map[model.OrderID]model.PositionID),
	}
}

func (db *fakeDatabase) putOrder(order *model.Order, strategyID model.StrategyID, positionID model.PositionID) {
	db.orders[order.ID] = order
	db.orderStrategy[order.ID] = strategyID
	if positionID != "" {
		db.positionForOrder[order.ID] = positionID
	}
}

func (db *fakeDatabase) putPosition(position *model.Position) {
	db.positions[position.ID] = position
}

func (db *fakeDatabase) Order(id model.OrderID) (*model.Order, bool) {
	order, ok := db.orders[id]
	return order, ok
}

func (db *fakeDatabase) ordersWhere(strategyID model.StrategyID, match func(*model.Order) bool) map[model.OrderID]*model.Order {
	out := make(map[model.OrderID]*model.Order)
	for id, order := range db.orders {
		if db.orderStrategy[id] == strategyID && match(order) {
			out[id] = order
		}
	}
	return out
}

func (db *fakeDatabase) Orders(strategyID model.StrategyID) map[model.OrderID]*model.Order {
	return db.ordersWhere(strategyID, func(*model.Order) bool { return true })
}

func (db *fakeDatabase) OrdersWorking(strategyID model.StrategyID) map[model.OrderID]*model.Order {
	return db.ordersWhere(strategyID, func(o *model.Order) bool { return o.Status.IsWorking() })
}

func (db *fakeDatabase) OrdersCompleted(strategyID model.StrategyID) map[model.OrderID]*model.Order {
	return db.ordersWhere(strategyID, func(o *model.Order) bool { return o.Status.IsCompleted() })
}

func (db *fakeDatabase) Position(id model.PositionID) (*model.Position, bool) {
	position, ok := db.positions[id]
	return position, ok
}

func (db *fakeDatabase) PositionForOrder(orderID model.OrderID) (*model.Position, bool) {
	positionID, ok := db.positionForOrder[orderID]
	if !ok {
		return nil, false
	}
	return db.Position(positionID)
}

func (db *fakeDatabase) positionsWhere(strategyID model.StrategyID, match func(*model.Position) bool) map[model.PositionID]*model.Position {
	out := make(map[model.PositionID]*model.Position)
	for id, position := range db.positions {
		if position.StrategyID == strategyID && match(position) {
			out[id] = position
		}
	}
	return out
}

func (db *fakeDatabase) Positions(strategyID model.StrategyID) map[model.PositionID]*model.Position {
	return db.positionsWhere(strategyID, func(*model.Position) bool { return true })
}

func (db *fakeDatabase) PositionsOpen(strategyID model.StrategyID) map[model.PositionID]*model.Position {
	return db.positionsWhere(strategyID, func(p *model.Position) bool { return p.IsOpen() })
}

func (db *fakeDatabase) PositionsClosed(strategyID model.StrategyID) map[model.PositionID]*model.Position {
	return db.positionsWhere(strategyID, func(p *model.Position) bool { return p.IsClosed() })
}

func (db *fakeDatabase) OrderExists(id model.OrderID) bool {
	_, ok := db.orders[id]
	return ok
}

func (db *fakeDatabase) IsOrderWorking(id model.OrderID) bool {
	order, ok := db.orders[id]
	return ok && order.Status.IsWorking()
}

func (db *fakeDatabase) IsOrderCompleted(id model.OrderID) bool {
	order, ok := db.orders[id]
	return ok && order.Status.IsCompleted()
}

func (db *fakeDatabase) PositionExists(id model.PositionID) bool {
	_, ok := db.positions[id]
	return ok
}

func (db *fakeDatabase) IsPositionOpen(id model.PositionID) bool {
	position, ok := db.positions[id]
	return ok && position.IsOpen()
}

func (db *fakeDatabase) IsPositionClosed(id model.PositionID) bool {
	position, ok := db.positions[id]
	return ok && position.IsClosed()
}

func (db *fakeDatabase) OrdersTotalCount(strategyID model.StrategyID) int {
	return len(db.Orders(strategyID))
}

func (db *fakeDatabase) OrdersWorkingCount(strategyID model.StrategyID) int {
	return len(db.OrdersWorking(strategyID))
}

func (db *fakeDatabase) OrdersCompletedCount(strategyID model.StrategyID) int {
	return len(db.OrdersCompleted(strategyID))
}

func (db *fakeDatabase) PositionsTotalCount(strategyID model.StrategyID) int {
	return len(db.Positions(strategyID))
}

func (db *fakeDatabase) PositionsOpenCount(strategyID model.StrategyID) int {
	return len(db.PositionsOpen(strategyID))
}

func (db *fakeDatabase) PositionsClosedCount(strategyID model.StrategyID) int {
	return len(db.PositionsClosed(strategyID))
}
