package execution

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yourusername/quantlink-strategy-host/pkg/ids"
	"github.com/yourusername/quantlink-strategy-host/pkg/model"
	"github.com/yourusername/quantlink-strategy-host/pkg/strategy"
)

// Clock is the time source the engine stamps events with.
type Clock interface {
	TimeNow() time.Time
}

// Engine is a paper-trading execution engine. It accepts commands from a
// strategy host, maintains the order/position database, and emits execution
// events to the registered handler. Market orders fill immediately at the
// last price set for their symbol; orders without a price stay working.
//
// Events are emitted synchronously and command dispatch may re-enter from
// inside an event handler, so the engine itself holds no lock; it relies on
// the single-thread-per-host invariant like the host does.
type Engine struct {
	log       *zap.Logger
	clock     Clock
	db        *Database
	portfolio *PortfolioView
	account   *model.Account

	prices  map[model.Symbol]decimal.Decimal
	handler func(model.Event)
}

// NewEngine returns an engine over a fresh database.
func NewEngine(account *model.Account, clk Clock, log *zap.Logger) *Engine {
	db := NewDatabase()
	return &Engine{
		log:       log.Named("ExecEngine"),
		clock:     clk,
		db:        db,
		portfolio: NewPortfolioView(db),
		account:   account,
		prices:    make(map[model.Symbol]decimal.Decimal),
	}
}

// RegisterEventHandler sets the sink execution events are delivered to,
// typically the strategy host's HandleEvent.
func (e *Engine) RegisterEventHandler(handler func(model.Event)) {
	e.handler = handler
}

// SetMarketPrice sets the fill price for market orders on a symbol.
func (e *Engine) SetMarketPrice(symbol model.Symbol, price decimal.Decimal) {
	e.prices[symbol] = price
}

// Account implements strategy.ExecutionEngine.
func (e *Engine) Account() *model.Account {
	clone := *e.account
	return &clone
}

// Portfolio implements strategy.ExecutionEngine.
func (e *Engine) Portfolio() strategy.Portfolio { return e.portfolio }

// Database implements strategy.ExecutionEngine.
func (e *Engine) Database() strategy.ExecutionDatabase { return e.db }

// TrackStrategy registers a strategy with the portfolio view.
func (e *Engine) TrackStrategy(strategyID model.StrategyID) {
	e.portfolio.Track(strategyID)
}

// ExecuteCommand implements strategy.ExecutionEngine.
func (e *Engine) ExecuteCommand(cmd model.Command) error {
	switch c := cmd.(type) {
	case *model.AccountInquiry:
		e.emit(&model.AccountStateEvent{EventHeader: e.newEventHeader(), Account: e.Account()})
	case *model.SubmitOrder:
		e.submitOrder(c.Order, c.StrategyID, c.PositionID)
	case *model.SubmitAtomicOrder:
		e.submitOrder(c.AtomicOrder.Entry, c.StrategyID, c.PositionID)
		e.acceptContingent(c.AtomicOrder.StopLoss, c.StrategyID, c.PositionID)
		if c.AtomicOrder.HasTakeProfit() {
			e.acceptContingent(c.AtomicOrder.TakeProfit, c.StrategyID, c.PositionID)
		}
	case *model.ModifyOrder:
		e.modifyOrder(c)
	case *model.CancelOrder:
		e.cancelOrder(c)
	default:
		return fmt.Errorf("unsupported command type %s", cmd.CommandType())
	}
	return nil
}

func (e *Engine) newEventHeader() model.EventHeader {
	return model.EventHeader{ID: ids.NewCorrelationID(), Timestamp: e.clock.TimeNow()}
}

func (e *Engine) emit(ev model.Event) {
	if e.handler == nil {
		return
	}
	e.handler(ev)
}

// submitOrder accepts an order and, for market orders with a known last
// price, fills it immediately.
func (e *Engine) submitOrder(order *model.Order, strategyID model.StrategyID, positionID model.PositionID) {
	accepted := *order
	accepted.Status = model.StatusWorking
	e.db.AddOrder(&accepted, strategyID, positionID)

	e.emit(&model.OrderSubmitted{EventHeader: e.newEventHeader(), OrderID: order.ID})
	e.emit(&model.OrderAccepted{EventHeader: e.newEventHeader(), OrderID: order.ID})
	e.emit(&model.OrderWorking{EventHeader: e.newEventHeader(), OrderID: order.ID, Price: order.Price})

	if order.Type != model.TypeMarket {
		return
	}
	price, ok := e.prices[order.Symbol]
	if !ok {
		e.log.Warn("no market price for symbol, market order left working",
			zap.Stringer("symbol", order.Symbol),
			zap.String("order_id", string(order.ID)))
		return
	}
	e.fill(&accepted, strategyID, positionID, price)
}

// acceptContingent registers a contingent order as working without filling.
func (e *Engine) acceptContingent(order *model.Order, strategyID model.StrategyID, positionID model.PositionID) {
	accepted := *order
	accepted.Status = model.StatusWorking
	e.db.AddOrder(&accepted, strategyID, positionID)

	e.emit(&model.OrderSubmitted{EventHeader: e.newEventHeader(), OrderID: order.ID})
	e.emit(&model.OrderWorking{EventHeader: e.newEventHeader(), OrderID: order.ID, Price: order.Price})
}

func (e *Engine) fill(order *model.Order, strategyID model.StrategyID, positionID model.PositionID, price decimal.Decimal) {
	filled := *order
	filled.Status = model.StatusFilled
	filled.FilledQty = order.Quantity
	e.db.UpdateOrder(&filled)

	e.emit(&model.OrderFilled{
		EventHeader: e.newEventHeader(),
		OrderID:     order.ID,
		PositionID:  positionID,
		Side:        order.Side,
		FilledQty:   order.Quantity,
		AvgPrice:    price,
	})
	e.applyFill(&filled, strategyID, positionID, price)
}

// applyFill folds a fill into the position it is associated with.
func (e *Engine) applyFill(order *model.Order, strategyID model.StrategyID, positionID model.PositionID, price decimal.Decimal) {
	position, exists := e.db.Position(positionID)
	if !exists {
		market := model.MarketLong
		if order.Side == model.SideSell {
			market = model.MarketShort
		}
		position = &model.Position{
			ID:           positionID,
			Symbol:       order.Symbol,
			StrategyID:   strategyID,
			Market:       market,
			Quantity:     order.Quantity,
			AvgOpenPrice: price,
			OpenedAt:     e.clock.TimeNow(),
		}
		e.db.AddPosition(position)
		e.emit(&model.PositionOpened{EventHeader: e.newEventHeader(), Position: position})
		return
	}

	sameDirection := (position.IsLong() && order.Side == model.SideBuy) ||
		(position.IsShort() && order.Side == model.SideSell)
	if sameDirection {
		position.Quantity = position.Quantity.Add(order.Quantity)
		e.db.UpdatePosition(position)
		e.emit(&model.PositionModified{EventHeader: e.newEventHeader(), Position: position})
		return
	}

	position.Quantity = position.Quantity.Sub(order.Quantity)
	if position.Quantity.IsPositive() {
		e.db.UpdatePosition(position)
		e.emit(&model.PositionModified{EventHeader: e.newEventHeader(), Position: position})
		return
	}

	position.Quantity = decimal.Zero
	position.Market = model.MarketFlat
	position.ClosedAt = e.clock.TimeNow()
	e.db.UpdatePosition(position)
	e.emit(&model.PositionClosed{EventHeader: e.newEventHeader(), Position: position})
}

func (e *Engine) modifyOrder(cmd *model.ModifyOrder) {
	order, ok := e.db.Order(cmd.OrderID)
	if !ok || !order.Status.IsWorking() {
		e.log.Warn("cannot modify order", zap.String("order_id", string(cmd.OrderID)))
		return
	}
	order.Price = cmd.NewPrice
	if cmd.NewQuantity.IsPositive() {
		order.Quantity = cmd.NewQuantity
	}
	e.db.UpdateOrder(order)
	e.emit(&model.OrderModified{
		EventHeader: e.newEventHeader(),
		OrderID:     cmd.OrderID,
		NewPrice:    cmd.NewPrice,
		NewQuantity: order.Quantity,
	})
}

func (e *Engine) cancelOrder(cmd *model.CancelOrder) {
	order, ok := e.db.Order(cmd.OrderID)
	if !ok || !order.Status.IsWorking() {
		e.emit(&model.OrderCancelReject{
			EventHeader: e.newEventHeader(),
			OrderID:     cmd.OrderID,
			Response:    "REJECT_RESPONSE_ORDER_DOES_NOT_EXIST",
			Reason:      cmd.Reason,
		})
		return
	}
	order.Status = model.StatusCancelled
	e.db.UpdateOrder(order)
	e.emit(&model.OrderCancelled{EventHeader: e.newEventHeader(), OrderID: cmd.OrderID})
}
