package client

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/yourusername/quantlink-strategy-host/pkg/execution"
	"github.com/yourusername/quantlink-strategy-host/pkg/model"
	"github.com/yourusername/quantlink-strategy-host/pkg/strategy"
)

const (
	commandSubject     = "exec.command"
	eventSubjectPrefix = "exec.event."
)

// ExecClient is the NATS execution collaborator. Commands are published to
// the execution gateway; events come back on the trader's event subject.
// Order and position state is mirrored locally so database and portfolio
// queries answer without a round trip. Inbound events are funneled through
// the posting function: mirror updates and the event handler then run on
// the same goroutine as every other inbound call to the host, not on the
// NATS subscription goroutine.
type ExecClient struct {
	log  *zap.Logger
	conn *nats.Conn
	post func(func())

	traderID  model.TraderID
	db        *execution.Database
	portfolio *execution.PortfolioView
	account   *model.Account

	eventSub *nats.Subscription
	handler  func(model.Event)
}

// NewExecClient connects to the NATS server and subscribes to the trader's
// event subject. Events are applied to the local mirror before being handed
// to the registered handler.
func NewExecClient(url string, traderID model.TraderID, post func(func()), log *zap.Logger) (*ExecClient, error) {
	if post == nil {
		return nil, fmt.Errorf("posting function cannot be nil")
	}
	conn, err := nats.Connect(url,
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	db := execution.NewDatabase()
	c := &ExecClient{
		log:       log.Named("ExecClient"),
		conn:      conn,
		post:      post,
		traderID:  traderID,
		db:        db,
		portfolio: execution.NewPortfolioView(db),
		account:   &model.Account{},
	}

	sub, err := conn.Subscribe(eventSubjectPrefix+traderID.String(), c.onEventMsg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to subscribe to event subject: %w", err)
	}
	c.eventSub = sub
	return c, nil
}

// RegisterEventHandler sets the sink decoded events are delivered to,
// typically the strategy host's HandleEvent.
func (c *ExecClient) RegisterEventHandler(handler func(model.Event)) {
	c.handler = handler
}

// TrackStrategy registers a strategy with the portfolio view.
func (c *ExecClient) TrackStrategy(strategyID model.StrategyID) {
	c.portfolio.Track(strategyID)
}

// Disconnect tears the transport down.
func (c *ExecClient) Disconnect() error {
	if c.eventSub != nil {
		_ = c.eventSub.Unsubscribe()
	}
	c.conn.Close()
	return nil
}

// ExecuteCommand implements strategy.ExecutionEngine. Submitted orders are
// recorded in the local mirror before publish so queries see them as pending
// while the gateway round trip is in flight.
func (c *ExecClient) ExecuteCommand(cmd model.Command) error {
	switch cm := cmd.(type) {
	case *model.SubmitOrder:
		c.db.AddOrder(cm.Order, cm.StrategyID, cm.PositionID)
	case *model.SubmitAtomicOrder:
		c.db.AddOrder(cm.AtomicOrder.Entry, cm.StrategyID, cm.PositionID)
		c.db.AddOrder(cm.AtomicOrder.StopLoss, cm.StrategyID, cm.PositionID)
		if cm.AtomicOrder.HasTakeProfit() {
			c.db.AddOrder(cm.AtomicOrder.TakeProfit, cm.StrategyID, cm.PositionID)
		}
	}

	payload, err := model.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	if err := c.conn.Publish(commandSubject, payload); err != nil {
		return fmt.Errorf("failed to publish command %s: %w", cmd.CommandType(), err)
	}
	return nil
}

// Account implements strategy.ExecutionEngine. The snapshot is the latest
// received account state event.
func (c *ExecClient) Account() *model.Account {
	clone := *c.account
	return &clone
}

// Portfolio implements strategy.ExecutionEngine.
func (c *ExecClient) Portfolio() strategy.Portfolio { return c.portfolio }

// Database implements strategy.ExecutionEngine.
func (c *ExecClient) Database() strategy.ExecutionDatabase { return c.db }

func (c *ExecClient) onEventMsg(msg *nats.Msg) {
	ev, err := model.DecodeEvent(msg.Data)
	if err != nil {
		c.log.Error("failed to decode event", zap.Error(err))
		return
	}
	c.post(func() {
		c.applyEvent(ev)
		if c.handler != nil {
			c.handler(ev)
		}
	})
}

// applyEvent folds an event into the local mirror.
func (c *ExecClient) applyEvent(ev model.Event) {
	switch e := ev.(type) {
	case *model.OrderAccepted:
		c.setOrderStatus(e.OrderID, model.StatusAccepted)
	case *model.OrderWorking:
		c.setOrderStatus(e.OrderID, model.StatusWorking)
	case *model.OrderRejected:
		c.setOrderStatus(e.OrderID, model.StatusRejected)
	case *model.OrderCancelled:
		c.setOrderStatus(e.OrderID, model.StatusCancelled)
	case *model.OrderExpired:
		c.setOrderStatus(e.OrderID, model.StatusExpired)
	case *model.OrderModified:
		order, ok := c.db.Order(e.OrderID)
		if !ok {
			return
		}
		order.Price = e.NewPrice
		order.Quantity = e.NewQuantity
		c.db.UpdateOrder(order)
	case *model.OrderFilled:
		order, ok := c.db.Order(e.OrderID)
		if !ok {
			return
		}
		order.Status = model.StatusFilled
		order.FilledQty = e.FilledQty
		c.db.UpdateOrder(order)
	case *model.OrderPartiallyFilled:
		order, ok := c.db.Order(e.OrderID)
		if !ok {
			return
		}
		order.Status = model.StatusPartiallyFilled
		order.FilledQty = e.FilledQty
		c.db.UpdateOrder(order)
	case *model.PositionOpened:
		c.db.AddPosition(e.Position)
	case *model.PositionModified:
		c.db.UpdatePosition(e.Position)
	case *model.PositionClosed:
		c.db.UpdatePosition(e.Position)
	case *model.AccountStateEvent:
		if e.Account != nil {
			clone := *e.Account
			c.account = &clone
		}
	}
}

func (c *ExecClient) setOrderStatus(id model.OrderID, status model.OrderStatus) {
	order, ok := c.db.Order(id)
	if !ok {
		c.log.Warn("event for unknown order", zap.String("order_id", string(id)))
		return
	}
	order.Status = status
	c.db.UpdateOrder(order)
}
