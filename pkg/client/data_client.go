// Package client provides the NATS-backed collaborators for live trading:
// a market-data client and an execution client implementing the interfaces
// the strategy host consumes. Payloads are JSON envelopes.
package client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/yourusername/quantlink-strategy-host/pkg/model"
)

const (
	tickSubjectPrefix       = "md.tick."
	barSubjectPrefix        = "md.bar."
	instrumentSubjectPrefix = "md.instrument."
	instrumentGetSubject    = "md.instrument.get"
	instrumentListSubject   = "md.instrument.list"
	barsRequestSubject      = "md.bars.request"

	requestTimeout = 5 * time.Second
)

// DataClient is the NATS market-data collaborator. Streams arrive on
// subject-per-stream subscriptions; lookups use request/reply. NATS runs
// each subscription's callbacks on its own goroutine, so every handler
// invocation is funneled through the posting function: with a sequencer's
// Post the host receives ticks, bars and instruments serialized with every
// other inbound call, as the strategy.DataClient contract requires.
type DataClient struct {
	log  *zap.Logger
	conn *nats.Conn
	post func(func())

	tickSubs       map[model.Symbol]*nats.Subscription
	barSubs        map[model.BarType]*nats.Subscription
	instrumentSubs map[model.Symbol]*nats.Subscription
}

// NewDataClient connects to the NATS server at the given URL. Subscription
// handlers are delivered through post.
func NewDataClient(url string, post func(func()), log *zap.Logger) (*DataClient, error) {
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
	return &DataClient{
		log:            log.Named("DataClient"),
		conn:           conn,
		post:           post,
		tickSubs:       make(map[model.Symbol]*nats.Subscription),
		barSubs:        make(map[model.BarType]*nats.Subscription),
		instrumentSubs: make(map[model.Symbol]*nats.Subscription),
	}, nil
}

// Connect implements strategy.DataClient. The connection is established at
// construction; Connect only verifies it is still up.
func (c *DataClient) Connect() error {
	if !c.conn.IsConnected() {
		return fmt.Errorf("NATS connection is down")
	}
	return nil
}

// Disconnect implements strategy.DataClient.
func (c *DataClient) Disconnect() error {
	for _, sub := range c.tickSubs {
		_ = sub.Unsubscribe()
	}
	for _, sub := range c.barSubs {
		_ = sub.Unsubscribe()
	}
	for _, sub := range c.instrumentSubs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
	return nil
}

// SubscribeTicks implements strategy.DataClient.
func (c *DataClient) SubscribeTicks(symbol model.Symbol, handler func(model.Tick)) error {
	if _, exists := c.tickSubs[symbol]; exists {
		return fmt.Errorf("already subscribed to ticks for %s", symbol)
	}
	sub, err := c.conn.Subscribe(tickSubjectPrefix+symbol.String(), func(msg *nats.Msg) {
		var tick model.Tick
		if err := json.Unmarshal(msg.Data, &tick); err != nil {
			c.log.Error("failed to unmarshal tick", zap.Error(err))
			return
		}
		c.post(func() { handler(tick) })
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe ticks for %s: %w", symbol, err)
	}
	c.tickSubs[symbol] = sub
	return nil
}

// UnsubscribeTicks implements strategy.DataClient.
func (c *DataClient) UnsubscribeTicks(symbol model.Symbol) error {
	sub, exists := c.tickSubs[symbol]
	if !exists {
		return fmt.Errorf("not subscribed to ticks for %s", symbol)
	}
	delete(c.tickSubs, symbol)
	return sub.Unsubscribe()
}

// SubscribeBars implements strategy.DataClient.
func (c *DataClient) SubscribeBars(barType model.BarType, handler func(model.BarType, model.Bar)) error {
	if _, exists := c.barSubs[barType]; exists {
		return fmt.Errorf("already subscribed to bars for %s", barType)
	}
	sub, err := c.conn.Subscribe(barSubjectPrefix+barType.String(), func(msg *nats.Msg) {
		var bar model.Bar
		if err := json.Unmarshal(msg.Data, &bar); err != nil {
			c.log.Error("failed to unmarshal bar", zap.Error(err))
			return
		}
		c.post(func() { handler(barType, bar) })
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe bars for %s: %w", barType, err)
	}
	c.barSubs[barType] = sub
	return nil
}

// UnsubscribeBars implements strategy.DataClient.
func (c *DataClient) UnsubscribeBars(barType model.BarType) error {
	sub, exists := c.barSubs[barType]
	if !exists {
		return fmt.Errorf("not subscribed to bars for %s", barType)
	}
	delete(c.barSubs, barType)
	return sub.Unsubscribe()
}

// SubscribeInstrument implements strategy.DataClient.
func (c *DataClient) SubscribeInstrument(symbol model.Symbol, handler func(model.Instrument)) error {
	if _, exists := c.instrumentSubs[symbol]; exists {
		return fmt.Errorf("already subscribed to instrument %s", symbol)
	}
	sub, err := c.conn.Subscribe(instrumentSubjectPrefix+symbol.String(), func(msg *nats.Msg) {
		var instrument model.Instrument
		if err := json.Unmarshal(msg.Data, &instrument); err != nil {
			c.log.Error("failed to unmarshal instrument", zap.Error(err))
			return
		}
		c.post(func() { handler(instrument) })
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe instrument %s: %w", symbol, err)
	}
	c.instrumentSubs[symbol] = sub
	return nil
}

// UnsubscribeInstrument implements strategy.DataClient.
func (c *DataClient) UnsubscribeInstrument(symbol model.Symbol) error {
	sub, exists := c.instrumentSubs[symbol]
	if !exists {
		return fmt.Errorf("not subscribed to instrument %s", symbol)
	}
	delete(c.instrumentSubs, symbol)
	return sub.Unsubscribe()
}

// instrumentRequest is the request/reply payload for instrument lookups.
type instrumentRequest struct {
	Symbol model.Symbol `json:"symbol"`
}

// Instrument implements strategy.DataClient.
func (c *DataClient) Instrument(symbol model.Symbol) (model.Instrument, bool) {
	payload, err := json.Marshal(instrumentRequest{Symbol: symbol})
	if err != nil {
		c.log.Error("failed to marshal instrument request", zap.Error(err))
		return model.Instrument{}, false
	}
	msg, err := c.conn.Request(instrumentGetSubject, payload, requestTimeout)
	if err != nil {
		c.log.Error("instrument request failed", zap.Stringer("symbol", symbol), zap.Error(err))
		return model.Instrument{}, false
	}
	var instrument model.Instrument
	if err := json.Unmarshal(msg.Data, &instrument); err != nil {
		c.log.Error("failed to unmarshal instrument reply", zap.Error(err))
		return model.Instrument{}, false
	}
	return instrument, true
}

// Instruments implements strategy.DataClient.
func (c *DataClient) Instruments() []model.Instrument {
	msg, err := c.conn.Request(instrumentListSubject, nil, requestTimeout)
	if err != nil {
		c.log.Error("instrument list request failed", zap.Error(err))
		return nil
	}
	var instruments []model.Instrument
	if err := json.Unmarshal(msg.Data, &instruments); err != nil {
		c.log.Error("failed to unmarshal instrument list", zap.Error(err))
		return nil
	}
	return instruments
}

// Symbols implements strategy.DataClient.
func (c *DataClient) Symbols() []model.Symbol {
	instruments := c.Instruments()
	symbols := make([]model.Symbol, 0, len(instruments))
	for _, instrument := range instruments {
		symbols = append(symbols, instrument.Symbol)
	}
	return symbols
}

// barsRequest is the request/reply payload for historical bars.
type barsRequest struct {
	BarType model.BarType `json:"bar_type"`
	From    time.Time     `json:"from"`
	To      time.Time     `json:"to"`
}

// RequestBars implements strategy.DataClient.
func (c *DataClient) RequestBars(barType model.BarType, from, to time.Time, handler func(model.BarType, []model.Bar)) error {
	payload, err := json.Marshal(barsRequest{BarType: barType, From: from, To: to})
	if err != nil {
		return fmt.Errorf("failed to marshal bars request: %w", err)
	}
	msg, err := c.conn.Request(barsRequestSubject, payload, requestTimeout)
	if err != nil {
		return fmt.Errorf("bars request for %s failed: %w", barType, err)
	}
	var bars []model.Bar
	if err := json.Unmarshal(msg.Data, &bars); err != nil {
		return fmt.Errorf("failed to unmarshal bars reply: %w", err)
	}
	handler(barType, bars)
	return nil
}
