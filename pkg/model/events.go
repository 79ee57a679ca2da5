package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Event is a notification received from the execution subsystem (or from the
// host's own timer service). Every event carries a correlation id and a
// timestamp.
type Event interface {
	// EventID returns the correlation identifier of the event.
	EventID() string
	// EventTimestamp returns the time the event was produced.
	EventTimestamp() time.Time
	// EventType returns the wire name of the event.
	EventType() string
}

// EventHeader is the shared envelope of every event.
type EventHeader struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// EventID implements Event.
func (h EventHeader) EventID() string { return h.ID }

// EventTimestamp implements Event.
func (h EventHeader) EventTimestamp() time.Time { return h.Timestamp }

// OrderSubmitted signals the execution subsystem received an order.
type OrderSubmitted struct {
	EventHeader
	OrderID OrderID `json:"order_id"`
}

// EventType implements Event.
func (OrderSubmitted) EventType() string { return "ORDER_SUBMITTED" }

// OrderAccepted signals the venue accepted an order.
type OrderAccepted struct {
	EventHeader
	OrderID OrderID `json:"order_id"`
}

// EventType implements Event.
func (OrderAccepted) EventType() string { return "ORDER_ACCEPTED" }

// OrderRejected signals the venue rejected an order.
type OrderRejected struct {
	EventHeader
	OrderID OrderID `json:"order_id"`
	Reason  string  `json:"reason"`
}

// EventType implements Event.
func (OrderRejected) EventType() string { return "ORDER_REJECTED" }

// OrderWorking signals an order now rests in the venue's book.
type OrderWorking struct {
	EventHeader
	OrderID OrderID         `json:"order_id"`
	Price   decimal.Decimal `json:"price"`
}

// EventType implements Event.
func (OrderWorking) EventType() string { return "ORDER_WORKING" }

// OrderCancelled signals a working order was cancelled.
type OrderCancelled struct {
	EventHeader
	OrderID OrderID `json:"order_id"`
}

// EventType implements Event.
func (OrderCancelled) EventType() string { return "ORDER_CANCELLED" }

// OrderCancelReject signals a cancel request was refused.
type OrderCancelReject struct {
	EventHeader
	OrderID  OrderID `json:"order_id"`
	Response string  `json:"response"`
	Reason   string  `json:"reason"`
}

// EventType implements Event.
func (OrderCancelReject) EventType() string { return "ORDER_CANCEL_REJECT" }

// OrderModified signals a working order was amended.
type OrderModified struct {
	EventHeader
	OrderID     OrderID         `json:"order_id"`
	NewPrice    decimal.Decimal `json:"new_price"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
}

// EventType implements Event.
func (OrderModified) EventType() string { return "ORDER_MODIFIED" }

// OrderExpired signals a working order lapsed at the venue.
type OrderExpired struct {
	EventHeader
	OrderID OrderID `json:"order_id"`
}

// EventType implements Event.
func (OrderExpired) EventType() string { return "ORDER_EXPIRED" }

// OrderFilled signals an order was executed.
type OrderFilled struct {
	EventHeader
	OrderID    OrderID         `json:"order_id"`
	PositionID PositionID      `json:"position_id"`
	Side       OrderSide       `json:"side"`
	FilledQty  decimal.Decimal `json:"filled_qty"`
	AvgPrice   decimal.Decimal `json:"avg_price"`
}

// EventType implements Event.
func (OrderFilled) EventType() string { return "ORDER_FILLED" }

// OrderPartiallyFilled signals an order was partially executed.
type OrderPartiallyFilled struct {
	EventHeader
	OrderID     OrderID         `json:"order_id"`
	PositionID  PositionID      `json:"position_id"`
	Side        OrderSide       `json:"side"`
	FilledQty   decimal.Decimal `json:"filled_qty"`
	LeavesQty   decimal.Decimal `json:"leaves_qty"`
	AvgPrice    decimal.Decimal `json:"avg_price"`
}

// EventType implements Event.
func (OrderPartiallyFilled) EventType() string { return "ORDER_PARTIALLY_FILLED" }

// PositionOpened signals a fill opened a new position.
type PositionOpened struct {
	EventHeader
	Position *Position `json:"position"`
}

// EventType implements Event.
func (PositionOpened) EventType() string { return "POSITION_OPENED" }

// PositionModified signals a fill changed an open position.
type PositionModified struct {
	EventHeader
	Position *Position `json:"position"`
}

// EventType implements Event.
func (PositionModified) EventType() string { return "POSITION_MODIFIED" }

// PositionClosed signals a position was closed out.
type PositionClosed struct {
	EventHeader
	Position *Position `json:"position"`
}

// EventType implements Event.
func (PositionClosed) EventType() string { return "POSITION_CLOSED" }

// AccountStateEvent carries a fresh account snapshot.
type AccountStateEvent struct {
	EventHeader
	Account *Account `json:"account"`
}

// EventType implements Event.
func (AccountStateEvent) EventType() string { return "ACCOUNT_STATE" }

// TimeEvent is produced by the host's timer service when a timer fires.
type TimeEvent struct {
	EventHeader
	Label string `json:"label"`
}

// EventType implements Event.
func (TimeEvent) EventType() string { return "TIME_EVENT" }

// eventEnvelope is the JSON wire form used by the NATS transport.
type eventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EncodeEvent marshals an event into its transport envelope.
func EncodeEvent(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", ev.EventType(), err)
	}
	return json.Marshal(eventEnvelope{Type: ev.EventType(), Data: data})
}

// DecodeEvent unmarshals an event from its transport envelope.
func DecodeEvent(raw []byte) (Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event envelope: %w", err)
	}

	var ev Event
	switch env.Type {
	case "ORDER_SUBMITTED":
		ev = &OrderSubmitted{}
	case "ORDER_ACCEPTED":
		ev = &OrderAccepted{}
	case "ORDER_REJECTED":
		ev = &OrderRejected{}
	case "ORDER_WORKING":
		ev = &OrderWorking{}
	case "ORDER_CANCELLED":
		ev = &OrderCancelled{}
	case "ORDER_CANCEL_REJECT":
		ev = &OrderCancelReject{}
	case "ORDER_MODIFIED":
		ev = &OrderModified{}
	case "ORDER_EXPIRED":
		ev = &OrderExpired{}
	case "ORDER_FILLED":
		ev = &OrderFilled{}
	case "ORDER_PARTIALLY_FILLED":
		ev = &OrderPartiallyFilled{}
	case "POSITION_OPENED":
		ev = &PositionOpened{}
	case "POSITION_MODIFIED":
		ev = &PositionModified{}
	case "POSITION_CLOSED":
		ev = &PositionClosed{}
	case "ACCOUNT_STATE":
		ev = &AccountStateEvent{}
	case "TIME_EVENT":
		ev = &TimeEvent{}
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}

	if err := json.Unmarshal(env.Data, ev); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", env.Type, err)
	}
	return ev, nil
}
