package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide is the direction of an order.
type OrderSide int

const (
	SideUndefined OrderSide = iota
	SideBuy
	SideSell
)

// String returns the side name.
func (s OrderSide) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNDEFINED"
	}
}

// OrderType is the execution instruction of an order.
type OrderType int

const (
	TypeMarket OrderType = iota
	TypeLimit
	TypeStopMarket
	TypeStopLimit
)

// String returns the order type name.
func (t OrderType) String() string {
	switch t {
	case TypeMarket:
		return "MARKET"
	case TypeLimit:
		return "LIMIT"
	case TypeStopMarket:
		return "STOP_MARKET"
	case TypeStopLimit:
		return "STOP_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// OrderPurpose tags what role an order plays inside a strategy.
type OrderPurpose int

const (
	PurposeNone OrderPurpose = iota
	PurposeEntry
	PurposeExit
	PurposeStopLoss
	PurposeTakeProfit
)

// String returns the purpose name.
func (p OrderPurpose) String() string {
	switch p {
	case PurposeEntry:
		return "ENTRY"
	case PurposeExit:
		return "EXIT"
	case PurposeStopLoss:
		return "STOP_LOSS"
	case PurposeTakeProfit:
		return "TAKE_PROFIT"
	default:
		return "NONE"
	}
}

// OrderStatus is the lifecycle state of an order at the execution subsystem.
type OrderStatus int

const (
	StatusInitialized OrderStatus = iota
	StatusSubmitted
	StatusAccepted
	StatusWorking
	StatusPartiallyFilled
	StatusFilled
	StatusCancelled
	StatusRejected
	StatusExpired
)

// String returns the status name.
func (s OrderStatus) String() string {
	switch s {
	case StatusInitialized:
		return "INITIALIZED"
	case StatusSubmitted:
		return "SUBMITTED"
	case StatusAccepted:
		return "ACCEPTED"
	case StatusWorking:
		return "WORKING"
	case StatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case StatusFilled:
		return "FILLED"
	case StatusCancelled:
		return "CANCELLED"
	case StatusRejected:
		return "REJECTED"
	case StatusExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// IsWorking returns true while the order rests at the execution subsystem.
func (s OrderStatus) IsWorking() bool {
	return s == StatusAccepted || s == StatusWorking || s == StatusPartiallyFilled
}

// IsCompleted returns true once the order reached a terminal state.
func (s OrderStatus) IsCompleted() bool {
	return s == StatusFilled || s == StatusCancelled || s == StatusRejected || s == StatusExpired
}

// Order is an immutable instruction to trade. Price is zero for market
// orders. FilledQty tracks execution progress and is maintained by the
// execution subsystem, not by the strategy host.
type Order struct {
	ID        OrderID         `json:"id"`
	Symbol    Symbol          `json:"symbol"`
	Side      OrderSide       `json:"side"`
	Type      OrderType       `json:"type"`
	Purpose   OrderPurpose    `json:"purpose"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Label     string          `json:"label"`
	Status    OrderStatus     `json:"status"`
	FilledQty decimal.Decimal `json:"filled_qty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMarketOrder builds a validated market order.
func NewMarketOrder(id OrderID, symbol Symbol, side OrderSide, quantity decimal.Decimal, purpose OrderPurpose, label string, ts time.Time) (*Order, error) {
	if id == "" {
		return nil, fmt.Errorf("order id cannot be empty")
	}
	if side == SideUndefined {
		return nil, fmt.Errorf("order side cannot be undefined")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("order quantity must be positive, got %s", quantity)
	}
	return &Order{
		ID:        id,
		Symbol:    symbol,
		Side:      side,
		Type:      TypeMarket,
		Purpose:   purpose,
		Quantity:  quantity,
		Label:     label,
		Status:    StatusInitialized,
		Timestamp: ts,
	}, nil
}

// NewLimitOrder builds a validated limit order.
func NewLimitOrder(id OrderID, symbol Symbol, side OrderSide, quantity, price decimal.Decimal, purpose OrderPurpose, label string, ts time.Time) (*Order, error) {
	o, err := NewMarketOrder(id, symbol, side, quantity, purpose, label, ts)
	if err != nil {
		return nil, err
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("limit price must be positive, got %s", price)
	}
	o.Type = TypeLimit
	o.Price = price
	return o, nil
}

// NewStopMarketOrder builds a validated stop-market order.
func NewStopMarketOrder(id OrderID, symbol Symbol, side OrderSide, quantity, trigger decimal.Decimal, purpose OrderPurpose, label string, ts time.Time) (*Order, error) {
	o, err := NewMarketOrder(id, symbol, side, quantity, purpose, label, ts)
	if err != nil {
		return nil, err
	}
	if trigger.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("stop trigger price must be positive, got %s", trigger)
	}
	o.Type = TypeStopMarket
	o.Price = trigger
	return o, nil
}

// AtomicOrder bundles an entry order with its contingent stop-loss and
// optional take-profit, submitted as one unit.
type AtomicOrder struct {
	Entry      *Order `json:"entry"`
	StopLoss   *Order `json:"stop_loss"`
	TakeProfit *Order `json:"take_profit,omitempty"`
}

// NewAtomicOrder validates the bundle: the contingent orders must offset the
// entry side and the stop-loss trigger must sit on the losing side of the
// entry price when the entry carries one.
func NewAtomicOrder(entry, stopLoss, takeProfit *Order) (AtomicOrder, error) {
	if entry == nil || stopLoss == nil {
		return AtomicOrder{}, fmt.Errorf("atomic order requires entry and stop-loss")
	}
	if stopLoss.Side == entry.Side {
		return AtomicOrder{}, fmt.Errorf("stop-loss side %s must offset entry side %s", stopLoss.Side, entry.Side)
	}
	if takeProfit != nil && takeProfit.Side == entry.Side {
		return AtomicOrder{}, fmt.Errorf("take-profit side %s must offset entry side %s", takeProfit.Side, entry.Side)
	}
	if entry.Price.IsPositive() && stopLoss.Price.IsPositive() {
		if entry.Side == SideBuy && stopLoss.Price.GreaterThanOrEqual(entry.Price) {
			return AtomicOrder{}, fmt.Errorf("stop-loss %s must be below buy entry %s", stopLoss.Price, entry.Price)
		}
		if entry.Side == SideSell && stopLoss.Price.LessThanOrEqual(entry.Price) {
			return AtomicOrder{}, fmt.Errorf("stop-loss %s must be above sell entry %s", stopLoss.Price, entry.Price)
		}
	}
	return AtomicOrder{Entry: entry, StopLoss: stopLoss, TakeProfit: takeProfit}, nil
}

// HasTakeProfit returns true if the bundle carries a take-profit order.
func (a AtomicOrder) HasTakeProfit() bool {
	return a.TakeProfit != nil
}
