package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MarketPosition is the direction of a position's market exposure.
type MarketPosition int

const (
	MarketFlat MarketPosition = iota
	MarketLong
	MarketShort
)

// String returns the exposure name.
func (m MarketPosition) String() string {
	switch m {
	case MarketLong:
		return "LONG"
	case MarketShort:
		return "SHORT"
	default:
		return "FLAT"
	}
}

// FlattenSide returns the order side that neutralizes the exposure.
// A flat position has nothing to neutralize and is a precondition failure.
func (m MarketPosition) FlattenSide() (OrderSide, error) {
	switch m {
	case MarketLong:
		return SideSell, nil
	case MarketShort:
		return SideBuy, nil
	default:
		return SideUndefined, fmt.Errorf("cannot flatten a flat position")
	}
}

// Position is an aggregated open exposure resulting from one or more fills.
// It is owned by the execution subsystem; the strategy host only reads it.
type Position struct {
	ID           PositionID      `json:"id"`
	Symbol       Symbol          `json:"symbol"`
	StrategyID   StrategyID      `json:"strategy_id"`
	Market       MarketPosition  `json:"market"`
	Quantity     decimal.Decimal `json:"quantity"`
	AvgOpenPrice decimal.Decimal `json:"avg_open_price"`
	RealizedPnL  decimal.Decimal `json:"realized_pnl"`
	OpenedAt     time.Time       `json:"opened_at"`
	ClosedAt     time.Time       `json:"closed_at,omitempty"`
}

// IsFlat returns true when the position has no market exposure.
func (p *Position) IsFlat() bool {
	return p.Market == MarketFlat
}

// IsLong returns true for long exposure.
func (p *Position) IsLong() bool {
	return p.Market == MarketLong
}

// IsShort returns true for short exposure.
func (p *Position) IsShort() bool {
	return p.Market == MarketShort
}

// IsOpen returns true while the position has not been closed out.
func (p *Position) IsOpen() bool {
	return !p.IsFlat() && p.ClosedAt.IsZero()
}

// IsClosed returns true once the position has been closed out.
func (p *Position) IsClosed() bool {
	return !p.IsOpen()
}
