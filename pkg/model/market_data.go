package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Symbol identifies a tradeable instrument at a venue, e.g. "AUDUSD.FXCM".
type Symbol struct {
	Code  string `json:"code"`
	Venue string `json:"venue"`
}

// NewSymbol validates and returns a Symbol.
func NewSymbol(code, venue string) (Symbol, error) {
	if err := validateIDPart("symbol code", code); err != nil {
		return Symbol{}, err
	}
	if err := validateIDPart("symbol venue", venue); err != nil {
		return Symbol{}, err
	}
	return Symbol{Code: code, Venue: venue}, nil
}

// ParseSymbol parses the "CODE.VENUE" form.
func ParseSymbol(s string) (Symbol, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return Symbol{}, fmt.Errorf("invalid symbol %q: expected CODE.VENUE", s)
	}
	return NewSymbol(parts[0], parts[1])
}

// String returns the "CODE.VENUE" form.
func (s Symbol) String() string {
	return s.Code + "." + s.Venue
}

// BarAggregation is the unit a bar series is aggregated over.
type BarAggregation int

const (
	AggregationTick BarAggregation = iota
	AggregationSecond
	AggregationMinute
	AggregationHour
	AggregationDay
)

// String returns the aggregation name.
func (a BarAggregation) String() string {
	switch a {
	case AggregationTick:
		return "TICK"
	case AggregationSecond:
		return "SECOND"
	case AggregationMinute:
		return "MINUTE"
	case AggregationHour:
		return "HOUR"
	case AggregationDay:
		return "DAY"
	default:
		return "UNKNOWN"
	}
}

// PriceType is the price series a bar is built from.
type PriceType int

const (
	PriceBid PriceType = iota
	PriceAsk
	PriceMid
	PriceLast
)

// String returns the price type name.
func (p PriceType) String() string {
	switch p {
	case PriceBid:
		return "BID"
	case PriceAsk:
		return "ASK"
	case PriceMid:
		return "MID"
	case PriceLast:
		return "LAST"
	default:
		return "UNKNOWN"
	}
}

// BarType identifies a bar series: the instrument plus its aggregation
// parameters. Comparable, so it can key buffer and subscription maps.
type BarType struct {
	Symbol      Symbol         `json:"symbol"`
	Period      int            `json:"period"`
	Aggregation BarAggregation `json:"aggregation"`
	PriceType   PriceType      `json:"price_type"`
}

// String returns e.g. "AUDUSD.FXCM-1-MINUTE[BID]".
func (bt BarType) String() string {
	return fmt.Sprintf("%s-%d-%s[%s]", bt.Symbol, bt.Period, bt.Aggregation, bt.PriceType)
}

// ParseBarSpec parses the "AGGREGATION[PRICE]" form, e.g. "MINUTE[BID]".
func ParseBarSpec(s string) (BarAggregation, PriceType, error) {
	open := strings.IndexByte(s, '[')
	if open < 0 || !strings.HasSuffix(s, "]") {
		return 0, 0, fmt.Errorf("invalid bar spec %q: expected AGGREGATION[PRICE]", s)
	}

	var aggregation BarAggregation
	switch name := s[:open]; name {
	case "TICK":
		aggregation = AggregationTick
	case "SECOND":
		aggregation = AggregationSecond
	case "MINUTE":
		aggregation = AggregationMinute
	case "HOUR":
		aggregation = AggregationHour
	case "DAY":
		aggregation = AggregationDay
	default:
		return 0, 0, fmt.Errorf("unknown bar aggregation %q", name)
	}

	var priceType PriceType
	switch name := s[open+1 : len(s)-1]; name {
	case "BID":
		priceType = PriceBid
	case "ASK":
		priceType = PriceAsk
	case "MID":
		priceType = PriceMid
	case "LAST":
		priceType = PriceLast
	default:
		return 0, 0, fmt.Errorf("unknown price type %q", name)
	}
	return aggregation, priceType, nil
}

// Tick is an immutable top-of-book market price update.
type Tick struct {
	Symbol    Symbol          `json:"symbol"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	Timestamp time.Time       `json:"timestamp"`
}

// Mid returns the mid price of the tick.
func (t Tick) Mid() decimal.Decimal {
	return t.Bid.Add(t.Ask).Div(decimal.NewFromInt(2))
}

// Bar is an immutable aggregated OHLCV price summary.
type Bar struct {
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}

// Instrument carries the static reference data for a symbol.
type Instrument struct {
	Symbol           Symbol          `json:"symbol"`
	QuoteCurrency    string          `json:"quote_currency"`
	SecurityType     string          `json:"security_type"`
	TickPrecision    int             `json:"tick_precision"`
	TickSize         decimal.Decimal `json:"tick_size"`
	RoundLotSize     int64           `json:"round_lot_size"`
	MinTradeSize     int64           `json:"min_trade_size"`
	RolloverInterest decimal.Decimal `json:"rollover_interest"`
	Timestamp        time.Time       `json:"timestamp"`
}
