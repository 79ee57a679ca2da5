package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSymbol(t *testing.T) {
	symbol, err := ParseSymbol("AUDUSD.FXCM")
	require.NoError(t, err)
	assert.Equal(t, "AUDUSD", symbol.Code)
	assert.Equal(t, "FXCM", symbol.Venue)
	assert.Equal(t, "AUDUSD.FXCM", symbol.String())

	_, err = ParseSymbol("AUDUSD")
	require.Error(t, err)

	_, err = ParseSymbol(".FXCM")
	require.Error(t, err)

	_, err = ParseSymbol("AUD USD.FXCM")
	require.Error(t, err)
}

func TestBarTypeString(t *testing.T) {
	bt := BarType{
		Symbol:      Symbol{Code: "AUDUSD", Venue: "FXCM"},
		Period:      1,
		Aggregation: AggregationMinute,
		PriceType:   PriceBid,
	}
	assert.Equal(t, "AUDUSD.FXCM-1-MINUTE[BID]", bt.String())
}

func TestParseBarSpec(t *testing.T) {
	aggregation, priceType, err := ParseBarSpec("MINUTE[BID]")
	require.NoError(t, err)
	assert.Equal(t, AggregationMinute, aggregation)
	assert.Equal(t, PriceBid, priceType)

	aggregation, priceType, err = ParseBarSpec("HOUR[MID]")
	require.NoError(t, err)
	assert.Equal(t, AggregationHour, aggregation)
	assert.Equal(t, PriceMid, priceType)

	_, _, err = ParseBarSpec("MINUTE")
	require.Error(t, err)

	_, _, err = ParseBarSpec("FORTNIGHT[BID]")
	require.Error(t, err)

	_, _, err = ParseBarSpec("MINUTE[OPEN]")
	require.Error(t, err)
}

func TestTickMid(t *testing.T) {
	tick := Tick{
		Symbol: testSymbol,
		Bid:    decimal.NewFromFloat(1.0),
		Ask:    decimal.NewFromFloat(1.5),
	}
	assert.Equal(t, "1.25", tick.Mid().String())
}
