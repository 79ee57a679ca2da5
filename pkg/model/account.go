package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a snapshot of the trading account held by the execution
// subsystem.
type Account struct {
	ID            AccountID       `json:"id"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	MarginUsed    decimal.Decimal `json:"margin_used"`
	FreeEquity    decimal.Decimal `json:"free_equity"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
