// Package risk declares the position-sizing contract a strategy plugs in.
// The sizing arithmetic itself is a pluggable strategy object and not part
// of the host core.
package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/quantlink-strategy-host/pkg/model"
)

// PositionSizer computes the order quantity for a prospective entry.
type PositionSizer interface {
	// Calculate returns the order quantity for the given instrument, entry
	// price and stop price, sized against the available equity.
	Calculate(instrument model.Instrument, equity, entry, stop decimal.Decimal) (decimal.Decimal, error)

	// Name returns the sizing algorithm name.
	Name() string
}

// FixedSizer sizes every entry at a constant quantity, ignoring equity and
// price inputs.
type FixedSizer struct {
	quantity decimal.Decimal
}

// NewFixedSizer returns a sizer producing the given constant quantity.
func NewFixedSizer(quantity decimal.Decimal) (*FixedSizer, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("fixed size must be positive, got %s", quantity)
	}
	return &FixedSizer{quantity: quantity}, nil
}

// Calculate implements PositionSizer.
func (f *FixedSizer) Calculate(model.Instrument, decimal.Decimal, decimal.Decimal, decimal.Decimal) (decimal.Decimal, error) {
	return f.quantity, nil
}

// Name implements PositionSizer.
func (f *FixedSizer) Name() string { return "Fixed" }
