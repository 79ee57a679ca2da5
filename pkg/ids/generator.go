// Package ids provides the identifier generators used by a strategy host:
// monotonic order/position id generators namespaced by the strategy's id tag,
// and correlation ids for commands and events.
package ids

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/quantlink-strategy-host/pkg/model"
)

// Clock is the minimal time source a generator needs.
type Clock interface {
	TimeNow() time.Time
}

// generator produces identifiers of the form <prefix>-<yyyymmdd>-<tag>-<n>.
// The counter supports reset and restore so generated ids survive a
// save/load cycle without collisions.
type generator struct {
	prefix string
	tag    model.IDTag
	clock  Clock
	count  int
}

func (g *generator) generate() string {
	g.count++
	return fmt.Sprintf("%s-%s-%s-%d", g.prefix, g.clock.TimeNow().UTC().Format("20060102"), g.tag, g.count)
}

// Count returns the number of identifiers generated so far.
func (g *generator) Count() int { return g.count }

// SetCount restores the counter, e.g. after loading persisted state.
func (g *generator) SetCount(n int) {
	if n < 0 {
		n = 0
	}
	g.count = n
}

// Reset re-initializes the counter to its zero state.
func (g *generator) Reset() { g.count = 0 }

// OrderIDGenerator generates order identifiers for one strategy host.
type OrderIDGenerator struct {
	generator
}

// NewOrderIDGenerator returns a generator namespaced by the given id tag.
func NewOrderIDGenerator(tag model.IDTag, clock Clock) *OrderIDGenerator {
	return &OrderIDGenerator{generator{prefix: "O", tag: tag, clock: clock}}
}

// Generate returns the next order id.
func (g *OrderIDGenerator) Generate() model.OrderID {
	return model.OrderID(g.generate())
}

// PositionIDGenerator generates position identifiers for one strategy host.
type PositionIDGenerator struct {
	generator
}

// NewPositionIDGenerator returns a generator namespaced by the given id tag.
func NewPositionIDGenerator(tag model.IDTag, clock Clock) *PositionIDGenerator {
	return &PositionIDGenerator{generator{prefix: "P", tag: tag, clock: clock}}
}

// Generate returns the next position id.
func (g *PositionIDGenerator) Generate() model.PositionID {
	return model.PositionID(g.generate())
}

// NewCorrelationID returns a unique id stamping one command or event.
func NewCorrelationID() string {
	return uuid.NewString()
}
