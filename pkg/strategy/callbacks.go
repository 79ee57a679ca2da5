package strategy

import (
	"github.com/yourusername/quantlink-strategy-host/pkg/model"
)

// Callbacks is the abstract surface a concrete strategy implements. The host
// invokes every hook through this interface, synchronously and inside a
// failure boundary: a returned error or a panic is logged and suppressed, so
// a broken hook never corrupts dispatch of subsequent events.
type Callbacks interface {
	// OnStart runs during Start, after STARTING is logged and before the
	// host transitions to Running. Subscriptions and indicator registration
	// typically happen here.
	OnStart() error

	// OnTick runs for every tick received while the host is Running, after
	// the tick buffer and all bound indicators have been updated.
	OnTick(tick model.Tick) error

	// OnBar runs for every bar received while the host is Running, after
	// the bar buffer and all bound indicators have been updated.
	OnBar(barType model.BarType, bar model.Bar) error

	// OnInstrument runs for every instrument update received while the host
	// is Running.
	OnInstrument(instrument model.Instrument) error

	// OnEvent runs for every execution-subsystem or timer event, after the
	// host's own event classification and recovery checks.
	OnEvent(event model.Event) error

	// OnStop runs during Stop, after timers are cancelled and any configured
	// flatten/cancel commands have been issued.
	OnStop() error

	// OnReset runs during Reset, after buffers, bindings, the state log and
	// the identifier generators have been cleared.
	OnReset() error

	// OnSave returns user-defined state to merge into the persisted mapping.
	// The reserved keys StateLog, OrderIdCount and PositionIdCount are
	// ignored if returned here.
	OnSave() (map[string][]byte, error)

	// OnLoad runs during Load with the full persisted mapping, after the
	// host has restored its counters and state log.
	OnLoad(state map[string][]byte) error

	// OnDispose runs during Dispose.
	OnDispose() error
}

// NoopCallbacks implements Callbacks with no-ops. Embed it to implement only
// the hooks a strategy cares about.
type NoopCallbacks struct{}

// OnStart implements Callbacks.
func (NoopCallbacks) OnStart() error { return nil }

// OnTick implements Callbacks.
func (NoopCallbacks) OnTick(model.Tick) error { return nil }

// OnBar implements Callbacks.
func (NoopCallbacks) OnBar(model.BarType, model.Bar) error { return nil }

// OnInstrument implements Callbacks.
func (NoopCallbacks) OnInstrument(model.Instrument) error { return nil }

// OnEvent implements Callbacks.
func (NoopCallbacks) OnEvent(model.Event) error { return nil }

// OnStop implements Callbacks.
func (NoopCallbacks) OnStop() error { return nil }

// OnReset implements Callbacks.
func (NoopCallbacks) OnReset() error { return nil }

// OnSave implements Callbacks.
func (NoopCallbacks) OnSave() (map[string][]byte, error) { return nil, nil }

// OnLoad implements Callbacks.
func (NoopCallbacks) OnLoad(map[string][]byte) error { return nil }

// OnDispose implements Callbacks.
func (NoopCallbacks) OnDispose() error { return nil }
