// Package strategy implements the execution core of the strategy host: data
// buffering, indicator fan-out, the lifecycle state machine, command dispatch
// and execution-event handling with failure isolation around user callbacks.
package strategy

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/quantlink-strategy-host/pkg/clock"
	"github.com/yourusername/quantlink-strategy-host/pkg/ids"
	"github.com/yourusername/quantlink-strategy-host/pkg/model"
	"github.com/yourusername/quantlink-strategy-host/pkg/series"
)

// State is the lifecycle state of a strategy host.
type State int

const (
	// StateCreated is the state immediately after construction.
	StateCreated State = iota
	// StateRunning is reached only through a successful Start.
	StateRunning
	// StateStopped is reached through Stop.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "Running"
	case StateStopped:
		return "Stopped"
	default:
		return "Created"
	}
}

// StateLogEntry records one lifecycle transition.
type StateLogEntry struct {
	Timestamp time.Time
	Label     string
}

// Reserved keys of the persisted state mapping.
const (
	KeyStateLog        = "StateLog"
	KeyOrderIDCount    = "OrderIdCount"
	KeyPositionIDCount = "PositionIdCount"
)

const (
	defaultTickCapacity = 1000
	defaultBarCapacity  = 1000
)

// Config carries everything a strategy host needs at construction. All
// collaborators are injected explicitly; there are no process-wide defaults.
type Config struct {
	// TraderID identifies the owning trader.
	TraderID model.TraderID

	// StrategyName is the strategy type name, e.g. "EMACross".
	StrategyName string

	// IDTag namespaces every identifier this host generates.
	IDTag model.IDTag

	// AccountID is stamped on every command.
	AccountID model.AccountID

	// TickCapacity and BarCapacity bound the history buffers. Zero selects
	// the default (1000); negative values are rejected.
	TickCapacity int
	BarCapacity  int

	// FlattenOnStop submits flattening orders for every open position when
	// the strategy stops while not flat.
	FlattenOnStop bool

	// CancelAllOrdersOnStop cancels every working order when the strategy
	// stops.
	CancelAllOrdersOnStop bool

	// FlattenOnSLReject flattens a position whose stop-loss order was
	// rejected by the venue.
	FlattenOnSLReject bool

	// Clock is the wall-clock and timer service for this host.
	Clock clock.Clock

	// Logger receives all host logging.
	Logger *zap.Logger
}

// TradingStrategy is the strategy host composition root. It owns the history
// buffers, indicator bindings, lifecycle state machine, command dispatcher
// and event handler, and invokes the user's Callbacks through a failure
// boundary. A host is driven by a single logical thread: the hosting runtime
// serializes all inbound calls, so the host itself performs no locking.
type TradingStrategy struct {
	callbacks Callbacks
	log       *zap.Logger
	clock     clock.Clock

	traderID  model.TraderID
	id        model.StrategyID
	accountID model.AccountID

	orderIDs    *ids.OrderIDGenerator
	positionIDs *ids.PositionIDGenerator

	flattenOnStop         bool
	cancelAllOrdersOnStop bool
	flattenOnSLReject     bool

	tickCapacity int
	barCapacity  int

	ticks map[model.Symbol]*series.Series[model.Tick]
	bars  map[model.BarType]*series.Series[model.Bar]

	indicators   []indicatorEntry
	tickBindings map[model.Symbol][]tickBinding
	barBindings  map[model.BarType][]barBinding

	state    State
	stateLog []StateLogEntry

	data DataClient
	exec ExecutionEngine
}

// New builds a strategy host from the given configuration and user
// callbacks. The market-data and execution collaborators are attached later
// through RegisterDataClient and RegisterExecutionEngine.
func New(cfg Config, callbacks Callbacks) (*TradingStrategy, error) {
	if callbacks == nil {
		return nil, fmt.Errorf("callbacks cannot be nil")
	}
	if cfg.Clock == nil {
		return nil, fmt.Errorf("clock cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.TickCapacity < 0 {
		return nil, fmt.Errorf("tick capacity must be positive, got %d", cfg.TickCapacity)
	}
	if cfg.BarCapacity < 0 {
		return nil, fmt.Errorf("bar capacity must be positive, got %d", cfg.BarCapacity)
	}

	id, err := model.NewStrategyID(cfg.StrategyName, cfg.IDTag)
	if err != nil {
		return nil, err
	}

	tickCapacity := cfg.TickCapacity
	if tickCapacity == 0 {
		tickCapacity = defaultTickCapacity
	}
	barCapacity := cfg.BarCapacity
	if barCapacity == 0 {
		barCapacity = defaultBarCapacity
	}

	return &TradingStrategy{
		callbacks:             callbacks,
		log:                   cfg.Logger.Named(id.String()),
		clock:                 cfg.Clock,
		traderID:              cfg.TraderID,
		id:                    id,
		accountID:             cfg.AccountID,
		orderIDs:              ids.NewOrderIDGenerator(cfg.IDTag, cfg.Clock),
		positionIDs:           ids.NewPositionIDGenerator(cfg.IDTag, cfg.Clock),
		flattenOnStop:         cfg.FlattenOnStop,
		cancelAllOrdersOnStop: cfg.CancelAllOrdersOnStop,
		flattenOnSLReject:     cfg.FlattenOnSLReject,
		tickCapacity:          tickCapacity,
		barCapacity:           barCapacity,
		ticks:                 make(map[model.Symbol]*series.Series[model.Tick]),
		bars:                  make(map[model.BarType]*series.Series[model.Bar]),
		tickBindings:          make(map[model.Symbol][]tickBinding),
		barBindings:           make(map[model.BarType][]barBinding),
		state:                 StateCreated,
	}, nil
}

// ID returns the immutable strategy identity.
func (s *TradingStrategy) ID() model.StrategyID { return s.id }

// TraderID returns the owning trader's identity.
func (s *TradingStrategy) TraderID() model.TraderID { return s.traderID }

// State returns the current lifecycle state.
func (s *TradingStrategy) State() State { return s.state }

// IsRunning returns true while the host is Running.
func (s *TradingStrategy) IsRunning() bool { return s.state == StateRunning }

// StateLog returns a copy of the accumulated state log.
func (s *TradingStrategy) StateLog() []StateLogEntry {
	out := make([]StateLogEntry, len(s.stateLog))
	copy(out, s.stateLog)
	return out
}

// RegisterDataClient attaches the market-data collaborator.
func (s *TradingStrategy) RegisterDataClient(data DataClient) {
	s.data = data
	s.log.Info("data client registered")
}

// RegisterExecutionEngine attaches the execution-subsystem collaborator.
func (s *TradingStrategy) RegisterExecutionEngine(exec ExecutionEngine) {
	s.exec = exec
	s.log.Info("execution engine registered")
}

// NewOrderID generates the next order id for this strategy.
func (s *TradingStrategy) NewOrderID() model.OrderID {
	return s.orderIDs.Generate()
}

// NewPositionID generates the next position id for this strategy.
func (s *TradingStrategy) NewPositionID() model.PositionID {
	return s.positionIDs.Generate()
}

// TimeNow returns the host clock's current time.
func (s *TradingStrategy) TimeNow() time.Time {
	return s.clock.TimeNow()
}

// SetTimer registers a repeating timer whose expiry is delivered to OnEvent
// as a TimeEvent. All timers are cancelled when the strategy stops.
func (s *TradingStrategy) SetTimer(label string, interval time.Duration, stop time.Time) error {
	return s.clock.SetTimer(label, interval, stop, s.onTimer)
}

// SetTimeAlert registers a one-shot timer whose expiry is delivered to
// OnEvent as a TimeEvent.
func (s *TradingStrategy) SetTimeAlert(label string, alert time.Time) error {
	return s.clock.SetTimeAlert(label, alert, s.onTimer)
}

// CancelTimer cancels the timer with the given label.
func (s *TradingStrategy) CancelTimer(label string) {
	s.clock.CancelTimer(label)
}

func (s *TradingStrategy) onTimer(label string, when time.Time) {
	s.HandleEvent(&model.TimeEvent{
		EventHeader: model.EventHeader{ID: ids.NewCorrelationID(), Timestamp: when},
		Label:       label,
	})
}

// guard invokes a user hook inside the failure boundary: a returned error or
// a panic is logged and suppressed, never propagated to the caller.
func (s *TradingStrategy) guard(hook string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("strategy hook panicked",
				zap.String("hook", hook),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	if err := fn(); err != nil {
		s.log.Error("strategy hook failed",
			zap.String("hook", hook),
			zap.Error(err))
	}
}

func (s *TradingStrategy) logState(label string) {
	s.logStateAt(s.clock.TimeNow(), label)
}

func (s *TradingStrategy) logStateAt(ts time.Time, label string) {
	s.stateLog = append(s.stateLog, StateLogEntry{Timestamp: ts, Label: label})
	s.log.Info("state transition", zap.String("label", label))
}

func (s *TradingStrategy) execRegistered(op string) bool {
	if s.exec == nil {
		s.log.Error("execution engine not registered", zap.String("operation", op))
		return false
	}
	return true
}

func (s *TradingStrategy) dataRegistered(op string) bool {
	if s.data == nil {
		s.log.Error("data client not registered", zap.String("operation", op))
		return false
	}
	return true
}
