package strategy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/quantlink-strategy-host/pkg/model"
	"github.com/yourusername/quantlink-strategy-host/pkg/series"
)

// Start transitions the host to Running. It is only legal once both the
// market-data and execution collaborators are registered; otherwise it logs
// an error and leaves the host unchanged. On success the state log gains
// STARTING and RUNNING entries around the isolated OnStart hook.
func (s *TradingStrategy) Start() {
	if s.state == StateRunning {
		s.log.Error("cannot start: already running")
		return
	}
	if s.data == nil || s.exec == nil {
		s.log.Error("cannot start: market-data and execution collaborators must both be registered",
			zap.Bool("data_registered", s.data != nil),
			zap.Bool("exec_registered", s.exec != nil))
		return
	}

	s.logState("STARTING")
	s.guard("OnStart", s.callbacks.OnStart)
	s.state = StateRunning
	s.logState("RUNNING")
}

// Stop transitions the host to Stopped. It is always legal. Pending timers
// are cancelled, then, as configured, open positions are flattened and
// working orders cancelled, before the isolated OnStop hook runs.
func (s *TradingStrategy) Stop() {
	s.logState("STOPPING")

	s.clock.CancelAllTimers()

	if s.flattenOnStop && !s.IsFlat() {
		s.FlattenAllPositions("STRATEGY_STOP")
	}
	if s.cancelAllOrdersOnStop {
		s.CancelAllOrders("STRATEGY_STOP")
	}

	s.guard("OnStop", s.callbacks.OnStop)
	s.state = StateStopped
	s.logState("STOPPED")
}

// Reset restores the host to its initial state: buffers, indicator bindings
// and the state log are cleared and the identifier generators re-initialized.
// Reset is illegal while Running and is then a logged no-op.
func (s *TradingStrategy) Reset() {
	if s.state == StateRunning {
		s.log.Error("cannot reset a running strategy")
		return
	}

	s.ticks = make(map[model.Symbol]*series.Series[model.Tick])
	s.bars = make(map[model.BarType]*series.Series[model.Bar])

	for _, e := range s.indicators {
		e.indicator.Reset()
	}
	s.indicators = nil
	s.tickBindings = make(map[model.Symbol][]tickBinding)
	s.barBindings = make(map[model.BarType][]barBinding)

	s.stateLog = nil
	s.orderIDs.Reset()
	s.positionIDs.Reset()

	s.guard("OnReset", s.callbacks.OnReset)
	s.log.Info("strategy reset")
}

// Save appends a SAVING... marker and returns the persisted state mapping:
// the accumulated state log and both identifier counters, merged with the
// user state from the isolated OnSave hook. User entries under reserved keys
// are ignored.
func (s *TradingStrategy) Save() map[string][]byte {
	s.logState("SAVING...")

	var user map[string][]byte
	s.guard("OnSave", func() error {
		m, err := s.callbacks.OnSave()
		if err != nil {
			return err
		}
		user = m
		return nil
	})

	out := make(map[string][]byte, len(user)+3)
	for k, v := range user {
		if k == KeyStateLog || k == KeyOrderIDCount || k == KeyPositionIDCount {
			s.log.Warn("user state key is reserved, ignoring", zap.String("key", k))
			continue
		}
		out[k] = v
	}
	out[KeyStateLog] = encodeStateLog(s.stateLog)
	out[KeyOrderIDCount] = []byte(strconv.Itoa(s.orderIDs.Count()))
	out[KeyPositionIDCount] = []byte(strconv.Itoa(s.positionIDs.Count()))
	return out
}

// Saved appends a SAVED marker at the externally supplied commit timestamp,
// for persistence backends that complete asynchronously.
func (s *TradingStrategy) Saved(ts time.Time) {
	s.logStateAt(ts, "SAVED")
}

// Load restores the identifier counters and a prior state log from a
// persisted mapping. The restored log is prepended to entries accumulated
// since, preserving chronological order. Any reserved key may be absent.
// The full mapping is then handed to the isolated OnLoad hook.
func (s *TradingStrategy) Load(state map[string][]byte) {
	if raw, ok := state[KeyOrderIDCount]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(string(raw))); err != nil {
			s.log.Error("malformed order id count in persisted state", zap.ByteString("value", raw), zap.Error(err))
		} else {
			s.orderIDs.SetCount(n)
		}
	}
	if raw, ok := state[KeyPositionIDCount]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(string(raw))); err != nil {
			s.log.Error("malformed position id count in persisted state", zap.ByteString("value", raw), zap.Error(err))
		} else {
			s.positionIDs.SetCount(n)
		}
	}
	if raw, ok := state[KeyStateLog]; ok {
		restored, err := decodeStateLog(raw)
		if err != nil {
			s.log.Error("malformed state log in persisted state", zap.Error(err))
		} else {
			s.stateLog = append(restored, s.stateLog...)
		}
	}

	s.logState("LOADING...")
	s.logState("LOADED")

	s.guard("OnLoad", func() error { return s.callbacks.OnLoad(state) })
}

// Dispose releases the strategy through the isolated OnDispose hook.
func (s *TradingStrategy) Dispose() {
	s.guard("OnDispose", s.callbacks.OnDispose)
}

// encodeStateLog renders entries as "RFC3339Nano LABEL" lines, one per entry.
func encodeStateLog(entries []StateLogEntry) []byte {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Timestamp.UTC().Format(time.RFC3339Nano) + " " + e.Label
	}
	return []byte(strings.Join(lines, "\n"))
}

// decodeStateLog parses the encoding produced by encodeStateLog.
func decodeStateLog(raw []byte) ([]StateLogEntry, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	entries := make([]StateLogEntry, 0, len(lines))
	for _, line := range lines {
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed state log line %q", line)
		}
		ts, err := time.Parse(time.RFC3339Nano, parts[0])
		if err != nil {
			return nil, fmt.Errorf("malformed state log timestamp %q: %w", parts[0], err)
		}
		entries = append(entries, StateLogEntry{Timestamp: ts, Label: parts[1]})
	}
	return entries, nil
}
