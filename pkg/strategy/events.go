package strategy

import (
	"go.uber.org/zap"

	"github.com/yourusername/quantlink-strategy-host/pkg/model"
)

// HandleEvent receives one execution-subsystem (or timer) event, classifies
// it, runs the recovery checks, then forwards it to the isolated OnEvent
// hook. This is the entry point the execution collaborator delivers events
// to.
func (s *TradingStrategy) HandleEvent(event model.Event) {
	switch e := event.(type) {
	case *model.OrderCancelReject:
		s.log.Warn("order cancel rejected",
			zap.String("order_id", string(e.OrderID)),
			zap.String("response", e.Response),
			zap.String("reason", e.Reason))
	case *model.OrderRejected:
		s.log.Warn("order rejected",
			zap.String("order_id", string(e.OrderID)),
			zap.String("reason", e.Reason))
		if s.flattenOnSLReject {
			s.flattenRejectedStop(e)
		}
	default:
		s.log.Info("event received",
			zap.String("type", event.EventType()),
			zap.String("event_id", event.EventID()))
	}

	s.guard("OnEvent", func() error { return s.callbacks.OnEvent(event) })
}

// flattenRejectedStop drives the automatic-flatten recovery path: when a
// stop-loss order is rejected and its position is still open, the exposure
// it was protecting is closed out immediately.
func (s *TradingStrategy) flattenRejectedStop(e *model.OrderRejected) {
	if !s.execRegistered("flattenRejectedStop") {
		return
	}
	db := s.exec.Database()

	order, ok := db.Order(e.OrderID)
	if !ok {
		s.log.Error("rejected order not found in execution database",
			zap.String("order_id", string(e.OrderID)))
		return
	}
	position, ok := db.PositionForOrder(e.OrderID)
	if !ok {
		s.log.Error("no position associated with rejected order",
			zap.String("order_id", string(e.OrderID)))
		return
	}

	if order.Purpose != model.PurposeStopLoss || !position.IsOpen() {
		return
	}

	s.log.Warn("stop-loss rejected with open exposure, flattening position",
		zap.String("order_id", string(e.OrderID)),
		zap.String("position_id", string(position.ID)))
	if err := s.FlattenPosition(position.ID, "STOP_LOSS_REJECTED"); err != nil {
		s.log.Error("failed to flatten position after stop-loss rejection",
			zap.String("position_id", string(position.ID)),
			zap.Error(err))
	}
}
