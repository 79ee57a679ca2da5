package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yourusername/quantlink-strategy-host/pkg/ids"
	"github.com/yourusername/quantlink-strategy-host/pkg/model"
)

func (s *TradingStrategy) newCommandHeader() model.CommandHeader {
	return model.CommandHeader{
		ID:         ids.NewCorrelationID(),
		Timestamp:  s.clock.TimeNow(),
		TraderID:   s.traderID,
		StrategyID: s.id,
		AccountID:  s.accountID,
	}
}

// sendCommand logs the command at sent severity and hands it off to the
// execution engine. Transport failures are logged, not propagated: results
// surface later as events or not at all.
func (s *TradingStrategy) sendCommand(cmd model.Command, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("type", cmd.CommandType()),
		zap.String("command_id", cmd.CommandID()),
	}, fields...)
	s.log.Info("command sent", fields...)

	if err := s.exec.ExecuteCommand(cmd); err != nil {
		s.log.Error("command execution failed",
			zap.String("type", cmd.CommandType()),
			zap.String("command_id", cmd.CommandID()),
			zap.Error(err))
	}
}

// AccountInquiry requests a fresh account state snapshot.
func (s *TradingStrategy) AccountInquiry() {
	if !s.execRegistered("AccountInquiry") {
		return
	}
	s.sendCommand(&model.AccountInquiry{CommandHeader: s.newCommandHeader()})
}

// SubmitOrder submits an order associated with a position id.
func (s *TradingStrategy) SubmitOrder(order *model.Order, positionID model.PositionID) {
	if !s.execRegistered("SubmitOrder") {
		return
	}
	s.sendCommand(
		&model.SubmitOrder{
			CommandHeader: s.newCommandHeader(),
			Order:         order,
			PositionID:    positionID,
		},
		zap.String("order_id", string(order.ID)),
		zap.Stringer("symbol", order.Symbol),
		zap.Stringer("side", order.Side),
		zap.String("quantity", order.Quantity.String()),
		zap.String("position_id", string(positionID)),
	)
}

// SubmitAtomicOrder submits an entry order with its contingent orders as one
// unit, associated with a position id.
func (s *TradingStrategy) SubmitAtomicOrder(atomic model.AtomicOrder, positionID model.PositionID) {
	if !s.execRegistered("SubmitAtomicOrder") {
		return
	}
	s.sendCommand(
		&model.SubmitAtomicOrder{
			CommandHeader: s.newCommandHeader(),
			AtomicOrder:   atomic,
			PositionID:    positionID,
		},
		zap.String("entry_order_id", string(atomic.Entry.ID)),
		zap.Stringer("symbol", atomic.Entry.Symbol),
		zap.Bool("has_take_profit", atomic.HasTakeProfit()),
		zap.String("position_id", string(positionID)),
	)
}

// ModifyOrder requests a price/quantity amendment of a working order.
func (s *TradingStrategy) ModifyOrder(orderID model.OrderID, newPrice, newQuantity decimal.Decimal) {
	if !s.execRegistered("ModifyOrder") {
		return
	}
	s.sendCommand(
		&model.ModifyOrder{
			CommandHeader: s.newCommandHeader(),
			OrderID:       orderID,
			NewPrice:      newPrice,
			NewQuantity:   newQuantity,
		},
		zap.String("order_id", string(orderID)),
		zap.String("new_price", newPrice.String()),
		zap.String("new_quantity", newQuantity.String()),
	)
}

// CancelOrder requests cancellation of a working order.
func (s *TradingStrategy) CancelOrder(orderID model.OrderID, reason string) {
	if !s.execRegistered("CancelOrder") {
		return
	}
	s.sendCommand(
		&model.CancelOrder{
			CommandHeader: s.newCommandHeader(),
			OrderID:       orderID,
			Reason:        reason,
		},
		zap.String("order_id", string(orderID)),
		zap.String("reason", reason),
	)
}

// CancelAllOrders issues one CancelOrder per working order of this strategy,
// sharing the given reason. Zero working orders is an informational no-op.
func (s *TradingStrategy) CancelAllOrders(reason string) {
	if !s.execRegistered("CancelAllOrders") {
		return
	}
	working := s.exec.Database().OrdersWorking(s.id)
	if len(working) == 0 {
		s.log.Info("no working orders to cancel")
		return
	}
	for orderID := range working {
		s.CancelOrder(orderID, reason)
	}
}

// FlattenPosition submits a market order that neutralizes the position's
// current exposure, tagged exit-purpose and associated with the same position
// id. A missing or already-closed position is a logged no-op. Flattening a
// flat position is a precondition failure.
func (s *TradingStrategy) FlattenPosition(positionID model.PositionID, label string) error {
	if !s.execRegistered("FlattenPosition") {
		return nil
	}
	position, ok := s.exec.Database().Position(positionID)
	if !ok {
		s.log.Error("cannot flatten: position not found", zap.String("position_id", string(positionID)))
		return nil
	}
	if position.IsClosed() {
		s.log.Info("position already closed, nothing to flatten", zap.String("position_id", string(positionID)))
		return nil
	}

	side, err := position.Market.FlattenSide()
	if err != nil {
		return fmt.Errorf("flatten %s: %w", positionID, err)
	}

	order, err := model.NewMarketOrder(
		s.orderIDs.Generate(),
		position.Symbol,
		side,
		position.Quantity,
		model.PurposeExit,
		label,
		s.clock.TimeNow(),
	)
	if err != nil {
		return fmt.Errorf("flatten %s: %w", positionID, err)
	}

	s.SubmitOrder(order, positionID)
	return nil
}

// FlattenAllPositions flattens every open position of this strategy. Zero
// open positions is an informational no-op.
func (s *TradingStrategy) FlattenAllPositions(label string) {
	if !s.execRegistered("FlattenAllPositions") {
		return
	}
	open := s.exec.Database().PositionsOpen(s.id)
	if len(open) == 0 {
		s.log.Info("no open positions to flatten")
		return
	}
	for positionID := range open {
		if err := s.FlattenPosition(positionID, label); err != nil {
			s.log.Error("failed to flatten position",
				zap.String("position_id", string(positionID)),
				zap.Error(err))
		}
	}
}
