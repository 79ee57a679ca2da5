package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Command is an instruction sent to the execution subsystem. Every command
// carries a generated correlation id, a timestamp and the identifiers of the
// trader/strategy/account that issued it. Commands are immutable once built;
// ownership transfers to the execution subsystem on dispatch.
type Command interface {
	// CommandID returns the correlation identifier stamped at construction.
	CommandID() string
	// CommandTimestamp returns the construction timestamp.
	CommandTimestamp() time.Time
	// CommandType returns the wire name of the command.
	CommandType() string
	// Strategy returns the issuing strategy identity.
	Strategy() StrategyID
}

// CommandHeader is the shared envelope of every command.
type CommandHeader struct {
	ID         string     `json:"id"`
	Timestamp  time.Time  `json:"timestamp"`
	TraderID   TraderID   `json:"trader_id"`
	StrategyID StrategyID `json:"strategy_id"`
	AccountID  AccountID  `json:"account_id"`
}

// CommandID implements Command.
func (h CommandHeader) CommandID() string { return h.ID }

// CommandTimestamp implements Command.
func (h CommandHeader) CommandTimestamp() time.Time { return h.Timestamp }

// Strategy implements Command.
func (h CommandHeader) Strategy() StrategyID { return h.StrategyID }

// AccountInquiry requests a fresh account state snapshot.
type AccountInquiry struct {
	CommandHeader
}

// CommandType implements Command.
func (AccountInquiry) CommandType() string { return "ACCOUNT_INQUIRY" }

// SubmitOrder submits a single order, associated with a position id.
type SubmitOrder struct {
	CommandHeader
	Order      *Order     `json:"order"`
	PositionID PositionID `json:"position_id"`
}

// CommandType implements Command.
func (SubmitOrder) CommandType() string { return "SUBMIT_ORDER" }

// SubmitAtomicOrder submits an entry order with its contingent orders as one
// unit.
type SubmitAtomicOrder struct {
	CommandHeader
	AtomicOrder AtomicOrder `json:"atomic_order"`
	PositionID  PositionID  `json:"position_id"`
}

// CommandType implements Command.
func (SubmitAtomicOrder) CommandType() string { return "SUBMIT_ATOMIC_ORDER" }

// ModifyOrder requests a price/quantity amendment of a working order.
type ModifyOrder struct {
	CommandHeader
	OrderID     OrderID         `json:"order_id"`
	NewPrice    decimal.Decimal `json:"new_price"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
}

// CommandType implements Command.
func (ModifyOrder) CommandType() string { return "MODIFY_ORDER" }

// CancelOrder requests cancellation of a working order.
type CancelOrder struct {
	CommandHeader
	OrderID OrderID `json:"order_id"`
	Reason  string  `json:"reason"`
}

// CommandType implements Command.
func (CancelOrder) CommandType() string { return "CANCEL_ORDER" }

// commandEnvelope is the JSON wire form used by the NATS transport.
type commandEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EncodeCommand marshals a command into its transport envelope.
func EncodeCommand(cmd Command) ([]byte, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal command %s: %w", cmd.CommandType(), err)
	}
	return json.Marshal(commandEnvelope{Type: cmd.CommandType(), Data: data})
}

// DecodeCommand unmarshals a command from its transport envelope.
func DecodeCommand(raw []byte) (Command, error) {
	var env commandEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal command envelope: %w", err)
	}

	var cmd Command
	switch env.Type {
	case "ACCOUNT_INQUIRY":
		cmd = &AccountInquiry{}
	case "SUBMIT_ORDER":
		cmd = &SubmitOrder{}
	case "SUBMIT_ATOMIC_ORDER":
		cmd = &SubmitAtomicOrder{}
	case "MODIFY_ORDER":
		cmd = &ModifyOrder{}
	case "CANCEL_ORDER":
		cmd = &CancelOrder{}
	default:
		return nil, fmt.Errorf("unknown command type %q", env.Type)
	}

	if err := json.Unmarshal(env.Data, cmd); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", env.Type, err)
	}
	return cmd, nil
}
