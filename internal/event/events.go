package event

import (
	"time"

	"papertrader/internal/domain"

	"github.com/shopspring/decimal"
)

// Type defines the type of event emitted by the trading core.
type Type uint16

const (
	EvPositionOpened Type = iota + 1
	EvPositionClosed
	EvExitTriggered
)

func (t Type) String() string {
	switch t {
	case EvPositionOpened:
		return "POSITION_OPENED"
	case EvPositionClosed:
		return "POSITION_CLOSED"
	case EvExitTriggered:
		return "EXIT_TRIGGERED"
	default:
		return "UNKNOWN"
	}
}

// Event is the interface for all core notifications. The core emits these;
// collaborators (alerting, fan-out transports) subscribe and do their own
// formatting and delivery.
type Event interface {
	GetType() Type
	GetTime() time.Time
}

// BaseEvent carries the fields common to all events.
type BaseEvent struct {
	Ts time.Time `json:"ts"`
}

func (e BaseEvent) GetTime() time.Time { return e.Ts }

// PositionOpened is emitted after a BUY execution creates a position.
type PositionOpened struct {
	BaseEvent
	Position domain.Position `json:"position"`
	Trade    domain.Trade    `json:"trade"`
}

func (e PositionOpened) GetType() Type { return EvPositionOpened }

// PositionClosed is emitted after any close, whatever the exit reason.
type PositionClosed struct {
	BaseEvent
	Trade domain.Trade `json:"trade"`
}

func (e PositionClosed) GetType() Type { return EvPositionClosed }

// ExitTriggered is emitted when the refresh pass detects a stop-loss or
// take-profit condition, just before the position is closed.
type ExitTriggered struct {
	BaseEvent
	Symbol string            `json:"symbol"`
	Reason domain.ExitReason `json:"reason"`
	Price  decimal.Decimal   `json:"price"`
}

func (e ExitTriggered) GetType() Type { return EvExitTriggered }
