// internal/events/types.go
package events

import (
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// Stake lifecycle
	StakeStarted   EventType = "stake.started"
	StakeCompleted EventType = "stake.completed"
	StakeFailed    EventType = "stake.failed"

	// Protocol info
	InfoRefreshed     EventType = "info.refreshed"
	InfoRefreshFailed EventType = "info.refresh_failed"

	// Price feed
	PriceUpdated EventType = "price.updated"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// NewBaseEvent stamps an event of type t with the current time.
func NewBaseEvent(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now()}
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// StakeStartedEvent is emitted once a stake passed its preconditions.
type StakeStartedEvent struct {
	BaseEvent
	CorrelationID string
	Account       string
	Amount        string // display units as typed
	BaseUnits     uint64
}

// StakeCompletedEvent is emitted after a confirmed stake.
type StakeCompletedEvent struct {
	BaseEvent
	CorrelationID  string
	Account        string
	Amount         string
	TxDigest       string
	ReceivedAmount string // estimate from the pre-transaction exchange rate
	ElapsedMs      int64
}

// StakeFailedEvent is emitted when a started stake fails.
type StakeFailedEvent struct {
	BaseEvent
	CorrelationID string
	Account       string
	Amount        string
	Error         string
}

// InfoRefreshedEvent carries a new protocol info snapshot.
type InfoRefreshedEvent struct {
	BaseEvent
	ExchangeRate  float64
	ValidatorAPY  float64
	ValidatorFee  float64
	ValidatorName string
}

// InfoRefreshFailedEvent is emitted when a refresh fails and the old snapshot stays.
type InfoRefreshFailedEvent struct {
	BaseEvent
	Error string
}

// PriceUpdatedEvent is emitted when the USD quote changes or fails to update.
type PriceUpdatedEvent struct {
	BaseEvent
	Symbol   string
	USD      float64
	Stale    bool
	Error    string
	QuotedAt time.Time
}
