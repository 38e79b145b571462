// internal/events/handler.go
package events

import (
	"context"
)

// Handler processes one event. Implementations must not block for long:
// the bus runs them one after another on its dispatcher goroutine.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Subscription can be cancelled.
type Subscription interface {
	Unsubscribe()
}

type subscription struct {
	id       string
	eventBus *Bus
	typ      EventType
}

func (s *subscription) Unsubscribe() {
	s.eventBus.unsubscribe(s.id, s.typ)
}

type subscriptions []Subscription

func (s subscriptions) Unsubscribe() {
	for _, sub := range s {
		sub.Unsubscribe()
	}
}

// Forward subscribes fn to every listed type. Unsubscribing the result
// removes all of them.
func Forward(bus *Bus, fn func(Event), types ...EventType) Subscription {
	subs := make(subscriptions, 0, len(types))
	for _, t := range types {
		subs = append(subs, bus.SubscribeFunc(t, func(_ context.Context, e Event) error {
			fn(e)
			return nil
		}))
	}
	return subs
}

// AllTypes lists every event type the staker publishes.
func AllTypes() []EventType {
	return []EventType{
		StakeStarted,
		StakeCompleted,
		StakeFailed,
		InfoRefreshed,
		InfoRefreshFailed,
		PriceUpdated,
	}
}
