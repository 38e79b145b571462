// internal/events/bus.go
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrBusClosed  = errors.New("event bus is shutting down")
	ErrBufferFull = errors.New("event channel full")
)

// DefaultBufferSize is the event channel capacity used by the staker.
const DefaultBufferSize = 64

// Bus delivers staker events to subscribers. Publish queues the event and a
// single dispatcher hands events out in publish order, so stake.started is
// always seen before the stake.completed or stake.failed that follows it.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType]map[string]Handler

	// closing guards the queue: Publish sends under RLock, Shutdown flips
	// closed under Lock, so no send races the drain.
	closing sync.RWMutex
	closed  bool

	queue     chan Event
	quit      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
	delivered atomic.Uint64
	dropped   atomic.Uint64
	logger    *zap.Logger
}

func NewBus(logger *zap.Logger, bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	b := &Bus{
		handlers: make(map[EventType]map[string]Handler),
		queue:    make(chan Event, bufferSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Named("event_bus"),
	}
	go b.dispatch()
	return b
}

// Subscribe registers handler for one event type.
func (b *Bus) Subscribe(eventType EventType, handler Handler) Subscription {
	id := uuid.NewString()

	b.mu.Lock()
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[string]Handler)
	}
	b.handlers[eventType][id] = handler
	b.mu.Unlock()

	b.logger.Debug("Handler subscribed",
		zap.String("event_type", string(eventType)),
		zap.String("subscription_id", id))
	return &subscription{id: id, eventBus: b, typ: eventType}
}

func (b *Bus) SubscribeFunc(eventType EventType, fn func(context.Context, Event) error) Subscription {
	return b.Subscribe(eventType, HandlerFunc(fn))
}

// Publish queues event without blocking. A full queue drops the event.
func (b *Bus) Publish(event Event) error {
	b.closing.RLock()
	defer b.closing.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	select {
	case b.queue <- event:
		return nil
	default:
		b.dropped.Add(1)
		b.logger.Warn("Event queue full, dropping event",
			zap.String("event_type", string(event.Type())))
		return ErrBufferFull
	}
}

// PublishSync runs every handler for event on the calling goroutine and joins
// their errors.
func (b *Bus) PublishSync(ctx context.Context, event Event) error {
	var errs []error
	for id, h := range b.snapshot(event.Type()) {
		if err := b.deliver(ctx, id, h, event); err != nil {
			errs = append(errs, fmt.Errorf("handler %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) snapshot(eventType EventType) map[string]Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	handlers := make(map[string]Handler, len(b.handlers[eventType]))
	for id, h := range b.handlers[eventType] {
		handlers[id] = h
	}
	return handlers
}

// deliver calls one handler, turning a panic into an error so one bad
// subscriber cannot stop the dispatcher.
func (b *Bus) deliver(ctx context.Context, id string, h Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
		if err != nil {
			b.logger.Error("Handler error",
				zap.String("event_type", string(event.Type())),
				zap.String("handler_id", id),
				zap.Error(err))
		}
	}()
	err = h.Handle(ctx, event)
	b.delivered.Add(1)
	return err
}

func (b *Bus) dispatch() {
	defer close(b.done)
	ctx := context.Background()
	for {
		select {
		case event := <-b.queue:
			_ = b.PublishSync(ctx, event)
		case <-b.quit:
			for {
				select {
				case event := <-b.queue:
					_ = b.PublishSync(ctx, event)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) unsubscribe(id string, eventType EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if handlers, ok := b.handlers[eventType]; ok {
		delete(handlers, id)
		if len(handlers) == 0 {
			delete(b.handlers, eventType)
		}
	}
	b.logger.Debug("Handler unsubscribed",
		zap.String("event_type", string(eventType)),
		zap.String("subscription_id", id))
}

// Shutdown refuses new events, delivers the queued ones and waits for the
// dispatcher until ctx expires. It is safe to call more than once.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.stopOnce.Do(func() {
		b.closing.Lock()
		b.closed = true
		b.closing.Unlock()
		close(b.quit)
		b.logger.Info("Shutting down event bus", zap.Int("pending", len(b.queue)))
	})

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		b.logger.Warn("Event bus shutdown timeout", zap.Int("pending", len(b.queue)))
		return ctx.Err()
	}
}

// Stats is a point-in-time view of the bus.
type Stats struct {
	BufferSize      int
	PendingEvents   int
	Delivered       uint64 // handler calls
	Dropped         uint64 // events refused by a full queue
	HandlersPerType map[EventType]int
}

func (b *Bus) Stats() Stats {
	b.mu.RLock()
	counts := make(map[EventType]int, len(b.handlers))
	for eventType, handlers := range b.handlers {
		counts[eventType] = len(handlers)
	}
	b.mu.RUnlock()

	return Stats{
		BufferSize:      cap(b.queue),
		PendingEvents:   len(b.queue),
		Delivered:       b.delivered.Load(),
		Dropped:         b.dropped.Load(),
		HandlersPerType: counts,
	}
}
