package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 8)
	defer bus.Shutdown(context.Background())

	got := make(chan Event, 1)
	bus.SubscribeFunc(StakeCompleted, func(_ context.Context, e Event) error {
		got <- e
		return nil
	})

	require.NoError(t, bus.Publish(StakeCompletedEvent{
		BaseEvent: NewBaseEvent(StakeCompleted),
		TxDigest:  "D1",
	}))

	select {
	case e := <-got:
		completed, ok := e.(StakeCompletedEvent)
		require.True(t, ok)
		assert.Equal(t, "D1", completed.TxDigest)
		assert.Equal(t, StakeCompleted, completed.Type())
		assert.False(t, completed.Timestamp().IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 8)
	defer bus.Shutdown(context.Background())

	var mu sync.Mutex
	calls := 0
	sub := bus.SubscribeFunc(PriceUpdated, func(context.Context, Event) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})
	assert.Equal(t, 1, bus.Stats().HandlersPerType[PriceUpdated])

	sub.Unsubscribe()
	assert.Zero(t, bus.Stats().HandlersPerType[PriceUpdated])

	require.NoError(t, bus.PublishSync(context.Background(), PriceUpdatedEvent{BaseEvent: NewBaseEvent(PriceUpdated)}))
	mu.Lock()
	assert.Zero(t, calls)
	mu.Unlock()
}

func TestPublishSyncJoinsHandlerErrors(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 8)
	defer bus.Shutdown(context.Background())

	boom := errors.New("boom")
	bus.SubscribeFunc(StakeFailed, func(context.Context, Event) error { return boom })
	bus.SubscribeFunc(StakeFailed, func(context.Context, Event) error { return nil })

	err := bus.PublishSync(context.Background(), StakeFailedEvent{BaseEvent: NewBaseEvent(StakeFailed)})
	assert.ErrorIs(t, err, boom)
}

func TestPublishAfterShutdown(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 8)
	require.NoError(t, bus.Shutdown(context.Background()))

	err := bus.Publish(InfoRefreshFailedEvent{BaseEvent: NewBaseEvent(InfoRefreshFailed)})
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestNewBusDefaultsBufferSize(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 0)
	defer bus.Shutdown(context.Background())
	assert.Equal(t, DefaultBufferSize, bus.Stats().BufferSize)
}

func TestForwardSubscribesAllTypes(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 8)
	defer bus.Shutdown(context.Background())

	var mu sync.Mutex
	var seen []EventType
	sub := Forward(bus, func(e Event) {
		mu.Lock()
		seen = append(seen, e.Type())
		mu.Unlock()
	}, AllTypes()...)

	for _, typ := range AllTypes() {
		assert.Equal(t, 1, bus.Stats().HandlersPerType[typ])
	}

	require.NoError(t, bus.PublishSync(context.Background(), StakeStartedEvent{BaseEvent: NewBaseEvent(StakeStarted)}))
	require.NoError(t, bus.PublishSync(context.Background(), PriceUpdatedEvent{BaseEvent: NewBaseEvent(PriceUpdated)}))
	mu.Lock()
	assert.Equal(t, []EventType{StakeStarted, PriceUpdated}, seen)
	mu.Unlock()

	sub.Unsubscribe()
	assert.Empty(t, bus.Stats().HandlersPerType)
}

func TestPublishKeepsOrder(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 16)

	var mu sync.Mutex
	var seen []EventType
	Forward(bus, func(e Event) {
		mu.Lock()
		seen = append(seen, e.Type())
		mu.Unlock()
	}, StakeStarted, StakeCompleted, StakeFailed)

	order := []EventType{StakeStarted, StakeCompleted, StakeStarted, StakeFailed}
	for _, typ := range order {
		require.NoError(t, bus.Publish(StakeStartedEvent{BaseEvent: NewBaseEvent(typ)}))
	}
	require.NoError(t, bus.Shutdown(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, order, seen)
	assert.Equal(t, uint64(len(order)), bus.Stats().Delivered)
}

func TestPanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 8)

	bus.SubscribeFunc(PriceUpdated, func(context.Context, Event) error { panic("bad handler") })
	var calls sync.WaitGroup
	calls.Add(2)
	bus.SubscribeFunc(InfoRefreshed, func(context.Context, Event) error {
		calls.Done()
		return nil
	})

	require.NoError(t, bus.Publish(PriceUpdatedEvent{BaseEvent: NewBaseEvent(PriceUpdated)}))
	require.NoError(t, bus.Publish(InfoRefreshedEvent{BaseEvent: NewBaseEvent(InfoRefreshed)}))
	require.NoError(t, bus.Publish(InfoRefreshedEvent{BaseEvent: NewBaseEvent(InfoRefreshed)}))
	calls.Wait()

	err := bus.PublishSync(context.Background(), PriceUpdatedEvent{BaseEvent: NewBaseEvent(PriceUpdated)})
	assert.ErrorContains(t, err, "handler panic: bad handler")
	require.NoError(t, bus.Shutdown(context.Background()))
}

func TestPublishDropsWhenFull(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t), 1)

	block := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	bus.SubscribeFunc(StakeStarted, func(context.Context, Event) error {
		once.Do(func() { close(started) })
		<-block
		return nil
	})

	require.NoError(t, bus.Publish(StakeStartedEvent{BaseEvent: NewBaseEvent(StakeStarted)}))
	<-started
	require.NoError(t, bus.Publish(StakeStartedEvent{BaseEvent: NewBaseEvent(StakeStarted)}))
	assert.ErrorIs(t, bus.Publish(StakeStartedEvent{BaseEvent: NewBaseEvent(StakeStarted)}), ErrBufferFull)
	assert.Equal(t, uint64(1), bus.Stats().Dropped)

	close(block)
	require.NoError(t, bus.Shutdown(context.Background()))
	require.NoError(t, bus.Shutdown(context.Background()))
	assert.Equal(t, uint64(2), bus.Stats().Delivered)
}
