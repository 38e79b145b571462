package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/afsui-staker/internal/events"
	"github.com/rovshanmuradov/afsui-staker/internal/logger"
)

func TestUpdateSenderNonBlocking(t *testing.T) {
	sender := NewUpdateSender(context.Background(), 10, zaptest.NewLogger(t))
	defer sender.Close()

	for i := 0; i < 110; i++ {
		sender.Send(LogMsg{})
	}

	sent, dropped := sender.Stats()
	assert.Equal(t, uint64(10), sent)
	assert.Equal(t, uint64(100), dropped)
}

func TestUpdateSenderConcurrent(t *testing.T) {
	sender := NewUpdateSender(context.Background(), 100, zaptest.NewLogger(t))
	defer sender.Close()

	const goroutines, perGoroutine = 10, 100
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				sender.Send(LogMsg{})
			}
		}()
	}
	wg.Wait()

	sent, dropped := sender.Stats()
	assert.Equal(t, uint64(goroutines*perGoroutine), sent+dropped)
	assert.Equal(t, uint64(100), sent)
}

func TestUpdateSenderForwardsEvents(t *testing.T) {
	log := zaptest.NewLogger(t)
	bus := events.NewBus(log, 8)
	defer bus.Shutdown(context.Background())

	sender := NewUpdateSender(context.Background(), 4, log)
	defer sender.Close()
	sub := sender.ForwardEvents(bus)
	defer sub.Unsubscribe()

	require.NoError(t, bus.Publish(events.InfoRefreshFailedEvent{
		BaseEvent: events.NewBaseEvent(events.InfoRefreshFailed),
		Error:     "boom",
	}))

	select {
	case msg := <-sender.Updates():
		em, ok := msg.(EventMsg)
		require.True(t, ok)
		assert.Equal(t, events.InfoRefreshFailed, em.Event.Type())
	case <-time.After(2 * time.Second):
		t.Fatal("event was not forwarded")
	}
}

func TestUpdateSenderForwardsLogs(t *testing.T) {
	sender := NewUpdateSender(context.Background(), 4, zaptest.NewLogger(t))
	defer sender.Close()

	buf := logger.NewLogBuffer(4)
	sender.ForwardLogs(buf)
	_, err := buf.Write([]byte(`{"level":"info","msg":"hello"}`))
	require.NoError(t, err)

	assert.IsType(t, LogMsg{}, <-sender.Updates())
}

func TestUpdateSenderAttachIsolatesRuns(t *testing.T) {
	sender := NewUpdateSender(context.Background(), 4, zaptest.NewLogger(t))
	defer sender.Close()

	first := sender.Attach()
	crashed := NewModel(context.Background(), newFakeBackend(), zaptest.NewLogger(t), Config{}, WithUpdates(first))
	pending := make(chan interface{}, 1)
	go func() { pending <- crashed.waitForUpdate()() }()

	second := sender.Attach()
	select {
	case msg := <-pending:
		assert.Nil(t, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("receive on the replaced channel did not return")
	}

	completed := EventMsg{Event: events.StakeCompletedEvent{BaseEvent: events.NewBaseEvent(events.StakeCompleted)}}
	sender.Send(completed)
	assert.Equal(t, completed, <-second)
	assert.Equal(t, second, sender.Updates())
}
