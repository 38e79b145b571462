package ui

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/afsui-staker/internal/events"
	"github.com/rovshanmuradov/afsui-staker/internal/logger"
	"github.com/rovshanmuradov/afsui-staker/internal/periodic"
)

const (
	DefaultUpdateBuffer = 256
	statsInterval       = 30 * time.Second
)

// UpdateSender feeds background updates into the program without ever
// blocking the sender. Updates that do not fit are dropped and counted.
type UpdateSender struct {
	mu      sync.Mutex
	size    int
	updates chan tea.Msg
	sent    atomic.Uint64
	dropped atomic.Uint64
	logger  *zap.Logger
	stats   *periodic.Task
}

func NewUpdateSender(ctx context.Context, size int, logger *zap.Logger) *UpdateSender {
	if size <= 0 {
		size = DefaultUpdateBuffer
	}
	us := &UpdateSender{
		size:    size,
		updates: make(chan tea.Msg, size),
		logger:  logger.Named("ui-updates"),
	}
	us.stats = periodic.Start(ctx, "ui-update-stats", statsInterval, us.logStats)
	return us
}

// Updates is the channel currently receiving updates.
func (us *UpdateSender) Updates() <-chan tea.Msg {
	us.mu.Lock()
	defer us.mu.Unlock()
	return us.updates
}

// Attach gives a new program run its own channel. The previous channel is
// closed so a model left over from a crashed run stops receiving; anything
// still queued on it is discarded.
func (us *UpdateSender) Attach() <-chan tea.Msg {
	us.mu.Lock()
	defer us.mu.Unlock()
	close(us.updates)
	us.updates = make(chan tea.Msg, us.size)
	return us.updates
}

func (us *UpdateSender) Send(msg tea.Msg) {
	us.mu.Lock()
	defer us.mu.Unlock()
	select {
	case us.updates <- msg:
		us.sent.Add(1)
	default:
		us.dropped.Add(1)
	}
}

func (us *UpdateSender) Stats() (sent, dropped uint64) {
	return us.sent.Load(), us.dropped.Load()
}

func (us *UpdateSender) logStats(context.Context) {
	sent, dropped := us.Stats()
	if dropped == 0 {
		return
	}
	us.logger.Warn("UI update statistics",
		zap.Uint64("sent", sent),
		zap.Uint64("dropped", dropped),
		zap.Float64("drop_rate", float64(dropped)/float64(sent+dropped)*100))
}

// ForwardEvents subscribes the sender to every staker event on bus.
func (us *UpdateSender) ForwardEvents(bus *events.Bus) events.Subscription {
	return events.Forward(bus, func(e events.Event) {
		us.Send(EventMsg{Event: e})
	}, events.AllTypes()...)
}

// ForwardLogs notifies the program whenever buffer receives an entry.
func (us *UpdateSender) ForwardLogs(buffer *logger.LogBuffer) {
	buffer.OnWrite(func() { us.Send(LogMsg{}) })
}

// Close stops the statistics task. The channel stays open since
// subscribers may still be delivering.
func (us *UpdateSender) Close() {
	us.stats.Stop()
}
