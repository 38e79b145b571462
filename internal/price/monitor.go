// internal/price/monitor.go
package price

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/afsui-staker/internal/events"
	"github.com/rovshanmuradov/afsui-staker/internal/periodic"
)

const DefaultInterval = 5 * time.Minute

// Source is anything that can quote a price. *Feed satisfies it.
type Source interface {
	Price(ctx context.Context) (float64, error)
}

// Publisher receives price events. *events.Bus satisfies it.
type Publisher interface {
	Publish(event events.Event) error
}

// Quote is an immutable price snapshot. After a failed update the last good
// USD value is kept and Err describes the failure.
type Quote struct {
	USD       float64
	UpdatedAt time.Time
	Err       error
}

// Stale reports whether the last update attempt failed.
func (q *Quote) Stale() bool {
	return q != nil && q.Err != nil
}

// Monitor keeps the latest quote fresh on a fixed interval.
type Monitor struct {
	source    Source
	interval  time.Duration
	logger    *zap.Logger
	publisher Publisher
	quote     atomic.Pointer[Quote]

	mu   sync.Mutex
	task *periodic.Task
}

// NewMonitor creates a monitor. publisher may be nil.
func NewMonitor(source Source, interval time.Duration, logger *zap.Logger, publisher Publisher) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		source:    source,
		interval:  interval,
		logger:    logger.Named("price-monitor"),
		publisher: publisher,
	}
}

// Start fetches immediately and then every interval until Stop or ctx ends.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.task != nil {
		return
	}
	m.logger.Info("Starting price monitor", zap.Duration("interval", m.interval))
	m.task = periodic.Start(ctx, "price", m.interval, func(ctx context.Context) {
		_ = m.Refresh(ctx)
	}, periodic.Immediate(), periodic.WithLogger(m.logger))
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	task := m.task
	m.task = nil
	m.mu.Unlock()
	task.Stop()
}

// Refresh fetches one quote and stores it.
func (m *Monitor) Refresh(ctx context.Context) error {
	usd, err := m.source.Price(ctx)
	prev := m.quote.Load()

	next := &Quote{USD: usd, UpdatedAt: time.Now()}
	if err != nil {
		m.logger.Warn("Failed to fetch price", zap.Error(err))
		next = &Quote{Err: err}
		if prev != nil {
			next.USD = prev.USD
			next.UpdatedAt = prev.UpdatedAt
		}
	}
	m.quote.Store(next)
	m.publish(next)
	return err
}

// Quote returns the latest snapshot, or nil before the first fetch.
func (m *Monitor) Quote() *Quote {
	return m.quote.Load()
}

// ValueUSD converts a SUI amount to USD using the latest known price.
func (m *Monitor) ValueUSD(sui float64) (float64, bool) {
	q := m.quote.Load()
	if q == nil || q.USD <= 0 {
		return 0, false
	}
	return sui * q.USD, true
}

func (m *Monitor) publish(q *Quote) {
	if m.publisher == nil {
		return
	}
	e := events.PriceUpdatedEvent{
		BaseEvent: events.NewBaseEvent(events.PriceUpdated),
		Symbol:    "SUI",
		USD:       q.USD,
		Stale:     q.Stale(),
		QuotedAt:  q.UpdatedAt,
	}
	if q.Err != nil {
		e.Error = q.Err.Error()
	}
	if err := m.publisher.Publish(e); err != nil {
		m.logger.Debug("Price event dropped", zap.Error(err))
	}
}
