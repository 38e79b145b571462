// internal/periodic/periodic.go
package periodic

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Func is one run of a periodic task. The context is cancelled when the task stops.
type Func func(ctx context.Context)

type options struct {
	immediate bool
	logger    *zap.Logger
}

type Option func(*options)

// Immediate runs the function once before the first tick.
func Immediate() Option {
	return func(o *options) { o.immediate = true }
}

// WithLogger sets the logger used for start/stop messages.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Task is a handle to a goroutine running a function on a fixed interval.
type Task struct {
	name     string
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once
	logger   *zap.Logger
}

// Start launches fn every interval until ctx is done or Stop is called.
// Runs never overlap: a slow run delays the next tick.
func Start(ctx context.Context, name string, interval time.Duration, fn Func, opts ...Option) *Task {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		name:     name,
		interval: interval,
		cancel:   cancel,
		done:     make(chan struct{}),
		logger:   o.logger.Named("periodic").With(zap.String("task", name)),
	}

	t.logger.Debug("Starting periodic task", zap.Duration("interval", interval))
	go t.run(ctx, fn, o.immediate)
	return t
}

func (t *Task) run(ctx context.Context, fn Func, immediate bool) {
	defer close(t.done)

	if immediate {
		fn(ctx)
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Debug("Periodic task stopped")
			return
		case <-ticker.C:
			// a stop that raced with the tick wins
			if ctx.Err() != nil {
				continue
			}
			fn(ctx)
		}
	}
}

// Stop cancels the task and waits for a running invocation to return.
// Safe to call more than once.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the task goroutine has exited.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) Name() string {
	return t.name
}
