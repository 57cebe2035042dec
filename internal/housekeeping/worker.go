// Package housekeeping runs periodic maintenance passes for the site
// runtime. Today that means evicting expired admin sessions.
package housekeeping

import (
	"context"
	"errors"
	"time"

	"github.com/nycb2b/site/internal/logging"
	"github.com/nycb2b/site/pkg/interfaces"
)

// DefaultInterval separates sweeps when no interval is configured.
const DefaultInterval = 10 * time.Minute

// SessionSweeper drops sessions that expired at or before now.
type SessionSweeper interface {
	DeleteExpired(now time.Time) int
}

type Worker struct {
	sessions SessionSweeper
	logger   interfaces.Logger
	now      func() time.Time
	interval time.Duration
}

type Option func(*Worker)

func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.now = clock
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func NewWorker(sessions SessionSweeper, opts ...Option) *Worker {
	w := &Worker{
		sessions: sessions,
		logger:   logging.NoOp(),
		now:      time.Now,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Process runs a single sweep and reports how many sessions were evicted.
func (w *Worker) Process(ctx context.Context) (int, error) {
	if w.sessions == nil {
		return 0, errors.New("housekeeping: session store is nil")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	evicted := w.sessions.DeleteExpired(w.now())
	if evicted > 0 {
		w.logger.Info("housekeeping.sessions.evicted", "count", evicted)
	}
	return evicted, nil
}

// Run sweeps every interval until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Process(ctx); err != nil && ctx.Err() == nil {
				w.logger.Warn("housekeeping.sweep.failed", "error", err)
			}
		}
	}
}
