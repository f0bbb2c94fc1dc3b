// Package runner executes dashboard cycles.
//
// One cycle collects messages from every data feed, then hands the
// collected snapshot to each notification in configuration order, pausing
// for the dashboard interval after each one. The runner never loops on its
// own; the caller decides when to run the next cycle.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"doodledash/internal/dashboard"
	"doodledash/internal/domain"
)

// DefaultInterval is used when the dashboard does not configure one
const DefaultInterval = 15 * time.Second

// ErrNoDisplay is returned when notifications exist but nothing can show them
var ErrNoDisplay = errors.New("dashboard has notifications but no display")

// SleepFunc pauses for d, returning early with ctx.Err() on cancellation
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Runner executes cycles over one dashboard
type Runner struct {
	dashboard *dashboard.Dashboard
	interval  time.Duration
	sleep     SleepFunc
	logger    *zap.Logger
	metrics   *runnerMetrics
	now       func() time.Time
}

// Option configures a Runner
type Option func(*Runner)

// WithDefaultInterval sets the pause used when the dashboard has none
func WithDefaultInterval(d time.Duration) Option {
	return func(r *Runner) {
		r.interval = d
	}
}

// WithSleep replaces the pause between notifications
func WithSleep(sleep SleepFunc) Option {
	return func(r *Runner) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Runner. reg receives the runner metrics; nil disables them.
func New(d *dashboard.Dashboard, reg prometheus.Registerer, opts ...Option) (*Runner, error) {
	if d == nil {
		return nil, fmt.Errorf("dashboard cannot be nil")
	}

	r := &Runner{
		dashboard: d,
		interval:  DefaultInterval,
		sleep:     Sleep,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	metrics, err := newRunnerMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	r.metrics = metrics

	return r, nil
}

// Interval returns the pause taken after each notification
func (r *Runner) Interval() time.Duration {
	return r.dashboard.IntervalOr(r.interval)
}

// Cycle performs one collect and dispatch pass. Feed and handler errors
// abort the cycle and are returned; so is cancellation of ctx.
func (r *Runner) Cycle(ctx context.Context) (err error) {
	defer func() {
		r.metrics.recordCycle(err, r.now())
	}()

	if r.dashboard.Display == nil && len(r.dashboard.Notifications) > 0 {
		return ErrNoDisplay
	}

	entities, err := CollectEntities(ctx, r.dashboard.DataFeeds)
	if err != nil {
		return err
	}
	r.metrics.recordCollected(len(entities))

	interval := r.Interval()
	for i, n := range r.dashboard.Notifications {
		name := domain.Describe(n, fmt.Sprintf("notification %d", i))

		start := r.now()
		kept, err := n.Handle(r.dashboard.Display, entities)
		if err != nil {
			r.logger.Error("notification failed", zap.String("notification", name), zap.Error(err))
			return fmt.Errorf("dispatch notification %d: %w", i, err)
		}
		r.metrics.recordDispatch(name, len(kept), r.now().Sub(start))

		r.logger.Debug("dispatched notification",
			zap.String("notification", name),
			zap.Strings("entities_before_filters", domain.Texts(entities)),
			zap.Strings("entities_after_filters", domain.Texts(kept)))

		if err := r.sleep(ctx, interval); err != nil {
			return err
		}
	}

	return nil
}

// CollectEntities polls every feed in order and concatenates the results.
// The first failing feed aborts the collection.
func CollectEntities(ctx context.Context, feeds []domain.DataFeed) ([]domain.Message, error) {
	var entities []domain.Message
	for i, feed := range feeds {
		msgs, err := feed.LatestEntities(ctx)
		if err != nil {
			return nil, fmt.Errorf("data feed %s: %w", domain.Describe(feed, fmt.Sprintf("%d", i)), err)
		}
		entities = append(entities, msgs...)
	}
	return entities, nil
}
