// Package dashboard holds the assembled dashboard and the merge of
// dashboards read from several configuration documents.
package dashboard

import (
	"errors"
	"io"
	"time"

	"doodledash/internal/domain"
	"doodledash/internal/notification"
)

// Dashboard is a display driven by notifications built from data feeds.
// It is mutable while documents are merged and read-only afterwards.
type Dashboard struct {
	// Display is nil when no document configured one
	Display       domain.Display
	DataFeeds     []domain.DataFeed
	Notifications []*notification.Notification
	// Interval is nil when no document configured one
	Interval *time.Duration
}

// IntervalOr returns the configured interval, or def when none was set
func (d *Dashboard) IntervalOr(def time.Duration) time.Duration {
	if d.Interval == nil {
		return def
	}
	return *d.Interval
}

// Merge folds dashboards left to right into a new Dashboard. Display and
// interval are last-writer-wins among dashboards that set them; data feeds
// and notifications are appended in order.
func Merge(dashboards ...*Dashboard) *Dashboard {
	merged := &Dashboard{}
	for _, d := range dashboards {
		if d == nil {
			continue
		}
		if d.Display != nil {
			merged.Display = d.Display
		}
		if d.Interval != nil {
			interval := *d.Interval
			merged.Interval = &interval
		}
		merged.DataFeeds = append(merged.DataFeeds, d.DataFeeds...)
		merged.Notifications = append(merged.Notifications, d.Notifications...)
	}
	return merged
}

// Close closes every component that holds resources (implements io.Closer).
// All components are closed even if some fail.
func (d *Dashboard) Close() error {
	var errs []error
	closeIt := func(c any) {
		if closer, ok := c.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	closeIt(d.Display)
	for _, feed := range d.DataFeeds {
		closeIt(feed)
	}
	for _, n := range d.Notifications {
		closeIt(n.Handler())
	}
	return errors.Join(errs...)
}
