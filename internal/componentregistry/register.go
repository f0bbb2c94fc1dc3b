// Package componentregistry registers every built-in component.
package componentregistry

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"doodledash/internal/component"
	"doodledash/internal/datafeed"
	"doodledash/internal/display"
	"doodledash/internal/filter"
	"doodledash/internal/notification"
)

// Options configures the built-in components
type Options struct {
	// Output is where the console display writes; nil means os.Stdout
	Output io.Writer
	// Downloader fetches image URIs; nil downloads into the temp dir
	Downloader notification.Downloader
	Logger     *zap.Logger
}

// Register adds every built-in display, data feed, filter and notification
// handler to registry
func Register(registry *component.Registry, opts Options) error {
	if err := display.Register(registry, opts.Output); err != nil {
		return fmt.Errorf("register displays: %w", err)
	}
	if err := datafeed.Register(registry, opts.Logger); err != nil {
		return fmt.Errorf("register data feeds: %w", err)
	}
	if err := filter.Register(registry); err != nil {
		return fmt.Errorf("register filters: %w", err)
	}
	if err := notification.Register(registry, opts.Downloader); err != nil {
		return fmt.Errorf("register notifications: %w", err)
	}
	return nil
}

// New returns a registry holding every built-in component
func New(opts Options) (*component.Registry, error) {
	registry := component.NewRegistry()
	if err := Register(registry, opts); err != nil {
		return nil, err
	}
	return registry, nil
}
