// Package datafeed provides the built-in data feed components.
//
// A data feed is polled once per dashboard cycle and returns the messages
// it currently has. Feeds that talk to the network or disk receive the
// cycle's context.
package datafeed

import (
	"context"
	"time"

	"doodledash/internal/domain"
)

// TextFeed always returns the same fixed messages
type TextFeed struct {
	domain.Named
	texts []string
}

// NewTextFeed creates a TextFeed returning one message per text
func NewTextFeed(texts ...string) *TextFeed {
	return &TextFeed{texts: append([]string(nil), texts...)}
}

// LatestEntities implements domain.DataFeed
func (f *TextFeed) LatestEntities(context.Context) ([]domain.Message, error) {
	msgs := make([]domain.Message, 0, len(f.texts))
	for _, text := range f.texts {
		msgs = append(msgs, domain.NewMessage(text, "text"))
	}
	return msgs, nil
}

// Texts returns the configured texts
func (f *TextFeed) Texts() []string {
	return append([]string(nil), f.texts...)
}

func (f *TextFeed) String() string {
	return "Text"
}

// DefaultDateTimeFormat renders e.g. 2002-12-25T00:00
const DefaultDateTimeFormat = "2006-01-02T15:04"

// DateTimeFeed returns the current time as a single message
type DateTimeFeed struct {
	domain.Named
	format string
	now    func() time.Time
}

// NewDateTimeFeed creates a DateTimeFeed using a Go time layout
func NewDateTimeFeed(format string) *DateTimeFeed {
	if format == "" {
		format = DefaultDateTimeFormat
	}
	return &DateTimeFeed{format: format, now: time.Now}
}

// LatestEntities implements domain.DataFeed
func (f *DateTimeFeed) LatestEntities(context.Context) ([]domain.Message, error) {
	return []domain.Message{domain.NewMessage(f.now().Format(f.format), "datetime")}, nil
}

func (f *DateTimeFeed) String() string {
	return "Date/Time (e.g. " + time.Date(2002, 12, 25, 0, 0, 0, 0, time.UTC).Format(f.format) + ")"
}
