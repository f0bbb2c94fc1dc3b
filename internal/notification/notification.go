// Package notification pairs a message handler with the filter chain that
// feeds it, and provides the built-in handlers.
package notification

import (
	"fmt"

	"doodledash/internal/domain"
	"doodledash/internal/filter"
)

// Notification owns a handler and an immutable, possibly empty filter chain
type Notification struct {
	domain.Named
	handler domain.Handler
	filters []domain.Filter
}

// New creates a notification. The filter slice is copied.
func New(handler domain.Handler, filters ...domain.Filter) *Notification {
	chain := make([]domain.Filter, len(filters))
	copy(chain, filters)
	return &Notification{
		handler: handler,
		filters: chain,
	}
}

// Handler returns the wrapped handler
func (n *Notification) Handler() domain.Handler {
	return n.handler
}

// Filters returns a copy of the filter chain
func (n *Notification) Filters() []domain.Filter {
	chain := make([]domain.Filter, len(n.filters))
	copy(chain, n.filters)
	return chain
}

// Filter runs msgs through the filter chain
func (n *Notification) Filter(msgs []domain.Message) []domain.Message {
	return filter.Apply(msgs, n.filters)
}

// Handle filters msgs, passes each survivor to the handler and then draws
// once. It returns the messages that reached the handler.
func (n *Notification) Handle(display domain.Display, msgs []domain.Message) ([]domain.Message, error) {
	kept := n.Filter(msgs)

	for _, msg := range kept {
		if err := n.handler.Update(msg); err != nil {
			return kept, fmt.Errorf("update %s: %w", n, err)
		}
	}

	if err := n.handler.Draw(display); err != nil {
		return kept, fmt.Errorf("draw %s: %w", n, err)
	}
	return kept, nil
}

func (n *Notification) String() string {
	if n.Name() != "" {
		return n.Name()
	}
	return fmt.Sprintf("Displays messages using: %s", domain.Describe(n.handler, fmt.Sprintf("%T", n.handler)))
}
