// Package filter implements the message filter pipeline and the built-in
// filter components.
package filter

import "doodledash/internal/domain"

// Apply keeps the messages for which every filter returns true.
// Filters are evaluated in order and evaluation for a message stops at the
// first filter returning false. Input order is preserved and msgs is not
// modified.
func Apply(msgs []domain.Message, filters []domain.Filter) []domain.Message {
	kept := make([]domain.Message, 0, len(msgs))
	for _, msg := range msgs {
		if Keep(msg, filters) {
			kept = append(kept, msg)
		}
	}
	return kept
}

// Keep reports whether msg passes every filter
func Keep(msg domain.Message, filters []domain.Filter) bool {
	for _, f := range filters {
		if !f.Filter(msg) {
			return false
		}
	}
	return true
}
