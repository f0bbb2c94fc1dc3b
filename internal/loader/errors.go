package loader

import (
	"fmt"
	"strings"
)

// ParseError is returned when a document is not valid YAML
type ParseError struct {
	// Document is the zero-based position of the document in the read
	Document int
	// Source names the document, e.g. its file path
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse YAML in %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingDashboardError is returned when a document has no top-level
// `dashboard` key
type MissingDashboardError struct {
	Source string
}

func (e *MissingDashboardError) Error() string {
	return fmt.Sprintf("%s has no 'dashboard' section", e.Source)
}

// EmptyConfigError is returned when there is no configuration to read
type EmptyConfigError struct {
	Sources []string
}

func (e *EmptyConfigError) Error() string {
	if len(e.Sources) == 0 {
		return "no configuration given"
	}
	return fmt.Sprintf("configuration is empty: %s", strings.Join(e.Sources, ", "))
}

// DisplayNotFoundError is returned when the display type is not registered
type DisplayNotFoundError struct {
	Type string
}

func (e *DisplayNotFoundError) Error() string {
	return fmt.Sprintf("display not found for type '%s'", e.Type)
}

// InvalidDashboardError is returned when the `dashboard` value is neither a
// mapping nor null
type InvalidDashboardError struct {
	Source string
	Got    any
}

func (e *InvalidDashboardError) Error() string {
	return fmt.Sprintf("%s: 'dashboard' must be a mapping, got %T", e.Source, e.Got)
}
