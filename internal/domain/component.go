package domain

import (
	"context"
	"fmt"
)

// Category partitions the component namespace. A type identifier is only
// unique within its category.
type Category string

const (
	CategoryDisplay      Category = "display"
	CategoryDataFeed     Category = "data-feed"
	CategoryFilter       Category = "filter"
	CategoryNotification Category = "notification"
)

// Categories lists every category in registration order
func Categories() []Category {
	return []Category{CategoryDisplay, CategoryDataFeed, CategoryFilter, CategoryNotification}
}

// ParseCategory converts a string into a Category
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown component category %q", s)
}

// DataFeed produces the latest messages from a data source
type DataFeed interface {
	LatestEntities(ctx context.Context) ([]Message, error)
}

// Display is the surface notifications draw on
type Display interface {
	Clear() error
	WriteText(text string) error
	DrawImage(path string) error
	FillColour(colour string) error
}

// Handler turns filtered messages into display output.
// Update is called once per surviving message, then Draw once.
type Handler interface {
	Update(msg Message) error
	Draw(display Display) error
}

// Filter decides whether a message is kept. Implementations must not have
// side effects.
type Filter interface {
	Filter(msg Message) bool
}

// FilterFunc adapts a function to the Filter interface
type FilterFunc func(msg Message) bool

// Filter implements Filter
func (f FilterFunc) Filter(msg Message) bool {
	return f(msg)
}

// SecretResolver looks up secret values by key
type SecretResolver interface {
	Lookup(key string) (string, bool)
}

// NoSecrets is a SecretResolver that never resolves anything
type NoSecrets struct{}

// Lookup implements SecretResolver
func (NoSecrets) Lookup(string) (string, bool) {
	return "", false
}

// Namer is implemented by components that accept the optional `name` key of
// their configuration section. The name is for diagnostics only.
type Namer interface {
	SetName(name string)
}

// Named is embedded by components to implement Namer
type Named struct {
	name string
}

// SetName implements Namer
func (n *Named) SetName(name string) {
	n.name = name
}

// Name returns the configured name, or "" if none was set
func (n *Named) Name() string {
	return n.name
}

// Describe returns the configured name if set, otherwise fallback
func Describe(component any, fallback string) string {
	if n, ok := component.(interface{ Name() string }); ok && n.Name() != "" {
		return n.Name()
	}
	if s, ok := component.(fmt.Stringer); ok {
		return s.String()
	}
	return fallback
}
