package loader

import (
	"errors"
	"fmt"

	"doodledash/internal/component"
	"doodledash/internal/domain"
	"doodledash/internal/notification"
)

// ComponentParser turns one configuration section into a live component of
// kind T, using the factories registered for its category.
//
// A section is a mapping with a required `type`, an optional `options`
// mapping handed verbatim to the factory, and an optional diagnostic
// `name`. A bare string is shorthand for a section with only a type.
type ComponentParser[T any] struct {
	category domain.Category
	registry *component.Registry
	secrets  domain.SecretResolver
}

// NewComponentParser creates a parser scoped to one category
func NewComponentParser[T any](category domain.Category, registry *component.Registry, secrets domain.SecretResolver) *ComponentParser[T] {
	if secrets == nil {
		secrets = domain.NoSecrets{}
	}
	return &ComponentParser[T]{category: category, registry: registry, secrets: secrets}
}

// Parse builds the component described by section
func (p *ComponentParser[T]) Parse(section any) (T, error) {
	var zero T

	fields, err := p.sectionFields(section)
	if err != nil {
		return zero, err
	}

	typeID, err := p.typeOf(fields)
	if err != nil {
		return zero, err
	}

	reg, ok := p.registry.Lookup(p.category, typeID)
	if !ok {
		return zero, &component.UnknownTypeError{Category: p.category, Type: typeID}
	}

	opts := component.Options{}
	if raw, ok := fields["options"]; ok && raw != nil {
		m, ok := component.AsMap(raw)
		if !ok {
			return zero, fmt.Errorf("%s '%s': %w", p.category, typeID,
				&component.InvalidOptionError{Option: "options", Reason: fmt.Sprintf("expected a mapping, got %T", raw)})
		}
		opts = component.Options(m)
	}

	instance, err := reg.Factory(opts, p.secrets)
	if err != nil {
		return zero, fmt.Errorf("%s '%s': %w", p.category, typeID, err)
	}

	built, ok := instance.(T)
	if !ok {
		return zero, &component.WrongKindError{Category: p.category, Type: typeID, Got: instance}
	}

	if name, ok := fields["name"]; ok && name != nil {
		if namer, ok := instance.(domain.Namer); ok {
			namer.SetName(fmt.Sprint(name))
		}
	}

	return built, nil
}

// typeOf returns the section's type. Only an absent, null or empty type is
// missing; any other scalar is looked up as written.
func (p *ComponentParser[T]) typeOf(fields map[string]any) (string, error) {
	switch v := fields["type"].(type) {
	case nil:
		return "", &component.MissingTypeError{Category: p.category, Section: fields}
	case string:
		if v == "" {
			return "", &component.MissingTypeError{Category: p.category, Section: fields}
		}
		return v, nil
	case int, int64, float64, bool:
		return "", &component.UnknownTypeError{Category: p.category, Type: fmt.Sprint(v)}
	default:
		return "", &component.InvalidOptionError{Option: "type", Reason: fmt.Sprintf("expected a string, got %T", v)}
	}
}

func (p *ComponentParser[T]) sectionFields(section any) (map[string]any, error) {
	if s, ok := section.(string); ok {
		return map[string]any{"type": s}, nil
	}
	fields, ok := component.AsMap(section)
	if !ok {
		// A section that is neither a mapping nor a type name has no type
		return nil, &component.MissingTypeError{Category: p.category, Section: map[string]any{"section": section}}
	}
	return fields, nil
}

// NotificationParser parses notification sections, attaching the filters
// listed under the section's own `filters` key
type NotificationParser struct {
	handlers *ComponentParser[domain.Handler]
	filters  *ComponentParser[domain.Filter]
}

// NewNotificationParser creates a parser for the notification category
func NewNotificationParser(registry *component.Registry, secrets domain.SecretResolver) *NotificationParser {
	return &NotificationParser{
		handlers: NewComponentParser[domain.Handler](domain.CategoryNotification, registry, secrets),
		filters:  NewComponentParser[domain.Filter](domain.CategoryFilter, registry, secrets),
	}
}

// Parse builds the notification described by section
func (p *NotificationParser) Parse(section any) (*notification.Notification, error) {
	handler, err := p.handlers.Parse(section)
	if err != nil {
		return nil, err
	}

	fields, _ := component.AsMap(section)
	filters, err := p.parseFilters(fields["filters"])
	if err != nil {
		return nil, err
	}

	n := notification.New(handler, filters...)
	if name, ok := fields["name"]; ok && name != nil {
		n.SetName(fmt.Sprint(name))
	}
	return n, nil
}

func (p *NotificationParser) parseFilters(raw any) ([]domain.Filter, error) {
	if raw == nil {
		return nil, nil
	}
	sections, ok := raw.([]any)
	if !ok {
		return nil, &component.InvalidOptionError{Option: "filters", Reason: fmt.Sprintf("expected a list, got %T", raw)}
	}

	filters := make([]domain.Filter, 0, len(sections))
	for i, section := range sections {
		f, err := p.filters.Parse(section)
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// isUnknownType reports whether err is an UnknownTypeError, returning it
func isUnknownType(err error) (*component.UnknownTypeError, bool) {
	var unknown *component.UnknownTypeError
	if errors.As(err, &unknown) {
		return unknown, true
	}
	return nil, false
}
