package component

import (
	"fmt"

	"doodledash/internal/domain"
)

// MissingTypeError is returned when a configuration section has no `type` key
type MissingTypeError struct {
	Category domain.Category
	Section  map[string]any
}

func (e *MissingTypeError) Error() string {
	return fmt.Sprintf("%s section has not defined a 'type': %v", e.Category, e.Section)
}

// UnknownTypeError is returned when no factory is registered for a type
type UnknownTypeError struct {
	Category domain.Category
	Type     string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("%s component not found for type '%s'", e.Category, e.Type)
}

// MissingOptionError is returned by factories when a required option is absent
type MissingOptionError struct {
	Option string
}

func (e *MissingOptionError) Error() string {
	return fmt.Sprintf("expected '%s' option to exist", e.Option)
}

// InvalidOptionError is returned by factories when an option value is
// structurally wrong
type InvalidOptionError struct {
	Option string
	Reason string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid '%s' option: %s", e.Option, e.Reason)
}

// WrongKindError is returned when a factory builds something that does not
// satisfy the interface its category requires
type WrongKindError struct {
	Category domain.Category
	Type     string
	Got      any
}

func (e *WrongKindError) Error() string {
	return fmt.Sprintf("%s factory '%s' produced %T", e.Category, e.Type, e.Got)
}

// DuplicateError is returned when a (category, type) pair is registered twice
type DuplicateError struct {
	Category domain.Category
	Type     string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s factory '%s' is already registered", e.Category, e.Type)
}
