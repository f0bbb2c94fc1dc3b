package filter

import (
	"fmt"

	"doodledash/internal/component"
	"doodledash/internal/domain"
)

// Register adds the built-in filters to the registry
func Register(registry *component.Registry) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}

	regs := []component.Registration{
		{
			Type:        "contains",
			Description: "Keeps messages containing 'text'",
			Factory:     newContainsFromOptions,
		},
		{
			Type:        "matches-regex",
			Description: "Keeps messages matching regular expression 'pattern'",
			Factory:     newRegexFromOptions,
		},
		{
			Type:        "message",
			Description: "Keeps messages matching either 'contains' or 'pattern'",
			Factory: func(opts component.Options, _ domain.SecretResolver) (any, error) {
				return FromMatchOptions(opts)
			},
		},
		{
			Type:        "similar-to",
			Description: "Keeps messages within 'max-distance' edits of 'text'",
			Factory:     newSimilarFromOptions,
		},
	}

	for _, reg := range regs {
		reg.Category = domain.CategoryFilter
		if err := registry.Register(reg); err != nil {
			return err
		}
	}
	return nil
}

func newContainsFromOptions(opts component.Options, _ domain.SecretResolver) (any, error) {
	text, err := opts.String("text")
	if err != nil {
		return nil, err
	}
	ignoreCase, err := opts.BoolOr("ignore-case", false)
	if err != nil {
		return nil, err
	}
	return NewContainsText(text, ignoreCase), nil
}

func newRegexFromOptions(opts component.Options, _ domain.SecretResolver) (any, error) {
	pattern, err := opts.String("pattern")
	if err != nil {
		return nil, err
	}
	return NewMatchesRegex(pattern)
}

func newSimilarFromOptions(opts component.Options, _ domain.SecretResolver) (any, error) {
	text, err := opts.String("text")
	if err != nil {
		return nil, err
	}
	maxDistance, err := opts.IntOr("max-distance", 3)
	if err != nil {
		return nil, err
	}
	if maxDistance < 0 {
		return nil, &component.InvalidOptionError{Option: "max-distance", Reason: "must not be negative"}
	}
	return NewSimilarTo(text, maxDistance), nil
}
