package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"

	"doodledash/internal/component"
	"doodledash/internal/domain"
)

// ContainsText keeps messages containing a piece of text
type ContainsText struct {
	domain.Named
	text       string
	ignoreCase bool
}

// NewContainsText creates a ContainsText filter
func NewContainsText(text string, ignoreCase bool) *ContainsText {
	return &ContainsText{text: text, ignoreCase: ignoreCase}
}

// Filter implements domain.Filter
func (f *ContainsText) Filter(msg domain.Message) bool {
	if f.ignoreCase {
		fold := cases.Fold()
		return strings.Contains(fold.String(msg.Text), fold.String(f.text))
	}
	return strings.Contains(msg.Text, f.text)
}

// Text returns the text searched for
func (f *ContainsText) Text() string {
	return f.text
}

func (f *ContainsText) String() string {
	return fmt.Sprintf("Contains %q", f.text)
}

// MatchesRegex keeps messages matching a regular expression
type MatchesRegex struct {
	domain.Named
	pattern *regexp.Regexp
}

// NewMatchesRegex compiles pattern into a MatchesRegex filter
func NewMatchesRegex(pattern string) (*MatchesRegex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &component.InvalidOptionError{Option: "pattern", Reason: err.Error()}
	}
	return &MatchesRegex{pattern: re}, nil
}

// Filter implements domain.Filter
func (f *MatchesRegex) Filter(msg domain.Message) bool {
	return f.pattern.MatchString(msg.Text)
}

// Pattern returns the source of the regular expression
func (f *MatchesRegex) Pattern() string {
	return f.pattern.String()
}

func (f *MatchesRegex) String() string {
	return fmt.Sprintf("Matches /%s/", f.pattern)
}

// SimilarTo keeps messages within an edit distance of a piece of text
type SimilarTo struct {
	domain.Named
	text        string
	maxDistance int
}

// NewSimilarTo creates a SimilarTo filter
func NewSimilarTo(text string, maxDistance int) *SimilarTo {
	return &SimilarTo{text: text, maxDistance: maxDistance}
}

// Filter implements domain.Filter
func (f *SimilarTo) Filter(msg domain.Message) bool {
	fold := cases.Fold()
	return levenshtein.ComputeDistance(fold.String(msg.Text), fold.String(f.text)) <= f.maxDistance
}

func (f *SimilarTo) String() string {
	return fmt.Sprintf("Similar to %q (distance <= %d)", f.text, f.maxDistance)
}

// FromMatchOptions builds a filter from mutually exclusive `contains` and
// `pattern` options. Exactly one of them must be given; a null value counts
// as not given.
func FromMatchOptions(opts component.Options) (domain.Filter, error) {
	hasContains := opts["contains"] != nil
	hasPattern := opts["pattern"] != nil

	switch {
	case hasContains && hasPattern:
		return nil, &component.InvalidOptionError{
			Option: "contains|pattern",
			Reason: "expected either 'pattern' or 'contains' option, but not both",
		}
	case !hasContains && !hasPattern:
		return nil, &component.InvalidOptionError{
			Option: "contains|pattern",
			Reason: "expected either 'pattern' or 'contains' option to exist",
		}
	case hasContains:
		text, err := opts.String("contains")
		if err != nil {
			return nil, err
		}
		ignoreCase, err := opts.BoolOr("ignore-case", false)
		if err != nil {
			return nil, err
		}
		return NewContainsText(text, ignoreCase), nil
	default:
		pattern, err := opts.String("pattern")
		if err != nil {
			return nil, err
		}
		return NewMatchesRegex(pattern)
	}
}
