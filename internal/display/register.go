package display

import (
	"fmt"
	"io"
	"os"

	"doodledash/internal/component"
	"doodledash/internal/domain"
)

// Register adds the built-in displays to the registry. The console display
// writes to out; nil means os.Stdout.
func Register(registry *component.Registry, out io.Writer) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	if out == nil {
		out = os.Stdout
	}

	regs := []component.Registration{
		{
			Type:        "console",
			Description: "Writes notifications to the terminal",
			Factory:     consoleFactory(out),
		},
		{
			Type:        "record",
			Description: "Records display calls without output",
			Factory: func(component.Options, domain.SecretResolver) (any, error) {
				return NewRecord(), nil
			},
		},
	}

	for _, reg := range regs {
		reg.Category = domain.CategoryDisplay
		if err := registry.Register(reg); err != nil {
			return err
		}
	}
	return nil
}

func consoleFactory(out io.Writer) component.Factory {
	return func(opts component.Options, _ domain.SecretResolver) (any, error) {
		width, err := opts.IntOr("width", 0)
		if err != nil {
			return nil, err
		}
		if width < 0 {
			return nil, &component.InvalidOptionError{Option: "width", Reason: "must not be negative"}
		}
		border, err := opts.BoolOr("border", false)
		if err != nil {
			return nil, err
		}
		clearOnClear, err := opts.BoolOr("clear-screen", false)
		if err != nil {
			return nil, err
		}
		return NewConsole(out, WithWidth(width), WithBorder(border), WithClearScreen(clearOnClear)), nil
	}
}
