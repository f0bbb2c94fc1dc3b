// Package display provides the built-in display components.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"doodledash/internal/domain"
)

const clearScreen = "\033[2J\033[H"

// Console writes notifications to a terminal
type Console struct {
	domain.Named
	out        io.Writer
	width      int
	clear      bool
	textStyle  lipgloss.Style
	imageStyle lipgloss.Style
}

// ConsoleOption configures a Console
type ConsoleOption func(*Console)

// WithWidth sets the rendered width in cells; 0 leaves text unwrapped
func WithWidth(width int) ConsoleOption {
	return func(c *Console) {
		c.width = width
	}
}

// WithBorder draws a rounded border around text
func WithBorder(enabled bool) ConsoleOption {
	return func(c *Console) {
		if enabled {
			c.textStyle = c.textStyle.Border(lipgloss.RoundedBorder()).Padding(0, 1)
		}
	}
}

// WithClearScreen makes Clear emit the ANSI clear-screen sequence
func WithClearScreen(enabled bool) ConsoleOption {
	return func(c *Console) {
		c.clear = enabled
	}
}

// NewConsole creates a console display writing to out
func NewConsole(out io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		out:        out,
		textStyle:  lipgloss.NewStyle(),
		imageStyle: lipgloss.NewStyle().Italic(true),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.width > 0 {
		c.textStyle = c.textStyle.Width(c.width)
	}
	return c
}

// Clear implements domain.Display
func (c *Console) Clear() error {
	if !c.clear {
		return nil
	}
	_, err := io.WriteString(c.out, clearScreen)
	return err
}

// WriteText implements domain.Display
func (c *Console) WriteText(text string) error {
	return c.writeLine(c.textStyle.Render(text))
}

// DrawImage implements domain.Display. Terminals cannot show images, so the
// path is printed instead.
func (c *Console) DrawImage(path string) error {
	return c.writeLine(c.imageStyle.Render(fmt.Sprintf("[image: %s]", path)))
}

// FillColour implements domain.Display
func (c *Console) FillColour(colour string) error {
	width := c.width
	if width <= 0 {
		width = 20
	}
	block := lipgloss.NewStyle().
		Background(lipgloss.Color(colour)).
		Render(strings.Repeat(" ", width))
	return c.writeLine(block)
}

func (c *Console) writeLine(s string) error {
	_, err := fmt.Fprintln(c.out, s)
	return err
}

func (c *Console) String() string {
	return "Console display"
}
