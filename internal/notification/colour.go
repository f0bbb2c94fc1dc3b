package notification

import (
	"doodledash/internal/domain"
)

// FilteredColour is a colour shown when its filter matches a message
type FilteredColour struct {
	Colour string
	Filter domain.Filter
}

// ColourHandler fills the display with the colour of the first filter
// matching the latest messages
type ColourHandler struct {
	domain.Named
	colours       []FilteredColour
	defaultColour string
	current       string
}

// NewColourHandler creates a ColourHandler
func NewColourHandler(defaultColour string, colours ...FilteredColour) *ColourHandler {
	return &ColourHandler{
		colours:       append([]FilteredColour(nil), colours...),
		defaultColour: defaultColour,
	}
}

// Update implements domain.Handler
func (h *ColourHandler) Update(msg domain.Message) error {
	for _, c := range h.colours {
		if c.Filter != nil && c.Filter.Filter(msg) {
			h.current = c.Colour
			return nil
		}
	}
	return nil
}

// Draw implements domain.Handler
func (h *ColourHandler) Draw(display domain.Display) error {
	colour := h.current
	if colour == "" {
		colour = h.defaultColour
	}
	h.current = ""

	if colour == "" {
		return display.Clear()
	}
	return display.FillColour(colour)
}

func (h *ColourHandler) String() string {
	return "Colour handler"
}
