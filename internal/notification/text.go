package notification

import (
	"doodledash/internal/domain"
)

// TextHandler shows the text of the most recent message
type TextHandler struct {
	domain.Named
	prefix string
	text   string
	seen   bool
}

// NewTextHandler creates a TextHandler. prefix is written before the text.
func NewTextHandler(prefix string) *TextHandler {
	return &TextHandler{prefix: prefix}
}

// Update implements domain.Handler
func (h *TextHandler) Update(msg domain.Message) error {
	h.text = msg.Text
	h.seen = true
	return nil
}

// Draw implements domain.Handler
func (h *TextHandler) Draw(display domain.Display) error {
	if err := display.Clear(); err != nil {
		return err
	}
	if !h.seen {
		return nil
	}
	return display.WriteText(h.prefix + h.text)
}

// Text returns the last text received
func (h *TextHandler) Text() string {
	return h.text
}

func (h *TextHandler) String() string {
	return "Text handler"
}
