package display

import (
	"fmt"
	"sync"

	"doodledash/internal/domain"
)

// Record remembers every call made to it. Useful for dry runs and tests.
type Record struct {
	domain.Named
	mu    sync.Mutex
	calls []string
}

// NewRecord creates an empty Record display
func NewRecord() *Record {
	return &Record{}
}

// Clear implements domain.Display
func (r *Record) Clear() error {
	r.add("Clear display")
	return nil
}

// WriteText implements domain.Display
func (r *Record) WriteText(text string) error {
	r.add(fmt.Sprintf("Write text: '%s'", text))
	return nil
}

// DrawImage implements domain.Display
func (r *Record) DrawImage(path string) error {
	r.add(fmt.Sprintf("Draw image: '%s'", path))
	return nil
}

// FillColour implements domain.Display
func (r *Record) FillColour(colour string) error {
	r.add(fmt.Sprintf("Fill display with colour: '%s'", colour))
	return nil
}

// Calls returns the recorded calls in order
func (r *Record) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *Record) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *Record) String() string {
	return "Record display"
}
