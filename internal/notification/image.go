package notification

import (
	"doodledash/internal/domain"
)

// FilteredImage is an image shown when its filter matches a message.
// A nil Filter never matches.
type FilteredImage struct {
	Path   string
	Filter domain.Filter
}

// ImageHandler shows the image of the first filter matching the latest
// messages, falling back to a default image
type ImageHandler struct {
	domain.Named
	images       []FilteredImage
	defaultImage string
	current      string
}

// NewImageHandler creates an ImageHandler
func NewImageHandler(defaultImage string, images ...FilteredImage) *ImageHandler {
	return &ImageHandler{
		images:       append([]FilteredImage(nil), images...),
		defaultImage: defaultImage,
	}
}

// Update implements domain.Handler. The first matching image wins, so later
// messages in the same cycle override earlier ones.
func (h *ImageHandler) Update(msg domain.Message) error {
	for _, img := range h.images {
		if img.Filter != nil && img.Filter.Filter(msg) {
			h.current = img.Path
			return nil
		}
	}
	return nil
}

// Draw implements domain.Handler. The selection is reset afterwards so each
// cycle chooses again.
func (h *ImageHandler) Draw(display domain.Display) error {
	image := h.Image()
	h.current = ""

	if err := display.Clear(); err != nil {
		return err
	}
	if image == "" {
		return nil
	}
	return display.DrawImage(image)
}

// Image returns the image to show for the messages seen since the last draw
func (h *ImageHandler) Image() string {
	if h.current != "" {
		return h.current
	}
	return h.defaultImage
}

// FilteredImages returns the configured images in order
func (h *ImageHandler) FilteredImages() []FilteredImage {
	return append([]FilteredImage(nil), h.images...)
}

func (h *ImageHandler) String() string {
	return "Image handler"
}
