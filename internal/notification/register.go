package notification

import (
	"context"
	"fmt"

	"doodledash/internal/component"
	"doodledash/internal/domain"
	"doodledash/internal/filter"
)

// Register adds the built-in notification handlers to the registry.
// downloader fetches image URIs; nil uses a FileDownloader in the temp dir.
func Register(registry *component.Registry, downloader Downloader) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	if downloader == nil {
		downloader = NewFileDownloader("")
	}

	regs := []component.Registration{
		{
			Type:        "text",
			Description: "Shows the text of the latest message",
			Factory:     newTextFromOptions,
		},
		{
			Type:        "image",
			Description: "Shows the image whose filter matches the latest message",
			Factory:     ImageFactory(downloader),
		},
		{
			Type:        "colour",
			Description: "Fills the display with the colour whose filter matches the latest message",
			Factory:     newColourFromOptions,
		},
	}

	for _, reg := range regs {
		reg.Category = domain.CategoryNotification
		if err := registry.Register(reg); err != nil {
			return err
		}
	}
	return nil
}

func newTextFromOptions(opts component.Options, _ domain.SecretResolver) (any, error) {
	prefix, err := opts.StringOr("prefix", "")
	if err != nil {
		return nil, err
	}
	return NewTextHandler(prefix), nil
}

// ImageFactory returns the factory for the image handler. Every `uri` is
// downloaded when the handler is created.
func ImageFactory(downloader Downloader) component.Factory {
	return func(opts component.Options, _ domain.SecretResolver) (any, error) {
		if !opts.Has("images") {
			return nil, &component.MissingOptionError{Option: "images"}
		}
		entries, err := opts.List("images")
		if err != nil {
			return nil, err
		}

		ctx := context.Background()
		images := make([]FilteredImage, 0, len(entries))
		for _, entry := range entries {
			uri, err := entry.String("uri")
			if err != nil {
				return nil, err
			}
			f, err := filter.FromMatchOptions(entry)
			if err != nil {
				return nil, err
			}
			path, err := downloader.Download(ctx, uri)
			if err != nil {
				return nil, fmt.Errorf("download image: %w", err)
			}
			images = append(images, FilteredImage{Path: path, Filter: f})
		}

		defaultImage := ""
		if opts.Has("default-image") {
			uri, err := opts.String("default-image")
			if err != nil {
				return nil, err
			}
			if defaultImage, err = downloader.Download(ctx, uri); err != nil {
				return nil, fmt.Errorf("download default image: %w", err)
			}
		}

		return NewImageHandler(defaultImage, images...), nil
	}
}

func newColourFromOptions(opts component.Options, _ domain.SecretResolver) (any, error) {
	if !opts.Has("colours") {
		return nil, &component.MissingOptionError{Option: "colours"}
	}
	entries, err := opts.List("colours")
	if err != nil {
		return nil, err
	}

	colours := make([]FilteredColour, 0, len(entries))
	for _, entry := range entries {
		colour, err := entry.String("colour")
		if err != nil {
			return nil, err
		}
		f, err := filter.FromMatchOptions(entry)
		if err != nil {
			return nil, err
		}
		colours = append(colours, FilteredColour{Colour: colour, Filter: f})
	}

	defaultColour, err := opts.StringOr("default", "")
	if err != nil {
		return nil, err
	}
	return NewColourHandler(defaultColour, colours...), nil
}
