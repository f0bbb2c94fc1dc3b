// Package loader reads dashboard configuration documents into a Dashboard.
//
// A document is YAML with a top-level `dashboard` mapping:
//
//	dashboard:
//	  interval: 10
//	  display: console
//	  data-feeds:
//	    - type: text
//	      options:
//	        text: hello
//	  notifications:
//	    - type: text
//	      filters:
//	        - type: contains
//	          options:
//	            text: hello
//
// Every document is parsed into its own Dashboard and the results are
// merged in document order with dashboard.Merge.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"doodledash/internal/component"
	"doodledash/internal/dashboard"
	"doodledash/internal/domain"
)

// DocumentYAML is the top level of a configuration document. It is an alias
// so nested mappings decode as plain map[string]any.
type DocumentYAML = map[string]any

// Reader parses configuration documents using the registered components
type Reader struct {
	displays      *ComponentParser[domain.Display]
	feeds         *ComponentParser[domain.DataFeed]
	notifications *NotificationParser
	logger        *zap.Logger
}

// NewReader creates a Reader. secrets is handed to every factory; nil means
// no secrets are available.
func NewReader(registry *component.Registry, secrets domain.SecretResolver, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		displays:      NewComponentParser[domain.Display](domain.CategoryDisplay, registry, secrets),
		feeds:         NewComponentParser[domain.DataFeed](domain.CategoryDataFeed, registry, secrets),
		notifications: NewNotificationParser(registry, secrets),
		logger:        logger,
	}
}

// Document is one raw configuration document and where it came from
type Document struct {
	Source string
	Data   []byte
}

// ReadFiles reads each file and parses them in order
func (r *Reader) ReadFiles(paths ...string) (*dashboard.Dashboard, error) {
	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		docs = append(docs, Document{Source: path, Data: data})
	}
	return r.Read(docs...)
}

// ReadAll parses raw documents in order. Documents are named by position.
func (r *Reader) ReadAll(documents ...[]byte) (*dashboard.Dashboard, error) {
	docs := make([]Document, len(documents))
	for i, data := range documents {
		docs[i] = Document{Source: fmt.Sprintf("document %d", i), Data: data}
	}
	return r.Read(docs...)
}

// Read parses documents and merges them. Any error aborts the whole read.
// Blank documents contribute nothing; if every document is blank the read
// fails with EmptyConfigError.
func (r *Reader) Read(documents ...Document) (*dashboard.Dashboard, error) {
	var (
		dashboards []*dashboard.Dashboard
		sources    []string
	)

	for i, doc := range documents {
		sources = append(sources, doc.Source)

		parsed, err := decodeDocument(doc.Data)
		if err != nil {
			return nil, &ParseError{Document: i, Source: doc.Source, Err: err}
		}
		if parsed == nil {
			r.logger.Debug("skipping blank document", zap.String("source", doc.Source))
			continue
		}

		d, err := r.parseDocument(doc.Source, parsed)
		if err != nil {
			return nil, err
		}
		dashboards = append(dashboards, d)
	}

	if len(dashboards) == 0 {
		return nil, &EmptyConfigError{Sources: sources}
	}

	merged := dashboard.Merge(dashboards...)
	r.logger.Debug("read dashboard",
		zap.Int("documents", len(dashboards)),
		zap.Int("data_feeds", len(merged.DataFeeds)),
		zap.Int("notifications", len(merged.Notifications)))
	return merged, nil
}

func (r *Reader) parseDocument(source string, doc DocumentYAML) (*dashboard.Dashboard, error) {
	raw, ok := doc["dashboard"]
	if !ok {
		return nil, &MissingDashboardError{Source: source}
	}

	config := map[string]any{}
	if raw != nil {
		m, ok := component.AsMap(raw)
		if !ok {
			return nil, &InvalidDashboardError{Source: source, Got: raw}
		}
		config = m
	}

	d := &dashboard.Dashboard{}

	if section, ok := config["display"]; ok && section != nil {
		display, err := r.displays.Parse(section)
		if err != nil {
			if unknown, ok := isUnknownType(err); ok {
				return nil, &DisplayNotFoundError{Type: unknown.Type}
			}
			return nil, fmt.Errorf("%s: display: %w", source, err)
		}
		d.Display = display
	}

	if raw, ok := config["interval"]; ok && raw != nil {
		interval, err := component.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source,
				&component.InvalidOptionError{Option: "interval", Reason: err.Error()})
		}
		d.Interval = &interval
	}

	feeds, err := sectionList(config, "data-feeds")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	for i, section := range feeds {
		feed, err := r.feeds.Parse(section)
		if err != nil {
			return nil, fmt.Errorf("%s: data feed %d: %w", source, i, err)
		}
		d.DataFeeds = append(d.DataFeeds, feed)
	}

	notifications, err := sectionList(config, "notifications")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	for i, section := range notifications {
		n, err := r.notifications.Parse(section)
		if err != nil {
			return nil, fmt.Errorf("%s: notification %d: %w", source, i, err)
		}
		d.Notifications = append(d.Notifications, n)
	}

	return d, nil
}

// decodeDocument decodes exactly one YAML document. A stream holding more
// than one document is rejected; pass them to Read separately instead.
func decodeDocument(data []byte) (DocumentYAML, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var parsed DocumentYAML
	if err := dec.Decode(&parsed); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var extra any
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return parsed, nil
	case err != nil:
		return nil, err
	default:
		return nil, fmt.Errorf("expected a single YAML document, found another after '---'")
	}
}

func sectionList(config map[string]any, key string) ([]any, error) {
	raw, ok := config[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, &component.InvalidOptionError{Option: key, Reason: fmt.Sprintf("expected a list, got %T", raw)}
	}
	return list, nil
}
