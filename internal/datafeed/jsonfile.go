package datafeed

import (
	"context"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"doodledash/internal/domain"
)

// JSONFileFeed reads a JSON document on every poll and returns the values
// selected by a gjson path. Arrays yield one message per element.
type JSONFileFeed struct {
	domain.Named
	path  string
	query string
}

// NewJSONFileFeed creates a JSONFileFeed
func NewJSONFileFeed(path, query string) *JSONFileFeed {
	return &JSONFileFeed{path: path, query: query}
}

// LatestEntities implements domain.DataFeed
func (f *JSONFileFeed) LatestEntities(context.Context) ([]domain.Message, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return f.extract(data)
}

func (f *JSONFileFeed) extract(data []byte) ([]domain.Message, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse %s: invalid JSON", f.path)
	}

	result := gjson.GetBytes(data, f.query)
	if !result.Exists() {
		return nil, nil
	}

	source := "json:" + f.path
	if !result.IsArray() {
		return []domain.Message{domain.NewMessage(result.String(), source)}, nil
	}

	var msgs []domain.Message
	result.ForEach(func(_, value gjson.Result) bool {
		msgs = append(msgs, domain.NewMessage(value.String(), source))
		return true
	})
	return msgs, nil
}

func (f *JSONFileFeed) String() string {
	return fmt.Sprintf("JSON %s (%s)", f.path, f.query)
}
