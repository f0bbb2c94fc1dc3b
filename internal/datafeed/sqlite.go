package datafeed

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"doodledash/internal/domain"
)

// SQLiteQueryFeed runs a read-only query against a SQLite database on every
// poll. Each row becomes one message, its columns joined by spaces.
type SQLiteQueryFeed struct {
	domain.Named
	path  string
	query string
	db    *sql.DB
}

// NewSQLiteQueryFeed opens the database lazily; no I/O happens here
func NewSQLiteQueryFeed(path, query string) (*SQLiteQueryFeed, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=query_only(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &SQLiteQueryFeed{path: path, query: query, db: db}, nil
}

// LatestEntities implements domain.DataFeed
func (f *SQLiteQueryFeed) LatestEntities(ctx context.Context) ([]domain.Message, error) {
	rows, err := f.db.QueryContext(ctx, f.query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", f.path, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	source := "sqlite:" + f.path
	var msgs []domain.Message
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		msgs = append(msgs, domain.NewMessage(joinColumns(values), source))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return msgs, nil
}

// Close releases the database handle
func (f *SQLiteQueryFeed) Close() error {
	return f.db.Close()
}

func (f *SQLiteQueryFeed) String() string {
	return fmt.Sprintf("SQLite %s", f.path)
}

func joinColumns(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case nil:
			parts[i] = ""
		case []byte:
			parts[i] = string(val)
		default:
			parts[i] = fmt.Sprint(val)
		}
	}
	return strings.Join(parts, " ")
}
