// Package sqlite implements store.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/gatherly/gatherly-server/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store provides SQLite-backed persistence for the Gatherly server.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open creates a new SQLite store at the given path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	// foreign_keys and busy_timeout are per connection, so they ride on the DSN.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return New(db, logger), nil
}

// New wraps an already configured database handle.
func New(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// column describes an updatable column behind a domain field key.
type column struct {
	name     string
	nullable bool // empty strings are written as NULL
}

// updateFields applies a single-row UPDATE of the allowlisted fields plus updated_at.
// Returns store.ErrNotFound when no row matched.
func (s *Store) updateFields(ctx context.Context, table string, allowed map[string]column, id string, fields store.Fields) error {
	if len(fields) == 0 {
		return store.ErrInvalidInput.WithMessage("no fields to update")
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		if _, ok := allowed[key]; !ok {
			return store.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown field %q", key))
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+2)
	for _, key := range keys {
		col := allowed[key]
		sets = append(sets, col.name+" = ?")
		args = append(args, bindValue(fields[key], col.nullable))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(time.Now()), id)

	result, err := s.db.ExecContext(ctx,
		`UPDATE `+table+` SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return translateError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// bindValue converts a field value into a driver argument.
func bindValue(v any, nullable bool) any {
	switch val := v.(type) {
	case nil:
		return nil
	case bool:
		if val {
			return 1
		}
		return 0
	case string:
		if nullable {
			return nullString(val)
		}
		return val
	default:
		return val
	}
}

// uniqueColumnFields maps table.column names from SQLite constraint errors to field keys.
var uniqueColumnFields = map[string]string{
	"users.username":            "username",
	"users.email":               "email",
	"users.github_id":           "githubId",
	"communities.subdomain":     "subdomain",
	"communities.custom_domain": "customDomain",
	"events.slug":               "slug",
}

// translateError converts SQLite constraint failures into store errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	const marker = "UNIQUE constraint failed: "
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return err
	}

	// "UNIQUE constraint failed: events.community_id, events.slug (2067)"
	cols := msg[idx+len(marker):]
	if end := strings.Index(cols, " ("); end >= 0 {
		cols = cols[:end]
	}
	parts := strings.Split(cols, ",")
	last := strings.TrimSpace(parts[len(parts)-1])

	field, ok := uniqueColumnFields[last]
	if !ok {
		if dot := strings.LastIndex(last, "."); dot >= 0 {
			field = last[dot+1:]
		} else {
			field = last
		}
	}
	return &store.UniqueViolation{Field: field, Err: err}
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullString converts an empty string to a SQL NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

type scanner interface {
	Scan(dest ...any) error
}
