// Package cache provides DocumentCache backends. All backends share the
// same contract: two independent namespaces, first-writer-wins puts, and
// storage faults surfaced to the caller instead of masquerading as misses.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	errx "github.com/radchat-core-poc/server/internal/core/error"
	logx "github.com/radchat-core-poc/server/pkg/logger"

	"github.com/radchat-core-poc/server/internal/assistant/model"
)

// SQLiteCache is the durable backend. One table per namespace, primary key
// on the lookup column, INSERT OR IGNORE for idempotent writes. WAL mode
// keeps concurrent readers and writers safe for the resolver fan-out.
type SQLiteCache struct {
	db *sql.DB
}

type tableSpec struct {
	name   string
	keyCol string
	valCol string
}

func specFor(ns model.Namespace) (tableSpec, error) {
	switch ns {
	case model.NamespaceSearchResults:
		return tableSpec{name: "search_results", keyCol: "search_query", valCol: "body"}, nil
	case model.NamespaceArticles:
		return tableSpec{name: "articles", keyCol: "url", valCol: "content"}, nil
	default:
		return tableSpec{}, fmt.Errorf("unknown cache namespace %q", ns)
	}
}

// NewSQLite opens (creating if needed) the cache database at path.
func NewSQLite(path string) (*SQLiteCache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	c := &SQLiteCache{db: db}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}

	return c, nil
}

func (c *SQLiteCache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_results (
		search_query TEXT PRIMARY KEY,
		body TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS articles (
		url TEXT PRIMARY KEY,
		content TEXT NOT NULL
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Get looks a key up in the namespace table. A missing row is a miss, not
// an error.
func (c *SQLiteCache) Get(ctx context.Context, ns model.Namespace, key string) (string, bool, error) {
	spec, err := specFor(ns)
	if err != nil {
		return "", false, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", spec.valCol, spec.name, spec.keyCol)
	var value string
	if err := c.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		logx.Error().Err(err).Str("namespace", string(ns)).Str("key", key).Msg("cache lookup failed")
		return "", false, errx.WrapSQLite(err)
	}

	logx.Debug().Str("namespace", string(ns)).Str("key", key).Msg("cache hit")
	return value, true, nil
}

// Put stores the value unless the key already holds one. INSERT OR IGNORE
// makes the write idempotent under concurrent fetchers racing on the key.
func (c *SQLiteCache) Put(ctx context.Context, ns model.Namespace, key, value string) error {
	spec, err := specFor(ns)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("INSERT OR IGNORE INTO %s (%s, %s) VALUES (?, ?)", spec.name, spec.keyCol, spec.valCol)
	if _, err := c.db.ExecContext(ctx, query, key, value); err != nil {
		logx.Error().Err(err).Str("namespace", string(ns)).Str("key", key).Msg("cache write failed")
		return errx.WrapSQLite(err)
	}
	return nil
}

// Close releases the underlying database handle.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

var _ model.DocumentCache = (*SQLiteCache)(nil)
