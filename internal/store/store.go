// Package store persists search results and history in a local SQLite
// database. The cache keeps federated search responses for a TTL so
// repeated queries skip the upstream round trips; the history table
// powers the recent-searches list on the landing page.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"scholarhub/internal/paper"
)

// ErrCacheMiss is returned when no fresh cached results exist for a query.
var ErrCacheMiss = errors.New("store: cache miss")

// Store wraps the SQLite database holding the search cache and history.
type Store struct {
	db       *sql.DB
	mu       sync.RWMutex
	log      *zap.Logger
	cacheTTL time.Duration
	now      func() time.Time
}

// Options configure a Store.
type Options struct {
	// CacheTTL bounds how long cached search results stay fresh.
	// Zero disables expiry.
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// Open initializes the SQLite database at the given path, creating the
// parent directory and schema as needed.
func Open(path string, opts Options) (*Store, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			log.Debug("pragma failed", zap.String("pragma", pragma), zap.Error(err))
		}
	}

	s := &Store{
		db:       db,
		log:      log,
		cacheTTL: opts.CacheTTL,
		now:      time.Now,
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	log.Debug("store opened", zap.String("path", path))
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_cache (
		query_key TEXT NOT NULL,
		max_results INTEGER NOT NULL,
		results TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (query_key, max_results)
	);
	CREATE TABLE IF NOT EXISTS search_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		result_count INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_created ON search_history(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// queryKey normalizes a query for cache lookups.
func queryKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// CachedResults returns the cached papers for a query, or ErrCacheMiss
// when nothing fresh is stored.
func (s *Store) CachedResults(ctx context.Context, query string, maxResults int) ([]paper.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		payload   string
		createdAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT results, created_at FROM search_cache WHERE query_key = ? AND max_results = ?`,
		queryKey(query), maxResults,
	).Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	if s.cacheTTL > 0 && s.now().Sub(createdAt) > s.cacheTTL {
		return nil, ErrCacheMiss
	}

	var papers []paper.Paper
	if err := json.Unmarshal([]byte(payload), &papers); err != nil {
		return nil, fmt.Errorf("decoding cached results: %w", err)
	}
	return papers, nil
}

// CacheResults stores the papers for a query, replacing any prior entry.
func (s *Store) CacheResults(ctx context.Context, query string, maxResults int, papers []paper.Paper) error {
	payload, err := json.Marshal(papers)
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO search_cache (query_key, max_results, results, created_at) VALUES (?, ?, ?, ?)`,
		queryKey(query), maxResults, string(payload), s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// RecordSearch appends a search to the history.
func (s *Store) RecordSearch(ctx context.Context, query string, resultCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_history (query, result_count, created_at) VALUES (?, ?, ?)`,
		strings.TrimSpace(query), resultCount, s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording search: %w", err)
	}
	return nil
}

// HistoryEntry is one past search.
type HistoryEntry struct {
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	SearchedAt  time.Time `json:"searched_at"`
}

// RecentSearches returns up to limit history entries, newest first.
func (s *Store) RecentSearches(ctx context.Context, limit int) ([]HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT query, result_count, created_at FROM search_history ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Query, &e.ResultCount, &e.SearchedAt); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	return entries, nil
}

// PruneExpired removes cache entries older than the TTL. A no-op when
// expiry is disabled.
func (s *Store) PruneExpired(ctx context.Context) (int64, error) {
	if s.cacheTTL <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().UTC().Add(-s.cacheTTL)
	res, err := s.db.ExecContext(ctx, `DELETE FROM search_cache WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}
