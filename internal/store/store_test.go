package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarhub/internal/paper"
)

func openTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "scholarhub.db"), Options{CacheTTL: ttl})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCacheRoundTrip(t *testing.T) {
	s := openTestStore(t, time.Hour)
	ctx := context.Background()

	papers := []paper.Paper{
		{ID: "1", Title: "Cached Paper", Source: "arXiv", ReliabilityScore: 0.8},
	}
	require.NoError(t, s.CacheResults(ctx, "Quantum Computing", 15, papers))

	// Lookup is case and whitespace insensitive.
	got, err := s.CachedResults(ctx, "  quantum computing ", 15)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cached Paper", got[0].Title)
	assert.Equal(t, 0.8, got[0].ReliabilityScore)
}

func TestCacheMiss(t *testing.T) {
	s := openTestStore(t, time.Hour)
	ctx := context.Background()

	_, err := s.CachedResults(ctx, "never searched", 15)
	assert.ErrorIs(t, err, ErrCacheMiss)

	// Same query under a different result cap is a distinct entry.
	require.NoError(t, s.CacheResults(ctx, "graphene", 15, []paper.Paper{{ID: "1"}}))
	_, err = s.CachedResults(ctx, "graphene", 30)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheExpiry(t *testing.T) {
	s := openTestStore(t, time.Hour)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	require.NoError(t, s.CacheResults(ctx, "stale query", 15, []paper.Paper{{ID: "1"}}))

	s.now = func() time.Time { return base.Add(30 * time.Minute) }
	_, err := s.CachedResults(ctx, "stale query", 15)
	assert.NoError(t, err, "entry within TTL stays fresh")

	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, err = s.CachedResults(ctx, "stale query", 15)
	assert.ErrorIs(t, err, ErrCacheMiss)

	pruned, err := s.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)
}

func TestCacheReplace(t *testing.T) {
	s := openTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.CacheResults(ctx, "topic", 15, []paper.Paper{{ID: "old"}}))
	require.NoError(t, s.CacheResults(ctx, "topic", 15, []paper.Paper{{ID: "new"}}))

	got, err := s.CachedResults(ctx, "topic", 15)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

func TestSearchHistory(t *testing.T) {
	s := openTestStore(t, 0)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, q := range []string{"first", "second", "third"} {
		step := time.Duration(i) * time.Minute
		s.now = func() time.Time { return base.Add(step) }
		require.NoError(t, s.RecordSearch(ctx, q, i+1))
	}

	entries, err := s.RecentSearches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[0].Query)
	assert.Equal(t, 3, entries[0].ResultCount)
	assert.Equal(t, "second", entries[1].Query)
}

func TestRecentSearches_Empty(t *testing.T) {
	s := openTestStore(t, 0)

	entries, err := s.RecentSearches(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
