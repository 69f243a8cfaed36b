package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"scholarhub/internal/config"
	"scholarhub/internal/paper"
	"scholarhub/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubSearcher struct {
	papers []paper.Paper
	err    error
	calls  int
}

func (s *stubSearcher) Search(ctx context.Context, query string, maxResults int) ([]paper.Paper, error) {
	s.calls++
	return s.papers, s.err
}

type stubCache struct {
	cached   []paper.Paper
	hit      bool
	stored   []paper.Paper
	history  []store.HistoryEntry
	recorded []string
}

func (c *stubCache) CachedResults(ctx context.Context, query string, maxResults int) ([]paper.Paper, error) {
	if !c.hit {
		return nil, store.ErrCacheMiss
	}
	return c.cached, nil
}

func (c *stubCache) CacheResults(ctx context.Context, query string, maxResults int, papers []paper.Paper) error {
	c.stored = papers
	return nil
}

func (c *stubCache) RecordSearch(ctx context.Context, query string, resultCount int) error {
	c.recorded = append(c.recorded, query)
	return nil
}

func (c *stubCache) RecentSearches(ctx context.Context, limit int) ([]store.HistoryEntry, error) {
	return c.history, nil
}

func newTestServer(t *testing.T, searcher Searcher, cache Cache) *Server {
	t.Helper()
	srv, err := New(config.DefaultConfig(), nil, searcher, cache)
	require.NoError(t, err)
	return srv
}

func samplePapers() []paper.Paper {
	return []paper.Paper{
		{
			ID:               "p1",
			Source:           "arXiv",
			Title:            "Quantum Error Correction Advances",
			Authors:          []string{"Ada Lovelace"},
			Year:             2024,
			URL:              "https://arxiv.org/abs/2401.00001",
			Abstract:         "The study found improved logical qubit fidelity.",
			ReliabilityScore: 0.85,
			ReliabilityLevel: "Very High",
			CitationFormats:  map[string]string{"APA": "Lovelace, A. (2024)."},
		},
	}
}

func TestIndexPage(t *testing.T) {
	cache := &stubCache{history: []store.HistoryEntry{{Query: "old search", ResultCount: 7}}}
	srv := newTestServer(t, &stubSearcher{}, cache)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="searchForm"`)
	assert.Contains(t, body, `id="query"`)
	assert.Contains(t, body, "data-tooltip")
	assert.Contains(t, body, "old search")
}

func postForm(handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSearch_EmptyQuery(t *testing.T) {
	searcher := &stubSearcher{}
	srv := newTestServer(t, searcher, nil)

	rec := postForm(srv.Handler(), "/search", url.Values{"query": {"   "}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a search query")
	assert.Zero(t, searcher.calls, "empty queries never hit the sources")
}

func TestSearch_RendersResults(t *testing.T) {
	searcher := &stubSearcher{papers: samplePapers()}
	cache := &stubCache{}
	srv := newTestServer(t, searcher, cache)

	rec := postForm(srv.Handler(), "/search", url.Values{"query": {"quantum error correction"}})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Quantum Error Correction Advances")
	assert.Contains(t, body, "Reliability: 0.85 (Very High)")
	assert.Equal(t, 1, searcher.calls)
	assert.Len(t, cache.stored, 1, "fresh results are cached")
	assert.Equal(t, []string{"quantum error correction"}, cache.recorded)
}

func TestSearch_CacheHitSkipsSources(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("must not be called")}
	cache := &stubCache{hit: true, cached: samplePapers()}
	srv := newTestServer(t, searcher, cache)

	rec := postForm(srv.Handler(), "/search", url.Values{"query": {"quantum"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "(cached)")
	assert.Zero(t, searcher.calls)
}

func TestSearch_UpstreamFailure(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("all sources down")}
	srv := newTestServer(t, searcher, nil)

	rec := postForm(srv.Handler(), "/search", url.Values{"query": {"anything"}})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Search failed")
}

func postJSON(handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSynthesize_Summary(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{}, nil)

	rec := postJSON(srv.Handler(), "/synthesize", map[string]any{
		"selected_results": samplePapers(),
		"query":            "quantum",
		"type":             "summary",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "summary", resp["type"])
	assert.Equal(t, float64(1), resp["sources_count"])
	assert.Contains(t, resp["summary"], "Based on analysis of multiple academic sources:")
}

func TestSynthesize_RRLAndCitations(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{}, nil)

	for _, typ := range []string{"rrl", "citations"} {
		rec := postJSON(srv.Handler(), "/synthesize", map[string]any{
			"selected_results": samplePapers(),
			"query":            "quantum",
			"type":             typ,
		})
		require.Equal(t, http.StatusOK, rec.Code, typ)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, typ, resp["type"])
		assert.NotEmpty(t, resp["content"])
	}
}

func TestSynthesize_NoSelection(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{}, nil)

	rec := postJSON(srv.Handler(), "/synthesize", map[string]any{
		"selected_results": []paper.Paper{},
		"query":            "quantum",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No results selected")
}

func TestExport(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{}, nil)

	t.Run("bibtex", func(t *testing.T) {
		rec := postJSON(srv.Handler(), "/export/bibtex", map[string]any{
			"results": samplePapers(),
			"query":   "Quantum Research",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp["content"], "@article{")
		assert.Equal(t, "Quantum_Research_references.bib", resp["filename"])
	})

	t.Run("csv", func(t *testing.T) {
		rec := postJSON(srv.Handler(), "/export/csv", map[string]any{
			"results": samplePapers(),
			"query":   "Quantum Research",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp["content"], "Title,Authors,Year")
		assert.Equal(t, "Quantum_Research_results.csv", resp["filename"])
	})

	t.Run("invalid type", func(t *testing.T) {
		rec := postJSON(srv.Handler(), "/export/pdf", map[string]any{
			"results": samplePapers(),
			"query":   "q",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid export type")
	})

	t.Run("empty results", func(t *testing.T) {
		rec := postJSON(srv.Handler(), "/export/bibtex", map[string]any{
			"results": []paper.Paper{},
			"query":   "q",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No results to export")
	})
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestCORS(t *testing.T) {
	t.Run("wildcard default", func(t *testing.T) {
		srv := newTestServer(t, &stubSearcher{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://example.edu")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		srv := newTestServer(t, &stubSearcher{}, nil)

		req := httptest.NewRequest(http.MethodOptions, "/synthesize", nil)
		req.Header.Set("Origin", "https://example.edu")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("restricted origins", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Server.AllowedOrigins = []string{"https://hub.example.edu"}
		srv, err := New(cfg, nil, &stubSearcher{}, nil)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestStaticAssets(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "searchForm")
}

func TestApplyConfig(t *testing.T) {
	srv := newTestServer(t, &stubSearcher{}, nil)

	cfg := config.DefaultConfig()
	cfg.Search.DefaultMaxResults = 42
	srv.ApplyConfig(cfg)

	assert.Equal(t, 42, srv.config().Search.DefaultMaxResults)
}
