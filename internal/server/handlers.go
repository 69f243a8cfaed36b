package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"scholarhub/internal/export"
	"scholarhub/internal/paper"
	"scholarhub/internal/store"
	"scholarhub/internal/synthesis"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var recent []store.HistoryEntry
	if s.cache != nil {
		var err error
		recent, err = s.cache.RecentSearches(r.Context(), 5)
		if err != nil {
			s.log.Warn("loading recent searches", zap.Error(err))
		}
	}

	s.renderPage(w, http.StatusOK, "index.html", map[string]any{
		"Recent": recent,
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.FormValue("query"))
	if query == "" {
		s.renderError(w, http.StatusBadRequest, "Please enter a search query")
		return
	}

	maxResults := s.config().Search.DefaultMaxResults
	if raw := r.FormValue("max_results"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			maxResults = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.searchTimeout())
	defer cancel()

	results, cached := s.cachedResults(ctx, query, maxResults)
	if !cached {
		var err error
		results, err = s.searcher.Search(ctx, query, maxResults)
		if err != nil {
			s.log.Error("search failed", zap.String("query", query), zap.Error(err))
			s.renderError(w, http.StatusInternalServerError, "Search failed, please try again")
			return
		}
		s.storeResults(ctx, query, maxResults, results)
	}

	if s.cache != nil {
		if err := s.cache.RecordSearch(ctx, query, len(results)); err != nil {
			s.log.Warn("recording search history", zap.Error(err))
		}
	}

	s.renderPage(w, http.StatusOK, "results.html", map[string]any{
		"Query":   query,
		"Results": results,
		"Count":   len(results),
		"Cached":  cached,
	})
}

func (s *Server) cachedResults(ctx context.Context, query string, maxResults int) ([]paper.Paper, bool) {
	if s.cache == nil {
		return nil, false
	}
	results, err := s.cache.CachedResults(ctx, query, maxResults)
	if err != nil {
		if !errors.Is(err, store.ErrCacheMiss) {
			s.log.Warn("cache lookup failed", zap.Error(err))
		}
		return nil, false
	}
	s.log.Debug("cache hit", zap.String("query", query), zap.Int("results", len(results)))
	return results, true
}

func (s *Server) storeResults(ctx context.Context, query string, maxResults int, results []paper.Paper) {
	if s.cache == nil {
		return
	}
	if err := s.cache.CacheResults(ctx, query, maxResults, results); err != nil {
		s.log.Warn("caching results failed", zap.Error(err))
	}
}

type synthesizeRequest struct {
	SelectedResults []paper.Paper `json:"selected_results"`
	Query           string        `json:"query"`
	Type            string        `json:"type"`
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "No data received")
		return
	}
	if len(req.SelectedResults) == 0 {
		s.writeJSONError(w, http.StatusBadRequest, "No results selected")
		return
	}

	switch req.Type {
	case "rrl":
		s.writeJSON(w, http.StatusOK, map[string]any{
			"type":          "rrl",
			"content":       synthesis.GenerateRRL(req.SelectedResults, req.Query),
			"sources_count": len(req.SelectedResults),
		})

	case "citations":
		s.writeJSON(w, http.StatusOK, map[string]any{
			"type":          "citations",
			"content":       synthesis.CitationsDocument(req.SelectedResults),
			"sources_count": len(req.SelectedResults),
		})

	default:
		result := s.synth.Synthesize(req.SelectedResults, req.Query)
		s.writeJSON(w, http.StatusOK, map[string]any{
			"type":           "summary",
			"summary":        result.Summary,
			"key_points":     result.KeyPoints,
			"consensus":      result.Consensus,
			"contradictions": result.Contradictions,
			"sources_count":  result.SourcesCount,
		})
	}
}

type exportRequest struct {
	Results []paper.Paper `json:"results"`
	Query   string        `json:"query"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "No data received")
		return
	}
	if len(req.Results) == 0 {
		s.writeJSONError(w, http.StatusBadRequest, "No results to export")
		return
	}
	if req.Query == "" {
		req.Query = "Unnamed Query"
	}

	switch r.PathValue("type") {
	case "bibtex":
		s.writeJSON(w, http.StatusOK, map[string]any{
			"content":  export.BibTeX(req.Results),
			"filename": export.Filename(req.Query, "references.bib"),
		})

	case "csv":
		content, err := export.CSV(req.Results)
		if err != nil {
			s.log.Error("csv export failed", zap.Error(err))
			s.writeJSONError(w, http.StatusInternalServerError, "Export failed")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{
			"content":  content,
			"filename": export.Filename(req.Query, "results.csv"),
		})

	default:
		s.writeJSONError(w, http.StatusBadRequest, "Invalid export type")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, http.StatusNotFound, "Page not found")
}

func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("rendering template", zap.String("template", name), zap.Error(err))
	}
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	s.renderPage(w, status, "error.html", map[string]any{
		"Error": message,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
