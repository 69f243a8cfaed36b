// Package server exposes the web UI and JSON API: search against the
// federated sources, synthesis of selected results, and bibliography
// export. Templates and static assets are embedded in the binary.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"scholarhub/internal/config"
	"scholarhub/internal/paper"
	"scholarhub/internal/store"
	"scholarhub/internal/synthesis"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Searcher runs a federated search. Satisfied by sources.Aggregator.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]paper.Paper, error)
}

// Cache persists search results and history. Satisfied by store.Store.
// A nil Cache disables caching and history.
type Cache interface {
	CachedResults(ctx context.Context, query string, maxResults int) ([]paper.Paper, error)
	CacheResults(ctx context.Context, query string, maxResults int, papers []paper.Paper) error
	RecordSearch(ctx context.Context, query string, resultCount int) error
	RecentSearches(ctx context.Context, limit int) ([]store.HistoryEntry, error)
}

// Server is the HTTP front end.
type Server struct {
	log       *zap.Logger
	cfg       atomic.Pointer[config.Config]
	searcher  Searcher
	cache     Cache
	synth     *synthesis.Synthesizer
	templates *template.Template
	httpSrv   *http.Server
}

// New builds a Server from its dependencies. cache may be nil.
func New(cfg *config.Config, log *zap.Logger, searcher Searcher, cache Cache) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		log:       log,
		searcher:  searcher,
		cache:     cache,
		synth:     synthesis.New(),
		templates: tmpl,
	}
	s.cfg.Store(cfg)

	s.httpSrv = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}
	return s, nil
}

// ApplyConfig swaps in a new configuration. Listener settings need a
// restart; search and CORS settings take effect immediately.
func (s *Server) ApplyConfig(cfg *config.Config) {
	s.cfg.Store(cfg)
	s.log.Info("configuration applied", zap.Int("port", cfg.Server.Port))
}

func (s *Server) config() *config.Config {
	return s.cfg.Load()
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("POST /synthesize", s.handleSynthesize)
	mux.HandleFunc("POST /export/{type}", s.handleExport)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /static/", http.FileServerFS(staticFS))
	mux.HandleFunc("/", s.handleNotFound)

	return s.withCORS(s.withRequestLog(mux))
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", s.httpSrv.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config().ShutdownTimeout())
	defer cancel()

	s.log.Info("shutting down")
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return <-errCh
}

// Handler returns the routed handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) searchTimeout() time.Duration {
	return s.config().SearchTimeout()
}
