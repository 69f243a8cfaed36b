package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scholarhub/internal/config"
	"scholarhub/internal/reliability"
	"scholarhub/internal/server"
	"scholarhub/internal/sources"
	"scholarhub/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web interface and API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides config and PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if logger, err = buildLogger(cfg.Logging, verbose); err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.Store.DatabasePath, store.Options{
		CacheTTL: cfg.CacheTTL(),
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	scorer := reliability.NewScorer(cfg.Reliability)
	aggregator := sources.NewDefaultAggregator(logger, scorer, sources.FederationConfig{
		Timeout:               cfg.SearchTimeout(),
		SemanticScholarAPIKey: cfg.Search.SemanticScholarAPIKey,
		CrossrefMailto:        cfg.Search.CrossrefMailto,
		DisabledSources:       cfg.Search.DisabledSources,
	})

	srv, err := server.New(cfg, logger, aggregator, db)
	if err != nil {
		return err
	}

	// Hot-reload the config file; listener settings still need a restart.
	watcher, err := config.NewWatcher(configPath, logger, srv.ApplyConfig)
	if err != nil {
		logger.Warn("config watcher unavailable", zap.Error(err))
	} else {
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("config watcher failed to start", zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	return srv.Run(ctx)
}
