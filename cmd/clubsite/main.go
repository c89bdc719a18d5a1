// SPDX-License-Identifier: MIT

// Command clubsite serves the running club's content API: routes, events,
// registrations and the admin operations on them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/umrunclub/clubsite/internal/api"
	"github.com/umrunclub/clubsite/internal/config"
	"github.com/umrunclub/clubsite/internal/events"
	xlog "github.com/umrunclub/clubsite/internal/log"
	"github.com/umrunclub/clubsite/internal/persistence/sqlite"
	"github.com/umrunclub/clubsite/internal/registration"
	"github.com/umrunclub/clubsite/internal/routes"
	"github.com/umrunclub/clubsite/internal/store"
)

var (
	version   = "v1.2.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("clubsite %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	if err := run(); err != nil {
		base := xlog.Base()
		base.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	xlog.Configure(xlog.Config{Level: cfg.LogLevel, Service: "clubsite"})
	logger := xlog.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Registrations always live in SQLite; the content store may share the
	// same database when the sqlite backend is selected.
	db, err := sqlite.Open(cfg.DBPath, sqlite.DefaultConfig())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	contentStore, err := store.Open(string(cfg.Backend), store.Options{
		DataDir:  cfg.DataDir,
		RedisURL: cfg.RedisURL,
		DB:       db,
	})
	if err != nil {
		return err
	}
	defer func() { _ = contentStore.Close() }()

	routeRepo := routes.NewRepository(contentStore)
	eventRepo := events.NewRepository(contentStore)
	regRepo, err := registration.NewRepository(db)
	if err != nil {
		return err
	}

	if err := eventRepo.Seed(ctx); err != nil {
		return fmt.Errorf("seed events: %w", err)
	}

	server := api.New(cfg, routeRepo, eventRepo, regRepo)
	httpServer := &http.Server{
		Addr:         cfg.Listen,
		Handler:      server.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("listen", cfg.Listen).
			Str("backend", string(cfg.Backend)).
			Str("version", version).
			Msg("clubsite started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
