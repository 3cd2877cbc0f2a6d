// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Glide Sync Authors

// Package app wires the daemon together: storage, adapter, services,
// control API, and the supervision of every long-running part.
package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/glideapp/glide-sync/internal/adapter"
	"github.com/glideapp/glide-sync/internal/config"
	handlerhttp "github.com/glideapp/glide-sync/internal/handler/http"
	"github.com/glideapp/glide-sync/internal/logger"
	"github.com/glideapp/glide-sync/internal/service/netmon"
	"github.com/glideapp/glide-sync/internal/service/status"
	"github.com/glideapp/glide-sync/internal/service/sync"
	"github.com/glideapp/glide-sync/internal/service/uploads"
	"github.com/glideapp/glide-sync/internal/store"
)

// shutdownTimeout bounds the graceful drain of the control API listener.
const shutdownTimeout = 5 * time.Second

type App struct {
	cfg    *config.StructuredConfig
	logger *logger.Logger

	storages     *store.Storages
	monitor      *netmon.Monitor
	queue        *uploads.Service
	watcher      *uploads.Watcher
	orchestrator *sync.Orchestrator
	projection   *status.Projection
	server       *http.Server
}

func New(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (*App, error) {
	storages, err := store.NewStorages(ctx, cfg.Storage.DB, log)
	if err != nil {
		return nil, err
	}

	api := adapter.NewHTTPAPIClient(adapter.HTTPClientConfig{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.RequestTimeout,
	})

	// Every daemon log line carries the account it syncs for, read from the
	// token's sub claim. Correlates device logs with server-side ones.
	if bearer, ok := api.(interface{ Subject() string }); ok {
		if sub := bearer.Subject(); sub != "" {
			log = &logger.Logger{Logger: log.With().Str("subject", sub).Logger()}
		}
	}

	monitor := netmon.NewMonitor(api, cfg.Netmon, log)
	queue := uploads.NewService(storages.Uploads, storages.Entities, api, cfg.Uploads, log)
	orchestrator := sync.NewOrchestrator(storages.Entities, queue, api, monitor, cfg.Sync, log)
	projection := status.NewProjection(storages.Entities, queue, orchestrator, monitor, log)

	orchestrator.SetOnChange(projection.Notify)
	queue.SetOnChange(func() {
		projection.Notify()
		orchestrator.Trigger()
	})

	handler := handlerhttp.NewHandler(storages.Entities, queue, orchestrator, projection, log)
	server := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: handler.Init(),
	}

	return &App{
		cfg:          cfg,
		logger:       log,
		storages:     storages,
		monitor:      monitor,
		queue:        queue,
		watcher:      uploads.NewWatcher(cfg.Storage.Spool.Dir, queue, log),
		orchestrator: orchestrator,
		projection:   projection,
		server:       server,
	}, nil
}

// Run starts every component and blocks until the first fatal failure or
// a termination signal, then shuts the daemon down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.monitor.Run(ctx) })
	g.Go(func() error { return a.orchestrator.Run(ctx) })
	g.Go(func() error { return a.projection.Run(ctx) })
	g.Go(func() error { return a.queue.PurgeLoop(ctx) })
	g.Go(func() error { return a.watcher.Run(ctx) })

	g.Go(func() error {
		a.logger.Info().Str("address", a.cfg.HTTP.Address).Msg("control api listening")
		return a.server.ListenAndServe()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if closeErr := a.storages.Close(); closeErr != nil {
		a.logger.Error().Err(closeErr).Msg("error closing local database")
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
