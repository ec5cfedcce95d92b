// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/olegiv/taskdesk/internal/apiclient"
	"github.com/olegiv/taskdesk/internal/cache"
	"github.com/olegiv/taskdesk/internal/handler"
	"github.com/olegiv/taskdesk/internal/imaging"
	"github.com/olegiv/taskdesk/internal/middleware"
	"github.com/olegiv/taskdesk/internal/nav"
	"github.com/olegiv/taskdesk/internal/render"
	"github.com/olegiv/taskdesk/internal/reports"
	"github.com/olegiv/taskdesk/internal/scheduler"
	"github.com/olegiv/taskdesk/internal/session"
	"github.com/olegiv/taskdesk/internal/store"
	"github.com/olegiv/taskdesk/internal/telemetry"
	"github.com/olegiv/taskdesk/internal/version"
	"github.com/olegiv/taskdesk/web"
)

// Per-user request budget for signed-in pages.
const (
	userRPS   = 10
	userBurst = 30
)

func newServeCmd(info version.Info) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web console",
		Args:  cobra.NoArgs,
		RunE: runE(func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), info)
		}),
	}
}

func serve(ctx context.Context, info version.Info) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	shutdownTracing, err := telemetry.NewProvider(ctx, cfg.OTelEndpoint, info.Version)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			slog.Error("error flushing traces", "error", err)
		}
	}()

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	queries := store.New(db)

	sm := session.New(db, cfg.IsDevelopment())
	sessions := session.NewStore(sm)

	api, err := apiclient.New(apiclient.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
	})
	if err != nil {
		return fmt.Errorf("creating API client: %w", err)
	}

	cacheRes, err := cache.NewCacheWithInfo(cache.ConfigFrom(cfg))
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = cacheRes.Cache.Close() }()
	slog.Info("lookup cache initialized", "backend", cacheRes.BackendType, "fallback", cacheRes.IsFallback)
	lookups := cache.NewLookups(api, cacheRes.Cache, cfg.CacheTTLDuration(), logger)

	navTable := nav.Default()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sm,
		Nav:            navTable,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	lp := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer lp.Close()

	dashboards := reports.NewRegistry(api, logger, reports.DefaultRegistrySize)
	uploads := handler.NewUploads(imaging.NewProcessor(cfg.ImageMaxDimension), cfg.UploadMaxBytes())

	exportDir := ""
	if cfg.ExportDir != "" {
		if err := os.MkdirAll(cfg.ExportDir, 0o750); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
		exportDir = cfg.ExportDir
	}

	h := handlers{
		auth:      handler.NewAuthHandler(api, renderer, sessions, lp, dashboards),
		dashboard: handler.NewDashboardHandler(renderer, dashboards, queries, exportDir),
		users:     handler.NewUsersHandler(api, renderer, lookups),
		projects:  handler.NewProjectsHandler(api, renderer, lookups, uploads),
		tasks:     handler.NewTasksHandler(api, renderer, lookups),
		assigned:  handler.NewAssignedHandler(api, renderer, uploads),
		health:    handler.NewHealthHandler(db, exportDir, info),
	}

	if cfg.ExportScheduled() {
		sched := scheduler.New(logger)
		job := scheduler.NewReportJob(api, queries, exportDir, logger)
		if err := job.Register(sched, cfg.ExportSchedule); err != nil {
			return fmt.Errorf("scheduling report exports: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		h.dashboard.SetScheduler(sched)
	}

	r, err := newRouter(routerDeps{
		cfg:      cfg,
		sm:       sm,
		sessions: sessions,
		lp:       lp,
		limiter:  middleware.NewUserRateLimiter(userRPS, userBurst),
		nav:      navTable,
	}, h)
	if err != nil {
		return fmt.Errorf("building routes: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for image uploads and PDF downloads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
