// Copyright (c) 2025-2026 Langdesk Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/langdesk/langdesk/internal/auth"
	"github.com/langdesk/langdesk/internal/backend"
	"github.com/langdesk/langdesk/internal/cache"
	"github.com/langdesk/langdesk/internal/config"
	"github.com/langdesk/langdesk/internal/i18n"
	"github.com/langdesk/langdesk/internal/imaging"
	"github.com/langdesk/langdesk/internal/logging"
	"github.com/langdesk/langdesk/internal/scheduler"
	"github.com/langdesk/langdesk/internal/session"
	"github.com/langdesk/langdesk/internal/store"
	"github.com/langdesk/langdesk/internal/translation"
	"github.com/langdesk/langdesk/internal/version"
	"github.com/langdesk/langdesk/internal/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Langdesk - multilingual site content console\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANGDESK_BACKEND_URL       Content backend base URL (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANGDESK_BACKEND_TOKEN     Bearer token for the content backend\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANGDESK_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANGDESK_ADMIN_PASSWORD    Operator password (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANGDESK_DB_PATH           SQLite database path (default: ./data/langdesk.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANGDESK_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANGDESK_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LANGDESK_REDIS_URL         Redis URL for a shared snapshot cache (optional)\n")
	}

	flag.Parse()

	// Handle -h/-help flag
	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	// Handle -v/-version flag
	if *showVersion {
		_, _ = fmt.Printf("langdesk %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Create version info from build-time injected values
	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Initialize i18n system for console UI localization
	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}
	slog.Info("i18n system initialized", "languages", i18n.SupportedLanguages)

	// Ensure data and uploads directories exist
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the audit log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewAuditHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("audit log integration enabled", "min_level", "warn")

	// Verify the operator password is usable before accepting logins
	verifier, err := auth.NewVerifier(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("preparing operator credentials: %w", err)
	}

	// Initialize session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Snapshot cache: Redis when configured, in-process otherwise
	snapshotCache, err := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	if cfg.UseRedisCache() {
		slog.Info("snapshot cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("snapshot cache initialized", "backend", "memory")
	}

	// Content backend client and the shared translation store
	client := backend.New(cfg.BackendURL, backend.StaticToken(cfg.BackendToken), logger)
	translations := translation.NewStore(client, snapshotCache, logger)
	slog.Info("backend client initialized", "url", cfg.BackendURL)

	// Warm the translation snapshot; a cold start is fine if the backend
	// is briefly unavailable.
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 30*time.Second)
	if err := translations.LoadAll(warmCtx); err != nil {
		slog.Warn("translation snapshot not preloaded", "error", err)
	}
	cancelWarm()

	// Initialize and start scheduled maintenance
	sched := scheduler.New(scheduler.Config{
		Translations: translations,
		Client:       client,
		Queries:      store.New(db),
		Logger:       logger,
		RefreshSpec:  cfg.SnapshotRefreshSpec,
		SweepSpec:    cfg.OrphanSweepSpec,
	})
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()
	slog.Info("scheduler started",
		"snapshot_refresh", cfg.SnapshotRefreshSpec,
		"orphan_sweep", cfg.OrphanSweepSpec)

	// Console HTTP surface
	handler := web.NewHandler(web.Config{
		Cfg:          cfg,
		DB:           db,
		Sessions:     sessionManager,
		Client:       client,
		Translations: translations,
		Verifier:     verifier,
		Processor:    imaging.NewProcessor(cfg.UploadsDir),
		Logger:       logger,
		Build:        versionInfo,
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           handler.Router(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
