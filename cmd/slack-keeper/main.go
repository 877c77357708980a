package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jkopstals/slack-keeper/internal/domain/repository"
	"github.com/jkopstals/slack-keeper/internal/infrastructure/config"
	"github.com/jkopstals/slack-keeper/internal/infrastructure/observability"
	"github.com/jkopstals/slack-keeper/internal/infrastructure/persistence/memory"
	"github.com/jkopstals/slack-keeper/internal/infrastructure/persistence/mysql"
	"github.com/jkopstals/slack-keeper/internal/infrastructure/persistence/sqlite"
	infraslack "github.com/jkopstals/slack-keeper/internal/infrastructure/slack"
	"github.com/jkopstals/slack-keeper/internal/usecase/archive"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	// Setup logger
	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)

	logger.Info("configuration loaded",
		"storage_type", cfg.Storage.Type,
		"recheck_buffer_hours", *cfg.Sync.RecheckBufferHours,
		"full_sync_days", cfg.Sync.FullSyncDays,
		"version", version,
	)

	// Initialize telemetry
	telemetry, err := observability.NewTelemetry(observability.ServiceName, version)
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		return 1
	}

	// Optional Prometheus scrape endpoint for long runs
	if cfg.Metrics.Addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Warn("metrics listener stopped", "error", err)
			}
		}()
		logger.Info("metrics listener started", "addr", cfg.Metrics.Addr)
	}

	// Initialize repositories based on storage type
	var messageRepo repository.MessageRepository
	var userRepo repository.UserRepository
	var runRepo repository.SyncRunRepository
	var closeStore func()

	switch cfg.Storage.Type {
	case "mysql":
		repos, db, err := mysql.NewRepositories(&cfg.Storage.MySQL)
		if err != nil {
			logger.Error("failed to initialize MySQL database", "error", err)
			return 1
		}
		messageRepo = repos.Messages
		userRepo = repos.Users
		runRepo = repos.Runs
		closeStore = func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close MySQL database", "error", err)
			}
		}

		logger.Info("MySQL storage initialized",
			"host", cfg.Storage.MySQL.Host,
			"database", cfg.Storage.MySQL.Database,
		)

	case "sqlite":
		db, err := sqlite.NewDB(cfg.Storage.SQLite.Path)
		if err != nil {
			logger.Error("failed to initialize SQLite database", "error", err, "path", cfg.Storage.SQLite.Path)
			return 1
		}
		if err := db.Migrate(context.Background()); err != nil {
			logger.Error("failed to run database migrations", "error", err)
			db.Close()
			return 1
		}

		repos := sqlite.NewRepositories(db)
		messageRepo = repos.Messages
		userRepo = repos.Users
		runRepo = repos.Runs
		closeStore = func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close SQLite database", "error", err)
			}
		}

		logger.Info("SQLite storage initialized", "path", cfg.Storage.SQLite.Path)

	case "memory", "":
		messageRepo = memory.NewMessageRepository()
		userRepo = memory.NewUserRepository()
		runRepo = memory.NewSyncRunRepository()
		closeStore = func() {}

		logger.Info("in-memory storage initialized")

	default:
		logger.Error("unknown storage type", "type", cfg.Storage.Type)
		return 1
	}
	defer closeStore()

	// Initialize the Slack platform adapter
	slackClient := infraslack.NewClient(cfg.Slack.BotToken)

	// Create a slog adapter for use cases
	useCaseLogger := &slogAdapter{logger: logger}
	metrics := telemetry.Metrics

	// Wire the sync pipeline
	ledger := archive.NewRunLedger(runRepo, useCaseLogger)
	planner := archive.NewPlanner(ledger, messageRepo, cfg.RecheckBuffer(), cfg.FullSyncHorizon(), useCaseLogger)
	fetcher := archive.NewFetcher(slackClient, cfg.Sync.PageSize, cfg.Sync.PageInterval, useCaseLogger, metrics)
	syncer := archive.NewChannelSyncer(slackClient, fetcher, messageRepo, useCaseLogger, metrics)
	orchestrator := archive.NewOrchestrator(
		slackClient, ledger, planner, syncer, userRepo,
		cfg.Sync.Channels, useCaseLogger, metrics,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncRun, err := orchestrator.Run(ctx)
	if err != nil {
		logger.Error("sync run aborted", "error", err)
		return 1
	}

	logger.Info("slack-keeper finished",
		"run_id", syncRun.ID,
		"messages", syncRun.Totals.Messages,
		"replies", syncRun.Totals.Replies,
		"channels", syncRun.Totals.Channels,
	)
	return 0
}

// setupLogger creates and configures the logger.
func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// slogAdapter adapts slog.Logger to the archive.Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Debug(msg string, keysAndValues ...any) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a *slogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Info(msg, keysAndValues...)
}

func (a *slogAdapter) Warn(msg string, keysAndValues ...any) {
	a.logger.Warn(msg, keysAndValues...)
}

func (a *slogAdapter) Error(msg string, keysAndValues ...any) {
	a.logger.Error(msg, keysAndValues...)
}
