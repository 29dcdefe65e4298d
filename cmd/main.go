package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/nomina/internal/bot"
	"github.com/UnknownOlympus/nomina/internal/client/backoffice"
	"github.com/UnknownOlympus/nomina/internal/config"
	"github.com/UnknownOlympus/nomina/internal/metrics"
	"github.com/UnknownOlympus/nomina/internal/records"
	"github.com/UnknownOlympus/nomina/internal/repository"
	"github.com/UnknownOlympus/nomina/internal/server"
	"github.com/UnknownOlympus/nomina/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Initialize the database connection and the user preferences table.
	dtb, err := repository.NewDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	repo := repository.NewRepository(dtb, appMetrics)
	if err = repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare DB schema: %v", err)
	}

	// Sessions live in redis when an address is configured, in memory otherwise.
	store, err := newSessionStore(ctx, logger, cfg, appMetrics)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("Failed to close session store", "error", closeErr)
		}
	}()

	// Initialize the backend client shared by every record controller.
	client, err := backoffice.NewClient(backoffice.Config{
		BaseURL:       cfg.Backend.BaseURL,
		Timeout:       cfg.Backend.Timeout,
		IDParam:       cfg.Backend.IDParam,
		DatabaseParam: cfg.Backend.DatabaseParam,
	}, logger, appMetrics)
	if err != nil {
		log.Fatalf("Failed to create backend client: %v", err)
	}

	sessions := session.NewManager(
		store,
		repo,
		client,
		session.Schemas{
			Employee:    records.EmployeeSchema(cfg.Backend.EmployeesPath, cfg.Backend.EmployeeStatusPath),
			Salesperson: records.SalespersonSchema(cfg.Backend.SalespeoplePath),
		},
		cfg.DefaultDatabase,
		logger,
		appMetrics,
		session.WithIdleTTL(cfg.SessionTTL),
	)

	// Initialize the bot with logger, repository, sessions and telegram settings.
	nominaBot, err := bot.NewBot(logger, repo, sessions, appMetrics, bot.Settings{
		Token:     cfg.Token,
		Poller:    cfg.PollerTimeout,
		Databases: cfg.Databases,
		OpTimeout: cfg.Backend.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the bot in a goroutine to allow main to listen for signals.
	go nominaBot.Start()

	// Start the monitoring server
	health := server.NewHealthChecker(logger,
		server.Check{Name: "database", Pinger: dtb},
		server.Check{Name: "sessions", Pinger: sessions},
		server.Check{Name: "backend", Pinger: client},
	)
	go server.StartMonitoringServer(ctx, logger, server.NewMonitoringHandler(reg, health), cfg.MonitoringPort)

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	nominaBot.Stop()

	logger.InfoContext(ctx, "Application stopped gracefully.")
}

func newSessionStore(
	ctx context.Context,
	logger *slog.Logger,
	cfg *config.Config,
	appMetrics *metrics.Metrics,
) (session.Store, error) {
	if cfg.RedisAddr == "" {
		logger.InfoContext(ctx, "Keeping sessions in memory", "ttl", cfg.SessionTTL)
		return session.NewMemoryStore(cfg.SessionTTL, appMetrics), nil
	}

	const redisTimeout = 5 * time.Second
	redisClient, err := session.NewRedisClient(ctx, cfg.RedisAddr, redisTimeout)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Keeping sessions in redis", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
	return session.NewRedisStore(redisClient, cfg.SessionTTL, appMetrics), nil
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	dropTime := func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		return a
	}

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
