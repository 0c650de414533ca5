package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saaga0h/daylight-platform/internal/astronomy"
	"github.com/saaga0h/daylight-platform/internal/daylight"
	"github.com/saaga0h/daylight-platform/internal/display"
	"github.com/saaga0h/daylight-platform/pkg/config"
	"github.com/saaga0h/daylight-platform/pkg/health"
	"github.com/saaga0h/daylight-platform/pkg/mqtt"
	"github.com/saaga0h/daylight-platform/pkg/postgres"
	"github.com/saaga0h/daylight-platform/pkg/redis"
)

func main() {
	// Load configuration with hierarchy: defaults → settings file → env → flags
	cfg := config.NewConfig()
	if err := cfg.LoadFromFile(os.Getenv("DAYLIGHT_SETTINGS_FILE")); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	cfg.LoadFromEnv()
	cfg.LoadFromFlags()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("Starting daylight agent",
		"service_name", cfg.ServiceName,
		"mqtt_broker", cfg.MQTTAddress(),
		"redis_host", cfg.RedisAddress(),
		"astronomy_provider", cfg.AstronomyProvider,
		"display_sink", cfg.DisplaySink,
		"history", cfg.EnableHistory,
		"log_level", cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	mqttClient := mqtt.NewClient(cfg, logger)
	redisClient := redis.NewClient(cfg, logger)

	provider, err := astronomy.NewProvider(cfg, logger)
	if err != nil {
		logger.Error("Failed to create astronomy provider", "error", err)
		os.Exit(1)
	}

	sink, err := display.NewSink(cfg, mqttClient, logger)
	if err != nil {
		logger.Error("Failed to create display sink", "error", err)
		os.Exit(1)
	}

	var opts []daylight.Option
	var pgClient postgres.Client
	if cfg.EnableHistory {
		pg := postgres.NewClient(cfg, logger)
		connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
		err := pg.Connect(connectCtx)
		connectCancel()
		if err != nil {
			logger.Error("Failed to connect to Postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Disconnect()

		history := daylight.NewHistoryStore(pg, logger)
		if err := history.EnsureSchema(ctx); err != nil {
			logger.Error("Failed to prepare history schema", "error", err)
			os.Exit(1)
		}
		pgClient = pg
		opts = append(opts, daylight.WithHistory(history))
	}

	agent, err := daylight.NewAgent(mqttClient, redisClient, provider, sink, cfg, logger, opts...)
	if err != nil {
		logger.Error("Failed to create agent", "error", err)
		os.Exit(1)
	}

	healthChecker := health.NewChecker(mqttClient, redisClient, pgClient, logger)
	healthChecker.SetStatusProvider(agent)
	httpServer := startHealthServer(cfg.HealthPort, healthChecker, logger)

	agentErr := make(chan error, 1)
	go func() {
		if err := agent.Start(ctx); err != nil {
			logger.Error("Agent error", "error", err)
			agentErr <- err
		}
	}()

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received (SIGTERM/SIGINT)")
	case err := <-agentErr:
		logger.Error("Agent failed", "error", err)
	}

	logger.Info("Initiating graceful shutdown")
	cancel()

	if err := agent.Stop(); err != nil {
		logger.Error("Error stopping agent", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down health server", "error", err)
	}

	logger.Info("Daylight agent shutdown complete")
}

func startHealthServer(port int, checker *health.Checker, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	checker.Register(mux)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		logger.Info("Starting health check server", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Health server error", "error", err)
		}
	}()

	return server
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
