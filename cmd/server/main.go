// Package main provides the entry point for the ATIP dashboard HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atip/dashboard/internal/apidebug"
	"github.com/atip/dashboard/internal/atipapi"
	"github.com/atip/dashboard/internal/config"
	"github.com/atip/dashboard/internal/home"
	"github.com/atip/dashboard/internal/leaderboard"
	"github.com/atip/dashboard/internal/observability"
	"github.com/atip/dashboard/internal/profile"
	httpserver "github.com/atip/dashboard/internal/server/http"
	"github.com/atip/dashboard/internal/suggest"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("atip-dashboard server starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
	}

	client, err := atipapi.New(atipapi.Config{
		BaseURL: cfg.Upstream.BaseURL,
		HTTP: atipapi.HTTPClientConfig{
			Timeout:    cfg.Upstream.Timeout,
			RateLimit:  cfg.Upstream.RateLimit,
			BurstSize:  cfg.Upstream.BurstSize,
			MaxRetries: cfg.Upstream.MaxRetries,
			UserAgent:  cfg.Upstream.UserAgent,
		},
	}, logger, metrics)
	if err != nil {
		return fmt.Errorf("create ATIP API client: %w", err)
	}
	logger.Info().Str("base_url", client.BaseURL()).Msg("ATIP API client configured")

	sessions, err := suggest.NewStore(cfg.Suggest.SessionCapacity, metrics)
	if err != nil {
		return fmt.Errorf("create search session store: %w", err)
	}

	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}

	httpSrv := httpserver.NewServer(httpCfg, httpserver.Deps{
		Home:         home.NewService(client, cfg.Home.PreviewLimit, logger, metrics),
		Leaderboards: leaderboard.NewService(client, cfg.Leaderboard.Limit, logger, metrics),
		Profiles:     profile.NewService(client, logger, metrics),
		Suggester:    suggest.NewEngine(client, cfg.Suggest.Limit, logger, metrics),
		Sessions:     sessions,
		Debug:        apidebug.NewRunner(client, cfg.Debug.AuthorID, cfg.Debug.PaperID, logger, metrics),
		Upstream:     client,
		Metrics:      metrics,
	}, logger)

	// Set up Prometheus metrics handler on a separate port if configured.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress(),
			Handler:      metricsMux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
	}

	// Channel to collect server errors.
	errCh := make(chan error, 2)

	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if metricsServer != nil {
		go func() {
			logger.Info().
				Str("address", metricsServer.Addr).
				Msg("metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	readyLog := logger.Info().Str("http_address", httpCfg.Address)
	if metricsServer != nil {
		readyLog = readyLog.Str("metrics_address", metricsServer.Addr)
	}
	readyLog.Msg("atip-dashboard is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	logger.Info().Msg("shutting down atip-dashboard")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
	}

	logger.Info().Msg("atip-dashboard stopped")
	return nil
}
