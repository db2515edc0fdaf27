package main

import (
	"github.com/rs/zerolog"

	"github.com/atip/dashboard/internal/atipapi"
	"github.com/atip/dashboard/internal/config"
	"github.com/atip/dashboard/internal/observability"
)

// env is what every command needs: loaded config, a stderr logger and the
// API client.
type env struct {
	cfg    *config.Config
	logger zerolog.Logger
	client *atipapi.Client
}

// mustLoadEnv loads the configuration and builds the client, exiting on failure.
func mustLoadEnv() env {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if baseURL != "" {
		cfg.Upstream.BaseURL = baseURL
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:  logLevel,
		Format: "console",
		Output: "stderr",
	}).With().Str("component", "atipctl").Logger()

	client, err := atipapi.New(atipapi.Config{
		BaseURL: cfg.Upstream.BaseURL,
		HTTP: atipapi.HTTPClientConfig{
			Timeout:    cfg.Upstream.Timeout,
			RateLimit:  cfg.Upstream.RateLimit,
			BurstSize:  cfg.Upstream.BurstSize,
			MaxRetries: cfg.Upstream.MaxRetries,
			UserAgent:  cfg.Upstream.UserAgent,
		},
	}, logger, nil)
	if err != nil {
		exitWithError(ExitConfigError, "creating client: %v", err)
	}
	return env{cfg: cfg, logger: logger, client: client}
}
