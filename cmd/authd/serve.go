// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playforge Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/playforge/authd/internal/auth"
	authpg "github.com/playforge/authd/internal/auth/postgres"
	"github.com/playforge/authd/internal/config"
	"github.com/playforge/authd/internal/httpapi"
	"github.com/playforge/authd/internal/logging"
	"github.com/playforge/authd/internal/notify"
	"github.com/playforge/authd/internal/observability"
	"github.com/playforge/authd/internal/store"
	"github.com/playforge/authd/internal/token"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication service",
		Long: `Start the HTTP authentication service: /auth/register, /auth/login,
and the bearer-token authentication pipeline for downstream services.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("http.addr", config.DefaultHTTPAddr, "HTTP listen address")
	cmd.Flags().String("metrics.addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log.format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().String("jwt.issuer", config.DefaultJWTIssuer, "token issuer claim")
	cmd.Flags().String("jwt.ttl", config.DefaultJWTTTL.String(), "token time-to-live")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logging.SetDefault("authd", version, cfg.LogFormat)
	logger := slog.Default()

	logger.Info("starting authd",
		"http_addr", cfg.HTTPAddr,
		"log_format", cfg.LogFormat,
	)

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	players := authpg.NewPlayerRepository(pool)
	hasher := auth.NewArgon2idHasher()

	codec, err := token.NewCodec(token.Config{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL,
	})
	if err != nil {
		return err
	}

	var notifier auth.ProfileNotifier = notify.NoopPublisher{}
	if cfg.RedisURL != "" {
		publisher, pubErr := notify.NewRedisPublisher(cfg.RedisURL)
		if pubErr != nil {
			return pubErr
		}
		defer publisher.Close() //nolint:errcheck // shutdown path
		notifier = publisher
		logger.Info("profile-created notifications enabled", "channel", notify.ProfileCreationChannel)
	} else {
		logger.Warn("no redis URL configured; profile-created notifications disabled")
	}

	service, err := auth.NewService(players, hasher, codec, notifier, logger)
	if err != nil {
		return err
	}

	handler := httpapi.NewHandler(service, logger)
	router := httpapi.NewRouter(handler, codec, players, logger)
	httpServer := httpapi.NewServer(cfg.HTTPAddr, router)

	httpErrCh, err := httpServer.Start()
	if err != nil {
		return err
	}

	var obsServer *observability.Server
	var obsErrCh <-chan error
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			return pool.Ping(ctx) == nil
		})
		obsErrCh, err = obsServer.Start()
		if err != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = httpServer.Stop(stopCtx) //nolint:errcheck // startup failed, best-effort cleanup
			return err
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	case err = <-httpErrCh:
		if err != nil {
			logger.Error("http server failed", "error", err)
		}
	case err = <-obsErrCh:
		if err != nil {
			logger.Error("observability server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down", "reason", "context canceled")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if obsServer != nil {
		if stopErr := obsServer.Stop(stopCtx); stopErr != nil {
			logger.Error("observability server stop failed", "error", stopErr)
		}
	}
	if stopErr := httpServer.Stop(stopCtx); stopErr != nil {
		return stopErr
	}

	return err
}
