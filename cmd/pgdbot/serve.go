package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mkuleshov/pgdbot/internal/adapters/engine"
	httpadapter "github.com/mkuleshov/pgdbot/internal/adapters/http"
	"github.com/mkuleshov/pgdbot/internal/adapters/telegram"
	"github.com/mkuleshov/pgdbot/internal/config"
	"github.com/mkuleshov/pgdbot/internal/logging"
	"github.com/mkuleshov/pgdbot/pkg/adapters/memory"
	redisstore "github.com/mkuleshov/pgdbot/pkg/adapters/redis"
	"github.com/mkuleshov/pgdbot/pkg/dialog"
	"github.com/mkuleshov/pgdbot/pkg/ports"
	"github.com/mkuleshov/pgdbot/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bot",
	Long:  `Starts the dialog bot: update delivery (long polling or webhook), the calculation engine client and the operational HTTP endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cfg.Telegram.Token == "" {
			return fmt.Errorf("telegram token is not configured (PGDBOT_TELEGRAM_TOKEN)")
		}

		logger := logging.New(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format)

		printBanner()

		var store ports.SessionStore
		switch cfg.Store.Backend {
		case config.StoreRedis:
			store = redisstore.New(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB,
				redisstore.WithTTL(cfg.Store.SessionTTL.Std()))
			logger.Info("using redis session store", "addr", cfg.Store.Redis.Addr, "ttl", cfg.Store.SessionTTL.Std())
		default:
			store = memory.NewStore(memory.WithTTL(cfg.Store.SessionTTL.Std()))
			logger.Info("using in-memory session store", "ttl", cfg.Store.SessionTTL.Std())
		}
		sessions := session.NewManager(store)

		var calc ports.Calculator
		if cfg.Engine.BaseURL != "" {
			calc = engine.NewHTTP(cfg.Engine.BaseURL, cfg.Engine.Timeout.Std(), engine.WithLogger(logger))
			logger.Info("using HTTP calculation engine", "url", cfg.Engine.BaseURL)
		} else {
			calc = engine.NewMock()
			logger.Warn("no engine URL configured, using the built-in mock engine")
		}

		client := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.PollTimeout.Std())
		transport := telegram.NewTransport(client)

		registry := prometheus.NewRegistry()
		metrics := dialog.NewMetrics(registry)

		controller := dialog.New(sessions, calc, transport,
			dialog.WithLogger(logger),
			dialog.WithMetrics(metrics))

		poller := telegram.NewPoller(client, controller, transport, cfg.Telegram.PollTimeout.Std(),
			telegram.WithPollerLogger(logger))

		server := httpadapter.NewServer(registry, cfg.Telegram.WebhookSecret, poller,
			httpadapter.WithLogger(logger))
		srv := &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: server.Handler(),
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("http server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		pollErrors := make(chan error, 1)
		if cfg.Telegram.WebhookSecret == "" {
			go func() {
				pollErrors <- poller.Run(ctx)
			}()
		} else {
			logger.Info("webhook delivery enabled, long polling disabled")
		}

		select {
		case err := <-serverErrors:
			return fmt.Errorf("http server: %w", err)
		case err := <-pollErrors:
			if err != nil {
				return fmt.Errorf("poller: %w", err)
			}
		case <-ctx.Done():
			logger.Info("shutdown signal received")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown failed", "err", err)
		}
		logger.Info("stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
