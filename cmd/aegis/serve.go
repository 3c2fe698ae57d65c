package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/PlayerIUnknown/aegis-gui/internal/auth"
	"github.com/PlayerIUnknown/aegis-gui/internal/config"
	httpapp "github.com/PlayerIUnknown/aegis-gui/internal/http"
	"github.com/PlayerIUnknown/aegis-gui/internal/http/handlers"
	"github.com/PlayerIUnknown/aegis-gui/internal/logging"
	"github.com/PlayerIUnknown/aegis-gui/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Run the dashboard HTTP server.",
	Args:        cobra.NoArgs,
	Annotations: structuredLogAnnotation(),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := auth.OpenSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	api, err := newAPIClient(cfg, logger)
	if err != nil {
		return err
	}

	h := &handlers.Handlers{
		Cfg:      cfg,
		API:      api,
		Sessions: store.Manager,
		Details:  handlers.NewDetailsCache(cfg.ScanDetailsTTL),
		Logger:   logging.Component(logger, "http"),
	}
	srv, err := httpapp.NewEchoServer(cfg, h, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsServer, metricsErrCh := metrics.StartServer(ctx, cfg.MetricsAddr, logging.Component(logger, "metrics"))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "config_api_url", cfg.ConfigAPIURL, "session_store", cfg.SessionStore)
		errCh <- srv.StartServer(httpServer)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		return nil
	case err := <-metricsErrCh:
		_ = httpServer.Close()
		return err
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
