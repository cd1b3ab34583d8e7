package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-inference-service/internal/adapter/predictapi"
	"github.com/couchcryptid/storm-inference-service/internal/config"
	"github.com/couchcryptid/storm-inference-service/internal/ui"
)

func main() {
	cfg, err := config.LoadUI()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)

	client := predictapi.NewClient(cfg.APIURL, cfg.APITimeout, logger)
	srv := ui.NewServer(cfg.Addr, client, logger)
	logger.Info("prediction API configured", "url", cfg.APIURL, "timeout", cfg.APITimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ui server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("ui server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
