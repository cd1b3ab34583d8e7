package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	httpadapter "github.com/couchcryptid/storm-inference-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-inference-service/internal/adapter/kafka"
	"github.com/couchcryptid/storm-inference-service/internal/config"
	"github.com/couchcryptid/storm-inference-service/internal/domain"
	"github.com/couchcryptid/storm-inference-service/internal/model"
	"github.com/couchcryptid/storm-inference-service/internal/observability"
	"github.com/couchcryptid/storm-inference-service/internal/predictor"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// The model is loaded exactly once; there is no degraded mode.
	m, err := model.Load(cfg.ModelPath, domain.ColumnNames())
	if err != nil {
		logger.Error("failed to load model", "path", cfg.ModelPath, "error", err)
		os.Exit(1)
	}
	p, err := predictor.New(m)
	if err != nil {
		logger.Error("failed to create predictor", "error", err)
		os.Exit(1)
	}
	metrics.ModelInfo.WithLabelValues(m.Name(), m.Kind(), strconv.FormatBool(m.SupportsProbability())).Set(1)
	logger.Info("model loaded",
		"path", cfg.ModelPath,
		"name", m.Name(),
		"kind", m.Kind(),
		"probability", m.SupportsProbability(),
	)

	// Prediction events are feature-flagged via KAFKA_BROKERS.
	var publisher *kafkaadapter.Publisher
	var events httpadapter.EventPublisher
	if cfg.PublishEnabled() {
		publisher = kafkaadapter.NewPublisher(cfg, logger, metrics)
		events = publisher
		logger.Info("prediction events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaPredictionTopic)
	} else {
		logger.Info("prediction events disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, events, logger, metrics, clockwork.NewRealClock())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
