package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-inference-service/internal/config"
	"github.com/couchcryptid/storm-inference-service/internal/domain"
	"github.com/couchcryptid/storm-inference-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces prediction events to a Kafka topic.
// It implements http.EventPublisher.
type Publisher struct {
	writer *kafkago.Writer
}

// NewPublisher creates an asynchronous Kafka producer for the configured
// prediction topic. Delivery failures are logged and counted; they never
// block or fail a scoring request.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaPredictionTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(msgs []kafkago.Message, err error) {
			if err == nil {
				return
			}
			metrics.EventPublishErrors.Add(float64(len(msgs)))
			logger.Error("prediction event delivery failed", "error", err, "count", len(msgs))
		},
	}
	return &Publisher{writer: w}
}

// Publish serializes the event and hands it to the writer.
func (p *Publisher) Publish(ctx context.Context, event domain.PredictionEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

// Close flushes pending events and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a PredictionEvent into a Kafka message keyed by event ID.
func serializeToMessage(event domain.PredictionEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "model", Value: []byte(event.Model)},
			{Key: "prediction", Value: []byte(strconv.Itoa(event.Prediction))},
			{Key: "predicted_at", Value: []byte(event.PredictedAt.Format(time.RFC3339))},
		},
	}, nil
}
