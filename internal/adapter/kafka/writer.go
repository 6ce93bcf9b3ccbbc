package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/collision-severity-service/internal/config"
	"github.com/couchcryptid/collision-severity-service/internal/domain"
)

// Writer produces assessments to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes scored messages to the sink topic in a
// single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, scored []domain.ScoredMessage) error {
	if len(scored) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(scored))
	for i := range scored {
		msg, err := serializeToMessage(scored[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d assessments: %w", len(msgs), err)
	}
	w.logger.Debug("assessments written", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an assessment into a Kafka message. The hash
// balancer keeps every assessment for a source key on one partition.
func serializeToMessage(m domain.ScoredMessage) (kafkago.Message, error) {
	data, err := json.Marshal(m.Assessment)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment: %w", err)
	}
	return kafkago.Message{
		Key:   m.MessageKey(),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "severity", Value: []byte(m.Assessment.Severity)},
			{Key: "assessed_at", Value: []byte(m.Assessment.AssessedAt.Format(time.RFC3339))},
		},
	}, nil
}
