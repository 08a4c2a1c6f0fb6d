package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/urban-policy-engine/internal/config"
	"github.com/couchcryptid/urban-policy-engine/internal/engine"
)

// Writer produces sector assessments to a Kafka topic.
// It implements poller.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured assessment topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaAssessmentTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishAssessments serializes and publishes one cycle's assessments in a
// single WriteMessages call. Messages are keyed by sector so every sector's
// history stays on one partition.
func (w *Writer) PublishAssessments(ctx context.Context, assessments []engine.Assessment) error {
	if len(assessments) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(assessments))
	for i := range assessments {
		msg, err := serializeToMessage(assessments[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write assessments: %w", err)
	}
	w.logger.Debug("assessments published", "count", len(msgs), "cycle_id", assessments[0].CycleID)
	return nil
}

// Close flushes pending messages and closes the underlying writer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Assessment into a Kafka message.
func serializeToMessage(a engine.Assessment) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(a.Status.SectorID)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "severity", Value: []byte(a.Status.Severity)},
			{Key: "has_policy", Value: []byte(strconv.FormatBool(a.Policy.HasPolicy))},
			{Key: "assessed_at", Value: []byte(a.AssessedAt.Format(time.RFC3339))},
		},
	}, nil
}
