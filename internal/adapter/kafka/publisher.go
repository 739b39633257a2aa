package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/squirrel-census/internal/config"
	"github.com/couchcryptid/squirrel-census/internal/domain"
	"github.com/couchcryptid/squirrel-census/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces one message per zone aggregate to a Kafka topic.
// It implements pipeline.DatasetSink.
type Publisher struct {
	writer  messageWriter
	topic   string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a Kafka producer for the configured aggregates topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, topic: cfg.KafkaTopic, logger: logger, metrics: metrics}
}

// Name identifies the sink in logs.
func (p *Publisher) Name() string { return "kafka" }

// WriteDataset publishes every zone aggregate in a single WriteMessages call. Messages
// are keyed by sitename so that a zone always lands on the same partition.
func (p *Publisher) WriteDataset(ctx context.Context, ds *domain.Dataset, run domain.RunSummary) error {
	aggs := ds.Aggregates()
	if len(aggs) == 0 {
		return nil
	}
	processedAt := domain.Now()
	msgs := make([]kafkago.Message, len(aggs))
	for i := range aggs {
		msg, err := serializeToMessage(aggs[i], run.RunID, processedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish aggregates: %w", err)
	}
	if p.metrics != nil {
		p.metrics.AggregatesPublished.Add(float64(len(msgs)))
	}
	p.logger.Info("aggregates published", "topic", p.topic, "messages", len(msgs), "run_id", run.RunID)
	return nil
}

// Close flushes pending messages and closes the producer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// AggregateMessage is the JSON value of a published message.
type AggregateMessage struct {
	RunID string `json:"run_id"`
	domain.ZoneAggregate
	ProcessedAt time.Time `json:"processed_at"`
}

// serializeToMessage marshals a zone aggregate into a Kafka message.
func serializeToMessage(agg domain.ZoneAggregate, runID string, processedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(AggregateMessage{RunID: runID, ZoneAggregate: agg, ProcessedAt: processedAt})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize zone aggregate: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(agg.Sitename),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(runID)},
			{Key: "processed_at", Value: []byte(processedAt.Format(time.RFC3339))},
		},
	}, nil
}
