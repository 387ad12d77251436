// Package kafka publishes resolution lifecycle events.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/mirrorlake/unify/pkg/tracing"
)

// Producer handles Kafka event emission
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// RunEvent describes a resolution run lifecycle change.
type RunEvent struct {
	EventType      string    `json:"event_type"` // resolution.started, resolution.completed
	RunID          string    `json:"run_id"`
	EntityKind     string    `json:"entity_kind"`
	TotalRecords   int       `json:"total_records"`
	MatchedRecords int       `json:"matched_records"`
	GroupCount     int       `json:"group_count"`
	Timestamp      time.Time `json:"timestamp"`
}

// GroupEvent describes one emitted match group.
type GroupEvent struct {
	EventType       string    `json:"event_type"` // group.created
	RunID           string    `json:"run_id"`
	EntityKind      string    `json:"entity_kind"`
	UnifiedGroupID  string    `json:"unified_group_id"`
	PrimaryID       string    `json:"primary_id"`
	DuplicateIDs    []string  `json:"duplicate_ids"`
	ConfidenceScore float64   `json:"confidence_score"`
	MatchType       string    `json:"match_type"`
	Timestamp       time.Time `json:"timestamp"`
}

// PublishRunEvent publishes a run lifecycle event, keyed by run id.
func (p *Producer) PublishRunEvent(ctx context.Context, event *RunEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishRunEvent")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.RunID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "entity_kind", Value: []byte(event.EntityKind)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish run event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type": event.EventType,
		"run_id":     event.RunID,
	}).Debug("Published run event")

	return nil
}

// PublishGroupEvents publishes the events for a run's groups in a batch,
// keyed by unified group id.
func (p *Producer) PublishGroupEvents(ctx context.Context, events []*GroupEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishGroupEvents")
	defer span.End()

	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, len(events))
	for i, event := range events {
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now().UTC()
		}

		data, err := json.Marshal(event)
		if err != nil {
			return err
		}

		messages[i] = kafka.Message{
			Topic: p.topic,
			Key:   []byte(event.UnifiedGroupID),
			Value: data,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(event.EventType)},
				{Key: "entity_kind", Value: []byte(event.EntityKind)},
			},
		}
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"batch_size": len(events),
		}).Error("Failed to publish group events batch")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_size": len(events),
	}).Debug("Published group events batch")

	return nil
}
