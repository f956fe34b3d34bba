// Package kafka emits person and import lifecycle events for downstream
// consumers (graph projector, search indexer).
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jwoglom/djtree/pkg/tracing"
)

// SchemaVersion tags every emitted message so consumers can handle payload
// changes.
const SchemaVersion = "1.0"

// Event types carried in the event_type header and payload
const (
	EventTypePersonCreated   = "person.created"
	EventTypePersonUpdated   = "person.updated"
	EventTypeImportCompleted = "import.completed"
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

	requiredAcks := kafka.RequiredAcks(cfg.RequiredAcks)

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           requiredAcks,
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

// PersonEvent represents a lifecycle event about a person
type PersonEvent struct {
	EventType string    `json:"event_type"` // person.created, person.updated
	TreeID    string    `json:"tree_id"`
	PersonID  string    `json:"person_id"`
	Gender    string    `json:"gender"`
	IsLiving  bool      `json:"is_living"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	// Tracing
	TraceID string `json:"trace_id,omitempty"`
	SpanID  string `json:"span_id,omitempty"`
}

// ImportEvent represents a completed import run
type ImportEvent struct {
	EventType            string    `json:"event_type"` // import.completed
	TreeID               string    `json:"tree_id"`
	RunID                string    `json:"run_id,omitempty"`
	Source               string    `json:"source,omitempty"`
	IndividualsCreated   int       `json:"individuals_created"`
	IndividualsUpdated   int       `json:"individuals_updated"`
	EventsCreated        int       `json:"events_created"`
	RelationshipsCreated int       `json:"relationships_created"`
	ErrorCount           int       `json:"error_count"`
	Timestamp            time.Time `json:"timestamp"`

	// Tracing
	TraceID string `json:"trace_id,omitempty"`
	SpanID  string `json:"span_id,omitempty"`
}

// PublishPersonEvent publishes a person event to Kafka
func (p *Producer) PublishPersonEvent(ctx context.Context, event *PersonEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishPersonEvent")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination", p.topic),
		attribute.String("messaging.operation", "publish"),
		attribute.String("tree_id", event.TreeID),
		attribute.String("person_id", event.PersonID),
	)

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.TraceID = tracing.GetTraceID(ctx)
	event.SpanID = tracing.GetSpanID(ctx)

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal person event")
		return err
	}

	msg := kafka.Message{
		Topic:   p.topic,
		Key:     []byte(event.PersonID),
		Value:   data,
		Headers: p.headers(ctx, event.EventType, event.TreeID),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish person event")
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish person event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type": event.EventType,
		"person_id":  event.PersonID,
	}).Debug("Published person event")

	return nil
}

// PublishImportEvent publishes an import completion event to Kafka
func (p *Producer) PublishImportEvent(ctx context.Context, event *ImportEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishImportEvent")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination", p.topic),
		attribute.String("messaging.operation", "publish"),
		attribute.String("tree_id", event.TreeID),
	)

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.TraceID = tracing.GetTraceID(ctx)
	event.SpanID = tracing.GetSpanID(ctx)

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal import event")
		return err
	}

	msg := kafka.Message{
		Topic:   p.topic,
		Key:     []byte(event.TreeID),
		Value:   data,
		Headers: p.headers(ctx, event.EventType, event.TreeID),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish import event")
		p.logger.WithContext(ctx).WithError(err).Error("Failed to publish import event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"event_type": event.EventType,
		"tree_id":    event.TreeID,
	}).Debug("Published import event")

	return nil
}

// headers builds the common message headers, including W3C trace context
// for distributed tracing.
func (p *Producer) headers(ctx context.Context, eventType, treeID string) []kafka.Header {
	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(eventType)},
		{Key: "tree_id", Value: []byte(treeID)},
		{Key: "schema_version", Value: []byte(SchemaVersion)},
	}
	if traceparent := tracing.GetTraceParent(ctx); traceparent != "" {
		headers = append(headers, kafka.Header{Key: "traceparent", Value: []byte(traceparent)})
	}
	if tracestate := tracing.GetTraceState(ctx); tracestate != "" {
		headers = append(headers, kafka.Header{Key: "tracestate", Value: []byte(tracestate)})
	}
	return headers
}
