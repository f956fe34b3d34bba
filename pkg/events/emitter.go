// Package events adapts domain models into the wire events published to
// Kafka. The importer depends on the Emitter interface so event emission
// stays optional.
package events

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jwoglom/djtree/pkg/appcontext"
	"github.com/jwoglom/djtree/pkg/kafka"
	"github.com/jwoglom/djtree/pkg/models"
)

// Emitter publishes lifecycle events for downstream consumers. Emission is
// best-effort: callers log failures and continue.
type Emitter interface {
	EmitPersonCreated(ctx context.Context, treeID uuid.UUID, person *models.Person) error
	EmitPersonUpdated(ctx context.Context, treeID uuid.UUID, person *models.Person) error
	EmitImportCompleted(ctx context.Context, treeID uuid.UUID, summary ImportSummary) error
}

// ImportSummary carries the counters published with import.completed
type ImportSummary struct {
	IndividualsCreated   int
	IndividualsUpdated   int
	EventsCreated        int
	RelationshipsCreated int
	ErrorCount           int
}

// KafkaEmitter implements Emitter over the Kafka producer
type KafkaEmitter struct {
	producer *kafka.Producer
}

// NewKafkaEmitter creates a Kafka-backed emitter
func NewKafkaEmitter(producer *kafka.Producer) *KafkaEmitter {
	return &KafkaEmitter{producer: producer}
}

func (e *KafkaEmitter) EmitPersonCreated(ctx context.Context, treeID uuid.UUID, person *models.Person) error {
	return e.producer.PublishPersonEvent(ctx, personEvent(kafka.EventTypePersonCreated, treeID, person))
}

func (e *KafkaEmitter) EmitPersonUpdated(ctx context.Context, treeID uuid.UUID, person *models.Person) error {
	return e.producer.PublishPersonEvent(ctx, personEvent(kafka.EventTypePersonUpdated, treeID, person))
}

func (e *KafkaEmitter) EmitImportCompleted(ctx context.Context, treeID uuid.UUID, summary ImportSummary) error {
	return e.producer.PublishImportEvent(ctx, &kafka.ImportEvent{
		EventType:            kafka.EventTypeImportCompleted,
		TreeID:               treeID.String(),
		RunID:                appcontext.GetRunID(ctx),
		Source:               appcontext.GetSource(ctx),
		IndividualsCreated:   summary.IndividualsCreated,
		IndividualsUpdated:   summary.IndividualsUpdated,
		EventsCreated:        summary.EventsCreated,
		RelationshipsCreated: summary.RelationshipsCreated,
		ErrorCount:           summary.ErrorCount,
	})
}

func personEvent(eventType string, treeID uuid.UUID, person *models.Person) *kafka.PersonEvent {
	event := &kafka.PersonEvent{
		EventType: eventType,
		TreeID:    treeID.String(),
		PersonID:  person.ID.String(),
		Gender:    string(person.Gender),
		IsLiving:  person.IsLiving,
	}
	if n := person.PrimaryName(); n != nil {
		event.Name = strings.TrimSpace(n.First + " " + n.Last)
	}
	return event
}
