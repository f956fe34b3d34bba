package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jwoglom/djtree/pkg/models"
	"github.com/jwoglom/djtree/pkg/tracing"
)

// FamilyService projects persons and their relationships into the graph
type FamilyService struct {
	client *Client
	logger ectologger.Logger
}

// NewFamilyService creates a new family service
func NewFamilyService(client *Client, logger ectologger.Logger) *FamilyService {
	return &FamilyService{
		client: client,
		logger: logger,
	}
}

// ProjectPerson creates or updates a person node in the graph
func (s *FamilyService) ProjectPerson(ctx context.Context, person *models.Person) error {
	ctx, span := tracing.StartSpan(ctx, "graph.FamilyService.ProjectPerson")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"person_id": person.ID,
		"tree_id":   person.TreeID,
	})

	props := map[string]any{
		"id":         person.ID.String(),
		"tree_id":    person.TreeID.String(),
		"gender":     string(person.Gender),
		"is_living":  person.IsLiving,
		"created_at": person.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		"updated_at": person.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if name := person.PrimaryName(); name != nil {
		props["first_name"] = name.First
		props["last_name"] = name.Last
		props["display_name"] = strings.TrimSpace(name.First + " " + name.Last)
	}
	if person.Birth != nil {
		props["birth_date"] = person.Birth.Date.UTC().Format("2006-01-02")
		if person.Birth.Location != "" {
			props["birth_place"] = person.Birth.Location
		}
	}

	cypher := `
		MERGE (p:Person {id: $id, tree_id: $tree_id})
		SET p = $props
		RETURN p
	`

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":      person.ID.String(),
			"tree_id": person.TreeID.String(),
			"props":   props,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		log.WithError(err).Error("Failed to project person into graph")
		return fmt.Errorf("failed to project person into graph: %w", err)
	}

	log.Debug("Projected person into graph")
	return nil
}

// ProjectParentChild creates or updates a PARENT_OF edge between two persons
func (s *FamilyService) ProjectParentChild(ctx context.Context, link *models.ParentChildLink) error {
	ctx, span := tracing.StartSpan(ctx, "graph.FamilyService.ProjectParentChild")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"parent_id": link.ParentID,
		"child_id":  link.ChildID,
		"tree_id":   link.TreeID,
	})

	cypher := `
		MATCH (parent:Person {id: $parent_id, tree_id: $tree_id})
		MATCH (child:Person {id: $child_id, tree_id: $tree_id})
		MERGE (parent)-[r:PARENT_OF {id: $id, tree_id: $tree_id}]->(child)
		RETURN r
	`

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":        link.ID.String(),
			"tree_id":   link.TreeID.String(),
			"parent_id": link.ParentID.String(),
			"child_id":  link.ChildID.String(),
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		log.WithError(err).Error("Failed to project parent-child link into graph")
		return fmt.Errorf("failed to project parent-child link into graph: %w", err)
	}

	log.Debug("Projected parent-child link into graph")
	return nil
}

// ProjectCouple creates or updates a couple edge between two persons. Couple
// events are stored as mirrored row pairs; callers project one direction only.
func (s *FamilyService) ProjectCouple(ctx context.Context, event *models.CoupleEvent) error {
	ctx, span := tracing.StartSpan(ctx, "graph.FamilyService.ProjectCouple")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"couple_event_id": event.ID,
		"kind":            event.Kind,
		"tree_id":         event.TreeID,
	})

	props := map[string]any{
		"id":      event.ID.String(),
		"tree_id": event.TreeID.String(),
		"date":    event.Date.UTC().Format("2006-01-02"),
		"ended":   event.Ended,
	}
	if event.Location != "" {
		props["location"] = event.Location
	}

	cypher := fmt.Sprintf(`
		MATCH (a:Person {id: $a_id, tree_id: $tree_id})
		MATCH (b:Person {id: $b_id, tree_id: $tree_id})
		MERGE (a)-[r:%s {id: $id, tree_id: $tree_id}]->(b)
		SET r += $props
		RETURN r
	`, coupleEdgeType(event.Kind))

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":      event.ID.String(),
			"tree_id": event.TreeID.String(),
			"a_id":    event.PersonID.String(),
			"b_id":    event.OtherPersonID.String(),
			"props":   props,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		log.WithError(err).Error("Failed to project couple event into graph")
		return fmt.Errorf("failed to project couple event into graph: %w", err)
	}

	log.Debug("Projected couple event into graph")
	return nil
}

// Ancestors returns the ancestor nodes of a person, up to depth generations
func (s *FamilyService) Ancestors(ctx context.Context, treeID uuid.UUID, personID uuid.UUID, depth int) ([]map[string]any, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.FamilyService.Ancestors")
	defer span.End()

	if depth <= 0 {
		depth = 10
	}

	// Variable-length bounds cannot be parameterized in Cypher
	cypher := fmt.Sprintf(`
		MATCH (p:Person {id: $id, tree_id: $tree_id})<-[:PARENT_OF*1..%d]-(ancestor:Person)
		RETURN DISTINCT ancestor
	`, depth)

	result, err := s.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":      personID.String(),
			"tree_id": treeID.String(),
		})
		if err != nil {
			return nil, err
		}

		var ancestors []map[string]any
		for result.Next(ctx) {
			record := result.Record()
			node, ok := record.Get("ancestor")
			if !ok {
				continue
			}
			n := node.(neo4j.Node)
			ancestors = append(ancestors, n.Props)
		}
		return ancestors, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get ancestors from graph: %w", err)
	}

	return result.([]map[string]any), nil
}

// coupleEdgeType maps a couple event kind to its edge label
func coupleEdgeType(kind models.CoupleEventKind) string {
	switch kind {
	case models.CoupleDivorce:
		return "DIVORCED"
	default:
		return "MARRIED_TO"
	}
}
