package lifeevent

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/jwoglom/djtree/pkg/database"
	"github.com/jwoglom/djtree/pkg/models"
	"github.com/jwoglom/djtree/pkg/tracing"
	"github.com/jwoglom/djtree/pkg/utils"
)

const tableName = "life_events"

var lifeEventStruct = database.NewStruct(new(models.LifeEvent))

// LifeEventRepository defines the interface for single-person event operations
type LifeEventRepository interface {
	Find(ctx context.Context, treeID, personID uuid.UUID, kind models.EventKind) (*models.LifeEvent, error)
	FindOnDate(ctx context.Context, treeID, personID uuid.UUID, kind models.EventKind, date time.Time) (*models.LifeEvent, error)
	Create(ctx context.Context, treeID uuid.UUID, req models.CreateLifeEventRequest) (*models.LifeEvent, error)
}

// Repository implements LifeEventRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new life event repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Find looks up an event by person and kind. Returns (nil, nil) when no row
// matches.
func (r *Repository) Find(ctx context.Context, treeID, personID uuid.UUID, kind models.EventKind) (*models.LifeEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "LifeEventRepository.Find")
	defer span.End()

	sb := lifeEventStruct.SelectFrom(tableName)
	sb.Where(
		sb.Equal("tree_id", treeID),
		sb.Equal("person_id", personID),
		sb.Equal("kind", kind),
	)
	sb.OrderBy("created_at")
	sb.Limit(1)

	query, args := sb.Build()
	var event models.LifeEvent
	err := r.db.GetContext(ctx, &event, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id": personID,
			"kind":      kind,
		}).Error("failed to find life event")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find life event")
	}

	return &event, nil
}

// FindOnDate looks up an event by person, kind and exact date, for kinds
// that can repeat. Returns (nil, nil) when no row matches.
func (r *Repository) FindOnDate(ctx context.Context, treeID, personID uuid.UUID, kind models.EventKind, date time.Time) (*models.LifeEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "LifeEventRepository.FindOnDate")
	defer span.End()

	sb := lifeEventStruct.SelectFrom(tableName)
	sb.Where(
		sb.Equal("tree_id", treeID),
		sb.Equal("person_id", personID),
		sb.Equal("kind", kind),
		sb.Equal("date", date),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var event models.LifeEvent
	err := r.db.GetContext(ctx, &event, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id": personID,
			"kind":      kind,
		}).Error("failed to find life event by date")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find life event by date")
	}

	return &event, nil
}

// Create creates a new life event
func (r *Repository) Create(ctx context.Context, treeID uuid.UUID, req models.CreateLifeEventRequest) (*models.LifeEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "LifeEventRepository.Create")
	defer span.End()

	req, err := utils.Validate(req)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	event := &models.LifeEvent{
		ID:          uuid.New(),
		TreeID:      treeID,
		PersonID:    req.PersonID,
		Kind:        req.Kind,
		Date:        req.Date,
		Location:    req.Location,
		Cause:       req.Cause,
		FromCountry: req.FromCountry,
		ToCountry:   req.ToCountry,
		Country:     req.Country,
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName).
		Cols("id", "tree_id", "person_id", "kind", "date", "location",
			"cause", "from_country", "to_country", "country", "created_at").
		Values(event.ID, event.TreeID, event.PersonID, event.Kind, event.Date, event.Location,
			event.Cause, event.FromCountry, event.ToCountry, event.Country, sqlbuilder.Raw("NOW()"))
	ib.Returning("created_at")

	query, args := ib.Build()
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&event.CreatedAt)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_id":  event.ID,
			"person_id": event.PersonID,
			"kind":      event.Kind,
		}).Error("failed to create life event")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create life event")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"event_id":  event.ID,
		"person_id": event.PersonID,
		"kind":      event.Kind,
	}).Debugf("Created %s", tableName)
	return event, nil
}
