package coupleevent

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

const tableName = "couple_events"

var coupleEventStruct = database.NewStruct(new(models.CoupleEvent))

// CoupleEventRepository defines the interface for two-person event operations
type CoupleEventRepository interface {
	Find(ctx context.Context, treeID uuid.UUID, kind models.CoupleEventKind, personID, otherPersonID uuid.UUID, date time.Time) (*models.CoupleEvent, error)
	CreatePair(ctx context.Context, treeID uuid.UUID, req models.CreateCoupleEventRequest) (*models.CoupleEventPair, error)
	CloseOpenMarriages(ctx context.Context, treeID, personID, otherPersonID uuid.UUID) (int, error)
}

// Repository implements CoupleEventRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new couple event repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Find looks up a couple event row in a single direction; callers probe
// both orderings. Returns (nil, nil) when no row matches.
func (r *Repository) Find(ctx context.Context, treeID uuid.UUID, kind models.CoupleEventKind, personID, otherPersonID uuid.UUID, date time.Time) (*models.CoupleEvent, error) {
	ctx, span := tracing.StartSpan(ctx, "CoupleEventRepository.Find")
	defer span.End()

	sb := coupleEventStruct.SelectFrom(tableName)
	sb.Where(
		sb.Equal("tree_id", treeID),
		sb.Equal("kind", kind),
		sb.Equal("person_id", personID),
		sb.Equal("other_person_id", otherPersonID),
		sb.Equal("date", date),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var event models.CoupleEvent
	err := r.db.GetContext(ctx, &event, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id":       personID,
			"other_person_id": otherPersonID,
			"kind":            kind,
		}).Error("failed to find couple event")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find couple event")
	}

	return &event, nil
}

// CreatePair writes the forward and mirror rows of a symmetric couple event
// in one transaction, so a half-written pair never becomes visible.
func (r *Repository) CreatePair(ctx context.Context, treeID uuid.UUID, req models.CreateCoupleEventRequest) (*models.CoupleEventPair, error) {
	ctx, span := tracing.StartSpan(ctx, "CoupleEventRepository.CreatePair")
	defer span.End()

	req, err := utils.Validate(req)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	forward := &models.CoupleEvent{
		ID:            uuid.New(),
		TreeID:        treeID,
		Kind:          req.Kind,
		PersonID:      req.PersonID,
		OtherPersonID: req.OtherPersonID,
		Date:          req.Date,
		Location:      req.Location,
		Comment:       req.Comment,
	}
	mirror := &models.CoupleEvent{
		ID:            uuid.New(),
		TreeID:        treeID,
		Kind:          req.Kind,
		PersonID:      req.OtherPersonID,
		OtherPersonID: req.PersonID,
		Date:          req.Date,
		Location:      req.Location,
		Comment:       req.Comment,
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	for _, event := range []*models.CoupleEvent{forward, mirror} {
		ib := database.NewInsertBuilder()
		ib.InsertInto(tableName).
			Cols("id", "tree_id", "kind", "person_id", "other_person_id",
				"date", "location", "comment", "ended", "created_at", "updated_at").
			Values(event.ID, event.TreeID, event.Kind, event.PersonID, event.OtherPersonID,
				event.Date, event.Location, event.Comment, false,
				sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()"))
		ib.Returning("created_at", "updated_at")

		query, args := ib.Build()
		err = tx.QueryRowContext(ctx, query, args...).Scan(&event.CreatedAt, &event.UpdatedAt)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"person_id":       req.PersonID,
				"other_person_id": req.OtherPersonID,
				"kind":            req.Kind,
			}).Error("failed to create couple event pair")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create couple event pair")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"person_id":       req.PersonID,
		"other_person_id": req.OtherPersonID,
		"kind":            req.Kind,
	}).Debugf("Created %s pair", tableName)
	return &models.CoupleEventPair{Forward: forward, Mirror: mirror}, nil
}

// CloseOpenMarriages ends every open marriage between the two people. Both
// directions are covered by one statement; the updated row count is
// returned.
func (r *Repository) CloseOpenMarriages(ctx context.Context, treeID, personID, otherPersonID uuid.UUID) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "CoupleEventRepository.CloseOpenMarriages")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(tableName).
		Set(
			ub.Assign("ended", true),
			ub.Assign("updated_at", sqlbuilder.Raw("NOW()")),
		).
		Where(
			ub.Equal("tree_id", treeID),
			ub.Equal("kind", models.CoupleMarriage),
			ub.Equal("ended", false),
			ub.Or(
				ub.And(ub.Equal("person_id", personID), ub.Equal("other_person_id", otherPersonID)),
				ub.And(ub.Equal("person_id", otherPersonID), ub.Equal("other_person_id", personID)),
			),
		)

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id":       personID,
			"other_person_id": otherPersonID,
		}).Error("failed to close open marriages")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to close open marriages")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id":       personID,
			"other_person_id": otherPersonID,
		}).Error("failed to close open marriages")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to close open marriages")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"person_id":       personID,
		"other_person_id": otherPersonID,
		"rows_affected":   rows,
	}).Debugf("Updated %s", tableName)
	return int(rows), nil
}
