package personname

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/jwoglom/djtree/pkg/database"
	"github.com/jwoglom/djtree/pkg/models"
	"github.com/jwoglom/djtree/pkg/tracing"
)

const tableName = "person_names"

var personNameStruct = database.NewStruct(new(models.PersonName))

// PersonNameRepository defines the interface for person-name link operations
type PersonNameRepository interface {
	Find(ctx context.Context, treeID, personID, nameID uuid.UUID) (*models.PersonName, error)
	Link(ctx context.Context, treeID, personID, nameID uuid.UUID, nameType models.NameType) (*models.PersonName, error)
}

// Repository implements PersonNameRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new person-name link repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Find looks up the link between a person and a name. Returns (nil, nil)
// when no row matches.
func (r *Repository) Find(ctx context.Context, treeID, personID, nameID uuid.UUID) (*models.PersonName, error) {
	ctx, span := tracing.StartSpan(ctx, "PersonNameRepository.Find")
	defer span.End()

	sb := personNameStruct.SelectFrom(tableName)
	sb.Where(
		sb.Equal("tree_id", treeID),
		sb.Equal("person_id", personID),
		sb.Equal("name_id", nameID),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var link models.PersonName
	err := r.db.GetContext(ctx, &link, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id": personID,
			"name_id":   nameID,
		}).Error("failed to find person name link")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find person name link")
	}

	return &link, nil
}

// Link attaches a name to a person. When the link already exists it is
// returned unchanged; the type of an existing link is never rewritten.
func (r *Repository) Link(ctx context.Context, treeID, personID, nameID uuid.UUID, nameType models.NameType) (*models.PersonName, error) {
	ctx, span := tracing.StartSpan(ctx, "PersonNameRepository.Link")
	defer span.End()

	link := &models.PersonName{
		ID:       uuid.New(),
		TreeID:   treeID,
		PersonID: personID,
		NameID:   nameID,
		Type:     nameType,
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName).
		Cols("id", "tree_id", "person_id", "name_id", "name_type", "created_at").
		Values(link.ID, link.TreeID, link.PersonID, link.NameID, link.Type, sqlbuilder.Raw("NOW()"))
	ib.OnConflictDoNothing()
	ib.Returning("created_at")

	query, args := ib.Build()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&link.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// conflict; the insert was skipped, return the existing link
		return r.Find(ctx, treeID, personID, nameID)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id": personID,
			"name_id":   nameID,
		}).Error("failed to link person name")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to link person name")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"person_id": personID,
		"name_id":   nameID,
		"name_type": nameType,
	}).Debugf("Created %s", tableName)
	return link, nil
}
