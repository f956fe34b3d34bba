package name

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
	"github.com/jwoglom/djtree/pkg/utils"
)

const tableName = "names"

var nameStruct = database.NewStruct(new(models.Name))

// NameRepository defines the interface for name value operations
type NameRepository interface {
	Find(ctx context.Context, treeID uuid.UUID, first, middle, last string) (*models.Name, error)
	Create(ctx context.Context, treeID uuid.UUID, req models.CreateNameRequest) (*models.Name, error)
}

// Repository implements NameRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new name repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Find looks up a name by its exact component triple. Returns (nil, nil)
// when no row matches.
func (r *Repository) Find(ctx context.Context, treeID uuid.UUID, first, middle, last string) (*models.Name, error) {
	ctx, span := tracing.StartSpan(ctx, "NameRepository.Find")
	defer span.End()

	sb := nameStruct.SelectFrom(tableName)
	sb.Where(
		sb.Equal("tree_id", treeID),
		sb.Equal("first_name", first),
		sb.Equal("middle_name", middle),
		sb.Equal("last_name", last),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var name models.Name
	err := r.db.GetContext(ctx, &name, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tree_id": treeID,
		}).Error("failed to find name")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find name")
	}

	return &name, nil
}

// Create creates a new name value
func (r *Repository) Create(ctx context.Context, treeID uuid.UUID, req models.CreateNameRequest) (*models.Name, error) {
	ctx, span := tracing.StartSpan(ctx, "NameRepository.Create")
	defer span.End()

	req, err := utils.Validate(req)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	name := &models.Name{
		ID:     uuid.New(),
		TreeID: treeID,
		First:  req.First,
		Middle: req.Middle,
		Last:   req.Last,
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName).
		Cols("id", "tree_id", "first_name", "middle_name", "last_name", "created_at").
		Values(name.ID, name.TreeID, name.First, name.Middle, name.Last, sqlbuilder.Raw("NOW()"))
	ib.Returning("created_at")

	query, args := ib.Build()
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&name.CreatedAt)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"name_id": name.ID,
			"tree_id": treeID,
		}).Error("failed to create name")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create name")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"name_id": name.ID,
		"tree_id": treeID,
	}).Debugf("Created %s", tableName)
	return name, nil
}
