package parentchild

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

const tableName = "parent_child_links"

var linkStruct = database.NewStruct(new(models.ParentChildLink))

// ParentChildRepository defines the interface for parent-child link operations
type ParentChildRepository interface {
	Has(ctx context.Context, treeID, parentID, childID uuid.UUID) (bool, error)
	Create(ctx context.Context, treeID, parentID, childID uuid.UUID) (*models.ParentChildLink, error)
}

// Repository implements ParentChildRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new parent-child link repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Has reports whether a link exists for the ordered (parent, child) pair
func (r *Repository) Has(ctx context.Context, treeID, parentID, childID uuid.UUID) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "ParentChildRepository.Has")
	defer span.End()

	link, err := r.find(ctx, treeID, parentID, childID)
	if err != nil {
		return false, err
	}
	return link != nil, nil
}

func (r *Repository) find(ctx context.Context, treeID, parentID, childID uuid.UUID) (*models.ParentChildLink, error) {
	sb := linkStruct.SelectFrom(tableName)
	sb.Where(
		sb.Equal("tree_id", treeID),
		sb.Equal("parent_id", parentID),
		sb.Equal("child_id", childID),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var link models.ParentChildLink
	err := r.db.GetContext(ctx, &link, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"parent_id": parentID,
			"child_id":  childID,
		}).Error("failed to find parent child link")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find parent child link")
	}

	return &link, nil
}

// Create links a parent to a child. Self-links are rejected; a duplicate
// link for the same ordered pair is a no-op and returns the existing row.
func (r *Repository) Create(ctx context.Context, treeID, parentID, childID uuid.UUID) (*models.ParentChildLink, error) {
	ctx, span := tracing.StartSpan(ctx, "ParentChildRepository.Create")
	defer span.End()

	if parentID == childID {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "person %s cannot be their own parent", parentID)
	}

	link := &models.ParentChildLink{
		ID:       uuid.New(),
		TreeID:   treeID,
		ParentID: parentID,
		ChildID:  childID,
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName).
		Cols("id", "tree_id", "parent_id", "child_id", "created_at").
		Values(link.ID, link.TreeID, link.ParentID, link.ChildID, sqlbuilder.Raw("NOW()"))
	ib.OnConflictDoNothing()
	ib.Returning("created_at")

	query, args := ib.Build()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&link.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// conflict; the link already exists
		return r.find(ctx, treeID, parentID, childID)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"parent_id": parentID,
			"child_id":  childID,
		}).Error("failed to create parent child link")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create parent child link")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"parent_id": parentID,
		"child_id":  childID,
	}).Debugf("Created %s", tableName)
	return link, nil
}
