package attachment

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/jwoglom/djtree/pkg/database"
	"github.com/jwoglom/djtree/pkg/models"
	"github.com/jwoglom/djtree/pkg/tracing"
	"github.com/jwoglom/djtree/pkg/utils"
)

const tableName = "attachments"

var attachmentStruct = database.NewStruct(new(models.Attachment))

// AttachmentRepository defines the interface for attachment operations
type AttachmentRepository interface {
	List(ctx context.Context, treeID, personID uuid.UUID) ([]*models.Attachment, error)
	Find(ctx context.Context, treeID, personID uuid.UUID, fileName string) (*models.Attachment, error)
	Upsert(ctx context.Context, treeID uuid.UUID, req models.CreateAttachmentRequest) (*models.Attachment, error)
	Delete(ctx context.Context, treeID, attachmentID uuid.UUID) error
}

// Repository implements AttachmentRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new attachment repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// List returns every attachment for a person in insertion order
func (r *Repository) List(ctx context.Context, treeID, personID uuid.UUID) ([]*models.Attachment, error) {
	ctx, span := tracing.StartSpan(ctx, "AttachmentRepository.List")
	defer span.End()

	sb := attachmentStruct.SelectFrom(tableName)
	sb.Where(
		sb.Equal("tree_id", treeID),
		sb.Equal("person_id", personID),
	)
	sb.OrderBy("created_at", "id")

	query, args := sb.Build()
	var attachments []models.Attachment
	if err := r.db.SelectContext(ctx, &attachments, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id": personID,
		}).Error("failed to list attachments")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list attachments")
	}

	out := make([]*models.Attachment, len(attachments))
	for i := range attachments {
		out[i] = &attachments[i]
	}
	return out, nil
}

// Find looks up an attachment by person and file name. Returns (nil, nil)
// when no row matches.
func (r *Repository) Find(ctx context.Context, treeID, personID uuid.UUID, fileName string) (*models.Attachment, error) {
	ctx, span := tracing.StartSpan(ctx, "AttachmentRepository.Find")
	defer span.End()

	sb := attachmentStruct.SelectFrom(tableName)
	sb.Where(
		sb.Equal("tree_id", treeID),
		sb.Equal("person_id", personID),
		sb.Equal("file_name", fileName),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var attachment models.Attachment
	err := r.db.GetContext(ctx, &attachment, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id": personID,
			"file_name": fileName,
		}).Error("failed to find attachment")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find attachment")
	}

	return &attachment, nil
}

// Upsert creates the attachment row, or refreshes file_type when the
// (person, file name) pair already exists. The stored row keeps its
// original id and created_at.
func (r *Repository) Upsert(ctx context.Context, treeID uuid.UUID, req models.CreateAttachmentRequest) (*models.Attachment, error) {
	ctx, span := tracing.StartSpan(ctx, "AttachmentRepository.Upsert")
	defer span.End()

	req, err := utils.Validate(req)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	attachment := &models.Attachment{
		ID:        uuid.New(),
		TreeID:    treeID,
		PersonID:  req.PersonID,
		FileName:  req.FileName,
		FileType:  req.FileType,
		CreatedAt: time.Now().UTC(),
	}

	ib := attachmentStruct.InsertInto(tableName, attachment)
	ub := ib.OnConflict("tree_id", "person_id", "file_name")
	ub.Set(
		ub.Assign("file_type", database.Excluded("file_type")),
	)
	ib.Returning("id", "created_at")

	query, args := ib.Build()
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&attachment.ID, &attachment.CreatedAt)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id": req.PersonID,
			"file_name": req.FileName,
		}).Error("failed to upsert attachment")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert attachment")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"attachment_id": attachment.ID,
		"person_id":     req.PersonID,
		"file_name":     req.FileName,
	}).Debugf("Upserted %s", tableName)
	return attachment, nil
}

// Delete deletes an attachment by ID
func (r *Repository) Delete(ctx context.Context, treeID, attachmentID uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "AttachmentRepository.Delete")
	defer span.End()

	db := database.NewDeleteBuilder()
	db.DeleteFrom(tableName).
		Where(db.Equal("tree_id", treeID), db.Equal("id", attachmentID))

	query, args := db.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"attachment_id": attachmentID,
		}).Error("failed to delete attachment")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete attachment")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"attachment_id": attachmentID,
		}).Error("failed to delete attachment")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete attachment")
	}
	if rows == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "attachment %s does not exist", attachmentID)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"attachment_id": attachmentID,
	}).Debugf("Deleted %s", tableName)
	return nil
}
