package person

import (
	"context"
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

const tableName = "persons"

var personStruct = database.NewStruct(new(models.Person))
var lifeEventStruct = database.NewStruct(new(models.LifeEvent))

// PersonRepository defines the interface for person operations
type PersonRepository interface {
	List(ctx context.Context, treeID uuid.UUID) ([]*models.Person, error)
	Create(ctx context.Context, treeID uuid.UUID, req models.CreatePersonRequest) (*models.Person, error)
	UpdateGender(ctx context.Context, treeID, personID uuid.UUID, gender models.Gender) error
	MarkDeceased(ctx context.Context, treeID, personID uuid.UUID) error
}

// Repository implements PersonRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new person repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// linkedNameRow carries a name row joined with the person it is linked to
type linkedNameRow struct {
	LinkPersonID uuid.UUID `db:"link_person_id"`
	models.Name
}

// List returns every person in the tree in insertion order, with linked
// names and the birth event loaded for matching.
func (r *Repository) List(ctx context.Context, treeID uuid.UUID) ([]*models.Person, error) {
	ctx, span := tracing.StartSpan(ctx, "PersonRepository.List")
	defer span.End()

	sb := personStruct.SelectFrom(tableName)
	sb.Where(sb.Equal("tree_id", treeID))
	sb.OrderBy("created_at", "id")

	query, args := sb.Build()
	var rows []models.Person
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tree_id": treeID,
		}).Error("failed to list persons")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list persons")
	}

	persons := make([]*models.Person, len(rows))
	byID := make(map[uuid.UUID]*models.Person, len(rows))
	for i := range rows {
		persons[i] = &rows[i]
		byID[rows[i].ID] = &rows[i]
	}

	if len(persons) > 0 {
		if err := r.loadNames(ctx, treeID, byID); err != nil {
			return nil, err
		}
		if err := r.loadBirthEvents(ctx, treeID, byID); err != nil {
			return nil, err
		}
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"tree_id":      treeID,
		"person_count": len(persons),
	}).Debugf("Listed %s", tableName)
	return persons, nil
}

func (r *Repository) loadNames(ctx context.Context, treeID uuid.UUID, persons map[uuid.UUID]*models.Person) error {
	sb := database.NewSelectBuilder()
	sb.Select("pn.person_id AS link_person_id",
		"n.id", "n.tree_id", "n.first_name", "n.middle_name", "n.last_name", "n.created_at")
	sb.From("person_names pn")
	sb.Join("names n", "n.id = pn.name_id")
	sb.Where(sb.Equal("pn.tree_id", treeID))
	sb.OrderBy("pn.created_at", "pn.id")

	query, args := sb.Build()
	var rows []linkedNameRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tree_id": treeID,
		}).Error("failed to load person names")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to load person names")
	}

	for i := range rows {
		if p, ok := persons[rows[i].LinkPersonID]; ok {
			name := rows[i].Name
			p.Names = append(p.Names, &name)
		}
	}
	return nil
}

func (r *Repository) loadBirthEvents(ctx context.Context, treeID uuid.UUID, persons map[uuid.UUID]*models.Person) error {
	sb := lifeEventStruct.SelectFrom("life_events")
	sb.Where(
		sb.Equal("tree_id", treeID),
		sb.Equal("kind", models.EventBirth),
	)
	sb.OrderBy("created_at", "id")

	query, args := sb.Build()
	var events []models.LifeEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tree_id": treeID,
		}).Error("failed to load birth events")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to load birth events")
	}

	for i := range events {
		if p, ok := persons[events[i].PersonID]; ok && p.Birth == nil {
			p.Birth = &events[i]
		}
	}
	return nil
}

// Create creates a new person
func (r *Repository) Create(ctx context.Context, treeID uuid.UUID, req models.CreatePersonRequest) (*models.Person, error) {
	ctx, span := tracing.StartSpan(ctx, "PersonRepository.Create")
	defer span.End()

	req, err := utils.Validate(req)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	person := &models.Person{
		ID:       uuid.New(),
		TreeID:   treeID,
		Gender:   req.Gender,
		IsLiving: req.IsLiving,
	}
	if person.Gender == "" {
		person.Gender = models.GenderUnknown
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto(tableName).
		Cols("id", "tree_id", "gender", "is_living", "created_at", "updated_at").
		Values(person.ID, person.TreeID, person.Gender, person.IsLiving,
			sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()"))
	ib.Returning("created_at", "updated_at")

	query, args := ib.Build()
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&person.CreatedAt, &person.UpdatedAt)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id": person.ID,
			"tree_id":   treeID,
		}).Error("failed to create person")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create person")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"person_id": person.ID,
		"tree_id":   treeID,
	}).Debugf("Created %s", tableName)
	return person, nil
}

// UpdateGender sets the gender of a person
func (r *Repository) UpdateGender(ctx context.Context, treeID, personID uuid.UUID, gender models.Gender) error {
	ctx, span := tracing.StartSpan(ctx, "PersonRepository.UpdateGender")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(tableName).
		Set(
			ub.Assign("gender", gender),
			ub.Assign("updated_at", sqlbuilder.Raw("NOW()")),
		).
		Where(ub.Equal("tree_id", treeID), ub.Equal("id", personID))

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id": personID,
		}).Error("failed to update person gender")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update person gender")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id": personID,
		}).Error("failed to update person gender")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update person gender")
	}
	if rows == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "person %s does not exist", personID)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"person_id": personID,
		"gender":    gender,
	}).Debugf("Updated %s", tableName)
	return nil
}

// MarkDeceased sets is_living to false. Marking an already-deceased person
// again is a no-op, not an error.
func (r *Repository) MarkDeceased(ctx context.Context, treeID, personID uuid.UUID) error {
	ctx, span := tracing.StartSpan(ctx, "PersonRepository.MarkDeceased")
	defer span.End()

	ub := database.NewUpdateBuilder()
	ub.Update(tableName).
		Set(
			ub.Assign("is_living", false),
			ub.Assign("updated_at", sqlbuilder.Raw("NOW()")),
		).
		Where(ub.Equal("tree_id", treeID), ub.Equal("id", personID))

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id": personID,
		}).Error("failed to mark person deceased")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to mark person deceased")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"person_id": personID,
		}).Error("failed to mark person deceased")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to mark person deceased")
	}
	if rows == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "person %s does not exist", personID)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"person_id": personID,
	}).Debugf("Updated %s", tableName)
	return nil
}
