// Package postgres implements the store interfaces over PostgreSQL by
// composing the per-entity repositories.
package postgres

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/jwoglom/djtree/internal/repositories/attachment"
	"github.com/jwoglom/djtree/internal/repositories/coupleevent"
	"github.com/jwoglom/djtree/internal/repositories/lifeevent"
	"github.com/jwoglom/djtree/internal/repositories/name"
	"github.com/jwoglom/djtree/internal/repositories/parentchild"
	"github.com/jwoglom/djtree/internal/repositories/person"
	"github.com/jwoglom/djtree/internal/repositories/personname"
	"github.com/jwoglom/djtree/pkg/database"
	"github.com/jwoglom/djtree/pkg/models"
	"github.com/jwoglom/djtree/pkg/store"
)

var _ store.Store = (*Store)(nil)
var _ store.AttachmentStore = (*Store)(nil)

// Store delegates each store operation to its entity repository
type Store struct {
	persons      person.PersonRepository
	names        name.NameRepository
	personNames  personname.PersonNameRepository
	lifeEvents   lifeevent.LifeEventRepository
	coupleEvents coupleevent.CoupleEventRepository
	links        parentchild.ParentChildRepository
	attachments  attachment.AttachmentRepository
}

// New creates a PostgreSQL-backed store
func New(db database.DB, logger ectologger.Logger) *Store {
	return &Store{
		persons:      person.NewRepository(db, logger),
		names:        name.NewRepository(db, logger),
		personNames:  personname.NewRepository(db, logger),
		lifeEvents:   lifeevent.NewRepository(db, logger),
		coupleEvents: coupleevent.NewRepository(db, logger),
		links:        parentchild.NewRepository(db, logger),
		attachments:  attachment.NewRepository(db, logger),
	}
}

func (s *Store) ListPersons(ctx context.Context, treeID uuid.UUID) ([]*models.Person, error) {
	return s.persons.List(ctx, treeID)
}

func (s *Store) CreatePerson(ctx context.Context, treeID uuid.UUID, req models.CreatePersonRequest) (*models.Person, error) {
	return s.persons.Create(ctx, treeID, req)
}

func (s *Store) UpdatePersonGender(ctx context.Context, treeID, personID uuid.UUID, gender models.Gender) error {
	return s.persons.UpdateGender(ctx, treeID, personID, gender)
}

func (s *Store) MarkDeceased(ctx context.Context, treeID, personID uuid.UUID) error {
	return s.persons.MarkDeceased(ctx, treeID, personID)
}

func (s *Store) FindName(ctx context.Context, treeID uuid.UUID, first, middle, last string) (*models.Name, error) {
	return s.names.Find(ctx, treeID, first, middle, last)
}

func (s *Store) CreateName(ctx context.Context, treeID uuid.UUID, req models.CreateNameRequest) (*models.Name, error) {
	return s.names.Create(ctx, treeID, req)
}

func (s *Store) FindPersonName(ctx context.Context, treeID, personID, nameID uuid.UUID) (*models.PersonName, error) {
	return s.personNames.Find(ctx, treeID, personID, nameID)
}

func (s *Store) LinkPersonName(ctx context.Context, treeID, personID, nameID uuid.UUID, nameType models.NameType) (*models.PersonName, error) {
	return s.personNames.Link(ctx, treeID, personID, nameID, nameType)
}

func (s *Store) FindLifeEvent(ctx context.Context, treeID, personID uuid.UUID, kind models.EventKind) (*models.LifeEvent, error) {
	return s.lifeEvents.Find(ctx, treeID, personID, kind)
}

func (s *Store) FindLifeEventOnDate(ctx context.Context, treeID, personID uuid.UUID, kind models.EventKind, date time.Time) (*models.LifeEvent, error) {
	return s.lifeEvents.FindOnDate(ctx, treeID, personID, kind, date)
}

func (s *Store) CreateLifeEvent(ctx context.Context, treeID uuid.UUID, req models.CreateLifeEventRequest) (*models.LifeEvent, error) {
	return s.lifeEvents.Create(ctx, treeID, req)
}

func (s *Store) FindCoupleEvent(ctx context.Context, treeID uuid.UUID, kind models.CoupleEventKind, personID, otherPersonID uuid.UUID, date time.Time) (*models.CoupleEvent, error) {
	return s.coupleEvents.Find(ctx, treeID, kind, personID, otherPersonID, date)
}

func (s *Store) CreateCoupleEventPair(ctx context.Context, treeID uuid.UUID, req models.CreateCoupleEventRequest) (*models.CoupleEventPair, error) {
	return s.coupleEvents.CreatePair(ctx, treeID, req)
}

func (s *Store) CloseOpenMarriages(ctx context.Context, treeID, personID, otherPersonID uuid.UUID) (int, error) {
	return s.coupleEvents.CloseOpenMarriages(ctx, treeID, personID, otherPersonID)
}

func (s *Store) HasParentChildLink(ctx context.Context, treeID, parentID, childID uuid.UUID) (bool, error) {
	return s.links.Has(ctx, treeID, parentID, childID)
}

func (s *Store) CreateParentChildLink(ctx context.Context, treeID, parentID, childID uuid.UUID) (*models.ParentChildLink, error) {
	return s.links.Create(ctx, treeID, parentID, childID)
}

func (s *Store) ListAttachments(ctx context.Context, treeID, personID uuid.UUID) ([]*models.Attachment, error) {
	return s.attachments.List(ctx, treeID, personID)
}

func (s *Store) FindAttachment(ctx context.Context, treeID, personID uuid.UUID, fileName string) (*models.Attachment, error) {
	return s.attachments.Find(ctx, treeID, personID, fileName)
}

func (s *Store) CreateAttachment(ctx context.Context, treeID uuid.UUID, req models.CreateAttachmentRequest) (*models.Attachment, error) {
	return s.attachments.Upsert(ctx, treeID, req)
}

func (s *Store) DeleteAttachment(ctx context.Context, treeID, attachmentID uuid.UUID) error {
	return s.attachments.Delete(ctx, treeID, attachmentID)
}
