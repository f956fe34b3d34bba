// Package store defines the narrow persistence surface the import pipeline
// writes through. Finds return (nil, nil) when nothing matches so callers
// can branch on find-or-create without sentinel errors; every create is a
// separate call so dry runs can skip writes one decision at a time.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwoglom/djtree/pkg/models"
)

// Store is the persistence surface for persons, names, events and links.
// All operations are scoped to a single family tree.
type Store interface {
	// ListPersons returns every person in the tree with names and birth
	// event loaded, in stable insertion order.
	ListPersons(ctx context.Context, treeID uuid.UUID) ([]*models.Person, error)
	CreatePerson(ctx context.Context, treeID uuid.UUID, req models.CreatePersonRequest) (*models.Person, error)
	UpdatePersonGender(ctx context.Context, treeID, personID uuid.UUID, gender models.Gender) error
	// MarkDeceased sets is_living to false; once false it never resets.
	MarkDeceased(ctx context.Context, treeID, personID uuid.UUID) error

	FindName(ctx context.Context, treeID uuid.UUID, first, middle, last string) (*models.Name, error)
	CreateName(ctx context.Context, treeID uuid.UUID, req models.CreateNameRequest) (*models.Name, error)
	FindPersonName(ctx context.Context, treeID, personID, nameID uuid.UUID) (*models.PersonName, error)
	LinkPersonName(ctx context.Context, treeID, personID, nameID uuid.UUID, nameType models.NameType) (*models.PersonName, error)

	// FindLifeEvent looks up by (person, kind); birth and death are unique
	// per person. FindLifeEventOnDate additionally matches the exact date,
	// for kinds that can repeat.
	FindLifeEvent(ctx context.Context, treeID, personID uuid.UUID, kind models.EventKind) (*models.LifeEvent, error)
	FindLifeEventOnDate(ctx context.Context, treeID, personID uuid.UUID, kind models.EventKind, date time.Time) (*models.LifeEvent, error)
	CreateLifeEvent(ctx context.Context, treeID uuid.UUID, req models.CreateLifeEventRequest) (*models.LifeEvent, error)

	// FindCoupleEvent checks a single direction; callers probe both.
	FindCoupleEvent(ctx context.Context, treeID uuid.UUID, kind models.CoupleEventKind, personID, otherPersonID uuid.UUID, date time.Time) (*models.CoupleEvent, error)
	// CreateCoupleEventPair writes the (A,B) and (B,A) rows together.
	CreateCoupleEventPair(ctx context.Context, treeID uuid.UUID, req models.CreateCoupleEventRequest) (*models.CoupleEventPair, error)
	// CloseOpenMarriages ends every open marriage between the two people in
	// both directions and returns the number of rows updated.
	CloseOpenMarriages(ctx context.Context, treeID, personID, otherPersonID uuid.UUID) (int, error)

	HasParentChildLink(ctx context.Context, treeID, parentID, childID uuid.UUID) (bool, error)
	CreateParentChildLink(ctx context.Context, treeID, parentID, childID uuid.UUID) (*models.ParentChildLink, error)
}

// AttachmentStore is the surface the attachment synchronizer works against.
type AttachmentStore interface {
	ListPersons(ctx context.Context, treeID uuid.UUID) ([]*models.Person, error)
	ListAttachments(ctx context.Context, treeID, personID uuid.UUID) ([]*models.Attachment, error)
	FindAttachment(ctx context.Context, treeID, personID uuid.UUID, fileName string) (*models.Attachment, error)
	// CreateAttachment refreshes file_type when the (person, file name)
	// pair already exists; the stored row keeps its id and created_at.
	CreateAttachment(ctx context.Context, treeID uuid.UUID, req models.CreateAttachmentRequest) (*models.Attachment, error)
	DeleteAttachment(ctx context.Context, treeID, attachmentID uuid.UUID) error
}
