package models

import (
	"time"

	"github.com/google/uuid"
)

// EventKind is the kind of a single-person life event
type EventKind string

const (
	EventBirth       EventKind = "birth"
	EventDeath       EventKind = "death"
	EventImmigration EventKind = "immigration"
	EventCitizenship EventKind = "citizenship"
)

// LifeEvent is an event belonging to exactly one person. A person has at most
// one birth and one death event; immigration and citizenship events are
// unique per (person, kind, date). Events are only materialized with a date.
type LifeEvent struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TreeID   uuid.UUID `json:"tree_id" db:"tree_id"`
	PersonID uuid.UUID `json:"person_id" db:"person_id"`
	Kind     EventKind `json:"kind" db:"kind"`
	Date     time.Time `json:"date" db:"date"`
	Location string    `json:"location" db:"location"`

	// Kind-specific attributes
	Cause       string `json:"cause,omitempty" db:"cause"`                 // death
	FromCountry string `json:"from_country,omitempty" db:"from_country"`   // immigration
	ToCountry   string `json:"to_country,omitempty" db:"to_country"`       // immigration
	Country     string `json:"country,omitempty" db:"country"`             // citizenship

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateLifeEventRequest is the request for creating a life event
type CreateLifeEventRequest struct {
	PersonID    uuid.UUID `json:"person_id" validate:"required"`
	Kind        EventKind `json:"kind" validate:"required,oneof=birth death immigration citizenship"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location"`
	Cause       string    `json:"cause"`
	FromCountry string    `json:"from_country"`
	ToCountry   string    `json:"to_country"`
	Country     string    `json:"country"`
}

// CoupleEventKind is the kind of an event shared by two people
type CoupleEventKind string

const (
	CoupleMarriage CoupleEventKind = "marriage"
	CoupleDivorce  CoupleEventKind = "divorce"
)

// CoupleEvent is one directional row of a symmetric pair. Every couple event
// for (A, B, date) has a mirror row for (B, A, date) with identical
// date/location/comment; both rows are written by a single store call.
// Ended marks a marriage closed by a later divorce.
type CoupleEvent struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	TreeID        uuid.UUID       `json:"tree_id" db:"tree_id"`
	Kind          CoupleEventKind `json:"kind" db:"kind"`
	PersonID      uuid.UUID       `json:"person_id" db:"person_id"`
	OtherPersonID uuid.UUID       `json:"other_person_id" db:"other_person_id"`
	Date          time.Time       `json:"date" db:"date"`
	Location      string          `json:"location" db:"location"`
	Comment       string          `json:"comment" db:"comment"`
	Ended         bool            `json:"ended" db:"ended"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CoupleEventPair holds both directional rows produced by one symmetric write
type CoupleEventPair struct {
	Forward *CoupleEvent `json:"forward"`
	Mirror  *CoupleEvent `json:"mirror"`
}

// CreateCoupleEventRequest is the request for creating a symmetric couple
// event pair. PersonID/OtherPersonID order the forward row; the mirror row is
// derived by swapping them.
type CreateCoupleEventRequest struct {
	Kind          CoupleEventKind `json:"kind" validate:"required,oneof=marriage divorce"`
	PersonID      uuid.UUID       `json:"person_id" validate:"required"`
	OtherPersonID uuid.UUID       `json:"other_person_id" validate:"required"`
	Date          time.Time       `json:"date" validate:"required"`
	Location      string          `json:"location"`
	Comment       string          `json:"comment"`
}
