package models

import (
	"time"

	"github.com/google/uuid"
)

// NameType tags how a name relates to a person
type NameType string

const (
	NameTypeBirth   NameType = "birth"
	NameTypeMarried NameType = "married"
	NameTypeNick    NameType = "nick"
	NameTypeOther   NameType = "other"
)

// Name is a reusable name value, unique per (tree, first, middle, last).
// Multiple people can share one Name row through PersonName links.
type Name struct {
	ID     uuid.UUID `json:"id" db:"id"`
	TreeID uuid.UUID `json:"tree_id" db:"tree_id"`
	First  string    `json:"first_name" db:"first_name"`
	Middle string    `json:"middle_name" db:"middle_name"`
	Last   string    `json:"last_name" db:"last_name"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PersonName links a person to a name with a type tag. Imports always link
// with NameTypeOther and never rewrite the type of an existing link.
type PersonName struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TreeID   uuid.UUID `json:"tree_id" db:"tree_id"`
	PersonID uuid.UUID `json:"person_id" db:"person_id"`
	NameID   uuid.UUID `json:"name_id" db:"name_id"`
	Type     NameType  `json:"name_type" db:"name_type"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateNameRequest is the request for creating a name value
type CreateNameRequest struct {
	First  string `json:"first_name" validate:"required_without=Last"`
	Middle string `json:"middle_name"`
	Last   string `json:"last_name" validate:"required_without=First"`
}
