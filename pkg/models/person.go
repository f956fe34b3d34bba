package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Gender is the gender recorded for a person. GEDCOM SEX values M/F map to
// male/female; anything else (or absence) maps to unknown.
type Gender string

const (
	GenderUnknown Gender = "unknown"
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// GenderFromSex maps a GEDCOM SEX value to a Gender. An empty value returns
// false so callers can distinguish "absent" from "explicitly unknown".
func GenderFromSex(sex string) (Gender, bool) {
	switch sex {
	case "":
		return GenderUnknown, false
	case "M":
		return GenderMale, true
	case "F":
		return GenderFemale, true
	default:
		return GenderUnknown, true
	}
}

// Person represents an individual in a family tree
type Person struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TreeID   uuid.UUID `json:"tree_id" db:"tree_id"`
	Gender   Gender    `json:"gender" db:"gender"`
	IsLiving bool      `json:"is_living" db:"is_living"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Loaded associations used for matching; not columns of the persons table
	Names []*Name    `json:"names,omitempty" db:"-"`
	Birth *LifeEvent `json:"birth,omitempty" db:"-"`
}

// PrimaryName returns the first associated name, or nil when none is linked
func (p *Person) PrimaryName() *Name {
	if len(p.Names) == 0 {
		return nil
	}
	return p.Names[0]
}

// String renders the person for log lines and reports
func (p *Person) String() string {
	if n := p.PrimaryName(); n != nil {
		return fmt.Sprintf("%s %s (%s)", n.First, n.Last, p.ID)
	}
	return p.ID.String()
}

// CreatePersonRequest is the request for creating a person
type CreatePersonRequest struct {
	Gender   Gender `json:"gender" validate:"omitempty,oneof=unknown male female"`
	IsLiving bool   `json:"is_living"`
}
