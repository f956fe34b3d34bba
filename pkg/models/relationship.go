package models

import (
	"time"

	"github.com/google/uuid"
)

// ParentChildLink is an ordered parent→child relationship. Duplicate links
// for the same ordered pair and self-links are rejected by the store.
type ParentChildLink struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TreeID   uuid.UUID `json:"tree_id" db:"tree_id"`
	ParentID uuid.UUID `json:"parent_id" db:"parent_id"`
	ChildID  uuid.UUID `json:"child_id" db:"child_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
