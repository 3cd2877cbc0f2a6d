package models

import (
	"time"

	"github.com/google/uuid"
)

// Folder groups notes. Icon and Color are presentation hints stored
// verbatim; SortOrder is the user's manual ordering.
type Folder struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Icon      string     `json:"icon,omitempty"`
	Color     string     `json:"color,omitempty"`
	SortOrder int        `json:"sort_order"`
	NoteCount int        `json:"note_count,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (f *Folder) Kind() Kind               { return KindFolder }
func (f *Folder) EntityID() uuid.UUID      { return f.ID }
func (f *Folder) SetEntityID(id uuid.UUID) { f.ID = id }

// RemapRefs is a no-op: folders hold no references to other entities.
func (f *Folder) RemapRefs(oldID, newID uuid.UUID) bool { return false }
