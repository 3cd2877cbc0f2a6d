package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is the remote-shaped voice note. Field names follow the Glide API
// JSON contract; the same shape is stored locally as the entity payload.
type Note struct {
	ID uuid.UUID `json:"id"`

	// FolderID places the note in a folder. May reference a folder that
	// has not itself been synced yet; the reference is rewritten when the
	// folder's server id is adopted.
	FolderID *uuid.UUID `json:"folder_id,omitempty"`

	Title      string `json:"title"`
	Transcript string `json:"transcript,omitempty"`

	// Summary and Tags are produced server-side by voice processing.
	Summary string   `json:"summary,omitempty"`
	Tags    []string `json:"tags,omitempty"`

	// Duration is the audio length in seconds.
	Duration int `json:"duration,omitempty"`

	// AudioURL is the durable location of the uploaded recording, set
	// once the linked upload task completes.
	AudioURL string `json:"audio_url,omitempty"`

	IsPinned   bool `json:"is_pinned"`
	IsArchived bool `json:"is_archived"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func (n *Note) Kind() Kind               { return KindNote }
func (n *Note) EntityID() uuid.UUID      { return n.ID }
func (n *Note) SetEntityID(id uuid.UUID) { n.ID = id }

func (n *Note) RemapRefs(oldID, newID uuid.UUID) bool {
	if n.FolderID == nil || *n.FolderID != oldID {
		return false
	}
	ref := newID
	n.FolderID = &ref
	return true
}
