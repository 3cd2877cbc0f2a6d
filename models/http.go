package models

import (
	"time"

	"github.com/google/uuid"
)

// NotePatch is a partial note update. Only non-nil fields are sent;
// the server leaves everything else untouched.
type NotePatch struct {
	FolderID   *uuid.UUID `json:"folder_id,omitempty"`
	Title      *string    `json:"title,omitempty"`
	Transcript *string    `json:"transcript,omitempty"`
	Summary    *string    `json:"summary,omitempty"`
	Tags       *[]string  `json:"tags,omitempty"`
	AudioURL   *string    `json:"audio_url,omitempty"`
	Duration   *int       `json:"duration,omitempty"`
	IsPinned   *bool      `json:"is_pinned,omitempty"`
	IsArchived *bool      `json:"is_archived,omitempty"`
}

// Apply copies the patch's non-nil fields onto the note.
func (p NotePatch) Apply(n *Note) {
	if p.FolderID != nil {
		ref := *p.FolderID
		n.FolderID = &ref
	}
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Transcript != nil {
		n.Transcript = *p.Transcript
	}
	if p.Summary != nil {
		n.Summary = *p.Summary
	}
	if p.Tags != nil {
		n.Tags = *p.Tags
	}
	if p.AudioURL != nil {
		n.AudioURL = *p.AudioURL
	}
	if p.Duration != nil {
		n.Duration = *p.Duration
	}
	if p.IsPinned != nil {
		n.IsPinned = *p.IsPinned
	}
	if p.IsArchived != nil {
		n.IsArchived = *p.IsArchived
	}
}

// FolderPatch is a partial folder update.
type FolderPatch struct {
	Name      *string `json:"name,omitempty"`
	Icon      *string `json:"icon,omitempty"`
	Color     *string `json:"color,omitempty"`
	SortOrder *int    `json:"sort_order,omitempty"`
}

// Apply copies the patch's non-nil fields onto the folder.
func (p FolderPatch) Apply(f *Folder) {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Icon != nil {
		f.Icon = *p.Icon
	}
	if p.Color != nil {
		f.Color = *p.Color
	}
	if p.SortOrder != nil {
		f.SortOrder = *p.SortOrder
	}
}

// AsPatch returns a patch carrying every client-owned field of the note.
// The engine tracks whole-entity dirtiness, not per-field edits, so an
// update always ships the full local representation.
func (n *Note) AsPatch() NotePatch {
	tags := n.Tags
	return NotePatch{
		FolderID:   n.FolderID,
		Title:      &n.Title,
		Transcript: &n.Transcript,
		Summary:    &n.Summary,
		Tags:       &tags,
		AudioURL:   &n.AudioURL,
		Duration:   &n.Duration,
		IsPinned:   &n.IsPinned,
		IsArchived: &n.IsArchived,
	}
}

// AsPatch returns a patch carrying every field of the folder.
func (f *Folder) AsPatch() FolderPatch {
	return FolderPatch{
		Name:      &f.Name,
		Icon:      &f.Icon,
		Color:     &f.Color,
		SortOrder: &f.SortOrder,
	}
}

// NoteListParams filters and paginates a note listing, mirroring the
// query parameters of the remote API so the local surface matches it.
type NoteListParams struct {
	FolderID   *uuid.UUID
	Query      string
	Tags       []string
	IsPinned   *bool
	IsArchived *bool
	Page       int
	PerPage    int
}

// NoteList is one page of notes plus pagination totals.
type NoteList struct {
	Items   []Note `json:"items"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// UploadURLRequest asks the server for a presigned upload destination.
type UploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// UploadURLResponse carries the presigned destination and the object key
// the client must reference in the subsequent processing call.
type UploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	Key       string `json:"key"`
}

// ProcessRequest submits an uploaded object for transcription. NoteID is
// set when the audio belongs to an existing note; left empty the server
// creates a fresh note from the recording.
type ProcessRequest struct {
	Key    string     `json:"key"`
	NoteID *uuid.UUID `json:"note_id,omitempty"`
}

// ProcessResponse is the outcome of voice processing: the durable audio
// URL plus the transcription fields the server attached to the note.
type ProcessResponse struct {
	NoteID     uuid.UUID  `json:"note_id"`
	Title      string     `json:"title"`
	Transcript string     `json:"transcript"`
	Summary    string     `json:"summary,omitempty"`
	Duration   int        `json:"duration"`
	AudioURL   string     `json:"audio_url"`
	FolderID   *uuid.UUID `json:"folder_id,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// APIError is the remote API's error body.
type APIError struct {
	Detail string `json:"detail"`
}
