// Package adapter provides the transport layer for communicating with the
// remote Glide API.
//
// The primary abstraction is [APIClient], which decouples the sync engine
// from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPAPIClient]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrConflict] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/glideapp/glide-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// ProgressFunc receives upload progress: bytes sent so far and the total.
// Called monotonically within one attempt.
type ProgressFunc func(sent, total int64)

// APIClient is the remote Glide API consumed by the sync engine. Every call
// carries the configured bearer token (except the presigned PUT) and a
// bounded timeout; failures are mapped onto the adapter's error taxonomy.
type APIClient interface {
	// Health probes the API root. Used by the network monitor.
	Health(ctx context.Context) error

	CreateNote(ctx context.Context, note models.Note) (models.Note, error)

	// UpdateNote sends a partial update. lastKnown is the client's last
	// known server updated_at; the server answers 409 with its current
	// representation when the resource advanced past it.
	UpdateNote(ctx context.Context, id uuid.UUID, patch models.NotePatch, lastKnown *time.Time) (models.Note, error)

	DeleteNote(ctx context.Context, id uuid.UUID, permanent bool) error
	RestoreNote(ctx context.Context, id uuid.UUID) (models.Note, error)
	ListNotes(ctx context.Context, params models.NoteListParams) (models.NoteList, error)

	CreateFolder(ctx context.Context, folder models.Folder) (models.Folder, error)
	UpdateFolder(ctx context.Context, id uuid.UUID, patch models.FolderPatch, lastKnown *time.Time) (models.Folder, error)
	DeleteFolder(ctx context.Context, id uuid.UUID) error
	ListFolders(ctx context.Context) ([]models.Folder, error)

	// UploadURL asks the server for a presigned upload destination.
	UploadURL(ctx context.Context, req models.UploadURLRequest) (models.UploadURLResponse, error)

	// UploadFile PUTs the file at path to the presigned uploadURL,
	// reporting progress through fn (may be nil).
	UploadFile(ctx context.Context, uploadURL, path, contentType string, fn ProgressFunc) error

	// ProcessVoice submits an uploaded object key for transcription.
	ProcessVoice(ctx context.Context, req models.ProcessRequest) (models.ProcessResponse, error)

	// DeleteObject abandons a partial upload by key.
	DeleteObject(ctx context.Context, key string) error
}
