package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/glideapp/glide-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// SyncCounts is the per-status entity tally consumed by the status
// projection.
type SyncCounts struct {
	// PendingChanges counts entities with status pending or error, i.e.
	// local mutations not yet reflected on the server.
	PendingChanges int

	// Conflicts counts entities awaiting explicit user resolution.
	Conflicts int
}

// EntityRepository is the local entity store: the authoritative on-device
// copy of notes and folders plus their sync metadata. All writes are atomic
// per entity; concurrent reads never observe a half-applied update.
type EntityRepository interface {
	// Get returns the entity by id. A lookup by a superseded
	// client-generated id follows the remap table to the server-assigned
	// one. Returns ErrEntityNotFound when neither matches.
	Get(ctx context.Context, id uuid.UUID) (models.Entity, error)

	// UpsertLocal inserts or replaces the entity's payload. status must be
	// StatusPending for user-originated mutations and StatusSynced for
	// server-originated writes. A local write bumps the entity to the tail
	// of the pending order and stamps updated_at_local; writing over a
	// conflict row returns ErrInvalidTransition, Resolve is the only way
	// out. A server write stamps updated_at_remote from the payload and
	// clears any retained conflict copy, but only while the row still sits
	// at the seq the caller fetched; ErrStaleWrite otherwise.
	UpsertLocal(ctx context.Context, entity models.Entity, status models.SyncStatus) (models.Entity, error)

	// MarkStatus transitions the entity between pending and synced
	// following the state graph: pending -> synced and error -> pending are
	// the only edges it accepts. Entering synced clears the sync error and
	// attempt counter.
	MarkStatus(ctx context.Context, id uuid.UUID, status models.SyncStatus) error

	// SetRemoteStamp records the server's updated_at without touching the
	// payload or status. Used when a local edit raced a successful push:
	// the entity stays pending with its newer content, but the next update
	// must carry the advanced server timestamp.
	SetRemoteStamp(ctx context.Context, id uuid.UUID, at time.Time) error

	// MarkError records a failed sync attempt: status error, message
	// stored, attempt counter incremented, attempt time stamped. retryable
	// false marks a permanent failure that no sync pass will pick up again.
	MarkError(ctx context.Context, id uuid.UUID, syncErr string, retryable bool) error

	// MarkConflict records that the server advanced independently: status
	// conflict, the server's representation retained next to the untouched
	// local payload.
	MarkConflict(ctx context.Context, id uuid.UUID, remote models.Payload) error

	// ListPending returns entities with status pending, plus retryable
	// error entities below maxAttempts, ordered oldest mutation first.
	ListPending(ctx context.Context, maxAttempts int) ([]models.Entity, error)

	// Remap adopts a server-assigned id in place of a client-generated
	// one: the row key is rewritten, the old->new pair recorded, every
	// payload referencing oldID (a note's folder id) rewritten, and upload
	// task links to oldID moved along, all in one transaction. Replaying an
	// already applied remap is a no-op.
	Remap(ctx context.Context, oldID, newID uuid.UUID) error

	// Delete tombstones the entity: the row is kept, marked deleted and
	// pending, until the server delete is confirmed and Purge removes it.
	Delete(ctx context.Context, id uuid.UUID) error

	// Restore clears a tombstone before the server delete was confirmed,
	// returning the entity to pending.
	Restore(ctx context.Context, id uuid.UUID) error

	// Purge removes the row entirely. Called after a confirmed server
	// delete, or for a never-synced draft discarded by the user.
	Purge(ctx context.Context, id uuid.UUID) error

	// Resolve is the single atomic transition out of conflict:
	// pick-local keeps the local payload and re-queues it as pending,
	// pick-remote adopts the retained server copy as synced, merged stores
	// the supplied payload as pending. Returns ErrNotInConflict otherwise.
	Resolve(ctx context.Context, id uuid.UUID, resolution models.Resolution, merged models.Payload) (models.Entity, error)

	// List returns entities for the UI surface, filtered and paginated.
	List(ctx context.Context, filter ListFilter) ([]models.Entity, int, error)

	// Counts tallies entities per sync status for the projection.
	Counts(ctx context.Context) (SyncCounts, error)
}

// ListFilter narrows the List result set. Zero values mean "no constraint".
type ListFilter struct {
	Kind       models.Kind
	FolderID   *uuid.UUID
	Query      string
	IsPinned   *bool
	IsArchived *bool

	// IncludeDeleted includes tombstoned rows; the UI normally hides them.
	IncludeDeleted bool

	Page    int
	PerPage int
}

// UploadTaskRepository is the durable audio upload queue. Task rows survive
// process restart so an interrupted transfer resumes rather than loses
// queued work.
type UploadTaskRepository interface {
	// Enqueue persists a new task in status pending.
	Enqueue(ctx context.Context, task models.UploadTask) (models.UploadTask, error)

	// Get returns the task by id, or ErrTaskNotFound.
	Get(ctx context.Context, id uuid.UUID) (models.UploadTask, error)

	// List returns all tasks in enqueue order.
	List(ctx context.Context) ([]models.UploadTask, error)

	// ListPending returns pending tasks plus failed tasks below
	// maxAttempts, in enqueue order.
	ListPending(ctx context.Context, maxAttempts int) ([]models.UploadTask, error)

	// UpdateProgress records the transferred fraction. Monotonic within an
	// attempt: a smaller value than the stored one is ignored.
	UpdateProgress(ctx context.Context, id uuid.UUID, fraction float64) error

	// MarkStatus moves the task to pending, uploading or processing.
	// Entering pending or uploading resets progress to 0 (a new attempt
	// starts from scratch); entering processing pins it at 1.
	MarkStatus(ctx context.Context, id uuid.UUID, status models.UploadStatus) error

	// MarkFailed records a failed attempt: status failed, reason stored,
	// attempt counter incremented.
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error

	// SetRemoteKey records the object key issued with the upload URL, so a
	// later cancel or failure can delete the partial remote object.
	SetRemoteKey(ctx context.Context, id uuid.UUID, key string) error

	// MarkCompleted finishes the task: status completed, progress 1, the
	// durable remote URL stored, last error cleared.
	MarkCompleted(ctx context.Context, id uuid.UUID, remoteURL string) error

	// RetryAll resets failed tasks below maxAttempts back to pending with
	// progress 0 and the last error cleared. Returns how many were reset.
	RetryAll(ctx context.Context, maxAttempts int) (int, error)

	// Delete removes the task row entirely (user discarded the recording).
	Delete(ctx context.Context, id uuid.UUID) error

	// TotalPendingBytes sums file_size over all non-completed tasks.
	TotalPendingBytes(ctx context.Context) (int64, error)

	// CountPending counts non-completed tasks.
	CountPending(ctx context.Context) (int, error)

	// ListPurgeable returns completed tasks that still hold a local file
	// and whose linked note (when any) is durably synced, so the file can
	// be reclaimed.
	ListPurgeable(ctx context.Context) ([]models.UploadTask, error)

	// ClearLocalPath records that the local file was reclaimed.
	ClearLocalPath(ctx context.Context, id uuid.UUID) error
}
