// Package uploads owns the audio upload queue: durable task rows, the
// transfer procedure against the remote API, the spool watcher that feeds
// the queue, and reclamation of completed local files.
//
// The queue's lifecycle is independent from note sync: a note is usable
// before its recording finished uploading, and a completed upload links
// the durable audio URL back onto the note as a server-originated update.
package uploads

import (
	"context"

	"github.com/google/uuid"

	"github.com/glideapp/glide-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../../mock/uploads_mock.go -package=mock

// Queue is the upload surface consumed by the sync orchestrator and the
// control API.
type Queue interface {
	// Enqueue registers the recording at path for upload, linked to
	// noteID when known. The file is stat'ed for its size; the task owns
	// the file until completion.
	Enqueue(ctx context.Context, path string, noteID *uuid.UUID) (models.UploadTask, error)

	// List returns every task in enqueue order.
	List(ctx context.Context) ([]models.UploadTask, error)

	// ListEligible returns tasks a sync pass should transfer now: pending,
	// plus failed tasks below the attempt cap whose backoff window has
	// passed.
	ListEligible(ctx context.Context) ([]models.UploadTask, error)

	// Transfer runs the full upload procedure for one task: presigned URL,
	// PUT with progress, voice processing, completion, note linkage.
	// Failures are recorded on the task and contained; only a dying parent
	// context or an auth rejection propagates as an error.
	Transfer(ctx context.Context, id uuid.UUID) error

	// RetryAll returns failed tasks below the attempt cap to pending.
	RetryAll(ctx context.Context) (int, error)

	// Cancel aborts the task. An in-flight transfer is interrupted, a
	// partially uploaded remote object deleted, and the task returned to
	// pending with progress 0; discard removes the task and its file
	// entirely.
	Cancel(ctx context.Context, id uuid.UUID, discard bool) error

	// TotalPendingBytes sums file sizes over non-completed tasks.
	TotalPendingBytes(ctx context.Context) (int64, error)

	// CountPending counts non-completed tasks.
	CountPending(ctx context.Context) (int, error)
}
