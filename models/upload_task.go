package models

import (
	"time"

	"github.com/google/uuid"
)

// UploadStatus is the lifecycle state of an audio upload task.
type UploadStatus string

const (
	// UploadPending means the task waits for a worker.
	UploadPending UploadStatus = "pending"

	// UploadUploading means bytes are being transferred.
	UploadUploading UploadStatus = "uploading"

	// UploadProcessing means the transfer finished and the server is
	// transcribing the recording.
	UploadProcessing UploadStatus = "processing"

	// UploadCompleted means the server confirmed a durable audio URL.
	UploadCompleted UploadStatus = "completed"

	// UploadFailed means the last attempt failed. Below the attempt
	// ceiling the task returns to pending on retry; at the ceiling it
	// stays failed until the user acts.
	UploadFailed UploadStatus = "failed"
)

// UploadTask is one audio file queued for transfer. Its lifecycle is
// deliberately independent from the note it attaches to, so text content
// is never blocked on media transfer.
type UploadTask struct {
	ID uuid.UUID `json:"id"`

	// LocalPath is the recording on disk. The task owns the file until
	// the upload completes; only completed tasks may have it purged.
	LocalPath string `json:"local_path"`
	FileSize  int64  `json:"file_size"`

	Status UploadStatus `json:"status"`

	// Progress is the transferred fraction in [0,1]. Monotonic within a
	// single attempt, reset to 0 when a new attempt starts.
	Progress float64 `json:"progress"`

	LastError string `json:"last_error,omitempty"`
	Attempts  int    `json:"attempts"`

	// NoteID links the task to the note the audio belongs to, when known.
	NoteID *uuid.UUID `json:"note_id,omitempty"`

	// RemoteKey is the object key issued with the upload URL. Recorded
	// before the transfer starts so a cancelled or failed attempt can
	// delete the partial remote object.
	RemoteKey string `json:"remote_key,omitempty"`

	// RemoteURL is the durable audio location, set on completion.
	RemoteURL string `json:"remote_url,omitempty"`

	EnqueuedAt time.Time  `json:"enqueued_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// Retryable reports whether a failed task may re-enter the queue.
func (t UploadTask) Retryable(maxAttempts int) bool {
	switch t.Status {
	case UploadPending:
		return true
	case UploadFailed:
		return t.Attempts < maxAttempts
	default:
		return false
	}
}
