package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the domain payload carried by an Entity.
type Kind string

const (
	KindNote   Kind = "note"
	KindFolder Kind = "folder"
)

// SyncStatus is the synchronization state of a locally stored entity.
//
// A freshly created or locally edited entity starts in StatusPending.
// Only the sync orchestrator moves it to StatusSynced, StatusConflict or
// StatusError; the UI layer never writes these transitions directly.
type SyncStatus string

const (
	// StatusSynced means the local copy matches the last known server state.
	StatusSynced SyncStatus = "synced"

	// StatusPending means a local mutation has not yet reached the server.
	StatusPending SyncStatus = "pending"

	// StatusConflict means the server advanced independently while a local
	// mutation was pending. Terminal until the user resolves it.
	StatusConflict SyncStatus = "conflict"

	// StatusError means the last sync attempt failed. Retried under backoff
	// while attempts remain, otherwise waits for a manual retry.
	StatusError SyncStatus = "error"
)

// Resolution is the user's decision for an entity in StatusConflict.
type Resolution string

const (
	ResolutionPickLocal  Resolution = "pick_local"
	ResolutionPickRemote Resolution = "pick_remote"
	ResolutionMerged     Resolution = "merged"
)

// Payload is the remote-shaped domain object wrapped by an Entity.
// Implemented by *Note and *Folder.
type Payload interface {
	// Kind reports the payload's entity kind.
	Kind() Kind

	// EntityID returns the payload's own identifier.
	EntityID() uuid.UUID

	// SetEntityID overwrites the payload's identifier. Used when a
	// server-assigned id replaces a client-generated one.
	SetEntityID(id uuid.UUID)

	// RemapRefs rewrites any reference to oldID held inside the payload
	// (a note's folder id) to newID. Reports whether anything changed.
	RemapRefs(oldID, newID uuid.UUID) bool
}

// Entity wraps a domain payload with its synchronization metadata.
// The local store owns the canonical copy; every field transition goes
// through a store operation so the state machine stays auditable.
type Entity struct {
	// ID is the entity identifier. Client-generated (UUIDv7) until the
	// first successful server round-trip, server-assigned afterwards.
	ID uuid.UUID `json:"id"`

	// Kind tells which domain type Payload decodes to.
	Kind Kind `json:"kind"`

	// Seq is the store-assigned insertion order. Pending entities sync
	// oldest Seq first; a re-edit moves the entity to the tail.
	Seq int64 `json:"seq"`

	SyncStatus SyncStatus `json:"sync_status"`

	// SyncError holds the last failure message. Set only while
	// SyncStatus == StatusError, cleared by any successful attempt.
	SyncError string `json:"sync_error,omitempty"`

	// SyncRetryable is false when the last failure was permanent (server
	// rejected the payload). Permanent failures are never retried
	// automatically; a local re-edit resets the flag.
	SyncRetryable bool `json:"sync_retryable"`

	// SyncAttempts counts consecutive failed attempts since the last
	// success. Drives backoff together with LastSyncAttempt.
	SyncAttempts    int        `json:"sync_attempts,omitempty"`
	LastSyncAttempt *time.Time `json:"last_sync_attempt,omitempty"`

	// UpdatedAtLocal is the time of the most recent local mutation.
	UpdatedAtLocal time.Time `json:"updated_at_local"`

	// UpdatedAtRemote is the server's updated_at as of the last fetch.
	// Sent with updates so the server can detect independent modification.
	UpdatedAtRemote *time.Time `json:"updated_at_remote,omitempty"`

	// Deleted marks a tombstone. The row survives until the server delete
	// is confirmed, then gets purged.
	Deleted bool `json:"deleted,omitempty"`

	// Payload is the current local domain object.
	Payload Payload `json:"payload"`

	// RemotePayload is the server's representation, retained next to the
	// local one while SyncStatus == StatusConflict.
	RemotePayload Payload `json:"remote_payload,omitempty"`
}

// Retryable reports whether the entity should be picked up by a sync pass:
// pending work, or a retryable failed attempt that has not exhausted
// maxAttempts.
func (e Entity) Retryable(maxAttempts int) bool {
	switch e.SyncStatus {
	case StatusPending:
		return true
	case StatusError:
		return e.SyncRetryable && e.SyncAttempts < maxAttempts
	default:
		return false
	}
}

// DecodePayload unmarshals raw into the domain type named by kind.
func DecodePayload(kind Kind, raw []byte) (Payload, error) {
	switch kind {
	case KindNote:
		n := &Note{}
		if err := json.Unmarshal(raw, n); err != nil {
			return nil, fmt.Errorf("decode note payload: %w", err)
		}
		return n, nil
	case KindFolder:
		f := &Folder{}
		if err := json.Unmarshal(raw, f); err != nil {
			return nil, fmt.Errorf("decode folder payload: %w", err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("decode payload: unknown kind %q", kind)
	}
}

// EncodePayload marshals a payload for storage.
func EncodePayload(p Payload) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p.Kind(), err)
	}
	return raw, nil
}

// PayloadAs returns the entity payload as the concrete type T.
func PayloadAs[T Payload](e Entity) (T, bool) {
	p, ok := e.Payload.(T)
	return p, ok
}
