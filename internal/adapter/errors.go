package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors mapping the remote API's failure modes onto the engine's
// error taxonomy. Callers match with [errors.Is]; the zero-information
// sentinels are wrapped with response detail at the call site.
var (
	// ErrUnauthorized means the configured bearer token was rejected.
	// The sync pass aborts and periodic triggering pauses until the token
	// changes.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrNotFound means the addressed resource does not exist on the
	// server.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict means the resource was independently modified since the
	// client's last known version. The concrete error is a
	// [*ConflictError] carrying the server's current representation.
	ErrConflict = errors.New("resource modified on server")

	// ErrValidation means the server permanently rejected the payload
	// (4xx). Not retried automatically.
	ErrValidation = errors.New("request rejected by server")

	// ErrUnavailable means a transient condition: connection failure,
	// timeout, throttling, or a 5xx response. Retried with backoff.
	ErrUnavailable = errors.New("server unavailable")
)

// ConflictError is returned when the server answers 409. It retains the
// server's current representation of the resource so the caller can store
// both versions for user-facing resolution.
type ConflictError struct {
	// Server is the raw JSON representation the server returned with the
	// conflict response. Empty when the server sent no body.
	Server json.RawMessage
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v (%d bytes of server state)", ErrConflict, len(e.Server))
}

// Unwrap makes errors.Is(err, ErrConflict) match.
func (e *ConflictError) Unwrap() error { return ErrConflict }
