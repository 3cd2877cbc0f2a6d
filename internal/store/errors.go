package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEntityNotFound is returned when a query or update targets an entity
	// id that exists neither directly nor through the id remap table.
	ErrEntityNotFound = errors.New("entity was not found")

	// ErrTaskNotFound is returned when a query or update targets an upload
	// task that does not exist.
	ErrTaskNotFound = errors.New("upload task was not found")

	// ErrAlreadyExists is returned when an insert violates a uniqueness
	// constraint (duplicate entity or task id).
	ErrAlreadyExists = errors.New("record already exists")

	// ErrInvalidTransition is returned when a requested sync status change
	// does not follow the entity state graph. Only the edges
	// pending -> {synced, conflict, error} and error -> pending are legal
	// through MarkStatus; conflict rows leave their state exclusively via
	// Resolve.
	ErrInvalidTransition = errors.New("invalid sync status transition")

	// ErrNotInConflict is returned when Resolve is called for an entity
	// whose status is not conflict.
	ErrNotInConflict = errors.New("entity is not in conflict")

	// ErrStaleWrite is returned when a server-originated upsert carries a
	// seq older than the stored row: a local edit landed after the caller
	// fetched the entity. The local edit wins and stays pending; the caller
	// may still record the server timestamp via SetRemoteStamp.
	ErrStaleWrite = errors.New("entity advanced past the written snapshot")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied. They all represent local storage failures: the current
// operation is aborted and no partial status transition is committed.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")
)
