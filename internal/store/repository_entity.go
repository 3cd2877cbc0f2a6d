package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/glideapp/glide-sync/internal/logger"
	"github.com/glideapp/glide-sync/models"
)

type entityRepository struct {
	*DB
	logger *logger.Logger
	now    func() time.Time
}

func NewEntityRepository(db *DB, logger *logger.Logger) EntityRepository {
	return &entityRepository{
		DB:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *entityRepository) Get(ctx context.Context, id uuid.UUID) (models.Entity, error) {
	entity, err := r.getByExactID(ctx, id)
	if err == nil {
		return entity, nil
	}
	if !errors.Is(err, ErrEntityNotFound) {
		return models.Entity{}, err
	}

	// The id may have been superseded by a server-assigned one.
	var newID string
	row := r.DB.QueryRowContext(ctx, getRemappedID, id.String())
	if scanErr := row.Scan(&newID); scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return models.Entity{}, ErrEntityNotFound
		}
		return models.Entity{}, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
	}

	remapped, parseErr := uuid.Parse(newID)
	if parseErr != nil {
		return models.Entity{}, fmt.Errorf("parse remapped id %q: %w", newID, parseErr)
	}

	return r.getByExactID(ctx, remapped)
}

func (r *entityRepository) getByExactID(ctx context.Context, id uuid.UUID) (models.Entity, error) {
	row := r.DB.QueryRowContext(ctx, getEntityByID, id.String())
	entity, err := scanEntity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Entity{}, ErrEntityNotFound
		}
		return models.Entity{}, err
	}
	return entity, nil
}

func (r *entityRepository) UpsertLocal(ctx context.Context, entity models.Entity, status models.SyncStatus) (models.Entity, error) {
	log := logger.FromContext(ctx)

	if status != models.StatusPending && status != models.StatusSynced {
		return models.Entity{}, fmt.Errorf("%w: upsert with status %q", ErrInvalidTransition, status)
	}
	if entity.Payload == nil {
		return models.Entity{}, fmt.Errorf("upsert entity %s: payload is nil", entity.ID)
	}

	payload, err := models.EncodePayload(entity.Payload)
	if err != nil {
		return models.Entity{}, err
	}

	// The pending update refuses conflict rows: a conflict leaves its state
	// only through Resolve, never through a plain write. The synced update
	// matches the caller's observed seq, so a local edit racing a
	// server-response apply is never silently overwritten.
	now := r.now()
	var res sql.Result
	if status == models.StatusPending {
		res, err = r.DB.ExecContext(ctx, updateEntityLocal, string(status), now, string(payload), entity.ID.String())
	} else {
		remoteAt := remoteUpdatedAt(entity, now)
		res, err = r.DB.ExecContext(ctx, updateEntityRemote, string(status), remoteAt, string(payload), entity.ID.String(), entity.Seq)
	}
	if err != nil {
		log.Err(err).
			Str("func", "entityRepository.UpsertLocal").
			Str("id", entity.ID.String()).
			Msg("failed to execute update for entity")
		return models.Entity{}, fmt.Errorf("%w: upsert entity %s: %w", ErrExecutingStatement, entity.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return models.Entity{}, fmt.Errorf("upsert entity %s rows affected: %w", entity.ID, err)
	}

	if affected == 0 {
		current, getErr := r.getByExactID(ctx, entity.ID)
		switch {
		case getErr == nil && (status == models.StatusPending || current.SyncStatus == models.StatusConflict):
			return models.Entity{}, fmt.Errorf("%w: %s -> %s (entity %s resolves via Resolve)", ErrInvalidTransition, current.SyncStatus, status, entity.ID)
		case getErr == nil:
			return models.Entity{}, fmt.Errorf("%w: entity %s is at seq %d, wrote against seq %d", ErrStaleWrite, entity.ID, current.Seq, entity.Seq)
		case !errors.Is(getErr, ErrEntityNotFound):
			return models.Entity{}, getErr
		}
		if err = r.insert(ctx, entity, status, payload, now); err != nil {
			return models.Entity{}, err
		}
	}

	return r.getByExactID(ctx, entity.ID)
}

func (r *entityRepository) insert(ctx context.Context, entity models.Entity, status models.SyncStatus, payload []byte, now time.Time) error {
	log := logger.FromContext(ctx)

	updatedLocal := now
	var updatedRemote any
	if status == models.StatusSynced {
		updatedRemote = remoteUpdatedAt(entity, now)
	} else if entity.UpdatedAtRemote != nil {
		updatedRemote = *entity.UpdatedAtRemote
	}

	_, err := r.DB.ExecContext(ctx, insertEntity,
		entity.ID.String(),
		string(entity.Payload.Kind()),
		string(status),
		"",   // sync_error
		true, // sync_retryable
		0,    // sync_attempts
		nil,  // last_sync_attempt
		updatedLocal,
		updatedRemote,
		entity.Deleted,
		string(payload),
		nil, // remote_payload
	)
	if err != nil {
		log.Err(err).
			Str("func", "entityRepository.insert").
			Str("id", entity.ID.String()).
			Msg("failed to execute insert for entity")
		return fmt.Errorf("insert entity %s: %w", entity.ID, mapConstraint(err))
	}
	return nil
}

// remoteUpdatedAt prefers the payload's own server timestamp, falling back
// to the entity's last known one, then to now.
func remoteUpdatedAt(entity models.Entity, now time.Time) time.Time {
	switch p := entity.Payload.(type) {
	case *models.Note:
		if p.UpdatedAt != nil {
			return *p.UpdatedAt
		}
	case *models.Folder:
		if p.UpdatedAt != nil {
			return *p.UpdatedAt
		}
	}
	if entity.UpdatedAtRemote != nil {
		return *entity.UpdatedAtRemote
	}
	return now
}

func (r *entityRepository) MarkStatus(ctx context.Context, id uuid.UUID, status models.SyncStatus) error {
	log := logger.FromContext(ctx)

	current, err := r.getByExactID(ctx, id)
	if err != nil {
		return err
	}
	if !validStatusEdge(current.SyncStatus, status) {
		return fmt.Errorf("%w: %s -> %s (entity %s)", ErrInvalidTransition, current.SyncStatus, status, id)
	}

	var res sql.Result
	if status == models.StatusSynced {
		res, err = r.DB.ExecContext(ctx, markEntitySynced, r.now(), id.String())
	} else {
		res, err = r.DB.ExecContext(ctx, markEntityStatus, string(status), "", r.now(), id.String())
	}
	if err != nil {
		log.Err(err).
			Str("func", "entityRepository.MarkStatus").
			Str("id", id.String()).
			Str("status", string(status)).
			Msg("failed to execute status transition")
		return fmt.Errorf("%w: mark entity %s status %s: %w", ErrExecutingStatement, id, status, err)
	}

	return requireAffected(res, ErrEntityNotFound)
}

// validStatusEdge encodes the MarkStatus portion of the entity state graph.
// Same-status transitions are accepted as no-ops. Conflict entry goes
// through MarkConflict, conflict exit through Resolve, error entry through
// MarkError.
func validStatusEdge(from, to models.SyncStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case models.StatusPending:
		return to == models.StatusSynced
	case models.StatusError:
		return to == models.StatusPending
	default:
		return false
	}
}

func (r *entityRepository) SetRemoteStamp(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, setEntityRemoteStamp, at, id.String())
	if err != nil {
		return fmt.Errorf("%w: stamp entity %s: %w", ErrExecutingStatement, id, err)
	}
	return requireAffected(res, ErrEntityNotFound)
}

func (r *entityRepository) MarkError(ctx context.Context, id uuid.UUID, syncErr string, retryable bool) error {
	log := logger.FromContext(ctx)

	current, err := r.getByExactID(ctx, id)
	if err != nil {
		return err
	}
	if current.SyncStatus != models.StatusPending && current.SyncStatus != models.StatusError {
		return fmt.Errorf("%w: %s -> error (entity %s)", ErrInvalidTransition, current.SyncStatus, id)
	}

	res, err := r.DB.ExecContext(ctx, markEntityError, syncErr, retryable, r.now(), id.String())
	if err != nil {
		log.Err(err).
			Str("func", "entityRepository.MarkError").
			Str("id", id.String()).
			Msg("failed to record sync failure")
		return fmt.Errorf("%w: mark entity %s error: %w", ErrExecutingStatement, id, err)
	}

	return requireAffected(res, ErrEntityNotFound)
}

func (r *entityRepository) MarkConflict(ctx context.Context, id uuid.UUID, remote models.Payload) error {
	log := logger.FromContext(ctx)

	current, err := r.getByExactID(ctx, id)
	if err != nil {
		return err
	}
	if current.SyncStatus != models.StatusPending && current.SyncStatus != models.StatusError {
		return fmt.Errorf("%w: %s -> conflict (entity %s)", ErrInvalidTransition, current.SyncStatus, id)
	}

	var remotePayload any
	if remote != nil {
		raw, encErr := models.EncodePayload(remote)
		if encErr != nil {
			return encErr
		}
		remotePayload = string(raw)
	}

	res, err := r.DB.ExecContext(ctx, markEntityConflict, r.now(), remotePayload, id.String())
	if err != nil {
		log.Err(err).
			Str("func", "entityRepository.MarkConflict").
			Str("id", id.String()).
			Msg("failed to record conflict")
		return fmt.Errorf("%w: mark entity %s conflict: %w", ErrExecutingStatement, id, err)
	}

	return requireAffected(res, ErrEntityNotFound)
}

func (r *entityRepository) ListPending(ctx context.Context, maxAttempts int) ([]models.Entity, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, listPendingEntities, maxAttempts)
	if err != nil {
		log.Err(err).
			Str("func", "entityRepository.ListPending").
			Msg("failed to execute query for pending entities")
		return nil, fmt.Errorf("%w: list pending entities: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var items []models.Entity
	for rows.Next() {
		entity, scanErr := scanEntity(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, entity)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return items, nil
}

func (r *entityRepository) Remap(ctx context.Context, oldID, newID uuid.UUID) error {
	log := logger.FromContext(ctx)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	// Kind of the moved row, needed for the remap record. A missing row is
	// fine when the same remap was already applied (idempotent replay).
	var kind string
	if err = tx.QueryRowContext(ctx, `SELECT kind FROM entities WHERE id = $1;`, oldID.String()).Scan(&kind); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		var recorded string
		remapErr := tx.QueryRowContext(ctx, getRemappedID, oldID.String()).Scan(&recorded)
		if remapErr == nil && recorded == newID.String() {
			return tx.Commit()
		}
		return ErrEntityNotFound
	}

	if _, err = tx.ExecContext(ctx, rewriteEntityID, newID.String(), oldID.String()); err != nil {
		log.Err(err).
			Str("func", "entityRepository.Remap").
			Str("old_id", oldID.String()).
			Str("new_id", newID.String()).
			Msg("failed to rewrite entity id")
		return fmt.Errorf("%w: remap %s -> %s: %w", ErrExecutingStatement, oldID, newID, mapConstraint(err))
	}

	if _, err = tx.ExecContext(ctx, insertIDRemap, oldID.String(), newID.String(), kind); err != nil {
		return fmt.Errorf("%w: record remap %s -> %s: %w", ErrExecutingStatement, oldID, newID, err)
	}

	if err = rewriteReferences(ctx, tx, oldID, newID); err != nil {
		return err
	}

	// Upload tasks link to notes by id; a task enqueued against the client
	// id must follow the note to its server id, or its processing request
	// and purge check would target a note that no longer exists.
	if _, err = tx.ExecContext(ctx, rewriteUploadNoteID, newID.String(), oldID.String()); err != nil {
		return fmt.Errorf("%w: rewrite upload links %s -> %s: %w", ErrExecutingStatement, oldID, newID, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}
	return nil
}

// rewriteReferences updates every note payload that still references oldID
// (its folder id) to point at newID, inside the caller's transaction.
func rewriteReferences(ctx context.Context, tx *sql.Tx, oldID, newID uuid.UUID) error {
	rows, err := tx.QueryContext(ctx, listNotePayloads)
	if err != nil {
		return fmt.Errorf("%w: list note payloads: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	type rewrite struct {
		id      string
		payload []byte
	}
	var rewrites []rewrite

	for rows.Next() {
		var id, raw string
		if err = rows.Scan(&id, &raw); err != nil {
			return fmt.Errorf("%w: %w", ErrScanningRows, err)
		}

		payload, decErr := models.DecodePayload(models.KindNote, []byte(raw))
		if decErr != nil {
			return decErr
		}
		if !payload.RemapRefs(oldID, newID) {
			continue
		}

		encoded, encErr := models.EncodePayload(payload)
		if encErr != nil {
			return encErr
		}
		rewrites = append(rewrites, rewrite{id: id, payload: encoded})
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	for _, rw := range rewrites {
		if _, err = tx.ExecContext(ctx, rewritePayload, string(rw.payload), rw.id); err != nil {
			return fmt.Errorf("%w: rewrite reference in entity %s: %w", ErrExecutingStatement, rw.id, err)
		}
	}
	return nil
}

func (r *entityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx, tombstoneEntity, r.now(), id.String())
	if err != nil {
		return fmt.Errorf("%w: tombstone entity %s: %w", ErrExecutingStatement, id, err)
	}
	return requireAffected(res, ErrEntityNotFound)
}

func (r *entityRepository) Restore(ctx context.Context, id uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx, restoreEntity, r.now(), id.String())
	if err != nil {
		return fmt.Errorf("%w: restore entity %s: %w", ErrExecutingStatement, id, err)
	}
	return requireAffected(res, ErrEntityNotFound)
}

func (r *entityRepository) Purge(ctx context.Context, id uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx, purgeEntity, id.String())
	if err != nil {
		return fmt.Errorf("%w: purge entity %s: %w", ErrExecutingStatement, id, err)
	}
	return requireAffected(res, ErrEntityNotFound)
}

func (r *entityRepository) Resolve(ctx context.Context, id uuid.UUID, resolution models.Resolution, merged models.Payload) (models.Entity, error) {
	log := logger.FromContext(ctx)

	current, err := r.getByExactID(ctx, id)
	if err != nil {
		return models.Entity{}, err
	}
	if current.SyncStatus != models.StatusConflict {
		return models.Entity{}, fmt.Errorf("%w: entity %s is %s", ErrNotInConflict, id, current.SyncStatus)
	}

	now := r.now()
	switch resolution {
	case models.ResolutionPickLocal:
		_, err = r.DB.ExecContext(ctx, resolvePickLocal, now, id.String())

	case models.ResolutionPickRemote:
		if current.RemotePayload == nil {
			return models.Entity{}, fmt.Errorf("resolve entity %s: no remote payload retained", id)
		}
		remoteAt := now
		if at := payloadUpdatedAt(current.RemotePayload); at != nil {
			remoteAt = *at
		}
		_, err = r.DB.ExecContext(ctx, resolvePickRemote, remoteAt, id.String())

	case models.ResolutionMerged:
		if merged == nil {
			return models.Entity{}, fmt.Errorf("resolve entity %s: merged payload is nil", id)
		}
		var encoded []byte
		encoded, err = models.EncodePayload(merged)
		if err != nil {
			return models.Entity{}, err
		}
		_, err = r.DB.ExecContext(ctx, resolveMerged, now, string(encoded), id.String())

	default:
		return models.Entity{}, fmt.Errorf("resolve entity %s: unknown resolution %q", id, resolution)
	}
	if err != nil {
		log.Err(err).
			Str("func", "entityRepository.Resolve").
			Str("id", id.String()).
			Str("resolution", string(resolution)).
			Msg("failed to resolve conflict")
		return models.Entity{}, fmt.Errorf("%w: resolve entity %s: %w", ErrExecutingStatement, id, err)
	}

	return r.getByExactID(ctx, id)
}

func payloadUpdatedAt(p models.Payload) *time.Time {
	switch v := p.(type) {
	case *models.Note:
		return v.UpdatedAt
	case *models.Folder:
		return v.UpdatedAt
	default:
		return nil
	}
}

func (r *entityRepository) List(ctx context.Context, filter ListFilter) ([]models.Entity, int, error) {
	log := logger.FromContext(ctx)

	conds := listConditions(filter)

	countSQL, countArgs, err := sq.Select("COUNT(*)").From("entities").Where(conds).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	var total int
	if err = r.DB.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: count entities: %w", ErrExecutingQuery, err)
	}

	builder := sq.Select(
		"id", "kind", "seq", "sync_status", "sync_error", "sync_retryable",
		"sync_attempts", "last_sync_attempt", "updated_at_local",
		"updated_at_remote", "deleted", "payload", "remote_payload",
	).
		From("entities").
		Where(conds).
		OrderBy("updated_at_local DESC, seq DESC")

	if filter.PerPage > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		builder = builder.
			Limit(uint64(filter.PerPage)).
			Offset(uint64((page - 1) * filter.PerPage))
	}

	querySQL, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, querySQL, args...)
	if err != nil {
		log.Err(err).
			Str("func", "entityRepository.List").
			Msg("failed to execute list query")
		return nil, 0, fmt.Errorf("%w: list entities: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var items []models.Entity
	for rows.Next() {
		entity, scanErr := scanEntity(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		items = append(items, entity)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return items, total, nil
}

func listConditions(filter ListFilter) sq.And {
	conds := sq.And{}
	if !filter.IncludeDeleted {
		conds = append(conds, sq.Eq{"deleted": 0})
	}
	if filter.Kind != "" {
		conds = append(conds, sq.Eq{"kind": string(filter.Kind)})
	}
	if filter.FolderID != nil {
		conds = append(conds, sq.Expr("json_extract(payload, '$.folder_id') = ?", filter.FolderID.String()))
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		conds = append(conds, sq.Or{
			sq.Expr("json_extract(payload, '$.title') LIKE ?", like),
			sq.Expr("json_extract(payload, '$.transcript') LIKE ?", like),
		})
	}
	if filter.IsPinned != nil {
		conds = append(conds, sq.Expr("json_extract(payload, '$.is_pinned') = ?", *filter.IsPinned))
	}
	if filter.IsArchived != nil {
		conds = append(conds, sq.Expr("json_extract(payload, '$.is_archived') = ?", *filter.IsArchived))
	}
	if len(conds) == 0 {
		conds = append(conds, sq.Expr("1 = 1"))
	}
	return conds
}

func (r *entityRepository) Counts(ctx context.Context) (SyncCounts, error) {
	var counts SyncCounts
	row := r.DB.QueryRowContext(ctx, countEntityStatuses)
	if err := row.Scan(&counts.PendingChanges, &counts.Conflicts); err != nil {
		return SyncCounts{}, fmt.Errorf("%w: count entity statuses: %w", ErrScanningRow, err)
	}
	return counts, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (models.Entity, error) {
	var (
		entity        models.Entity
		id, kind      string
		status        string
		lastAttempt   sql.NullTime
		updatedRemote sql.NullTime
		payload       string
		remotePayload sql.NullString
	)

	err := row.Scan(
		&id,
		&kind,
		&entity.Seq,
		&status,
		&entity.SyncError,
		&entity.SyncRetryable,
		&entity.SyncAttempts,
		&lastAttempt,
		&entity.UpdatedAtLocal,
		&updatedRemote,
		&entity.Deleted,
		&payload,
		&remotePayload,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Entity{}, err
		}
		return models.Entity{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	entity.ID, err = uuid.Parse(id)
	if err != nil {
		return models.Entity{}, fmt.Errorf("parse entity id %q: %w", id, err)
	}
	entity.Kind = models.Kind(kind)
	entity.SyncStatus = models.SyncStatus(status)
	if lastAttempt.Valid {
		t := lastAttempt.Time
		entity.LastSyncAttempt = &t
	}
	if updatedRemote.Valid {
		t := updatedRemote.Time
		entity.UpdatedAtRemote = &t
	}

	entity.Payload, err = models.DecodePayload(entity.Kind, []byte(payload))
	if err != nil {
		return models.Entity{}, err
	}
	if remotePayload.Valid && remotePayload.String != "" {
		entity.RemotePayload, err = models.DecodePayload(entity.Kind, []byte(remotePayload.String))
		if err != nil {
			return models.Entity{}, err
		}
	}

	return entity, nil
}

func requireAffected(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
