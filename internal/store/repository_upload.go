package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/glideapp/glide-sync/internal/logger"
	"github.com/glideapp/glide-sync/models"
)

type uploadTaskRepository struct {
	*DB
	logger *logger.Logger
	now    func() time.Time
}

func NewUploadTaskRepository(db *DB, logger *logger.Logger) UploadTaskRepository {
	return &uploadTaskRepository{
		DB:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *uploadTaskRepository) Enqueue(ctx context.Context, task models.UploadTask) (models.UploadTask, error) {
	log := logger.FromContext(ctx)

	if task.ID == uuid.Nil {
		return models.UploadTask{}, fmt.Errorf("enqueue upload task: id is nil")
	}
	if task.Status == "" {
		task.Status = models.UploadPending
	}
	if task.EnqueuedAt.IsZero() {
		task.EnqueuedAt = r.now()
	}

	var noteID any
	if task.NoteID != nil {
		noteID = task.NoteID.String()
	}

	_, err := r.DB.ExecContext(ctx, insertUploadTask,
		task.ID.String(),
		task.LocalPath,
		task.FileSize,
		string(task.Status),
		task.Progress,
		task.LastError,
		task.Attempts,
		noteID,
		task.RemoteKey,
		task.RemoteURL,
		task.EnqueuedAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "uploadTaskRepository.Enqueue").
			Str("id", task.ID.String()).
			Str("path", task.LocalPath).
			Msg("failed to insert upload task")
		return models.UploadTask{}, fmt.Errorf("%w: enqueue upload task %s: %w", ErrExecutingStatement, task.ID, mapConstraint(err))
	}

	return r.Get(ctx, task.ID)
}

func (r *uploadTaskRepository) Get(ctx context.Context, id uuid.UUID) (models.UploadTask, error) {
	row := r.DB.QueryRowContext(ctx, getUploadTaskByID, id.String())
	task, err := scanUploadTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UploadTask{}, ErrTaskNotFound
		}
		return models.UploadTask{}, err
	}
	return task, nil
}

func (r *uploadTaskRepository) List(ctx context.Context) ([]models.UploadTask, error) {
	return r.queryTasks(ctx, listUploadTasks)
}

func (r *uploadTaskRepository) ListPending(ctx context.Context, maxAttempts int) ([]models.UploadTask, error) {
	return r.queryTasks(ctx, listPendingUploadTasks, maxAttempts)
}

func (r *uploadTaskRepository) ListPurgeable(ctx context.Context) ([]models.UploadTask, error) {
	return r.queryTasks(ctx, listPurgeableUploads)
}

func (r *uploadTaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]models.UploadTask, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "uploadTaskRepository.queryTasks").
			Msg("failed to execute upload task query")
		return nil, fmt.Errorf("%w: query upload tasks: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var tasks []models.UploadTask
	for rows.Next() {
		task, scanErr := scanUploadTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tasks = append(tasks, task)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return tasks, nil
}

func (r *uploadTaskRepository) UpdateProgress(ctx context.Context, id uuid.UUID, fraction float64) error {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	res, err := r.DB.ExecContext(ctx, updateUploadProgress, fraction, r.now(), id.String())
	if err != nil {
		return fmt.Errorf("%w: update progress for task %s: %w", ErrExecutingStatement, id, err)
	}
	return requireAffected(res, ErrTaskNotFound)
}

func (r *uploadTaskRepository) MarkStatus(ctx context.Context, id uuid.UUID, status models.UploadStatus) error {
	log := logger.FromContext(ctx)

	var progress float64
	switch status {
	case models.UploadPending, models.UploadUploading:
		progress = 0 // a fresh attempt starts from scratch
	case models.UploadProcessing:
		progress = 1 // all bytes transferred, awaiting transcription
	default:
		return fmt.Errorf("mark upload task %s: status %q goes through a dedicated method", id, status)
	}

	res, err := r.DB.ExecContext(ctx, markUploadStatus, string(status), progress, r.now(), id.String())
	if err != nil {
		log.Err(err).
			Str("func", "uploadTaskRepository.MarkStatus").
			Str("id", id.String()).
			Str("status", string(status)).
			Msg("failed to execute upload status transition")
		return fmt.Errorf("%w: mark upload task %s status %s: %w", ErrExecutingStatement, id, status, err)
	}

	return requireAffected(res, ErrTaskNotFound)
}

func (r *uploadTaskRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	log := logger.FromContext(ctx)

	res, err := r.DB.ExecContext(ctx, markUploadFailed, reason, r.now(), id.String())
	if err != nil {
		log.Err(err).
			Str("func", "uploadTaskRepository.MarkFailed").
			Str("id", id.String()).
			Msg("failed to record upload failure")
		return fmt.Errorf("%w: mark upload task %s failed: %w", ErrExecutingStatement, id, err)
	}

	return requireAffected(res, ErrTaskNotFound)
}

func (r *uploadTaskRepository) SetRemoteKey(ctx context.Context, id uuid.UUID, key string) error {
	res, err := r.DB.ExecContext(ctx, setUploadRemoteKey, key, r.now(), id.String())
	if err != nil {
		return fmt.Errorf("%w: set remote key for task %s: %w", ErrExecutingStatement, id, err)
	}
	return requireAffected(res, ErrTaskNotFound)
}

func (r *uploadTaskRepository) MarkCompleted(ctx context.Context, id uuid.UUID, remoteURL string) error {
	log := logger.FromContext(ctx)

	res, err := r.DB.ExecContext(ctx, markUploadCompleted, remoteURL, r.now(), id.String())
	if err != nil {
		log.Err(err).
			Str("func", "uploadTaskRepository.MarkCompleted").
			Str("id", id.String()).
			Msg("failed to complete upload task")
		return fmt.Errorf("%w: complete upload task %s: %w", ErrExecutingStatement, id, err)
	}

	return requireAffected(res, ErrTaskNotFound)
}

func (r *uploadTaskRepository) RetryAll(ctx context.Context, maxAttempts int) (int, error) {
	res, err := r.DB.ExecContext(ctx, retryAllUploads, r.now(), maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("%w: retry failed upload tasks: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("retry upload tasks rows affected: %w", err)
	}
	return int(affected), nil
}

func (r *uploadTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx, deleteUploadTask, id.String())
	if err != nil {
		return fmt.Errorf("%w: delete upload task %s: %w", ErrExecutingStatement, id, err)
	}
	return requireAffected(res, ErrTaskNotFound)
}

func (r *uploadTaskRepository) TotalPendingBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx, totalPendingUploadBytes).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: total pending upload bytes: %w", ErrScanningRow, err)
	}
	return total, nil
}

func (r *uploadTaskRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	if err := r.DB.QueryRowContext(ctx, countPendingUploads).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count pending uploads: %w", ErrScanningRow, err)
	}
	return count, nil
}

func (r *uploadTaskRepository) ClearLocalPath(ctx context.Context, id uuid.UUID) error {
	res, err := r.DB.ExecContext(ctx, clearUploadLocalPath, r.now(), id.String())
	if err != nil {
		return fmt.Errorf("%w: clear local path for task %s: %w", ErrExecutingStatement, id, err)
	}
	return requireAffected(res, ErrTaskNotFound)
}

func scanUploadTask(row rowScanner) (models.UploadTask, error) {
	var (
		task      models.UploadTask
		id        string
		status    string
		noteID    sql.NullString
		updatedAt sql.NullTime
	)

	err := row.Scan(
		&id,
		&task.LocalPath,
		&task.FileSize,
		&status,
		&task.Progress,
		&task.LastError,
		&task.Attempts,
		&noteID,
		&task.RemoteKey,
		&task.RemoteURL,
		&task.EnqueuedAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UploadTask{}, err
		}
		return models.UploadTask{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	task.ID, err = uuid.Parse(id)
	if err != nil {
		return models.UploadTask{}, fmt.Errorf("parse upload task id %q: %w", id, err)
	}
	task.Status = models.UploadStatus(status)
	if noteID.Valid && noteID.String != "" {
		ref, parseErr := uuid.Parse(noteID.String)
		if parseErr != nil {
			return models.UploadTask{}, fmt.Errorf("parse linked note id %q: %w", noteID.String, parseErr)
		}
		task.NoteID = &ref
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		task.UpdatedAt = &t
	}

	return task, nil
}
