package uploads

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/glideapp/glide-sync/internal/adapter"
	"github.com/glideapp/glide-sync/internal/backoff"
	"github.com/glideapp/glide-sync/internal/config"
	"github.com/glideapp/glide-sync/internal/logger"
	"github.com/glideapp/glide-sync/internal/store"
	"github.com/glideapp/glide-sync/internal/utils"
	"github.com/glideapp/glide-sync/models"
)

// Service implements Queue over the task repository and the API adapter.
type Service struct {
	tasks    store.UploadTaskRepository
	entities store.EntityRepository
	api      adapter.APIClient
	cfg      config.Uploads
	policy   backoff.Policy
	ids      *utils.UUIDGenerator
	logger   *logger.Logger

	mu       sync.Mutex
	inflight map[uuid.UUID]context.CancelFunc
	onChange func()

	now func() time.Time
}

func NewService(tasks store.UploadTaskRepository, entities store.EntityRepository, api adapter.APIClient, cfg config.Uploads, log *logger.Logger) *Service {
	return &Service{
		tasks:    tasks,
		entities: entities,
		api:      api,
		cfg:      cfg,
		policy:   backoff.Policy{Base: cfg.BackoffBase, Cap: cfg.BackoffCap},
		ids:      utils.NewUUIDGenerator(),
		logger:   log,
		inflight: make(map[uuid.UUID]context.CancelFunc),
		now:      time.Now,
	}
}

// SetOnChange registers a hook called after any queue mutation, used to
// nudge the orchestrator and the status projection.
func (s *Service) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

func (s *Service) Enqueue(ctx context.Context, path string, noteID *uuid.UUID) (models.UploadTask, error) {
	log := logger.FromContext(ctx)

	abs, err := filepath.Abs(path)
	if err != nil {
		return models.UploadTask{}, fmt.Errorf("resolve recording path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return models.UploadTask{}, fmt.Errorf("stat recording: %w", err)
	}
	if info.IsDir() {
		return models.UploadTask{}, fmt.Errorf("enqueue %s: is a directory", abs)
	}

	task, err := s.tasks.Enqueue(ctx, models.UploadTask{
		ID:        s.ids.Generate(),
		LocalPath: abs,
		FileSize:  info.Size(),
		NoteID:    noteID,
	})
	if err != nil {
		return models.UploadTask{}, err
	}

	log.Info().Str("func", "uploads.Enqueue").
		Str("task_id", task.ID.String()).
		Str("path", abs).
		Int64("bytes", task.FileSize).
		Msg("recording enqueued")

	s.notifyChange()
	return task, nil
}

func (s *Service) List(ctx context.Context) ([]models.UploadTask, error) {
	return s.tasks.List(ctx)
}

func (s *Service) ListEligible(ctx context.Context) ([]models.UploadTask, error) {
	tasks, err := s.tasks.ListPending(ctx, s.cfg.MaxAttempts)
	if err != nil {
		return nil, err
	}

	now := s.now()
	eligible := tasks[:0]
	for _, t := range tasks {
		if t.Status == models.UploadFailed && !s.policy.Eligible(t.Attempts, t.UpdatedAt, now) {
			continue
		}
		eligible = append(eligible, t)
	}
	return eligible, nil
}

// Transfer runs the upload procedure for one task. The status transition
// for a failed attempt is committed only after the network call returned,
// so interrupting the parent context leaves the task in its pre-attempt
// state (reset to pending here) without charging an attempt.
func (s *Service) Transfer(ctx context.Context, id uuid.UUID) error {
	log := s.logger.GetChildLogger()

	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	if !task.Retryable(s.cfg.MaxAttempts) {
		return nil
	}

	taskCtx, cancel := context.WithCancel(ctx)
	s.track(id, cancel)
	defer s.untrack(id)
	defer cancel()

	err = s.transfer(taskCtx, task)
	switch {
	case err == nil:
		s.notifyChange()
		return nil

	case errors.Is(err, context.Canceled):
		// Interrupted, not failed. Cancel() handles the user-initiated
		// case itself; a dying pass resets the task here so it is picked
		// up again next pass.
		if ctx.Err() != nil {
			if resetErr := s.tasks.MarkStatus(context.WithoutCancel(ctx), id, models.UploadPending); resetErr != nil {
				log.Error().Err(resetErr).Str("func", "uploads.Transfer").
					Str("task_id", id.String()).
					Msg("cannot reset interrupted task")
			}
			return err
		}
		return nil

	case errors.Is(err, adapter.ErrUnauthorized):
		// Do not charge the task an attempt for a rejected token.
		if resetErr := s.tasks.MarkStatus(ctx, id, models.UploadPending); resetErr != nil {
			log.Error().Err(resetErr).Str("func", "uploads.Transfer").
				Str("task_id", id.String()).
				Msg("cannot reset task after auth rejection")
		}
		return err

	default:
		log.Warn().Err(err).Str("func", "uploads.Transfer").
			Str("task_id", id.String()).
			Int("attempts", task.Attempts+1).
			Msg("upload attempt failed")
		if markErr := s.tasks.MarkFailed(ctx, id, err.Error()); markErr != nil {
			return markErr
		}
		s.notifyChange()
		return nil
	}
}

func (s *Service) transfer(ctx context.Context, task models.UploadTask) error {
	if err := s.tasks.MarkStatus(ctx, task.ID, models.UploadUploading); err != nil {
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(task.LocalPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	dest, err := s.api.UploadURL(ctx, models.UploadURLRequest{
		Filename:    filepath.Base(task.LocalPath),
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("request upload destination: %w", err)
	}
	if err = s.tasks.SetRemoteKey(ctx, task.ID, dest.Key); err != nil {
		return err
	}

	if err = s.api.UploadFile(ctx, dest.UploadURL, task.LocalPath, contentType, s.progressFunc(ctx, task.ID)); err != nil {
		return fmt.Errorf("put recording: %w", err)
	}

	if err = s.tasks.MarkStatus(ctx, task.ID, models.UploadProcessing); err != nil {
		return err
	}

	proc, err := s.api.ProcessVoice(ctx, models.ProcessRequest{Key: dest.Key, NoteID: task.NoteID})
	if err != nil {
		return fmt.Errorf("process recording: %w", err)
	}

	if err = s.tasks.MarkCompleted(ctx, task.ID, proc.AudioURL); err != nil {
		return err
	}

	if err = s.linkNote(ctx, proc); err != nil {
		// The upload itself is durable; linkage retries on the next fetch.
		s.logger.Warn().Err(err).Str("func", "uploads.transfer").
			Str("task_id", task.ID.String()).
			Str("note_id", proc.NoteID.String()).
			Msg("cannot link processed recording onto note")
	}
	return nil
}

// progressFunc persists transferred fractions, coarsened to 2% steps so a
// large recording does not turn every read chunk into a row update.
func (s *Service) progressFunc(ctx context.Context, id uuid.UUID) adapter.ProgressFunc {
	var lastStored float64
	return func(sent, total int64) {
		if total <= 0 {
			return
		}
		fraction := float64(sent) / float64(total)
		if fraction < 1 && fraction-lastStored < 0.02 {
			return
		}
		lastStored = fraction
		if err := s.tasks.UpdateProgress(ctx, id, fraction); err != nil {
			s.logger.Debug().Err(err).Str("func", "uploads.progressFunc").
				Str("task_id", id.String()).
				Msg("cannot persist progress")
		}
	}
}

// linkNote applies the processing result onto the linked note as a
// server-originated update. Server enrichment never clobbers local text:
// transcript, summary and tags land only where the local copy is empty,
// while the audio URL and duration always follow the server.
func (s *Service) linkNote(ctx context.Context, proc models.ProcessResponse) error {
	entity, err := s.entities.Get(ctx, proc.NoteID)
	if errors.Is(err, store.ErrEntityNotFound) {
		// The server created a fresh note from the recording.
		_, err = s.entities.UpsertLocal(ctx, models.Entity{
			ID:   proc.NoteID,
			Kind: models.KindNote,
			Payload: &models.Note{
				ID:         proc.NoteID,
				FolderID:   proc.FolderID,
				Title:      proc.Title,
				Transcript: proc.Transcript,
				Summary:    proc.Summary,
				Tags:       proc.Tags,
				Duration:   proc.Duration,
				AudioURL:   proc.AudioURL,
				CreatedAt:  proc.CreatedAt,
				UpdatedAt:  proc.UpdatedAt,
			},
		}, models.StatusSynced)
		return err
	}
	if err != nil {
		return err
	}

	if entity.SyncStatus == models.StatusConflict {
		// Conflicts are terminal until resolved; the server copy already
		// carries the processing result.
		return nil
	}

	note, ok := models.PayloadAs[*models.Note](entity)
	if !ok {
		return fmt.Errorf("link recording: entity %s is not a note", entity.ID)
	}

	note.AudioURL = proc.AudioURL
	note.Duration = proc.Duration
	if note.Transcript == "" {
		note.Transcript = proc.Transcript
	}
	if note.Summary == "" {
		note.Summary = proc.Summary
	}
	if len(note.Tags) == 0 {
		note.Tags = proc.Tags
	}

	status := models.StatusPending
	if entity.SyncStatus == models.StatusSynced {
		status = models.StatusSynced
		if proc.UpdatedAt != nil {
			note.UpdatedAt = proc.UpdatedAt
		}
	}

	entity.Payload = note
	_, err = s.entities.UpsertLocal(ctx, entity, status)
	return err
}

func (s *Service) RetryAll(ctx context.Context) (int, error) {
	n, err := s.tasks.RetryAll(ctx, s.cfg.MaxAttempts)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Str("func", "uploads.RetryAll").Int("reset", n).Msg("failed uploads re-queued")
		s.notifyChange()
	}
	return n, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID, discard bool) error {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	cancel, running := s.inflight[id]
	s.mu.Unlock()
	if running {
		cancel()
	}

	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return err
	}

	// A key without completion means a partial remote object may exist.
	if task.RemoteKey != "" && task.Status != models.UploadCompleted {
		if delErr := s.api.DeleteObject(ctx, task.RemoteKey); delErr != nil {
			log.Warn().Err(delErr).Str("func", "uploads.Cancel").
				Str("task_id", id.String()).
				Str("key", task.RemoteKey).
				Msg("cannot delete partial remote object")
		}
	}

	if discard {
		if err = s.tasks.Delete(ctx, id); err != nil {
			return err
		}
		if task.LocalPath != "" {
			if rmErr := os.Remove(task.LocalPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				log.Warn().Err(rmErr).Str("func", "uploads.Cancel").
					Str("path", task.LocalPath).
					Msg("cannot remove discarded recording")
			}
		}
		s.notifyChange()
		return nil
	}

	if task.Status == models.UploadCompleted {
		// Nothing to abort; the durable object stays.
		return nil
	}

	if err = s.tasks.SetRemoteKey(ctx, id, ""); err != nil {
		return err
	}
	if err = s.tasks.MarkStatus(ctx, id, models.UploadPending); err != nil {
		return err
	}
	s.notifyChange()
	return nil
}

func (s *Service) TotalPendingBytes(ctx context.Context) (int64, error) {
	return s.tasks.TotalPendingBytes(ctx)
}

func (s *Service) CountPending(ctx context.Context) (int, error) {
	return s.tasks.CountPending(ctx)
}

func (s *Service) track(id uuid.UUID, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight[id] = cancel
}

func (s *Service) untrack(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

func (s *Service) notifyChange() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
