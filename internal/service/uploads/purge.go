package uploads

import (
	"context"
	"errors"
	"os"
	"time"
)

// PurgeLoop periodically reclaims local audio files of completed tasks.
// A file is removed only once its task completed AND the linked note is
// durably synced, so a conflict resolution or re-sync never needs a file
// that is already gone.
func (s *Service) PurgeLoop(ctx context.Context) error {
	interval := s.cfg.PurgeInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.purgeOnce(ctx)
		}
	}
}

func (s *Service) purgeOnce(ctx context.Context) {
	log := s.logger.GetChildLogger()

	tasks, err := s.tasks.ListPurgeable(ctx)
	if err != nil {
		log.Error().Err(err).Str("func", "uploads.purgeOnce").Msg("cannot list purgeable tasks")
		return
	}

	for _, task := range tasks {
		if err := os.Remove(task.LocalPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("func", "uploads.purgeOnce").
				Str("task_id", task.ID.String()).
				Str("path", task.LocalPath).
				Msg("cannot remove completed recording")
			continue
		}
		if err := s.tasks.ClearLocalPath(ctx, task.ID); err != nil {
			log.Error().Err(err).Str("func", "uploads.purgeOnce").
				Str("task_id", task.ID.String()).
				Msg("cannot record reclaimed file")
			continue
		}
		log.Debug().Str("func", "uploads.purgeOnce").
			Str("task_id", task.ID.String()).
			Str("path", task.LocalPath).
			Msg("completed recording reclaimed")

		// Sidecar follows its recording.
		_ = os.Remove(task.LocalPath + sidecarSuffix)
	}
}
