package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/glideapp/glide-sync/internal/adapter"
	"github.com/glideapp/glide-sync/internal/store"
	"github.com/glideapp/glide-sync/internal/workers"
	"github.com/glideapp/glide-sync/models"
)

// runPass executes one complete drain-and-reconcile cycle. Offline, it
// only nudges the monitor: charging failed attempts against entities while
// the radio is down would burn through the backoff budget for nothing.
func (o *Orchestrator) runPass(ctx context.Context) {
	log := o.logger.GetChildLogger()

	if !o.network.Online() {
		o.network.ForceCheck()
		return
	}

	// An explicit trigger is also how the user retries after fixing the
	// token, so every pass starts un-paused.
	o.mu.Lock()
	o.authPaused = false
	o.mu.Unlock()

	o.setState(models.SyncSyncing)
	err := o.pass(ctx)
	o.finishPass(err)
	o.setState(models.SyncIdle)

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Str("func", "sync.runPass").Msg("sync pass aborted")
		return
	}
	log.Info().Str("func", "sync.runPass").Msg("sync pass finished")
}

func (o *Orchestrator) pass(ctx context.Context) error {
	entities, err := o.entities.ListPending(ctx, o.cfg.MaxAttempts)
	if err != nil {
		return err
	}
	tasks, err := o.queue.ListEligible(ctx)
	if err != nil {
		return err
	}

	now := o.now()
	eligible := entities[:0]
	for _, e := range entities {
		if !o.policy.Eligible(e.SyncAttempts, e.LastSyncAttempt, now) {
			continue
		}
		eligible = append(eligible, e)
	}

	o.startProgress(len(eligible) + len(tasks))

	// Entities first: uploads may link results onto notes, and a note
	// create must reach the server before its processing result lands.
	pool := workers.NewPool(ctx, o.cfg.Workers)
	for _, e := range eligible {
		id := e.ID
		label := fmt.Sprintf("syncing %s %s", e.Kind, id)
		pool.GoKeyed(id.String(), func(ctx context.Context) error {
			o.noteOperation(label)
			defer o.advanceProgress()
			return o.syncEntity(ctx, id)
		})
	}
	if err = pool.Wait(); err != nil {
		return err
	}

	pool = workers.NewPool(ctx, o.cfg.Workers)
	for _, t := range tasks {
		id := t.ID
		label := fmt.Sprintf("uploading %s", t.LocalPath)
		pool.GoKeyed(id.String(), func(ctx context.Context) error {
			o.noteOperation(label)
			defer o.advanceProgress()
			err := o.queue.Transfer(ctx, id)
			if errors.Is(err, adapter.ErrUnauthorized) {
				o.pauseAuth(err)
			}
			return err
		})
	}
	if err = pool.Wait(); err != nil {
		return err
	}

	if err = o.refreshRemote(ctx); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return err
		case errors.Is(err, adapter.ErrUnauthorized):
			o.pauseAuth(err)
			return err
		default:
			// Best effort: a failed refresh never fails the drained pass.
			o.logger.Warn().Err(err).Str("func", "sync.pass").
				Msg("cannot refresh from server, will retry next pass")
			return nil
		}
	}
	return nil
}

// syncEntity pushes one entity's pending mutation. The drain snapshot is
// not trusted: the current local value is re-fetched immediately before
// the network call, so an edit racing the pass ships its own content.
// Failures of a single entity are contained; only auth rejections, storage
// failures and a dying context abort the pass.
func (o *Orchestrator) syncEntity(ctx context.Context, id uuid.UUID) error {
	entity, err := o.entities.Get(ctx, id)
	if errors.Is(err, store.ErrEntityNotFound) {
		return nil // purged since the drain
	}
	if err != nil {
		return err
	}
	if !entity.Retryable(o.cfg.MaxAttempts) {
		return nil
	}

	// Failed rows re-enter pending before the attempt; every other status
	// transition is committed only after the network call returned.
	if entity.SyncStatus == models.StatusError {
		if err = o.entities.MarkStatus(ctx, id, models.StatusPending); err != nil {
			return err
		}
		entity.SyncStatus = models.StatusPending
	}

	switch {
	case entity.Deleted:
		err = o.pushDelete(ctx, entity)
	case entity.UpdatedAtRemote == nil:
		err = o.pushCreate(ctx, entity)
	default:
		err = o.pushUpdate(ctx, entity)
	}
	return o.classify(ctx, entity, err)
}

func (o *Orchestrator) pushCreate(ctx context.Context, entity models.Entity) error {
	switch p := entity.Payload.(type) {
	case *models.Note:
		created, err := o.api.CreateNote(ctx, *p)
		if err != nil {
			return err
		}
		return o.adopt(ctx, entity, &created)
	case *models.Folder:
		created, err := o.api.CreateFolder(ctx, *p)
		if err != nil {
			return err
		}
		return o.adopt(ctx, entity, &created)
	default:
		return fmt.Errorf("create entity %s: unknown kind %q", entity.ID, entity.Kind)
	}
}

func (o *Orchestrator) pushUpdate(ctx context.Context, entity models.Entity) error {
	switch p := entity.Payload.(type) {
	case *models.Note:
		updated, err := o.api.UpdateNote(ctx, entity.ID, p.AsPatch(), entity.UpdatedAtRemote)
		if errors.Is(err, adapter.ErrNotFound) {
			// The server side was trashed by another device. A pending
			// local edit resurrects the note rather than dying permanent.
			restored, restoreErr := o.api.RestoreNote(ctx, entity.ID)
			if restoreErr != nil {
				return err
			}
			o.logger.Info().Str("func", "sync.pushUpdate").
				Str("id", entity.ID.String()).
				Msg("remotely trashed note restored to carry local edit")
			updated, err = o.api.UpdateNote(ctx, entity.ID, p.AsPatch(), restored.UpdatedAt)
		}
		if err != nil {
			return err
		}
		return o.adopt(ctx, entity, &updated)
	case *models.Folder:
		updated, err := o.api.UpdateFolder(ctx, entity.ID, p.AsPatch(), entity.UpdatedAtRemote)
		if err != nil {
			return err
		}
		return o.adopt(ctx, entity, &updated)
	default:
		return fmt.Errorf("update entity %s: unknown kind %q", entity.ID, entity.Kind)
	}
}

// pushDelete confirms a tombstone with the server, then purges the row.
// A tombstone the server never saw is purged without a network call; a 404
// counts as confirmation.
func (o *Orchestrator) pushDelete(ctx context.Context, entity models.Entity) error {
	if entity.UpdatedAtRemote != nil {
		var err error
		switch entity.Kind {
		case models.KindNote:
			err = o.api.DeleteNote(ctx, entity.ID, false)
		case models.KindFolder:
			err = o.api.DeleteFolder(ctx, entity.ID)
		default:
			return fmt.Errorf("delete entity %s: unknown kind %q", entity.ID, entity.Kind)
		}
		if err != nil && !errors.Is(err, adapter.ErrNotFound) {
			return err
		}
	}
	return o.entities.Purge(ctx, entity.ID)
}

// adopt applies a successful server response back to the store. When a
// local edit advanced the entity past the drained snapshot, the newer
// content stays pending and only the server timestamp (and id) is
// recorded; the next pass ships the newer edit.
func (o *Orchestrator) adopt(ctx context.Context, snapshot models.Entity, server models.Payload) error {
	id := snapshot.ID
	if serverID := server.EntityID(); serverID != uuid.Nil && serverID != id {
		if err := o.entities.Remap(ctx, id, serverID); err != nil {
			return err
		}
		o.logger.Info().Str("func", "sync.adopt").
			Str("client_id", id.String()).
			Str("server_id", serverID.String()).
			Msg("server id adopted")
		id = serverID
	}

	current, err := o.entities.Get(ctx, id)
	if err != nil {
		return err
	}

	if current.Seq != snapshot.Seq {
		return o.stampOnly(ctx, id, server)
	}

	current.ID = id
	current.Payload = server
	_, err = o.entities.UpsertLocal(ctx, current, models.StatusSynced)
	if errors.Is(err, store.ErrStaleWrite) {
		// An edit landed between the re-fetch and the write. Same outcome
		// as a seq mismatch seen up front: the edit stays pending.
		return o.stampOnly(ctx, id, server)
	}
	return err
}

func (o *Orchestrator) stampOnly(ctx context.Context, id uuid.UUID, server models.Payload) error {
	if at := payloadUpdatedAt(server); at != nil {
		return o.entities.SetRemoteStamp(ctx, id, *at)
	}
	return nil
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

// classify maps a push outcome onto the entity state machine. Conflicts
// and per-entity failures are contained; auth, storage and cancellation
// abort the pass.
func (o *Orchestrator) classify(ctx context.Context, entity models.Entity, err error) error {
	log := o.logger.GetChildLogger()

	switch {
	case err == nil:
		o.network.Report(true)
		return nil

	case errors.Is(err, context.Canceled):
		return err

	case errors.Is(err, adapter.ErrUnauthorized):
		o.pauseAuth(err)
		return err

	case errors.Is(err, adapter.ErrConflict):
		var remote models.Payload
		var conflict *adapter.ConflictError
		if errors.As(err, &conflict) && len(conflict.Server) > 0 {
			if p, decErr := models.DecodePayload(entity.Kind, conflict.Server); decErr == nil {
				remote = p
			}
		}
		if markErr := o.entities.MarkConflict(ctx, entity.ID, remote); markErr != nil {
			return markErr
		}
		log.Warn().Str("func", "sync.classify").
			Str("id", entity.ID.String()).
			Msg("server advanced independently, conflict recorded")
		return nil

	case errors.Is(err, adapter.ErrValidation) || errors.Is(err, adapter.ErrNotFound):
		log.Warn().Err(err).Str("func", "sync.classify").
			Str("id", entity.ID.String()).
			Msg("server rejected entity, no auto-retry")
		return o.entities.MarkError(ctx, entity.ID, err.Error(), false)

	case errors.Is(err, adapter.ErrUnavailable):
		o.network.ForceCheck()
		log.Debug().Err(err).Str("func", "sync.classify").
			Str("id", entity.ID.String()).
			Int("attempts", entity.SyncAttempts+1).
			Msg("transient failure, will retry under backoff")
		return o.entities.MarkError(ctx, entity.ID, err.Error(), true)

	default:
		return err
	}
}
