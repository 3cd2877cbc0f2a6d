package sync

import (
	"context"
	"errors"

	"github.com/glideapp/glide-sync/internal/store"
	"github.com/glideapp/glide-sync/models"
)

// pullPageSize bounds one notes page during the refresh phase.
const pullPageSize = 100

// refreshRemote pulls changes other devices pushed through the same server
// down into the local store, so the local copy converges without waiting
// for a local mutation. Folders first: a pulled note may reference a folder
// the local store has never seen.
func (o *Orchestrator) refreshRemote(ctx context.Context) error {
	folders, err := o.api.ListFolders(ctx)
	if err != nil {
		return err
	}
	for i := range folders {
		if err = o.adoptRemote(ctx, &folders[i]); err != nil {
			return err
		}
	}

	for page := 1; ; page++ {
		list, err := o.api.ListNotes(ctx, models.NoteListParams{Page: page, PerPage: pullPageSize})
		if err != nil {
			return err
		}
		for i := range list.Items {
			if err = o.adoptRemote(ctx, &list.Items[i]); err != nil {
				return err
			}
		}
		if len(list.Items) == 0 || page*pullPageSize >= list.Total {
			return nil
		}
	}
}

// adoptRemote applies one pulled server item. Only rows carrying no local
// work are touched: pending, error and conflict rows keep their state and
// reconcile through the push path. Unknown items are inserted as synced.
func (o *Orchestrator) adoptRemote(ctx context.Context, server models.Payload) error {
	local, err := o.entities.Get(ctx, server.EntityID())
	if errors.Is(err, store.ErrEntityNotFound) {
		_, err = o.entities.UpsertLocal(ctx, models.Entity{
			ID:      server.EntityID(),
			Kind:    server.Kind(),
			Payload: server,
		}, models.StatusSynced)
		return err
	}
	if err != nil {
		return err
	}
	if local.SyncStatus != models.StatusSynced {
		return nil
	}

	at := payloadUpdatedAt(server)
	if at == nil || (local.UpdatedAtRemote != nil && !at.After(*local.UpdatedAtRemote)) {
		return nil
	}

	local.Payload = server
	_, err = o.entities.UpsertLocal(ctx, local, models.StatusSynced)
	if errors.Is(err, store.ErrStaleWrite) {
		return nil // an edit just landed; it ships on the next pass
	}
	return err
}
