package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glideapp/glide-sync/internal/logger"
	"github.com/glideapp/glide-sync/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	db := &DB{
		DB:                 conn,
		errorClassificator: NewSQLiteErrorClassifier(),
		logger:             logger.Nop(),
	}
	require.NoError(t, db.Migrate())
	return db
}

func newTestEntityRepo(t *testing.T) EntityRepository {
	t.Helper()
	return NewEntityRepository(newTestDB(t), logger.Nop())
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func newNoteEntity(title string) models.Entity {
	id := uuid.New()
	return models.Entity{
		ID:   id,
		Kind: models.KindNote,
		Payload: &models.Note{
			ID:    id,
			Title: title,
		},
	}
}

func newFolderEntity(name string) models.Entity {
	id := uuid.New()
	return models.Entity{
		ID:   id,
		Kind: models.KindFolder,
		Payload: &models.Folder{
			ID:   id,
			Name: name,
		},
	}
}

func TestEntityRepository_UpsertLocal_InsertPending(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	entity := newNoteEntity("groceries")
	saved, err := repo.UpsertLocal(ctx, entity, models.StatusPending)
	require.NoError(t, err)

	assert.Equal(t, entity.ID, saved.ID)
	assert.Equal(t, models.StatusPending, saved.SyncStatus)
	assert.True(t, saved.SyncRetryable)
	assert.Zero(t, saved.SyncAttempts)
	assert.False(t, saved.UpdatedAtLocal.IsZero())
	assert.Nil(t, saved.UpdatedAtRemote)

	note, ok := models.PayloadAs[*models.Note](saved)
	require.True(t, ok)
	assert.Equal(t, "groceries", note.Title)
}

func TestEntityRepository_UpsertLocal_RejectsBadStatus(t *testing.T) {
	repo := newTestEntityRepo(t)

	_, err := repo.UpsertLocal(testContext(), newNoteEntity("x"), models.StatusConflict)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEntityRepository_UpsertLocal_ServerWriteStampsRemote(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	serverAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	id := uuid.New()
	entity := models.Entity{
		ID:   id,
		Kind: models.KindNote,
		Payload: &models.Note{
			ID:        id,
			Title:     "from server",
			UpdatedAt: &serverAt,
		},
	}

	saved, err := repo.UpsertLocal(ctx, entity, models.StatusSynced)
	require.NoError(t, err)

	assert.Equal(t, models.StatusSynced, saved.SyncStatus)
	require.NotNil(t, saved.UpdatedAtRemote)
	assert.True(t, saved.UpdatedAtRemote.Equal(serverAt))
}

func TestEntityRepository_UpsertLocal_ReEditMovesToTail(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	first, err := repo.UpsertLocal(ctx, newNoteEntity("first"), models.StatusPending)
	require.NoError(t, err)
	second, err := repo.UpsertLocal(ctx, newNoteEntity("second"), models.StatusPending)
	require.NoError(t, err)
	require.Greater(t, second.Seq, first.Seq)

	// Editing the first note again moves it behind the second in the
	// pending order.
	note, _ := models.PayloadAs[*models.Note](first)
	note.Title = "first, edited"
	_, err = repo.UpsertLocal(ctx, first, models.StatusPending)
	require.NoError(t, err)

	pending, err := repo.ListPending(ctx, 8)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, second.ID, pending[0].ID)
	assert.Equal(t, first.ID, pending[1].ID)
}

func TestEntityRepository_ServerWriteRequiresObservedSeq(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	draft, err := repo.UpsertLocal(ctx, newNoteEntity("v1"), models.StatusPending)
	require.NoError(t, err)

	// While the sync pass held the v1 snapshot, the user edited again.
	edited, _ := models.PayloadAs[*models.Note](draft)
	edited.Title = "v2"
	_, err = repo.UpsertLocal(ctx, draft, models.StatusPending)
	require.NoError(t, err)

	// Applying the server's answer for v1 against the stale snapshot must
	// not clobber the v2 edit or mark it synced.
	serverAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	stale := draft
	stale.Payload = &models.Note{ID: draft.ID, Title: "v1", UpdatedAt: &serverAt}
	_, err = repo.UpsertLocal(ctx, stale, models.StatusSynced)
	require.ErrorIs(t, err, ErrStaleWrite)

	got, err := repo.Get(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.SyncStatus)
	note, _ := models.PayloadAs[*models.Note](got)
	assert.Equal(t, "v2", note.Title)
}

func TestEntityRepository_ServerWriteReplayIsIdempotent(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	draft, err := repo.UpsertLocal(ctx, newNoteEntity("v1"), models.StatusPending)
	require.NoError(t, err)

	serverAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	apply := draft
	apply.Payload = &models.Note{ID: draft.ID, Title: "v1", UpdatedAt: &serverAt}

	once, err := repo.UpsertLocal(ctx, apply, models.StatusSynced)
	require.NoError(t, err)

	// A synced write does not move the row's seq, so replaying the same
	// server response lands cleanly on the same state.
	again, err := repo.UpsertLocal(ctx, apply, models.StatusSynced)
	require.NoError(t, err)

	assert.Equal(t, once.Seq, again.Seq)
	assert.Equal(t, models.StatusSynced, again.SyncStatus)
	require.NotNil(t, again.UpdatedAtRemote)
	assert.True(t, again.UpdatedAtRemote.Equal(serverAt))
}

func TestEntityRepository_UpsertLocal_ConflictRefusesPlainWrite(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	entity := mustConflict(t, repo, ctx)

	sneaky, _ := models.PayloadAs[*models.Note](entity)
	sneaky.Title = "written around the conflict"
	_, err := repo.UpsertLocal(ctx, entity, models.StatusPending)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// Both copies survive untouched until Resolve.
	got, err := repo.Get(ctx, entity.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConflict, got.SyncStatus)
	local, _ := models.PayloadAs[*models.Note](got)
	assert.Equal(t, "local title", local.Title)
	require.NotNil(t, got.RemotePayload)
}

func TestEntityRepository_Get_NotFound(t *testing.T) {
	repo := newTestEntityRepo(t)

	_, err := repo.Get(testContext(), uuid.New())
	require.ErrorIs(t, err, ErrEntityNotFound)
}

func TestEntityRepository_MarkStatus_StateGraph(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	entity, err := repo.UpsertLocal(ctx, newNoteEntity("graph"), models.StatusPending)
	require.NoError(t, err)

	// pending -> synced is legal.
	require.NoError(t, repo.MarkStatus(ctx, entity.ID, models.StatusSynced))
	got, err := repo.Get(ctx, entity.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, got.SyncStatus)

	// synced -> pending is not MarkStatus territory.
	err = repo.MarkStatus(ctx, entity.ID, models.StatusPending)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// Conflict entry goes through MarkConflict, never MarkStatus.
	err = repo.MarkStatus(ctx, entity.ID, models.StatusConflict)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEntityRepository_MarkStatus_ErrorBackToPending(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	entity, err := repo.UpsertLocal(ctx, newNoteEntity("retry me"), models.StatusPending)
	require.NoError(t, err)

	require.NoError(t, repo.MarkError(ctx, entity.ID, "503 from server", true))
	require.NoError(t, repo.MarkStatus(ctx, entity.ID, models.StatusPending))

	got, err := repo.Get(ctx, entity.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.SyncStatus)
	assert.Empty(t, got.SyncError)
}

func TestEntityRepository_MarkError_CountsAttempts(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	entity, err := repo.UpsertLocal(ctx, newNoteEntity("flaky"), models.StatusPending)
	require.NoError(t, err)

	require.NoError(t, repo.MarkError(ctx, entity.ID, "timeout", true))
	require.NoError(t, repo.MarkError(ctx, entity.ID, "timeout again", true))

	got, err := repo.Get(ctx, entity.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, got.SyncStatus)
	assert.Equal(t, 2, got.SyncAttempts)
	assert.Equal(t, "timeout again", got.SyncError)
	assert.NotNil(t, got.LastSyncAttempt)
}

func TestEntityRepository_ListPending_SkipsPermanentFailures(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	retryable, err := repo.UpsertLocal(ctx, newNoteEntity("transient"), models.StatusPending)
	require.NoError(t, err)
	require.NoError(t, repo.MarkError(ctx, retryable.ID, "503", true))

	permanent, err := repo.UpsertLocal(ctx, newNoteEntity("rejected"), models.StatusPending)
	require.NoError(t, err)
	require.NoError(t, repo.MarkError(ctx, permanent.ID, "422 validation", false))

	exhausted, err := repo.UpsertLocal(ctx, newNoteEntity("exhausted"), models.StatusPending)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		require.NoError(t, repo.MarkError(ctx, exhausted.ID, "503", true))
	}

	pending, err := repo.ListPending(ctx, 8)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, retryable.ID, pending[0].ID)
}

func TestEntityRepository_ReEditResetsPermanentFailure(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	entity, err := repo.UpsertLocal(ctx, newNoteEntity("rejected"), models.StatusPending)
	require.NoError(t, err)
	require.NoError(t, repo.MarkError(ctx, entity.ID, "422", false))

	// A local edit re-queues the entity even after a permanent rejection.
	note, _ := models.PayloadAs[*models.Note](entity)
	note.Title = "fixed"
	saved, err := repo.UpsertLocal(ctx, entity, models.StatusPending)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, saved.SyncStatus)
	assert.True(t, saved.SyncRetryable)
	assert.Zero(t, saved.SyncAttempts)
}

func TestEntityRepository_MarkConflict_RetainsBothCopies(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	entity, err := repo.UpsertLocal(ctx, newNoteEntity("local title"), models.StatusPending)
	require.NoError(t, err)

	serverAt := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	remote := &models.Note{ID: entity.ID, Title: "server title", UpdatedAt: &serverAt}
	require.NoError(t, repo.MarkConflict(ctx, entity.ID, remote))

	got, err := repo.Get(ctx, entity.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConflict, got.SyncStatus)

	local, ok := models.PayloadAs[*models.Note](got)
	require.True(t, ok)
	assert.Equal(t, "local title", local.Title)

	remoteCopy, ok := got.RemotePayload.(*models.Note)
	require.True(t, ok)
	assert.Equal(t, "server title", remoteCopy.Title)

	// Conflicts wait for the user, not for the next pass.
	pending, err := repo.ListPending(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestEntityRepository_Resolve_PickLocal(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	entity := mustConflict(t, repo, ctx)

	resolved, err := repo.Resolve(ctx, entity.ID, models.ResolutionPickLocal, nil)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, resolved.SyncStatus)
	assert.Nil(t, resolved.RemotePayload)
	note, _ := models.PayloadAs[*models.Note](resolved)
	assert.Equal(t, "local title", note.Title)
}

func TestEntityRepository_Resolve_PickRemote(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	entity := mustConflict(t, repo, ctx)

	resolved, err := repo.Resolve(ctx, entity.ID, models.ResolutionPickRemote, nil)
	require.NoError(t, err)

	assert.Equal(t, models.StatusSynced, resolved.SyncStatus)
	assert.Nil(t, resolved.RemotePayload)
	note, _ := models.PayloadAs[*models.Note](resolved)
	assert.Equal(t, "server title", note.Title)
}

func TestEntityRepository_Resolve_Merged(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	entity := mustConflict(t, repo, ctx)

	merged := &models.Note{ID: entity.ID, Title: "merged title"}
	resolved, err := repo.Resolve(ctx, entity.ID, models.ResolutionMerged, merged)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, resolved.SyncStatus)
	note, _ := models.PayloadAs[*models.Note](resolved)
	assert.Equal(t, "merged title", note.Title)
}

func TestEntityRepository_Resolve_NotInConflict(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	entity, err := repo.UpsertLocal(ctx, newNoteEntity("calm"), models.StatusPending)
	require.NoError(t, err)

	_, err = repo.Resolve(ctx, entity.ID, models.ResolutionPickLocal, nil)
	require.ErrorIs(t, err, ErrNotInConflict)
}

func mustConflict(t *testing.T, repo EntityRepository, ctx context.Context) models.Entity {
	t.Helper()

	entity, err := repo.UpsertLocal(ctx, newNoteEntity("local title"), models.StatusPending)
	require.NoError(t, err)

	serverAt := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	remote := &models.Note{ID: entity.ID, Title: "server title", UpdatedAt: &serverAt}
	require.NoError(t, repo.MarkConflict(ctx, entity.ID, remote))
	return entity
}

func TestEntityRepository_Remap_RewritesRowAndReferences(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	folder, err := repo.UpsertLocal(ctx, newFolderEntity("inbox"), models.StatusPending)
	require.NoError(t, err)

	noteEntity := newNoteEntity("filed note")
	note, _ := models.PayloadAs[*models.Note](noteEntity)
	folderRef := folder.ID
	note.FolderID = &folderRef
	noteSaved, err := repo.UpsertLocal(ctx, noteEntity, models.StatusPending)
	require.NoError(t, err)

	serverID := uuid.New()
	require.NoError(t, repo.Remap(ctx, folder.ID, serverID))

	// The row moved to the server id.
	moved, err := repo.Get(ctx, serverID)
	require.NoError(t, err)
	assert.Equal(t, serverID, moved.ID)

	// A lookup by the superseded id still resolves.
	viaOld, err := repo.Get(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, serverID, viaOld.ID)

	// The note's folder reference followed the remap.
	refetched, err := repo.Get(ctx, noteSaved.ID)
	require.NoError(t, err)
	notePayload, _ := models.PayloadAs[*models.Note](refetched)
	require.NotNil(t, notePayload.FolderID)
	assert.Equal(t, serverID, *notePayload.FolderID)
}

func TestEntityRepository_Remap_ReplayIsNoop(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	folder, err := repo.UpsertLocal(ctx, newFolderEntity("inbox"), models.StatusPending)
	require.NoError(t, err)

	serverID := uuid.New()
	require.NoError(t, repo.Remap(ctx, folder.ID, serverID))
	require.NoError(t, repo.Remap(ctx, folder.ID, serverID))

	got, err := repo.Get(ctx, serverID)
	require.NoError(t, err)
	assert.Equal(t, serverID, got.ID)
}

func TestEntityRepository_Remap_UnknownEntity(t *testing.T) {
	repo := newTestEntityRepo(t)

	err := repo.Remap(testContext(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrEntityNotFound)
}

func TestEntityRepository_DeleteRestorePurge(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	entity, err := repo.UpsertLocal(ctx, newNoteEntity("doomed"), models.StatusPending)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, entity.ID))
	got, err := repo.Get(ctx, entity.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.Equal(t, models.StatusPending, got.SyncStatus)

	require.NoError(t, repo.Restore(ctx, entity.ID))
	got, err = repo.Get(ctx, entity.ID)
	require.NoError(t, err)
	assert.False(t, got.Deleted)

	require.NoError(t, repo.Purge(ctx, entity.ID))
	_, err = repo.Get(ctx, entity.ID)
	require.ErrorIs(t, err, ErrEntityNotFound)
}

func TestEntityRepository_List_FiltersAndPaginates(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	_, err := repo.UpsertLocal(ctx, newFolderEntity("work"), models.StatusPending)
	require.NoError(t, err)
	for _, title := range []string{"standup notes", "grocery list", "standup followup"} {
		_, err = repo.UpsertLocal(ctx, newNoteEntity(title), models.StatusPending)
		require.NoError(t, err)
	}

	deleted, err := repo.UpsertLocal(ctx, newNoteEntity("gone"), models.StatusPending)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, deleted.ID))

	notes, total, err := repo.List(ctx, ListFilter{Kind: models.KindNote})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, notes, 3)

	matched, total, err := repo.List(ctx, ListFilter{Kind: models.KindNote, Query: "standup"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, matched, 2)

	page, total, err := repo.List(ctx, ListFilter{Kind: models.KindNote, Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)
}

func TestEntityRepository_Counts(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	synced, err := repo.UpsertLocal(ctx, newNoteEntity("done"), models.StatusPending)
	require.NoError(t, err)
	require.NoError(t, repo.MarkStatus(ctx, synced.ID, models.StatusSynced))

	_, err = repo.UpsertLocal(ctx, newNoteEntity("waiting"), models.StatusPending)
	require.NoError(t, err)

	failed, err := repo.UpsertLocal(ctx, newNoteEntity("failed"), models.StatusPending)
	require.NoError(t, err)
	require.NoError(t, repo.MarkError(ctx, failed.ID, "503", true))

	mustConflict(t, repo, ctx)

	counts, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.PendingChanges)
	assert.Equal(t, 1, counts.Conflicts)
}

func TestEntityRepository_SetRemoteStamp(t *testing.T) {
	repo := newTestEntityRepo(t)
	ctx := testContext()

	entity, err := repo.UpsertLocal(ctx, newNoteEntity("racing edit"), models.StatusPending)
	require.NoError(t, err)

	at := time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC)
	require.NoError(t, repo.SetRemoteStamp(ctx, entity.ID, at))

	got, err := repo.Get(ctx, entity.ID)
	require.NoError(t, err)

	// Only the server timestamp moved; the local mutation is still queued.
	assert.Equal(t, models.StatusPending, got.SyncStatus)
	require.NotNil(t, got.UpdatedAtRemote)
	assert.True(t, got.UpdatedAtRemote.Equal(at))
}
