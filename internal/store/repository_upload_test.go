package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glideapp/glide-sync/internal/logger"
	"github.com/glideapp/glide-sync/models"
)

func newTestRepos(t *testing.T) (UploadTaskRepository, EntityRepository) {
	t.Helper()
	db := newTestDB(t)
	return NewUploadTaskRepository(db, logger.Nop()), NewEntityRepository(db, logger.Nop())
}

func newTask(path string, size int64) models.UploadTask {
	return models.UploadTask{
		ID:        uuid.New(),
		LocalPath: path,
		FileSize:  size,
	}
}

func TestUploadTaskRepository_EnqueueAndGet(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := testContext()

	task, err := repo.Enqueue(ctx, newTask("/spool/rec-001.m4a", 2048))
	require.NoError(t, err)

	assert.Equal(t, models.UploadPending, task.Status)
	assert.Equal(t, int64(2048), task.FileSize)
	assert.Zero(t, task.Progress)
	assert.False(t, task.EnqueuedAt.IsZero())

	got, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
}

func TestUploadTaskRepository_Get_NotFound(t *testing.T) {
	repo, _ := newTestRepos(t)

	_, err := repo.Get(testContext(), uuid.New())
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUploadTaskRepository_Enqueue_DuplicateID(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := testContext()

	task := newTask("/spool/rec-001.m4a", 10)
	_, err := repo.Enqueue(ctx, task)
	require.NoError(t, err)

	_, err = repo.Enqueue(ctx, task)
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUploadTaskRepository_ProgressIsMonotonic(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := testContext()

	task, err := repo.Enqueue(ctx, newTask("/spool/rec.m4a", 100))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateProgress(ctx, task.ID, 0.6))
	// A late smaller report must not move the bar backwards.
	require.NoError(t, repo.UpdateProgress(ctx, task.ID, 0.4))

	got, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, got.Progress, 1e-9)
}

func TestUploadTaskRepository_MarkStatus_ResetsProgress(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := testContext()

	task, err := repo.Enqueue(ctx, newTask("/spool/rec.m4a", 100))
	require.NoError(t, err)

	require.NoError(t, repo.MarkStatus(ctx, task.ID, models.UploadUploading))
	require.NoError(t, repo.UpdateProgress(ctx, task.ID, 0.8))

	// Back to pending, e.g. after the daemon was interrupted mid-transfer.
	require.NoError(t, repo.MarkStatus(ctx, task.ID, models.UploadPending))
	got, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Progress)

	require.NoError(t, repo.MarkStatus(ctx, task.ID, models.UploadProcessing))
	got, err = repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got.Progress, 1e-9)
}

func TestUploadTaskRepository_MarkStatus_RejectsTerminalStates(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := testContext()

	task, err := repo.Enqueue(ctx, newTask("/spool/rec.m4a", 100))
	require.NoError(t, err)

	require.Error(t, repo.MarkStatus(ctx, task.ID, models.UploadCompleted))
	require.Error(t, repo.MarkStatus(ctx, task.ID, models.UploadFailed))
}

func TestUploadTaskRepository_FailRetryComplete(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := testContext()

	task, err := repo.Enqueue(ctx, newTask("/spool/rec.m4a", 100))
	require.NoError(t, err)

	require.NoError(t, repo.MarkFailed(ctx, task.ID, "connection reset"))
	got, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadFailed, got.Status)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, "connection reset", got.LastError)

	n, err := repo.RetryAll(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	got, err = repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadPending, got.Status)
	assert.Empty(t, got.LastError)

	require.NoError(t, repo.MarkCompleted(ctx, task.ID, "https://cdn.glide.app/audio/rec.m4a"))
	got, err = repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadCompleted, got.Status)
	assert.Equal(t, "https://cdn.glide.app/audio/rec.m4a", got.RemoteURL)
	assert.InDelta(t, 1.0, got.Progress, 1e-9)
}

func TestUploadTaskRepository_RetryAll_RespectsAttemptCeiling(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := testContext()

	task, err := repo.Enqueue(ctx, newTask("/spool/rec.m4a", 100))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.MarkFailed(ctx, task.ID, "still broken"))
	}

	n, err := repo.RetryAll(ctx, 5)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUploadTaskRepository_ListPending_OrderAndCeiling(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := testContext()

	first, err := repo.Enqueue(ctx, newTask("/spool/a.m4a", 1))
	require.NoError(t, err)
	second, err := repo.Enqueue(ctx, newTask("/spool/b.m4a", 2))
	require.NoError(t, err)

	require.NoError(t, repo.MarkFailed(ctx, first.ID, "reset"))

	pending, err := repo.ListPending(ctx, 5)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, second.ID, pending[1].ID)
}

func TestUploadTaskRepository_PendingTotals(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := testContext()

	a, err := repo.Enqueue(ctx, newTask("/spool/a.m4a", 100))
	require.NoError(t, err)
	_, err = repo.Enqueue(ctx, newTask("/spool/b.m4a", 250))
	require.NoError(t, err)

	require.NoError(t, repo.MarkCompleted(ctx, a.ID, "https://cdn.glide.app/a"))

	total, err := repo.TotalPendingBytes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(250), total)

	count, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUploadTaskRepository_ListPurgeable(t *testing.T) {
	repo, entities := newTestRepos(t)
	ctx := testContext()

	// Unlinked completed task: purgeable as soon as it completes.
	unlinked, err := repo.Enqueue(ctx, newTask("/spool/a.m4a", 1))
	require.NoError(t, err)
	require.NoError(t, repo.MarkCompleted(ctx, unlinked.ID, "https://cdn.glide.app/a"))

	// Linked to a note that is still pending: not purgeable yet.
	note, err := entities.UpsertLocal(ctx, newNoteEntity("pending note"), models.StatusPending)
	require.NoError(t, err)
	linkedTask := newTask("/spool/b.m4a", 2)
	linkedTask.NoteID = &note.ID
	linked, err := repo.Enqueue(ctx, linkedTask)
	require.NoError(t, err)
	require.NoError(t, repo.MarkCompleted(ctx, linked.ID, "https://cdn.glide.app/b"))

	purgeable, err := repo.ListPurgeable(ctx)
	require.NoError(t, err)
	require.Len(t, purgeable, 1)
	assert.Equal(t, unlinked.ID, purgeable[0].ID)

	// Once the note syncs, the linked file can be reclaimed too.
	require.NoError(t, entities.MarkStatus(ctx, note.ID, models.StatusSynced))
	purgeable, err = repo.ListPurgeable(ctx)
	require.NoError(t, err)
	assert.Len(t, purgeable, 2)

	require.NoError(t, repo.ClearLocalPath(ctx, unlinked.ID))
	purgeable, err = repo.ListPurgeable(ctx)
	require.NoError(t, err)
	assert.Len(t, purgeable, 1)
}

func TestUploadTaskRepository_LinkFollowsRemap(t *testing.T) {
	repo, entities := newTestRepos(t)
	ctx := testContext()

	note, err := entities.UpsertLocal(ctx, newNoteEntity("voice memo"), models.StatusPending)
	require.NoError(t, err)

	task := newTask("/spool/memo.m4a", 4096)
	task.NoteID = &note.ID
	queued, err := repo.Enqueue(ctx, task)
	require.NoError(t, err)

	// The create round-trip hands the note a server id; the queued task
	// must follow it, or its processing call targets a dead id.
	serverID := uuid.New()
	require.NoError(t, entities.Remap(ctx, note.ID, serverID))

	got, err := repo.Get(ctx, queued.ID)
	require.NoError(t, err)
	require.NotNil(t, got.NoteID)
	assert.Equal(t, serverID, *got.NoteID)

	// The purge join sees the moved note as well.
	require.NoError(t, entities.MarkStatus(ctx, serverID, models.StatusSynced))
	require.NoError(t, repo.MarkCompleted(ctx, queued.ID, "https://cdn.glide.app/memo"))
	purgeable, err := repo.ListPurgeable(ctx)
	require.NoError(t, err)
	require.Len(t, purgeable, 1)
	assert.Equal(t, queued.ID, purgeable[0].ID)
}
