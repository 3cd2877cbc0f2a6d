package uploads

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/glideapp/glide-sync/internal/adapter"
	"github.com/glideapp/glide-sync/internal/config"
	"github.com/glideapp/glide-sync/internal/logger"
	"github.com/glideapp/glide-sync/internal/mock"
	"github.com/glideapp/glide-sync/internal/store"
	"github.com/glideapp/glide-sync/models"
)

func newTestService(t *testing.T) (*Service, *mock.MockUploadTaskRepository, *mock.MockEntityRepository, *mock.MockAPIClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	tasks := mock.NewMockUploadTaskRepository(ctrl)
	entities := mock.NewMockEntityRepository(ctrl)
	api := mock.NewMockAPIClient(ctrl)

	svc := NewService(tasks, entities, api, config.Uploads{
		MaxAttempts: 5,
		BackoffBase: 5 * time.Second,
		BackoffCap:  10 * time.Minute,
	}, logger.Nop())
	return svc, tasks, entities, api
}

func writeRecording(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0o600))
	return path
}

func TestService_Enqueue(t *testing.T) {
	svc, tasks, _, _ := newTestService(t)
	ctx := context.Background()

	path := writeRecording(t, "memo.m4a")
	noteID := uuid.New()

	tasks.EXPECT().
		Enqueue(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, task models.UploadTask) (models.UploadTask, error) {
			assert.NotEqual(t, uuid.Nil, task.ID)
			assert.Equal(t, path, task.LocalPath)
			assert.Equal(t, int64(len("not really audio")), task.FileSize)
			require.NotNil(t, task.NoteID)
			assert.Equal(t, noteID, *task.NoteID)
			task.Status = models.UploadPending
			return task, nil
		})

	var notified bool
	svc.SetOnChange(func() { notified = true })

	task, err := svc.Enqueue(ctx, path, &noteID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadPending, task.Status)
	assert.True(t, notified)
}

func TestService_Enqueue_MissingFile(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Enqueue(context.Background(), "/nowhere/memo.m4a", nil)
	require.Error(t, err)
}

func TestService_ListEligible_AppliesBackoff(t *testing.T) {
	svc, tasks, _, _ := newTestService(t)
	ctx := context.Background()

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	justFailed := now.Add(-time.Second)
	longAgo := now.Add(-time.Hour)

	pending := models.UploadTask{ID: uuid.New(), Status: models.UploadPending}
	cooling := models.UploadTask{ID: uuid.New(), Status: models.UploadFailed, Attempts: 3, UpdatedAt: &justFailed}
	ready := models.UploadTask{ID: uuid.New(), Status: models.UploadFailed, Attempts: 3, UpdatedAt: &longAgo}

	tasks.EXPECT().
		ListPending(gomock.Any(), 5).
		Return([]models.UploadTask{pending, cooling, ready}, nil)

	eligible, err := svc.ListEligible(ctx)
	require.NoError(t, err)
	require.Len(t, eligible, 2)
	assert.Equal(t, pending.ID, eligible[0].ID)
	assert.Equal(t, ready.ID, eligible[1].ID)
}

func TestService_Transfer_HappyPath(t *testing.T) {
	svc, tasks, entities, api := newTestService(t)
	ctx := context.Background()

	path := writeRecording(t, "memo.m4a")
	noteID := uuid.New()
	task := models.UploadTask{
		ID:        uuid.New(),
		LocalPath: path,
		FileSize:  16,
		Status:    models.UploadPending,
		NoteID:    &noteID,
	}

	tasks.EXPECT().Get(gomock.Any(), task.ID).Return(task, nil)
	tasks.EXPECT().MarkStatus(gomock.Any(), task.ID, models.UploadUploading).Return(nil)
	api.EXPECT().
		UploadURL(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.UploadURLRequest) (models.UploadURLResponse, error) {
			assert.Equal(t, "memo.m4a", req.Filename)
			return models.UploadURLResponse{UploadURL: "https://bucket/put/abc", Key: "audio/abc"}, nil
		})
	tasks.EXPECT().SetRemoteKey(gomock.Any(), task.ID, "audio/abc").Return(nil)
	api.EXPECT().
		UploadFile(gomock.Any(), "https://bucket/put/abc", path, gomock.Any(), gomock.Any()).
		Return(nil)
	tasks.EXPECT().MarkStatus(gomock.Any(), task.ID, models.UploadProcessing).Return(nil)
	api.EXPECT().
		ProcessVoice(gomock.Any(), models.ProcessRequest{Key: "audio/abc", NoteID: &noteID}).
		Return(models.ProcessResponse{
			NoteID:     noteID,
			Transcript: "buy milk",
			Duration:   42,
			AudioURL:   "https://cdn.glide.app/audio/abc",
		}, nil)
	tasks.EXPECT().MarkCompleted(gomock.Any(), task.ID, "https://cdn.glide.app/audio/abc").Return(nil)

	// Linkage onto an existing pending note keeps it pending and does not
	// clobber the locally written transcript.
	entities.EXPECT().Get(gomock.Any(), noteID).Return(models.Entity{
		ID:         noteID,
		Kind:       models.KindNote,
		SyncStatus: models.StatusPending,
		Payload:    &models.Note{ID: noteID, Title: "memo", Transcript: "local words"},
	}, nil)
	entities.EXPECT().
		UpsertLocal(gomock.Any(), gomock.Any(), models.StatusPending).
		DoAndReturn(func(_ context.Context, entity models.Entity, _ models.SyncStatus) (models.Entity, error) {
			note, ok := models.PayloadAs[*models.Note](entity)
			require.True(t, ok)
			assert.Equal(t, "https://cdn.glide.app/audio/abc", note.AudioURL)
			assert.Equal(t, 42, note.Duration)
			assert.Equal(t, "local words", note.Transcript)
			return entity, nil
		})

	require.NoError(t, svc.Transfer(ctx, task.ID))
}

func TestService_Transfer_CreatesNoteWhenUnlinked(t *testing.T) {
	svc, tasks, entities, api := newTestService(t)
	ctx := context.Background()

	path := writeRecording(t, "memo.m4a")
	task := models.UploadTask{ID: uuid.New(), LocalPath: path, Status: models.UploadPending}
	serverNote := uuid.New()

	tasks.EXPECT().Get(gomock.Any(), task.ID).Return(task, nil)
	tasks.EXPECT().MarkStatus(gomock.Any(), task.ID, models.UploadUploading).Return(nil)
	api.EXPECT().UploadURL(gomock.Any(), gomock.Any()).
		Return(models.UploadURLResponse{UploadURL: "https://bucket/put/x", Key: "audio/x"}, nil)
	tasks.EXPECT().SetRemoteKey(gomock.Any(), task.ID, "audio/x").Return(nil)
	api.EXPECT().UploadFile(gomock.Any(), gomock.Any(), path, gomock.Any(), gomock.Any()).Return(nil)
	tasks.EXPECT().MarkStatus(gomock.Any(), task.ID, models.UploadProcessing).Return(nil)
	api.EXPECT().ProcessVoice(gomock.Any(), gomock.Any()).
		Return(models.ProcessResponse{
			NoteID:     serverNote,
			Title:      "Voice note",
			Transcript: "hello there",
			AudioURL:   "https://cdn.glide.app/audio/x",
		}, nil)
	tasks.EXPECT().MarkCompleted(gomock.Any(), task.ID, "https://cdn.glide.app/audio/x").Return(nil)

	entities.EXPECT().Get(gomock.Any(), serverNote).Return(models.Entity{}, store.ErrEntityNotFound)
	entities.EXPECT().
		UpsertLocal(gomock.Any(), gomock.Any(), models.StatusSynced).
		DoAndReturn(func(_ context.Context, entity models.Entity, _ models.SyncStatus) (models.Entity, error) {
			assert.Equal(t, serverNote, entity.ID)
			note, _ := models.PayloadAs[*models.Note](entity)
			assert.Equal(t, "hello there", note.Transcript)
			return entity, nil
		})

	require.NoError(t, svc.Transfer(ctx, task.ID))
}

func TestService_Transfer_FailureIsContained(t *testing.T) {
	svc, tasks, _, api := newTestService(t)
	ctx := context.Background()

	task := models.UploadTask{ID: uuid.New(), LocalPath: "/spool/x.m4a", Status: models.UploadPending}

	tasks.EXPECT().Get(gomock.Any(), task.ID).Return(task, nil)
	tasks.EXPECT().MarkStatus(gomock.Any(), task.ID, models.UploadUploading).Return(nil)
	api.EXPECT().UploadURL(gomock.Any(), gomock.Any()).
		Return(models.UploadURLResponse{}, adapter.ErrUnavailable)
	tasks.EXPECT().
		MarkFailed(gomock.Any(), task.ID, gomock.Any()).
		Return(nil)

	// One bad upload must not abort the pass.
	require.NoError(t, svc.Transfer(ctx, task.ID))
}

func TestService_Transfer_AuthRejectionPropagates(t *testing.T) {
	svc, tasks, _, api := newTestService(t)
	ctx := context.Background()

	task := models.UploadTask{ID: uuid.New(), LocalPath: "/spool/x.m4a", Status: models.UploadPending}

	tasks.EXPECT().Get(gomock.Any(), task.ID).Return(task, nil)
	tasks.EXPECT().MarkStatus(gomock.Any(), task.ID, models.UploadUploading).Return(nil)
	api.EXPECT().UploadURL(gomock.Any(), gomock.Any()).
		Return(models.UploadURLResponse{}, adapter.ErrUnauthorized)

	// No attempt charged: the task goes straight back to pending.
	tasks.EXPECT().MarkStatus(gomock.Any(), task.ID, models.UploadPending).Return(nil)

	err := svc.Transfer(ctx, task.ID)
	require.ErrorIs(t, err, adapter.ErrUnauthorized)
}

func TestService_Transfer_ParentCancellationResets(t *testing.T) {
	svc, tasks, _, api := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())

	task := models.UploadTask{ID: uuid.New(), LocalPath: "/spool/x.m4a", Status: models.UploadPending}

	tasks.EXPECT().Get(gomock.Any(), task.ID).Return(task, nil)
	tasks.EXPECT().MarkStatus(gomock.Any(), task.ID, models.UploadUploading).Return(nil)
	api.EXPECT().
		UploadURL(gomock.Any(), gomock.Any()).
		DoAndReturn(func(callCtx context.Context, _ models.UploadURLRequest) (models.UploadURLResponse, error) {
			cancel() // the pass dies mid-call
			return models.UploadURLResponse{}, context.Canceled
		})
	tasks.EXPECT().MarkStatus(gomock.Any(), task.ID, models.UploadPending).Return(nil)

	err := svc.Transfer(ctx, task.ID)
	require.ErrorIs(t, err, context.Canceled)
}

func TestService_Transfer_SkipsExhaustedTask(t *testing.T) {
	svc, tasks, _, _ := newTestService(t)

	task := models.UploadTask{ID: uuid.New(), Status: models.UploadFailed, Attempts: 5}
	tasks.EXPECT().Get(gomock.Any(), task.ID).Return(task, nil)

	require.NoError(t, svc.Transfer(context.Background(), task.ID))
}

// Transfer against the real task and entity stores: three transient
// failures burn three attempts, the fourth attempt lands, the linked note
// picks up the audio URL, and the completed bytes leave the pending total.
func TestService_Transfer_RecoversAfterTransientFailures(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	api := mock.NewMockAPIClient(ctrl)

	storages, err := store.NewStorages(ctx, config.DB{DSN: ":memory:"}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { storages.Close() })

	svc := NewService(storages.Uploads, storages.Entities, api, config.Uploads{
		MaxAttempts: 5,
		BackoffBase: time.Millisecond,
		BackoffCap:  time.Millisecond,
	}, logger.Nop())

	noteID := uuid.New()
	_, err = storages.Entities.UpsertLocal(ctx, models.Entity{
		ID:      noteID,
		Kind:    models.KindNote,
		Payload: &models.Note{ID: noteID, Title: "field memo"},
	}, models.StatusPending)
	require.NoError(t, err)

	path := writeRecording(t, "memo.m4a")
	task, err := svc.Enqueue(ctx, path, &noteID)
	require.NoError(t, err)

	api.EXPECT().
		UploadURL(gomock.Any(), gomock.Any()).
		Return(models.UploadURLResponse{}, adapter.ErrUnavailable).
		Times(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Transfer(ctx, task.ID))
	}

	failed, err := storages.Uploads.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadFailed, failed.Status)
	assert.Equal(t, 3, failed.Attempts)
	assert.True(t, failed.Retryable(5), "three failures leave attempt budget")

	api.EXPECT().
		UploadURL(gomock.Any(), gomock.Any()).
		Return(models.UploadURLResponse{UploadURL: "https://bucket/put/take4", Key: "audio/take4"}, nil)
	api.EXPECT().
		UploadFile(gomock.Any(), "https://bucket/put/take4", path, gomock.Any(), gomock.Any()).
		Return(nil)
	api.EXPECT().
		ProcessVoice(gomock.Any(), models.ProcessRequest{Key: "audio/take4", NoteID: &noteID}).
		Return(models.ProcessResponse{
			NoteID:     noteID,
			Transcript: "field observations",
			Duration:   17,
			AudioURL:   "https://cdn.glide.app/audio/take4",
		}, nil)

	require.NoError(t, svc.Transfer(ctx, task.ID))

	done, err := storages.Uploads.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadCompleted, done.Status)
	assert.InDelta(t, 1.0, done.Progress, 1e-9)
	assert.Empty(t, done.LastError)
	assert.Equal(t, "https://cdn.glide.app/audio/take4", done.RemoteURL)

	entity, err := storages.Entities.Get(ctx, noteID)
	require.NoError(t, err)
	note, ok := models.PayloadAs[*models.Note](entity)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.glide.app/audio/take4", note.AudioURL)
	assert.Equal(t, "field observations", note.Transcript)

	pendingBytes, err := svc.TotalPendingBytes(ctx)
	require.NoError(t, err)
	assert.Zero(t, pendingBytes, "completed uploads leave the pending byte total")
}

func TestService_Cancel_ResetsAndDeletesPartialObject(t *testing.T) {
	svc, tasks, _, api := newTestService(t)
	ctx := context.Background()

	task := models.UploadTask{
		ID:        uuid.New(),
		LocalPath: "/spool/x.m4a",
		Status:    models.UploadUploading,
		RemoteKey: "audio/partial",
	}

	tasks.EXPECT().Get(gomock.Any(), task.ID).Return(task, nil)
	api.EXPECT().DeleteObject(gomock.Any(), "audio/partial").Return(nil)
	tasks.EXPECT().SetRemoteKey(gomock.Any(), task.ID, "").Return(nil)
	tasks.EXPECT().MarkStatus(gomock.Any(), task.ID, models.UploadPending).Return(nil)

	require.NoError(t, svc.Cancel(ctx, task.ID, false))
}

func TestService_Cancel_Discard(t *testing.T) {
	svc, tasks, _, _ := newTestService(t)
	ctx := context.Background()

	path := writeRecording(t, "memo.m4a")
	task := models.UploadTask{ID: uuid.New(), LocalPath: path, Status: models.UploadPending}

	tasks.EXPECT().Get(gomock.Any(), task.ID).Return(task, nil)
	tasks.EXPECT().Delete(gomock.Any(), task.ID).Return(nil)

	require.NoError(t, svc.Cancel(ctx, task.ID, true))

	_, err := os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "discarded recording must be removed from disk")
}

func TestService_Cancel_CompletedIsNoop(t *testing.T) {
	svc, tasks, _, _ := newTestService(t)

	task := models.UploadTask{
		ID:        uuid.New(),
		Status:    models.UploadCompleted,
		RemoteKey: "audio/done",
		RemoteURL: "https://cdn.glide.app/audio/done",
	}
	tasks.EXPECT().Get(gomock.Any(), task.ID).Return(task, nil)

	require.NoError(t, svc.Cancel(context.Background(), task.ID, false))
}

func TestService_RetryAll(t *testing.T) {
	svc, tasks, _, _ := newTestService(t)

	tasks.EXPECT().RetryAll(gomock.Any(), 5).Return(2, nil)

	var notified bool
	svc.SetOnChange(func() { notified = true })

	n, err := svc.RetryAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, notified)
}
