package sync

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/glideapp/glide-sync/internal/adapter"
	"github.com/glideapp/glide-sync/internal/store"
	"github.com/glideapp/glide-sync/models"
)

func expectEmptyDrain(m orchestratorMocks) {
	m.network.EXPECT().Online().Return(true)
	m.entities.EXPECT().ListPending(gomock.Any(), 8).Return(nil, nil)
	m.queue.EXPECT().ListEligible(gomock.Any()).Return(nil, nil)
}

func TestOrchestrator_RunPass_PullAdoptsRemoteItems(t *testing.T) {
	o, m := newTestOrchestrator(t)
	expectEmptyDrain(m)

	folderAt := time.Date(2026, 7, 3, 10, 0, 0, 0, time.UTC)
	folder := models.Folder{ID: uuid.New(), Name: "field work", UpdatedAt: &folderAt}

	freshAt := time.Date(2026, 7, 3, 11, 0, 0, 0, time.UTC)
	fresh := models.Note{ID: uuid.New(), Title: "from the tablet", UpdatedAt: &freshAt}

	knownAt := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	advancedAt := knownAt.Add(time.Hour)
	advanced := models.Note{ID: uuid.New(), Title: "rewritten elsewhere", UpdatedAt: &advancedAt}

	m.api.EXPECT().ListFolders(gomock.Any()).Return([]models.Folder{folder}, nil)
	m.entities.EXPECT().Get(gomock.Any(), folder.ID).Return(models.Entity{}, store.ErrEntityNotFound)
	m.entities.EXPECT().
		UpsertLocal(gomock.Any(), gomock.Any(), models.StatusSynced).
		DoAndReturn(func(_ context.Context, e models.Entity, _ models.SyncStatus) (models.Entity, error) {
			assert.Equal(t, folder.ID, e.ID)
			assert.Equal(t, models.KindFolder, e.Kind)
			return e, nil
		})

	m.api.EXPECT().
		ListNotes(gomock.Any(), models.NoteListParams{Page: 1, PerPage: pullPageSize}).
		Return(models.NoteList{Items: []models.Note{fresh, advanced}, Total: 2, Page: 1, PerPage: pullPageSize}, nil)

	// A note this device has never seen lands as synced.
	m.entities.EXPECT().Get(gomock.Any(), fresh.ID).Return(models.Entity{}, store.ErrEntityNotFound)
	m.entities.EXPECT().
		UpsertLocal(gomock.Any(), gomock.Any(), models.StatusSynced).
		DoAndReturn(func(_ context.Context, e models.Entity, _ models.SyncStatus) (models.Entity, error) {
			note, _ := models.PayloadAs[*models.Note](e)
			assert.Equal(t, "from the tablet", note.Title)
			return e, nil
		})

	// A synced note the server advanced past follows the server.
	m.entities.EXPECT().Get(gomock.Any(), advanced.ID).Return(models.Entity{
		ID:              advanced.ID,
		Kind:            models.KindNote,
		SyncStatus:      models.StatusSynced,
		UpdatedAtRemote: &knownAt,
		Payload:         &models.Note{ID: advanced.ID, Title: "old copy"},
	}, nil)
	m.entities.EXPECT().
		UpsertLocal(gomock.Any(), gomock.Any(), models.StatusSynced).
		DoAndReturn(func(_ context.Context, e models.Entity, _ models.SyncStatus) (models.Entity, error) {
			note, _ := models.PayloadAs[*models.Note](e)
			assert.Equal(t, "rewritten elsewhere", note.Title)
			return e, nil
		})

	o.runPass(context.Background())

	assert.Empty(t, o.LastSyncError())
}

func TestOrchestrator_RunPass_PullLeavesLocalWorkAlone(t *testing.T) {
	o, m := newTestOrchestrator(t)
	expectEmptyDrain(m)

	serverAt := time.Date(2026, 7, 3, 11, 0, 0, 0, time.UTC)
	editedHere := models.Note{ID: uuid.New(), Title: "server copy", UpdatedAt: &serverAt}
	unchanged := models.Note{ID: uuid.New(), Title: "same either way", UpdatedAt: &serverAt}

	m.api.EXPECT().ListFolders(gomock.Any()).Return(nil, nil)
	m.api.EXPECT().
		ListNotes(gomock.Any(), gomock.Any()).
		Return(models.NoteList{Items: []models.Note{editedHere, unchanged}, Total: 2}, nil)

	// Pending local work is never overwritten by a pull; it reconciles
	// through the push path.
	m.entities.EXPECT().Get(gomock.Any(), editedHere.ID).Return(models.Entity{
		ID:         editedHere.ID,
		Kind:       models.KindNote,
		SyncStatus: models.StatusPending,
		Payload:    &models.Note{ID: editedHere.ID, Title: "local edit in flight"},
	}, nil)

	// A synced row already at the server's timestamp is left untouched.
	m.entities.EXPECT().Get(gomock.Any(), unchanged.ID).Return(models.Entity{
		ID:              unchanged.ID,
		Kind:            models.KindNote,
		SyncStatus:      models.StatusSynced,
		UpdatedAtRemote: &serverAt,
		Payload:         &models.Note{ID: unchanged.ID, Title: "same either way"},
	}, nil)

	o.runPass(context.Background())

	assert.Empty(t, o.LastSyncError())
}

func TestOrchestrator_RunPass_PullPaginatesNotes(t *testing.T) {
	o, m := newTestOrchestrator(t)
	expectEmptyDrain(m)

	at := time.Date(2026, 7, 3, 11, 0, 0, 0, time.UTC)
	page1 := make([]models.Note, pullPageSize)
	for i := range page1 {
		page1[i] = models.Note{ID: uuid.New(), UpdatedAt: &at}
	}
	page2 := []models.Note{{ID: uuid.New(), UpdatedAt: &at}}
	total := len(page1) + len(page2)

	m.api.EXPECT().ListFolders(gomock.Any()).Return(nil, nil)
	m.api.EXPECT().
		ListNotes(gomock.Any(), models.NoteListParams{Page: 1, PerPage: pullPageSize}).
		Return(models.NoteList{Items: page1, Total: total}, nil)
	m.api.EXPECT().
		ListNotes(gomock.Any(), models.NoteListParams{Page: 2, PerPage: pullPageSize}).
		Return(models.NoteList{Items: page2, Total: total}, nil)

	m.entities.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(models.Entity{}, store.ErrEntityNotFound).
		Times(total)
	m.entities.EXPECT().
		UpsertLocal(gomock.Any(), gomock.Any(), models.StatusSynced).
		DoAndReturn(func(_ context.Context, e models.Entity, _ models.SyncStatus) (models.Entity, error) {
			return e, nil
		}).
		Times(total)

	o.runPass(context.Background())

	assert.Empty(t, o.LastSyncError())
}

func TestOrchestrator_RunPass_PullFailureDoesNotFailPass(t *testing.T) {
	o, m := newTestOrchestrator(t)
	expectEmptyDrain(m)

	m.api.EXPECT().ListFolders(gomock.Any()).Return(nil, adapter.ErrUnavailable)

	o.runPass(context.Background())

	// The drain finished; a failed refresh retries next pass.
	assert.Empty(t, o.LastSyncError())
	require.NotNil(t, o.LastSyncAt())
}

func TestOrchestrator_RunPass_PullAuthRejectionPausesSync(t *testing.T) {
	o, m := newTestOrchestrator(t)
	expectEmptyDrain(m)

	m.api.EXPECT().ListFolders(gomock.Any()).Return(nil, adapter.ErrUnauthorized)

	o.runPass(context.Background())

	assert.True(t, o.isAuthPaused())
	assert.NotEmpty(t, o.LastSyncError())
}