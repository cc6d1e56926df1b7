package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/skiff/internal/db"
	"github.com/alexanderramin/skiff/internal/domain"
	"github.com/alexanderramin/skiff/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStore_PutStampsPendingAndLastModified(t *testing.T) {
	store := NewSQLiteTaskStore(testutil.NewTestDB(t))
	ctx := context.Background()

	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return frozen }

	task := testutil.NewTestTask("Write report")
	require.NoError(t, store.Put(ctx, task))

	got, err := store.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncPending, got.SyncStatus)
	assert.Equal(t, frozen, got.LastModified)
	assert.Equal(t, "Write report", got.Title)
}

func TestTaskStore_PutUpsertsInPlace(t *testing.T) {
	store := NewSQLiteTaskStore(testutil.NewTestDB(t))
	ctx := context.Background()

	task := testutil.NewTestTask("Draft")
	require.NoError(t, store.Put(ctx, task))

	task.Title = "Final"
	task.Status = domain.TaskInProgress
	require.NoError(t, store.Put(ctx, task))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Final", all[0].Title)
	assert.Equal(t, domain.TaskInProgress, all[0].Status)
}

func TestTaskStore_RoundTripsRelationshipFields(t *testing.T) {
	store := NewSQLiteTaskStore(testutil.NewTestDB(t))
	ctx := context.Background()

	parent := testutil.NewTestTask("Parent", testutil.WithChildren("c1", "c2"))
	child := testutil.NewTestTask("Child", testutil.WithID("c1"), testutil.WithParent(parent.ID))
	require.NoError(t, store.Put(ctx, parent))
	require.NoError(t, store.Put(ctx, child))

	gotParent, err := store.Get(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, gotParent.ChildIDs)
	assert.Nil(t, gotParent.ParentID)

	gotChild, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, gotChild.ParentID)
	assert.Equal(t, parent.ID, *gotChild.ParentID)
}

func TestTaskStore_RoundTripsOptionalFields(t *testing.T) {
	store := NewSQLiteTaskStore(testutil.NewTestDB(t))
	ctx := context.Background()

	deadline := time.Date(2026, 4, 10, 17, 0, 0, 0, time.UTC)
	task := testutil.NewTestTask("Full",
		testutil.WithPriority(3),
		testutil.WithDeadline(deadline),
	)
	task.Description = "all fields set"
	require.NoError(t, store.Put(ctx, task))

	got, err := store.Get(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Priority)
	assert.Equal(t, 3, *got.Priority)
	require.NotNil(t, got.HardEnd)
	assert.Equal(t, deadline, got.HardEnd.UTC())
	assert.Equal(t, "all fields set", got.Description)
}

func TestTaskStore_GetMissingReturnsNotFound(t *testing.T) {
	store := NewSQLiteTaskStore(testutil.NewTestDB(t))

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaskStore_PutSyncedKeepsExplicitTimestamp(t *testing.T) {
	store := NewSQLiteTaskStore(testutil.NewTestDB(t))
	ctx := context.Background()

	at := time.Date(2026, 2, 20, 9, 30, 0, 0, time.UTC)
	task := testutil.NewTestTask("From remote", testutil.WithRemoteID("r1"))
	require.NoError(t, store.PutSynced(ctx, task, at))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSynced, got.SyncStatus)
	assert.Equal(t, at, got.LastModified)
}

func TestTaskStore_MarkSynced(t *testing.T) {
	store := NewSQLiteTaskStore(testutil.NewTestDB(t))
	ctx := context.Background()

	task := testutil.NewTestTask("Pending")
	require.NoError(t, store.Put(ctx, task))

	before, err := store.Get(ctx, task.ID)
	require.NoError(t, err)

	require.NoError(t, store.MarkSynced(ctx, task.ID))

	after, err := store.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SyncSynced, after.SyncStatus)
	assert.Equal(t, before.LastModified, after.LastModified, "MarkSynced must not touch last_modified")

	assert.ErrorIs(t, store.MarkSynced(ctx, "nope"), domain.ErrNotFound)
}

func TestTaskStore_Delete(t *testing.T) {
	store := NewSQLiteTaskStore(testutil.NewTestDB(t))
	ctx := context.Background()

	task := testutil.NewTestTask("Gone")
	require.NoError(t, store.Put(ctx, task))
	require.NoError(t, store.Delete(ctx, task.ID))

	_, err := store.Get(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting an absent key is a no-op.
	assert.NoError(t, store.Delete(ctx, task.ID))
}

func TestTaskStore_LastSyncTime(t *testing.T) {
	store := NewSQLiteTaskStore(testutil.NewTestDB(t))
	ctx := context.Background()

	got, err := store.LastSyncTime(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "never-synced store has no last sync time")

	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetLastSyncTime(ctx, at))

	got, err = store.LastSyncTime(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, at, got.UTC())

	// Overwrite.
	later := at.Add(time.Hour)
	require.NoError(t, store.SetLastSyncTime(ctx, later))
	got, err = store.LastSyncTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, later, got.UTC())
}

func TestTaskStore_PendingDeletes(t *testing.T) {
	store := NewSQLiteTaskStore(testutil.NewTestDB(t))
	ctx := context.Background()

	got, err := store.PendingDeletes(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, store.AddPendingDelete(ctx, "r1"))
	require.NoError(t, store.AddPendingDelete(ctx, "r2"))
	// Recording twice is a no-op.
	require.NoError(t, store.AddPendingDelete(ctx, "r1"))

	got, err = store.PendingDeletes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, got)

	require.NoError(t, store.ClearPendingDelete(ctx, "r1"))
	// Clearing an absent key is a no-op too.
	require.NoError(t, store.ClearPendingDelete(ctx, "ghost"))

	got, err = store.PendingDeletes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, got)
}

func TestTaskStore_WithinTxRollsBackOnError(t *testing.T) {
	database := testutil.NewTestDB(t)
	store := NewSQLiteTaskStore(database)
	uow := testutil.NewTestUoW(database)
	ctx := context.Background()

	a := testutil.NewTestTask("A")
	b := testutil.NewTestTask("B")
	require.NoError(t, store.Put(ctx, a))
	require.NoError(t, store.Put(ctx, b))

	// A failing transaction must leave both rows untouched.
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txStore := NewSQLiteTaskStore(tx)
		if err := txStore.Delete(ctx, a.ID); err != nil {
			return err
		}
		if err := txStore.Delete(ctx, b.ID); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
