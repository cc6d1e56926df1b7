package remote

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexanderramin/skiff/internal/domain"
	"github.com/alexanderramin/skiff/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRemote(t *testing.T) (*Client, *Memory) {
	t.Helper()
	mem := NewMemory()
	srv := httptest.NewServer(NewServer(mem).Router())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client()), mem
}

func remoteTask(title string, opts ...func(*repository.RemoteTask)) *repository.RemoteTask {
	rt := &repository.RemoteTask{
		Task: domain.Task{
			Title:     title,
			Status:    domain.TaskNotStarted,
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		},
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func TestClient_CreateAssignsDurableID(t *testing.T) {
	client, mem := newTestRemote(t)
	ctx := context.Background()

	created, err := client.Create(ctx, remoteTask("Buy milk"))
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, created.ID, created.RemoteID)
	assert.False(t, created.UpdatedAt.IsZero())
	assert.Equal(t, 1, mem.Len())
}

func TestClient_ListAllRoundTripsFields(t *testing.T) {
	client, _ := newTestRemote(t)
	ctx := context.Background()

	deadline := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)
	prio := 2
	src := remoteTask("Plan trip", func(rt *repository.RemoteTask) {
		rt.Description = "with notes"
		rt.HardEnd = &deadline
		rt.Priority = &prio
		rt.Status = domain.TaskInProgress
	})
	created, err := client.Create(ctx, src)
	require.NoError(t, err)

	all, err := client.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	got := all[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Plan trip", got.Title)
	assert.Equal(t, "with notes", got.Description)
	assert.Equal(t, domain.TaskInProgress, got.Status)
	require.NotNil(t, got.HardEnd)
	assert.True(t, deadline.Equal(*got.HardEnd))
	require.NotNil(t, got.Priority)
	assert.Equal(t, 2, *got.Priority)
}

func TestClient_UpdateExisting(t *testing.T) {
	client, mem := newTestRemote(t)
	ctx := context.Background()

	created, err := client.Create(ctx, remoteTask("Original"))
	require.NoError(t, err)

	created.Title = "Edited"
	require.NoError(t, client.Update(ctx, created))

	assert.Equal(t, "Edited", mem.Get(created.ID).Title)
}

func TestClient_UpdateVanishedFailsLoudly(t *testing.T) {
	client, _ := newTestRemote(t)

	ghost := remoteTask("Ghost")
	ghost.ID = "no-such-id"
	err := client.Update(context.Background(), ghost)

	assert.ErrorIs(t, err, ErrRemoteGone)
}

func TestClient_DeleteCascadesOverDeclaredChildren(t *testing.T) {
	client, mem := newTestRemote(t)
	ctx := context.Background()

	child, err := client.Create(ctx, remoteTask("Child"))
	require.NoError(t, err)
	grandchild, err := client.Create(ctx, remoteTask("Grandchild"))
	require.NoError(t, err)

	child.ChildIDs = []string{grandchild.ID}
	require.NoError(t, client.Update(ctx, child))

	parent := remoteTask("Parent")
	parent.ChildIDs = []string{child.ID}
	created, err := client.Create(ctx, parent)
	require.NoError(t, err)

	require.NoError(t, client.Delete(ctx, created.ID))

	assert.Equal(t, 0, mem.Len(), "delete recurses over declared children")
}

func TestClient_DeleteAbsentIsNoop(t *testing.T) {
	client, _ := newTestRemote(t)

	assert.NoError(t, client.Delete(context.Background(), "never-existed"))
}

func TestClient_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(NewServer(NewMemory()).Router())
	client := NewClient(srv.URL, nil)
	srv.Close()

	_, err := client.ListAll(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
