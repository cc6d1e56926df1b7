package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/skiff/internal/domain"
)

// RemoteTask is one entry in the remote task collection: the task fields
// plus the server-maintained modification timestamp, which the merge treats
// as authoritative for the remote side.
type RemoteTask struct {
	domain.Task
	UpdatedAt time.Time
}

// TaskStore is the durable local store: one entry per task plus per-record
// sync metadata and a last-sync-time slot. Put always marks the entry
// pending and refreshes LastModified; only the sync engine writes synced
// state, through PutSynced and MarkSynced.
type TaskStore interface {
	GetAll(ctx context.Context) ([]*domain.StoredTask, error)
	Get(ctx context.Context, key string) (*domain.StoredTask, error)
	Put(ctx context.Context, t *domain.Task) error
	PutSynced(ctx context.Context, t *domain.Task, modifiedAt time.Time) error
	MarkSynced(ctx context.Context, key string) error
	Delete(ctx context.Context, key string) error

	LastSyncTime(ctx context.Context) (*time.Time, error)
	SetLastSyncTime(ctx context.Context, t time.Time) error

	// Deletion intents survive until the engine pushes them; recording the
	// same key twice is a no-op, clearing an absent key is too.
	AddPendingDelete(ctx context.Context, key string) error
	PendingDeletes(ctx context.Context) ([]string, error)
	ClearPendingDelete(ctx context.Context, key string) error
}

// RemoteRepo abstracts the user's authoritative task collection. Whatever
// the wire protocol, the sync engine depends on exactly this contract.
type RemoteRepo interface {
	// ListAll returns a full snapshot of the remote collection.
	ListAll(ctx context.Context) ([]*RemoteTask, error)

	// Create persists a brand-new task and returns the stored entry with
	// its assigned durable identifier populated.
	Create(ctx context.Context, t *RemoteTask) (*RemoteTask, error)

	// Update persists changes to an existing identified task. It fails
	// loudly (remote.ErrRemoteGone) if the target no longer exists.
	Update(ctx context.Context, t *RemoteTask) error

	// Delete removes a task and, by policy, all of its declared children;
	// the remote medium may not cascade on its own.
	Delete(ctx context.Context, key string) error
}
