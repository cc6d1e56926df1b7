package service

import (
	"context"
	"time"

	"github.com/alexanderramin/skiff/internal/domain"
)

// TaskService is the mutation facade consumed by the outer surfaces. Every
// relationship change goes through it: it updates the task records (the
// source of truth) and the derived graph index in the same operation, so
// bidirectional parent/child consistency holds after every call.
//
// Not-found and cycle rejections are no-op mutations: the store and graph
// are left untouched, a warning is logged, and the sentinel error
// (domain.ErrNotFound, domain.ErrCycle) is returned for the caller to
// surface or ignore.
type TaskService interface {
	// Load scans the store and rebuilds the graph index. Call it once at
	// startup and again after a sync run has rewritten the store.
	Load(ctx context.Context) error

	Add(ctx context.Context, t *domain.Task) error
	AddChild(ctx context.Context, parentID string, t *domain.Task) error
	Update(ctx context.Context, t *domain.Task) error
	Move(ctx context.Context, id, newParentID string) error
	Remove(ctx context.Context, id string) ([]string, error)
	SetStatus(ctx context.Context, id string, status domain.TaskStatus) error

	Get(ctx context.Context, id string) (*domain.StoredTask, error)
	All(ctx context.Context) ([]*domain.StoredTask, error)
	Roots(ctx context.Context) ([]*domain.StoredTask, error)
	Children(ctx context.Context, id string) ([]*domain.StoredTask, error)
	SortedByDeadline(ctx context.Context) ([]*domain.StoredTask, error)
	Overdue(ctx context.Context, now time.Time) ([]*domain.StoredTask, error)
}
