package testutil

import (
	"time"

	"github.com/alexanderramin/skiff/internal/domain"
	"github.com/google/uuid"
)

// TaskOption customizes a test task.
type TaskOption func(*domain.Task)

// NewTestTask builds a placeholder-identified task with sensible defaults.
func NewTestTask(title string, opts ...TaskOption) *domain.Task {
	t := &domain.Task{
		ID:        domain.PlaceholderPrefix + uuid.New().String(),
		Title:     title,
		Status:    domain.TaskNotStarted,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithID overrides the generated id.
func WithID(id string) TaskOption {
	return func(t *domain.Task) { t.ID = id }
}

// WithRemoteID marks the task as remotely persisted under the given id.
// The local key follows the remote identifier once one is known.
func WithRemoteID(id string) TaskOption {
	return func(t *domain.Task) {
		t.ID = id
		t.RemoteID = id
	}
}

// WithStatus sets the task status.
func WithStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) { t.Status = s }
}

// WithParent sets the parent pointer. The caller keeps the parent's
// ChildIDs consistent.
func WithParent(parentID string) TaskOption {
	return func(t *domain.Task) { t.ParentID = &parentID }
}

// WithChildren sets the ordered child id list.
func WithChildren(ids ...string) TaskOption {
	return func(t *domain.Task) { t.ChildIDs = ids }
}

// WithDeadline sets the hard end timestamp.
func WithDeadline(end time.Time) TaskOption {
	return func(t *domain.Task) { t.HardEnd = &end }
}

// WithCreatedAt overrides the creation timestamp.
func WithCreatedAt(at time.Time) TaskOption {
	return func(t *domain.Task) { t.CreatedAt = at }
}

// WithPriority sets the numeric priority hint.
func WithPriority(p int) TaskOption {
	return func(t *domain.Task) { t.Priority = &p }
}
