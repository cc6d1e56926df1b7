package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/alexanderramin/skiff/internal/db"
	"github.com/alexanderramin/skiff/internal/domain"
	"github.com/alexanderramin/skiff/internal/graph"
	"github.com/alexanderramin/skiff/internal/repository"
	"github.com/google/uuid"
)

type taskService struct {
	store  repository.TaskStore
	uow    db.UnitOfWork
	graph  *graph.TaskGraph
	logger *slog.Logger
}

// NewTaskService creates the task facade over the given store, unit of
// work, and graph index. A nil logger falls back to slog.Default.
func NewTaskService(store repository.TaskStore, uow db.UnitOfWork, g *graph.TaskGraph, logger *slog.Logger) TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &taskService{store: store, uow: uow, graph: g, logger: logger}
}

func (s *taskService) Load(ctx context.Context) error {
	entries, err := s.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}
	tasks := make([]*domain.Task, 0, len(entries))
	for _, e := range entries {
		tasks = append(tasks, &e.Task)
	}
	s.graph.Rebuild(tasks)
	return nil
}

func (s *taskService) Add(ctx context.Context, t *domain.Task) error {
	if err := s.prepareNew(t); err != nil {
		return err
	}
	t.ParentID = nil
	if err := s.store.Put(ctx, t); err != nil {
		return err
	}
	s.graph.Add(t.ID)
	return nil
}

func (s *taskService) AddChild(ctx context.Context, parentID string, t *domain.Task) error {
	parent, err := s.store.Get(ctx, parentID)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("add child rejected: parent does not exist", "parent", parentID)
		return err
	}
	if err != nil {
		return err
	}
	if err := s.prepareNew(t); err != nil {
		return err
	}

	pid := parent.ID
	t.ParentID = &pid
	parent.AddChild(t.ID)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txStore := repository.NewSQLiteTaskStore(tx)
		if err := txStore.Put(ctx, t); err != nil {
			return err
		}
		return txStore.Put(ctx, &parent.Task)
	})
	if err != nil {
		return err
	}
	s.graph.SetParent(t.ID, parent.ID)
	return nil
}

// Update replaces the task's own fields in place. Relationship fields are
// preserved from the stored copy: re-parenting goes through Move.
func (s *taskService) Update(ctx context.Context, t *domain.Task) error {
	current, err := s.store.Get(ctx, t.ID)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("update rejected: task does not exist", "task", t.ID)
		return err
	}
	if err != nil {
		return err
	}
	if t.Title == "" {
		return domain.ErrMissingTitle
	}
	updated := t.Clone()
	updated.ParentID = current.ParentID
	updated.ChildIDs = current.ChildIDs
	updated.CreatedAt = current.CreatedAt
	updated.RemoteID = current.RemoteID
	return s.store.Put(ctx, updated)
}

func (s *taskService) Move(ctx context.Context, id, newParentID string) error {
	entry, err := s.store.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("move rejected: task does not exist", "task", id)
		return err
	}
	if err != nil {
		return err
	}

	currentParent := ""
	if entry.ParentID != nil {
		currentParent = *entry.ParentID
	}
	if currentParent == newParentID {
		return nil
	}

	var newParent *domain.StoredTask
	if newParentID != "" {
		newParent, err = s.store.Get(ctx, newParentID)
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("move rejected: new parent does not exist",
				"task", id, "parent", newParentID)
			return err
		}
		if err != nil {
			return err
		}
		// The UI is expected to pre-check, but re-validate here: a task
		// cannot be moved under itself or one of its descendants.
		if newParentID == id || s.graph.IsAncestor(id, newParentID) {
			s.logger.Warn("move rejected: would create a cycle",
				"task", id, "parent", newParentID)
			return fmt.Errorf("moving %s under %s: %w", id, newParentID, domain.ErrCycle)
		}
	}

	moved := entry.Task.Clone()
	var oldParent *domain.StoredTask
	if currentParent != "" {
		oldParent, err = s.store.Get(ctx, currentParent)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}

	if newParentID == "" {
		moved.ParentID = nil
	} else {
		moved.ParentID = &newParentID
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txStore := repository.NewSQLiteTaskStore(tx)
		if oldParent != nil {
			oldParent.RemoveChild(id)
			if err := txStore.Put(ctx, &oldParent.Task); err != nil {
				return err
			}
		}
		if newParent != nil {
			newParent.AddChild(id)
			if err := txStore.Put(ctx, &newParent.Task); err != nil {
				return err
			}
		}
		return txStore.Put(ctx, moved)
	})
	if err != nil {
		return err
	}
	s.graph.SetParent(id, newParentID)
	return nil
}

// Remove deletes the task and every transitive descendant, detaching the
// subtree from its parent. Removed tasks that already exist remotely are
// recorded as deletion intents for the next sync run, so the removal sticks
// instead of being pulled back. It returns the removed ids.
func (s *taskService) Remove(ctx context.Context, id string) ([]string, error) {
	entry, err := s.store.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("remove rejected: task does not exist", "task", id)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	doomed := s.graph.DescendantIDs(id)
	var parent *domain.StoredTask
	if entry.ParentID != nil {
		parent, err = s.store.Get(ctx, *entry.ParentID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txStore := repository.NewSQLiteTaskStore(tx)
		for _, d := range doomed {
			stored, getErr := txStore.Get(ctx, d)
			if getErr != nil && !errors.Is(getErr, domain.ErrNotFound) {
				return getErr
			}
			if getErr == nil && !stored.IsPlaceholder() {
				if err := txStore.AddPendingDelete(ctx, stored.ID); err != nil {
					return err
				}
			}
			if err := txStore.Delete(ctx, d); err != nil {
				return err
			}
		}
		if parent != nil {
			parent.RemoveChild(id)
			return txStore.Put(ctx, &parent.Task)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.graph.RemoveSubtree(id), nil
}

func (s *taskService) SetStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	if !domain.ValidTaskStatuses[string(status)] {
		return fmt.Errorf("unknown status %q", status)
	}
	entry, err := s.store.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("status change rejected: task does not exist", "task", id)
		return err
	}
	if err != nil {
		return err
	}
	updated := entry.Task.Clone()
	updated.Status = status
	return s.store.Put(ctx, updated)
}

func (s *taskService) Get(ctx context.Context, id string) (*domain.StoredTask, error) {
	return s.store.Get(ctx, id)
}

func (s *taskService) All(ctx context.Context) ([]*domain.StoredTask, error) {
	return s.store.GetAll(ctx)
}

func (s *taskService) Roots(ctx context.Context) ([]*domain.StoredTask, error) {
	entries, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var roots []*domain.StoredTask
	for _, e := range entries {
		if e.ParentID == nil {
			roots = append(roots, e)
		}
	}
	return roots, nil
}

func (s *taskService) Children(ctx context.Context, id string) ([]*domain.StoredTask, error) {
	var out []*domain.StoredTask
	for _, childID := range s.graph.ChildrenIDs(id) {
		child, err := s.store.Get(ctx, childID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

// SortedByDeadline orders tasks by explicit deadline, earliest first.
// Tasks without a deadline sort last; ties break by title for stable
// output.
func (s *taskService) SortedByDeadline(ctx context.Context) ([]*domain.StoredTask, error) {
	entries, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.HardEnd == nil && b.HardEnd == nil:
			return a.Title < b.Title
		case a.HardEnd == nil:
			return false
		case b.HardEnd == nil:
			return true
		case a.HardEnd.Equal(*b.HardEnd):
			return a.Title < b.Title
		default:
			return a.HardEnd.Before(*b.HardEnd)
		}
	})
	return entries, nil
}

func (s *taskService) Overdue(ctx context.Context, now time.Time) ([]*domain.StoredTask, error) {
	entries, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var overdue []*domain.StoredTask
	for _, e := range entries {
		if e.Overdue(now) {
			overdue = append(overdue, e)
		}
	}
	return overdue, nil
}

// prepareNew assigns a placeholder id and creation defaults to a task
// entering the system through the facade.
func (s *taskService) prepareNew(t *domain.Task) error {
	if t.Title == "" {
		return domain.ErrMissingTitle
	}
	if t.ID == "" {
		t.ID = domain.PlaceholderPrefix + uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Status == "" {
		t.Status = domain.TaskNotStarted
	}
	t.RemoteID = ""
	t.ChildIDs = nil
	return nil
}
