package remote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/skiff/internal/repository"
	"github.com/google/uuid"
)

// Memory is a mutex-guarded in-memory task collection implementing
// repository.RemoteRepo. It backs the reference server and doubles as the
// remote side in sync engine tests.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*repository.RemoteTask

	// Now stamps UpdatedAt on writes; overridable in tests.
	Now func() time.Time
}

// NewMemory creates an empty in-memory collection.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*repository.RemoteTask),
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

var _ repository.RemoteRepo = (*Memory)(nil)

func (m *Memory) ListAll(_ context.Context) ([]*repository.RemoteTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*repository.RemoteTask, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, cloneRemote(e))
	}
	return out, nil
}

func (m *Memory) Create(_ context.Context, t *repository.RemoteTask) (*repository.RemoteTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	created := cloneRemote(t)
	id := uuid.New().String()
	created.ID = id
	created.RemoteID = id
	created.UpdatedAt = m.Now()
	m.entries[id] = created
	return cloneRemote(created), nil
}

func (m *Memory) Update(_ context.Context, t *repository.RemoteTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[t.ID]; !ok {
		return fmt.Errorf("updating task %s: %w", t.ID, ErrRemoteGone)
	}
	updated := cloneRemote(t)
	updated.UpdatedAt = m.Now()
	m.entries[t.ID] = updated
	return nil
}

// Delete removes the task and, recursively, every declared child still
// present in the collection. Deleting an absent key is a no-op.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLocked(key, make(map[string]bool))
	return nil
}

func (m *Memory) deleteLocked(key string, visited map[string]bool) {
	if visited[key] {
		return
	}
	visited[key] = true
	entry, ok := m.entries[key]
	if !ok {
		return
	}
	for _, child := range entry.ChildIDs {
		m.deleteLocked(child, visited)
	}
	delete(m.entries, key)
}

// Get returns a copy of the entry, or nil if absent. Used by the server
// handlers and tests; not part of the RemoteRepo contract.
func (m *Memory) Get(key string) *repository.RemoteTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	return cloneRemote(e)
}

// Seed inserts entries verbatim, preserving their ids and UpdatedAt stamps.
// Tests use it to stage a remote state with chosen timestamps.
func (m *Memory) Seed(entries ...*repository.RemoteTask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.ID] = cloneRemote(e)
	}
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func cloneRemote(t *repository.RemoteTask) *repository.RemoteTask {
	cp := repository.RemoteTask{Task: *t.Task.Clone(), UpdatedAt: t.UpdatedAt}
	return &cp
}
