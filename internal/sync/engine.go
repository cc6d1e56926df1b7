// Package sync reconciles the local task store with the user's remote task
// collection. The merge is tombstone-free: per task it compares the local
// entry, the remote entry, and the local sync status, resolving field
// conflicts by last-write-wins with remote-favored ties.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/skiff/internal/domain"
	"github.com/alexanderramin/skiff/internal/repository"
	"github.com/google/uuid"
)

// Engine reconciles a TaskStore against a RemoteRepo in strictly sequential
// phases: push recorded deletions and local changes, remap placeholder
// identifiers, pull remote changes, settle sync metadata. Phases commit to
// the store as they complete; a failed run leaves a partially-reconciled but
// never corrupt state.
//
// The engine is constructed once by the composition root and handed a
// replaceable remote: no remote attached means offline, which is a status,
// not an error.
type Engine struct {
	store  repository.TaskStore
	logger *slog.Logger
	policy domain.DeletePolicy

	mu      sync.Mutex
	remote  repository.RemoteRepo
	syncing bool
	lastErr error

	timerMu   sync.Mutex
	timerStop chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithRemote attaches a remote collection at construction time.
func WithRemote(r repository.RemoteRepo) Option {
	return func(e *Engine) { e.remote = r }
}

// WithDeletePolicy overrides the default HonorRemoteDelete policy.
func WithDeletePolicy(p domain.DeletePolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a sync engine over the given local store.
func NewEngine(store repository.TaskStore, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		policy: domain.HonorRemoteDelete,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// AttachRemote swaps in a remote collection; the engine leaves offline.
func (e *Engine) AttachRemote(r repository.RemoteRepo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.remote = r
}

// DetachRemote drops the remote collection; subsequent syncs are offline
// no-ops until a remote is attached again.
func (e *Engine) DetachRemote() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.remote = nil
}

// State reports the engine's current status.
func (e *Engine) State() domain.SyncState {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.syncing:
		return domain.SyncSyncing
	case e.remote == nil:
		return domain.SyncOffline
	case e.lastErr != nil:
		return domain.SyncError
	default:
		return domain.SyncIdle
	}
}

// LastError returns the error recorded by the most recent failed run, or
// nil after a successful one.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Sync runs one full reconciliation. While offline it is a logged no-op.
// A call arriving while a run is in flight is a logged no-op too: callers
// needing guaranteed eventual sync re-trigger later (the auto-sync timer
// does). Per-task remote failures are logged and skipped; only engine-wide
// setup failures abort the run.
func (e *Engine) Sync(ctx context.Context) error {
	e.mu.Lock()
	if e.remote == nil {
		e.mu.Unlock()
		e.logger.Info("sync skipped: no remote attached")
		return nil
	}
	if e.syncing {
		e.mu.Unlock()
		e.logger.Info("sync skipped: already in flight")
		return nil
	}
	e.syncing = true
	remote := e.remote
	e.mu.Unlock()

	err := e.run(ctx, remote)

	e.mu.Lock()
	e.syncing = false
	e.lastErr = err
	e.mu.Unlock()
	return err
}

func (e *Engine) run(ctx context.Context, remote repository.RemoteRepo) error {
	undeleted, err := e.pushDeletions(ctx, remote)
	if err != nil {
		return err
	}

	snapshot, err := remote.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("listing remote snapshot: %w", err)
	}
	if len(undeleted) > 0 {
		// Entries whose remote deletion just failed are still in the
		// snapshot; pulling them would resurrect removed tasks.
		kept := make([]*repository.RemoteTask, 0, len(snapshot))
		for _, rt := range snapshot {
			if !undeleted[rt.ID] {
				kept = append(kept, rt)
			}
		}
		snapshot = kept
	}
	byID := make(map[string]*repository.RemoteTask, len(snapshot))
	for _, rt := range snapshot {
		byID[rt.ID] = rt
	}

	locals, err := e.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("scanning local store: %w", err)
	}

	unpushed := make(map[string]bool)
	created := e.pushLocal(ctx, remote, locals, byID, unpushed)
	if err := e.remapPlaceholders(ctx, remote, created, unpushed); err != nil {
		return err
	}
	if err := e.pullRemote(ctx, snapshot, created); err != nil {
		return err
	}
	if err := e.settle(ctx, unpushed); err != nil {
		return err
	}

	e.logger.Info("sync completed",
		"remote_entries", len(snapshot),
		"local_entries", len(locals),
		"created_remotely", len(created),
	)
	return nil
}

// pushDeletions propagates recorded local removals to the remote before the
// snapshot is taken. Each intent is cleared once the remote confirms; a
// failed deletion stays recorded for the next run and is reported so the
// caller can mask its snapshot entry.
func (e *Engine) pushDeletions(ctx context.Context, remote repository.RemoteRepo) (map[string]bool, error) {
	pending, err := e.store.PendingDeletes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing pending deletions: %w", err)
	}
	undeleted := make(map[string]bool)
	for _, id := range pending {
		if err := remote.Delete(ctx, id); err != nil {
			e.logger.Warn("delete: removing task remotely failed", "task", id, "error", err)
			undeleted[id] = true
			continue
		}
		if err := e.store.ClearPendingDelete(ctx, id); err != nil {
			return nil, fmt.Errorf("clearing pending deletion %s: %w", id, err)
		}
		e.logger.Debug("delete: local removal pushed", "task", id)
	}
	return undeleted, nil
}

// pushLocal is phase 1. It creates placeholders remotely, pushes pending
// local edits that win last-write-wins, and honors remote deletions. It
// returns the placeholder-id -> created-entry mapping for phase 2. Entries
// whose push failed are added to unpushed so phase 4 leaves them pending for
// the next run instead of stranding the edit as synced.
func (e *Engine) pushLocal(ctx context.Context, remote repository.RemoteRepo,
	locals []*domain.StoredTask, byID map[string]*repository.RemoteTask,
	unpushed map[string]bool) map[string]*repository.RemoteTask {

	created := make(map[string]*repository.RemoteTask)
	for _, local := range locals {
		switch {
		case local.IsPlaceholder():
			entry, err := remote.Create(ctx, &repository.RemoteTask{Task: *local.Task.Clone()})
			if err != nil {
				e.logger.Warn("push: creating task remotely failed",
					"task", local.ID, "error", err)
				continue
			}
			created[local.ID] = entry

		case byID[local.ID] != nil:
			if local.SyncStatus != domain.SyncPending {
				continue
			}
			remoteEntry := byID[local.ID]
			if local.LastModified.After(remoteEntry.UpdatedAt) {
				// Local edit is strictly newer: push it.
				if err := remote.Update(ctx, &repository.RemoteTask{Task: *local.Task.Clone()}); err != nil {
					e.logger.Warn("push: updating task remotely failed",
						"task", local.ID, "error", err)
					unpushed[local.ID] = true
					continue
				}
				e.logger.Debug("push: local edit won", "task", local.ID)
			} else {
				// Remote wins, ties included. Committing the pull here
				// keeps the entry consistent before phase 3 revisits it.
				if err := e.store.PutSynced(ctx, remoteEntry.Task.Clone(), remoteEntry.UpdatedAt); err != nil {
					e.logger.Warn("push: overwriting local entry failed",
						"task", local.ID, "error", err)
					unpushed[local.ID] = true
					continue
				}
				e.logger.Debug("push: remote edit won", "task", local.ID)
			}

		default:
			// Known remotely once, gone from the snapshot: deleted on
			// another device.
			e.handleRemoteDeletion(ctx, local)
		}
	}
	return created
}

func (e *Engine) handleRemoteDeletion(ctx context.Context, local *domain.StoredTask) {
	if local.SyncStatus == domain.SyncPending && e.policy == domain.KeepLocalEdits {
		// Resurrect: drop the stale remote identity and re-key under a
		// fresh placeholder, to be re-created on the next run.
		revived := local.Task.Clone()
		revived.ID = domain.PlaceholderPrefix + uuid.New().String()
		revived.RemoteID = ""
		if err := e.store.Delete(ctx, local.ID); err != nil {
			e.logger.Warn("deletion: dropping stale entry failed", "task", local.ID, "error", err)
			return
		}
		if err := e.store.Put(ctx, revived); err != nil {
			e.logger.Warn("deletion: resurrecting entry failed", "task", local.ID, "error", err)
			return
		}
		e.logger.Info("deletion: local edits kept, task re-keyed",
			"task", local.ID, "revived_as", revived.ID)
		return
	}

	if local.SyncStatus == domain.SyncPending {
		e.logger.Info("deletion: discarding pending local edits", "task", local.ID)
	}
	if err := e.store.Delete(ctx, local.ID); err != nil {
		e.logger.Warn("deletion: removing local entry failed", "task", local.ID, "error", err)
	}
}

// remapPlaceholders is phase 2. Each placeholder entry is re-keyed under
// its remote-assigned identifier and marked synced; parent/child references
// to remapped placeholders are rewritten across the store and the corrected
// references pushed back to the remote so no record references an id that
// no longer exists.
func (e *Engine) remapPlaceholders(ctx context.Context, remote repository.RemoteRepo,
	created map[string]*repository.RemoteTask, unpushed map[string]bool) error {

	if len(created) == 0 {
		return nil
	}

	newID := make(map[string]string, len(created))
	for oldID, entry := range created {
		newID[oldID] = entry.ID
	}

	for oldID, entry := range created {
		local, err := e.store.Get(ctx, oldID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue // removed mid-run
			}
			return fmt.Errorf("remap: reading placeholder %s: %w", oldID, err)
		}
		remapped := local.Task.Clone()
		remapped.ID = entry.ID
		remapped.RemoteID = entry.ID
		refsChanged := rewriteReferences(remapped, newID)

		if err := e.store.Delete(ctx, oldID); err != nil {
			return fmt.Errorf("remap: deleting placeholder %s: %w", oldID, err)
		}
		if err := e.store.PutSynced(ctx, remapped, entry.UpdatedAt); err != nil {
			return fmt.Errorf("remap: re-inserting task %s: %w", entry.ID, err)
		}
		if refsChanged {
			if err := remote.Update(ctx, &repository.RemoteTask{Task: *remapped.Clone()}); err != nil {
				e.logger.Warn("remap: pushing corrected references failed",
					"task", remapped.ID, "error", err)
				// Downgrade to pending so the corrected references get
				// pushed on the next run.
				if err := e.store.Put(ctx, remapped); err != nil {
					return fmt.Errorf("remap: re-flagging task %s: %w", remapped.ID, err)
				}
				unpushed[remapped.ID] = true
			}
		}
	}

	// Pre-existing entries may still point at old placeholder ids.
	locals, err := e.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("remap: rescanning local store: %w", err)
	}
	for _, local := range locals {
		fixed := local.Task.Clone()
		if !rewriteReferences(fixed, newID) {
			continue
		}
		if local.SyncStatus == domain.SyncPending {
			// A pending entry keeps its pending status; the corrected
			// references are a real local change.
			if err := e.store.Put(ctx, fixed); err != nil {
				return fmt.Errorf("remap: rewriting references on %s: %w", local.ID, err)
			}
		} else if err := e.store.PutSynced(ctx, fixed, local.LastModified); err != nil {
			return fmt.Errorf("remap: rewriting references on %s: %w", local.ID, err)
		}
		if !fixed.IsPlaceholder() {
			if err := remote.Update(ctx, &repository.RemoteTask{Task: *fixed.Clone()}); err != nil {
				e.logger.Warn("remap: pushing corrected references failed",
					"task", fixed.ID, "error", err)
				if local.SyncStatus != domain.SyncPending {
					if err := e.store.Put(ctx, fixed); err != nil {
						return fmt.Errorf("remap: re-flagging task %s: %w", fixed.ID, err)
					}
				}
				unpushed[fixed.ID] = true
			}
		}
	}
	return nil
}

// pullRemote is phase 3. Remote entries not remapped in phase 2 are pulled
// down: inserted when absent, or overwriting a synced local entry when the
// remote side is strictly newer. Pending entries were already resolved in
// phase 1.
func (e *Engine) pullRemote(ctx context.Context, snapshot []*repository.RemoteTask,
	created map[string]*repository.RemoteTask) error {

	remapped := make(map[string]bool, len(created))
	for _, entry := range created {
		remapped[entry.ID] = true
	}

	for _, rt := range snapshot {
		if remapped[rt.ID] {
			continue
		}
		local, err := e.store.Get(ctx, rt.ID)
		if errors.Is(err, domain.ErrNotFound) {
			if err := e.store.PutSynced(ctx, rt.Task.Clone(), rt.UpdatedAt); err != nil {
				return fmt.Errorf("pull: inserting task %s: %w", rt.ID, err)
			}
			e.logger.Debug("pull: new remote task", "task", rt.ID)
			continue
		}
		if err != nil {
			return fmt.Errorf("pull: reading task %s: %w", rt.ID, err)
		}
		if local.SyncStatus != domain.SyncSynced {
			continue
		}
		if rt.UpdatedAt.After(local.LastModified) {
			if err := e.store.PutSynced(ctx, rt.Task.Clone(), rt.UpdatedAt); err != nil {
				return fmt.Errorf("pull: overwriting task %s: %w", rt.ID, err)
			}
			e.logger.Debug("pull: remote update applied", "task", rt.ID)
		}
	}
	return nil
}

// settle is phase 4: every remaining entry that is not an unpushed
// placeholder and had no push failure this run is marked synced, and the
// global last-sync-time advances. Entries in unpushed stay pending so their
// edits are retried.
func (e *Engine) settle(ctx context.Context, unpushed map[string]bool) error {
	locals, err := e.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("settle: rescanning local store: %w", err)
	}
	for _, local := range locals {
		if local.IsPlaceholder() || local.SyncStatus == domain.SyncSynced || unpushed[local.ID] {
			continue
		}
		if err := e.store.MarkSynced(ctx, local.ID); err != nil {
			return fmt.Errorf("settle: marking task %s synced: %w", local.ID, err)
		}
	}
	if err := e.store.SetLastSyncTime(ctx, time.Now().UTC()); err != nil {
		return fmt.Errorf("settle: recording sync time: %w", err)
	}
	return nil
}

// StartAutoSync runs Sync on a fixed interval until StopAutoSync. Failures
// are logged, never propagated. Starting again cancels the previous timer:
// at most one repeating timer is active.
func (e *Engine) StartAutoSync(interval time.Duration) {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	if e.timerStop != nil {
		close(e.timerStop)
	}
	stop := make(chan struct{})
	e.timerStop = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := e.Sync(context.Background()); err != nil {
					e.logger.Warn("auto-sync failed", "error", err)
				}
			}
		}
	}()
}

// StopAutoSync cancels the repeating timer, if any.
func (e *Engine) StopAutoSync() {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	if e.timerStop != nil {
		close(e.timerStop)
		e.timerStop = nil
	}
}

// rewriteReferences replaces any parent/child references to remapped
// placeholder ids and reports whether anything changed.
func rewriteReferences(t *domain.Task, newID map[string]string) bool {
	changed := false
	if t.ParentID != nil {
		if mapped, ok := newID[*t.ParentID]; ok {
			t.ParentID = &mapped
			changed = true
		}
	}
	for i, c := range t.ChildIDs {
		if mapped, ok := newID[c]; ok {
			t.ChildIDs[i] = mapped
			changed = true
		}
	}
	return changed
}
