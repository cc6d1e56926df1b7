package domain

type TaskStatus string

const (
	TaskNotStarted TaskStatus = "not_started"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskIgnored    TaskStatus = "ignored"
)

// ValidTaskStatuses is the canonical set of accepted task status strings.
var ValidTaskStatuses = map[string]bool{
	"not_started": true, "in_progress": true,
	"completed": true, "ignored": true,
}

// SyncStatus tracks how a stored task relates to the last known remote state.
type SyncStatus string

const (
	// SyncSynced means the entry matches the last known remote state.
	SyncSynced SyncStatus = "synced"
	// SyncPending means the entry has local changes not yet pushed.
	SyncPending SyncStatus = "pending"
	// SyncConflict is part of the persisted state space but is never
	// produced by the merge, which resolves deterministically by timestamp.
	SyncConflict SyncStatus = "conflict"
)

// SyncState is the sync engine's run state.
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncSyncing SyncState = "syncing"
	SyncOffline SyncState = "offline"
	SyncError   SyncState = "error"
)

// DeletePolicy decides what happens to local pending edits against a task
// that was deleted on another device.
type DeletePolicy string

const (
	// HonorRemoteDelete discards local edits and removes the task.
	// Deletion elsewhere was an explicit action; resurrecting a deleted
	// task surprises users more than losing an edit to an abandoned one.
	HonorRemoteDelete DeletePolicy = "honor_remote_delete"
	// KeepLocalEdits resurrects the task: the stale remote identity is
	// dropped and the task is re-created remotely on the next run.
	KeepLocalEdits DeletePolicy = "keep_local_edits"
)
