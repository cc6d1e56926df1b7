package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/skiff/internal/db"
	"github.com/alexanderramin/skiff/internal/domain"
)

// taskColumns is the canonical SELECT column list for tasks.
const taskColumns = `id, remote_id, title, description, priority,
		created_at, soft_start, hard_end, status, parent_id, child_ids,
		last_modified, sync_status`

const lastSyncKey = "last_sync_time"

// SQLiteTaskStore implements TaskStore over a SQLite database. It accepts a
// db.DBTX so the same store runs standalone or tx-scoped inside a
// UnitOfWork.
type SQLiteTaskStore struct {
	db db.DBTX

	// Now stamps LastModified on Put; overridable in tests.
	Now func() time.Time
}

// NewSQLiteTaskStore creates a new SQLiteTaskStore.
func NewSQLiteTaskStore(dbtx db.DBTX) *SQLiteTaskStore {
	return &SQLiteTaskStore{db: dbtx, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *SQLiteTaskStore) GetAll(ctx context.Context) ([]*domain.StoredTask, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.StoredTask
	for rows.Next() {
		t, err := scanStoredTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

func (s *SQLiteTaskStore) Get(ctx context.Context, key string) (*domain.StoredTask, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, key)
	t, err := scanStoredTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %s: %w", key, domain.ErrNotFound)
	}
	return t, err
}

// Put upserts the task, stamping SyncStatus=pending and LastModified=now.
func (s *SQLiteTaskStore) Put(ctx context.Context, t *domain.Task) error {
	return s.put(ctx, t, s.Now(), domain.SyncPending)
}

// PutSynced upserts the task with an explicit modification time and
// SyncStatus=synced. Reserved for the sync engine's merge writes.
func (s *SQLiteTaskStore) PutSynced(ctx context.Context, t *domain.Task, modifiedAt time.Time) error {
	return s.put(ctx, t, modifiedAt, domain.SyncSynced)
}

func (s *SQLiteTaskStore) put(ctx context.Context, t *domain.Task, modifiedAt time.Time, status domain.SyncStatus) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			remote_id = excluded.remote_id,
			title = excluded.title,
			description = excluded.description,
			priority = excluded.priority,
			created_at = excluded.created_at,
			soft_start = excluded.soft_start,
			hard_end = excluded.hard_end,
			status = excluded.status,
			parent_id = excluded.parent_id,
			child_ids = excluded.child_ids,
			last_modified = excluded.last_modified,
			sync_status = excluded.sync_status`
	var parentID interface{}
	if t.ParentID != nil {
		parentID = *t.ParentID
	}
	_, err := s.db.ExecContext(ctx, query,
		t.ID,
		t.RemoteID,
		t.Title,
		t.Description,
		nullableIntToValue(t.Priority),
		t.CreatedAt.UTC().Format(time.RFC3339Nano),
		nullableTimeToString(t.SoftStart),
		nullableTimeToString(t.HardEnd),
		string(t.Status),
		parentID,
		encodeChildIDs(t.ChildIDs),
		modifiedAt.UTC().Format(time.RFC3339Nano),
		string(status),
	)
	if err != nil {
		return fmt.Errorf("upserting task %s: %w", t.ID, err)
	}
	return nil
}

// MarkSynced flips an entry's sync status without touching LastModified.
func (s *SQLiteTaskStore) MarkSynced(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET sync_status = ? WHERE id = ?`,
		string(domain.SyncSynced), key)
	if err != nil {
		return fmt.Errorf("marking task %s synced: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("task %s: %w", key, domain.ErrNotFound)
	}
	return nil
}

func (s *SQLiteTaskStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, key); err != nil {
		return fmt.Errorf("deleting task %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteTaskStore) LastSyncTime(ctx context.Context) (*time.Time, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM sync_meta WHERE key = ?`, lastSyncKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading last sync time: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("parsing last sync time: %w", err)
	}
	return &t, nil
}

func (s *SQLiteTaskStore) SetLastSyncTime(ctx context.Context, t time.Time) error {
	query := `INSERT INTO sync_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, query, lastSyncKey, t.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("writing last sync time: %w", err)
	}
	return nil
}

// AddPendingDelete records a deletion intent for a task that already had a
// remote identity, so the next sync run can propagate the removal.
func (s *SQLiteTaskStore) AddPendingDelete(ctx context.Context, key string) error {
	query := `INSERT INTO pending_deletes (id) VALUES (?)
		ON CONFLICT(id) DO NOTHING`
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("recording pending deletion %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteTaskStore) PendingDeletes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM pending_deletes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing pending deletions: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning pending deletion: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending deletions: %w", err)
	}
	return keys, nil
}

func (s *SQLiteTaskStore) ClearPendingDelete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_deletes WHERE id = ?`, key); err != nil {
		return fmt.Errorf("clearing pending deletion %s: %w", key, err)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStoredTask(row rowScanner) (*domain.StoredTask, error) {
	var t domain.StoredTask
	var statusStr, syncStatusStr, childIDsRaw string
	var createdAtStr, lastModifiedStr string
	var softStartStr, hardEndStr, parentIDStr sql.NullString
	var priority sql.NullInt64

	err := row.Scan(
		&t.ID,
		&t.RemoteID,
		&t.Title,
		&t.Description,
		&priority,
		&createdAtStr,
		&softStartStr,
		&hardEndStr,
		&statusStr,
		&parentIDStr,
		&childIDsRaw,
		&lastModifiedStr,
		&syncStatusStr,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	if priority.Valid {
		p := int(priority.Int64)
		t.Priority = &p
	}
	t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at for task %s: %w", t.ID, err)
	}
	t.SoftStart = parseNullableTime(softStartStr)
	t.HardEnd = parseNullableTime(hardEndStr)
	t.Status = domain.TaskStatus(statusStr)
	if parentIDStr.Valid && parentIDStr.String != "" {
		p := parentIDStr.String
		t.ParentID = &p
	}
	t.ChildIDs = decodeChildIDs(childIDsRaw)
	t.LastModified, err = time.Parse(time.RFC3339Nano, lastModifiedStr)
	if err != nil {
		return nil, fmt.Errorf("parsing last_modified for task %s: %w", t.ID, err)
	}
	t.SyncStatus = domain.SyncStatus(syncStatusStr)
	return &t, nil
}
