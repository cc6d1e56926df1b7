package domain

import (
	"strings"
	"time"
)

// PlaceholderPrefix marks task IDs minted locally before the remote
// collection has assigned a durable identifier.
const PlaceholderPrefix = "local-"

// Task is the canonical in-memory representation of one task. ParentID and
// ChildIDs are the source of truth for the relationship graph; the graph
// package maintains a derived index over them.
type Task struct {
	ID          string
	RemoteID    string // empty until the remote collection has persisted it
	Title       string
	Description string
	Priority    *int // reserved for future scheduling

	CreatedAt time.Time
	SoftStart *time.Time
	HardEnd   *time.Time

	Status TaskStatus

	ParentID *string
	ChildIDs []string
}

// IsPlaceholder reports whether the task has only a local identity.
func (t *Task) IsPlaceholder() bool {
	return t.RemoteID == "" || strings.HasPrefix(t.ID, PlaceholderPrefix)
}

// EffectiveStart returns SoftStart, defaulting to CreatedAt.
func (t *Task) EffectiveStart() time.Time {
	if t.SoftStart != nil {
		return *t.SoftStart
	}
	return t.CreatedAt
}

// EffectiveEnd returns HardEnd, defaulting to the end of the ISO week
// containing CreatedAt (Sunday 23:59:59).
func (t *Task) EffectiveEnd() time.Time {
	if t.HardEnd != nil {
		return *t.HardEnd
	}
	return endOfWeek(t.CreatedAt)
}

// Overdue reports whether the effective deadline has passed and the task is
// still open (not completed, not ignored).
func (t *Task) Overdue(now time.Time) bool {
	if t.Status == TaskCompleted || t.Status == TaskIgnored {
		return false
	}
	return t.EffectiveEnd().Before(now)
}

// HasChild reports whether id appears in ChildIDs.
func (t *Task) HasChild(id string) bool {
	for _, c := range t.ChildIDs {
		if c == id {
			return true
		}
	}
	return false
}

// AddChild appends id to ChildIDs if not already present, preserving order.
func (t *Task) AddChild(id string) {
	if !t.HasChild(id) {
		t.ChildIDs = append(t.ChildIDs, id)
	}
}

// RemoveChild deletes id from ChildIDs, preserving the order of the rest.
func (t *Task) RemoveChild(id string) {
	out := t.ChildIDs[:0]
	for _, c := range t.ChildIDs {
		if c != id {
			out = append(out, c)
		}
	}
	t.ChildIDs = out
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	cp := *t
	if t.Priority != nil {
		p := *t.Priority
		cp.Priority = &p
	}
	if t.SoftStart != nil {
		s := *t.SoftStart
		cp.SoftStart = &s
	}
	if t.HardEnd != nil {
		e := *t.HardEnd
		cp.HardEnd = &e
	}
	if t.ParentID != nil {
		p := *t.ParentID
		cp.ParentID = &p
	}
	cp.ChildIDs = append([]string(nil), t.ChildIDs...)
	return &cp
}

// StoredTask is the persisted projection of a Task plus per-record sync
// metadata maintained by the local store.
type StoredTask struct {
	Task
	LastModified time.Time
	SyncStatus   SyncStatus
}

// endOfWeek returns the last second of the ISO week (Monday-based) that
// contains t, in t's location.
func endOfWeek(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // Sunday
	}
	daysLeft := 7 - wd
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, daysLeft).Add(24*time.Hour - time.Second)
}
