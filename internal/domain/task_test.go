package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_IsPlaceholder(t *testing.T) {
	assert.True(t, (&Task{ID: "local-abc"}).IsPlaceholder())
	assert.True(t, (&Task{ID: "abc"}).IsPlaceholder(), "no remote id yet")
	assert.False(t, (&Task{ID: "abc", RemoteID: "abc"}).IsPlaceholder())
}

func TestTask_EffectiveStart(t *testing.T) {
	created := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	start := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	task := &Task{CreatedAt: created}
	assert.Equal(t, created, task.EffectiveStart())

	task.SoftStart = &start
	assert.Equal(t, start, task.EffectiveStart())
}

func TestTask_EffectiveEndDefaultsToEndOfWeek(t *testing.T) {
	cases := []struct {
		name    string
		created time.Time
		want    time.Time
	}{
		{
			name:    "monday",
			created: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
			want:    time.Date(2026, 3, 8, 23, 59, 59, 0, time.UTC),
		},
		{
			name:    "sunday stays in its own week",
			created: time.Date(2026, 3, 8, 1, 0, 0, 0, time.UTC),
			want:    time.Date(2026, 3, 8, 23, 59, 59, 0, time.UTC),
		},
		{
			name:    "midweek across month boundary",
			created: time.Date(2026, 4, 29, 12, 0, 0, 0, time.UTC),
			want:    time.Date(2026, 5, 3, 23, 59, 59, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := &Task{CreatedAt: tc.created}
			assert.Equal(t, tc.want, task.EffectiveEnd())
		})
	}
}

func TestTask_EffectiveEndExplicitDeadlineWins(t *testing.T) {
	end := time.Date(2026, 6, 1, 17, 0, 0, 0, time.UTC)
	task := &Task{CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), HardEnd: &end}
	assert.Equal(t, end, task.EffectiveEnd())
}

func TestTask_Overdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	open := &Task{HardEnd: &past, Status: TaskInProgress}
	assert.True(t, open.Overdue(now))

	notYet := &Task{HardEnd: &future, Status: TaskInProgress}
	assert.False(t, notYet.Overdue(now))

	completed := &Task{HardEnd: &past, Status: TaskCompleted}
	assert.False(t, completed.Overdue(now))

	ignored := &Task{HardEnd: &past, Status: TaskIgnored}
	assert.False(t, ignored.Overdue(now))

	// Default deadline: created last week, never finished.
	stale := &Task{CreatedAt: now.AddDate(0, 0, -10), Status: TaskNotStarted}
	assert.True(t, stale.Overdue(now))
}

func TestTask_ChildHelpers(t *testing.T) {
	task := &Task{}

	task.AddChild("a")
	task.AddChild("b")
	task.AddChild("a") // duplicate ignored
	assert.Equal(t, []string{"a", "b"}, task.ChildIDs)
	assert.True(t, task.HasChild("a"))
	assert.False(t, task.HasChild("c"))

	task.RemoveChild("a")
	assert.Equal(t, []string{"b"}, task.ChildIDs)

	task.RemoveChild("missing") // no-op
	assert.Equal(t, []string{"b"}, task.ChildIDs)
}

func TestTask_CloneIsDeep(t *testing.T) {
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	parent := "p"
	prio := 2
	orig := &Task{
		ID:       "t1",
		HardEnd:  &end,
		ParentID: &parent,
		Priority: &prio,
		ChildIDs: []string{"c1"},
	}

	cp := orig.Clone()
	require.Equal(t, orig, cp)

	*cp.HardEnd = end.AddDate(0, 0, 1)
	*cp.ParentID = "q"
	*cp.Priority = 5
	cp.ChildIDs[0] = "c2"

	assert.Equal(t, end, *orig.HardEnd)
	assert.Equal(t, "p", *orig.ParentID)
	assert.Equal(t, 2, *orig.Priority)
	assert.Equal(t, []string{"c1"}, orig.ChildIDs)
}
