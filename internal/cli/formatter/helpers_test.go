package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/skiff/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRelativeDateFrom(t *testing.T) {
	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"today", now.Add(2 * time.Hour), "Today"},
		{"tomorrow", now.AddDate(0, 0, 1), "Tomorrow"},
		{"yesterday", now.AddDate(0, 0, -1), "Yesterday"},
		{"in days", now.AddDate(0, 0, 5), "In 5d"},
		{"in weeks", now.AddDate(0, 0, 21), "In 3w"},
		{"in months", now.AddDate(0, 0, 90), "In 3mo"},
		{"days ago", now.AddDate(0, 0, -6), "6d ago"},
		{"weeks ago", now.AddDate(0, 0, -21), "3w ago"},
		{"months ago", now.AddDate(0, 0, -90), "3mo ago"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RelativeDateFrom(tc.at, now))
		})
	}
}

func TestDeadlineStyledMarksDefaultDeadline(t *testing.T) {
	now := time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)

	implicit := &domain.StoredTask{Task: domain.Task{CreatedAt: now}}
	assert.Contains(t, DeadlineStyled(implicit, now), "(default)")

	end := now.AddDate(0, 0, 3)
	explicit := &domain.StoredTask{Task: domain.Task{CreatedAt: now, HardEnd: &end}}
	assert.NotContains(t, DeadlineStyled(explicit, now), "(default)")
	assert.Contains(t, DeadlineStyled(explicit, now), "In 3d")
}
