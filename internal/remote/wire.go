package remote

import (
	"time"

	"github.com/alexanderramin/skiff/internal/domain"
	"github.com/alexanderramin/skiff/internal/repository"
)

// wireTask is the JSON representation shared by the HTTP client and the
// reference server.
type wireTask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    *int       `json:"priority,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	SoftStart   *time.Time `json:"softStart,omitempty"`
	HardEnd     *time.Time `json:"hardEnd,omitempty"`
	Status      string     `json:"status"`
	ParentID    *string    `json:"parentId,omitempty"`
	ChildIDs    []string   `json:"childIds,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toWire(t *repository.RemoteTask) wireTask {
	return wireTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
		SoftStart:   t.SoftStart,
		HardEnd:     t.HardEnd,
		Status:      string(t.Status),
		ParentID:    t.ParentID,
		ChildIDs:    t.ChildIDs,
		UpdatedAt:   t.UpdatedAt,
	}
}

func fromWire(w wireTask) *repository.RemoteTask {
	return &repository.RemoteTask{
		Task: domain.Task{
			ID:          w.ID,
			RemoteID:    w.ID,
			Title:       w.Title,
			Description: w.Description,
			Priority:    w.Priority,
			CreatedAt:   w.CreatedAt,
			SoftStart:   w.SoftStart,
			HardEnd:     w.HardEnd,
			Status:      domain.TaskStatus(w.Status),
			ParentID:    w.ParentID,
			ChildIDs:    w.ChildIDs,
		},
		UpdatedAt: w.UpdatedAt,
	}
}
