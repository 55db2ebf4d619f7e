package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateTaskRequest, userID string) Task {
	now := time.Now().UTC()

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	return Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		DueDate:     req.DueDate,
		Priority:    priority,
		Completed:   false,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Trim normalizes whitespace-padded input before validation. Binding tags
// cannot see through leading/trailing spaces, so "   " would otherwise pass
// the required check.
func (r *CreateTaskRequest) Trim() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
}

func (r *UpdateTaskRequest) Trim() {
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		r.Title = &t
	}
	if r.Description != nil {
		d := strings.TrimSpace(*r.Description)
		r.Description = &d
	}
}
