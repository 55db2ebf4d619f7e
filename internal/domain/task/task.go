package task

import (
	"errors"
	"time"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var ErrNotFound = errors.New("task not found")

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    string     `json:"priority"`
	Completed   bool       `json:"completed"`
	UserID      string     `json:"user"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=100"`
	Description string     `json:"description" binding:"omitempty,max=500"`
	DueDate     *time.Time `json:"dueDate" binding:"omitempty"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
}

// all fields optional, nil means "leave unchanged"
type UpdateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=100"`
	Description *string    `json:"description" binding:"omitempty,max=500"`
	DueDate     *time.Time `json:"dueDate" binding:"omitempty"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	Completed   *bool      `json:"completed" binding:"omitempty"`
}

// with pointers if optional, it will be nil
type ListTasksFilter struct {
	UserID    string
	Completed *bool
	Priority  *string
	SortBy    string
	SortOrder string
}

type ListTasksQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=all completed pending"`
	Priority  string `form:"priority" binding:"omitempty,oneof=all low medium high"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=createdAt dueDate priority title"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}

// Filter resolves the raw query params into a repo filter for the given
// owner. Defaults: sortBy=createdAt, sortOrder=desc, no completion or
// priority filter.
func (q ListTasksQuery) Filter(userID string) ListTasksFilter {
	f := ListTasksFilter{
		UserID:    userID,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}

	switch q.Status {
	case "completed":
		v := true
		f.Completed = &v
	case "pending":
		v := false
		f.Completed = &v
	}

	if q.Priority != "" && q.Priority != "all" {
		p := q.Priority
		f.Priority = &p
	}

	if f.SortBy == "" {
		f.SortBy = "createdAt"
	}
	if f.SortOrder == "" {
		f.SortOrder = "desc"
	}

	return f
}
