package task_test

import (
	"testing"
	"time"

	"github.com/corvid89/taskhub/internal/domain/task"
)

func TestQueryFilterDefaults(t *testing.T) {
	var q task.ListTasksQuery

	f := q.Filter("u-1")

	if f.UserID != "u-1" {
		t.Fatalf("got user %q", f.UserID)
	}
	if f.Completed != nil || f.Priority != nil {
		t.Fatalf("empty query must not filter: %+v", f)
	}
	if f.SortBy != "createdAt" || f.SortOrder != "desc" {
		t.Fatalf("defaults not applied: %+v", f)
	}
}

func TestQueryFilterStatusMapping(t *testing.T) {
	tests := []struct {
		status string
		want   *bool
	}{
		{"", nil},
		{"all", nil},
		{"completed", boolPtr(true)},
		{"pending", boolPtr(false)},
	}

	for _, tt := range tests {
		t.Run("status_"+tt.status, func(t *testing.T) {
			f := task.ListTasksQuery{Status: tt.status}.Filter("u")

			switch {
			case tt.want == nil && f.Completed != nil:
				t.Fatalf("status %q should not filter, got %v", tt.status, *f.Completed)
			case tt.want != nil && (f.Completed == nil || *f.Completed != *tt.want):
				t.Fatalf("status %q mapped wrong: %v", tt.status, f.Completed)
			}
		})
	}
}

func TestQueryFilterPriority(t *testing.T) {
	if f := (task.ListTasksQuery{Priority: "all"}).Filter("u"); f.Priority != nil {
		t.Fatalf("priority=all should not filter")
	}

	f := task.ListTasksQuery{Priority: "high"}.Filter("u")
	if f.Priority == nil || *f.Priority != "high" {
		t.Fatalf("priority filter not set: %v", f.Priority)
	}
}

func TestNewFromCreateRequestDefaults(t *testing.T) {
	got := task.NewFromCreateRequest(task.CreateTaskRequest{Title: "  Buy milk  "}, "u-1")

	if got.ID == "" {
		t.Fatalf("expected a generated id")
	}
	if got.Title != "Buy milk" {
		t.Fatalf("title not trimmed: %q", got.Title)
	}
	if got.Priority != task.PriorityMedium {
		t.Fatalf("priority should default to medium, got %q", got.Priority)
	}
	if got.Completed {
		t.Fatalf("new task should start pending")
	}
	if got.UserID != "u-1" {
		t.Fatalf("got owner %q", got.UserID)
	}
	if got.CreatedAt.IsZero() || !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Fatalf("timestamps not set together: %v / %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestNewFromCreateRequestKeepsExplicitValues(t *testing.T) {
	due := time.Now().Add(24 * time.Hour).UTC()
	req := task.CreateTaskRequest{
		Title:       "Ship release",
		Description: "  with notes  ",
		Priority:    task.PriorityHigh,
		DueDate:     &due,
	}

	got := task.NewFromCreateRequest(req, "u-1")

	if got.Priority != task.PriorityHigh {
		t.Fatalf("explicit priority overridden: %q", got.Priority)
	}
	if got.Description != "with notes" {
		t.Fatalf("description not trimmed: %q", got.Description)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("due date lost: %v", got.DueDate)
	}
}

func TestUpdateRequestTrim(t *testing.T) {
	title := "  Renamed  "
	desc := "  d  "

	req := task.UpdateTaskRequest{Title: &title, Description: &desc}
	req.Trim()

	if *req.Title != "Renamed" || *req.Description != "d" {
		t.Fatalf("trim failed: %q %q", *req.Title, *req.Description)
	}

	// nil fields stay nil
	var empty task.UpdateTaskRequest
	empty.Trim()
	if empty.Title != nil || empty.Description != nil {
		t.Fatalf("trim materialized absent fields")
	}
}

func boolPtr(v bool) *bool { return &v }
