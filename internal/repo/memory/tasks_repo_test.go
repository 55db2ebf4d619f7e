package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corvid89/taskhub/internal/domain/task"
	"github.com/corvid89/taskhub/internal/repo/memory"
)

func mustCreate(t *testing.T, r *memory.TasksRepo, userID string, req task.CreateTaskRequest) task.Task {
	t.Helper()

	created, err := r.Create(context.Background(), req, userID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return created
}

func titles(items []task.Task) []string {
	out := make([]string, 0, len(items))
	for _, t := range items {
		out = append(out, t.Title)
	}
	return out
}

func TestTasksRepoOwnerScoping(t *testing.T) {
	ctx := context.Background()
	r := memory.NewTasksRepo()

	mine := mustCreate(t, r, "owner-1", task.CreateTaskRequest{Title: "Mine"})
	mustCreate(t, r, "owner-2", task.CreateTaskRequest{Title: "Theirs"})

	got, err := r.List(ctx, task.ListTasksFilter{UserID: "owner-1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Mine" {
		t.Fatalf("list leaked across owners: %v", titles(got))
	}

	// every operation against someone else's task reads as not found
	if _, err := r.GetByID(ctx, mine.ID, "owner-2"); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("get: want ErrNotFound, got %v", err)
	}

	title := "Hijacked"
	if _, err := r.Update(ctx, mine.ID, "owner-2", task.UpdateTaskRequest{Title: &title}); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("update: want ErrNotFound, got %v", err)
	}

	if _, err := r.Toggle(ctx, mine.ID, "owner-2"); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("toggle: want ErrNotFound, got %v", err)
	}

	if err := r.Delete(ctx, mine.ID, "owner-2"); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("delete: want ErrNotFound, got %v", err)
	}

	// and the task is still there for its owner
	if _, err := r.GetByID(ctx, mine.ID, "owner-1"); err != nil {
		t.Fatalf("owner lost their task: %v", err)
	}
}

func TestTasksRepoFilters(t *testing.T) {
	ctx := context.Background()
	r := memory.NewTasksRepo()

	a := mustCreate(t, r, "u", task.CreateTaskRequest{Title: "A", Priority: task.PriorityHigh})
	mustCreate(t, r, "u", task.CreateTaskRequest{Title: "B", Priority: task.PriorityLow})

	if _, err := r.Toggle(ctx, a.ID, "u"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	completed := true
	got, err := r.List(ctx, task.ListTasksFilter{UserID: "u", Completed: &completed})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Title != "A" {
		t.Fatalf("completed filter: got %v", titles(got))
	}

	high := task.PriorityHigh
	got, err = r.List(ctx, task.ListTasksFilter{UserID: "u", Priority: &high})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Title != "A" {
		t.Fatalf("priority filter: got %v", titles(got))
	}
}

func TestTasksRepoSorting(t *testing.T) {
	ctx := context.Background()
	r := memory.NewTasksRepo()

	d1 := time.Now().Add(48 * time.Hour).UTC()
	d2 := time.Now().Add(24 * time.Hour).UTC()

	mustCreate(t, r, "u", task.CreateTaskRequest{Title: "B", DueDate: &d1})
	mustCreate(t, r, "u", task.CreateTaskRequest{Title: "A", DueDate: &d2})
	mustCreate(t, r, "u", task.CreateTaskRequest{Title: "C"})

	tests := []struct {
		name      string
		sortBy    string
		sortOrder string
		want      []string
	}{
		{"title_asc", "title", "asc", []string{"A", "B", "C"}},
		{"title_desc", "title", "desc", []string{"C", "B", "A"}},
		{"created_asc", "createdAt", "asc", []string{"B", "A", "C"}},
		{"created_desc", "createdAt", "desc", []string{"C", "A", "B"}},
		// undated tasks go last ascending
		{"due_asc", "dueDate", "asc", []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got, err := r.List(ctx, task.ListTasksFilter{UserID: "u", SortBy: tt.sortBy, SortOrder: tt.sortOrder})
			if err != nil {
				t.Fatalf("list: %v", err)
			}

			names := titles(got)
			if len(names) != len(tt.want) {
				t.Fatalf("got %v, want %v", names, tt.want)
			}
			for i := range names {
				if names[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", names, tt.want)
				}
			}
		})
	}
}

func TestTasksRepoPartialUpdate(t *testing.T) {
	ctx := context.Background()
	r := memory.NewTasksRepo()

	due := time.Now().Add(24 * time.Hour).UTC()
	created := mustCreate(t, r, "u", task.CreateTaskRequest{
		Title:       "Original",
		Description: "keep me",
		Priority:    task.PriorityHigh,
		DueDate:     &due,
	})

	title := "Renamed"
	got, err := r.Update(ctx, created.ID, "u", task.UpdateTaskRequest{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if got.Title != "Renamed" {
		t.Fatalf("title not updated: %q", got.Title)
	}
	if got.Description != "keep me" || got.Priority != task.PriorityHigh || got.DueDate == nil {
		t.Fatalf("absent fields were clobbered: %+v", got)
	}
	if !got.UpdatedAt.After(created.UpdatedAt) && !got.UpdatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("updatedAt went backwards")
	}
}

func TestTasksRepoToggleRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := memory.NewTasksRepo()

	created := mustCreate(t, r, "u", task.CreateTaskRequest{Title: "Flip me"})
	if created.Completed {
		t.Fatalf("new task should start pending")
	}

	once, err := r.Toggle(ctx, created.ID, "u")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !once.Completed {
		t.Fatalf("first toggle should complete the task")
	}

	twice, err := r.Toggle(ctx, created.ID, "u")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if twice.Completed {
		t.Fatalf("second toggle should restore pending")
	}
}

func TestTasksRepoDelete(t *testing.T) {
	ctx := context.Background()
	r := memory.NewTasksRepo()

	created := mustCreate(t, r, "u", task.CreateTaskRequest{Title: "Doomed"})

	if err := r.Delete(ctx, created.ID, "u"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.Delete(ctx, created.ID, "u"); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}

	got, err := r.List(ctx, task.ListTasksFilter{UserID: "u"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("deleted task still listed: %v", titles(got))
	}
}
