package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/corvid89/taskhub/internal/domain/task"
)

// TasksRepo is an in-memory stand-in for the postgres repo. Handler and
// client tests run against it; it mirrors the postgres contract including
// owner scoping and sort semantics.
type TasksRepo struct {
	mu    sync.RWMutex
	items map[string]task.Task
	order []string // insertion order, ties resolve in store-native order
}

func NewTasksRepo() *TasksRepo {
	return &TasksRepo{
		items: make(map[string]task.Task),
	}
}

func (r *TasksRepo) Create(ctx context.Context, req task.CreateTaskRequest, userID string) (task.Task, error) {
	t := task.NewFromCreateRequest(req, userID)

	r.mu.Lock()
	r.items[t.ID] = t
	r.order = append(r.order, t.ID)
	r.mu.Unlock()

	return t, nil
}

func (r *TasksRepo) List(ctx context.Context, filter task.ListTasksFilter) ([]task.Task, error) {
	r.mu.RLock()

	out := make([]task.Task, 0, len(r.order))

	for _, id := range r.order {
		t := r.items[id]

		if t.UserID != filter.UserID {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}

		out = append(out, t)
	}

	r.mu.RUnlock()

	sortTasks(out, filter.SortBy, filter.SortOrder)

	return out, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id, userID string) (task.Task, error) {
	r.mu.RLock()
	t, ok := r.items[id]
	r.mu.RUnlock()

	if !ok || t.UserID != userID {
		return task.Task{}, task.ErrNotFound
	}

	return t, nil
}

func (r *TasksRepo) Update(ctx context.Context, id, userID string, req task.UpdateTaskRequest) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok || t.UserID != userID {
		return task.Task{}, task.ErrNotFound
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.Completed != nil {
		t.Completed = *req.Completed
	}

	t.UpdatedAt = time.Now().UTC()
	r.items[id] = t

	return t, nil
}

func (r *TasksRepo) Toggle(ctx context.Context, id, userID string) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok || t.UserID != userID {
		return task.Task{}, task.ErrNotFound
	}

	t.Completed = !t.Completed
	t.UpdatedAt = time.Now().UTC()
	r.items[id] = t

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok || t.UserID != userID {
		return task.ErrNotFound
	}

	delete(r.items, id)

	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

func sortTasks(items []task.Task, sortBy, sortOrder string) {
	asc := sortOrder == "asc"

	less := func(a, b task.Task) bool {
		switch sortBy {
		case "title":
			return strings.Compare(a.Title, b.Title) < 0
		case "priority":
			// lexicographic, matching a plain column sort in the store
			return strings.Compare(a.Priority, b.Priority) < 0
		case "dueDate":
			// tasks without a due date sort after dated ones ascending
			if a.DueDate == nil || b.DueDate == nil {
				return b.DueDate == nil && a.DueDate != nil
			}
			return a.DueDate.Before(*b.DueDate)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if asc {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
}
