package client

import (
	"context"
	"sync"

	"github.com/corvid89/taskhub/internal/domain/task"
)

type Filters struct {
	Status    string // all, completed, pending
	Priority  string // all, low, medium, high
	SortBy    string
	SortOrder string
}

func DefaultFilters() Filters {
	return Filters{
		Status:    "all",
		Priority:  "all",
		SortBy:    "createdAt",
		SortOrder: "desc",
	}
}

type Stats struct {
	Total     int
	Completed int
	Pending   int
	High      int
	Medium    int
	Low       int
}

// TaskStore is the client-side cache of the current user's tasks. Network
// actions mutate it only after the server confirms; a failed call records
// the error and leaves prior state intact. Derived views (FilteredTasks,
// Stats) are recomputed from the task list on demand.
type TaskStore struct {
	mu      sync.Mutex
	api     *Client
	tasks   []task.Task
	loading bool
	err     string
	filters Filters
}

func NewTaskStore(api *Client) *TaskStore {
	return &TaskStore{
		api:     api,
		filters: DefaultFilters(),
	}
}

// Fetch replaces the task list with the server's view of the current
// filters.
func (s *TaskStore) Fetch(ctx context.Context) error {
	s.begin()

	tasks, err := s.api.ListTasks(ctx, s.Filters())
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	s.tasks = tasks
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	return nil
}

func (s *TaskStore) Create(ctx context.Context, req task.CreateTaskRequest) (task.Task, error) {
	s.begin()

	t, err := s.api.CreateTask(ctx, req)
	if err != nil {
		return task.Task{}, s.fail(err)
	}

	s.mu.Lock()
	// newest first, matching the default createdAt desc ordering
	s.tasks = append([]task.Task{t}, s.tasks...)
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	return t, nil
}

func (s *TaskStore) Update(ctx context.Context, id string, req task.UpdateTaskRequest) (task.Task, error) {
	s.begin()

	t, err := s.api.UpdateTask(ctx, id, req)
	if err != nil {
		return task.Task{}, s.fail(err)
	}

	s.replace(t)

	return t, nil
}

func (s *TaskStore) Toggle(ctx context.Context, id string) (task.Task, string, error) {
	t, message, err := s.api.ToggleTask(ctx, id)
	if err != nil {
		return task.Task{}, "", s.fail(err)
	}

	s.replace(t)

	return t, message, nil
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	s.begin()

	if err := s.api.DeleteTask(ctx, id); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.loading = false
	s.err = ""
	s.mu.Unlock()

	return nil
}

func (s *TaskStore) SetFilters(f Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.Status != "" {
		s.filters.Status = f.Status
	}
	if f.Priority != "" {
		s.filters.Priority = f.Priority
	}
	if f.SortBy != "" {
		s.filters.SortBy = f.SortBy
	}
	if f.SortOrder != "" {
		s.filters.SortOrder = f.SortOrder
	}
}

func (s *TaskStore) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

func (s *TaskStore) Tasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// FilteredTasks re-applies the current filters locally. The server already
// filtered, so this is a no-op for freshly fetched lists, but it keeps the
// view consistent after local create/toggle mutations.
func (s *TaskStore) FilteredTasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]task.Task, 0, len(s.tasks))

	for _, t := range s.tasks {
		if s.filters.Status == "completed" && !t.Completed {
			continue
		}
		if s.filters.Status == "pending" && t.Completed {
			continue
		}
		if s.filters.Priority != "all" && s.filters.Priority != "" && t.Priority != s.filters.Priority {
			continue
		}
		out = append(out, t)
	}

	return out
}

// Stats scans the full current list, ignoring filters.
func (s *TaskStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st Stats
	st.Total = len(s.tasks)

	for _, t := range s.tasks {
		if t.Completed {
			st.Completed++
		} else {
			st.Pending++
		}

		switch t.Priority {
		case task.PriorityHigh:
			st.High++
		case task.PriorityMedium:
			st.Medium++
		case task.PriorityLow:
			st.Low++
		}
	}

	return st
}

func (s *TaskStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *TaskStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *TaskStore) ClearErr() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// Reset drops all local task state, e.g. on logout.
func (s *TaskStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = nil
	s.loading = false
	s.err = ""
	s.filters = DefaultFilters()
}

func (s *TaskStore) begin() {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
}

func (s *TaskStore) fail(err error) error {
	s.mu.Lock()
	s.err = err.Error()
	s.loading = false
	s.mu.Unlock()
	return err
}

func (s *TaskStore) replace(updated task.Task) {
	s.mu.Lock()
	for i, t := range s.tasks {
		if t.ID == updated.ID {
			s.tasks[i] = updated
			break
		}
	}
	s.loading = false
	s.err = ""
	s.mu.Unlock()
}
