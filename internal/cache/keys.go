package cache

import (
	"github.com/corvid89/taskhub/internal/domain/task"
)

// BuildTaskListKey normalizes the list query into a stable cache key
// fragment. Defaults are filled in so "?sortBy=createdAt" and "" hash to the
// same entry.
func BuildTaskListKey(q task.ListTasksQuery) string {
	status := q.Status
	if status == "" {
		status = "all"
	}

	priority := q.Priority
	if priority == "" {
		priority = "all"
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}

	sortOrder := q.SortOrder
	if sortOrder == "" {
		sortOrder = "desc"
	}

	return "status=" + status + ":priority=" + priority + ":sortBy=" + sortBy + ":sortOrder=" + sortOrder
}
