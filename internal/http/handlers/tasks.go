package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/corvid89/taskhub/internal/cache"
	"github.com/corvid89/taskhub/internal/config"
	"github.com/corvid89/taskhub/internal/domain/task"
	"github.com/corvid89/taskhub/internal/http/middlewares"
	"github.com/corvid89/taskhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TasksRepository interface {
	Create(ctx context.Context, req task.CreateTaskRequest, userID string) (task.Task, error)
	List(ctx context.Context, filter task.ListTasksFilter) ([]task.Task, error)
	GetByID(ctx context.Context, id, userID string) (task.Task, error)
	Update(ctx context.Context, id, userID string, req task.UpdateTaskRequest) (task.Task, error)
	Toggle(ctx context.Context, id, userID string) (task.Task, error)
	Delete(ctx context.Context, id, userID string) error
}

type TasksHandler struct {
	repo    TasksRepository
	cache   cache.TaskLists
	backend string
	prom    *observability.Prom
}

func NewTasksHandler(repo TasksRepository) *TasksHandler {
	return &TasksHandler{repo: repo}
}

func NewTasksHandlerWithCache(repo TasksRepository, c cache.TaskLists, backend string) *TasksHandler {
	return &TasksHandler{repo: repo, cache: c, backend: backend}
}

func (h *TasksHandler) WithMetrics(p *observability.Prom) *TasksHandler {
	h.prom = p
	return h
}

type listResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Tasks   []task.Task `json:"tasks"`
}

func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Not authorized, authentication failed")
		return
	}

	var q task.ListTasksQuery

	if !BindQuery(ctx, &q) {
		return
	}

	queryKey := cache.BuildTaskListKey(q)

	if h.cache != nil {
		if payload, hit := h.cache.Get(ctx.Request.Context(), u.ID, queryKey); hit {
			h.countCache(true)
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			return
		}
		h.countCache(false)
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	tasks, err := h.repo.List(cctx, q.Filter(u.ID))

	if err != nil {
		RespondInternal(ctx, "Server error fetching tasks")
		return
	}

	resp := listResponse{Success: true, Count: len(tasks), Tasks: tasks}

	payload, err := json.Marshal(resp)
	if err != nil {
		RespondInternal(ctx, "Server error fetching tasks")
		return
	}

	if h.cache != nil {
		h.cache.Set(ctx.Request.Context(), u.ID, queryKey, payload)
	}

	ctx.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Not authorized, authentication failed")
		return
	}

	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	req.Trim()

	var fieldErrs []FieldError

	if req.Title == "" {
		fieldErrs = append(fieldErrs, FieldError{Field: "title", Message: "is required"})
	}

	// only enforced at creation; an existing task may drift into the past
	if req.DueDate != nil && req.DueDate.Before(time.Now()) {
		fieldErrs = append(fieldErrs, FieldError{Field: "dueDate", Message: "cannot be in the past"})
	}

	if len(fieldErrs) > 0 {
		RespondValidation(ctx, "Validation failed", fieldErrs)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// owner is always the caller, regardless of the payload
	t, err := h.repo.Create(cctx, req, u.ID)

	if err != nil {
		RespondInternal(ctx, "Server error creating task")
		return
	}

	h.invalidate(ctx, u.ID)

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Task created successfully",
		"task":    t,
	})
}

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Not authorized, authentication failed")
		return
	}

	id := ctx.Param("id")
	if uuid.Validate(id) != nil {
		// malformed ids get the same answer as missing ones
		RespondNotFound(ctx, "Task not found")
		return
	}

	var req task.UpdateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	req.Trim()

	if req.Title != nil && *req.Title == "" {
		RespondValidation(ctx, "Validation failed", []FieldError{
			{Field: "title", Message: "is required"},
		})
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	t, err := h.repo.Update(cctx, id, u.ID, req)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}
		RespondInternal(ctx, "Server error updating task")
		return
	}

	h.invalidate(ctx, u.ID)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task updated successfully",
		"task":    t,
	})
}

func (h *TasksHandler) ToggleTask(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Not authorized, authentication failed")
		return
	}

	id := ctx.Param("id")
	if uuid.Validate(id) != nil {
		RespondNotFound(ctx, "Task not found")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	t, err := h.repo.Toggle(cctx, id, u.ID)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}
		RespondInternal(ctx, "Server error toggling task status")
		return
	}

	h.invalidate(ctx, u.ID)

	message := "Task marked as pending"
	if t.Completed {
		message = "Task marked as completed"
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"task":    t,
	})
}

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "Not authorized, authentication failed")
		return
	}

	id := ctx.Param("id")
	if uuid.Validate(id) != nil {
		RespondNotFound(ctx, "Task not found")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id, u.ID)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}
		RespondInternal(ctx, "Server error deleting task")
		return
	}

	h.invalidate(ctx, u.ID)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task deleted successfully",
	})
}

func (h *TasksHandler) invalidate(ctx *gin.Context, userID string) {
	if h.cache != nil {
		h.cache.Invalidate(ctx.Request.Context(), userID)
	}
}

func (h *TasksHandler) countCache(hit bool) {
	if h.prom == nil {
		return
	}
	if hit {
		h.prom.CacheHits.WithLabelValues(h.backend).Inc()
		return
	}
	h.prom.CacheMisses.WithLabelValues(h.backend).Inc()
}
