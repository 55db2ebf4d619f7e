package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/corvid89/taskhub/internal/domain/task"
	"github.com/corvid89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, title, description, due_date, priority, completed, user_id, created_at, updated_at`

// sortColumns whitelists the sortable fields; anything else would be an
// injection vector since ORDER BY cannot be parameterized.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"dueDate":   "due_date",
	"priority":  "priority",
	"title":     "title",
}

type TasksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *TasksRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *TasksRepo) Create(ctx context.Context, req task.CreateTaskRequest, userID string) (task.Task, error) {
	t := task.NewFromCreateRequest(req, userID)

	err := r.observe("tasks.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO tasks (id, title, description, due_date, priority, completed, user_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t.ID, t.Title, t.Description, t.DueDate, t.Priority, t.Completed, t.UserID, t.CreatedAt, t.UpdatedAt)
		return err
	})

	if err != nil {
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) List(ctx context.Context, filter task.ListTasksFilter) ([]task.Task, error) {
	// every query is scoped to the owner, unconditionally
	conds := []string{"user_id = $1"}
	args := []interface{}{filter.UserID}

	argsPosition := 2

	if filter.Completed != nil {
		conds = append(conds, fmt.Sprintf("completed = $%d", argsPosition))
		args = append(args, *filter.Completed)
		argsPosition++
	}

	if filter.Priority != nil {
		conds = append(conds, fmt.Sprintf("priority = $%d", argsPosition))
		args = append(args, *filter.Priority)
		argsPosition++
	}

	col, ok := sortColumns[filter.SortBy]
	if !ok {
		col = "created_at"
	}

	dir := "DESC"
	if filter.SortOrder == "asc" {
		dir = "ASC"
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` +
		strings.Join(conds, " AND ") +
		` ORDER BY ` + col + ` ` + dir

	output := make([]task.Task, 0)

	err := r.observe("tasks.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var t task.Task

			err = rows.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Priority, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt)

			if err != nil {
				return err
			}

			output = append(output, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id, userID string) (task.Task, error) {
	var t task.Task

	err := r.observe("tasks.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
			id, userID,
		).Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Priority, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

// Update applies only the fields present in the request; absent fields keep
// their prior values. Missing row and wrong owner are indistinguishable.
func (r *TasksRepo) Update(ctx context.Context, id, userID string, req task.UpdateTaskRequest) (task.Task, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id, userID}

	argsPosition := 3

	set := func(col string, val interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argsPosition))
		args = append(args, val)
		argsPosition++
	}

	if req.Title != nil {
		set("title", *req.Title)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.DueDate != nil {
		set("due_date", *req.DueDate)
	}
	if req.Priority != nil {
		set("priority", *req.Priority)
	}
	if req.Completed != nil {
		set("completed", *req.Completed)
	}

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND user_id = $2 RETURNING ` + taskColumns

	var t task.Task

	err := r.observe("tasks.update", func() error {
		return r.pool.QueryRow(ctx, query, args...).
			Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Priority, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Toggle(ctx context.Context, id, userID string) (task.Task, error) {
	var t task.Task

	err := r.observe("tasks.toggle", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE tasks
				SET completed = NOT completed,
						updated_at = NOW()
			WHERE id = $1 AND user_id = $2
			RETURNING `+taskColumns,
			id, userID,
		).Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Priority, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, id, userID string) error {
	var affected int64

	err := r.observe("tasks.delete", func() error {
		tag, err := r.pool.Exec(ctx, `
			DELETE FROM tasks WHERE id = $1 AND user_id = $2
		`, id, userID)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return task.ErrNotFound
	}

	return nil
}
