package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/existflow/ironboard/internal/model"
	"github.com/google/uuid"
)

const taskSelect = `
	SELECT t.id, t.project_id, t.title, t.description, t.status, t.assignee_id,
	       t.created_at, t.updated_at, a.email, a.name
	FROM tasks t
	LEFT JOIN users a ON a.id = t.assignee_id`

// CreateTask inserts a task in the TODO column
func (s *Store) CreateTask(ctx context.Context, projectID, title string, description, assigneeID *string) (*model.Task, error) {
	now := s.now()
	id := uuid.New().String()

	var task *model.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, project_id, title, description, status, assignee_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, projectID, title, nullString(description), string(model.StatusTodo),
			nullString(assigneeID), now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", classify(err))
		}
		if err := s.touchProject(ctx, tx, projectID); err != nil {
			return err
		}
		task, err = s.getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask loads a task with its assignee
func (s *Store) GetTask(ctx context.Context, taskID string) (*model.Task, error) {
	return s.getTask(ctx, s.db, taskID)
}

// ListTasks returns a project's tasks in creation order
func (s *Store) ListTasks(ctx context.Context, projectID string) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, taskSelect+`
		WHERE t.project_id = $1
		ORDER BY t.created_at ASC, t.id ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask applies the fields present in the patch. The patch must
// already be validated: a set title is non-empty and a set status is known.
func (s *Store) UpdateTask(ctx context.Context, taskID string, patch model.TaskPatch) (*model.Task, error) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title.Set {
		add("title", patch.Title.Value)
	}
	if patch.Description.Set {
		add("description", nullString(patch.Description.Ptr()))
	}
	if patch.Status.Set {
		add("status", string(patch.Status.Value))
	}
	if patch.AssigneeID.Set {
		add("assignee_id", nullString(patch.AssigneeID.Ptr()))
	}
	add("updated_at", s.now())
	args = append(args, taskID)

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	var task *model.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", classify(err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}

		task, err = s.getTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		return s.touchProject(ctx, tx, task.ProjectID)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask hard-deletes a task
func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var projectID string
		err := tx.QueryRowContext(ctx, `SELECT project_id FROM tasks WHERE id = $1`, taskID).Scan(&projectID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, taskID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return s.touchProject(ctx, tx, projectID)
	})
}

func (s *Store) getTask(ctx context.Context, q querier, taskID string) (*model.Task, error) {
	rows, err := q.QueryContext(ctx, taskSelect+` WHERE t.id = $1`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get task: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanTask(rows)
}

func scanTask(rows *sql.Rows) (*model.Task, error) {
	var t model.Task
	var status string
	var description, assigneeID, assigneeEmail, assigneeName sql.NullString
	err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &description, &status, &assigneeID,
		&t.CreatedAt, &t.UpdatedAt, &assigneeEmail, &assigneeName)
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	t.Status = model.Status(status)
	t.Description = stringPtr(description)
	t.AssigneeID = stringPtr(assigneeID)
	if assigneeID.Valid && assigneeEmail.Valid {
		t.Assignee = &model.UserRef{
			ID:    assigneeID.String,
			Email: assigneeEmail.String,
			Name:  stringPtr(assigneeName),
		}
	}
	return &t, nil
}
