package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/existflow/ironboard/internal/model"
	"github.com/google/uuid"
)

const projectSelect = `
	SELECT p.id, p.name, p.description, p.owner_id, p.created_at, p.updated_at,
	       u.email, u.name,
	       (SELECT COUNT(*) FROM tasks t WHERE t.project_id = p.id)
	FROM projects p
	JOIN users u ON u.id = p.owner_id`

// ProjectRole resolves the user's relation to a project in one query.
// A missing project yields RoleNone.
func (s *Store) ProjectRole(ctx context.Context, userID, projectID string) (model.Role, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `
		SELECT CASE
			WHEN p.owner_id = $1 THEN 'OWNER'
			WHEN EXISTS (
				SELECT 1 FROM memberships m
				WHERE m.project_id = p.id AND m.user_id = $1
			) THEN 'MEMBER'
			ELSE 'NONE'
		END
		FROM projects p
		WHERE p.id = $2`,
		userID, projectID,
	).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RoleNone, nil
	}
	if err != nil {
		return model.RoleNone, fmt.Errorf("failed to resolve project role: %w", err)
	}
	return model.Role(role), nil
}

// TaskProjectID returns the project that owns a task
func (s *Store) TaskProjectID(ctx context.Context, taskID string) (string, error) {
	var projectID string
	err := s.db.QueryRowContext(ctx, `SELECT project_id FROM tasks WHERE id = $1`, taskID).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve task project: %w", err)
	}
	return projectID, nil
}

// CreateProject inserts a project owned by ownerID
func (s *Store) CreateProject(ctx context.Context, ownerID, name string, description *string) (*model.Project, error) {
	now := s.now()
	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, name, nullString(description), ownerID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", classify(err))
	}

	p, err := s.getProjectRow(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	p.Memberships = []model.Membership{}
	return p, nil
}

// ListProjectsFor returns every project the user owns or is a member of,
// most recently updated first, with members and task counts.
func (s *Store) ListProjectsFor(ctx context.Context, userID string) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, projectSelect+`
		WHERE p.owner_id = $1 OR EXISTS (
			SELECT 1 FROM memberships m
			WHERE m.project_id = p.id AND m.user_id = $1
		)
		ORDER BY p.updated_at DESC, p.created_at DESC, p.id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	rows.Close()

	if len(projects) == 0 {
		return projects, nil
	}

	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	members, err := s.listMemberships(ctx, s.db, ids...)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].Memberships = members[projects[i].ID]
		if projects[i].Memberships == nil {
			projects[i].Memberships = []model.Membership{}
		}
	}
	return projects, nil
}

// GetProject loads a project with owner, memberships and tasks
func (s *Store) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	p, err := s.getProjectRow(ctx, s.db, projectID)
	if err != nil {
		return nil, err
	}

	members, err := s.listMemberships(ctx, s.db, projectID)
	if err != nil {
		return nil, err
	}
	p.Memberships = members[projectID]
	if p.Memberships == nil {
		p.Memberships = []model.Membership{}
	}

	tasks, err := s.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	p.Tasks = tasks
	return p, nil
}

// DeleteProject removes a project with its tasks and memberships in a
// single transaction.
func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = $1`, projectID); err != nil {
			return fmt.Errorf("failed to delete project tasks: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM memberships WHERE project_id = $1`, projectID); err != nil {
			return fmt.Errorf("failed to delete project memberships: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// touchProject bumps updated_at so listings reflect board activity
func (s *Store) touchProject(ctx context.Context, q querier, projectID string) error {
	if _, err := q.ExecContext(ctx, `UPDATE projects SET updated_at = $1 WHERE id = $2`, s.now(), projectID); err != nil {
		return fmt.Errorf("failed to touch project: %w", err)
	}
	return nil
}

func (s *Store) getProjectRow(ctx context.Context, q querier, projectID string) (*model.Project, error) {
	rows, err := q.QueryContext(ctx, projectSelect+` WHERE p.id = $1`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to get project: %w", err)
		}
		return nil, ErrNotFound
	}
	return scanProject(rows)
}

func scanProject(rows *sql.Rows) (*model.Project, error) {
	var p model.Project
	var description, ownerName sql.NullString
	err := rows.Scan(&p.ID, &p.Name, &description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
		&p.Owner.Email, &ownerName, &p.TaskCount)
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	p.Description = stringPtr(description)
	p.Owner.ID = p.OwnerID
	p.Owner.Name = stringPtr(ownerName)
	return &p, nil
}
