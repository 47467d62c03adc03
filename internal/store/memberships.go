package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/existflow/ironboard/internal/model"
	"github.com/google/uuid"
)

// AddMembership inserts a membership row. The unique (user_id, project_id)
// constraint is the only duplicate check: a second insert for the same pair
// fails with ErrDuplicate, and a deleted project with ErrMissingReference.
func (s *Store) AddMembership(ctx context.Context, projectID string, user model.UserRef) (*model.Membership, error) {
	m := &model.Membership{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ProjectID: projectID,
		User:      user,
		CreatedAt: s.now(),
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO memberships (id, user_id, project_id, created_at)
			VALUES ($1, $2, $3, $4)`,
			m.ID, m.UserID, m.ProjectID, m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to add membership: %w", classify(err))
		}
		return s.touchProject(ctx, tx, projectID)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveMembership deletes the membership of userID in projectID
func (s *Store) RemoveMembership(ctx context.Context, projectID, userID string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM memberships WHERE project_id = $1 AND user_id = $2`,
			projectID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to remove membership: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to remove membership: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return s.touchProject(ctx, tx, projectID)
	})
}

// listMemberships loads memberships with user fields, keyed by project id
func (s *Store) listMemberships(ctx context.Context, q querier, projectIDs ...string) (map[string][]model.Membership, error) {
	args := make([]any, len(projectIDs))
	for i, id := range projectIDs {
		args[i] = id
	}

	rows, err := q.QueryContext(ctx, `
		SELECT m.id, m.user_id, m.project_id, m.created_at, u.email, u.name
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.project_id IN (`+placeholders(1, len(projectIDs))+`)
		ORDER BY m.created_at ASC, m.id ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.Membership, len(projectIDs))
	for rows.Next() {
		var m model.Membership
		var name sql.NullString
		if err := rows.Scan(&m.ID, &m.UserID, &m.ProjectID, &m.CreatedAt, &m.User.Email, &name); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		m.User.ID = m.UserID
		m.User.Name = stringPtr(name)
		out[m.ProjectID] = append(out[m.ProjectID], m)
	}
	return out, rows.Err()
}
