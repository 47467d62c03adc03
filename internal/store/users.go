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

const userColumns = `id, email, name, password_hash, created_at, updated_at`

// CreateUser inserts a new user. Returns ErrDuplicate if the email is taken.
func (s *Store) CreateUser(ctx context.Context, email string, name *string, passwordHash string) (*model.User, error) {
	now := s.now()
	u := &model.User{
		ID:           uuid.New().String(),
		Email:        model.NormalizeEmail(email),
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, nullString(u.Name), u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", classify(err))
	}
	return u, nil
}

// GetUserByID looks a user up by id
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByEmail looks a user up by normalised email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`,
		model.NormalizeEmail(email))
	return scanUser(row)
}

// SearchUsers returns up to limit users whose email contains query,
// case-insensitively, excluding excludeID.
func (s *Store) SearchUsers(ctx context.Context, excludeID, query string, limit int) ([]model.UserRef, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, name FROM users
		WHERE LOWER(email) LIKE $1 ESCAPE '\' AND id <> $2
		ORDER BY email ASC
		LIMIT $3`,
		pattern, excludeID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := []model.UserRef{}
	for rows.Next() {
		var u model.UserRef
		var name sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &name); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Name = stringPtr(name)
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var name sql.NullString
	err := row.Scan(&u.ID, &u.Email, &name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.Name = stringPtr(name)
	return &u, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
