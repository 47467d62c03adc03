package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/ironboard/internal/model"
)

// CreateSession stores a session token for a user
func (s *Store) CreateSession(ctx context.Context, userID, token string, expiresAt time.Time) (*model.Session, error) {
	sess := &model.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC().Truncate(time.Microsecond),
		CreatedAt: s.now(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`,
		sess.Token, sess.UserID, sess.ExpiresAt, sess.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", classify(err))
	}
	return sess, nil
}

// GetSession looks up a session by token
func (s *Store) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var sess model.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = $1`,
		token,
	).Scan(&sess.Token, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &sess, nil
}

// DeleteSession removes a session; deleting an unknown token is not an error
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CreateMagicLink stores a single-use login token for an email
func (s *Store) CreateMagicLink(ctx context.Context, email, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO magic_links (token, email, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		token, model.NormalizeEmail(email), expiresAt.UTC().Truncate(time.Microsecond), false, s.now(),
	)
	if err != nil {
		return fmt.Errorf("failed to create magic link: %w", classify(err))
	}
	return nil
}

// ConsumeMagicLink marks an unused token as used and returns it. The
// update is conditional so a token can be consumed at most once.
func (s *Store) ConsumeMagicLink(ctx context.Context, token string) (*model.MagicLink, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE magic_links SET used = $2
		WHERE token = $1 AND used = $3`,
		token, true, false,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume magic link: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to consume magic link: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	link := model.MagicLink{Token: token, Used: true}
	err = s.db.QueryRowContext(ctx, `
		SELECT email, expires_at, created_at FROM magic_links WHERE token = $1`,
		token,
	).Scan(&link.Email, &link.ExpiresAt, &link.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read magic link: %w", err)
	}
	return &link, nil
}
