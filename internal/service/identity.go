package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/existflow/ironboard/internal/apperr"
	"github.com/existflow/ironboard/internal/logger"
	"github.com/existflow/ironboard/internal/model"
	"github.com/existflow/ironboard/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

// AuthResult is returned by every successful sign-in
type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// RegisterInput carries a new account
type RegisterInput struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
}

// Register creates an account and signs it in
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := model.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperr.Validation("email and password required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperr.Validation("invalid email address")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, apperr.Validation("password is too long")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	name := in.Name
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		name = &trimmed
		if trimmed == "" {
			name = nil
		}
	}

	user, err := s.repo.CreateUser(ctx, email, name, string(hash))
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.Conflict("email already registered")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Info("User registered", logger.F("user_id", user.ID))
	return s.startSession(ctx, user)
}

// Login checks a password and opens a session. Every mismatch looks the same.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperr.Validation("email and password required")
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	s.log.Info("User logged in", logger.F("user_id", user.ID))
	return s.startSession(ctx, user)
}

// RequestMagicLink creates a single-use login token when the email belongs
// to an account. The returned token is empty otherwise; callers must not
// reveal the difference.
func (s *Service) RequestMagicLink(ctx context.Context, email string) (string, error) {
	email = model.NormalizeEmail(email)
	if email == "" {
		return "", apperr.Validation("email required")
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", apperr.Internal(err)
	}

	token, err := newToken()
	if err != nil {
		return "", apperr.Internal(err)
	}
	if err := s.repo.CreateMagicLink(ctx, email, token, s.repo.Now().Add(s.opts.MagicLinkTTL)); err != nil {
		return "", apperr.Internal(err)
	}

	s.log.Info("Magic link created", logger.F("email", email))
	return token, nil
}

// VerifyMagicLink consumes a magic link token and opens a session
func (s *Service) VerifyMagicLink(ctx context.Context, token string) (*AuthResult, error) {
	if token == "" {
		return nil, apperr.Validation("token required")
	}

	link, err := s.repo.ConsumeMagicLink(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Validation("invalid or used token")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if link.IsExpired(s.repo.Now()) {
		return nil, apperr.Validation("token expired")
	}

	user, err := s.repo.GetUserByEmail(ctx, link.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Validation("invalid token")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Info("Magic link login", logger.F("user_id", user.ID))
	return s.startSession(ctx, user)
}

// Authenticate resolves a session token to a user id
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apperr.Unauthorized("authorization required")
	}

	sess, err := s.repo.GetSession(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return "", apperr.Unauthorized("invalid token")
	}
	if err != nil {
		return "", apperr.Internal(err)
	}

	if sess.IsExpired(s.repo.Now()) {
		if err := s.repo.DeleteSession(ctx, token); err != nil {
			s.log.Warn("Failed to delete expired session", logger.Err(err))
		}
		return "", apperr.Unauthorized("token expired")
	}
	return sess.UserID, nil
}

// Logout ends a session
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.repo.DeleteSession(ctx, token); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Me returns the signed-in user
func (s *Service) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized("user no longer exists")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return user, nil
}

func (s *Service) startSession(ctx context.Context, user *model.User) (*AuthResult, error) {
	token, err := newToken()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	sess, err := s.repo.CreateSession(ctx, user.ID, token, s.repo.Now().Add(s.opts.SessionTTL))
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &AuthResult{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      user,
	}, nil
}
