package service

import (
	"context"
	"errors"
	"strings"

	"github.com/existflow/ironboard/internal/access"
	"github.com/existflow/ironboard/internal/apperr"
	"github.com/existflow/ironboard/internal/logger"
	"github.com/existflow/ironboard/internal/model"
	"github.com/existflow/ironboard/internal/store"
)

// InviteMember adds the user registered under email to the project.
//
// Only the owner may invite. The membership is a single insert; a second
// invite of the same user, concurrent or not, fails on the unique constraint.
func (s *Service) InviteMember(ctx context.Context, ownerID, projectID, email string) (*model.Membership, error) {
	if _, err := s.access.Authorize(ctx, ownerID, projectID, access.MemberInvite); err != nil {
		return nil, err
	}

	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, apperr.Validation("email is required")
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if user.ID == ownerID {
		return nil, apperr.Conflict("user already owns this project")
	}

	m, err := s.repo.AddMembership(ctx, projectID, user.Ref())
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperr.Conflict("user is already a member")
	case err != nil:
		return nil, translate(err, projectNotFound)
	}

	s.log.Info("Member invited",
		logger.F("project_id", projectID),
		logger.F("user_id", user.ID),
	)
	return m, nil
}

// RemoveMember revokes a membership. Owner only.
func (s *Service) RemoveMember(ctx context.Context, ownerID, projectID, userID string) error {
	if _, err := s.access.Authorize(ctx, ownerID, projectID, access.MemberRemove); err != nil {
		return err
	}

	if err := s.repo.RemoveMembership(ctx, projectID, userID); err != nil {
		return translate(err, "member not found")
	}

	s.log.Info("Member removed", logger.F("project_id", projectID), logger.F("user_id", userID))
	return nil
}

// SearchUsers finds users whose email contains query, excluding the caller
func (s *Service) SearchUsers(ctx context.Context, callerID, query string) ([]model.UserRef, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.UserRef{}, nil
	}

	users, err := s.repo.SearchUsers(ctx, callerID, query, SearchLimit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return users, nil
}
