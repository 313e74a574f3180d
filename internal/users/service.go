package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lpx0007/training-management-system-sub002/internal/grants"
	"github.com/lpx0007/training-management-system-sub002/internal/org"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

// Service coordinates user administration. Role changes fan out into the
// transition handler for team bookkeeping and into grant provisioning for
// the role's default permission and menu templates.
type Service struct {
	repo        Repository
	transitions *org.TransitionService
	grants      *grants.Service
	logger      *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, transitions *org.TransitionService, grantsSvc *grants.Service, logger *slog.Logger) *Service {
	return &Service{repo: repo, transitions: transitions, grants: grantsSvc, logger: logger}
}

// List returns users matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]User, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	return rows, nil
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// ChangeRole transitions a user to a new role. The structural side effects
// run first under the per-user lock; grant provisioning follows so a failed
// transition leaves the old grants untouched.
func (s *Service) ChangeRole(ctx context.Context, actorID int64, req org.TransitionRequest) error {
	if !req.NewRole.Valid() {
		return shared.ErrInvalidRole
	}
	if err := s.transitions.Apply(ctx, actorID, req); err != nil {
		return err
	}
	if err := s.grants.Provision(ctx, req.UserID, req.NewRole); err != nil {
		// The role is already switched; surface the provisioning failure
		// so the admin retries instead of leaving the user grantless.
		return fmt.Errorf("users: provision grants after transition: %w", err)
	}
	s.logger.Info("role changed",
		slog.Int64("actor_id", actorID),
		slog.Int64("user_id", req.UserID),
		slog.String("role", req.NewRole.String()),
	)
	return nil
}

// SetActive enables or disables an account. Disabling does not revoke the
// live session snapshot; it blocks the next login.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

// IsNotFound reports whether err denotes a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}

// IsInvalidRole reports whether err denotes a role outside the enumeration.
func IsInvalidRole(err error) bool {
	return errors.Is(err, shared.ErrInvalidRole)
}
