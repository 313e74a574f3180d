package org

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

// ErrDepartmentRequired is returned when a promotion to manager arrives
// without a target department.
var ErrDepartmentRequired = errors.New("org: promotion to manager requires a department")

// Auditor records side effects of applied transitions.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// TransitionRequest describes an admin-driven role or department change for
// one user.
type TransitionRequest struct {
	UserID       int64
	NewRole      authz.Role
	DepartmentID *int64
	// ExtraMemberIDs are manually selected team members merged on top of the
	// department seeding during promotion to manager.
	ExtraMemberIDs []int64
}

// TransitionService applies role/department transitions. It is the only
// component that mutates team memberships and department manager references;
// each transition runs as a single atomic unit under a per-user lock, so a
// partial failure rolls back instead of leaving memberships half-applied.
type TransitionService struct {
	repo    Repository
	auditor Auditor
	logger  *slog.Logger
}

// NewTransitionService constructs a TransitionService.
func NewTransitionService(repo Repository, auditor Auditor, logger *slog.Logger) *TransitionService {
	return &TransitionService{repo: repo, auditor: auditor, logger: logger}
}

// Apply performs the transition requested by actorID.
func (s *TransitionService) Apply(ctx context.Context, actorID int64, req TransitionRequest) error {
	if !req.NewRole.Valid() {
		return fmt.Errorf("org: %w: %q", shared.ErrInvalidRole, req.NewRole)
	}
	if req.NewRole == authz.RoleManager && req.DepartmentID == nil {
		return ErrDepartmentRequired
	}

	err := s.repo.WithUserLock(ctx, req.UserID, func(ctx context.Context, repo Repository) error {
		oldRole, _, err := repo.GetUserRole(ctx, req.UserID)
		if err != nil && !errors.Is(err, shared.ErrInvalidRole) {
			return fmt.Errorf("org: read current role: %w", err)
		}

		if err := repo.SetUserRole(ctx, req.UserID, req.NewRole, req.DepartmentID); err != nil {
			return fmt.Errorf("org: update role: %w", err)
		}

		switch {
		case req.NewRole == authz.RoleManager:
			return s.promote(ctx, repo, req)
		case oldRole == authz.RoleManager:
			return s.demote(ctx, repo, req.UserID)
		default:
			// Role/department field change only, no membership side effects.
			return nil
		}
	})
	if err != nil {
		return err
	}

	s.audit(ctx, actorID, req)
	return nil
}

// promote rebuilds the user's team from the chosen department's current
// salesperson composition, then merges any manually selected members.
func (s *TransitionService) promote(ctx context.Context, repo Repository, req TransitionRequest) error {
	dept := *req.DepartmentID

	if err := repo.DeleteTeamMembershipsByManager(ctx, req.UserID); err != nil {
		return fmt.Errorf("org: clear memberships: %w", err)
	}
	// A manager is linked to at most one department: release any department
	// still pointing at this user before claiming the new one.
	if err := repo.ClearDepartmentsManagedBy(ctx, req.UserID); err != nil {
		return fmt.Errorf("org: release departments: %w", err)
	}
	manager := req.UserID
	if err := repo.SetDepartmentManager(ctx, dept, &manager); err != nil {
		return fmt.Errorf("org: set department manager: %w", err)
	}

	members, err := repo.ListDepartmentSalespersons(ctx, dept)
	if err != nil {
		return fmt.Errorf("org: list department salespersons: %w", err)
	}
	seeded := make(map[int64]struct{}, len(members))
	for _, memberID := range members {
		if memberID == req.UserID {
			continue
		}
		if err := repo.UpsertTeamMembership(ctx, req.UserID, memberID, dept); err != nil {
			return fmt.Errorf("org: seed membership %d: %w", memberID, err)
		}
		seeded[memberID] = struct{}{}
	}
	for _, memberID := range req.ExtraMemberIDs {
		if memberID == req.UserID {
			continue
		}
		if _, ok := seeded[memberID]; ok {
			continue
		}
		if err := repo.UpsertTeamMembership(ctx, req.UserID, memberID, dept); err != nil {
			return fmt.Errorf("org: add selected member %d: %w", memberID, err)
		}
	}
	return nil
}

// demote removes every team-membership row the user holds as manager and
// clears any department manager reference pointing at them.
func (s *TransitionService) demote(ctx context.Context, repo Repository, userID int64) error {
	if err := repo.DeleteTeamMembershipsByManager(ctx, userID); err != nil {
		return fmt.Errorf("org: clear memberships: %w", err)
	}
	if err := repo.ClearDepartmentsManagedBy(ctx, userID); err != nil {
		return fmt.Errorf("org: clear department manager: %w", err)
	}
	return nil
}

func (s *TransitionService) audit(ctx context.Context, actorID int64, req TransitionRequest) {
	if s.auditor == nil {
		return
	}
	meta := map[string]any{"role": req.NewRole.String()}
	if req.DepartmentID != nil {
		meta["department_id"] = *req.DepartmentID
	}
	if err := s.auditor.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "role_transition",
		Entity:   "user",
		EntityID: strconv.FormatInt(req.UserID, 10),
		Meta:     meta,
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit role transition", slog.Any("error", err))
	}
}
