package grants

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

// Auditor records grant edits.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service builds authorization contexts from stored grants and applies
// admin-driven grant edits.
type Service struct {
	repo    Repository
	auditor Auditor
	logger  *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, auditor Auditor, logger *slog.Logger) *Service {
	return &Service{repo: repo, auditor: auditor, logger: logger}
}

// BuildContext reads the user's grant rows and assembles the session
// authorization context. A store failure propagates to the caller; no
// permissive default context is ever substituted. A role outside the
// enumeration is kept verbatim: the decision engine denies everything for it.
func (s *Service) BuildContext(ctx context.Context, userID int64) (*authz.Context, error) {
	g, err := s.repo.GetUserGrants(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("grants: build context for user %d: %w", userID, err)
	}
	return &authz.Context{
		UserID:             g.UserID,
		DisplayName:        g.DisplayName,
		Role:               authz.Role(g.Role),
		DepartmentID:       g.DepartmentID,
		GrantedPermissions: g.Permissions,
		GrantedMenus:       g.Menus,
	}, nil
}

// Provision writes the role default templates as the user's initial grant
// rows. Invoked at account creation and on explicit role change only; the
// grants diverge from the templates afterwards as admins edit them.
// Unrecognized roles provision empty sets.
func (s *Service) Provision(ctx context.Context, userID int64, role authz.Role) error {
	if err := s.repo.SetUserPermissions(ctx, userID, authz.DefaultPermissions(role)); err != nil {
		return fmt.Errorf("grants: provision permissions: %w", err)
	}
	if err := s.repo.SetUserMenus(ctx, userID, authz.DefaultMenus(role)); err != nil {
		return fmt.Errorf("grants: provision menus: %w", err)
	}
	return nil
}

// UpdatePermissions replaces a user's permission grants. Ids are validated
// against the catalog so a typo fails the edit instead of persisting a
// grant that can never match.
func (s *Service) UpdatePermissions(ctx context.Context, actorID, userID int64, permissionIDs []string) error {
	for _, id := range permissionIDs {
		if _, ok := authz.PermissionByID(id); !ok {
			return fmt.Errorf("grants: unknown permission %q: %w", id, shared.ErrNotFound)
		}
	}
	if err := s.repo.SetUserPermissions(ctx, userID, permissionIDs); err != nil {
		return fmt.Errorf("grants: set permissions: %w", err)
	}
	s.audit(ctx, actorID, userID, "set_permissions", map[string]any{"permissions": permissionIDs})
	return nil
}

// UpdateMenus replaces a user's menu grants, validating against the catalog.
func (s *Service) UpdateMenus(ctx context.Context, actorID, userID int64, menuIDs []string) error {
	for _, id := range menuIDs {
		if _, ok := authz.MenuByID(id); !ok {
			return fmt.Errorf("grants: unknown menu %q: %w", id, shared.ErrNotFound)
		}
	}
	if err := s.repo.SetUserMenus(ctx, userID, menuIDs); err != nil {
		return fmt.Errorf("grants: set menus: %w", err)
	}
	s.audit(ctx, actorID, userID, "set_menus", map[string]any{"menus": menuIDs})
	return nil
}

// Get returns a user's stored grants for the admin edit screen.
func (s *Service) Get(ctx context.Context, userID int64) (*UserGrants, error) {
	return s.repo.GetUserGrants(ctx, userID)
}

// ScanDangling reports grant rows referencing catalog ids that no longer
// exist. The catalogs tolerate these at decision time; the scan exists so an
// admin learns about them.
func (s *Service) ScanDangling(ctx context.Context) ([]DanglingGrant, error) {
	return s.repo.ListDanglingGrants(ctx, authz.AllPermissionIDs(), authz.AllMenuIDs())
}

func (s *Service) audit(ctx context.Context, actorID, userID int64, action string, meta map[string]any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user_grants",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     meta,
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit grant edit", slog.Any("error", err))
	}
}
