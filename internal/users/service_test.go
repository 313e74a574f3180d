package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/grants"
	"github.com/lpx0007/training-management-system-sub002/internal/org"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

type mockOrgRepo struct {
	roles      map[int64]authz.Role
	setRoleErr error
}

func (m *mockOrgRepo) WithUserLock(ctx context.Context, _ int64, fn func(context.Context, org.Repository) error) error {
	return fn(ctx, m)
}

func (m *mockOrgRepo) GetUserRole(_ context.Context, userID int64) (authz.Role, *int64, error) {
	return m.roles[userID], nil, nil
}

func (m *mockOrgRepo) SetUserRole(_ context.Context, userID int64, role authz.Role, _ *int64) error {
	if m.setRoleErr != nil {
		return m.setRoleErr
	}
	m.roles[userID] = role
	return nil
}

func (m *mockOrgRepo) GetDepartment(_ context.Context, _ int64) (*org.Department, error) {
	return nil, shared.ErrNotFound
}
func (m *mockOrgRepo) ListDepartments(_ context.Context) ([]org.Department, error) { return nil, nil }
func (m *mockOrgRepo) ResolveDepartmentIDByName(_ context.Context, _ string) (int64, error) {
	return 0, shared.ErrNotFound
}
func (m *mockOrgRepo) ResolveUserIDByName(_ context.Context, _ string) (int64, error) {
	return 0, shared.ErrNotFound
}
func (m *mockOrgRepo) ListDepartmentSalespersons(_ context.Context, _ int64) ([]int64, error) {
	return nil, nil
}
func (m *mockOrgRepo) ListTeamMembers(_ context.Context, _ int64) ([]org.TeamMembership, error) {
	return nil, nil
}
func (m *mockOrgRepo) UpsertTeamMembership(_ context.Context, _, _, _ int64) error  { return nil }
func (m *mockOrgRepo) DeleteTeamMembershipsByManager(_ context.Context, _ int64) error { return nil }
func (m *mockOrgRepo) SetDepartmentManager(_ context.Context, _ int64, _ *int64) error { return nil }
func (m *mockOrgRepo) ClearDepartmentsManagedBy(_ context.Context, _ int64) error      { return nil }

type mockGrantsRepo struct {
	permissions map[int64][]string
	menus       map[int64][]string
}

func newMockGrantsRepo() *mockGrantsRepo {
	return &mockGrantsRepo{permissions: map[int64][]string{}, menus: map[int64][]string{}}
}

func (m *mockGrantsRepo) GetUserGrants(_ context.Context, userID int64) (*grants.UserGrants, error) {
	return &grants.UserGrants{UserID: userID, Role: string(authz.RoleSalesperson)}, nil
}

func (m *mockGrantsRepo) SetUserPermissions(_ context.Context, userID int64, ids []string) error {
	m.permissions[userID] = ids
	return nil
}

func (m *mockGrantsRepo) SetUserMenus(_ context.Context, userID int64, ids []string) error {
	m.menus[userID] = ids
	return nil
}

func (m *mockGrantsRepo) ListDanglingGrants(_ context.Context, _, _ []string) ([]grants.DanglingGrant, error) {
	return nil, nil
}

type noopAuditor struct{}

func (noopAuditor) Record(_ context.Context, _ shared.AuditLog) error { return nil }

type mockUserRepo struct{}

func (mockUserRepo) Get(_ context.Context, _ int64) (*User, error)      { return nil, shared.ErrNotFound }
func (mockUserRepo) List(_ context.Context, _ ListFilter) ([]User, error) { return nil, nil }
func (mockUserRepo) SetActive(_ context.Context, _ int64, _ bool) error { return nil }

func testService(orgRepo *mockOrgRepo, grantsRepo *mockGrantsRepo) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	transitions := org.NewTransitionService(orgRepo, noopAuditor{}, logger)
	grantsSvc := grants.NewService(grantsRepo, noopAuditor{}, logger)
	return NewService(mockUserRepo{}, transitions, grantsSvc, logger)
}

func TestChangeRoleProvisionsDefaultTemplates(t *testing.T) {
	orgRepo := &mockOrgRepo{roles: map[int64]authz.Role{10: authz.RoleSalesperson}}
	grantsRepo := newMockGrantsRepo()
	svc := testService(orgRepo, grantsRepo)

	dept := int64(5)
	err := svc.ChangeRole(context.Background(), 1, org.TransitionRequest{
		UserID:       10,
		NewRole:      authz.RoleManager,
		DepartmentID: &dept,
	})
	require.NoError(t, err)

	assert.Equal(t, authz.RoleManager, orgRepo.roles[10])
	assert.Equal(t, authz.DefaultPermissions(authz.RoleManager), grantsRepo.permissions[10])
	assert.Equal(t, authz.DefaultMenus(authz.RoleManager), grantsRepo.menus[10])
}

func TestChangeRoleRejectsUnknownRole(t *testing.T) {
	orgRepo := &mockOrgRepo{roles: map[int64]authz.Role{10: authz.RoleSalesperson}}
	grantsRepo := newMockGrantsRepo()
	svc := testService(orgRepo, grantsRepo)

	err := svc.ChangeRole(context.Background(), 1, org.TransitionRequest{
		UserID:  10,
		NewRole: authz.Role("superuser"),
	})
	assert.ErrorIs(t, err, shared.ErrInvalidRole)
	assert.Empty(t, grantsRepo.permissions)
}

func TestChangeRoleSkipsProvisionWhenTransitionFails(t *testing.T) {
	orgRepo := &mockOrgRepo{
		roles:      map[int64]authz.Role{10: authz.RoleSalesperson},
		setRoleErr: errors.New("connection reset"),
	}
	grantsRepo := newMockGrantsRepo()
	svc := testService(orgRepo, grantsRepo)

	err := svc.ChangeRole(context.Background(), 1, org.TransitionRequest{
		UserID:  10,
		NewRole: authz.RoleExpert,
	})
	require.Error(t, err)
	assert.Empty(t, grantsRepo.permissions)
	assert.Empty(t, grantsRepo.menus)
}
