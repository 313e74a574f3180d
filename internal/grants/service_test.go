package grants

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

type mockRepo struct {
	grants   map[int64]*UserGrants
	getErr   error
	setPerms map[int64][]string
	setMenus map[int64][]string
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		grants:   make(map[int64]*UserGrants),
		setPerms: make(map[int64][]string),
		setMenus: make(map[int64][]string),
	}
}

func (m *mockRepo) GetUserGrants(_ context.Context, userID int64) (*UserGrants, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	g, ok := m.grants[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return g, nil
}

func (m *mockRepo) SetUserPermissions(_ context.Context, userID int64, ids []string) error {
	m.setPerms[userID] = ids
	return nil
}

func (m *mockRepo) SetUserMenus(_ context.Context, userID int64, ids []string) error {
	m.setMenus[userID] = ids
	return nil
}

func (m *mockRepo) ListDanglingGrants(_ context.Context, knownPermissions, knownMenus []string) ([]DanglingGrant, error) {
	known := make(map[string]bool)
	for _, id := range knownPermissions {
		known[id] = true
	}
	var out []DanglingGrant
	for userID, ids := range m.setPerms {
		for _, id := range ids {
			if !known[id] {
				out = append(out, DanglingGrant{UserID: userID, Kind: "permission", ID: id})
			}
		}
	}
	return out, nil
}

func TestBuildContext(t *testing.T) {
	repo := newMockRepo()
	dept := int64(5)
	repo.grants[7] = &UserGrants{
		UserID:       7,
		DisplayName:  "Zhang San",
		Role:         "manager",
		DepartmentID: &dept,
		Permissions:  []string{authz.PermPerformanceView},
		Menus:        []string{authz.MenuDashboard},
	}
	svc := NewService(repo, nil, nil)

	ac, err := svc.BuildContext(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ac.UserID)
	assert.Equal(t, authz.RoleManager, ac.Role)
	require.NotNil(t, ac.DepartmentID)
	assert.Equal(t, int64(5), *ac.DepartmentID)
	assert.True(t, ac.HasPermission(authz.PermPerformanceView))
	assert.False(t, ac.HasPermission(authz.PermCustomerDelete))
}

func TestBuildContextStoreFailurePropagates(t *testing.T) {
	repo := newMockRepo()
	repo.getErr = errors.New("dial tcp: connection refused")
	svc := NewService(repo, nil, nil)

	ac, err := svc.BuildContext(context.Background(), 7)
	require.Error(t, err)
	// Never a permissive default context on store failure.
	assert.Nil(t, ac)
}

func TestBuildContextInvalidRoleDeniesEverything(t *testing.T) {
	repo := newMockRepo()
	repo.grants[8] = &UserGrants{UserID: 8, Role: "superuser", Permissions: []string{authz.PermCustomerViewAll}}
	svc := NewService(repo, nil, nil)

	ac, err := svc.BuildContext(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, ac.IsAdmin())
	// Explicit grants still apply; the unknown role just never gets role
	// based shortcuts.
	assert.True(t, ac.HasPermission(authz.PermCustomerViewAll))
	assert.False(t, ac.HasPermission(authz.PermTrainingAddCustomer))
}

func TestProvisionAppliesRoleTemplates(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)

	require.NoError(t, svc.Provision(context.Background(), 9, authz.RoleSalesperson))
	assert.ElementsMatch(t, authz.DefaultPermissions(authz.RoleSalesperson), repo.setPerms[9])
	assert.ElementsMatch(t, authz.DefaultMenus(authz.RoleSalesperson), repo.setMenus[9])
}

func TestProvisionUnknownRoleIsEmpty(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)

	require.NoError(t, svc.Provision(context.Background(), 9, authz.Role("root")))
	assert.Empty(t, repo.setPerms[9])
	assert.Empty(t, repo.setMenus[9])
}

func TestUpdatePermissionsValidatesCatalog(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)

	err := svc.UpdatePermissions(context.Background(), 1, 9, []string{authz.PermCustomerViewAll, "no_such"})
	require.Error(t, err)
	assert.Empty(t, repo.setPerms[9])

	require.NoError(t, svc.UpdatePermissions(context.Background(), 1, 9, []string{authz.PermCustomerViewAll}))
	assert.Equal(t, []string{authz.PermCustomerViewAll}, repo.setPerms[9])
}

func TestUpdateMenusValidatesCatalog(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)

	err := svc.UpdateMenus(context.Background(), 1, 9, []string{"menu_retired"})
	require.Error(t, err)

	require.NoError(t, svc.UpdateMenus(context.Background(), 1, 9, []string{authz.MenuDashboard}))
	assert.Equal(t, []string{authz.MenuDashboard}, repo.setMenus[9])
}
