package org

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

type memberKey struct {
	manager int64
	member  int64
}

type userRecord struct {
	role authz.Role
	dept *int64
	name string
}

// mockRepository is an in-memory Repository. WithUserLock snapshots state and
// restores it when fn fails, mirroring transaction rollback.
type mockRepository struct {
	users       map[int64]userRecord
	departments map[int64]*Department
	memberships map[memberKey]TeamMembership
	upsertErr   error
	upsertCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:       make(map[int64]userRecord),
		departments: make(map[int64]*Department),
		memberships: make(map[memberKey]TeamMembership),
	}
}

func (m *mockRepository) WithUserLock(ctx context.Context, userID int64, fn func(context.Context, Repository) error) error {
	users := make(map[int64]userRecord, len(m.users))
	for k, v := range m.users {
		users[k] = v
	}
	departments := make(map[int64]*Department, len(m.departments))
	for k, v := range m.departments {
		copied := *v
		departments[k] = &copied
	}
	memberships := make(map[memberKey]TeamMembership, len(m.memberships))
	for k, v := range m.memberships {
		memberships[k] = v
	}

	if err := fn(ctx, m); err != nil {
		m.users = users
		m.departments = departments
		m.memberships = memberships
		return err
	}
	return nil
}

func (m *mockRepository) GetUserRole(_ context.Context, userID int64) (authz.Role, *int64, error) {
	u, ok := m.users[userID]
	if !ok {
		return "", nil, shared.ErrNotFound
	}
	return u.role, u.dept, nil
}

func (m *mockRepository) SetUserRole(_ context.Context, userID int64, role authz.Role, departmentID *int64) error {
	u, ok := m.users[userID]
	if !ok {
		return shared.ErrNotFound
	}
	u.role = role
	u.dept = departmentID
	m.users[userID] = u
	return nil
}

func (m *mockRepository) GetDepartment(_ context.Context, id int64) (*Department, error) {
	d, ok := m.departments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (m *mockRepository) ListDepartments(_ context.Context) ([]Department, error) {
	var out []Department
	for _, d := range m.departments {
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockRepository) ResolveDepartmentIDByName(_ context.Context, name string) (int64, error) {
	for id, d := range m.departments {
		if d.Name == name {
			return id, nil
		}
	}
	return 0, shared.ErrNotFound
}

func (m *mockRepository) ResolveUserIDByName(_ context.Context, name string) (int64, error) {
	for id, u := range m.users {
		if u.name == name {
			return id, nil
		}
	}
	return 0, shared.ErrNotFound
}

func (m *mockRepository) ListDepartmentSalespersons(_ context.Context, departmentID int64) ([]int64, error) {
	var ids []int64
	for id, u := range m.users {
		if u.role == authz.RoleSalesperson && u.dept != nil && *u.dept == departmentID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockRepository) ListTeamMembers(_ context.Context, managerID int64) ([]TeamMembership, error) {
	var out []TeamMembership
	for k, v := range m.memberships {
		if k.manager == managerID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *mockRepository) UpsertTeamMembership(_ context.Context, managerID, memberID, departmentID int64) error {
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.memberships[memberKey{managerID, memberID}] = TeamMembership{ManagerID: managerID, MemberID: memberID, DepartmentID: departmentID}
	return nil
}

func (m *mockRepository) DeleteTeamMembershipsByManager(_ context.Context, managerID int64) error {
	for k := range m.memberships {
		if k.manager == managerID {
			delete(m.memberships, k)
		}
	}
	return nil
}

func (m *mockRepository) SetDepartmentManager(_ context.Context, departmentID int64, managerID *int64) error {
	d, ok := m.departments[departmentID]
	if !ok {
		return shared.ErrNotFound
	}
	d.ManagerID = managerID
	return nil
}

func (m *mockRepository) ClearDepartmentsManagedBy(_ context.Context, managerID int64) error {
	for _, d := range m.departments {
		if d.ManagerID != nil && *d.ManagerID == managerID {
			d.ManagerID = nil
		}
	}
	return nil
}

var _ Repository = (*mockRepository)(nil)

func ptr(v int64) *int64 { return &v }

func seedRepo() *mockRepository {
	repo := newMockRepository()
	repo.departments[3] = &Department{ID: 3, Name: "East"}
	repo.users[100] = userRecord{role: authz.RoleSalesperson, dept: ptr(3), name: "U"}
	repo.users[101] = userRecord{role: authz.RoleSalesperson, dept: ptr(3), name: "A"}
	repo.users[102] = userRecord{role: authz.RoleSalesperson, dept: ptr(3), name: "B"}
	repo.users[103] = userRecord{role: authz.RoleSalesperson, dept: ptr(4), name: "C"}
	return repo
}

func TestPromotionSeedsTeamFromDepartment(t *testing.T) {
	repo := seedRepo()
	svc := NewTransitionService(repo, nil, nil)

	req := TransitionRequest{UserID: 100, NewRole: authz.RoleManager, DepartmentID: ptr(3)}
	require.NoError(t, svc.Apply(context.Background(), 1, req))

	members, err := repo.ListTeamMembers(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, members, 2)
	for _, m := range members {
		assert.Equal(t, int64(3), m.DepartmentID)
		assert.Contains(t, []int64{101, 102}, m.MemberID)
	}
	dept, err := repo.GetDepartment(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, dept.ManagerID)
	assert.Equal(t, int64(100), *dept.ManagerID)

	// Re-running the identical promotion produces no duplicates.
	require.NoError(t, svc.Apply(context.Background(), 1, req))
	members, err = repo.ListTeamMembers(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestPromotionMergesManuallySelectedMembers(t *testing.T) {
	repo := seedRepo()
	svc := NewTransitionService(repo, nil, nil)

	req := TransitionRequest{
		UserID:       100,
		NewRole:      authz.RoleManager,
		DepartmentID: ptr(3),
		// 101 is already seeded from the department, 103 belongs elsewhere.
		ExtraMemberIDs: []int64{101, 103},
	}
	require.NoError(t, svc.Apply(context.Background(), 1, req))

	members, err := repo.ListTeamMembers(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, members, 3)
}

func TestDemotionClearsMembershipsAndManagerReference(t *testing.T) {
	repo := seedRepo()
	svc := NewTransitionService(repo, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Apply(ctx, 1, TransitionRequest{UserID: 100, NewRole: authz.RoleManager, DepartmentID: ptr(3)}))
	require.NoError(t, svc.Apply(ctx, 1, TransitionRequest{UserID: 100, NewRole: authz.RoleExpert, DepartmentID: ptr(3)}))

	members, err := repo.ListTeamMembers(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, members)
	dept, err := repo.GetDepartment(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, dept.ManagerID)
}

func TestLateralTransitionHasNoMembershipSideEffects(t *testing.T) {
	repo := seedRepo()
	svc := NewTransitionService(repo, nil, nil)

	require.NoError(t, svc.Apply(context.Background(), 1, TransitionRequest{UserID: 101, NewRole: authz.RoleExpert, DepartmentID: ptr(3)}))

	role, dept, err := repo.GetUserRole(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, authz.RoleExpert, role)
	require.NotNil(t, dept)
	assert.Equal(t, int64(3), *dept)
	assert.Empty(t, repo.memberships)
}

func TestTransitionIdempotence(t *testing.T) {
	repo := seedRepo()
	svc := NewTransitionService(repo, nil, nil)
	ctx := context.Background()
	req := TransitionRequest{UserID: 100, NewRole: authz.RoleManager, DepartmentID: ptr(3)}

	require.NoError(t, svc.Apply(ctx, 1, req))
	first := len(repo.memberships)
	require.NoError(t, svc.Apply(ctx, 1, req))
	assert.Equal(t, first, len(repo.memberships))
}

func TestPartialFailureRollsBack(t *testing.T) {
	repo := seedRepo()
	repo.upsertErr = errors.New("connection reset")
	svc := NewTransitionService(repo, nil, nil)

	err := svc.Apply(context.Background(), 1, TransitionRequest{UserID: 100, NewRole: authz.RoleManager, DepartmentID: ptr(3)})
	require.Error(t, err)

	// The whole transition aborted: role unchanged, no manager reference,
	// no membership rows.
	role, _, err2 := repo.GetUserRole(context.Background(), 100)
	require.NoError(t, err2)
	assert.Equal(t, authz.RoleSalesperson, role)
	dept, err2 := repo.GetDepartment(context.Background(), 3)
	require.NoError(t, err2)
	assert.Nil(t, dept.ManagerID)
	assert.Empty(t, repo.memberships)
}

func TestInvalidRoleRejected(t *testing.T) {
	repo := seedRepo()
	svc := NewTransitionService(repo, nil, nil)

	err := svc.Apply(context.Background(), 1, TransitionRequest{UserID: 100, NewRole: authz.Role("root")})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidRole)
}

func TestManagerPromotionRequiresDepartment(t *testing.T) {
	repo := seedRepo()
	svc := NewTransitionService(repo, nil, nil)

	err := svc.Apply(context.Background(), 1, TransitionRequest{UserID: 100, NewRole: authz.RoleManager})
	require.Error(t, err)
}
