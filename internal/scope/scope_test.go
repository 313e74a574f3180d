package scope

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

type row struct {
	dept int64
	own  int64
	rev  float64
}

func sampleRows() []row {
	return []row{
		{dept: 5, own: 1, rev: 100},
		{dept: 5, own: 2, rev: 250},
		{dept: 6, own: 3, rev: 400},
		{dept: 7, own: 4, rev: 50},
	}
}

func deptOf(r row) int64  { return r.dept }
func ownerOf(r row) int64 { return r.own }

type fakeDirectory struct {
	departments map[string]int64
	users       map[string]int64
	err         error
}

func (d *fakeDirectory) ResolveDepartmentIDByName(_ context.Context, name string) (int64, error) {
	if d.err != nil {
		return 0, d.err
	}
	id, ok := d.departments[name]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return id, nil
}

func (d *fakeDirectory) ResolveUserIDByName(_ context.Context, name string) (int64, error) {
	if d.err != nil {
		return 0, d.err
	}
	id, ok := d.users[name]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return id, nil
}

func TestByDepartmentNarrowsManager(t *testing.T) {
	dept := int64(5)
	manager := &authz.Context{UserID: 9, Role: authz.RoleManager, DepartmentID: &dept}

	scoped := ByDepartment(manager, sampleRows(), deptOf)
	require.Len(t, scoped, 2)
	var total float64
	for _, r := range scoped {
		assert.Equal(t, int64(5), r.dept)
		total += r.rev
	}
	// Totals recomputed over exactly the retained rows, not the global sum.
	assert.Equal(t, 350.0, total)
}

func TestByDepartmentPassThroughWithGrant(t *testing.T) {
	dept := int64(5)
	manager := &authz.Context{
		UserID:             9,
		Role:               authz.RoleManager,
		DepartmentID:       &dept,
		GrantedPermissions: []string{authz.PermPerformanceViewAllDepartments},
	}

	scoped := ByDepartment(manager, sampleRows(), deptOf)
	assert.Equal(t, sampleRows(), scoped)
}

func TestByDepartmentAdminPassThrough(t *testing.T) {
	admin := &authz.Context{UserID: 1, Role: authz.RoleAdmin}
	assert.Equal(t, sampleRows(), ByDepartment(admin, sampleRows(), deptOf))
}

func TestByDepartmentWithoutDepartmentIsEmpty(t *testing.T) {
	manager := &authz.Context{UserID: 9, Role: authz.RoleManager}
	assert.Empty(t, ByDepartment(manager, sampleRows(), deptOf))
	assert.Empty(t, ByDepartment(nil, sampleRows(), deptOf))
}

func TestByOwnerNarrowsSalesperson(t *testing.T) {
	sp := &authz.Context{UserID: 2, Role: authz.RoleSalesperson}

	scoped := ByOwner(sp, sampleRows(), ownerOf, authz.PermCustomerViewAll)
	require.Len(t, scoped, 1)
	assert.Equal(t, int64(2), scoped[0].own)
}

func TestByOwnerPassThroughWithGrant(t *testing.T) {
	sp := &authz.Context{
		UserID:             2,
		Role:               authz.RoleSalesperson,
		GrantedPermissions: []string{authz.PermCustomerViewAll},
	}
	assert.Equal(t, sampleRows(), ByOwner(sp, sampleRows(), ownerOf, authz.PermCustomerViewAll))
}

func TestByDepartmentNameFailClosed(t *testing.T) {
	dir := &fakeDirectory{departments: map[string]int64{"East": 5}}
	ctx := context.Background()

	scoped, err := ByDepartmentName(ctx, dir, "East", sampleRows(), deptOf)
	require.NoError(t, err)
	assert.Len(t, scoped, 2)

	// Unknown name yields empty, for restricted and unrestricted actors
	// alike; the caller never falls back to the unfiltered set.
	scoped, err = ByDepartmentName(ctx, dir, "Atlantis", sampleRows(), deptOf)
	require.NoError(t, err)
	assert.Empty(t, scoped)
	assert.NotNil(t, scoped)
}

func TestByOwnerNameFailClosed(t *testing.T) {
	dir := &fakeDirectory{users: map[string]int64{"Li Wei": 3}}
	ctx := context.Background()

	scoped, err := ByOwnerName(ctx, dir, "Li Wei", sampleRows(), ownerOf)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, int64(3), scoped[0].own)

	scoped, err = ByOwnerName(ctx, dir, "Nobody", sampleRows(), ownerOf)
	require.NoError(t, err)
	assert.Empty(t, scoped)
}

func TestNameResolutionStoreErrorPropagates(t *testing.T) {
	dir := &fakeDirectory{err: errors.New("connection refused")}

	_, err := ByDepartmentName(context.Background(), dir, "East", sampleRows(), deptOf)
	assert.Error(t, err)

	_, err = ByOwnerName(context.Background(), dir, "Li Wei", sampleRows(), ownerOf)
	assert.Error(t, err)
}
