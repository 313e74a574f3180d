package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPermissionsPerRole(t *testing.T) {
	assert.ElementsMatch(t, AllPermissionIDs(), DefaultPermissions(RoleAdmin))
	assert.Contains(t, DefaultPermissions(RoleManager), PermCustomerViewAll)
	assert.NotContains(t, DefaultPermissions(RoleSalesperson), PermCustomerViewAll)
	assert.Contains(t, DefaultPermissions(RoleExpert), PermTrainingEdit)
}

func TestUnknownRoleDefaultsAreEmpty(t *testing.T) {
	// Fail-closed: an unrecognized role must never inherit another role's
	// template.
	assert.Empty(t, DefaultPermissions(Role("superuser")))
	assert.Empty(t, DefaultMenus(Role("superuser")))
	assert.Empty(t, DefaultPermissions(Role("")))
}

func TestDefaultsReturnCopies(t *testing.T) {
	perms := DefaultPermissions(RoleManager)
	perms[0] = "mutated"
	assert.NotContains(t, DefaultPermissions(RoleManager), "mutated")

	menus := DefaultMenus(RoleManager)
	menus[0] = "mutated"
	assert.NotContains(t, DefaultMenus(RoleManager), "mutated")
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"admin", "manager", "salesperson", "expert"} {
		role, ok := ParseRole(s)
		assert.True(t, ok)
		assert.Equal(t, s, role.String())
	}
	_, ok := ParseRole("root")
	assert.False(t, ok)
	assert.False(t, Role("root").Valid())
}
