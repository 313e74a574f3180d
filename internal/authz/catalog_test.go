package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionByID(t *testing.T) {
	p, ok := PermissionByID(PermCustomerViewAll)
	require.True(t, ok)
	assert.Equal(t, "View All Customers", p.Name)

	// Dangling references resolve to empty metadata, never panic.
	p, ok = PermissionByID("removed_permission")
	assert.False(t, ok)
	assert.Empty(t, p.Name)
}

func TestCatalogHasNoDuplicateIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range AllPermissions() {
		assert.False(t, seen[p.ID], "duplicate permission id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestCategoriesNestPermissions(t *testing.T) {
	cats := Categories()
	require.NotEmpty(t, cats)
	total := 0
	for _, c := range cats {
		assert.NotEmpty(t, c.Name)
		total += len(c.Permissions)
	}
	assert.Equal(t, len(AllPermissions()), total)
}

func TestMenuByID(t *testing.T) {
	f, ok := MenuByID(MenuTraining)
	require.True(t, ok)
	assert.Equal(t, "/training", f.Path)

	_, ok = MenuByID("menu_retired")
	assert.False(t, ok)
}

func TestAllMenusDisplayOrder(t *testing.T) {
	menus := AllMenus()
	for i := 1; i < len(menus); i++ {
		assert.Less(t, menus[i-1].DisplayOrder, menus[i].DisplayOrder)
	}
}

func TestValidateCatalogs(t *testing.T) {
	assert.NoError(t, ValidateCatalogs())
}

func TestUsageByFeature(t *testing.T) {
	m, ok := UsageByFeature(MenuTraining)
	require.True(t, ok)
	// Cross-feature usage: the training screen exposes document download.
	assert.Contains(t, m.Permissions, PermDocumentDownload)

	_, ok = UsageByFeature("menu_retired")
	assert.False(t, ok)
}
