package authz

// Menu feature ids, persisted in per-user menu grant rows. Stable tokens,
// same rename rule as permission ids.
const (
	MenuDashboard   = "menu_dashboard"
	MenuCustomers   = "menu_customers"
	MenuTraining    = "menu_training"
	MenuPerformance = "menu_performance"
	MenuExports     = "menu_exports"
	MenuUsers       = "menu_users"
	MenuPermissions = "menu_permissions"
)

// MenuFeature is a navigable area of the application. RequiredPermissions
// uses OR semantics: holding any one of them satisfies the precondition. An
// empty list means menu access alone is enough.
type MenuFeature struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Path                string   `json:"path"`
	RequiredPermissions []string `json:"required_permissions,omitempty"`
	DisplayOrder        int      `json:"display_order"`
}

var menuFeatures = []MenuFeature{
	{ID: MenuDashboard, Name: "Dashboard", Path: "/dashboard", RequiredPermissions: nil, DisplayOrder: 10},
	{ID: MenuCustomers, Name: "Customers", Path: "/customers", RequiredPermissions: []string{PermCustomerViewAll, PermCustomerAdd, PermCustomerEdit}, DisplayOrder: 20},
	{ID: MenuTraining, Name: "Training Sessions", Path: "/training", RequiredPermissions: []string{PermTrainingView}, DisplayOrder: 30},
	{ID: MenuPerformance, Name: "Performance", Path: "/performance", RequiredPermissions: []string{PermPerformanceView, PermPerformanceViewAllDepartments}, DisplayOrder: 40},
	{ID: MenuExports, Name: "Exports", Path: "/exports", RequiredPermissions: []string{PermCustomerExport, PermTrainingExport, PermPerformanceExport}, DisplayOrder: 50},
	{ID: MenuUsers, Name: "User Management", Path: "/admin/users", RequiredPermissions: []string{PermUserManage}, DisplayOrder: 60},
	{ID: MenuPermissions, Name: "Permission Management", Path: "/admin/permissions", RequiredPermissions: []string{PermPermissionManage}, DisplayOrder: 70},
}

var menuIndex = func() map[string]MenuFeature {
	idx := make(map[string]MenuFeature, len(menuFeatures))
	for _, f := range menuFeatures {
		idx[f.ID] = f
	}
	return idx
}()

// MenuByID returns the feature for id, ok=false on a dangling reference.
func MenuByID(id string) (MenuFeature, bool) {
	f, ok := menuIndex[id]
	return f, ok
}

// AllMenus returns every menu feature ordered by DisplayOrder.
func AllMenus() []MenuFeature {
	out := make([]MenuFeature, len(menuFeatures))
	copy(out, menuFeatures)
	return out
}

// AllMenuIDs returns the ids of every menu feature in display order.
func AllMenuIDs() []string {
	ids := make([]string, len(menuFeatures))
	for i, f := range menuFeatures {
		ids[i] = f.ID
	}
	return ids
}
