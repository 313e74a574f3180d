package authz

// Role default templates are applied once at provisioning time (account
// creation or role change). Decisions never consult them: after provisioning,
// the per-user grant rows are the only enforcement source and diverge from
// these templates as admins edit them.

var roleDefaultPermissions = map[Role][]string{
	// The admin template carries the full catalog by convention, but the
	// decision engine short-circuits on the role itself, so this is seed
	// data, not the enforcement path.
	RoleAdmin: AllPermissionIDs(),
	RoleManager: {
		PermCustomerViewAll,
		PermCustomerAdd,
		PermCustomerEdit,
		PermCustomerExport,
		PermTrainingView,
		PermTrainingAdd,
		PermTrainingEdit,
		PermTrainingAddCustomer,
		PermTrainingExport,
		PermPerformanceView,
		PermPerformanceExport,
		PermDashboardView,
		PermDocumentDownload,
	},
	RoleSalesperson: {
		PermCustomerAdd,
		PermCustomerEdit,
		PermTrainingView,
		PermTrainingAddCustomer,
		PermDashboardView,
		PermDocumentDownload,
	},
	RoleExpert: {
		PermTrainingView,
		PermTrainingAdd,
		PermTrainingEdit,
		PermDashboardView,
		PermDocumentDownload,
	},
}

var roleDefaultMenus = map[Role][]string{
	RoleAdmin: AllMenuIDs(),
	RoleManager: {
		MenuDashboard,
		MenuCustomers,
		MenuTraining,
		MenuPerformance,
		MenuExports,
	},
	RoleSalesperson: {
		MenuDashboard,
		MenuCustomers,
		MenuTraining,
	},
	RoleExpert: {
		MenuDashboard,
		MenuTraining,
	},
}

// DefaultPermissions returns a copy of the default permission template for
// role. Unrecognized roles resolve to an empty set so they never inherit
// another role's defaults.
func DefaultPermissions(role Role) []string {
	tpl, ok := roleDefaultPermissions[role]
	if !ok {
		return []string{}
	}
	out := make([]string, len(tpl))
	copy(out, tpl)
	return out
}

// DefaultMenus returns a copy of the default menu template for role, empty
// for unrecognized roles.
func DefaultMenus(role Role) []string {
	tpl, ok := roleDefaultMenus[role]
	if !ok {
		return []string{}
	}
	out := make([]string, len(tpl))
	copy(out, tpl)
	return out
}
