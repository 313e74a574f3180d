package authz

import "fmt"

// FeaturePermissionMapping records which permissions a feature actually
// exercises internally, including cross-feature usage (the training screen
// also exposes document download). This is introspection metadata for audits
// and the integrity scan; it never feeds the navigation gate, which reads
// MenuFeature.RequiredPermissions instead.
type FeaturePermissionMapping struct {
	FeatureID   string   `json:"feature_id"`
	Permissions []string `json:"permissions"`
	Description string   `json:"description"`
}

var featurePermissionUsage = []FeaturePermissionMapping{
	{
		FeatureID:   MenuDashboard,
		Permissions: []string{PermDashboardView, PermPerformanceView},
		Description: "Dashboard renders summary KPI tiles from performance data",
	},
	{
		FeatureID:   MenuCustomers,
		Permissions: []string{PermCustomerViewAll, PermCustomerAdd, PermCustomerEdit, PermCustomerDelete, PermCustomerExport, PermCustomerImport},
		Description: "Customer screen covers listing, editing and import/export",
	},
	{
		FeatureID:   MenuTraining,
		Permissions: []string{PermTrainingView, PermTrainingAdd, PermTrainingEdit, PermTrainingDelete, PermTrainingAddCustomer, PermTrainingExport, PermDocumentDownload},
		Description: "Training screen also exposes attendee registration and material download",
	},
	{
		FeatureID:   MenuPerformance,
		Permissions: []string{PermPerformanceView, PermPerformanceViewAllDepartments, PermPerformanceExport},
		Description: "Performance screen aggregates revenue per salesperson and department",
	},
	{
		FeatureID:   MenuExports,
		Permissions: []string{PermCustomerExport, PermTrainingExport, PermPerformanceExport},
		Description: "Export screen serialises scoped result sets to CSV",
	},
	{
		FeatureID:   MenuUsers,
		Permissions: []string{PermUserManage},
		Description: "User administration changes roles and departments",
	},
	{
		FeatureID:   MenuPermissions,
		Permissions: []string{PermPermissionManage, PermAuditView},
		Description: "Permission administration edits per-user grants",
	},
}

// UsageByFeature returns the usage mapping for a feature id, ok=false when
// the feature records no usage.
func UsageByFeature(featureID string) (FeaturePermissionMapping, bool) {
	for _, m := range featurePermissionUsage {
		if m.FeatureID == featureID {
			return m, true
		}
	}
	return FeaturePermissionMapping{}, false
}

// AllUsageMappings returns the full feature-permission usage table.
func AllUsageMappings() []FeaturePermissionMapping {
	out := make([]FeaturePermissionMapping, len(featurePermissionUsage))
	copy(out, featurePermissionUsage)
	return out
}

// ValidateCatalogs cross-checks the static tables against each other so a
// typo in a mapping fails at startup instead of silently resolving to
// not-found at decision time. Runtime lookups still degrade gracefully; this
// is a boot-time guard only.
func ValidateCatalogs() error {
	for _, f := range menuFeatures {
		for _, pid := range f.RequiredPermissions {
			if _, ok := PermissionByID(pid); !ok {
				return fmt.Errorf("authz: menu %q requires unknown permission %q", f.ID, pid)
			}
		}
	}
	for _, m := range featurePermissionUsage {
		if _, ok := MenuByID(m.FeatureID); !ok {
			return fmt.Errorf("authz: usage mapping references unknown feature %q", m.FeatureID)
		}
		for _, pid := range m.Permissions {
			if _, ok := PermissionByID(pid); !ok {
				return fmt.Errorf("authz: usage mapping for %q references unknown permission %q", m.FeatureID, pid)
			}
		}
	}
	for role, perms := range roleDefaultPermissions {
		for _, pid := range perms {
			if _, ok := PermissionByID(pid); !ok {
				return fmt.Errorf("authz: role %q default references unknown permission %q", role, pid)
			}
		}
	}
	for role, menus := range roleDefaultMenus {
		for _, mid := range menus {
			if _, ok := MenuByID(mid); !ok {
				return fmt.Errorf("authz: role %q default references unknown menu %q", role, mid)
			}
		}
	}
	return nil
}
