package authz

import "fmt"

// Permission ids are persisted externally and referenced by string in grant
// rows. They are stable tokens: never rename one or reuse it for a different
// meaning.
const (
	PermCustomerViewAll = "customer_view_all"
	PermCustomerAdd     = "customer_add"
	PermCustomerEdit    = "customer_edit"
	PermCustomerDelete  = "customer_delete"
	PermCustomerExport  = "customer_export"
	PermCustomerImport  = "customer_import"

	PermTrainingView        = "training_view"
	PermTrainingAdd         = "training_add"
	PermTrainingEdit        = "training_edit"
	PermTrainingDelete      = "training_delete"
	PermTrainingAddCustomer = "training_add_customer"
	PermTrainingExport      = "training_export"

	PermPerformanceView               = "performance_view"
	PermPerformanceViewAllDepartments = "performance_view_all_departments"
	PermPerformanceExport             = "performance_export"

	PermDocumentDownload = "document_download"
	PermDashboardView    = "dashboard_view"

	PermUserManage       = "user_manage"
	PermPermissionManage = "permission_manage"
	PermAuditView        = "audit_view"
)

// Permission is an atomic, string-identified capability.
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PermissionCategory groups permissions for display. Categories carry no
// enforcement semantics.
type PermissionCategory struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
}

var permissionCategories = []PermissionCategory{
	{
		ID:          "customer",
		Name:        "Customer Management",
		Description: "Customer records, ownership and import/export",
		Permissions: []Permission{
			{ID: PermCustomerViewAll, Name: "View All Customers", Description: "See customers owned by any salesperson"},
			{ID: PermCustomerAdd, Name: "Add Customer", Description: "Create customer records"},
			{ID: PermCustomerEdit, Name: "Edit Customer", Description: "Modify customer records"},
			{ID: PermCustomerDelete, Name: "Delete Customer", Description: "Remove customer records"},
			{ID: PermCustomerExport, Name: "Export Customers", Description: "Export customer lists to file"},
			{ID: PermCustomerImport, Name: "Import Customers", Description: "Bulk import customer records"},
		},
	},
	{
		ID:          "training",
		Name:        "Training Management",
		Description: "Training sessions and attendee registration",
		Permissions: []Permission{
			{ID: PermTrainingView, Name: "View Trainings", Description: "See training sessions"},
			{ID: PermTrainingAdd, Name: "Add Training", Description: "Create training sessions"},
			{ID: PermTrainingEdit, Name: "Edit Training", Description: "Modify training sessions"},
			{ID: PermTrainingDelete, Name: "Delete Training", Description: "Remove training sessions"},
			{ID: PermTrainingAddCustomer, Name: "Register Customer", Description: "Add a customer to a training session"},
			{ID: PermTrainingExport, Name: "Export Trainings", Description: "Export training data to file"},
		},
	},
	{
		ID:          "performance",
		Name:        "Performance & Reports",
		Description: "Sales performance aggregation and reporting",
		Permissions: []Permission{
			{ID: PermPerformanceView, Name: "View Performance", Description: "See sales performance reports"},
			{ID: PermPerformanceViewAllDepartments, Name: "View All Departments", Description: "See performance across every department"},
			{ID: PermPerformanceExport, Name: "Export Performance", Description: "Export performance reports to file"},
			{ID: PermDashboardView, Name: "View Dashboard", Description: "See the summary dashboard"},
			{ID: PermDocumentDownload, Name: "Download Documents", Description: "Download attached documents"},
		},
	},
	{
		ID:          "system",
		Name:        "System Administration",
		Description: "Accounts, grants and auditing",
		Permissions: []Permission{
			{ID: PermUserManage, Name: "Manage Users", Description: "Create accounts, change roles and departments"},
			{ID: PermPermissionManage, Name: "Manage Permissions", Description: "Edit per-user permission and menu grants"},
			{ID: PermAuditView, Name: "View Audit Log", Description: "Inspect recorded grant and role changes"},
		},
	},
}

// permissionIndex is built once at package init from the category tables.
var permissionIndex = func() map[string]Permission {
	idx := make(map[string]Permission)
	for _, cat := range permissionCategories {
		for _, p := range cat.Permissions {
			if _, dup := idx[p.ID]; dup {
				panic(fmt.Sprintf("authz: duplicate permission id %q", p.ID))
			}
			idx[p.ID] = p
		}
	}
	return idx
}()

// PermissionByID returns the catalog entry for id. A miss reports ok=false
// with zero metadata; callers tolerate dangling references gracefully.
func PermissionByID(id string) (Permission, bool) {
	p, ok := permissionIndex[id]
	return p, ok
}

// AllPermissions returns every permission in catalog order.
func AllPermissions() []Permission {
	out := make([]Permission, 0, len(permissionIndex))
	for _, cat := range permissionCategories {
		out = append(out, cat.Permissions...)
	}
	return out
}

// AllPermissionIDs returns the ids of every permission in catalog order.
func AllPermissionIDs() []string {
	perms := AllPermissions()
	ids := make([]string, len(perms))
	for i, p := range perms {
		ids[i] = p.ID
	}
	return ids
}

// Categories returns the grouped catalog. The returned slices are shared;
// callers must not mutate them.
func Categories() []PermissionCategory {
	return permissionCategories
}
