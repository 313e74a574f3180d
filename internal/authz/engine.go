package authz

// Decision engine: pure, side-effect-free predicates over a Context. No I/O
// happens here; the only state consulted is the Context itself and the
// static catalogs. The admin override is evaluated first in every predicate
// so call sites never re-implement it.

// IsAdmin reports whether the actor holds the admin role.
func (c *Context) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// HasPermission reports whether the actor holds the permission. Admins hold
// everything regardless of grant content. Salespersons hold
// training_add_customer unconditionally, a legacy compatibility carve-out
// kept independent of explicit grants.
func (c *Context) HasPermission(permissionID string) bool {
	if c == nil {
		return false
	}
	if c.Role == RoleAdmin {
		return true
	}
	if c.Role == RoleSalesperson && permissionID == PermTrainingAddCustomer {
		return true
	}
	_, ok := toSet(c.GrantedPermissions)[permissionID]
	return ok
}

// HasAnyPermission reports whether the actor holds at least one of ids.
// Each id is evaluated through HasPermission, so the salesperson allowance
// applies here identically.
func (c *Context) HasAnyPermission(ids ...string) bool {
	if c != nil && c.Role == RoleAdmin {
		return true
	}
	for _, id := range ids {
		if c.HasPermission(id) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the actor holds every one of ids.
func (c *Context) HasAllPermissions(ids ...string) bool {
	if c == nil {
		return false
	}
	for _, id := range ids {
		if !c.HasPermission(id) {
			return false
		}
	}
	return true
}

// CanAccessMenu reports whether the feature is visible to the actor. A
// feature is visible iff the actor is admin, or the feature is granted and
// its required-permission list (OR semantics) is empty or satisfied. The
// same contract applies at every call site; there is no second, laxer gate.
func (c *Context) CanAccessMenu(featureID string) bool {
	if c == nil {
		return false
	}
	if c.Role == RoleAdmin {
		return true
	}
	if _, ok := toSet(c.GrantedMenus)[featureID]; !ok {
		return false
	}
	feature, ok := MenuByID(featureID)
	if !ok {
		// Granted but dangling: the feature left the catalog, nothing to show.
		return false
	}
	if len(feature.RequiredPermissions) == 0 {
		return true
	}
	return c.HasAnyPermission(feature.RequiredPermissions...)
}

// VisibleMenus returns the features the actor may see, in display order.
func (c *Context) VisibleMenus() []MenuFeature {
	var out []MenuFeature
	for _, f := range AllMenus() {
		if c.CanAccessMenu(f.ID) {
			out = append(out, f)
		}
	}
	return out
}

// CanViewRecordOwnedBy reports whether the actor may see a record owned by
// ownerID. Admins and holders of allViewPermission see everything; everyone
// else sees only their own records. Ownership compares stable user ids, not
// display names, so two actors sharing a name never see each other's data.
func (c *Context) CanViewRecordOwnedBy(ownerID int64, allViewPermission string) bool {
	if c == nil {
		return false
	}
	if c.Role == RoleAdmin {
		return true
	}
	if c.HasPermission(allViewPermission) {
		return true
	}
	return ownerID == c.UserID
}
