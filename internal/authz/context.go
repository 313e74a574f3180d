package authz

import "context"

// Context is the per-session authorization state for one authenticated
// actor. It is built once at login from the user's grant rows, serialized
// into the session, and never refreshed while the session lives: an admin
// editing a live session's grants becomes visible only after re-login.
type Context struct {
	UserID             int64    `json:"user_id"`
	DisplayName        string   `json:"display_name"`
	Role               Role     `json:"role"`
	DepartmentID       *int64   `json:"department_id,omitempty"`
	GrantedPermissions []string `json:"granted_permissions"`
	GrantedMenus       []string `json:"granted_menus"`
}

type authzContextKey struct{}

// WithContext attaches the authorization context to a request context.
func WithContext(ctx context.Context, ac *Context) context.Context {
	return context.WithValue(ctx, authzContextKey{}, ac)
}

// FromContext extracts the authorization context, nil when the request is
// unauthenticated. Every decision method treats nil as deny.
func FromContext(ctx context.Context) *Context {
	ac, _ := ctx.Value(authzContextKey{}).(*Context)
	return ac
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
