package authz

// Role is the closed enumeration of actor classes. A user holds exactly one
// role at any instant.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleManager     Role = "manager"
	RoleSalesperson Role = "salesperson"
	RoleExpert      Role = "expert"
)

// ParseRole maps a stored string onto the enumeration. Unknown values report
// ok=false so callers resolve them fail-closed instead of inheriting another
// role's behavior.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleSalesperson, RoleExpert:
		return Role(s), true
	}
	return "", false
}

// Valid reports whether the role belongs to the enumeration.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

func (r Role) String() string {
	return string(r)
}
