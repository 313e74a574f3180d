package users

import (
	"time"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
)

// User is the administrative view of an account, role and department
// assignment included.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         authz.Role `json:"role"`
	DepartmentID *int64     `json:"department_id,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ListFilter narrows a user listing.
type ListFilter struct {
	Role         *authz.Role
	DepartmentID *int64
	Search       *string
	Limit        int
	Offset       int
}
