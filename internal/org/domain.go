package org

import "time"

// Department is an organizational unit. ManagerID is nil when the department
// has no current manager; at most one user manages a department at a time.
type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ManagerID *int64    `json:"manager_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeamMembership links a manager to a salesperson on their team. Membership
// carries no history: promotion or demotion replaces the set wholesale.
type TeamMembership struct {
	ManagerID    int64     `json:"manager_id"`
	MemberID     int64     `json:"member_id"`
	DepartmentID int64     `json:"department_id"`
	CreatedAt    time.Time `json:"created_at"`
}
