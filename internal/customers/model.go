package customers

import "time"

// Customer is a business record owned by one salesperson. Ownership and the
// owner's department drive row-level scoping.
type Customer struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Company         *string   `json:"company,omitempty" db:"company"`
	Phone           *string   `json:"phone,omitempty" db:"phone"`
	Email           *string   `json:"email,omitempty" db:"email"`
	SalespersonID   int64     `json:"salesperson_id" db:"salesperson_id"`
	SalespersonName string    `json:"salesperson_name" db:"salesperson_name"`
	DepartmentID    int64     `json:"department_id" db:"department_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// ListFilter narrows the repository query before any authorization scoping
// runs. Authorization scoping is always applied afterwards, in the service.
type ListFilter struct {
	Search *string
	Limit  int
	Offset int
}
