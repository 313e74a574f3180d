package customers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/scope"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

// ErrForbidden marks a record the actor may not see.
var ErrForbidden = errors.New("customers: forbidden")

// Service applies ownership scoping on top of the repository. Scoping runs
// as post-processing over the fetched rows, never as a query predicate, so
// the same repository output serves both privileged and scoped viewers.
type Service struct {
	repo      Repository
	directory scope.Directory
}

// NewService constructs a Service.
func NewService(repo Repository, directory scope.Directory) *Service {
	return &Service{repo: repo, directory: directory}
}

func ownerOf(c Customer) int64      { return c.SalespersonID }
func departmentOf(c Customer) int64 { return c.DepartmentID }

// List returns the customers visible to the actor. Salespersons without
// customer_view_all see only their own records.
func (s *Service) List(ctx context.Context, ac *authz.Context, filter ListFilter) ([]Customer, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("customers: list: %w", err)
	}
	return scope.ByOwner(ac, rows, ownerOf, authz.PermCustomerViewAll), nil
}

// Get returns one customer if the actor may see it.
func (s *Service) Get(ctx context.Context, ac *authz.Context, id int64) (*Customer, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ac.CanViewRecordOwnedBy(c.SalespersonID, authz.PermCustomerViewAll) {
		return nil, ErrForbidden
	}
	return c, nil
}

// Create stores a new customer owned by the requested salesperson, or by the
// actor when no owner is given.
func (s *Service) Create(ctx context.Context, ac *authz.Context, c Customer) (*Customer, error) {
	if ac == nil {
		return nil, ErrForbidden
	}
	if c.SalespersonID == 0 {
		c.SalespersonID = ac.UserID
	}
	if c.SalespersonID != ac.UserID && !ac.HasPermission(authz.PermCustomerEdit) {
		return nil, ErrForbidden
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("customers: create: %w", err)
	}
	c.ID = id
	return &c, nil
}

// ExportOptions carries the explicit filters a caller requested for export.
type ExportOptions struct {
	DepartmentName  string
	SalespersonName string
}

// ExportCSV writes the actor's visible customers as CSV. Ownership scoping
// applies first; explicit name filters narrow further and fail closed: a
// name that resolves to nothing produces an empty export for every actor,
// privileged or not.
func (s *Service) ExportCSV(ctx context.Context, ac *authz.Context, opts ExportOptions, w io.Writer) (int, error) {
	rows, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return 0, fmt.Errorf("customers: export: %w", err)
	}
	rows = scope.ByOwner(ac, rows, ownerOf, authz.PermCustomerViewAll)

	if opts.DepartmentName != "" {
		rows, err = scope.ByDepartmentName(ctx, s.directory, opts.DepartmentName, rows, departmentOf)
		if err != nil {
			return 0, fmt.Errorf("customers: export department filter: %w", err)
		}
	}
	if opts.SalespersonName != "" {
		rows, err = scope.ByOwnerName(ctx, s.directory, opts.SalespersonName, rows, ownerOf)
		if err != nil {
			return 0, fmt.Errorf("customers: export salesperson filter: %w", err)
		}
	}

	if err := WriteCustomersCSV(w, rows); err != nil {
		return 0, fmt.Errorf("customers: write csv: %w", err)
	}
	return len(rows), nil
}

// IsNotFound reports whether err denotes a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
