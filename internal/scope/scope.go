// Package scope applies authorization outcomes as row-level filters. It runs
// as a post-processing stage over collections other subsystems already
// computed: canonical aggregates stay computable before narrowing, and any
// downstream totals are recomputed from the filtered rows by the caller.
package scope

import (
	"context"
	"errors"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

// Directory resolves human-supplied names to stable internal ids. Resolution
// misses surface as shared.ErrNotFound; store failures surface as-is.
type Directory interface {
	ResolveDepartmentIDByName(ctx context.Context, name string) (int64, error)
	ResolveUserIDByName(ctx context.Context, name string) (int64, error)
}

// ByDepartment narrows rows to the actor's own department unless the actor
// holds performance_view_all_departments (admins implicitly do). An actor
// subject to narrowing but without a department sees nothing.
func ByDepartment[T any](ac *authz.Context, rows []T, departmentOf func(T) int64) []T {
	if ac.HasPermission(authz.PermPerformanceViewAllDepartments) {
		return rows
	}
	if ac == nil || ac.DepartmentID == nil {
		return []T{}
	}
	want := *ac.DepartmentID
	return keep(rows, func(row T) bool { return departmentOf(row) == want })
}

// ByOwner narrows rows to those owned by the actor unless the actor holds
// allViewPermission (admins implicitly do).
func ByOwner[T any](ac *authz.Context, rows []T, ownerOf func(T) int64, allViewPermission string) []T {
	if ac.HasPermission(allViewPermission) {
		return rows
	}
	if ac == nil {
		return []T{}
	}
	return keep(rows, func(row T) bool { return ownerOf(row) == ac.UserID })
}

// ByDepartmentName retains rows belonging to the named department. A name
// that does not resolve yields an empty set, never the unfiltered input,
// even for otherwise unrestricted actors: an explicit filter by an unknown
// name means "no matching rows", not "no filter".
func ByDepartmentName[T any](ctx context.Context, dir Directory, name string, rows []T, departmentOf func(T) int64) ([]T, error) {
	id, err := dir.ResolveDepartmentIDByName(ctx, name)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return []T{}, nil
		}
		return nil, err
	}
	return keep(rows, func(row T) bool { return departmentOf(row) == id }), nil
}

// ByOwnerName retains rows owned by the named salesperson, with the same
// fail-closed contract as ByDepartmentName.
func ByOwnerName[T any](ctx context.Context, dir Directory, name string, rows []T, ownerOf func(T) int64) ([]T, error) {
	id, err := dir.ResolveUserIDByName(ctx, name)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return []T{}, nil
		}
		return nil, err
	}
	return keep(rows, func(row T) bool { return ownerOf(row) == id }), nil
}

func keep[T any](rows []T, pred func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if pred(row) {
			out = append(out, row)
		}
	}
	return out
}
