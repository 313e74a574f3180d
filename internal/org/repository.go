package org

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/platform/db"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

// Repository is the persistence boundary for organizational-ownership state.
// The transition service is its only writer; everything else reads.
type Repository interface {
	WithUserLock(ctx context.Context, userID int64, fn func(context.Context, Repository) error) error

	GetUserRole(ctx context.Context, userID int64) (authz.Role, *int64, error)
	SetUserRole(ctx context.Context, userID int64, role authz.Role, departmentID *int64) error

	GetDepartment(ctx context.Context, id int64) (*Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	ResolveDepartmentIDByName(ctx context.Context, name string) (int64, error)
	ResolveUserIDByName(ctx context.Context, name string) (int64, error)

	ListDepartmentSalespersons(ctx context.Context, departmentID int64) ([]int64, error)
	ListTeamMembers(ctx context.Context, managerID int64) ([]TeamMembership, error)
	UpsertTeamMembership(ctx context.Context, managerID, memberID, departmentID int64) error
	DeleteTeamMembershipsByManager(ctx context.Context, managerID int64) error
	SetDepartmentManager(ctx context.Context, departmentID int64, managerID *int64) error
	ClearDepartmentsManagedBy(ctx context.Context, managerID int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// WithUserLock runs fn inside one transaction holding a per-user advisory
// lock, so concurrent transitions on the same user serialize instead of
// racing the membership seeding.
func (r *repository) WithUserLock(ctx context.Context, userID int64, fn func(context.Context, Repository) error) error {
	return db.WithUserLock(ctx, r.pool, userID, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) GetUserRole(ctx context.Context, userID int64) (authz.Role, *int64, error) {
	var raw string
	var departmentID *int64
	err := r.db.QueryRow(ctx, `SELECT role, department_id FROM users WHERE id = $1`, userID).Scan(&raw, &departmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, shared.ErrNotFound
		}
		return "", nil, err
	}
	role, ok := authz.ParseRole(raw)
	if !ok {
		return "", departmentID, fmt.Errorf("org: user %d: %w: %q", userID, shared.ErrInvalidRole, raw)
	}
	return role, departmentID, nil
}

func (r *repository) SetUserRole(ctx context.Context, userID int64, role authz.Role, departmentID *int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET role = $2, department_id = $3, updated_at = NOW() WHERE id = $1`, userID, role.String(), departmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) GetDepartment(ctx context.Context, id int64) (*Department, error) {
	var d Department
	err := r.db.QueryRow(ctx, `SELECT id, name, manager_id, created_at, updated_at FROM departments WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.ManagerID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, manager_id, created_at, updated_at FROM departments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.ManagerID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (r *repository) ResolveDepartmentIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM departments WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) ResolveUserIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM users WHERE name = $1 ORDER BY id LIMIT 1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) ListDepartmentSalespersons(ctx context.Context, departmentID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM users WHERE department_id = $1 AND role = $2 ORDER BY id`, departmentID, authz.RoleSalesperson.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repository) ListTeamMembers(ctx context.Context, managerID int64) ([]TeamMembership, error) {
	rows, err := r.db.Query(ctx, `SELECT manager_id, member_id, department_id, created_at FROM team_memberships WHERE manager_id = $1 ORDER BY member_id`, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []TeamMembership
	for rows.Next() {
		var m TeamMembership
		if err := rows.Scan(&m.ManagerID, &m.MemberID, &m.DepartmentID, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// UpsertTeamMembership is idempotent on (manager_id, member_id): repeating a
// promotion produces no duplicate rows.
func (r *repository) UpsertTeamMembership(ctx context.Context, managerID, memberID, departmentID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO team_memberships (manager_id, member_id, department_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (manager_id, member_id)
		DO UPDATE SET department_id = EXCLUDED.department_id`,
		managerID, memberID, departmentID)
	return err
}

func (r *repository) DeleteTeamMembershipsByManager(ctx context.Context, managerID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM team_memberships WHERE manager_id = $1`, managerID)
	return err
}

func (r *repository) SetDepartmentManager(ctx context.Context, departmentID int64, managerID *int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE departments SET manager_id = $2, updated_at = NOW() WHERE id = $1`, departmentID, managerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ClearDepartmentsManagedBy(ctx context.Context, managerID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE departments SET manager_id = NULL, updated_at = NOW() WHERE manager_id = $1`, managerID)
	return err
}

var _ Repository = (*repository)(nil)
