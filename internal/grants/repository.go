package grants

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lpx0007/training-management-system-sub002/internal/platform/db"
	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

// UserGrants is one user's enforcement state as stored: role, department and
// the explicit grant rows that diverge from role defaults over time.
type UserGrants struct {
	UserID       int64
	DisplayName  string
	Role         string
	DepartmentID *int64
	Permissions  []string
	Menus        []string
}

// Repository is the persistence boundary for the per-user grant tables.
type Repository interface {
	GetUserGrants(ctx context.Context, userID int64) (*UserGrants, error)
	SetUserPermissions(ctx context.Context, userID int64, permissionIDs []string) error
	SetUserMenus(ctx context.Context, userID int64, menuIDs []string) error
	ListDanglingGrants(ctx context.Context, knownPermissions, knownMenus []string) ([]DanglingGrant, error)
}

// DanglingGrant is a grant row whose id no longer exists in the catalogs.
type DanglingGrant struct {
	UserID int64
	Kind   string // "permission" or "menu"
	ID     string
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetUserGrants(ctx context.Context, userID int64) (*UserGrants, error) {
	g := &UserGrants{UserID: userID}
	err := r.pool.QueryRow(ctx, `SELECT name, role, department_id FROM users WHERE id = $1`, userID).
		Scan(&g.DisplayName, &g.Role, &g.DepartmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("grants: read user: %w", err)
	}

	g.Permissions, err = r.collect(ctx, `SELECT permission_id FROM user_permissions WHERE user_id = $1 ORDER BY permission_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("grants: read permissions: %w", err)
	}
	g.Menus, err = r.collect(ctx, `SELECT menu_id FROM user_menus WHERE user_id = $1 ORDER BY menu_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("grants: read menus: %w", err)
	}
	return g, nil
}

// SetUserPermissions replaces the user's permission grant rows wholesale.
func (r *repository) SetUserPermissions(ctx context.Context, userID int64, permissionIDs []string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1`, userID); err != nil {
			return err
		}
		for _, id := range permissionIDs {
			if _, err := tx.Exec(ctx, `INSERT INTO user_permissions (user_id, permission_id) VALUES ($1, $2)`, userID, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetUserMenus replaces the user's menu grant rows wholesale.
func (r *repository) SetUserMenus(ctx context.Context, userID int64, menuIDs []string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_menus WHERE user_id = $1`, userID); err != nil {
			return err
		}
		for _, id := range menuIDs {
			if _, err := tx.Exec(ctx, `INSERT INTO user_menus (user_id, menu_id) VALUES ($1, $2)`, userID, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListDanglingGrants reports grant rows referencing ids missing from the
// given catalogs. Used by the integrity scan job.
func (r *repository) ListDanglingGrants(ctx context.Context, knownPermissions, knownMenus []string) ([]DanglingGrant, error) {
	var out []DanglingGrant

	rows, err := r.pool.Query(ctx, `SELECT user_id, permission_id FROM user_permissions WHERE NOT (permission_id = ANY($1)) ORDER BY user_id, permission_id`, knownPermissions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		g := DanglingGrant{Kind: "permission"}
		if err := rows.Scan(&g.UserID, &g.ID); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	menuRows, err := r.pool.Query(ctx, `SELECT user_id, menu_id FROM user_menus WHERE NOT (menu_id = ANY($1)) ORDER BY user_id, menu_id`, knownMenus)
	if err != nil {
		return nil, err
	}
	defer menuRows.Close()
	for menuRows.Next() {
		g := DanglingGrant{Kind: "menu"}
		if err := menuRows.Scan(&g.UserID, &g.ID); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, menuRows.Err()
}

func (r *repository) collect(ctx context.Context, query string, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ Repository = (*repository)(nil)
