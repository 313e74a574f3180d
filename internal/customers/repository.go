package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lpx0007/training-management-system-sub002/internal/shared"
)

// Repository is the persistence boundary for customer records.
type Repository interface {
	Get(ctx context.Context, id int64) (*Customer, error)
	List(ctx context.Context, filter ListFilter) ([]Customer, error)
	Create(ctx context.Context, c Customer) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const customerColumns = `
	c.id, c.name, c.company, c.phone, c.email,
	c.salesperson_id, u.name AS salesperson_name,
	COALESCE(u.department_id, 0) AS department_id,
	c.created_at, c.updated_at
`

func (r *repository) Get(ctx context.Context, id int64) (*Customer, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM customers c
		JOIN users u ON u.id = c.salesperson_id
		WHERE c.id = $1`, customerColumns), id)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Customer, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM customers c
		JOIN users u ON u.id = c.salesperson_id`, customerColumns)
	var args []any
	if filter.Search != nil && *filter.Search != "" {
		query += ` WHERE (c.name ILIKE $1 OR c.company ILIKE $1 OR c.phone ILIKE $1)`
		args = append(args, "%"+*filter.Search+"%")
	}
	query += ` ORDER BY c.id`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, filter.Limit, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Customer) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customers (name, company, phone, email, salesperson_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id`,
		c.Name, c.Company, c.Phone, c.Email, c.SalespersonID).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.Company, &c.Phone, &c.Email,
		&c.SalespersonID, &c.SalespersonName, &c.DepartmentID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

var _ Repository = (*repository)(nil)
