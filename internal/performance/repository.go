package performance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository aggregates sales results from the store. The aggregation is
// always canonical: every salesperson across every department, so totals
// remain computable before any role-based narrowing.
type Repository interface {
	Aggregate(ctx context.Context, from, to time.Time) ([]SalesRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Aggregate(ctx context.Context, from, to time.Time) ([]SalesRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name, d.id, d.name,
		       COUNT(o.id) AS orders,
		       COALESCE(SUM(o.amount), 0) AS revenue
		FROM users u
		JOIN departments d ON d.id = u.department_id
		LEFT JOIN sales_orders o
		       ON o.salesperson_id = u.id
		      AND o.ordered_at >= $1 AND o.ordered_at < $2
		WHERE u.role = 'salesperson'
		GROUP BY u.id, u.name, d.id, d.name
		ORDER BY d.id, u.id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SalesRow
	for rows.Next() {
		var row SalesRow
		if err := rows.Scan(&row.SalespersonID, &row.SalespersonName, &row.DepartmentID, &row.DepartmentName, &row.Orders, &row.Revenue); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

var _ Repository = (*repository)(nil)
