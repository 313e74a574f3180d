package performance

import "time"

// SalesRow is one salesperson's aggregated result over a reporting window.
type SalesRow struct {
	SalespersonID   int64   `json:"salesperson_id"`
	SalespersonName string  `json:"salesperson_name"`
	DepartmentID    int64   `json:"department_id"`
	DepartmentName  string  `json:"department_name"`
	Orders          int     `json:"orders"`
	Revenue         float64 `json:"revenue"`
}

// Summary is a set of rows together with totals computed over exactly those
// rows. A scoped summary carries totals of the scoped rows, never of the
// canonical unfiltered aggregate.
type Summary struct {
	From         time.Time  `json:"from"`
	To           time.Time  `json:"to"`
	Rows         []SalesRow `json:"rows"`
	TotalOrders  int        `json:"total_orders"`
	TotalRevenue float64    `json:"total_revenue"`
}

func summarize(from, to time.Time, rows []SalesRow) Summary {
	s := Summary{From: from, To: to, Rows: rows}
	for _, r := range rows {
		s.TotalOrders += r.Orders
		s.TotalRevenue += r.Revenue
	}
	return s
}
