package performance

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/lpx0007/training-management-system-sub002/internal/authz"
	"github.com/lpx0007/training-management-system-sub002/internal/scope"
)

// Service computes scoped performance summaries. The canonical aggregate is
// always built first; department scoping runs afterwards and totals are
// recomputed over the retained rows only.
type Service struct {
	repo      Repository
	directory scope.Directory
}

// NewService constructs a Service.
func NewService(repo Repository, directory scope.Directory) *Service {
	return &Service{repo: repo, directory: directory}
}

func departmentOf(r SalesRow) int64 { return r.DepartmentID }

// Summary returns the performance summary visible to the actor. Managers
// without performance_view_all_departments see only their own department.
func (s *Service) Summary(ctx context.Context, ac *authz.Context, from, to time.Time) (Summary, error) {
	rows, err := s.repo.Aggregate(ctx, from, to)
	if err != nil {
		return Summary{}, fmt.Errorf("performance: aggregate: %w", err)
	}
	scoped := scope.ByDepartment(ac, rows, departmentOf)
	return summarize(from, to, scoped), nil
}

// SummaryForDepartmentName narrows the actor's visible summary to an
// explicitly named department. An unresolvable name yields an empty summary
// regardless of the actor's privileges.
func (s *Service) SummaryForDepartmentName(ctx context.Context, ac *authz.Context, name string, from, to time.Time) (Summary, error) {
	summary, err := s.Summary(ctx, ac, from, to)
	if err != nil {
		return Summary{}, err
	}
	scoped, err := scope.ByDepartmentName(ctx, s.directory, name, summary.Rows, departmentOf)
	if err != nil {
		return Summary{}, fmt.Errorf("performance: department filter: %w", err)
	}
	return summarize(from, to, scoped), nil
}

// ExportCSV writes the actor's visible summary as CSV.
func (s *Service) ExportCSV(ctx context.Context, ac *authz.Context, departmentName string, from, to time.Time, w io.Writer) error {
	var summary Summary
	var err error
	if departmentName != "" {
		summary, err = s.SummaryForDepartmentName(ctx, ac, departmentName, from, to)
	} else {
		summary, err = s.Summary(ctx, ac, from, to)
	}
	if err != nil {
		return err
	}
	return WriteSummaryCSV(w, summary)
}

// WriteSummaryCSV serialises a summary, rows first and the recomputed totals
// as the final record.
func WriteSummaryCSV(w io.Writer, summary Summary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Salesperson", "Department", "Orders", "Revenue"}); err != nil {
		return err
	}
	for _, r := range summary.Rows {
		record := []string{
			r.SalespersonName,
			r.DepartmentName,
			strconv.Itoa(r.Orders),
			strconv.FormatFloat(r.Revenue, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	total := []string{
		"Total", "",
		strconv.Itoa(summary.TotalOrders),
		strconv.FormatFloat(summary.TotalRevenue, 'f', 2, 64),
	}
	if err := writer.Write(total); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
