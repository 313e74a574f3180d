package customers

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// WriteCustomersCSV serialises customer rows to CSV, ordered by customer
// name with locale-aware collation so mixed-script names sort predictably.
func WriteCustomersCSV(w io.Writer, rows []Customer) error {
	sorted := make([]Customer, len(rows))
	copy(sorted, rows)
	collator := collate.New(language.Und)
	sort.SliceStable(sorted, func(i, j int) bool {
		return collator.CompareString(sorted[i].Name, sorted[j].Name) < 0
	})

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"ID", "Name", "Company", "Phone", "Email", "Salesperson", "Department"}); err != nil {
		return err
	}
	for _, c := range sorted {
		record := []string{
			formatInt(c.ID),
			c.Name,
			deref(c.Company),
			deref(c.Phone),
			deref(c.Email),
			c.SalespersonName,
			formatInt(c.DepartmentID),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
