// Package reporting renders feature records for files and terminals.
package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"wallet-risk-lab/internal/features"
)

// RenderCSV writes records as CSV with a header row in schema order.
// Absent values are written as empty cells.
func RenderCSV(w io.Writer, records []features.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(features.FieldNames()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i, r := range records {
		fields := r.Fields()
		row := make([]string, len(fields))
		for j, f := range fields {
			row[j] = formatCell(f.Value)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
