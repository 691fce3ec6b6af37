package rest

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/germplasm-hub/data-api/db"
)

// streamCSV writes a CSV export: the header row first, then one row per
// streamed database row in the given column order. The stream callback is
// handed to a forward-only cursor, so exports never materialize the full
// result set.
func streamCSV(w http.ResponseWriter, filename string, columns []string, stream func(fn func(db.Row) error) error) error {
	w.Header().Set("Content-Type", "text/csv; charset=UTF-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return err
	}

	err := stream(func(row db.Row) error {
		record := make([]string, len(columns))
		for i, column := range columns {
			record[i] = formatCSVValue(row[column])
		}
		return writer.Write(record)
	})
	if err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

func formatCSVValue(value interface{}) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
