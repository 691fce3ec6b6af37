// store package holds the permission-scoped entity queries. Every query is
// assembled from a SQL template carrying a {{FILTER}} placeholder plus
// printf-style slots for the permission bits and the ORDER BY fragment; the
// slots are filled in before the filter substitution and parameters are
// bound in the exact order the placeholders appear.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/germplasm-hub/data-api/config"
	"github.com/germplasm-hub/data-api/db"
	"github.com/germplasm-hub/data-api/log"
	"github.com/germplasm-hub/data-api/search"
)

type baseStore struct {
	session db.Session
	cfg     config.Config
	logger  log.Logger
}

func newBaseStore(session db.Session, cfg config.Config) baseStore {
	return baseStore{session: session, cfg: cfg, logger: cfg.Logger()}
}

// formatted fills the permission-bit and sort slots of a template. The bits
// are joined with AND when the template also carries a filter placeholder,
// since the compiled filter always emits a WHERE clause.
func formatted(template, bits, sort string) string {
	combination := ""
	if strings.Contains(template, search.FilterPlaceholder) {
		combination = " AND "
	}
	return fmt.Sprintf(template, combination+bits, sort)
}

// fetchTotal resolves the total row count for a paginated fetch. A total
// cached from a previous page of the same filter is reported verbatim and
// the count query is skipped.
func (s *baseStore) fetchTotal(ctx context.Context, query string, params []interface{}, p *search.Pagination) (int64, error) {
	if p.HasSize() {
		return *p.ResultSize, nil
	}

	rs, err := s.session.ExecuteIter(ctx, query, params...)
	if err != nil {
		return 0, err
	}

	var total int64
	if rows := rs.Values(); len(rows) > 0 {
		if v, ok := db.AsLong(rows[0]["total"]); ok {
			total = v
		}
	}

	p.ResultSize = &total
	return total, nil
}

// sqlPlaceholders generates "?, ?, ..., ?" for an IN list of the given size.
func sqlPlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringVal(row db.Row, column string) string {
	if s, ok := row[column].(string); ok {
		return s
	}
	return ""
}

func boolVal(row db.Row, column string) bool {
	if b, ok := row[column].(bool); ok {
		return b
	}
	return false
}

func longVal(row db.Row, column string) int64 {
	if v, ok := db.AsLong(row[column]); ok {
		return v
	}
	return 0
}

func longPtr(row db.Row, column string) *int64 {
	if row[column] == nil {
		return nil
	}
	if v, ok := db.AsLong(row[column]); ok {
		return &v
	}
	return nil
}

func doublePtr(row db.Row, column string) *float64 {
	if row[column] == nil {
		return nil
	}
	if v, ok := db.AsDouble(row[column]); ok {
		return &v
	}
	return nil
}

func timePtr(row db.Row, column string) *time.Time {
	if t, ok := row[column].(time.Time); ok {
		return &t
	}
	return nil
}
