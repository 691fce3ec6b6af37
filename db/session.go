package db

import "context"

// Row is a single result row keyed by column name.
type Row = map[string]interface{}

// ResultSet is a fully materialized query result.
type ResultSet interface {
	Values() []Row
}

// Session is the uniform execution contract of the api. Statements use `?`
// placeholders; parameters are bound positionally in the exact order the
// query compiler emitted the placeholders.
type Session interface {
	// Execute runs a statement without returning row results.
	Execute(ctx context.Context, query string, values ...interface{}) error

	// ExecuteIter runs a query and materializes the full result set.
	ExecuteIter(ctx context.Context, query string, values ...interface{}) (ResultSet, error)

	// ExecuteStream runs a query and hands rows to fn one at a time off a
	// forward-only cursor, without materializing the result set. Iteration
	// stops at the first error fn returns.
	ExecuteStream(ctx context.Context, query string, fn func(Row) error, values ...interface{}) error

	// Close releases the underlying connection pool.
	Close()
}

type resultSet struct {
	values []Row
}

func (r *resultSet) Values() []Row {
	return r.values
}

// ScalarLongs collapses a single int64 column of a result set to a list.
func ScalarLongs(rs ResultSet, column string) []int64 {
	rows := rs.Values()
	out := make([]int64, 0, len(rows))
	for _, row := range rows {
		if v, ok := AsLong(row[column]); ok {
			out = append(out, v)
		}
	}
	return out
}

// ScalarStrings collapses a single text column of a result set to a list.
func ScalarStrings(rs ResultSet, column string) []string {
	rows := rs.Values()
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if s, ok := row[column].(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// AsLong coerces the numeric types the driver may hand back into an int64.
func AsLong(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// AsDouble coerces the numeric types the driver may hand back into a float64.
func AsDouble(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
