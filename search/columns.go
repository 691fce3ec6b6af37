package search

import "github.com/germplasm-hub/data-api/types"

// CheckSortColumn resolves a client-requested column against the fixed
// allow-list of an entity. An empty request falls back to the given default;
// anything that isn't an exact, case-sensitive match fails. This check is
// the sole injection defense for column names and must run before a column
// is concatenated into a statement.
func CheckSortColumn(requested string, allowed []string, fallback string) (string, error) {
	if requested == "" {
		if fallback == "" {
			return "", types.NewInvalidColumnError(requested)
		}
		return fallback, nil
	}

	for _, column := range allowed {
		if column == requested {
			return column, nil
		}
	}

	return "", types.NewInvalidColumnError(requested)
}
