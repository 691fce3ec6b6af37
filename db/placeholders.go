package db

import (
	"strconv"
	"strings"
)

// rewritePlaceholders converts the dialect-neutral `?` placeholders emitted
// by the query compiler into the `$n` form PostgreSQL expects. Question
// marks inside single-quoted literals are left alone.
func rewritePlaceholders(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}

	var out strings.Builder
	out.Grow(len(query) + 8)

	n := 0
	inLiteral := false
	for _, r := range query {
		switch {
		case r == '\'':
			inLiteral = !inLiteral
			out.WriteRune(r)
		case r == '?' && !inLiteral:
			n++
			out.WriteString("$" + strconv.Itoa(n))
		default:
			out.WriteRune(r)
		}
	}

	return out.String()
}
