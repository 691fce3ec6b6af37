package search

import (
	"strconv"
	"strings"
)

// FilterPlaceholder is the token in SQL templates that the compiler replaces
// with the WHERE clause. Templates must place it where the WHERE keyword
// would usually go; the compiler always emits a WHERE clause, falling back
// to the neutral "WHERE 1=1" for empty filters, so callers can join extra
// predicates with AND/OR unconditionally.
const FilterPlaceholder = "{{FILTER}}"

const neutralFilter = " WHERE 1=1"

// Compile turns a filter query and a SQL template containing the
// {{FILTER}} placeholder into an executable statement plus the ordered
// parameter sequence for the placeholders it emitted. Every condition column
// is validated against the allow-list before it is concatenated anywhere;
// the first disallowed column aborts compilation.
//
// Parameter production happens in the same pass as clause generation: a
// potentially numeric comparator whose values all parse as floats binds
// them as doubles (an unexpected mid-sequence parse failure binds a typed
// NULL instead of failing), anything else binds strings. Compiling the same
// query against the same allow-list is deterministic in both the SQL text
// and the binding order.
func Compile(q *Query, template string, allowed []string) (string, []interface{}, error) {
	if q.IsEmpty() {
		return strings.Replace(template, FilterPlaceholder, neutralFilter, 1), nil, nil
	}

	if err := q.validate(); err != nil {
		return "", nil, err
	}

	var clause strings.Builder
	var params []interface{}

	for i := range q.Conditions {
		cond := &q.Conditions[i]

		column, err := CheckSortColumn(cond.Column, allowed, "")
		if err != nil {
			return "", nil, err
		}

		if i > 0 {
			clause.WriteString(" " + string(q.Operators[i-1]) + " ")
		}

		// The cast is local to clause generation; the condition keeps its
		// original column name.
		if cond.isDecimal() {
			column = "CAST(" + column + " AS DECIMAL(30,2))"
		}

		values, err := cond.Comparator.values(cond.Values)
		if err != nil {
			return "", nil, err
		}

		fragment, err := cond.Comparator.fragment(column, len(values))
		if err != nil {
			return "", nil, err
		}
		clause.WriteString(fragment)

		params = append(params, bindValues(cond.Comparator, values)...)
	}

	sql := strings.Replace(template, FilterPlaceholder, " WHERE ("+clause.String()+")", 1)
	return sql, params, nil
}

// bindValues produces the parameter sequence for one condition, in the exact
// order its placeholders were emitted.
func bindValues(comp Comparator, values []string) []interface{} {
	out := make([]interface{}, 0, len(values))

	if comp.PotentiallyNumeric() && allNumeric(values) {
		for _, v := range values {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				out = append(out, f)
			} else {
				out = append(out, nil)
			}
		}
		return out
	}

	for _, v := range values {
		out = append(out, v)
	}
	return out
}

func allNumeric(values []string) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
	}
	return true
}
