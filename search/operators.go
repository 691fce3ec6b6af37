package search

import (
	"strconv"
	"strings"

	"github.com/germplasm-hub/data-api/types"
)

// LogicalOperator joins two adjacent conditions of a query.
type LogicalOperator string

const (
	And LogicalOperator = "AND"
	Or  LogicalOperator = "OR"
)

func (op LogicalOperator) valid() bool {
	return op == And || op == Or
}

// Comparator is the comparison operator of a single condition. Every
// comparator knows how many values it takes, whether those values may be
// bound numerically, and how to render its parameterized SQL fragment. The
// fragment and the value sequence are produced by the same type so the
// placeholder count and the binding count cannot drift apart.
type Comparator string

const (
	Equal            Comparator = "equals"
	NotEqual         Comparator = "notEquals"
	Like             Comparator = "like"
	NotLike          Comparator = "notLike"
	GreaterThan      Comparator = "greaterThan"
	GreaterThanEqual Comparator = "greaterThanEquals"
	LessThan         Comparator = "lessThan"
	LessThanEqual    Comparator = "lessThanEquals"
	Between          Comparator = "between"
	InSet            Comparator = "inSet"
	IsNull           Comparator = "isNull"
	IsNotNull        Comparator = "isNotNull"
)

const valuesUnbounded = -1

type comparatorSpec struct {
	symbol             string
	minValues          int
	maxValues          int
	potentiallyNumeric bool
}

var comparators = map[Comparator]comparatorSpec{
	Equal:            {symbol: "=", minValues: 1, maxValues: 1, potentiallyNumeric: true},
	NotEqual:         {symbol: "!=", minValues: 1, maxValues: 1, potentiallyNumeric: true},
	Like:             {symbol: "LIKE", minValues: 1, maxValues: 1},
	NotLike:          {symbol: "NOT LIKE", minValues: 1, maxValues: 1},
	GreaterThan:      {symbol: ">", minValues: 1, maxValues: 1, potentiallyNumeric: true},
	GreaterThanEqual: {symbol: ">=", minValues: 1, maxValues: 1, potentiallyNumeric: true},
	LessThan:         {symbol: "<", minValues: 1, maxValues: 1, potentiallyNumeric: true},
	LessThanEqual:    {symbol: "<=", minValues: 1, maxValues: 1, potentiallyNumeric: true},
	Between:          {minValues: 2, maxValues: 2, potentiallyNumeric: true},
	InSet:            {minValues: 1, maxValues: valuesUnbounded, potentiallyNumeric: true},
	IsNull:           {minValues: 0, maxValues: 0},
	IsNotNull:        {minValues: 0, maxValues: 0},
}

// PotentiallyNumeric reports whether values of this comparator may be bound
// as numeric parameters when they all parse as numbers.
func (c Comparator) PotentiallyNumeric() bool {
	return comparators[c].potentiallyNumeric
}

func (c Comparator) checkValueCount(n int) error {
	spec, ok := comparators[c]
	if !ok {
		return types.NewInvalidSearchQueryError("unknown comparison operator '" + string(c) + "'")
	}
	if n < spec.minValues || (spec.maxValues != valuesUnbounded && n > spec.maxValues) {
		// Between historically reports its own argument failure.
		if c == Between {
			return types.NewInvalidArgumentError("between requires exactly two values")
		}
		return types.NewInvalidSearchQueryError(
			"operator '" + string(c) + "' cannot be used with " + strconv.Itoa(n) + " value(s)")
	}
	return nil
}

// fragment renders the parameterized SQL fragment for the given column
// reference. The number of placeholders always equals the length of the
// sequence returned by values for the same input.
func (c Comparator) fragment(column string, valueCount int) (string, error) {
	if err := c.checkValueCount(valueCount); err != nil {
		return "", err
	}

	switch c {
	case Between:
		return column + " BETWEEN ? AND ?", nil
	case InSet:
		placeholders := make([]string, valueCount)
		for i := range placeholders {
			placeholders[i] = "?"
		}
		return column + " IN (" + strings.Join(placeholders, ", ") + ")", nil
	case IsNull:
		return column + " IS NULL", nil
	case IsNotNull:
		return column + " IS NOT NULL", nil
	default:
		return column + " " + comparators[c].symbol + " ?", nil
	}
}

// values normalizes the raw condition values for binding. LIKE patterns are
// wrapped in wildcards when the caller didn't supply any; BETWEEN bounds are
// reordered so the smaller numeric value is bound first.
func (c Comparator) values(raw []string) ([]string, error) {
	if err := c.checkValueCount(len(raw)); err != nil {
		return nil, err
	}
	for _, v := range raw {
		if v == "" {
			return nil, types.NewInvalidSearchQueryError("comparison value cannot be empty")
		}
	}

	switch c {
	case Like, NotLike:
		out := make([]string, len(raw))
		for i, v := range raw {
			if strings.Contains(v, "%") {
				out[i] = v
			} else {
				out[i] = "%" + v + "%"
			}
		}
		return out, nil
	case Between:
		a, errA := strconv.ParseFloat(raw[0], 64)
		b, errB := strconv.ParseFloat(raw[1], 64)
		if errA == nil && errB == nil && a > b {
			return []string{raw[1], raw[0]}, nil
		}
		return raw, nil
	default:
		return raw, nil
	}
}
