package search

import (
	"strconv"

	"github.com/germplasm-hub/data-api/types"
)

// Declared value types that trigger fixed-precision casting of the column
// during clause generation, so comparisons ignore invisible floating-point
// noise.
const (
	TypeDouble = "Double"
	TypeFloat  = "Float"
)

// Condition is a single column comparison of a filter query.
type Condition struct {
	Column     string     `json:"column" mapstructure:"column"`
	Comparator Comparator `json:"comparator" mapstructure:"comparator"`
	Values     []string   `json:"values" mapstructure:"values"`
	// Type is a client-side type hint ("Double", "Float", ...) that drives
	// numeric casting. Anything else is treated as plain text.
	Type string `json:"type,omitempty" mapstructure:"type"`
}

func (c *Condition) isDecimal() bool {
	return c.Type == TypeDouble || c.Type == TypeFloat
}

// Query is the client-supplied boolean filter expression: an ordered
// sequence of conditions joined by logical operators. Operator i joins
// condition i and i+1, so a well-formed query carries exactly
// len(Conditions)-1 operators.
type Query struct {
	Conditions []Condition       `json:"conditions" mapstructure:"conditions"`
	Operators  []LogicalOperator `json:"operators" mapstructure:"operators"`
}

// IsEmpty reports whether the query carries no conditions at all. An empty
// query compiles to the neutral true-predicate.
func (q *Query) IsEmpty() bool {
	return q == nil || len(q.Conditions) == 0
}

func (q *Query) validate() error {
	if got, want := len(q.Operators), len(q.Conditions)-1; got != want {
		return types.NewInvalidSearchQueryError(
			"filter with " + strconv.Itoa(len(q.Conditions)) + " condition(s) requires " +
				strconv.Itoa(want) + " logical operator(s), got " + strconv.Itoa(got))
	}
	for _, op := range q.Operators {
		if !op.valid() {
			return types.NewInvalidSearchQueryError("unknown logical operator '" + string(op) + "'")
		}
	}
	return nil
}
