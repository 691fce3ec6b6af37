package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsBindingOrder(t *testing.T) {
	params := NewParams().
		Add("filter-value", 3.14).
		SetLong(42).
		SetBool(false).
		SetInt(0).
		SetInt(2500)

	assert.Equal(t, []interface{}{"filter-value", 3.14, int64(42), false, 0, 2500}, params.Values())
}

func TestParamsSlices(t *testing.T) {
	params := NewParams().SetLongs([]int64{1, 2}).SetStrings([]string{"a"}).SetNull()
	assert.Equal(t, []interface{}{int64(1), int64(2), "a", nil}, params.Values())
}

func TestScalarLongs(t *testing.T) {
	rs := NewResultSet(
		Row{"id": int64(1)},
		Row{"id": int32(2)},
		Row{"id": int64(3)},
	)
	assert.Equal(t, []int64{1, 2, 3}, ScalarLongs(rs, "id"))
}

func TestScalarStrings(t *testing.T) {
	rs := NewResultSet(
		Row{"name": "Chickpea"},
		Row{"name": "Lentil"},
	)
	assert.Equal(t, []string{"Chickpea", "Lentil"}, ScalarStrings(rs, "name"))
}
