package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germplasm-hub/data-api/db"
	"github.com/germplasm-hub/data-api/search"
)

func TestAccessionGetIDsForFilter(t *testing.T) {
	sessionMock := db.NewSessionMock()
	store := NewAccessionStore(sessionMock, testConfig(false, false))

	filter := &search.Query{
		Conditions: []search.Condition{
			{Column: "taxonomies.genus", Comparator: search.Equal, Values: []string{"Cicer"}},
		},
	}

	query := strings.Replace(selectAccessionIDs, search.FilterPlaceholder, " WHERE (taxonomies.genus = ?)", 1)
	sessionMock.On("ExecuteIter", query, []interface{}{"Cicer"}).
		Return(db.NewResultSet(db.Row{"id": int64(1)}, db.Row{"id": int64(2)}), nil)

	ids, err := store.GetIDsForFilter(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestAccessionGetNamesForFilter(t *testing.T) {
	sessionMock := db.NewSessionMock()
	store := NewAccessionStore(sessionMock, testConfig(false, false))

	query := strings.Replace(selectAccessionNames, search.FilterPlaceholder, " WHERE 1=1", 1)
	sessionMock.On("ExecuteIter", query, []interface{}(nil)).
		Return(db.NewResultSet(db.Row{"name": "ICC 4958"}), nil)

	names, err := store.GetNamesForFilter(context.Background(), &search.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ICC 4958"}, names)
}

func TestAccessionStreamForFilter(t *testing.T) {
	sessionMock := db.NewSessionMock()
	store := NewAccessionStore(sessionMock, testConfig(false, false))

	template := strings.Replace(selectAccessionsExport, "%s", " ORDER BY accessions.name ASC", 1)
	query := strings.Replace(template, search.FilterPlaceholder, " WHERE 1=1", 1)
	queryParams := []interface{}{0, search.UnboundedLength}
	sessionMock.On("ExecuteStream", query, queryParams).
		Return([]db.Row{
			{"accession_id": int64(1), "accession_name": "ICC 4958"},
			{"accession_id": int64(2), "accession_name": "ILC 482"},
		}, nil)

	var seen []string
	err := store.StreamForFilter(context.Background(), &search.Query{}, search.DefaultPagination(), func(row db.Row) error {
		seen = append(seen, row["accession_name"].(string))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ICC 4958", "ILC 482"}, seen)
}
