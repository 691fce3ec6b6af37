package store

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germplasm-hub/data-api/db"
	"github.com/germplasm-hub/data-api/search"
	"github.com/germplasm-hub/data-api/types"
)

func TestLocationPolygonText(t *testing.T) {
	t.Run("open ring is closed", func(t *testing.T) {
		got, err := polygonText([]types.LatLng{
			{Latitude: 0, Longitude: 0},
			{Latitude: 0, Longitude: 10},
			{Latitude: 10, Longitude: 10},
		})
		require.NoError(t, err)
		assert.Equal(t, "POLYGON((0 0,10 0,10 10,0 0))", got)
	})

	t.Run("closed ring is kept", func(t *testing.T) {
		got, err := polygonText([]types.LatLng{
			{Latitude: 0, Longitude: 0},
			{Latitude: 0, Longitude: 10},
			{Latitude: 10, Longitude: 10},
			{Latitude: 0, Longitude: 0},
		})
		require.NoError(t, err)
		assert.Equal(t, "POLYGON((0 0,10 0,10 10,0 0))", got)
	})

	t.Run("too few points fail", func(t *testing.T) {
		_, err := polygonText([]types.LatLng{
			{Latitude: 0, Longitude: 0},
			{Latitude: 10, Longitude: 10},
		})
		require.Error(t, err)
		assert.True(t, types.IsInvalidArgument(err))
	})
}

func TestLocationGetInPolygonBindsSinglePolygonParam(t *testing.T) {
	sessionMock := db.NewSessionMock()
	store := NewLocationStore(sessionMock, testConfig(false, false))

	polygon := "POLYGON((0 0,10 0,10 10,0 0))"
	query := fmt.Sprintf(selectLocationsInPolygon, " ORDER BY locations.site_name ASC")
	queryParams := []interface{}{polygon, 0, search.UnboundedLength}
	sessionMock.On("ExecuteIter", query, queryParams).Return(db.NewResultSet(), nil)
	sessionMock.On("ExecuteIter", countLocationsInPolygon, []interface{}{polygon}).
		Return(db.NewResultSet(db.Row{"total": int64(0)}), nil)

	bounds := []types.LatLng{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 10},
		{Latitude: 10, Longitude: 10},
	}
	_, _, err := store.GetInPolygon(context.Background(), bounds, search.DefaultPagination())
	require.NoError(t, err)

	sessionMock.AssertCalled(t, "ExecuteIter", query, queryParams)
}

func TestLocationGetSortedByDistanceBindingOrder(t *testing.T) {
	sessionMock := db.NewSessionMock()
	store := NewLocationStore(sessionMock, testConfig(false, false))

	// The distance expression repeats the reference as (lat, lat, lon).
	queryParams := []interface{}{52.5, 52.5, 13.4, 0, search.UnboundedLength}
	sessionMock.On("ExecuteIter", selectLocationsByDistance, queryParams).
		Return(db.NewResultSet(db.Row{
			"id":        int64(1),
			"site_name": "Dahlem",
			"latitude":  52.46,
			"longitude": 13.3,
			"distance":  5.1234,
		}), nil)
	sessionMock.On("ExecuteIter", countLocationsWithCoordinates, []interface{}(nil)).
		Return(db.NewResultSet(db.Row{"total": int64(1)}), nil)

	locations, total, err := store.GetSortedByDistance(context.Background(), 52.5, 13.4, search.DefaultPagination())
	require.NoError(t, err)

	require.Len(t, locations, 1)
	require.NotNil(t, locations[0].Distance)
	assert.Equal(t, 5.1234, *locations[0].Distance)
	assert.Equal(t, int64(1), total)
	sessionMock.AssertCalled(t, "ExecuteIter", selectLocationsByDistance, queryParams)
}

func TestLocationGetAllForFilter(t *testing.T) {
	sessionMock := db.NewSessionMock()
	store := NewLocationStore(sessionMock, testConfig(false, false))

	filter := &search.Query{
		Conditions: []search.Condition{
			{Column: "countries.name", Comparator: search.Equal, Values: []string{"Germany"}},
		},
	}

	template := fmt.Sprintf(selectLocations, " ORDER BY locations.site_name ASC")
	query := strings.Replace(template, search.FilterPlaceholder, " WHERE (countries.name = ?)", 1)
	queryParams := []interface{}{"Germany", 0, search.UnboundedLength}
	sessionMock.On("ExecuteIter", query, queryParams).Return(db.NewResultSet(), nil)

	countQuery := strings.Replace(countLocations, search.FilterPlaceholder, " WHERE (countries.name = ?)", 1)
	sessionMock.On("ExecuteIter", countQuery, []interface{}{"Germany"}).
		Return(db.NewResultSet(db.Row{"total": int64(0)}), nil)

	_, _, err := store.GetAllForFilter(context.Background(), filter, search.DefaultPagination())
	require.NoError(t, err)

	sessionMock.AssertCalled(t, "ExecuteIter", query, queryParams)
	sessionMock.AssertCalled(t, "ExecuteIter", countQuery, []interface{}{"Germany"})
}
