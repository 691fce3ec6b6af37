package store

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/germplasm-hub/data-api/config"
	"github.com/germplasm-hub/data-api/db"
	"github.com/germplasm-hub/data-api/search"
	"github.com/germplasm-hub/data-api/types"
)

// LocationColumns is the allow-list of filterable/sortable location columns.
var LocationColumns = []string{
	"locations.id",
	"locations.site_name",
	"locations.region",
	"locations.state",
	"locations.latitude",
	"locations.longitude",
	"locations.elevation",
	"countries.name",
}

// LocationExportColumns is the column order of the location export stream.
var LocationExportColumns = []string{
	"location_id",
	"site_name",
	"region",
	"state",
	"latitude",
	"longitude",
	"elevation",
	"country",
}

const locationJoins = "locations" +
	" LEFT JOIN countries ON countries.id = locations.country_id"

const locationColumnsSQL = "locations.id, locations.site_name, locations.region," +
	" locations.state, locations.latitude, locations.longitude, locations.elevation," +
	" countries.name AS country"

const hasCoordinates = "locations.latitude IS NOT NULL AND locations.longitude IS NOT NULL"

// Location queries carry no permission bits; their single printf slot is the
// ORDER BY fragment.
const (
	selectLocations = "SELECT " + locationColumnsSQL + " FROM " + locationJoins +
		"{{FILTER}}%s OFFSET ? LIMIT ?"

	countLocations = "SELECT COUNT(1) AS total FROM " + locationJoins + "{{FILTER}}"

	selectLocationsExport = "SELECT locations.id AS location_id, locations.site_name AS site_name," +
		" locations.region AS region, locations.state AS state, locations.latitude AS latitude," +
		" locations.longitude AS longitude, locations.elevation AS elevation," +
		" countries.name AS country FROM " + locationJoins +
		"{{FILTER}}%s OFFSET ? LIMIT ?"

	// The polygon arrives as a single WKT string parameter with a closed ring.
	selectLocationsInPolygon = "SELECT " + locationColumnsSQL + " FROM " + locationJoins +
		" WHERE " + hasCoordinates +
		" AND ST_Contains(ST_PolygonFromText(?), ST_MakePoint(locations.longitude, locations.latitude))" +
		"%s OFFSET ? LIMIT ?"

	selectLocationIDsInPolygon = "SELECT DISTINCT locations.id FROM " + locationJoins +
		" WHERE " + hasCoordinates +
		" AND ST_Contains(ST_PolygonFromText(?), ST_MakePoint(locations.longitude, locations.latitude))"

	countLocationsInPolygon = "SELECT COUNT(1) AS total FROM " + locationJoins +
		" WHERE " + hasCoordinates +
		" AND ST_Contains(ST_PolygonFromText(?), ST_MakePoint(locations.longitude, locations.latitude))"

	// Great-circle distance to the reference point; binds (lat, lat, lon).
	selectLocationsByDistance = "SELECT " + locationColumnsSQL + "," +
		" CAST(6378.7 * ACOS(SIN(RADIANS(locations.latitude)) * SIN(RADIANS(?))" +
		" + COS(RADIANS(locations.latitude)) * COS(RADIANS(?)) * COS(RADIANS(?) - RADIANS(locations.longitude)))" +
		" AS DECIMAL(10,4)) AS distance FROM " + locationJoins +
		" WHERE " + hasCoordinates +
		" ORDER BY distance ASC OFFSET ? LIMIT ?"

	countLocationsWithCoordinates = "SELECT COUNT(1) AS total FROM " + locationJoins +
		" WHERE " + hasCoordinates
)

// LocationStore runs the filtered and geospatial location queries.
type LocationStore struct {
	baseStore
}

func NewLocationStore(session db.Session, cfg config.Config) *LocationStore {
	return &LocationStore{baseStore: newBaseStore(session, cfg)}
}

// GetAllForFilter returns the page of locations matching the filter, plus
// the total match count.
func (s *LocationStore) GetAllForFilter(ctx context.Context, filter *search.Query, p *search.Pagination) ([]types.Location, int64, error) {
	if err := p.UpdateSortColumn(LocationColumns, "locations.site_name"); err != nil {
		return nil, 0, err
	}

	query, filterParams, err := search.Compile(filter, fmt.Sprintf(selectLocations, p.SortQuery()), LocationColumns)
	if err != nil {
		return nil, 0, err
	}

	start, length := p.LimitParams()
	params := db.NewParams().Add(filterParams...).SetInt(start).SetInt(length)

	rs, err := s.session.ExecuteIter(ctx, query, params.Values()...)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countFilterParams, err := search.Compile(filter, countLocations, LocationColumns)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.fetchTotal(ctx, countQuery, countFilterParams, p)
	if err != nil {
		return nil, 0, err
	}

	return parseLocations(rs), total, nil
}

// StreamForFilter opens a row-streaming export of the locations matching the
// filter.
func (s *LocationStore) StreamForFilter(ctx context.Context, filter *search.Query, p *search.Pagination, fn func(db.Row) error) error {
	if err := p.UpdateSortColumn(LocationColumns, "locations.site_name"); err != nil {
		return err
	}

	query, filterParams, err := search.Compile(filter, fmt.Sprintf(selectLocationsExport, p.SortQuery()), LocationColumns)
	if err != nil {
		return err
	}

	start, length := p.LimitParams()
	params := db.NewParams().Add(filterParams...).SetInt(start).SetInt(length)

	return s.session.ExecuteStream(ctx, query, fn, params.Values()...)
}

// GetInPolygon returns the page of locations inside the given polygon, plus
// the total match count.
func (s *LocationStore) GetInPolygon(ctx context.Context, bounds []types.LatLng, p *search.Pagination) ([]types.Location, int64, error) {
	if err := p.UpdateSortColumn(LocationColumns, "locations.site_name"); err != nil {
		return nil, 0, err
	}

	polygon, err := polygonText(bounds)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(selectLocationsInPolygon, p.SortQuery())
	start, length := p.LimitParams()
	params := db.NewParams().SetString(polygon).SetInt(start).SetInt(length)

	rs, err := s.session.ExecuteIter(ctx, query, params.Values()...)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.fetchTotal(ctx, countLocationsInPolygon, []interface{}{polygon}, p)
	if err != nil {
		return nil, 0, err
	}

	return parseLocations(rs), total, nil
}

// GetIDsInPolygon collapses the polygon query to the list of location ids.
func (s *LocationStore) GetIDsInPolygon(ctx context.Context, bounds []types.LatLng) ([]int64, error) {
	polygon, err := polygonText(bounds)
	if err != nil {
		return nil, err
	}

	rs, err := s.session.ExecuteIter(ctx, selectLocationIDsInPolygon, polygon)
	if err != nil {
		return nil, err
	}
	return db.ScalarLongs(rs, "id"), nil
}

// GetSortedByDistance returns locations ordered by great-circle distance to
// the reference point. The reference is bound as (lat, lat, lon), matching
// the order the distance expression repeats it.
func (s *LocationStore) GetSortedByDistance(ctx context.Context, latitude, longitude float64, p *search.Pagination) ([]types.Location, int64, error) {
	start, length := p.LimitParams()
	params := db.NewParams().
		SetDouble(latitude).
		SetDouble(latitude).
		SetDouble(longitude).
		SetInt(start).
		SetInt(length)

	rs, err := s.session.ExecuteIter(ctx, selectLocationsByDistance, params.Values()...)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.fetchTotal(ctx, countLocationsWithCoordinates, nil, p)
	if err != nil {
		return nil, 0, err
	}

	return parseLocations(rs), total, nil
}

// polygonText encodes the client-supplied vertices as a WKT polygon,
// closing the ring when the client didn't.
func polygonText(bounds []types.LatLng) (string, error) {
	if len(bounds) < 3 {
		return "", types.NewInvalidArgumentError("a polygon requires at least three points")
	}

	ring := make(orb.Ring, 0, len(bounds)+1)
	for _, point := range bounds {
		ring = append(ring, orb.Point{point.Longitude, point.Latitude})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}

	return wkt.MarshalString(orb.Polygon{ring}), nil
}

func parseLocations(rs db.ResultSet) []types.Location {
	rows := rs.Values()
	out := make([]types.Location, 0, len(rows))
	for _, row := range rows {
		location := types.Location{
			ID:        longVal(row, "id"),
			SiteName:  stringVal(row, "site_name"),
			Region:    stringVal(row, "region"),
			State:     stringVal(row, "state"),
			Latitude:  doublePtr(row, "latitude"),
			Longitude: doublePtr(row, "longitude"),
			Elevation: doublePtr(row, "elevation"),
			Country:   stringVal(row, "country"),
		}
		if d := doublePtr(row, "distance"); d != nil {
			location.Distance = d
		}
		out = append(out, location)
	}
	return out
}
