package store

import (
	"context"
	"fmt"

	"github.com/germplasm-hub/data-api/config"
	"github.com/germplasm-hub/data-api/db"
	"github.com/germplasm-hub/data-api/search"
	"github.com/germplasm-hub/data-api/types"
)

// AccessionColumns is the allow-list of filterable/sortable accession columns.
var AccessionColumns = []string{
	"accessions.id",
	"accessions.name",
	"accessions.number",
	"accessions.puid",
	"taxonomies.genus",
	"taxonomies.species",
	"countries.name",
}

// AccessionExportColumns is the column order of the accession export stream.
var AccessionExportColumns = []string{
	"accession_id",
	"accession_name",
	"accession_number",
	"puid",
	"taxonomy",
	"country",
}

const accessionJoins = "accessions" +
	" LEFT JOIN taxonomies ON taxonomies.id = accessions.taxonomy_id" +
	" LEFT JOIN countries ON countries.id = accessions.country_id"

const accessionColumnsSQL = "accessions.id, accessions.name, accessions.number," +
	" accessions.puid, CONCAT(taxonomies.genus, ' ', taxonomies.species) AS taxonomy," +
	" countries.name AS country"

// Accession queries carry no permission bits; their single printf slot is
// the ORDER BY fragment.
const (
	selectAccessions = "SELECT " + accessionColumnsSQL + " FROM " + accessionJoins +
		"{{FILTER}}%s OFFSET ? LIMIT ?"

	countAccessions = "SELECT COUNT(1) AS total FROM " + accessionJoins + "{{FILTER}}"

	selectAccessionIDs = "SELECT accessions.id FROM " + accessionJoins + "{{FILTER}}"

	selectAccessionNames = "SELECT accessions.name FROM " + accessionJoins + "{{FILTER}}"

	selectAccessionsExport = "SELECT accessions.id AS accession_id," +
		" accessions.name AS accession_name, accessions.number AS accession_number," +
		" accessions.puid AS puid, CONCAT(taxonomies.genus, ' ', taxonomies.species) AS taxonomy," +
		" countries.name AS country FROM " + accessionJoins +
		"{{FILTER}}%s OFFSET ? LIMIT ?"
)

// AccessionStore runs the filtered accession queries.
type AccessionStore struct {
	baseStore
}

func NewAccessionStore(session db.Session, cfg config.Config) *AccessionStore {
	return &AccessionStore{baseStore: newBaseStore(session, cfg)}
}

// GetAllForFilter returns the page of accessions matching the filter, plus
// the total match count.
func (s *AccessionStore) GetAllForFilter(ctx context.Context, filter *search.Query, p *search.Pagination) ([]types.Accession, int64, error) {
	if err := p.UpdateSortColumn(AccessionColumns, "accessions.name"); err != nil {
		return nil, 0, err
	}

	query, filterParams, err := search.Compile(filter, fmt.Sprintf(selectAccessions, p.SortQuery()), AccessionColumns)
	if err != nil {
		return nil, 0, err
	}

	start, length := p.LimitParams()
	params := db.NewParams().Add(filterParams...).SetInt(start).SetInt(length)

	rs, err := s.session.ExecuteIter(ctx, query, params.Values()...)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countFilterParams, err := search.Compile(filter, countAccessions, AccessionColumns)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.fetchTotal(ctx, countQuery, countFilterParams, p)
	if err != nil {
		return nil, 0, err
	}

	return parseAccessions(rs), total, nil
}

// GetIDsForFilter collapses the filtered query to the list of accession ids.
func (s *AccessionStore) GetIDsForFilter(ctx context.Context, filter *search.Query) ([]int64, error) {
	query, filterParams, err := search.Compile(filter, selectAccessionIDs, AccessionColumns)
	if err != nil {
		return nil, err
	}

	rs, err := s.session.ExecuteIter(ctx, query, filterParams...)
	if err != nil {
		return nil, err
	}
	return db.ScalarLongs(rs, "id"), nil
}

// GetNamesForFilter collapses the filtered query to the list of accession
// names.
func (s *AccessionStore) GetNamesForFilter(ctx context.Context, filter *search.Query) ([]string, error) {
	query, filterParams, err := search.Compile(filter, selectAccessionNames, AccessionColumns)
	if err != nil {
		return nil, err
	}

	rs, err := s.session.ExecuteIter(ctx, query, filterParams...)
	if err != nil {
		return nil, err
	}
	return db.ScalarStrings(rs, "name"), nil
}

// StreamForFilter opens a row-streaming export of the accessions matching
// the filter.
func (s *AccessionStore) StreamForFilter(ctx context.Context, filter *search.Query, p *search.Pagination, fn func(db.Row) error) error {
	if err := p.UpdateSortColumn(AccessionColumns, "accessions.name"); err != nil {
		return err
	}

	query, filterParams, err := search.Compile(filter, fmt.Sprintf(selectAccessionsExport, p.SortQuery()), AccessionColumns)
	if err != nil {
		return err
	}

	start, length := p.LimitParams()
	params := db.NewParams().Add(filterParams...).SetInt(start).SetInt(length)

	return s.session.ExecuteStream(ctx, query, fn, params.Values()...)
}

func parseAccessions(rs db.ResultSet) []types.Accession {
	rows := rs.Values()
	out := make([]types.Accession, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.Accession{
			ID:       longVal(row, "id"),
			Name:     stringVal(row, "name"),
			Number:   stringVal(row, "number"),
			PUID:     stringVal(row, "puid"),
			Taxonomy: stringVal(row, "taxonomy"),
			Country:  stringVal(row, "country"),
		})
	}
	return out
}
