package store

import (
	"context"

	"github.com/germplasm-hub/data-api/config"
	"github.com/germplasm-hub/data-api/db"
	"github.com/germplasm-hub/data-api/search"
	"github.com/germplasm-hub/data-api/types"
)

// DatasetColumns is the allow-list of filterable/sortable dataset columns.
var DatasetColumns = []string{
	"datasets.id",
	"datasets.name",
	"datasets.description",
	"datasets.contact",
	"datasets.state",
	"datasets.date_start",
	"datasets.date_end",
	"licenses.name",
	"licenses.description",
	"dataset_meta.data_objects",
	"dataset_meta.data_points",
}

// DatasetExportColumns is the column order of the dataset export stream.
var DatasetExportColumns = []string{
	"dataset_id",
	"dataset_name",
	"dataset_description",
	"dataset_contact",
	"license_name",
	"dataset_date_start",
	"dataset_date_end",
	"data_objects",
	"data_points",
}

const datasetJoins = "datasets" +
	" LEFT JOIN dataset_meta ON dataset_meta.dataset_id = datasets.id" +
	" LEFT JOIN licenses ON licenses.id = datasets.license_id"

const datasetColumnsSQL = "datasets.id, datasets.name, datasets.description, datasets.contact," +
	" datasets.state, datasets.created_by, datasets.license_id, licenses.name AS license_name," +
	" datasets.is_external, datasets.date_start, datasets.date_end," +
	" COALESCE(dataset_meta.data_objects, 0) AS data_objects," +
	" COALESCE(dataset_meta.data_points, 0) AS data_points"

const (
	selectDatasets = "SELECT " + datasetColumnsSQL + " FROM " + datasetJoins +
		"{{FILTER}}%s AND datasets.is_external = ?%s OFFSET ? LIMIT ?"

	countDatasets = "SELECT COUNT(1) AS total FROM " + datasetJoins +
		"{{FILTER}}%s AND datasets.is_external = ?%s"

	selectDatasetsExport = "SELECT datasets.id AS dataset_id, datasets.name AS dataset_name," +
		" datasets.description AS dataset_description, datasets.contact AS dataset_contact," +
		" licenses.name AS license_name, datasets.date_start AS dataset_date_start," +
		" datasets.date_end AS dataset_date_end," +
		" COALESCE(dataset_meta.data_objects, 0) AS data_objects," +
		" COALESCE(dataset_meta.data_points, 0) AS data_points" +
		" FROM " + datasetJoins +
		"{{FILTER}}%s AND datasets.is_external = ?%s OFFSET ? LIMIT ?"

	selectDatasetsForAccession = "SELECT " + datasetColumnsSQL + " FROM " + datasetJoins +
		" WHERE %s AND (EXISTS (SELECT 1 FROM phenotype_data WHERE phenotype_data.dataset_id = datasets.id AND phenotype_data.accession_id = ?)" +
		" OR EXISTS (SELECT 1 FROM compound_data WHERE compound_data.dataset_id = datasets.id AND compound_data.accession_id = ?)" +
		" OR EXISTS (SELECT 1 FROM dataset_members WHERE dataset_members.dataset_id = datasets.id AND dataset_members.member_type = 2 AND dataset_members.foreign_id = ?))" +
		" AND datasets.is_external = ?%s OFFSET ? LIMIT ?"

	selectDatasetsForMarker = "SELECT " + datasetColumnsSQL + " FROM " + datasetJoins +
		" WHERE %s AND EXISTS (SELECT 1 FROM dataset_members WHERE dataset_members.dataset_id = datasets.id AND dataset_members.member_type = 1 AND dataset_members.foreign_id = ?)" +
		" AND datasets.is_external = ?%s OFFSET ? LIMIT ?"

	selectDatasetsUnacceptedLicense = "SELECT " + datasetColumnsSQL + " FROM " + datasetJoins +
		"{{FILTER}}%s AND licenses.id IS NOT NULL" +
		" AND NOT EXISTS (SELECT 1 FROM license_logs WHERE license_logs.license_id = licenses.id AND license_logs.user_id = ?)" +
		" AND datasets.is_external = ?%s OFFSET ? LIMIT ?"

	selectForUserBase = "SELECT " + datasetColumnsSQL + " FROM " + datasetJoins +
		" WHERE datasets.is_external = false"

	selectAcceptedLicenses = "SELECT license_logs.license_id FROM license_logs WHERE license_logs.user_id = ?"

	insertLicenseLog = "INSERT INTO license_logs (license_id, user_id, accepted_on)" +
		" VALUES (?, ?, NOW()) ON CONFLICT DO NOTHING"
)

// Permission bit fragments spliced into dataset queries. The regular-user
// predicate repeats the user id three times; permissionBits returns the
// matching parameter list so the fragment and its bindings cannot drift
// apart.
const (
	datasetBitsAdmin  = "1=1"
	datasetBitsPublic = "(datasets.state = 'public')"

	datasetBitsRegular = "(datasets.state = 'public'" +
		" OR (datasets.state = 'private' AND datasets.created_by = ?)" +
		" OR EXISTS (SELECT 1 FROM dataset_permissions WHERE dataset_permissions.user_id = ? AND dataset_permissions.dataset_id = datasets.id)" +
		" OR EXISTS (SELECT 1 FROM dataset_permissions" +
		" LEFT JOIN user_group_members ON user_group_members.user_group_id = dataset_permissions.group_id" +
		" WHERE user_group_members.user_id = ? AND dataset_permissions.dataset_id = datasets.id))"
)

// DatasetStore resolves dataset visibility per caller and runs the filtered
// dataset queries.
type DatasetStore struct {
	baseStore
}

func NewDatasetStore(session db.Session, cfg config.Config) *DatasetStore {
	return &DatasetStore{baseStore: newBaseStore(session, cfg)}
}

// permissionBits returns the visibility predicate for the caller together
// with its exact parameter list. With authentication enabled a caller must
// be establishable; an unresolved user fails rather than silently matching
// nothing.
func (s *DatasetStore) permissionBits(user *types.UserAuth) (string, []interface{}, error) {
	if !s.cfg.UseAuthentication() {
		return datasetBitsPublic, nil, nil
	}
	if user == nil || user.ID == nil {
		return "", nil, types.NewInsufficientPermissionsError()
	}
	if user.IsAdmin {
		return datasetBitsAdmin, nil, nil
	}
	id := *user.ID
	return datasetBitsRegular, []interface{}{id, id, id}, nil
}

// GetAllForFilter returns the page of visible datasets matching the filter,
// plus the total match count.
func (s *DatasetStore) GetAllForFilter(ctx context.Context, user *types.UserAuth, filter *search.Query, p *search.Pagination) ([]types.Dataset, int64, error) {
	if err := p.UpdateSortColumn(DatasetColumns, "datasets.id"); err != nil {
		return nil, 0, err
	}

	bits, bitParams, err := s.permissionBits(user)
	if err != nil {
		return nil, 0, err
	}

	query, filterParams, err := search.Compile(filter, formatted(selectDatasets, bits, p.SortQuery()), DatasetColumns)
	if err != nil {
		return nil, 0, err
	}

	start, length := p.LimitParams()
	params := db.NewParams().
		Add(filterParams...).
		Add(bitParams...).
		SetBool(false).
		SetInt(start).
		SetInt(length)

	rs, err := s.session.ExecuteIter(ctx, query, params.Values()...)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countFilterParams, err := search.Compile(filter, formatted(countDatasets, bits, ""), DatasetColumns)
	if err != nil {
		return nil, 0, err
	}
	countParams := db.NewParams().Add(countFilterParams...).Add(bitParams...).SetBool(false)
	total, err := s.fetchTotal(ctx, countQuery, countParams.Values(), p)
	if err != nil {
		return nil, 0, err
	}

	return parseDatasets(rs), total, nil
}

// StreamForFilter opens a row-streaming export of the visible datasets
// matching the filter. Rows are handed to fn one at a time off a
// forward-only cursor.
func (s *DatasetStore) StreamForFilter(ctx context.Context, user *types.UserAuth, filter *search.Query, p *search.Pagination, fn func(db.Row) error) error {
	if err := p.UpdateSortColumn(DatasetColumns, "datasets.id"); err != nil {
		return err
	}

	bits, bitParams, err := s.permissionBits(user)
	if err != nil {
		return err
	}

	query, filterParams, err := search.Compile(filter, formatted(selectDatasetsExport, bits, p.SortQuery()), DatasetColumns)
	if err != nil {
		return err
	}

	start, length := p.LimitParams()
	params := db.NewParams().
		Add(filterParams...).
		Add(bitParams...).
		SetBool(false).
		SetInt(start).
		SetInt(length)

	return s.session.ExecuteStream(ctx, query, fn, params.Values()...)
}

// GetAllForAccession returns the visible datasets the accession contributed
// data to. The accession id is bound once per EXISTS sub-query.
func (s *DatasetStore) GetAllForAccession(ctx context.Context, user *types.UserAuth, accessionID int64, p *search.Pagination) ([]types.Dataset, error) {
	if err := p.UpdateSortColumn(DatasetColumns, "datasets.id"); err != nil {
		return nil, err
	}

	bits, bitParams, err := s.permissionBits(user)
	if err != nil {
		return nil, err
	}

	query := formatted(selectDatasetsForAccession, bits, p.SortQuery())
	start, length := p.LimitParams()
	params := db.NewParams().
		Add(bitParams...).
		SetLong(accessionID).
		SetLong(accessionID).
		SetLong(accessionID).
		SetBool(false).
		SetInt(start).
		SetInt(length)

	rs, err := s.session.ExecuteIter(ctx, query, params.Values()...)
	if err != nil {
		return nil, err
	}
	return parseDatasets(rs), nil
}

// GetAllForMarker returns the visible datasets the marker is a member of.
func (s *DatasetStore) GetAllForMarker(ctx context.Context, user *types.UserAuth, markerID int64, p *search.Pagination) ([]types.Dataset, error) {
	if err := p.UpdateSortColumn(DatasetColumns, "datasets.id"); err != nil {
		return nil, err
	}

	bits, bitParams, err := s.permissionBits(user)
	if err != nil {
		return nil, err
	}

	query := formatted(selectDatasetsForMarker, bits, p.SortQuery())
	start, length := p.LimitParams()
	params := db.NewParams().
		Add(bitParams...).
		SetLong(markerID).
		SetBool(false).
		SetInt(start).
		SetInt(length)

	rs, err := s.session.ExecuteIter(ctx, query, params.Values()...)
	if err != nil {
		return nil, err
	}
	return parseDatasets(rs), nil
}

// GetAllWithUnacceptedLicense returns the visible datasets whose license the
// caller has not yet accepted. Requires an establishable caller since the
// acceptance log is keyed by user id.
func (s *DatasetStore) GetAllWithUnacceptedLicense(ctx context.Context, user *types.UserAuth, filter *search.Query, p *search.Pagination) ([]types.Dataset, error) {
	if user == nil || user.ID == nil {
		return nil, types.NewInsufficientPermissionsError()
	}

	if err := p.UpdateSortColumn(DatasetColumns, "datasets.id"); err != nil {
		return nil, err
	}

	bits, bitParams, err := s.permissionBits(user)
	if err != nil {
		return nil, err
	}

	query, filterParams, err := search.Compile(filter, formatted(selectDatasetsUnacceptedLicense, bits, p.SortQuery()), DatasetColumns)
	if err != nil {
		return nil, err
	}

	start, length := p.LimitParams()
	params := db.NewParams().
		Add(filterParams...).
		Add(bitParams...).
		SetLong(*user.ID).
		SetBool(false).
		SetInt(start).
		SetInt(length)

	rs, err := s.session.ExecuteIter(ctx, query, params.Values()...)
	if err != nil {
		return nil, err
	}
	return parseDatasets(rs), nil
}

// GetForUser returns every dataset visible to the caller. With checkLicense
// set, a dataset carrying a license is dropped unless the caller has
// recorded acceptance: through the license log with authentication enabled,
// through the session cache otherwise.
func (s *DatasetStore) GetForUser(ctx context.Context, user *types.UserAuth, checkLicense bool) ([]types.Dataset, error) {
	useAuth := s.cfg.UseAuthentication()

	var query string
	params := db.NewParams()

	if !useAuth {
		query = selectForUserBase + " AND " + datasetBitsPublic
	} else {
		if user == nil || user.ID == nil {
			return nil, types.NewInsufficientPermissionsError()
		}
		if user.IsAdmin {
			query = selectForUserBase
		} else {
			query = selectForUserBase + " AND " + datasetBitsRegular
			params.SetLong(*user.ID).SetLong(*user.ID).SetLong(*user.ID)
		}
	}

	rs, err := s.session.ExecuteIter(ctx, query, params.Values()...)
	if err != nil {
		return nil, err
	}
	datasets := parseDatasets(rs)

	if !checkLicense {
		return datasets, nil
	}

	var accepted map[int64]bool
	if useAuth {
		accepted, err = s.acceptedLicenseIDs(ctx, *user.ID)
		if err != nil {
			return nil, err
		}
	}

	kept := make([]types.Dataset, 0, len(datasets))
	for _, d := range datasets {
		switch {
		case d.LicenseID == nil:
			kept = append(kept, d)
		case useAuth && accepted[*d.LicenseID]:
			kept = append(kept, d)
		case !useAuth && user.HasAcceptedInSession(*d.LicenseID):
			kept = append(kept, d)
		}
	}
	return kept, nil
}

// RestrictToVisible returns the subset of the candidate ids the caller may
// see, preserving the input order.
func (s *DatasetStore) RestrictToVisible(ctx context.Context, user *types.UserAuth, candidateIDs []int64) ([]int64, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}

	visible, err := s.GetForUser(ctx, user, false)
	if err != nil {
		return nil, err
	}

	visibleIDs := make(map[int64]bool, len(visible))
	for _, d := range visible {
		visibleIDs[d.ID] = true
	}

	kept := make([]int64, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		if visibleIDs[id] {
			kept = append(kept, id)
		}
	}
	return kept, nil
}

// UserHasAccess reports whether the caller may see the given dataset.
func (s *DatasetStore) UserHasAccess(ctx context.Context, user *types.UserAuth, datasetID int64) (bool, error) {
	kept, err := s.RestrictToVisible(ctx, user, []int64{datasetID})
	if err != nil {
		return false, err
	}
	return len(kept) == 1, nil
}

// AcceptLicense records license acceptance in the license log. Only used
// with authentication enabled; anonymous acceptance goes to the session
// cache instead.
func (s *DatasetStore) AcceptLicense(ctx context.Context, user *types.UserAuth, licenseID int64) error {
	if s.cfg.ReadOnly() {
		return types.NewReadOnlyModeError()
	}
	if user == nil || user.ID == nil {
		return types.NewInsufficientPermissionsError()
	}
	return s.session.Execute(ctx, insertLicenseLog, licenseID, *user.ID)
}

func (s *DatasetStore) acceptedLicenseIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	rs, err := s.session.ExecuteIter(ctx, selectAcceptedLicenses, userID)
	if err != nil {
		return nil, err
	}

	accepted := make(map[int64]bool)
	for _, id := range db.ScalarLongs(rs, "license_id") {
		accepted[id] = true
	}
	return accepted, nil
}

func parseDatasets(rs db.ResultSet) []types.Dataset {
	rows := rs.Values()
	out := make([]types.Dataset, 0, len(rows))
	for _, row := range rows {
		out = append(out, types.Dataset{
			ID:          longVal(row, "id"),
			Name:        stringVal(row, "name"),
			Description: stringVal(row, "description"),
			Contact:     stringVal(row, "contact"),
			State:       types.DatasetState(stringVal(row, "state")),
			CreatedBy:   longPtr(row, "created_by"),
			LicenseID:   longPtr(row, "license_id"),
			LicenseName: stringVal(row, "license_name"),
			IsExternal:  boolVal(row, "is_external"),
			DateStart:   timePtr(row, "date_start"),
			DateEnd:     timePtr(row, "date_end"),
			DataObjects: longVal(row, "data_objects"),
			DataPoints:  longVal(row, "data_points"),
		})
	}
	return out
}
