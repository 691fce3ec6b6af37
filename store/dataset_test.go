package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/germplasm-hub/data-api/config"
	"github.com/germplasm-hub/data-api/db"
	"github.com/germplasm-hub/data-api/log"
	"github.com/germplasm-hub/data-api/search"
	"github.com/germplasm-hub/data-api/types"
)

func testConfig(useAuth, readOnly bool) *config.ConfigMock {
	cfg := config.NewConfigMock()
	cfg.On("UseAuthentication").Return(useAuth)
	cfg.On("ReadOnly").Return(readOnly)
	cfg.On("JWTSecret").Return("")
	cfg.On("Logger").Return(log.Logger(log.NewNopLogger()))
	return cfg
}

func userWithID(id int64) *types.UserAuth {
	return &types.UserAuth{ID: &id}
}

func adminWithID(id int64) *types.UserAuth {
	return &types.UserAuth{ID: &id, IsAdmin: true}
}

// resolve the filled-in template the same way the store does, with the
// neutral predicate in place of the filter placeholder.
func filled(template, bits, sort string) string {
	return strings.Replace(formatted(template, bits, sort), search.FilterPlaceholder, " WHERE 1=1", 1)
}

func TestDatasetPermissionBits(t *testing.T) {
	tests := []struct {
		name       string
		useAuth    bool
		user       *types.UserAuth
		wantBits   string
		wantParams []interface{}
		wantErr    bool
	}{
		{
			name:     "auth disabled serves public data only",
			useAuth:  false,
			user:     nil,
			wantBits: datasetBitsPublic,
		},
		{
			name:    "auth enabled refuses an unresolved caller",
			useAuth: true,
			user:    nil,
			wantErr: true,
		},
		{
			name:    "auth enabled refuses a caller without id",
			useAuth: true,
			user:    &types.UserAuth{},
			wantErr: true,
		},
		{
			name:     "admin sees everything",
			useAuth:  true,
			user:     adminWithID(1),
			wantBits: datasetBitsAdmin,
		},
		{
			name:       "regular user binds the three-way predicate",
			useAuth:    true,
			user:       userWithID(42),
			wantBits:   datasetBitsRegular,
			wantParams: []interface{}{int64(42), int64(42), int64(42)},
		},
	}

	for _, item := range tests {
		t.Run(item.name, func(t *testing.T) {
			store := NewDatasetStore(db.NewSessionMock(), testConfig(item.useAuth, false))
			bits, params, err := store.permissionBits(item.user)
			if item.wantErr {
				require.Error(t, err)
				assert.True(t, types.IsInsufficientPermissions(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, item.wantBits, bits)
			assert.Equal(t, item.wantParams, params)
		})
	}
}

func TestDatasetGetAllForFilterPublicOnly(t *testing.T) {
	sessionMock := db.NewSessionMock()
	store := NewDatasetStore(sessionMock, testConfig(false, false))

	query := filled(selectDatasets, datasetBitsPublic, " ORDER BY datasets.id ASC")
	queryParams := []interface{}{false, 0, search.UnboundedLength}
	sessionMock.On("ExecuteIter", query, queryParams).
		Return(db.NewResultSet(db.Row{"id": int64(1), "name": "trials 2024", "state": "public"}), nil)

	countQuery := filled(countDatasets, datasetBitsPublic, "")
	sessionMock.On("ExecuteIter", countQuery, []interface{}{false}).
		Return(db.NewResultSet(db.Row{"total": int64(1)}), nil)

	p := search.DefaultPagination()
	datasets, total, err := store.GetAllForFilter(context.Background(), nil, &search.Query{}, p)
	require.NoError(t, err)

	assert.Len(t, datasets, 1)
	assert.Equal(t, "trials 2024", datasets[0].Name)
	assert.Equal(t, int64(1), total)
	sessionMock.AssertCalled(t, "ExecuteIter", query, queryParams)
	sessionMock.AssertCalled(t, "ExecuteIter", countQuery, []interface{}{false})
}

func TestDatasetGetAllForFilterRegularUserBindingOrder(t *testing.T) {
	sessionMock := db.NewSessionMock()
	store := NewDatasetStore(sessionMock, testConfig(true, false))

	filter := &search.Query{
		Conditions: []search.Condition{
			{Column: "datasets.name", Comparator: search.Like, Values: []string{"pea"}},
		},
	}

	template := formatted(selectDatasets, datasetBitsRegular, " ORDER BY datasets.id ASC")
	query := strings.Replace(template, search.FilterPlaceholder, " WHERE (datasets.name LIKE ?)", 1)
	queryParams := []interface{}{"%pea%", int64(42), int64(42), int64(42), false, 0, search.UnboundedLength}
	sessionMock.On("ExecuteIter", query, queryParams).Return(db.NewResultSet(), nil)

	countTemplate := formatted(countDatasets, datasetBitsRegular, "")
	countQuery := strings.Replace(countTemplate, search.FilterPlaceholder, " WHERE (datasets.name LIKE ?)", 1)
	countParams := []interface{}{"%pea%", int64(42), int64(42), int64(42), false}
	sessionMock.On("ExecuteIter", countQuery, countParams).
		Return(db.NewResultSet(db.Row{"total": int64(0)}), nil)

	_, _, err := store.GetAllForFilter(context.Background(), userWithID(42), filter, search.DefaultPagination())
	require.NoError(t, err)

	sessionMock.AssertCalled(t, "ExecuteIter", query, queryParams)
	sessionMock.AssertCalled(t, "ExecuteIter", countQuery, countParams)
}

func TestDatasetGetAllForFilterCachedTotalSkipsCount(t *testing.T) {
	sessionMock := db.NewSessionMock()
	store := NewDatasetStore(sessionMock, testConfig(false, false))

	sessionMock.On("ExecuteIter", mock.Anything, mock.Anything).Return(db.NewResultSet(), nil)

	total := int64(250)
	p := search.DefaultPagination()
	p.ResultSize = &total

	_, got, err := store.GetAllForFilter(context.Background(), nil, &search.Query{}, p)
	require.NoError(t, err)

	assert.Equal(t, total, got)
	sessionMock.AssertNumberOfCalls(t, "ExecuteIter", 1)
}

func TestDatasetGetAllForFilterRejectsBadSortColumn(t *testing.T) {
	store := NewDatasetStore(db.NewSessionMock(), testConfig(false, false))

	p := search.DefaultPagination()
	p.SortColumn = "users.password"

	_, _, err := store.GetAllForFilter(context.Background(), nil, &search.Query{}, p)
	require.Error(t, err)
	assert.True(t, types.IsInvalidColumn(err))
}

func TestDatasetGetAllForAccessionBindsIDPerSubquery(t *testing.T) {
	sessionMock := db.NewSessionMock()
	store := NewDatasetStore(sessionMock, testConfig(false, false))

	query := formatted(selectDatasetsForAccession, datasetBitsPublic, " ORDER BY datasets.id ASC")
	queryParams := []interface{}{int64(77), int64(77), int64(77), false, 0, search.UnboundedLength}
	sessionMock.On("ExecuteIter", query, queryParams).Return(db.NewResultSet(), nil)

	_, err := store.GetAllForAccession(context.Background(), nil, 77, search.DefaultPagination())
	require.NoError(t, err)

	sessionMock.AssertCalled(t, "ExecuteIter", query, queryParams)
}

func TestDatasetGetAllWithUnacceptedLicenseRequiresUser(t *testing.T) {
	store := NewDatasetStore(db.NewSessionMock(), testConfig(true, false))

	_, err := store.GetAllWithUnacceptedLicense(context.Background(), nil, &search.Query{}, search.DefaultPagination())
	require.Error(t, err)
	assert.True(t, types.IsInsufficientPermissions(err))
}

func TestDatasetGetForUserLicenseGatingWithoutAuth(t *testing.T) {
	sessionMock := db.NewSessionMock()
	store := NewDatasetStore(sessionMock, testConfig(false, false))

	license7 := int64(7)
	license9 := int64(9)
	sessionMock.On("ExecuteIter", selectForUserBase+" AND "+datasetBitsPublic, []interface{}{}).
		Return(db.NewResultSet(
			db.Row{"id": int64(1), "name": "open"},
			db.Row{"id": int64(2), "name": "accepted", "license_id": license7},
			db.Row{"id": int64(3), "name": "gated", "license_id": license9},
		), nil)

	user := &types.UserAuth{
		SessionID:        "session-1",
		AcceptedLicenses: map[int64]bool{license7: true},
	}

	datasets, err := store.GetForUser(context.Background(), user, true)
	require.NoError(t, err)

	require.Len(t, datasets, 2)
	assert.Equal(t, "open", datasets[0].Name)
	assert.Equal(t, "accepted", datasets[1].Name)
}

func TestDatasetGetForUserLicenseGatingWithAuth(t *testing.T) {
	sessionMock := db.NewSessionMock()
	store := NewDatasetStore(sessionMock, testConfig(true, false))

	license7 := int64(7)
	license9 := int64(9)
	sessionMock.On("ExecuteIter", selectForUserBase+" AND "+datasetBitsRegular, []interface{}{int64(42), int64(42), int64(42)}).
		Return(db.NewResultSet(
			db.Row{"id": int64(1), "name": "open"},
			db.Row{"id": int64(2), "name": "accepted", "license_id": license7},
			db.Row{"id": int64(3), "name": "gated", "license_id": license9},
		), nil)
	sessionMock.On("ExecuteIter", selectAcceptedLicenses, []interface{}{int64(42)}).
		Return(db.NewResultSet(db.Row{"license_id": license7}), nil)

	datasets, err := store.GetForUser(context.Background(), userWithID(42), true)
	require.NoError(t, err)

	require.Len(t, datasets, 2)
	assert.Equal(t, "open", datasets[0].Name)
	assert.Equal(t, "accepted", datasets[1].Name)
}

func TestDatasetRestrictToVisiblePreservesOrder(t *testing.T) {
	sessionMock := db.NewSessionMock()
	store := NewDatasetStore(sessionMock, testConfig(false, false))

	sessionMock.On("ExecuteIter", selectForUserBase+" AND "+datasetBitsPublic, []interface{}{}).
		Return(db.NewResultSet(
			db.Row{"id": int64(5)},
			db.Row{"id": int64(3)},
			db.Row{"id": int64(9)},
		), nil)

	kept, err := store.RestrictToVisible(context.Background(), nil, []int64{9, 1, 3, 5})
	require.NoError(t, err)

	assert.Equal(t, []int64{9, 3, 5}, kept)
}

func TestDatasetAcceptLicense(t *testing.T) {
	t.Run("read-only deployment refuses", func(t *testing.T) {
		store := NewDatasetStore(db.NewSessionMock(), testConfig(true, true))
		err := store.AcceptLicense(context.Background(), userWithID(42), 7)
		require.Error(t, err)
		assert.True(t, types.IsReadOnlyMode(err))
	})

	t.Run("unresolved caller refuses", func(t *testing.T) {
		store := NewDatasetStore(db.NewSessionMock(), testConfig(true, false))
		err := store.AcceptLicense(context.Background(), nil, 7)
		require.Error(t, err)
		assert.True(t, types.IsInsufficientPermissions(err))
	})

	t.Run("acceptance is logged", func(t *testing.T) {
		sessionMock := db.NewSessionMock()
		store := NewDatasetStore(sessionMock, testConfig(true, false))
		sessionMock.On("Execute", insertLicenseLog, []interface{}{int64(7), int64(42)}).Return(nil)

		err := store.AcceptLicense(context.Background(), userWithID(42), 7)
		require.NoError(t, err)
		sessionMock.AssertCalled(t, "Execute", insertLicenseLog, []interface{}{int64(7), int64(42)})
	})
}
