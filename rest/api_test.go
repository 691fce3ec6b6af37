package rest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/germplasm-hub/data-api/auth"
	"github.com/germplasm-hub/data-api/db"
	"github.com/germplasm-hub/data-api/store"
	"github.com/germplasm-hub/data-api/types"
)

func testRouter(sessionMock *db.SessionMock, useAuth bool, licenses *auth.SessionLicenses) *httprouter.Router {
	cfg := middlewareConfig(useAuth, "secret")
	generator := NewRouteGenerator(sessionMock, licenses, cfg)

	router := httprouter.New()
	for _, route := range generator.Routes("/api") {
		router.Handler(route.Method, route.Pattern, route.Handler)
	}
	return router
}

func TestGetAccessionsEndpoint(t *testing.T) {
	sessionMock := db.NewSessionMock()
	sessionMock.On("ExecuteIter", mock.Anything, mock.Anything).
		Return(db.NewResultSet(db.Row{
			"id":     int64(1),
			"name":   "ICC 4958",
			"number": "ACC-1",
		}), nil).Once()
	sessionMock.On("ExecuteIter", mock.Anything, mock.Anything).
		Return(db.NewResultSet(db.Row{"total": int64(1)}), nil).Once()

	router := testRouter(sessionMock, false, auth.NewSessionLicenses())

	body := `{"filter": {"conditions": [{"column": "accessions.name", "comparator": "like", "values": ["ICC"]}]}, "page": {"start": 0, "length": 10}}`
	r := httptest.NewRequest(http.MethodPost, "/api/accessions", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ICC 4958")
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestGetAccessionsRejectsUnknownColumn(t *testing.T) {
	router := testRouter(db.NewSessionMock(), false, auth.NewSessionLicenses())

	body := `{"filter": {"conditions": [{"column": "users.password", "comparator": "equals", "values": ["x"]}]}}`
	r := httptest.NewRequest(http.MethodPost, "/api/accessions", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAccessionsRejectsBadPayload(t *testing.T) {
	router := testRouter(db.NewSessionMock(), false, auth.NewSessionLicenses())

	r := httptest.NewRequest(http.MethodPost, "/api/accessions", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAcceptLicenseAnonymousUsesSessionCache(t *testing.T) {
	licenses := auth.NewSessionLicenses()
	sessionMock := db.NewSessionMock()

	cfg := middlewareConfig(false, "")
	generator := NewRouteGenerator(sessionMock, licenses, cfg)
	router := httprouter.New()
	for _, route := range generator.Routes("/api") {
		router.Handler(route.Method, route.Pattern, route.Handler)
	}
	handler := NewAuthHandler(cfg, licenses, router)

	r := httptest.NewRequest(http.MethodPost, "/api/licenses/7/accept", nil)
	r.Header.Set("X-Session-Id", "session-1")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, licenses.Accepted("session-1")[7])
	sessionMock.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestAcceptLicenseRejectsNonNumericID(t *testing.T) {
	router := testRouter(db.NewSessionMock(), false, auth.NewSessionLicenses())

	r := httptest.NewRequest(http.MethodPost, "/api/licenses/seven/accept", nil)
	r = r.WithContext(auth.WithContextUser(r.Context(), &types.UserAuth{SessionID: "s"}))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportLocationsStreamsCSV(t *testing.T) {
	sessionMock := db.NewSessionMock()
	sessionMock.On("ExecuteStream", mock.Anything, mock.Anything).
		Return([]db.Row{
			{
				"location_id": int64(1),
				"site_name":   "Dahlem",
				"country":     "Germany",
			},
		}, nil)

	router := testRouter(sessionMock, false, auth.NewSessionLicenses())

	r := httptest.NewRequest(http.MethodPost, "/api/locations/export", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=UTF-8", w.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(store.LocationExportColumns, ","), lines[0])
	assert.Contains(t, lines[1], "Dahlem")
	assert.Contains(t, lines[1], "Germany")
}

func TestCreateGroupRefusedWithoutAuth(t *testing.T) {
	licenses := auth.NewSessionLicenses()
	cfg := middlewareConfig(false, "")
	generator := NewRouteGenerator(db.NewSessionMock(), licenses, cfg)
	router := httprouter.New()
	for _, route := range generator.Routes("/api") {
		router.Handler(route.Method, route.Pattern, route.Handler)
	}
	handler := NewAuthHandler(cfg, licenses, router)

	body := `{"name": "favorites", "groupTypeId": 1}`
	r := httptest.NewRequest(http.MethodPost, "/api/groups", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRoutePatternsAreUniquePerMethod(t *testing.T) {
	generator := NewRouteGenerator(db.NewSessionMock(), auth.NewSessionLicenses(), middlewareConfig(false, ""))

	seen := map[string]bool{}
	for _, route := range generator.Routes("/api") {
		key := route.Method + " " + route.Pattern
		assert.False(t, seen[key], key)
		seen[key] = true
	}
}
