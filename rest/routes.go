package rest

import (
	"net/http"
	"path"

	"github.com/germplasm-hub/data-api/auth"
	"github.com/germplasm-hub/data-api/config"
	"github.com/germplasm-hub/data-api/db"
	"github.com/germplasm-hub/data-api/store"
	"github.com/germplasm-hub/data-api/types"
)

type RouteGenerator struct {
	session  db.Session
	licenses *auth.SessionLicenses
	config   config.Config
}

func NewRouteGenerator(session db.Session, licenses *auth.SessionLicenses, cfg config.Config) *RouteGenerator {
	return &RouteGenerator{
		session:  session,
		licenses: licenses,
		config:   cfg,
	}
}

// Routes returns a slice of all the endpoint routes under the given prefix.
func (g *RouteGenerator) Routes(prefix string) []types.Route {
	rl := &routeList{
		datasets:   store.NewDatasetStore(g.session, g.config),
		groups:     store.NewGroupStore(g.session, g.config),
		locations:  store.NewLocationStore(g.session, g.config),
		accessions: store.NewAccessionStore(g.session, g.config),
		licenses:   g.licenses,
		cfg:        g.config,
		logger:     g.config.Logger(),
	}

	routes := []types.Route{
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "datasets"),
			Handler: http.HandlerFunc(rl.GetDatasets),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "datasets/export"),
			Handler: http.HandlerFunc(rl.ExportDatasets),
		},
		{
			Method:  http.MethodGet,
			Pattern: path.Join(prefix, "datasets/for-accession/:accessionId"),
			Handler: http.HandlerFunc(rl.GetDatasetsForAccession),
		},
		{
			Method:  http.MethodGet,
			Pattern: path.Join(prefix, "datasets/for-marker/:markerId"),
			Handler: http.HandlerFunc(rl.GetDatasetsForMarker),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "datasets/unaccepted-licenses"),
			Handler: http.HandlerFunc(rl.GetDatasetsWithUnacceptedLicense),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "licenses/:licenseId/accept"),
			Handler: http.HandlerFunc(rl.AcceptLicense),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "groups/query"),
			Handler: http.HandlerFunc(rl.GetGroups),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "groups"),
			Handler: http.HandlerFunc(rl.CreateGroup),
		},
		{
			Method:  http.MethodDelete,
			Pattern: path.Join(prefix, "groups"),
			Handler: http.HandlerFunc(rl.DeleteGroups),
		},
		{
			Method:  http.MethodPatch,
			Pattern: path.Join(prefix, "groups/:groupId"),
			Handler: http.HandlerFunc(rl.UpdateGroup),
		},
		{
			Method:  http.MethodGet,
			Pattern: path.Join(prefix, "groups/:groupId/members"),
			Handler: http.HandlerFunc(rl.GetGroupMembers),
		},
		{
			Method:  http.MethodPut,
			Pattern: path.Join(prefix, "groups/:groupId/members"),
			Handler: http.HandlerFunc(rl.AddGroupMembers),
		},
		{
			Method:  http.MethodDelete,
			Pattern: path.Join(prefix, "groups/:groupId/members"),
			Handler: http.HandlerFunc(rl.DeleteGroupMembers),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "locations"),
			Handler: http.HandlerFunc(rl.GetLocations),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "locations/export"),
			Handler: http.HandlerFunc(rl.ExportLocations),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "locations/polygon"),
			Handler: http.HandlerFunc(rl.GetLocationsInPolygon),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "locations/polygon/ids"),
			Handler: http.HandlerFunc(rl.GetLocationIDsInPolygon),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "locations/distance"),
			Handler: http.HandlerFunc(rl.GetLocationsByDistance),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "accessions"),
			Handler: http.HandlerFunc(rl.GetAccessions),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "accessions/ids"),
			Handler: http.HandlerFunc(rl.GetAccessionIDs),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "accessions/names"),
			Handler: http.HandlerFunc(rl.GetAccessionNames),
		},
		{
			Method:  http.MethodPost,
			Pattern: path.Join(prefix, "accessions/export"),
			Handler: http.HandlerFunc(rl.ExportAccessions),
		},
	}
	return routes
}
