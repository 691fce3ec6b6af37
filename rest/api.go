package rest

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/germplasm-hub/data-api/auth"
	"github.com/germplasm-hub/data-api/config"
	"github.com/germplasm-hub/data-api/db"
	"github.com/germplasm-hub/data-api/log"
	"github.com/germplasm-hub/data-api/search"
	"github.com/germplasm-hub/data-api/store"
	"github.com/germplasm-hub/data-api/types"
)

type routeList struct {
	datasets   *store.DatasetStore
	groups     *store.GroupStore
	locations  *store.LocationStore
	accessions *store.AccessionStore
	licenses   *auth.SessionLicenses
	cfg        config.Config
	logger     log.Logger
}

func (s *routeList) GetDatasets(w http.ResponseWriter, r *http.Request) {
	var payload FilteredRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	page := payload.Page
	datasets, total, err := s.datasets.GetAllForFilter(r.Context(), auth.ContextUser(r.Context()), payload.Filter, &page)
	if err != nil {
		s.logger.Error("unable to fetch datasets", "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, pagedResult{Data: datasets, Total: total, Start: page.Start})
}

func (s *routeList) ExportDatasets(w http.ResponseWriter, r *http.Request) {
	var payload FilteredRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	page := payload.Page
	user := auth.ContextUser(r.Context())
	err := streamCSV(w, "datasets.csv", store.DatasetExportColumns, func(fn func(db.Row) error) error {
		return s.datasets.StreamForFilter(r.Context(), user, payload.Filter, &page, fn)
	})
	if err != nil {
		s.logger.Error("unable to export datasets", "error", err)
	}
}

func (s *routeList) GetDatasetsForAccession(w http.ResponseWriter, r *http.Request) {
	accessionID, err := pathID(r, "accessionId")
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	page := queryPagination(r)
	datasets, err := s.datasets.GetAllForAccession(r.Context(), auth.ContextUser(r.Context()), accessionID, page)
	if err != nil {
		s.logger.Error("unable to fetch datasets for accession", "accession", accessionID, "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, datasets)
}

func (s *routeList) GetDatasetsForMarker(w http.ResponseWriter, r *http.Request) {
	markerID, err := pathID(r, "markerId")
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	page := queryPagination(r)
	datasets, err := s.datasets.GetAllForMarker(r.Context(), auth.ContextUser(r.Context()), markerID, page)
	if err != nil {
		s.logger.Error("unable to fetch datasets for marker", "marker", markerID, "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, datasets)
}

func (s *routeList) GetDatasetsWithUnacceptedLicense(w http.ResponseWriter, r *http.Request) {
	var payload FilteredRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	page := payload.Page
	datasets, err := s.datasets.GetAllWithUnacceptedLicense(r.Context(), auth.ContextUser(r.Context()), payload.Filter, &page)
	if err != nil {
		s.logger.Error("unable to fetch unaccepted licenses", "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, datasets)
}

// AcceptLicense records license acceptance for the caller: in the license
// log for an authenticated user, in the session cache otherwise.
func (s *routeList) AcceptLicense(w http.ResponseWriter, r *http.Request) {
	licenseID, err := pathID(r, "licenseId")
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	user := auth.ContextUser(r.Context())

	if s.cfg.UseAuthentication() {
		if err := s.datasets.AcceptLicense(r.Context(), user, licenseID); err != nil {
			s.logger.Error("unable to accept license", "license", licenseID, "error", err)
			respondWithMappedError(w, err)
			return
		}
	} else {
		if user == nil || user.SessionID == "" {
			respondWithMappedError(w, types.NewInsufficientPermissionsError())
			return
		}
		s.licenses.Accept(user.SessionID, licenseID)
	}

	RespondJSONObjectWithCode(w, http.StatusNoContent, nil)
}

func (s *routeList) GetGroups(w http.ResponseWriter, r *http.Request) {
	var payload FilteredRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	page := payload.Page
	groups, total, err := s.groups.GetAllForFilter(r.Context(), auth.ContextUser(r.Context()), payload.Filter, &page)
	if err != nil {
		s.logger.Error("unable to fetch groups", "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, pagedResult{Data: groups, Total: total, Start: page.Start})
}

func (s *routeList) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var payload GroupCreateRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	group, err := s.groups.Create(r.Context(), auth.ContextUser(r.Context()), payload.GroupTypeID, payload.Name, payload.Description)
	if err != nil {
		s.logger.Error("unable to create group", "name", payload.Name, "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusCreated, group)
}

func (s *routeList) DeleteGroups(w http.ResponseWriter, r *http.Request) {
	var payload GroupDeleteRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	if err := s.groups.Delete(r.Context(), auth.ContextUser(r.Context()), payload.IDs); err != nil {
		s.logger.Error("unable to delete groups", "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusNoContent, nil)
}

func (s *routeList) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupId")
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	var payload GroupUpdateRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	ctx := r.Context()
	user := auth.ContextUser(ctx)

	if payload.Name != nil {
		description := ""
		if payload.Description != nil {
			description = *payload.Description
		}
		if err := s.groups.Rename(ctx, user, groupID, *payload.Name, description); err != nil {
			s.logger.Error("unable to rename group", "group", groupID, "error", err)
			respondWithMappedError(w, err)
			return
		}
	}
	if payload.Visibility != nil {
		if err := s.groups.SetVisibility(ctx, user, groupID, *payload.Visibility); err != nil {
			s.logger.Error("unable to change group visibility", "group", groupID, "error", err)
			respondWithMappedError(w, err)
			return
		}
	}

	RespondJSONObjectWithCode(w, http.StatusNoContent, nil)
}

func (s *routeList) GetGroupMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupId")
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	ids, err := s.groups.GetMemberIDs(r.Context(), auth.ContextUser(r.Context()), groupID)
	if err != nil {
		s.logger.Error("unable to fetch group members", "group", groupID, "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, ids)
}

func (s *routeList) AddGroupMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupId")
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	var payload GroupMembersRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	if err := s.groups.AddMembers(r.Context(), auth.ContextUser(r.Context()), groupID, payload.IDs); err != nil {
		s.logger.Error("unable to add group members", "group", groupID, "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusNoContent, nil)
}

func (s *routeList) DeleteGroupMembers(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupId")
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	var payload GroupMembersRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	if err := s.groups.RemoveMembers(r.Context(), auth.ContextUser(r.Context()), groupID, payload.IDs); err != nil {
		s.logger.Error("unable to remove group members", "group", groupID, "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusNoContent, nil)
}

func (s *routeList) GetLocations(w http.ResponseWriter, r *http.Request) {
	var payload FilteredRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	page := payload.Page
	locations, total, err := s.locations.GetAllForFilter(r.Context(), payload.Filter, &page)
	if err != nil {
		s.logger.Error("unable to fetch locations", "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, pagedResult{Data: locations, Total: total, Start: page.Start})
}

func (s *routeList) ExportLocations(w http.ResponseWriter, r *http.Request) {
	var payload FilteredRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	page := payload.Page
	err := streamCSV(w, "locations.csv", store.LocationExportColumns, func(fn func(db.Row) error) error {
		return s.locations.StreamForFilter(r.Context(), payload.Filter, &page, fn)
	})
	if err != nil {
		s.logger.Error("unable to export locations", "error", err)
	}
}

func (s *routeList) GetLocationsInPolygon(w http.ResponseWriter, r *http.Request) {
	var payload PolygonRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	page := payload.Page
	locations, total, err := s.locations.GetInPolygon(r.Context(), payload.Points, &page)
	if err != nil {
		s.logger.Error("unable to fetch locations in polygon", "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, pagedResult{Data: locations, Total: total, Start: page.Start})
}

func (s *routeList) GetLocationIDsInPolygon(w http.ResponseWriter, r *http.Request) {
	var payload PolygonRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	ids, err := s.locations.GetIDsInPolygon(r.Context(), payload.Points)
	if err != nil {
		s.logger.Error("unable to fetch location ids in polygon", "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, ids)
}

func (s *routeList) GetLocationsByDistance(w http.ResponseWriter, r *http.Request) {
	var payload DistanceRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	page := payload.Page
	locations, total, err := s.locations.GetSortedByDistance(r.Context(), payload.Latitude, payload.Longitude, &page)
	if err != nil {
		s.logger.Error("unable to fetch locations by distance", "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, pagedResult{Data: locations, Total: total, Start: page.Start})
}

func (s *routeList) GetAccessions(w http.ResponseWriter, r *http.Request) {
	var payload FilteredRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	page := payload.Page
	accessions, total, err := s.accessions.GetAllForFilter(r.Context(), payload.Filter, &page)
	if err != nil {
		s.logger.Error("unable to fetch accessions", "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, pagedResult{Data: accessions, Total: total, Start: page.Start})
}

func (s *routeList) GetAccessionIDs(w http.ResponseWriter, r *http.Request) {
	var payload FilteredRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	ids, err := s.accessions.GetIDsForFilter(r.Context(), payload.Filter)
	if err != nil {
		s.logger.Error("unable to fetch accession ids", "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, ids)
}

func (s *routeList) GetAccessionNames(w http.ResponseWriter, r *http.Request) {
	var payload FilteredRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	names, err := s.accessions.GetNamesForFilter(r.Context(), payload.Filter)
	if err != nil {
		s.logger.Error("unable to fetch accession names", "error", err)
		respondWithMappedError(w, err)
		return
	}

	RespondJSONObjectWithCode(w, http.StatusOK, names)
}

func (s *routeList) ExportAccessions(w http.ResponseWriter, r *http.Request) {
	var payload FilteredRequest
	if err := parsePayload(&payload, r); err != nil {
		respondWithMappedError(w, err)
		return
	}

	page := payload.Page
	err := streamCSV(w, "accessions.csv", store.AccessionExportColumns, func(fn func(db.Row) error) error {
		return s.accessions.StreamForFilter(r.Context(), payload.Filter, &page, fn)
	})
	if err != nil {
		s.logger.Error("unable to export accessions", "error", err)
	}
}

// pathID parses a numeric path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	value := httprouter.ParamsFromContext(r.Context()).ByName(name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, types.NewInvalidArgumentError("'" + name + "' must be a number")
	}
	return id, nil
}

// queryPagination resolves the page for GET endpoints from the query
// string, falling back to the defaults.
func queryPagination(r *http.Request) *search.Pagination {
	page := search.DefaultPagination()
	query := r.URL.Query()
	if v, err := strconv.Atoi(query.Get("start")); err == nil && v >= 0 {
		page.Start = v
	}
	if v, err := strconv.Atoi(query.Get("length")); err == nil && v > 0 {
		page.Length = v
	}
	return page
}
