package rest

import (
	"github.com/germplasm-hub/data-api/search"
	"github.com/germplasm-hub/data-api/types"
)

// FilteredRequest is the shared payload of the table endpoints: a filter
// expression plus the page to fetch.
type FilteredRequest struct {
	Filter *search.Query     `json:"filter" mapstructure:"filter"`
	Page   search.Pagination `json:"page" mapstructure:"page"`
}

// PolygonRequest selects locations inside a client-drawn polygon.
type PolygonRequest struct {
	Points []types.LatLng    `json:"points" mapstructure:"points"`
	Page   search.Pagination `json:"page" mapstructure:"page"`
}

// DistanceRequest sorts locations by distance to a reference point.
type DistanceRequest struct {
	Latitude  float64           `json:"latitude" mapstructure:"latitude"`
	Longitude float64           `json:"longitude" mapstructure:"longitude"`
	Page      search.Pagination `json:"page" mapstructure:"page"`
}

// GroupCreateRequest creates a new group owned by the caller.
type GroupCreateRequest struct {
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
	GroupTypeID int64  `json:"groupTypeId" mapstructure:"groupTypeId"`
}

// GroupUpdateRequest renames a group and/or changes its visibility. Fields
// left out of the payload are left untouched.
type GroupUpdateRequest struct {
	Name        *string `json:"name" mapstructure:"name"`
	Description *string `json:"description" mapstructure:"description"`
	Visibility  *bool   `json:"visibility" mapstructure:"visibility"`
}

// GroupDeleteRequest deletes the listed groups.
type GroupDeleteRequest struct {
	IDs []int64 `json:"ids" mapstructure:"ids"`
}

// GroupMembersRequest adds or removes group members.
type GroupMembersRequest struct {
	IDs []int64 `json:"ids" mapstructure:"ids"`
}

// ModelError is the uniform error response body.
type ModelError struct {
	// A human readable description of the error state
	Description string `json:"description,omitempty"`
}

// pagedResult wraps a page of results with the total match count, so the
// client can render paging controls without a second request.
type pagedResult struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Start int         `json:"start"`
}
