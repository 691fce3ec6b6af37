// types package contains the public API types shared between the HTTP
// surface and the storage layer.
package types

import (
	"net/http"
	"time"
)

// DatasetState is the base axis of the dataset access-control model.
type DatasetState string

const (
	DatasetStatePublic  DatasetState = "public"
	DatasetStatePrivate DatasetState = "private"
)

// UserAuth identifies the caller of a request. ID is nil for anonymous
// callers. AcceptedLicenses is the per-session license acceptance cache and
// is only consulted when authentication is disabled; with authentication
// enabled, acceptance is read from the license log table instead.
type UserAuth struct {
	ID               *int64
	Username         string
	IsAdmin          bool
	SessionID        string
	AcceptedLicenses map[int64]bool
}

// HasAcceptedInSession reports whether the session cache records acceptance
// of the given license.
func (u *UserAuth) HasAcceptedInSession(licenseID int64) bool {
	if u == nil || u.AcceptedLicenses == nil {
		return false
	}
	return u.AcceptedLicenses[licenseID]
}

type Dataset struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Contact     string       `json:"contact"`
	State       DatasetState `json:"state"`
	CreatedBy   *int64       `json:"createdBy"`
	LicenseID   *int64       `json:"licenseId"`
	LicenseName string       `json:"licenseName,omitempty"`
	IsExternal  bool         `json:"isExternal"`
	DateStart   *time.Time   `json:"dateStart"`
	DateEnd     *time.Time   `json:"dateEnd"`
	DataObjects int64        `json:"dataObjects"`
	DataPoints  int64        `json:"dataPoints"`
}

type License struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	GroupType   string    `json:"groupType"`
	Visibility  bool      `json:"visibility"`
	CreatedBy   *int64    `json:"createdBy"`
	CreatedOn   time.Time `json:"createdOn"`
	Size        int64     `json:"size"`
}

type Location struct {
	ID        int64    `json:"id"`
	SiteName  string   `json:"siteName"`
	Region    string   `json:"region"`
	State     string   `json:"state"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Elevation *float64 `json:"elevation"`
	Country   string   `json:"country"`
	// Distance is only populated by the distance-sorted query.
	Distance *float64 `json:"distance,omitempty"`
}

// LatLng is a single polygon vertex as supplied by the client.
type LatLng struct {
	Latitude  float64 `json:"latitude" mapstructure:"latitude"`
	Longitude float64 `json:"longitude" mapstructure:"longitude"`
}

type Accession struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Number   string `json:"number"`
	PUID     string `json:"puid,omitempty"`
	Taxonomy string `json:"taxonomy,omitempty"`
	Country  string `json:"country,omitempty"`
}

// Route represents a request route to be served.
type Route struct {
	Method  string
	Pattern string
	Handler http.Handler
}
