package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/germplasm-hub/data-api/types"
)

// RespondJSONObjectWithCode writes the object and status header to the response. Important to note that if this is being
// used for an error case then an empty return will need to immediately follow the call to this function
func RespondJSONObjectWithCode(w http.ResponseWriter, code int, obj interface{}) {
	setCommonHeaders(w)
	var err error
	var jsonBytes []byte
	if obj != nil {
		jsonBytes, err = json.Marshal(obj)
	}
	writeJSONBytes(w, jsonBytes, err, code)
}

func writeJSONBytes(w http.ResponseWriter, jsonBytes []byte, err error, code int) {
	if err != nil {
		RespondWithError(w, errors.New("unable to marshal response"), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(code)
	if jsonBytes != nil {
		w.Write(jsonBytes)
	}
}

// RespondWithError maps the error to its status code and writes the uniform
// error body.
func RespondWithError(w http.ResponseWriter, err error, code int) {
	requestError := ModelError{
		Description: err.Error(),
	}
	RespondJSONObjectWithCode(w, code, requestError)
}

// respondWithMappedError resolves the status code from the error type.
func respondWithMappedError(w http.ResponseWriter, err error) {
	RespondWithError(w, err, statusForError(err))
}

func statusForError(err error) int {
	switch {
	case types.IsInvalidColumn(err),
		types.IsInvalidSearchQuery(err),
		types.IsInvalidArgument(err):
		return http.StatusBadRequest
	case types.IsInsufficientPermissions(err):
		return http.StatusForbidden
	case types.IsReadOnlyMode(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func setCommonHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
}
