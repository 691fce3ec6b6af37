package rest

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/germplasm-hub/data-api/types"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid column", err: types.NewInvalidColumnError("users.password"), want: http.StatusBadRequest},
		{name: "invalid search query", err: types.NewInvalidSearchQueryError("bad"), want: http.StatusBadRequest},
		{name: "invalid argument", err: types.NewInvalidArgumentError("bad"), want: http.StatusBadRequest},
		{name: "insufficient permissions", err: types.NewInsufficientPermissionsError(), want: http.StatusForbidden},
		{name: "read-only mode", err: types.NewReadOnlyModeError(), want: http.StatusServiceUnavailable},
		{name: "anything else", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, item := range tests {
		t.Run(item.name, func(t *testing.T) {
			assert.Equal(t, item.want, statusForError(item.err))
		})
	}
}

func TestRespondWithError(t *testing.T) {
	w := httptest.NewRecorder()
	respondWithMappedError(w, types.NewInsufficientPermissionsError())

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "application/json; charset=UTF-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "description")
}

func TestRespondJSONObjectWithCode(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSONObjectWithCode(w, http.StatusOK, pagedResult{Data: []string{"a"}, Total: 1})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":["a"],"total":1,"start":0}`, w.Body.String())
}
