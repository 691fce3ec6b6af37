package rest

import (
	"encoding/json"
	"net/http"

	"github.com/mitchellh/mapstructure"

	"github.com/germplasm-hub/data-api/types"
)

// parsePayload decodes the JSON body into the target struct. The body goes
// through a weakly typed decode since JSON hands every number back as a
// float64.
func parsePayload(obj interface{}, r *http.Request) error {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return types.NewInvalidArgumentError("unable to parse payload")
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           obj,
	})
	if err != nil {
		return types.NewInvalidArgumentError("unable to parse payload")
	}
	if err := decoder.Decode(raw); err != nil {
		return types.NewInvalidArgumentError("unable to parse payload")
	}
	return nil
}
