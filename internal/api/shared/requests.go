package shared

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// MaxJSONBodyBytes bounds JSON request bodies.
const MaxJSONBodyBytes = 1 << 20

// Validate is the shared validator instance for request structs.
var Validate = validator.New()

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	// Check if the object implements the Validate interface
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}

	return Validate.Struct(v)
}
