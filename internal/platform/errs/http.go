package errs

import (
	"errors"
	"net/http"
)

// Detail is the JSON error body returned by handlers. Field and ConflictID
// carry enough structure for the authoring UI to highlight the exact problem.
type Detail struct {
	Error      string `json:"error"`
	Kind       string `json:"kind"`
	Field      string `json:"field,omitempty"`
	ConflictID string `json:"conflict_id,omitempty"`
}

// HTTPStatus maps an error to the HTTP status code and body handlers respond
// with. Unknown errors map to 500.
func HTTPStatus(err error) (int, Detail) {
	var (
		ve *ValidationError
		ue *UniquenessError
		ne *NotFoundError
		de *DimensionError
		te *TransitionError
		se *StorageError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, Detail{Error: ve.Error(), Kind: "validation", Field: ve.Field}
	case errors.As(err, &ue):
		return http.StatusConflict, Detail{Error: ue.Error(), Kind: "uniqueness", Field: ue.Field, ConflictID: ue.ConflictID}
	case errors.As(err, &ne):
		return http.StatusNotFound, Detail{Error: ne.Error(), Kind: "not_found"}
	case errors.As(err, &de):
		return http.StatusBadRequest, Detail{Error: de.Error(), Kind: "dimension_mismatch"}
	case errors.As(err, &te):
		return http.StatusUnprocessableEntity, Detail{Error: te.Error(), Kind: "state_transition"}
	case errors.As(err, &se):
		return http.StatusServiceUnavailable, Detail{Error: se.Error(), Kind: "storage_unavailable"}
	default:
		return http.StatusInternalServerError, Detail{Error: err.Error(), Kind: "internal"}
	}
}
