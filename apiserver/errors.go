package apiserver

import (
	"errors"
	"net/http"

	"github.com/EERL-EPFL/spice-api-sub001/ingest"
	"github.com/EERL-EPFL/spice-api-sub001/results"
)

// statusForIngestError maps an ingest package error to the HTTP status the
// spec assigns it; unrecognised errors map to 500.
func statusForIngestError(err error) int {
	switch {
	case errors.Is(err, ingest.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ingest.ErrPreconditionFailed), errors.Is(err, ingest.ErrConfigurationIncomplete):
		return http.StatusPreconditionFailed
	case errors.Is(err, ingest.ErrInvalidFormat), errors.Is(err, ingest.ErrMissingRequiredColumn):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func statusForResultsError(err error) int {
	if errors.Is(err, results.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
