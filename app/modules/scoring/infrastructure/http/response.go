package scoringhttp

import (
	"encoding/json"
	"errors"
	"net/http"

	scoringservice "github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application"
	"github.com/Black-And-White-Club/golf-scoring/app/modules/scoring/application/parsers"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure answers a domain failure with the status of its cause.
func writeFailure(w http.ResponseWriter, failure error) {
	writeError(w, failureStatus(failure), failure.Error())
}

func failureStatus(err error) int {
	switch {
	case errors.Is(err, scoringservice.ErrGameNotFound),
		errors.Is(err, scoringservice.ErrSpecNotFound):
		return http.StatusNotFound
	case errors.Is(err, scoringservice.ErrGameIDRequired),
		errors.Is(err, scoringservice.ErrUnrecognizedPlayedAt),
		errors.Is(err, scoringservice.ErrInvalidPot):
		return http.StatusBadRequest
	case errors.Is(err, parsers.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType
	default:
		// Unknown players and holes, unpostable rounds and invalid specs.
		return http.StatusUnprocessableEntity
	}
}
