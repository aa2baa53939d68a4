package httpapi

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/dshills/travelrec/internal/logging"
	"github.com/dshills/travelrec/internal/service"
)

// Error codes returned in the error body
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodePlaceNotFound = "PLACE_NOT_FOUND"
	CodeInternal      = "INTERNAL_ERROR"
)

// msgPlaceNotFound is the user-facing message for unknown places
const msgPlaceNotFound = "Tempat tidak ditemukan"

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Error apiError `json:"error"`
}

// respondJSON writes data as JSON with the given status
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

// respondError writes an error body
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorBody{Error: apiError{Code: code, Message: message}})
}

// respondServiceError maps service errors to HTTP statuses
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, CodeInvalidInput, err.Error())
	case errors.Is(err, service.ErrPlaceNotFound):
		respondError(w, http.StatusNotFound, CodePlaceNotFound, msgPlaceNotFound)
	default:
		logging.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}
