// Package handlers exposes the HTTP API of farmcare-engine.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/apperrors"
	"github.com/farmcare-io/farmcare-engine/pkg/logging"
)

// ErrorResponse is the JSON error body returned by all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps service errors onto HTTP status codes and writes the JSON
// error body. Unrecognized errors become opaque 500s; the detail goes to the
// log, not the client.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidCrop),
		errors.Is(err, apperrors.ErrInvalidImage),
		errors.Is(err, apperrors.ErrDiagnosisRequired):
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()})
	case errors.Is(err, apperrors.ErrImageTooLarge):
		WriteJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "payload_too_large", Message: err.Error()})
	case errors.Is(err, apperrors.ErrInvalidTransition), errors.Is(err, apperrors.ErrConflict):
		WriteJSON(w, http.StatusConflict, ErrorResponse{Error: "conflict", Message: err.Error()})
	default:
		// Unrecognized errors often come from the remote services, which echo
		// request payloads; scrub contact details before logging.
		logger.Error("Request failed", zap.String("error", logging.SanitizeError(err)))
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

// decodeJSON decodes a request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return err
	}
	return nil
}
