package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"photo-guess-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, payload interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondServiceError maps service sentinel errors to HTTP status codes.
// Unmapped errors are logged and reported as 500 without leaking details.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrNotFound):
		respondError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, services.ErrAlreadyAnswered):
		respondError(w, "Photo already answered", http.StatusConflict)
	case errors.Is(err, services.ErrSessionFinished):
		respondError(w, "Session already finished", http.StatusConflict)
	case errors.Is(err, services.ErrNoCaptureDate):
		respondError(w, "Photo has no capture date", http.StatusUnprocessableEntity)
	case errors.Is(err, services.ErrHintUnavailable):
		respondError(w, "Hint unavailable for this photo", http.StatusUnprocessableEntity)
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		respondError(w, "Internal server error", http.StatusInternalServerError)
	}
}
