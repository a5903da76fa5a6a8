package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jamboree26/notifications/internal/services"
)

// errorResponse is the JSON error body, matching {"detail": "..."}
type errorResponse struct {
	Detail string `json:"detail"`
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// respondError writes a JSON error body with the given status code
func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, errorResponse{Detail: detail})
}

// respondServiceError maps service errors onto HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrAlreadyExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrNoDeviceTokens):
		respondError(w, http.StatusPreconditionRequired, "User notification registration required.")
	default:
		log.Printf("Internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error.")
	}
}

// decodeJSON parses the request body into dst
func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
