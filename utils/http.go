package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HKazz/project-3-back-end/logging"
	"github.com/HKazz/project-3-back-end/models"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger.Errorf("Event ID: RESPONSE_ENCODE_FAILED, Description: %v", err)
	}
}

// WriteError writes {"error": msg}. Internal and store failures are logged and
// reported with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		logging.Logger.Errorf("Event ID: INTERNAL_ERROR, Description: %v", err)
		message = "internal server error"
	case http.StatusServiceUnavailable:
		logging.Logger.Errorf("Event ID: STORE_UNAVAILABLE, Description: %v", err)
		message = "service temporarily unavailable"
	}
	WriteJSON(w, status, ErrorResponse{Error: message})
}
