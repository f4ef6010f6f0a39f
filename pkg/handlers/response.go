// Package handlers is the thin HTTP boundary over the chat service.
// Routing and serialization live here; all semantics live in pkg/services.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tably-ai/tably-engine/pkg/apperrors"
	"github.com/tably-ai/tably-engine/pkg/llm"
)

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteServiceError maps a service-layer error onto the HTTP taxonomy:
// validation 400, unknown session 404, upstream model failure 502,
// anything else 500.
func WriteServiceError(w http.ResponseWriter, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return ErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		return ErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
	}

	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		return ErrorResponse(w, http.StatusBadGateway, "service_error", llmErr.Error())
	}

	return ErrorResponse(w, http.StatusInternalServerError, "internal_error", err.Error())
}
