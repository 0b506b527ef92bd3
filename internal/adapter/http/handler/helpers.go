package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/solarbank/transferd/internal/adapter/http/dto"
	"github.com/solarbank/transferd/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps a use-case error to a response. Known domain errors
// carry their own safe message; anything else is logged and answered with a
// generic 500 so storage internals never reach callers.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, known := domainErrorStatus(err)
	if !known {
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("unexpected error")

		writeError(w, http.StatusInternalServerError, "internal server error", "")

		return
	}

	writeError(w, status, err.Error(), "")
}

// domainErrorStatus maps domain errors to HTTP status codes. The second
// return reports whether the error is a known, caller-safe kind.
func domainErrorStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransferNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, domain.ErrAccountInUse):
		return http.StatusConflict, true
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, true
	case errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidBalance):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusServiceUnavailable, true
	default:
		return http.StatusInternalServerError, false
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
