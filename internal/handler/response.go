package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError, so every response
// has the same headers and every error has the same shape:
//
//	{"error": "users_not_found", "message": "One or both users not found."}
//
// The "error" field is the machine code from the apperror package; clients
// branch on it, never on the message.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/social-connections/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error code (e.g., "not_connected")
	Message string `json:"message"` // Human-readable description
}

// StatusResponse is the body of the connection commands.
type StatusResponse struct {
	Status string `json:"status"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set before the body is written; once Encode
// writes, later header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps each domain error kind to its HTTP status.
//
// Conflicts with the current graph state (duplicate user, duplicate edge,
// self edge) are 409. Anything that names a user or edge that does not
// exist is 404.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrAlreadyExists),
		errors.Is(err, apperror.ErrAlreadyConnected),
		errors.Is(err, apperror.ErrSelfConnection):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrUsersNotFound),
		errors.Is(err, apperror.ErrUserNotFound),
		errors.Is(err, apperror.ErrNotConnected):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError maps an error from the service layer to an HTTP response.
//
// The service layer knows nothing about HTTP; this is the one place domain
// errors become status codes. errors.As walks the wrap chain, so an
// *AppError wrapped by fmt.Errorf("...: %w") is still found.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, statusFor(err), ErrorResponse{
			Error:   appErr.Code,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error: never expose internal details (SQL, file paths, hosts)
	// to the client. The service layer has already logged it.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
