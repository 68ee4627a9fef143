// Package handler contains the HTTP layer: request parsing, response
// rendering, and the mapping from domain errors to the wire envelope.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/codevault/internal/apperror"
)

// ErrorResponse is the uniform error envelope returned by every endpoint.
type ErrorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"errorKind"`
}

// writeJSON sends a JSON response. Headers and status must be written before
// the body; encoding failures at that point can only be logged.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status and renders the envelope.
//
// Logging policy follows the taxonomy: auth rejections and not-found are
// routine and stay quiet; provider and storage failures are logged at warning
// with the underlying cause, which never reaches the client.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		// Untyped error — treat as a storage-class internal fault.
		logger.Warn("unclassified error", slog.String("error", err.Error()))
		appErr = apperror.Store(err)
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(appErr, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(appErr, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(appErr, apperror.ErrConflict):
		status = http.StatusConflict
	case errors.Is(appErr, apperror.ErrMissingAuthentication),
		errors.Is(appErr, apperror.ErrInvalidAuthentication),
		errors.Is(appErr, apperror.ErrInvalidSignature),
		errors.Is(appErr, apperror.ErrAccountGone):
		status = http.StatusUnauthorized
	case errors.Is(appErr, apperror.ErrTokenExchangeFailed):
		status = http.StatusBadRequest
		logger.Warn("token exchange with identity provider failed", causeAttr(appErr))
	case errors.Is(appErr, apperror.ErrUserinfoFetchFailed):
		status = http.StatusInternalServerError
		logger.Warn("userinfo fetch from identity provider failed", causeAttr(appErr))
	case errors.Is(appErr, apperror.ErrStore):
		status = http.StatusInternalServerError
		logger.Warn("storage error", causeAttr(appErr))
	}

	writeJSON(w, status, ErrorResponse{
		Message: appErr.Message,
		Kind:    appErr.Kind,
	})
}

func causeAttr(appErr *apperror.AppError) slog.Attr {
	if appErr.Cause != nil {
		return slog.String("cause", appErr.Cause.Error())
	}
	return slog.String("cause", "unknown")
}

// decodeJSON parses a request body, converting parse failures into the
// Validation kind so clients get a 400 with a usable message.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("Unable to parse JSON request body.")
	}
	return nil
}
