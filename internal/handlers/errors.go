package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/diewo77/jurigo/gate"
	"github.com/diewo77/jurigo/httpx"
	"github.com/diewo77/jurigo/i18n"
	"github.com/diewo77/jurigo/internal/lifecycle"
	"github.com/diewo77/jurigo/internal/models"
)

// errorStatus maps an error kind to its HTTP status and response code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, gate.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, models.ErrDependency):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError renders err as a localized JSON error. Validation failures
// carry the per-field violations as details.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, code := errorStatus(err)
	lang := i18n.LangFromContext(r.Context())

	var details any
	var verr *lifecycle.ValidationError
	if errors.As(err, &verr) {
		details = i18n.Localize(lang, verr.Violations)
	}
	if status >= http.StatusInternalServerError && log != nil {
		log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	httpx.JSONErrorMessage(w, status, code, i18n.T(lang, code), details)
}

// writeCode renders a fixed error code.
func writeCode(w http.ResponseWriter, r *http.Request, status int, code string) {
	httpx.JSONErrorMessage(w, status, code, i18n.T(i18n.LangFromContext(r.Context()), code), nil)
}

// decode reads a JSON body, answering 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		writeCode(w, r, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

func discardIfNil(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return log
}
