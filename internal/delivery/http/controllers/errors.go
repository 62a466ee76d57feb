package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventgate/internal/delivery/http/helpers"
	"eventgate/internal/domain"
)

// writeDomainError maps domain sentinel errors to HTTP responses. Unmapped
// errors are logged and returned as 500.
func writeDomainError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrDeadlinePassed):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "RSVP deadline has passed")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrLastAdmin):
		helpers.WriteJSONError(w, http.StatusUnprocessableEntity, helpers.ErrCodeConflict, "operation would leave no admin users")
	case errors.Is(err, domain.ErrDuplicateEmail):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "email already registered")
	case errors.Is(err, domain.ErrAlreadyParticipant):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "user is already a participant of this event")
	case errors.Is(err, domain.ErrVenueInUse):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "venue has scheduled events")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
