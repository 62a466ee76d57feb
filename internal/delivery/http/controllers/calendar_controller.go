package controllers

import (
	"log/slog"
	"net/http"

	"eventgate/internal/delivery/http/helpers"
	"eventgate/internal/delivery/http/middleware"
	"eventgate/internal/domain"
)

type CalendarController struct {
	Logger  *slog.Logger
	Service domain.CalendarService
}

func NewCalendarController(logger *slog.Logger, svc domain.CalendarService) *CalendarController {
	return &CalendarController{Logger: logger, Service: svc}
}

// EventICS godoc
// @Summary Download an event as an iCalendar file
// @Tags calendar
// @Produce text/calendar
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {file} file "ICS file"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /calendar/events/{eventID} [get]
func (c *CalendarController) EventICS(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}

	filename, data, err := c.Service.EventICS(r.Context(), eventID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	writeICS(w, filename, data)
}

// MyEventsICS godoc
// @Summary Download the current user's upcoming events as an iCalendar file
// @Tags calendar
// @Produce text/calendar
// @Security BearerAuth
// @Success 200 {file} file "ICS file"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /calendar/my-events [get]
func (c *CalendarController) MyEventsICS(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	filename, data, err := c.Service.UserEventsICS(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	writeICS(w, filename, data)
}

func writeICS(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
