package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventgate/internal/delivery/http/helpers"
	"eventgate/internal/delivery/http/middleware"
	"eventgate/internal/domain"
)

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{Logger: logger, Service: svc}
}

// RSVPRequest is the request body for POST /rsvp/events/{eventID}.
// Answers maps custom question indexes ("0", "1", ...) to responses.
type RSVPRequest struct {
	Status  string            `json:"status"`
	Answers map[string]string `json:"answers"`
}

// Validate implements helpers.Validator.
func (r *RSVPRequest) Validate() []string {
	status := strings.ToLower(strings.TrimSpace(r.Status))
	if status == "" {
		return []string{"status is required"}
	}
	if _, ok := domain.ParseRSVPResponse(status); !ok {
		return []string{"status must be \"yes\", \"no\", or \"maybe\""}
	}
	r.Status = status
	return nil
}

// Respond godoc
// @Summary RSVP to an event
// @Description Record the authenticated user's yes/no/maybe response, with optional answers to the event's custom questions. Rejected once the event's RSVP deadline has passed.
// @Tags rsvp
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body RSVPRequest true "RSVP response"
// @Success 200 {object} helpers.APIResponse "data contains the participant record"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rsvp/events/{eventID} [post]
func (c *RSVPController) Respond(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req RSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	status, _ := domain.ParseRSVPResponse(req.Status)

	participant, err := c.Service.Respond(r.Context(), userID, eventID, status, req.Answers)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, participant)
}

// Status godoc
// @Summary Get the current user's RSVP for an event
// @Description Returns the authenticated user's participant record for the event. Users who have not responded get a pending record.
// @Tags rsvp
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the participant record"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rsvp/events/{eventID} [get]
func (c *RSVPController) Status(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	participant, err := c.Service.Status(r.Context(), userID, eventID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, participant)
}
