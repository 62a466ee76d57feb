package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventgate/internal/delivery/http/helpers"
	"eventgate/internal/domain"
)

type ParticipantController struct {
	Logger  *slog.Logger
	Service domain.RosterService
}

func NewParticipantController(logger *slog.Logger, svc domain.RosterService) *ParticipantController {
	return &ParticipantController{Logger: logger, Service: svc}
}

// AddParticipantRequest is the request body for POST /admin/events/{eventID}/participants.
type AddParticipantRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Notes  string `json:"notes"`
}

// Validate implements helpers.Validator.
func (a *AddParticipantRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.UserID) == "" {
		errs = append(errs, "user_id is required")
	}
	role := strings.TrimSpace(strings.ToLower(a.Role))
	if role != "" {
		if _, ok := domain.ParseParticipantRole(role); !ok {
			errs = append(errs, "role must be \"attendee\", \"vendor\", or \"organizer\"")
		}
	}
	a.Role = role
	return errs
}

// Add godoc
// @Summary Add a participant to an event
// @Description Invites a user to the event with the given role, assigning a check-in token.
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body AddParticipantRequest true "Participant data"
// @Success 201 {object} helpers.APIResponse "data contains the created participant"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/participants [post]
func (c *ParticipantController) Add(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}

	var req AddParticipantRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	role := domain.ParticipantRoleAttendee
	if parsed, ok := domain.ParseParticipantRole(req.Role); ok {
		role = parsed
	}

	participant, err := c.Service.Add(r.Context(), eventID, req.UserID, role, req.Notes)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusCreated, participant)
}

// UpdateParticipantRequest is the request body for PUT /admin/events/{eventID}/participants/{participantID}.
type UpdateParticipantRequest struct {
	Role  string `json:"role"`
	Notes string `json:"notes"`
}

// Validate implements helpers.Validator.
func (u *UpdateParticipantRequest) Validate() []string {
	role := strings.TrimSpace(strings.ToLower(u.Role))
	if role == "" {
		return []string{"role is required"}
	}
	if _, ok := domain.ParseParticipantRole(role); !ok {
		return []string{"role must be \"attendee\", \"vendor\", or \"organizer\""}
	}
	u.Role = role
	return nil
}

// Update godoc
// @Summary Update a participant's role and notes
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param participantID path string true "Participant ID"
// @Param body body UpdateParticipantRequest true "Participant data"
// @Success 200 {object} helpers.APIResponse "data contains the updated participant"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/participants/{participantID} [put]
func (c *ParticipantController) Update(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	participantID := r.PathValue("participantID")
	if eventID == "" || participantID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID or participantID")
		return
	}

	var req UpdateParticipantRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	role, _ := domain.ParseParticipantRole(req.Role)

	participant, err := c.Service.UpdateRole(r.Context(), eventID, participantID, role, req.Notes)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, participant)
}

// Remove godoc
// @Summary Remove a participant from an event
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param participantID path string true "Participant ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/participants/{participantID} [delete]
func (c *ParticipantController) Remove(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	participantID := r.PathValue("participantID")
	if eventID == "" || participantID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID or participantID")
		return
	}

	if err := c.Service.Remove(r.Context(), eventID, participantID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"removed": true})
}

// List godoc
// @Summary List an event's participants
// @Description Returns the roster with each participant's user details.
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the roster"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/participants [get]
func (c *ParticipantController) List(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}

	roster, err := c.Service.List(r.Context(), eventID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, roster)
}

// BulkInviteRequest is the request body for POST /admin/events/{eventID}/participants/invite.
type BulkInviteRequest struct {
	UserIDs []string `json:"user_ids"`
}

// Validate implements helpers.Validator.
func (b *BulkInviteRequest) Validate() []string {
	if len(b.UserIDs) == 0 {
		return []string{"user_ids is required"}
	}
	return nil
}

// BulkInviteResponse is the response body for bulk invitations.
type BulkInviteResponse struct {
	Invited int `json:"invited"`
}

// BulkInvite godoc
// @Summary Invite users to an event
// @Description Invites the listed users, skipping existing participants, and sends best-effort invitation emails.
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body BulkInviteRequest true "User IDs to invite"
// @Success 200 {object} helpers.APIResponse "data contains the invited count"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/participants/invite [post]
func (c *ParticipantController) BulkInvite(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}

	var req BulkInviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	count, err := c.Service.BulkInvite(r.Context(), eventID, req.UserIDs)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, BulkInviteResponse{Invited: count})
}

// ExportCSV godoc
// @Summary Export an event's roster as CSV
// @Tags participants
// @Produce text/csv
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {file} file "CSV file"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/participants/export [get]
func (c *ParticipantController) ExportCSV(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}

	filename := "participants-" + time.Now().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := c.Service.ExportCSV(r.Context(), eventID, w); err != nil {
		c.Logger.ErrorContext(r.Context(), "roster export failed", "event_id", eventID, "err", err)
	}
}
