package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventgate/internal/delivery/http/helpers"
	"eventgate/internal/delivery/http/middleware"
	"eventgate/internal/domain"
)

type CheckinController struct {
	Logger  *slog.Logger
	Service domain.CheckinService
}

func NewCheckinController(logger *slog.Logger, svc domain.CheckinService) *CheckinController {
	return &CheckinController{Logger: logger, Service: svc}
}

// Verify godoc
// @Summary Verify a check-in QR code
// @Description Looks up the token, event, and participant triple without changing any state. Any mismatch yields status "invalid" with no detail about which field was wrong.
// @Tags checkin
// @Produce json
// @Param token query string true "Check-in token"
// @Param event query string true "Event ID"
// @Param participant query string true "Participant ID"
// @Success 200 {object} helpers.APIResponse "data contains the verification result"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /checkin/verify [get]
func (c *CheckinController) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	token := q.Get("token")
	eventID := q.Get("event")
	participantID := q.Get("participant")
	if token == "" || eventID == "" || participantID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "token, event, and participant are required")
		return
	}

	result, err := c.Service.Verify(r.Context(), token, eventID, participantID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ProcessCheckinRequest is the request body for POST /checkin/process.
type ProcessCheckinRequest struct {
	Token         string `json:"token"`
	EventID       string `json:"event_id"`
	ParticipantID string `json:"participant_id"`
}

// Validate implements helpers.Validator.
func (p *ProcessCheckinRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(p.Token) == "" {
		errs = append(errs, "token is required")
	}
	if strings.TrimSpace(p.EventID) == "" {
		errs = append(errs, "event_id is required")
	}
	if strings.TrimSpace(p.ParticipantID) == "" {
		errs = append(errs, "participant_id is required")
	}
	return errs
}

// Process godoc
// @Summary Process a QR check-in
// @Description Checks the participant in. Repeating a check-in is not an error; the original timestamp is kept and the result is "already_checked_in".
// @Tags checkin
// @Accept json
// @Produce json
// @Param body body ProcessCheckinRequest true "Check-in triple"
// @Success 200 {object} helpers.APIResponse "data contains the verification result"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /checkin/process [post]
func (c *CheckinController) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessCheckinRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	result, err := c.Service.Process(r.Context(), req.Token, req.EventID, req.ParticipantID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ManualCheckinRequest is the request body for POST /admin/checkin/manual.
type ManualCheckinRequest struct {
	ParticipantID string `json:"participant_id"`
}

// Validate implements helpers.Validator.
func (m *ManualCheckinRequest) Validate() []string {
	if strings.TrimSpace(m.ParticipantID) == "" {
		return []string{"participant_id is required"}
	}
	return nil
}

// ManualCheckin godoc
// @Summary Manually check a participant in
// @Description Checks the participant in on their behalf, recording the admin as the operator.
// @Tags checkin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ManualCheckinRequest true "Participant to check in"
// @Success 200 {object} helpers.APIResponse "data contains the updated participant"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/checkin/manual [post]
func (c *CheckinController) ManualCheckin(w http.ResponseWriter, r *http.Request) {
	operatorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req ManualCheckinRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	participant, err := c.Service.ManualCheckin(r.Context(), req.ParticipantID, operatorID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, participant)
}

// BulkCheckinRequest is the request body for POST /admin/events/{eventID}/checkin/bulk.
type BulkCheckinRequest struct {
	ParticipantIDs []string `json:"participant_ids"`
}

// Validate implements helpers.Validator.
func (b *BulkCheckinRequest) Validate() []string {
	if len(b.ParticipantIDs) == 0 {
		return []string{"participant_ids is required"}
	}
	return nil
}

// BulkCheckinResponse is the response body for bulk check-in.
type BulkCheckinResponse struct {
	CheckedIn int `json:"checked_in"`
}

// BulkCheckin godoc
// @Summary Bulk check-in participants
// @Description Checks in the listed participants of the event. Participants of other events and already-checked-in participants are skipped.
// @Tags checkin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body BulkCheckinRequest true "Participant IDs"
// @Success 200 {object} helpers.APIResponse "data contains the checked-in count"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/checkin/bulk [post]
func (c *CheckinController) BulkCheckin(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	operatorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req BulkCheckinRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	count, err := c.Service.BulkCheckin(r.Context(), eventID, req.ParticipantIDs, operatorID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, BulkCheckinResponse{CheckedIn: count})
}

// UndoCheckin godoc
// @Summary Undo a participant's check-in
// @Description Clears the participant's check-in timestamp, method, and operator.
// @Tags checkin
// @Produce json
// @Security BearerAuth
// @Param participantID path string true "Participant ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/checkin/{participantID} [delete]
func (c *CheckinController) UndoCheckin(w http.ResponseWriter, r *http.Request) {
	participantID := r.PathValue("participantID")
	if participantID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing participantID")
		return
	}

	if err := c.Service.UndoCheckin(r.Context(), participantID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"undone": true})
}

// Stats godoc
// @Summary Live check-in stats for an event
// @Description Returns checked-in and RSVP yes counts plus the most recent check-ins, for the live dashboard.
// @Tags checkin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains check-in stats"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/checkin/stats [get]
func (c *CheckinController) Stats(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}

	stats, err := c.Service.Stats(r.Context(), eventID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}

// QRCode godoc
// @Summary Participant check-in QR code
// @Description Returns the participant's check-in QR code as a PNG image.
// @Tags checkin
// @Produce png
// @Security BearerAuth
// @Param participantID path string true "Participant ID"
// @Success 200 {file} file "PNG image"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/participants/{participantID}/qr [get]
func (c *CheckinController) QRCode(w http.ResponseWriter, r *http.Request) {
	participantID := r.PathValue("participantID")
	if participantID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing participantID")
		return
	}

	png, err := c.Service.QRCodePNG(r.Context(), participantID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
