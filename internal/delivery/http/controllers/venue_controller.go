package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventgate/internal/delivery/http/helpers"
	"eventgate/internal/domain"
)

type VenueController struct {
	Logger  *slog.Logger
	Service domain.VenueService
}

func NewVenueController(logger *slog.Logger, svc domain.VenueService) *VenueController {
	return &VenueController{Logger: logger, Service: svc}
}

// VenueRequest is the request body for creating and updating venues.
type VenueRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
}

// Validate implements helpers.Validator.
func (v *VenueRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(v.Name) == "" {
		errs = append(errs, "name is required")
	}
	if v.Capacity < 0 {
		errs = append(errs, "capacity cannot be negative")
	}
	return errs
}

// Create godoc
// @Summary Create a venue
// @Tags venues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body VenueRequest true "Venue data"
// @Success 201 {object} helpers.APIResponse "data contains the created venue"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/venues [post]
func (c *VenueController) Create(w http.ResponseWriter, r *http.Request) {
	var req VenueRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	venue, err := c.Service.Create(r.Context(), &domain.Venue{
		Name:        strings.TrimSpace(req.Name),
		Address:     req.Address,
		Description: req.Description,
		Capacity:    req.Capacity,
	})
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusCreated, venue)
}

// Get godoc
// @Summary Get a venue
// @Tags venues
// @Produce json
// @Security BearerAuth
// @Param venueID path string true "Venue ID"
// @Success 200 {object} helpers.APIResponse "data contains the venue"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/venues/{venueID} [get]
func (c *VenueController) Get(w http.ResponseWriter, r *http.Request) {
	venueID := r.PathValue("venueID")
	if venueID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing venueID")
		return
	}

	venue, err := c.Service.GetByID(r.Context(), venueID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, venue)
}

// List godoc
// @Summary List venues
// @Tags venues
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the venue list"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/venues [get]
func (c *VenueController) List(w http.ResponseWriter, r *http.Request) {
	venues, err := c.Service.List(r.Context())
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, venues)
}

// Update godoc
// @Summary Update a venue
// @Tags venues
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param venueID path string true "Venue ID"
// @Param body body VenueRequest true "Venue data"
// @Success 200 {object} helpers.APIResponse "data contains the updated venue"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/venues/{venueID} [put]
func (c *VenueController) Update(w http.ResponseWriter, r *http.Request) {
	venueID := r.PathValue("venueID")
	if venueID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing venueID")
		return
	}

	var req VenueRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	venue, err := c.Service.Update(r.Context(), &domain.Venue{
		ID:          venueID,
		Name:        strings.TrimSpace(req.Name),
		Address:     req.Address,
		Description: req.Description,
		Capacity:    req.Capacity,
	})
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, venue)
}

// Delete godoc
// @Summary Delete a venue
// @Description Deletes the venue. Venues that still host events cannot be deleted.
// @Tags venues
// @Produce json
// @Security BearerAuth
// @Param venueID path string true "Venue ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/venues/{venueID} [delete]
func (c *VenueController) Delete(w http.ResponseWriter, r *http.Request) {
	venueID := r.PathValue("venueID")
	if venueID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing venueID")
		return
	}

	if err := c.Service.Delete(r.Context(), venueID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}
