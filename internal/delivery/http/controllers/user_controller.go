package controllers

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventgate/internal/delivery/http/helpers"
	"eventgate/internal/delivery/http/middleware"
	"eventgate/internal/domain"
)

const csvMaxUploadBytes = 10 << 20 // 10 MiB

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserAdminService
}

func NewUserController(logger *slog.Logger, svc domain.UserAdminService) *UserController {
	return &UserController{Logger: logger, Service: svc}
}

// CreateUserRequest is the request body for POST /admin/users.
type CreateUserRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	TextCapable bool   `json:"text_capable"`
	Role        string `json:"role"`
}

// Validate implements helpers.Validator.
func (u *CreateUserRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(u.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if u.Password == "" {
		errs = append(errs, "password is required")
	} else if len(u.Password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	if strings.TrimSpace(u.FirstName) == "" {
		errs = append(errs, "first_name is required")
	}
	if strings.TrimSpace(u.LastName) == "" {
		errs = append(errs, "last_name is required")
	}
	role := strings.TrimSpace(strings.ToLower(u.Role))
	if role != "" {
		if _, ok := domain.ParseUserRole(role); !ok {
			errs = append(errs, "role must be \"admin\" or \"attendee\"")
		}
	}
	return errs
}

// UpdateUserRequest is the request body for PUT /admin/users/{userID}.
type UpdateUserRequest struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	Company     string `json:"company"`
	TextCapable bool   `json:"text_capable"`
	Role        string `json:"role"`
}

// Validate implements helpers.Validator.
func (u *UpdateUserRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(u.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if _, ok := domain.ParseUserRole(strings.TrimSpace(strings.ToLower(u.Role))); !ok {
		errs = append(errs, "role must be \"admin\" or \"attendee\"")
	}
	return errs
}

// Create godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateUserRequest true "User data"
// @Success 201 {object} helpers.APIResponse "data contains the created user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users [post]
func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	role := domain.UserRoleAttendee
	if parsed, ok := domain.ParseUserRole(strings.TrimSpace(strings.ToLower(req.Role))); ok {
		role = parsed
	}
	user, err := c.Service.Create(r.Context(), &domain.User{
		Email:       strings.TrimSpace(strings.ToLower(req.Email)),
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Phone:       req.Phone,
		Company:     req.Company,
		TextCapable: req.TextCapable,
		Role:        role,
	}, req.Password)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// Get godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} helpers.APIResponse "data contains the user"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users/{userID} [get]
func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID")
		return
	}

	user, err := c.Service.GetByID(r.Context(), userID)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// List godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the user list"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users [get]
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	users, err := c.Service.List(r.Context())
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// Update godoc
// @Summary Update a user
// @Description Applies profile and role changes. Admins cannot demote themselves, and the last admin cannot be demoted.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Param body body UpdateUserRequest true "User data"
// @Success 200 {object} helpers.APIResponse "data contains the updated user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users/{userID} [put]
func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID")
		return
	}
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req UpdateUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	role, _ := domain.ParseUserRole(strings.TrimSpace(strings.ToLower(req.Role)))

	user, err := c.Service.Update(r.Context(), actorID, &domain.User{
		ID:          userID,
		Email:       strings.TrimSpace(strings.ToLower(req.Email)),
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Phone:       req.Phone,
		Company:     req.Company,
		TextCapable: req.TextCapable,
		Role:        role,
	})
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// Delete godoc
// @Summary Delete a user
// @Description Deletes the user. Admins cannot delete themselves, and the last admin cannot be deleted.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param userID path string true "User ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users/{userID} [delete]
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID")
		return
	}
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.Delete(r.Context(), actorID, userID); err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

// BulkActionRequest is the request body for POST /admin/users/bulk.
type BulkActionRequest struct {
	Action  string   `json:"action"`
	UserIDs []string `json:"user_ids"`
}

// Validate implements helpers.Validator.
func (b *BulkActionRequest) Validate() []string {
	var errs []string
	action := strings.TrimSpace(strings.ToLower(b.Action))
	if action == "" {
		errs = append(errs, "action is required")
	} else if _, ok := domain.ParseBulkActionKind(action); !ok {
		errs = append(errs, "unknown action")
	}
	if len(b.UserIDs) == 0 {
		errs = append(errs, "user_ids is required")
	}
	b.Action = action
	return errs
}

// BulkAction godoc
// @Summary Apply a bulk action to users
// @Description Applies delete, promote_to_admin, demote_to_attendee, or send_invites to the listed users. The acting admin is excluded from destructive actions. Batches that would leave zero admins are rejected whole.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BulkActionRequest true "Bulk action"
// @Success 200 {object} helpers.APIResponse "data contains processed count and per-user errors"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 422 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users/bulk [post]
func (c *UserController) BulkAction(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req BulkActionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	kind, _ := domain.ParseBulkActionKind(req.Action)

	result, err := c.Service.BulkAction(r.Context(), actorID, kind, req.UserIDs)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ImportCSV godoc
// @Summary Import users from CSV
// @Description Creates users from an uploaded CSV with first_name, last_name, and email columns. Rows with errors are reported by line number; valid rows are still imported.
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV file"
// @Success 200 {object} helpers.APIResponse "data contains created count and row errors"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users/import [post]
func (c *UserController) ImportCSV(w http.ResponseWriter, r *http.Request) {
	var reader io.Reader
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(csvMaxUploadBytes); err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid multipart form")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing file field")
			return
		}
		defer file.Close()
		reader = file
	} else {
		reader = io.LimitReader(r.Body, csvMaxUploadBytes)
	}

	result, err := c.Service.ImportCSV(r.Context(), reader)
	if err != nil {
		writeDomainError(c.Logger, w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ExportCSV godoc
// @Summary Export users as CSV
// @Tags users
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file "CSV file"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/users/export [get]
func (c *UserController) ExportCSV(w http.ResponseWriter, r *http.Request) {
	filename := "users-" + time.Now().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := c.Service.ExportCSV(r.Context(), w); err != nil {
		c.Logger.ErrorContext(r.Context(), "csv export failed", "err", err)
	}
}
