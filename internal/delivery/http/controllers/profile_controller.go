package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "clientdesk/internal/delivery/http/helpers"
	"clientdesk/internal/delivery/http/middleware"
	"clientdesk/internal/domain"
)

// ProfileRequest is the request body for POST /profiles and PATCH /profiles/me
type ProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Phone     string `json:"phone"`
}

type ProfileController struct {
	Logger   *slog.Logger
	Profiles domain.ProfileService
	Users    domain.AuthService
}

func NewProfileController(logger *slog.Logger, profiles domain.ProfileService, users domain.AuthService) *ProfileController {
	return &ProfileController{
		Logger:   logger,
		Profiles: profiles,
		Users:    users,
	}
}

// email of the authenticated account, resolved through the user store so a
// forged token cannot write another account's profile.
func (c *ProfileController) callerEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authentication")
		return "", false
	}
	user, err := c.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unknown account")
			return "", false
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return "", false
	}
	return user.Email, true
}

// Create godoc
// @Summary Create the caller's business profile
// @Description Create the profile record for the authenticated account. If a profile already exists for the email, it is updated in place.
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ProfileRequest true "Profile data"
// @Success 201 {object} helpers.APIResponse "data contains the profile"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profiles [post]
func (c *ProfileController) Create(w http.ResponseWriter, r *http.Request) {
	email, ok := c.callerEmail(w, r)
	if !ok {
		return
	}
	var req ProfileRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	profile, err := c.Profiles.Create(r.Context(), &domain.Profile{
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Company:   strings.TrimSpace(req.Company),
		Phone:     strings.TrimSpace(req.Phone),
	})
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}

	h.WriteJSONSuccess(w, http.StatusCreated, profile)
}

// Me godoc
// @Summary Get the caller's business profile
// @Description Return the profile for the authenticated account, creating an empty one if provisioning never finished.
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the profile"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profiles/me [get]
func (c *ProfileController) Me(w http.ResponseWriter, r *http.Request) {
	email, ok := c.callerEmail(w, r)
	if !ok {
		return
	}
	profile, created, err := c.Profiles.GetOrCreateByEmail(r.Context(), email)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	if created {
		c.Logger.InfoContext(r.Context(), "profile recovered on read", "email", email)
	}

	h.WriteJSONSuccess(w, http.StatusOK, profile)
}

// Update godoc
// @Summary Update the caller's business profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ProfileRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated profile"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profiles/me [patch]
func (c *ProfileController) Update(w http.ResponseWriter, r *http.Request) {
	email, ok := c.callerEmail(w, r)
	if !ok {
		return
	}
	var req ProfileRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	profile, err := c.Profiles.Update(r.Context(), &domain.Profile{
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Company:   strings.TrimSpace(req.Company),
		Phone:     strings.TrimSpace(req.Phone),
	})
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "profile not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, profile)
}
