package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	h "clientdesk/internal/delivery/http/helpers"
	"clientdesk/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Messages returned to invitees. Front ends display these verbatim.
const (
	msgInvalidOrExpiredToken = "Invalid or expired token."
	msgNoPendingInvitation   = "No pending invitation for this email."
)

// InviteRequest is the request body for POST /invite
type InviteRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Validate implements Validator.
func (i InviteRequest) Validate() []string {
	var errs []string
	email := strings.TrimSpace(strings.ToLower(i.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	return errs
}

// VerifyTokenRequest is the request body for POST /invite/verify-token
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// Validate implements Validator.
func (v VerifyTokenRequest) Validate() []string {
	if strings.TrimSpace(v.Token) == "" {
		return []string{"token is required"}
	}
	return nil
}

// UpdateStatusRequest is the request body for POST /invite/update-status
type UpdateStatusRequest struct {
	Email  string `json:"email"`
	Status string `json:"status"`
}

// Validate implements Validator.
func (u UpdateStatusRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(u.Email) == "" {
		errs = append(errs, "email is required")
	}
	status := strings.TrimSpace(strings.ToLower(u.Status))
	if status != domain.InvitationStatusAccepted && status != domain.InvitationStatusRejected {
		errs = append(errs, "status must be \"accepted\" or \"rejected\"")
	}
	return errs
}

// InvitationListResponse is the response body for GET /invite
type InvitationListResponse struct {
	Invitations []*domain.Invitation `json:"invitations"`
	Pagination  h.PaginationMeta     `json:"pagination"`
}

type InviteController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewInviteController(logger *slog.Logger, svc domain.InvitationService) *InviteController {
	return &InviteController{
		Logger:  logger,
		Service: svc,
	}
}

// Invite godoc
// @Summary Invite a client by email
// @Description Create a pending invitation and send the invite link to the given address. Admin only.
// @Tags invite
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body InviteRequest true "Invitee data"
// @Success 201 {object} helpers.APIResponse "data contains the created invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invite [post]
func (c *InviteController) Invite(w http.ResponseWriter, r *http.Request) {
	var req InviteRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	inv, err := c.Service.Invite(r.Context(), req.Email, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}

	h.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// List godoc
// @Summary List invitations
// @Description List invitations with pagination, newest first. Admin only.
// @Tags invite
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains invitations and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invite [get]
func (c *InviteController) List(w http.ResponseWriter, r *http.Request) {
	params := h.ParsePagination(r)
	invitations, total, err := c.Service.List(r.Context(), params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, InvitationListResponse{
		Invitations: invitations,
		Pagination:  h.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// VerifyToken godoc
// @Summary Verify an invitation token
// @Description Exchange an invitation token for the invitee identity behind it. The token may arrive percent-encoded once.
// @Tags invite
// @Accept json
// @Produce json
// @Param body body VerifyTokenRequest true "Invitation token"
// @Success 200 {object} helpers.APIResponse "data contains email, first_name, last_name"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized (invalid or expired token)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no pending invitation)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invite/verify-token [post]
func (c *InviteController) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req VerifyTokenRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	identity, err := c.Service.VerifyToken(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationExpired) {
			h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, msgInvalidOrExpiredToken)
			return
		}
		if errors.Is(err, domain.ErrInvitationNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, msgNoPendingInvitation)
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, identity)
}

// UpdateStatus godoc
// @Summary Record an invitation decision
// @Description Mark the latest pending invitation for the email as accepted or rejected.
// @Tags invite
// @Accept json
// @Produce json
// @Param body body UpdateStatusRequest true "Decision"
// @Success 200 {object} helpers.APIResponse "data contains email and status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no pending invitation)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invite/update-status [post]
func (c *InviteController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	status := strings.TrimSpace(strings.ToLower(req.Status))
	if err := c.Service.UpdateStatus(r.Context(), email, status); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
			return
		}
		if errors.Is(err, domain.ErrInvitationNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, msgNoPendingInvitation)
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"email": email, "status": status})
}
