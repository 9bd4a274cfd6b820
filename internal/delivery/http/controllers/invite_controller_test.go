package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientdesk/internal/delivery/http/helpers"
	"clientdesk/internal/domain"
)

// fakeInvitationService implements domain.InvitationService for handler tests.
type fakeInvitationService struct {
	inviteResult *domain.Invitation
	inviteErr    error

	verifyIdentity *domain.InviteeIdentity
	verifyErr      error
	lastToken      string

	updateErr  error
	lastEmail  string
	lastStatus string

	listResult []*domain.Invitation
	listTotal  int
	listErr    error
}

func (f *fakeInvitationService) Invite(ctx context.Context, email, firstName, lastName string) (*domain.Invitation, error) {
	if f.inviteErr != nil {
		return nil, f.inviteErr
	}
	return f.inviteResult, nil
}

func (f *fakeInvitationService) VerifyToken(ctx context.Context, token string) (*domain.InviteeIdentity, error) {
	f.lastToken = token
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifyIdentity, nil
}

func (f *fakeInvitationService) UpdateStatus(ctx context.Context, email, status string) error {
	f.lastEmail = email
	f.lastStatus = status
	return f.updateErr
}

func (f *fakeInvitationService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.listResult, f.listTotal, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestInviteController_VerifyToken(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		fakeIdentity  *domain.InviteeIdentity
		fakeErr       error
		wantStatus    int
		wantBodyCode  string
		wantMessage   string
		checkIdentity func(t *testing.T, got *domain.InviteeIdentity)
	}{
		{
			name:         "success",
			body:         `{"token":"abc.def.ghi"}`,
			fakeIdentity: &domain.InviteeIdentity{Email: "invitee@example.com", FirstName: "Ada", LastName: "Lovelace"},
			wantStatus:   http.StatusOK,
			checkIdentity: func(t *testing.T, got *domain.InviteeIdentity) {
				assert.Equal(t, "invitee@example.com", got.Email)
				assert.Equal(t, "Ada", got.FirstName)
			},
		},
		{
			name:         "expired token",
			body:         `{"token":"abc.def.ghi"}`,
			fakeErr:      domain.ErrInvitationExpired,
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
			wantMessage:  "Invalid or expired token.",
		},
		{
			name:         "no pending invitation",
			body:         `{"token":"abc.def.ghi"}`,
			fakeErr:      domain.ErrInvitationNotFound,
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
			wantMessage:  "No pending invitation for this email.",
		},
		{
			name:         "missing token",
			body:         `{"token":""}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "unknown field",
			body:         `{"token":"abc.def.ghi","extra":true}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "service error",
			body:         `{"token":"abc.def.ghi"}`,
			fakeErr:      assert.AnError,
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeInvitationService{verifyIdentity: tt.fakeIdentity, verifyErr: tt.fakeErr}
			ctrl := NewInviteController(testLogger(), fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/invite/verify-token", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			ctrl.VerifyToken(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var identity domain.InviteeIdentity
				require.NoError(t, json.Unmarshal(dataBytes, &identity))
				tt.checkIdentity(t, &identity)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, envelope.Error.Message)
			}
		})
	}
}

func TestInviteController_UpdateStatus(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		fakeErr      error
		wantStatus   int
		wantBodyCode string
		wantEmail    string
		wantDecision string
	}{
		{
			name:         "accept",
			body:         `{"email":"Invitee@Example.com","status":"accepted"}`,
			wantStatus:   http.StatusOK,
			wantEmail:    "invitee@example.com",
			wantDecision: "accepted",
		},
		{
			name:         "reject",
			body:         `{"email":"invitee@example.com","status":"rejected"}`,
			wantStatus:   http.StatusOK,
			wantEmail:    "invitee@example.com",
			wantDecision: "rejected",
		},
		{
			name:         "bad status",
			body:         `{"email":"invitee@example.com","status":"maybe"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "missing email",
			body:         `{"email":"","status":"accepted"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "no pending invitation",
			body:         `{"email":"invitee@example.com","status":"accepted"}`,
			fakeErr:      domain.ErrInvitationNotFound,
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
		{
			name:         "service error",
			body:         `{"email":"invitee@example.com","status":"accepted"}`,
			fakeErr:      assert.AnError,
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeInvitationService{updateErr: tt.fakeErr}
			ctrl := NewInviteController(testLogger(), fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/invite/update-status", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			ctrl.UpdateStatus(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				assert.Equal(t, tt.wantEmail, fake.lastEmail)
				assert.Equal(t, tt.wantDecision, fake.lastStatus)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestInviteController_Invite(t *testing.T) {
	now := time.Now().UTC()
	tests := []struct {
		name         string
		body         string
		fakeResult   *domain.Invitation
		fakeErr      error
		wantStatus   int
		wantBodyCode string
	}{
		{
			name: "success",
			body: `{"email":"new@example.com","first_name":"New","last_name":"Client"}`,
			fakeResult: &domain.Invitation{
				ID:        "inv-1",
				Email:     "new@example.com",
				Status:    domain.InvitationStatusPending,
				SentAt:    now,
				ExpiresAt: now.Add(7 * 24 * time.Hour),
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:         "invalid email",
			body:         `{"email":"not-an-email"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "service error",
			body:         `{"email":"new@example.com"}`,
			fakeErr:      assert.AnError,
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeInvitationService{inviteResult: tt.fakeResult, inviteErr: tt.fakeErr}
			ctrl := NewInviteController(testLogger(), fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/invite", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			ctrl.Invite(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var inv domain.Invitation
				require.NoError(t, json.Unmarshal(dataBytes, &inv))
				assert.Equal(t, "inv-1", inv.ID)
				assert.Equal(t, domain.InvitationStatusPending, inv.Status)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestInviteController_List(t *testing.T) {
	fake := &fakeInvitationService{
		listResult: []*domain.Invitation{
			{ID: "inv-1", Email: "a@example.com", Status: domain.InvitationStatusAccepted},
			{ID: "inv-2", Email: "b@example.com", Status: domain.InvitationStatusPending},
		},
		listTotal: 12,
	}
	ctrl := NewInviteController(testLogger(), fake)

	req := httptest.NewRequest(http.MethodGet, "http://test/invite?page=2&page_size=2", nil)
	rr := httptest.NewRecorder()

	ctrl.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.Nil(t, envelope.Error)
	dataBytes, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var resp InvitationListResponse
	require.NoError(t, json.Unmarshal(dataBytes, &resp))
	assert.Len(t, resp.Invitations, 2)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 12, resp.Pagination.Total)
	assert.Equal(t, 6, resp.Pagination.TotalPages)
}
