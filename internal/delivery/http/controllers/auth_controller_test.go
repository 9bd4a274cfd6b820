package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientdesk/internal/delivery/http/helpers"
	"clientdesk/internal/delivery/http/middleware"
	"clientdesk/internal/domain"
)

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	signUpUser *domain.User
	signUpErr  error

	loginToken string
	loginUser  *domain.User
	loginErr   error

	getByIDUser *domain.User
	getByIDErr  error

	updateErr  error
	lastUpdate *domain.User
}

func (f *fakeAuthService) SignUp(ctx context.Context, email, password, firstName, lastName, role string) (*domain.User, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.signUpUser, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.loginToken, f.loginUser, nil
}

func (f *fakeAuthService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	return f.getByIDUser, nil
}

func (f *fakeAuthService) Update(ctx context.Context, user *domain.User) error {
	f.lastUpdate = user
	return f.updateErr
}

func TestAuthController_SignUp(t *testing.T) {
	user := &domain.User{ID: "user-1", Email: "new@example.com", FirstName: "New", LastName: "Client"}

	tests := []struct {
		name         string
		body         string
		fake         *fakeAuthService
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "success",
			body:       `{"email":"New@Example.com","password":"secret1","first_name":"New","last_name":"Client"}`,
			fake:       &fakeAuthService{signUpUser: user, loginToken: "token-1", loginUser: user},
			wantStatus: http.StatusCreated,
		},
		{
			name:         "password too short",
			body:         `{"email":"new@example.com","password":"short"}`,
			fake:         &fakeAuthService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "invalid email",
			body:         `{"email":"nope","password":"secret1"}`,
			fake:         &fakeAuthService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "duplicate email",
			body:         `{"email":"new@example.com","password":"secret1"}`,
			fake:         &fakeAuthService{signUpErr: domain.ErrDuplicateEmail},
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeConflict,
		},
		{
			name:         "service error",
			body:         `{"email":"new@example.com","password":"secret1"}`,
			fake:         &fakeAuthService{signUpErr: assert.AnError},
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger(), tt.fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/auth/signup", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			ctrl.SignUp(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var resp SessionResponse
				require.NoError(t, json.Unmarshal(dataBytes, &resp))
				assert.Equal(t, "token-1", resp.Token)
				assert.Equal(t, "Bearer", resp.TokenType)
				require.NotNil(t, resp.User)
				assert.Equal(t, "user-1", resp.User.ID)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestAuthController_Login(t *testing.T) {
	user := &domain.User{ID: "user-1", Email: "client@example.com"}

	tests := []struct {
		name         string
		body         string
		fake         *fakeAuthService
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "success",
			body:       `{"email":"client@example.com","password":"secret1"}`,
			fake:       &fakeAuthService{loginToken: "token-1", loginUser: user},
			wantStatus: http.StatusOK,
		},
		{
			name:         "bad credentials",
			body:         `{"email":"client@example.com","password":"wrong"}`,
			fake:         &fakeAuthService{loginErr: errors.New("invalid credentials")},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "missing password",
			body:         `{"email":"client@example.com"}`,
			fake:         &fakeAuthService{},
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "service error",
			body:         `{"email":"client@example.com","password":"secret1"}`,
			fake:         &fakeAuthService{loginErr: assert.AnError},
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger(), tt.fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/auth/login", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			ctrl.Login(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestAuthController_Me(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name          string
		contextUserID string
		fake          *fakeAuthService
		wantStatus    int
		wantBodyCode  string
	}{
		{
			name:          "success",
			contextUserID: "user-1",
			fake:          &fakeAuthService{getByIDUser: &domain.User{ID: "user-1", Email: "client@example.com", CreatedAt: now, UpdatedAt: now}},
			wantStatus:    http.StatusOK,
		},
		{
			name:         "no user in context",
			fake:         &fakeAuthService{},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:          "user not found",
			contextUserID: "user-1",
			fake:          &fakeAuthService{getByIDErr: domain.ErrUserNotFound},
			wantStatus:    http.StatusNotFound,
			wantBodyCode:  helpers.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger(), tt.fake)

			req := httptest.NewRequest(http.MethodGet, "http://test/users/me", nil)
			if tt.contextUserID != "" {
				req = req.WithContext(middleware.SetUserID(req.Context(), tt.contextUserID))
			}
			rr := httptest.NewRecorder()

			ctrl.Me(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantBodyCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestAuthController_UpdateMe(t *testing.T) {
	fake := &fakeAuthService{getByIDUser: &domain.User{ID: "user-1", Email: "client@example.com", FirstName: "Old", LastName: "Name"}}
	ctrl := NewAuthController(testLogger(), fake)

	req := httptest.NewRequest(http.MethodPatch, "http://test/users/me", bytes.NewBufferString(`{"first_name":"Ada"}`))
	req = req.WithContext(middleware.SetUserID(req.Context(), "user-1"))
	rr := httptest.NewRecorder()

	ctrl.UpdateMe(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, fake.lastUpdate)
	assert.Equal(t, "Ada", fake.lastUpdate.FirstName)
	assert.Equal(t, "Name", fake.lastUpdate.LastName)
}
