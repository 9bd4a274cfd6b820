package inviteflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"clientdesk/internal/domain"
)

// Session is the authenticated session minted by account sign-up. Its token
// authorizes the profile-record creation that follows.
type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// InvitationAPI is the backend surface the flow needs for verification and
// decision recording.
type InvitationAPI interface {
	VerifyToken(ctx context.Context, token string) (*domain.InviteeIdentity, error)
	UpdateStatus(ctx context.Context, email, status string) error
}

// AccountProvider creates an authentication identity bound to the email.
// SignUp fails with ErrEmailAlreadyInUse when an identity already exists.
type AccountProvider interface {
	SignUp(ctx context.Context, email, password, firstName, lastName string) (*Session, error)
}

// ProfileStore creates the profile record keyed by the session's email.
type ProfileStore interface {
	CreateProfile(ctx context.Context, session *Session, firstName, lastName string) error
}

const (
	defaultAttemptTimeout = 10 * time.Second
	defaultMaxTries       = 3
)

// Client talks to the clientdesk backend. Every call carries a per-attempt
// timeout and a bounded exponential-backoff retry; 4xx responses are never
// retried.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	attemptTimeout time.Duration
	maxTries       uint
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithAttemptTimeout sets the per-attempt deadline.
func WithAttemptTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.attemptTimeout = d }
}

// WithMaxTries bounds the number of attempts per call.
func WithMaxTries(n uint) ClientOption {
	return func(c *Client) { c.maxTries = n }
}

// NewClient returns a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		httpClient:     &http.Client{},
		attemptTimeout: defaultAttemptTimeout,
		maxTries:       defaultMaxTries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiEnvelope mirrors the backend's {data, error} response shape.
type apiEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// statusError is a non-2xx response that must not be retried.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	if e.message != "" {
		return e.message
	}
	return fmt.Sprintf("backend returned status %d", e.code)
}

func (c *Client) post(ctx context.Context, op, path, bearer string, reqBody any) (json.RawMessage, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", op, err)
	}

	operation := func() (json.RawMessage, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, &TimeoutError{Op: op}
			}
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		var envelope apiEnvelope
		message := ""
		if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
			message = envelope.Error.Message
		}

		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			return nil, fmt.Errorf("%s: backend returned %d", op, resp.StatusCode)
		case resp.StatusCode >= http.StatusBadRequest:
			return nil, backoff.Permanent(&statusError{code: resp.StatusCode, message: message})
		}
		return envelope.Data, nil
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries),
	)
}

// VerifyToken exchanges the canonical token for the invitee identity behind
// it. The token is percent-encoded exactly once for transmission, however
// many layers extraction stripped locally. Backend rejections come back as
// *VerificationError carrying the backend's message.
func (c *Client) VerifyToken(ctx context.Context, token string) (*domain.InviteeIdentity, error) {
	data, err := c.post(ctx, "verify token", "/invite/verify-token", "", map[string]string{
		"token": url.QueryEscape(token),
	})
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			msg := se.message
			if msg == "" {
				msg = "Unable to verify invitation."
			}
			return nil, &VerificationError{StatusCode: se.code, Message: msg}
		}
		return nil, err
	}

	var identity domain.InviteeIdentity
	if err := json.Unmarshal(data, &identity); err != nil || identity.Email == "" {
		return nil, &VerificationError{Message: "Unable to verify invitation."}
	}
	return &identity, nil
}

// UpdateStatus records the invitee's decision against the latest pending
// invitation for the email. An empty email fails locally without touching
// the backend.
func (c *Client) UpdateStatus(ctx context.Context, email, status string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("update status: email is required")
	}
	_, err := c.post(ctx, "update status", "/invite/update-status", "", map[string]string{
		"email":  email,
		"status": status,
	})
	return err
}

// SignUp creates the authentication identity and returns the session minted
// for it.
func (c *Client) SignUp(ctx context.Context, email, password, firstName, lastName string) (*Session, error) {
	data, err := c.post(ctx, "sign up", "/auth/signup", "", map[string]string{
		"email":      email,
		"password":   password,
		"first_name": firstName,
		"last_name":  lastName,
	})
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusConflict {
			return nil, ErrEmailAlreadyInUse
		}
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("sign up: decode response: %w", err)
	}
	if session.Token == "" {
		return nil, fmt.Errorf("sign up: backend returned no session token")
	}
	return &session, nil
}

// CreateProfile creates the profile record for the session's account.
func (c *Client) CreateProfile(ctx context.Context, session *Session, firstName, lastName string) error {
	_, err := c.post(ctx, "create profile", "/profiles", session.Token, map[string]string{
		"first_name": firstName,
		"last_name":  lastName,
	})
	return err
}
