package domain

import (
	"context"
	"errors"
	"time"
)

// Invitation statuses. An invitation is pending until the invitee records a
// decision; the backend is the source of truth for whether a decision has
// already been recorded.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusRejected = "rejected"
)

// Sentinel errors for invitation operations.
var (
	ErrInvitationNotFound = errors.New("no pending invitation for this email")
	ErrInvitationExpired  = errors.New("invalid or expired token")
)

// Invitation represents an email invited to join the platform.
// swagger:model Invitation
type Invitation struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Status    string     `json:"status"`
	SentAt    time.Time  `json:"sent_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

// IsExpired reports whether the invitation has passed its expiry.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsDecided reports whether the invitee has already accepted or rejected.
func (i *Invitation) IsDecided() bool {
	return i.DecidedAt != nil
}

// InviteeIdentity is the identity resolved from a valid invitation token.
// swagger:model InviteeIdentity
type InviteeIdentity struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// InviteTokenIssuer issues bearer tokens that identify a pending invitation.
type InviteTokenIssuer interface {
	Issue(identity InviteeIdentity, expiry time.Duration) (string, error)
}

// InviteTokenVerifier verifies an invitation token and returns the identity
// embedded in it. Verification failures (bad signature, expiry) must be
// reported as ErrInvitationExpired.
type InviteTokenVerifier interface {
	Verify(token string) (InviteeIdentity, error)
}

// InvitationRepository defines storage operations for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	// GetLatestPendingByEmail returns the most recently sent pending
	// invitation for the email, or ErrInvitationNotFound.
	GetLatestPendingByEmail(ctx context.Context, email string) (*Invitation, error)
	// UpdateStatus records the decision on the given invitation.
	UpdateStatus(ctx context.Context, id, status string, decidedAt time.Time) error
	List(ctx context.Context, params PaginationParams) ([]*Invitation, int, error)
}

// InvitationService defines the business logic for the invitation lifecycle.
type InvitationService interface {
	// Invite creates a pending invitation and emails the invite link.
	Invite(ctx context.Context, email, firstName, lastName string) (*Invitation, error)
	// VerifyToken exchanges a (singly percent-encoded) token for the
	// invitee identity behind it.
	VerifyToken(ctx context.Context, token string) (*InviteeIdentity, error)
	// UpdateStatus records the invitee's decision against the latest
	// pending invitation for the email.
	UpdateStatus(ctx context.Context, email, status string) error
	List(ctx context.Context, params PaginationParams) ([]*Invitation, int, error)
}
