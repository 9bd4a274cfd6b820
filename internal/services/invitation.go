package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"clientdesk/internal/domain"
)

const inviteLinkParam = "token"

type invitationService struct {
	invitationRepo domain.InvitationRepository
	tokenIssuer    domain.InviteTokenIssuer
	tokenVerifier  domain.InviteTokenVerifier
	emailService   domain.EmailService
	inviteTTL      time.Duration
	baseURL        string
}

// NewInvitationService creates an InvitationService. baseURL is the invitation
// landing page; the invite token is appended as a query parameter.
func NewInvitationService(
	invitationRepo domain.InvitationRepository,
	tokenIssuer domain.InviteTokenIssuer,
	tokenVerifier domain.InviteTokenVerifier,
	emailService domain.EmailService,
	inviteTTL time.Duration,
	baseURL string,
) domain.InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		tokenIssuer:    tokenIssuer,
		tokenVerifier:  tokenVerifier,
		emailService:   emailService,
		inviteTTL:      inviteTTL,
		baseURL:        baseURL,
	}
}

func (s *invitationService) Invite(ctx context.Context, email, firstName, lastName string) (*domain.Invitation, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}

	// Re-inviting supersedes any pending invitation: decisions always
	// resolve against the latest pending record for the email.
	now := time.Now()
	inv := &domain.Invitation{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Status:    domain.InvitationStatusPending,
		SentAt:    now,
		ExpiresAt: now.Add(s.inviteTTL),
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	token, err := s.tokenIssuer.Issue(domain.InviteeIdentity{
		Email:     inv.Email,
		FirstName: inv.FirstName,
		LastName:  inv.LastName,
	}, s.inviteTTL)
	if err != nil {
		return nil, fmt.Errorf("issue invite token: %w", err)
	}

	if s.emailService != nil {
		data := &domain.InvitationEmailData{
			Email:         inv.Email,
			FirstName:     inv.FirstName,
			InviteLink:    s.inviteLink(token),
			ExpiresInDays: int(s.inviteTTL.Hours() / 24),
		}
		if err := s.emailService.SendInvitation(ctx, data); err != nil {
			return nil, fmt.Errorf("send invitation email: %w", err)
		}
	}
	return inv, nil
}

func (s *invitationService) VerifyToken(ctx context.Context, token string) (*domain.InviteeIdentity, error) {
	// The wire token arrives with a single level of percent-encoding.
	if decoded, err := url.QueryUnescape(token); err == nil {
		token = decoded
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrInvitationExpired
	}

	identity, err := s.tokenVerifier.Verify(token)
	if err != nil {
		return nil, domain.ErrInvitationExpired
	}

	inv, err := s.invitationRepo.GetLatestPendingByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if inv.IsExpired(time.Now()) {
		return nil, domain.ErrInvitationExpired
	}

	// Names on the record win over names baked into the token; an admin may
	// have corrected them after the invite was sent.
	result := &domain.InviteeIdentity{
		Email:     inv.Email,
		FirstName: inv.FirstName,
		LastName:  inv.LastName,
	}
	if result.FirstName == "" {
		result.FirstName = identity.FirstName
	}
	if result.LastName == "" {
		result.LastName = identity.LastName
	}
	return result, nil
}

func (s *invitationService) UpdateStatus(ctx context.Context, email, status string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.ErrInvalidInput
	}
	if status != domain.InvitationStatusAccepted && status != domain.InvitationStatusRejected {
		return domain.ErrInvalidInput
	}

	inv, err := s.invitationRepo.GetLatestPendingByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationNotFound) {
			return domain.ErrInvitationNotFound
		}
		return fmt.Errorf("get invitation: %w", err)
	}
	if err := s.invitationRepo.UpdateStatus(ctx, inv.ID, status, time.Now()); err != nil {
		return fmt.Errorf("update invitation status: %w", err)
	}
	return nil
}

func (s *invitationService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	invs, total, err := s.invitationRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list invitations: %w", err)
	}
	return invs, total, nil
}

func (s *invitationService) inviteLink(token string) string {
	return s.baseURL + "?" + inviteLinkParam + "=" + url.QueryEscape(token)
}
