package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"clientdesk/internal/domain"
)

type profileService struct {
	profileRepo domain.ProfileRepository
}

// NewProfileService creates a ProfileService with the given repository.
func NewProfileService(profileRepo domain.ProfileRepository) domain.ProfileService {
	return &profileService{profileRepo: profileRepo}
}

func (s *profileService) Create(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	if !emailRegexp.MatchString(p.Email) {
		return nil, fmt.Errorf("invalid email format")
	}

	// Account provisioning may have already created the record, or crashed
	// after creating only the identity. Creating twice is a no-op update.
	if existing, err := s.profileRepo.GetByEmail(ctx, p.Email); err == nil {
		existing.FirstName = strings.TrimSpace(p.FirstName)
		existing.LastName = strings.TrimSpace(p.LastName)
		existing.Company = strings.TrimSpace(p.Company)
		existing.Phone = strings.TrimSpace(p.Phone)
		existing.UpdatedAt = time.Now()
		if err := s.profileRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		return existing, nil
	} else if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	now := time.Now()
	p.ID = uuid.NewString()
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.profileRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

func (s *profileService) GetOrCreateByEmail(ctx context.Context, email string) (*domain.Profile, bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, false, domain.ErrInvalidInput
	}

	profile, err := s.profileRepo.GetByEmail(ctx, email)
	if err == nil {
		return profile, false, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, false, fmt.Errorf("get profile: %w", err)
	}

	// Recovery path: an identity exists but its profile record was never
	// written (provisioning stopped midway). Create an empty one now.
	now := time.Now()
	profile = &domain.Profile{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, false, fmt.Errorf("create profile: %w", err)
	}
	return profile, true, nil
}

func (s *profileService) Update(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	existing, err := s.profileRepo.GetByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	existing.FirstName = strings.TrimSpace(p.FirstName)
	existing.LastName = strings.TrimSpace(p.LastName)
	existing.Company = strings.TrimSpace(p.Company)
	existing.Phone = strings.TrimSpace(p.Phone)
	existing.UpdatedAt = time.Now()
	if err := s.profileRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return existing, nil
}
