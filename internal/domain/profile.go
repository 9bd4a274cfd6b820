package domain

import (
	"context"
	"errors"
	"time"
)

// ErrProfileNotFound is returned when no profile record exists for an email.
var ErrProfileNotFound = errors.New("profile not found")

// Profile is the business profile record keyed by account email. It is
// created during account provisioning; if that step was interrupted, the
// profile is lazily created the first time it is read.
// swagger:model Profile
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Company   string    `json:"company"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileRepository defines storage operations for profiles.
type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) error
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	Update(ctx context.Context, p *Profile) error
}

// ProfileService defines the business logic for profile records.
type ProfileService interface {
	Create(ctx context.Context, p *Profile) (*Profile, error)
	// GetOrCreateByEmail returns the profile for the email, creating an
	// empty one if none exists. This is the recovery path for accounts
	// whose provisioning stopped after the identity was created.
	GetOrCreateByEmail(ctx context.Context, email string) (*Profile, bool, error)
	Update(ctx context.Context, p *Profile) (*Profile, error)
}
