package postgres

import (
	"context"
	"database/sql"
	"errors"

	"clientdesk/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{DB: db}
}

func (r *profileRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, email, first_name, last_name, company, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query, p.ID, p.Email, p.FirstName, p.LastName, p.Company, p.Phone, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `
		SELECT id, email, first_name, last_name, company, phone, created_at, updated_at
		FROM profiles
		WHERE email = $1
	`
	p := &domain.Profile{}
	err := r.DB.QueryRowContext(ctx, query, email).
		Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Company, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) Update(ctx context.Context, p *domain.Profile) error {
	query := `
		UPDATE profiles
		SET first_name = $1, last_name = $2, company = $3, phone = $4, updated_at = $5
		WHERE email = $6
	`
	res, err := r.DB.ExecContext(ctx, query, p.FirstName, p.LastName, p.Company, p.Phone, p.UpdatedAt, p.Email)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
