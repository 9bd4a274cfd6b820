package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"clientdesk/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (id, email, first_name, last_name, status, sent_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.DB.ExecContext(ctx, query, inv.ID, inv.Email, inv.FirstName, inv.LastName, inv.Status, inv.SentAt, inv.ExpiresAt)
	return err
}

func (r *invitationRepository) GetLatestPendingByEmail(ctx context.Context, email string) (*domain.Invitation, error) {
	query := `
		SELECT id, email, first_name, last_name, status, sent_at, expires_at, decided_at
		FROM invitations
		WHERE email = $1 AND status = 'pending'
		ORDER BY sent_at DESC
		LIMIT 1
	`
	inv := &domain.Invitation{}
	err := r.DB.QueryRowContext(ctx, query, email).
		Scan(&inv.ID, &inv.Email, &inv.FirstName, &inv.LastName, &inv.Status, &inv.SentAt, &inv.ExpiresAt, &inv.DecidedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvitationNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id, status string, decidedAt time.Time) error {
	query := `
		UPDATE invitations
		SET status = $1, decided_at = $2
		WHERE id = $3 AND status = 'pending'
	`
	res, err := r.DB.ExecContext(ctx, query, status, decidedAt, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrInvitationNotFound
	}
	return nil
}

func (r *invitationRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM invitations`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, email, first_name, last_name, status, sent_at, expires_at, decided_at
		FROM invitations
		ORDER BY sent_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invs []*domain.Invitation
	for rows.Next() {
		inv := &domain.Invitation{}
		if err := rows.Scan(&inv.ID, &inv.Email, &inv.FirstName, &inv.LastName, &inv.Status, &inv.SentAt, &inv.ExpiresAt, &inv.DecidedAt); err != nil {
			return nil, 0, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, total, nil
}
