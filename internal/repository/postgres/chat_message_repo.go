package postgres

import (
	"context"
	"database/sql"

	"clientdesk/internal/domain"
)

type chatMessageRepository struct {
	DB *sql.DB
}

func NewChatMessageRepository(db *sql.DB) domain.ChatMessageRepository {
	return &chatMessageRepository{DB: db}
}

func (r *chatMessageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, room_id, sender_id, sender_role, body, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.DB.ExecContext(ctx, query, msg.ID, msg.RoomID, msg.SenderID, msg.SenderRole, msg.Body, msg.SentAt)
	return err
}

func (r *chatMessageRepository) ListByRoomID(ctx context.Context, roomID string, limit int) ([]*domain.ChatMessage, error) {
	// Newest rows win the limit; results are returned oldest-first for display.
	query := `
		SELECT id, room_id, sender_id, sender_role, body, sent_at
		FROM (
			SELECT id, room_id, sender_id, sender_role, body, sent_at
			FROM chat_messages
			WHERE room_id = $1
			ORDER BY sent_at DESC
			LIMIT $2
		) recent
		ORDER BY sent_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*domain.ChatMessage
	for rows.Next() {
		msg := &domain.ChatMessage{}
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.SenderRole, &msg.Body, &msg.SentAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []*domain.ChatMessage{}
	}
	return msgs, nil
}
