package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"clientdesk/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestChatMessageRepository_Create(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	msg := &domain.ChatMessage{
		ID:         "msg-1",
		RoomID:     "room-1",
		SenderID:   "user-1",
		SenderRole: "client",
		Body:       "hello",
		SentAt:     now,
	}
	mock.ExpectExec(`INSERT INTO chat_messages`).
		WithArgs("msg-1", "room-1", "user-1", "client", "hello", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewChatMessageRepository(db)
	require.NoError(t, repo.Create(ctx, msg))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChatMessageRepository_ListByRoomID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "room_id", "sender_id", "sender_role", "body", "sent_at"}).
		AddRow("msg-1", "room-1", "user-1", "client", "hi", now.Add(-time.Minute)).
		AddRow("msg-2", "room-1", "admin-1", "admin", "hello", now)
	mock.ExpectQuery(`SELECT id, room_id, sender_id, sender_role, body, sent_at`).
		WithArgs("room-1", 50).
		WillReturnRows(rows)

	repo := NewChatMessageRepository(db)
	msgs, err := repo.ListByRoomID(ctx, "room-1", 50)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "msg-1", msgs[0].ID)
	require.Equal(t, "admin", msgs[1].SenderRole)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChatMessageRepository_ListByRoomID_Empty(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, room_id, sender_id, sender_role, body, sent_at`).
		WithArgs("room-9", 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_id", "sender_id", "sender_role", "body", "sent_at"}))

	repo := NewChatMessageRepository(db)
	msgs, err := repo.ListByRoomID(ctx, "room-9", 50)
	require.NoError(t, err)
	require.NotNil(t, msgs)
	require.Empty(t, msgs)
	require.NoError(t, mock.ExpectationsWereMet())
}
