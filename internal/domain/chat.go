package domain

import (
	"context"
	"time"
)

// ChatMessage is a single message in an admin/client conversation room.
// swagger:model ChatMessage
type ChatMessage struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	SenderID   string    `json:"sender_id"`
	SenderRole string    `json:"sender_role"`
	Body       string    `json:"body"`
	SentAt     time.Time `json:"sent_at"`
}

// ChatMessageRepository defines storage operations for chat messages.
type ChatMessageRepository interface {
	Create(ctx context.Context, msg *ChatMessage) error
	ListByRoomID(ctx context.Context, roomID string, limit int) ([]*ChatMessage, error)
}

// ChatService defines the business logic for the admin/client chat.
type ChatService interface {
	// Post persists the message and broadcasts it to the room.
	Post(ctx context.Context, roomID, senderID, senderRole, body string) (*ChatMessage, error)
	History(ctx context.Context, roomID string, limit int) ([]*ChatMessage, error)
}
