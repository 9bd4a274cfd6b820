package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"clientdesk/internal/domain"
)

const (
	maxChatBodyLen     = 2000
	defaultHistorySize = 50
)

// MessageBroadcaster pushes a persisted message to everyone in its room.
type MessageBroadcaster interface {
	Broadcast(msg *domain.ChatMessage)
}

type chatService struct {
	messageRepo domain.ChatMessageRepository
	broadcaster MessageBroadcaster
}

// NewChatService creates a ChatService. broadcaster may be nil, in which case
// messages are persisted without realtime delivery.
func NewChatService(messageRepo domain.ChatMessageRepository, broadcaster MessageBroadcaster) domain.ChatService {
	return &chatService{messageRepo: messageRepo, broadcaster: broadcaster}
}

func (s *chatService) Post(ctx context.Context, roomID, senderID, senderRole, body string) (*domain.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if roomID == "" || senderID == "" || body == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(body) > maxChatBodyLen {
		return nil, domain.ErrInvalidInput
	}

	msg := &domain.ChatMessage{
		ID:         uuid.NewString(),
		RoomID:     roomID,
		SenderID:   senderID,
		SenderRole: senderRole,
		Body:       body,
		SentAt:     time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("create chat message: %w", err)
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(msg)
	}
	return msg, nil
}

func (s *chatService) History(ctx context.Context, roomID string, limit int) ([]*domain.ChatMessage, error) {
	if roomID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = defaultHistorySize
	}
	msgs, err := s.messageRepo.ListByRoomID(ctx, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	if msgs == nil {
		msgs = []*domain.ChatMessage{}
	}
	return msgs, nil
}
