package repository

import (
	"context"

	"chatwave/internal/domain/entity"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	ListByUserID(ctx context.Context, userID string) ([]*entity.Chat, error)
	Update(ctx context.Context, chat *entity.Chat) error

	// FindDirectChat resolves a one-on-one chat by its unordered member
	// pair. Returns NOT_FOUND when no such chat exists.
	FindDirectChat(ctx context.Context, userIDA, userIDB string) (*entity.Chat, error)

	// Message operations. Messages live under their owning chat and are
	// immutable once created.
	CreateMessage(ctx context.Context, message *entity.Message) error
	GetMessageByID(ctx context.Context, chatID, messageID string) (*entity.Message, error)
	ListMessages(ctx context.Context, chatID string) ([]*entity.Message, error)

	// SetLatestMessage updates the chat's denormalized latest-message
	// pointer. Concurrent sends race on this; the message with the later
	// CreatedAt wins and stale updates are ignored.
	SetLatestMessage(ctx context.Context, chatID string, message *entity.Message) error

	// RecomputeLatestMessage re-derives the pointer from stored message
	// history, recovering from a crash between message append and pointer
	// update.
	RecomputeLatestMessage(ctx context.Context, chatID string) error
}
