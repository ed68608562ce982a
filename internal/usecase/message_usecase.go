package usecase

import (
	"context"
	"strings"
	"time"

	"chatwave/internal/domain/entity"
	"chatwave/internal/domain/repository"
	"chatwave/internal/infrastructure/ratelimit"
	ws "chatwave/internal/infrastructure/websocket"
	"chatwave/pkg/errors"
	"chatwave/pkg/logger"
)

type MessageUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	rateLimiter *ratelimit.RateLimiter
}

func NewMessageUseCase(chatRepo repository.ChatRepository, userRepo repository.UserRepository, rateLimiter *ratelimit.RateLimiter) *MessageUseCase {
	return &MessageUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		rateLimiter: rateLimiter,
	}
}

type SendMessageInput struct {
	ChatID  string
	Content string
}

// MessageResponse is the stored message hydrated with its sender, chat and
// member profiles: everything a client needs to re-emit the message as a
// "new message" event for fan-out.
type MessageResponse struct {
	*entity.Message
	Sender  *entity.User   `json:"sender"`
	Chat    *entity.Chat   `json:"chat"`
	Members []*entity.User `json:"members"`
}

// EventPayload converts the response into the realtime event shape used by
// "new message" and "message received".
func (r *MessageResponse) EventPayload() *ws.MessagePayload {
	payload := &ws.MessagePayload{
		ID:      r.ID,
		Content: r.Content,
		Sender: ws.UserRef{
			ID:        r.Sender.ID,
			Name:      r.Sender.Name,
			AvatarURL: r.Sender.AvatarURL,
		},
		Chat: ws.ChatRef{
			ID:      r.Chat.ID,
			Name:    r.Chat.Name,
			IsGroup: r.Chat.IsGroup,
		},
		CreatedAt: r.CreatedAt,
	}

	for _, member := range r.Members {
		payload.Chat.Members = append(payload.Chat.Members, ws.UserRef{
			ID:        member.ID,
			Name:      member.Name,
			AvatarURL: member.AvatarURL,
		})
	}

	return payload
}

// SendMessage durably stores a message and moves the chat's latest-message
// pointer. It never touches the realtime channel: durability precedes
// visibility, and the live broadcast is the sender connection's job once
// this returns.
func (uc *MessageUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput) (*MessageResponse, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, errors.BadRequest("Message content is required", nil)
	}
	if input.ChatID == "" {
		return nil, errors.BadRequest("chat_id is required", nil)
	}

	if allowed, wait := uc.rateLimiter.Allow(userID, "send_message"); !allowed {
		logger.Warn("SendMessage rate limited: user %s must wait %v", userID, wait)
		return nil, errors.TooManyRequests("You are sending messages too quickly")
	}

	chat, err := uc.chatRepo.GetByID(ctx, input.ChatID)
	if err != nil {
		return nil, err
	}

	if !chat.HasMember(userID) {
		return nil, errors.Forbidden("You are not a member of this chat", nil)
	}

	sender, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	message := &entity.Message{
		ChatID:    input.ChatID,
		SenderID:  userID,
		Content:   input.Content,
		CreatedAt: time.Now(),
	}

	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	// The message is durable at this point. A failed pointer update leaves
	// the chat's latest-message stale, which the next read reconciles; it
	// must not fail the send.
	if err := uc.chatRepo.SetLatestMessage(ctx, input.ChatID, message); err != nil {
		logger.Warn("SendMessage: latest-message pointer update failed for chat %s: %v", input.ChatID, err)
	} else {
		chat.LatestMessageID = message.ID
		chat.LatestMessageAt = message.CreatedAt
	}

	members := make([]*entity.User, 0, len(chat.Members))
	for _, id := range chat.Members {
		member, err := uc.userRepo.GetByID(ctx, id)
		if err != nil {
			logger.Warn("SendMessage: chat %s references unknown member %s", chat.ID, id)
			continue
		}
		members = append(members, member)
	}

	return &MessageResponse{
		Message: message,
		Sender:  sender,
		Chat:    chat,
		Members: members,
	}, nil
}

// ListMessages returns a chat's full history in send order. If the stored
// latest-message pointer lags behind the newest message — a crash landed
// between append and pointer update — the pointer is re-derived here.
func (uc *MessageUseCase) ListMessages(ctx context.Context, userID, chatID string) ([]*entity.Message, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if !chat.HasMember(userID) {
		return nil, errors.Forbidden("You are not a member of this chat", nil)
	}

	messages, err := uc.chatRepo.ListMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if len(messages) > 0 {
		newest := messages[len(messages)-1]
		if newest.CreatedAt.After(chat.LatestMessageAt) {
			logger.Warn("ListMessages: stale latest-message pointer on chat %s, reconciling", chatID)
			if err := uc.chatRepo.RecomputeLatestMessage(ctx, chatID); err != nil {
				logger.Error("ListMessages: reconciliation failed for chat %s: %v", chatID, err)
			}
		}
	}

	return messages, nil
}
