package usecase

import (
	"context"

	"chatwave/internal/domain/entity"
	"chatwave/internal/domain/repository"
	"chatwave/internal/infrastructure/ratelimit"
	"chatwave/pkg/errors"
	"chatwave/pkg/logger"
)

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(chatRepo repository.ChatRepository, userRepo repository.UserRepository, rateLimiter *ratelimit.RateLimiter) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		rateLimiter: rateLimiter,
	}
}

type CreateGroupChatInput struct {
	Name      string
	MemberIDs []string
}

// ChatResponse is a chat hydrated with its member profiles and latest
// message for list rendering.
type ChatResponse struct {
	*entity.Chat
	MemberUsers   []*entity.User  `json:"member_users,omitempty"`
	LatestMessage *entity.Message `json:"latest_message,omitempty"`
	Admin         *entity.User    `json:"admin,omitempty"`
}

// AccessChat returns the direct chat between the caller and the other user,
// creating it on first contact. The unordered pair is the chat's identity:
// calling this twice, in either order, yields the same chat.
func (uc *ChatUseCase) AccessChat(ctx context.Context, userID, otherUserID string) (*ChatResponse, error) {
	if otherUserID == "" {
		return nil, errors.BadRequest("user_id is required", nil)
	}
	if userID == otherUserID {
		return nil, errors.BadRequest("You cannot chat with yourself", nil)
	}

	if _, err := uc.userRepo.GetByID(ctx, otherUserID); err != nil {
		return nil, err
	}

	chat, err := uc.chatRepo.FindDirectChat(ctx, userID, otherUserID)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}

		if allowed, wait := uc.rateLimiter.Allow(userID, "create_chat"); !allowed {
			logger.Warn("AccessChat rate limited: user %s must wait %v", userID, wait)
			return nil, errors.TooManyRequests("Too many new chats, slow down")
		}

		chat = &entity.Chat{
			IsGroup: false,
			Members: []string{userID, otherUserID},
		}
		if err := uc.chatRepo.Create(ctx, chat); err != nil {
			return nil, err
		}
	}

	return uc.hydrate(ctx, chat), nil
}

// ListChats returns the caller's chats, most recently active first.
func (uc *ChatUseCase) ListChats(ctx context.Context, userID string) ([]*ChatResponse, error) {
	chats, err := uc.chatRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*ChatResponse, 0, len(chats))
	for _, chat := range chats {
		responses = append(responses, uc.hydrate(ctx, chat))
	}

	return responses, nil
}

func (uc *ChatUseCase) GetChat(ctx context.Context, userID, chatID string) (*ChatResponse, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if !chat.HasMember(userID) {
		return nil, errors.Forbidden("You are not a member of this chat", nil)
	}

	return uc.hydrate(ctx, chat), nil
}

// CreateGroupChat creates a group with the caller as admin. A group needs at
// least two other members, three counting the creator.
func (uc *ChatUseCase) CreateGroupChat(ctx context.Context, creatorID string, input CreateGroupChatInput) (*ChatResponse, error) {
	if input.Name == "" {
		return nil, errors.BadRequest("Group name is required", nil)
	}

	members := []string{creatorID}
	seen := map[string]bool{creatorID: true}
	for _, id := range input.MemberIDs {
		if id == "" || seen[id] {
			continue
		}
		if _, err := uc.userRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
		members = append(members, id)
		seen[id] = true
	}

	if len(members) < 3 {
		return nil, errors.BadRequest("A group chat needs at least two other members", nil)
	}

	if allowed, wait := uc.rateLimiter.Allow(creatorID, "create_chat"); !allowed {
		logger.Warn("CreateGroupChat rate limited: user %s must wait %v", creatorID, wait)
		return nil, errors.TooManyRequests("Too many new chats, slow down")
	}

	chat := &entity.Chat{
		Name:    input.Name,
		IsGroup: true,
		Members: members,
		AdminID: creatorID,
	}

	if err := uc.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}

	return uc.hydrate(ctx, chat), nil
}

func (uc *ChatUseCase) RenameGroup(ctx context.Context, userID, chatID, name string) (*ChatResponse, error) {
	if name == "" {
		return nil, errors.BadRequest("Group name is required", nil)
	}

	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if !chat.IsGroup {
		return nil, errors.BadRequest("Direct chats cannot be renamed", nil)
	}
	if !chat.HasMember(userID) {
		return nil, errors.Forbidden("You are not a member of this chat", nil)
	}

	chat.Name = name
	if err := uc.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}

	return uc.hydrate(ctx, chat), nil
}

// AddMember adds a user to a group. Only the group admin may add members.
func (uc *ChatUseCase) AddMember(ctx context.Context, requesterID, chatID, userID string) (*ChatResponse, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if !chat.IsGroup {
		return nil, errors.BadRequest("Members can only be added to group chats", nil)
	}
	if chat.AdminID != requesterID {
		return nil, errors.Forbidden("Only the group admin can add members", nil)
	}
	if chat.HasMember(userID) {
		return nil, errors.Conflict("User is already a member")
	}

	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	chat.Members = append(chat.Members, userID)
	if err := uc.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}

	return uc.hydrate(ctx, chat), nil
}

// RemoveMember removes a user from a group. The admin can remove anyone;
// everyone else may only remove themselves (leave). Removing the admin
// reassigns adminship to the first remaining member; removing the last
// member leaves the chat adminless and orphaned.
func (uc *ChatUseCase) RemoveMember(ctx context.Context, requesterID, chatID, userID string) (*ChatResponse, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if !chat.IsGroup {
		return nil, errors.BadRequest("Members can only be removed from group chats", nil)
	}
	if requesterID != chat.AdminID && requesterID != userID {
		return nil, errors.Forbidden("Only the group admin can remove other members", nil)
	}
	if !chat.HasMember(userID) {
		return nil, errors.NotFound("Member", nil)
	}

	remaining := make([]string, 0, len(chat.Members)-1)
	for _, id := range chat.Members {
		if id != userID {
			remaining = append(remaining, id)
		}
	}
	chat.Members = remaining

	if chat.AdminID == userID {
		if len(remaining) > 0 {
			chat.AdminID = remaining[0]
		} else {
			chat.AdminID = ""
		}
	}

	if err := uc.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}

	return uc.hydrate(ctx, chat), nil
}

// hydrate attaches member profiles and the latest message to a chat.
// Hydration is best-effort: a missing profile or message never fails the
// request, it just renders leaner.
func (uc *ChatUseCase) hydrate(ctx context.Context, chat *entity.Chat) *ChatResponse {
	resp := &ChatResponse{Chat: chat}

	for _, id := range chat.Members {
		user, err := uc.userRepo.GetByID(ctx, id)
		if err != nil {
			logger.Warn("Chat %s references unknown member %s", chat.ID, id)
			continue
		}
		resp.MemberUsers = append(resp.MemberUsers, user)
		if id == chat.AdminID {
			resp.Admin = user
		}
	}

	if chat.LatestMessageID != "" {
		msg, err := uc.chatRepo.GetMessageByID(ctx, chat.ID, chat.LatestMessageID)
		if err == nil {
			resp.LatestMessage = msg
		}
	}

	return resp
}
