package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatwave/internal/domain/entity"
	"chatwave/pkg/errors"
)

// In-memory repository doubles mirroring the Firestore implementations'
// contract: uuid IDs assigned on create, NOT_FOUND AppErrors, unordered-pair
// lookup for direct chats, later-timestamp-wins latest pointer.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*entity.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *memUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Search(ctx context.Context, keyword, excludeUserID string) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(keyword)
	var out []*entity.User
	for _, user := range r.users {
		if user.ID == excludeUserID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(user.Name), needle) &&
			!strings.Contains(strings.ToLower(user.Email), needle) {
			continue
		}
		clone := *user
		out = append(out, &clone)
	}
	return out, nil
}

type memChatRepo struct {
	mu       sync.Mutex
	chats    map[string]*entity.Chat
	messages map[string][]*entity.Message

	latestFails bool // simulate a crash between append and pointer update
	recomputed  []string
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{
		chats:    make(map[string]*entity.Chat),
		messages: make(map[string][]*entity.Message),
	}
}

func (r *memChatRepo) Create(ctx context.Context, chat *entity.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	clone := *chat
	r.chats[chat.ID] = &clone
	return nil
}

func (r *memChatRepo) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	clone := *chat
	return &clone, nil
}

func (r *memChatRepo) ListByUserID(ctx context.Context, userID string) ([]*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Chat
	for _, chat := range r.chats {
		if chat.HasMember(userID) {
			clone := *chat
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Update writes only the mutable fields, like the Firestore implementation:
// the latest-message pointer belongs to SetLatestMessage and a stale caller
// copy must not clobber it.
func (r *memChatRepo) Update(ctx context.Context, chat *entity.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.chats[chat.ID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}
	chat.UpdatedAt = time.Now()
	stored.Name = chat.Name
	stored.Members = append([]string(nil), chat.Members...)
	stored.AdminID = chat.AdminID
	stored.UpdatedAt = chat.UpdatedAt
	return nil
}

func (r *memChatRepo) FindDirectChat(ctx context.Context, userIDA, userIDB string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, chat := range r.chats {
		if chat.IsGroup || len(chat.Members) != 2 {
			continue
		}
		if (chat.Members[0] == userIDA && chat.Members[1] == userIDB) ||
			(chat.Members[0] == userIDB && chat.Members[1] == userIDA) {
			clone := *chat
			return &clone, nil
		}
	}
	return nil, errors.NotFound("Chat", nil)
}

func (r *memChatRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chats[message.ChatID]; !ok {
		return errors.NotFound("Chat", nil)
	}
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	clone := *message
	r.messages[message.ChatID] = append(r.messages[message.ChatID], &clone)
	return nil
}

func (r *memChatRepo) GetMessageByID(ctx context.Context, chatID, messageID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages[chatID] {
		if msg.ID == messageID {
			clone := *msg
			return &clone, nil
		}
	}
	return nil, errors.NotFound("Message", nil)
}

func (r *memChatRepo) ListMessages(ctx context.Context, chatID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[chatID]
	out := make([]*entity.Message, len(msgs))
	for i, msg := range msgs {
		clone := *msg
		out[i] = &clone
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memChatRepo) SetLatestMessage(ctx context.Context, chatID string, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latestFails {
		return errors.Internal("simulated outage", nil)
	}
	chat, ok := r.chats[chatID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}
	if message.CreatedAt.Before(chat.LatestMessageAt) {
		return nil // stale update, ignored
	}
	chat.LatestMessageID = message.ID
	chat.LatestMessageAt = message.CreatedAt
	chat.UpdatedAt = message.CreatedAt
	return nil
}

func (r *memChatRepo) RecomputeLatestMessage(ctx context.Context, chatID string) error {
	r.mu.Lock()
	r.recomputed = append(r.recomputed, chatID)
	msgs := r.messages[chatID]
	chat, ok := r.chats[chatID]
	if !ok {
		r.mu.Unlock()
		return errors.NotFound("Chat", nil)
	}
	var newest *entity.Message
	for _, msg := range msgs {
		if newest == nil || msg.CreatedAt.After(newest.CreatedAt) {
			newest = msg
		}
	}
	if newest != nil {
		chat.LatestMessageID = newest.ID
		chat.LatestMessageAt = newest.CreatedAt
	}
	r.mu.Unlock()
	return nil
}

// fakeTokenManager hands out predictable tokens keyed by user ID.
type fakeTokenManager struct{}

func (fakeTokenManager) Generate(userID string) (string, error) {
	return "token-" + userID, nil
}

func (fakeTokenManager) Verify(token string) (string, error) {
	if !strings.HasPrefix(token, "token-") {
		return "", errors.Unauthorized("Invalid or expired token", nil)
	}
	return strings.TrimPrefix(token, "token-"), nil
}
