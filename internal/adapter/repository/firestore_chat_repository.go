package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"chatwave/internal/domain/entity"
	"chatwave/internal/domain/repository"
	"chatwave/pkg/errors"
	"chatwave/pkg/logger"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}

	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now

	_, err := r.client.Collection("chats").Doc(chat.ID).Set(ctx, chat)
	if err != nil {
		return errors.Internal("Failed to create chat", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	doc, err := r.client.Collection("chats").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, errors.Internal("Failed to get chat", err)
	}

	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}

	return &chat, nil
}

func (r *firestoreChatRepository) ListByUserID(ctx context.Context, userID string) ([]*entity.Chat, error) {
	query := r.client.Collection("chats").Where("members", "array-contains", userID).OrderBy("updatedAt", firestore.Desc)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while fetching chats for user %s: %v", userID, err)
		return nil, errors.Internal("Failed to fetch chats", err)
	}

	var chats []*entity.Chat
	for _, doc := range docs {
		var chat entity.Chat
		if err := doc.DataTo(&chat); err != nil {
			logger.Warn("Skipping malformed chat document for user %s: %v", userID, err)
			continue
		}
		chats = append(chats, &chat)
	}

	return chats, nil
}

// Update writes the chat's mutable fields. Field-level paths, not a full
// Set: the latest-message pointer is owned by SetLatestMessage's
// transaction, and rewriting the whole document here could clobber a
// pointer moved after this chat was read.
func (r *firestoreChatRepository) Update(ctx context.Context, chat *entity.Chat) error {
	chat.UpdatedAt = time.Now()

	_, err := r.client.Collection("chats").Doc(chat.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: chat.Name},
		{Path: "members", Value: chat.Members},
		{Path: "adminId", Value: chat.AdminID},
		{Path: "updatedAt", Value: chat.UpdatedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Chat", err)
		}
		return errors.Internal("Failed to update chat", err)
	}

	return nil
}

// FindDirectChat looks up the one-on-one chat shared by the given pair. The
// member pair is unordered, so both documents' member slices are compared
// sorted.
func (r *firestoreChatRepository) FindDirectChat(ctx context.Context, userIDA, userIDB string) (*entity.Chat, error) {
	pair := []string{userIDA, userIDB}
	sort.Strings(pair)

	query := r.client.Collection("chats").
		Where("isGroup", "==", false).
		Where("members", "array-contains", userIDA)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to query direct chats", err)
	}

	for _, doc := range docs {
		var chat entity.Chat
		if err := doc.DataTo(&chat); err != nil {
			continue
		}

		if len(chat.Members) != 2 {
			continue
		}
		members := []string{chat.Members[0], chat.Members[1]}
		sort.Strings(members)

		if members[0] == pair[0] && members[1] == pair[1] {
			return &chat, nil
		}
	}

	return nil, errors.NotFound("Direct chat", nil)
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.client.Collection("chats").Doc(message.ChatID).Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetMessageByID(ctx context.Context, chatID, messageID string) (*entity.Message, error) {
	doc, err := r.client.Collection("chats").Doc(chatID).Collection("messages").Doc(messageID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}

	return &message, nil
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, chatID string) ([]*entity.Message, error) {
	query := r.client.Collection("chats").Doc(chatID).Collection("messages").OrderBy("createdAt", firestore.Asc)

	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating messages for chat %s: %v", chatID, err)
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Error("Error parsing message data for chat %s: %v", chatID, err)
			return nil, errors.Internal("Failed to parse message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, nil
}

// SetLatestMessage moves the chat's latest-message pointer to the given
// message. Runs in a transaction so that when two sends race, the message
// with the later CreatedAt keeps the pointer and the stale write is a no-op.
func (r *firestoreChatRepository) SetLatestMessage(ctx context.Context, chatID string, message *entity.Message) error {
	chatRef := r.client.Collection("chats").Doc(chatID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(chatRef)
		if err != nil {
			return err
		}

		var chat entity.Chat
		if err := doc.DataTo(&chat); err != nil {
			return err
		}

		if message.CreatedAt.Before(chat.LatestMessageAt) {
			return nil // A newer message already holds the pointer
		}

		return tx.Update(chatRef, []firestore.Update{
			{Path: "latestMessageId", Value: message.ID},
			{Path: "latestMessageAt", Value: message.CreatedAt},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Chat", err)
		}
		return errors.Internal("Failed to set latest message", err)
	}

	return nil
}

// RecomputeLatestMessage re-derives the latest-message pointer from message
// history. Recovery path for a crash that landed between message append and
// pointer update.
func (r *firestoreChatRepository) RecomputeLatestMessage(ctx context.Context, chatID string) error {
	query := r.client.Collection("chats").Doc(chatID).Collection("messages").
		OrderBy("createdAt", firestore.Desc).Limit(1)

	iter := query.Documents(ctx)
	doc, err := iter.Next()
	if err != nil {
		if err == iterator.Done {
			return nil // No messages yet, nothing to reconcile
		}
		return errors.Internal("Failed to query newest message", err)
	}

	var newest entity.Message
	if err := doc.DataTo(&newest); err != nil {
		return errors.Internal("Failed to parse message data", err)
	}

	return r.SetLatestMessage(ctx, chatID, &newest)
}
