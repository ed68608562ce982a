package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatwave/internal/domain/entity"
	"chatwave/internal/infrastructure/ratelimit"
	"chatwave/pkg/errors"
)

func newMessageUseCaseForTest(t *testing.T) (*MessageUseCase, *memChatRepo, *entity.Chat) {
	t.Helper()
	users := newMemUserRepo()
	for _, id := range []string{"u1", "u2", "u3"} {
		require.NoError(t, users.Create(context.Background(), &entity.User{
			ID:    id,
			Name:  "User " + id,
			Email: id + "@example.com",
		}))
	}

	chats := newMemChatRepo()
	chat := &entity.Chat{IsGroup: false, Members: []string{"u1", "u2"}}
	require.NoError(t, chats.Create(context.Background(), chat))

	return NewMessageUseCase(chats, users, ratelimit.NewRateLimiter()), chats, chat
}

func TestSendMessage(t *testing.T) {
	uc, chats, chat := newMessageUseCaseForTest(t)

	resp, err := uc.SendMessage(context.Background(), "u1", SendMessageInput{
		ChatID:  chat.ID,
		Content: "hello there",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "u1", resp.SenderID)
	assert.Equal(t, "u1", resp.Sender.ID)
	assert.Len(t, resp.Members, 2)

	stored, err := chats.GetByID(context.Background(), chat.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, stored.LatestMessageID)
}

func TestSendMessageRequiresContent(t *testing.T) {
	uc, _, chat := newMessageUseCaseForTest(t)

	_, err := uc.SendMessage(context.Background(), "u1", SendMessageInput{ChatID: chat.ID, Content: "   "})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = uc.SendMessage(context.Background(), "u1", SendMessageInput{Content: "hi"})
	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestSendMessageRequiresMembership(t *testing.T) {
	uc, _, chat := newMessageUseCaseForTest(t)

	_, err := uc.SendMessage(context.Background(), "u3", SendMessageInput{ChatID: chat.ID, Content: "let me in"})
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestSendMessageUnknownChat(t *testing.T) {
	uc, _, _ := newMessageUseCaseForTest(t)

	_, err := uc.SendMessage(context.Background(), "u1", SendMessageInput{ChatID: "ghost", Content: "hi"})
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestSendMessageSurvivesPointerUpdateFailure(t *testing.T) {
	uc, chats, chat := newMessageUseCaseForTest(t)
	chats.latestFails = true

	resp, err := uc.SendMessage(context.Background(), "u1", SendMessageInput{
		ChatID:  chat.ID,
		Content: "still delivered",
	})

	// The message is durable even though the pointer update failed.
	require.NoError(t, err)

	history, err := chats.ListMessages(context.Background(), chat.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, resp.ID, history[0].ID)

	stored, err := chats.GetByID(context.Background(), chat.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.LatestMessageID)
}

func TestSendMessageEventPayload(t *testing.T) {
	uc, _, chat := newMessageUseCaseForTest(t)

	resp, err := uc.SendMessage(context.Background(), "u1", SendMessageInput{
		ChatID:  chat.ID,
		Content: "hello",
	})
	require.NoError(t, err)

	payload := resp.EventPayload()

	assert.Equal(t, resp.ID, payload.ID)
	assert.Equal(t, "u1", payload.Sender.ID)
	assert.Equal(t, chat.ID, payload.Chat.ID)
	require.Len(t, payload.Chat.Members, 2)
	assert.Equal(t, "User u1", payload.Chat.Members[0].Name)
}

func TestSendMessageRateLimited(t *testing.T) {
	uc, _, chat := newMessageUseCaseForTest(t)

	var err error
	for i := 0; i < 50; i++ {
		_, err = uc.SendMessage(context.Background(), "u1", SendMessageInput{
			ChatID:  chat.ID,
			Content: "spam",
		})
		if err != nil {
			break
		}
	}

	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
}

func TestListMessagesOrderedBySendTime(t *testing.T) {
	uc, chats, chat := newMessageUseCaseForTest(t)

	base := time.Now()
	for i, content := range []string{"first", "second", "third"} {
		msg := &entity.Message{
			ChatID:    chat.ID,
			SenderID:  "u1",
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, chats.CreateMessage(context.Background(), msg))
		require.NoError(t, chats.SetLatestMessage(context.Background(), chat.ID, msg))
	}

	history, err := uc.ListMessages(context.Background(), "u2", chat.ID)

	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "third", history[2].Content)
}

func TestListMessagesRequiresMembership(t *testing.T) {
	uc, _, chat := newMessageUseCaseForTest(t)

	_, err := uc.ListMessages(context.Background(), "u3", chat.ID)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestListMessagesReconcilesStalePointer(t *testing.T) {
	uc, chats, chat := newMessageUseCaseForTest(t)

	// Simulate a crash between message append and pointer update.
	msg := &entity.Message{
		ChatID:    chat.ID,
		SenderID:  "u1",
		Content:   "orphaned",
		CreatedAt: time.Now(),
	}
	require.NoError(t, chats.CreateMessage(context.Background(), msg))

	_, err := uc.ListMessages(context.Background(), "u1", chat.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{chat.ID}, chats.recomputed)

	stored, err := chats.GetByID(context.Background(), chat.ID)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, stored.LatestMessageID)
}

func TestListMessagesFreshPointerSkipsReconciliation(t *testing.T) {
	uc, chats, chat := newMessageUseCaseForTest(t)

	_, err := uc.SendMessage(context.Background(), "u1", SendMessageInput{ChatID: chat.ID, Content: "hi"})
	require.NoError(t, err)

	_, err = uc.ListMessages(context.Background(), "u2", chat.ID)
	require.NoError(t, err)

	assert.Empty(t, chats.recomputed)
}

func TestSetLatestMessageLaterTimestampWins(t *testing.T) {
	chats := newMemChatRepo()
	chat := &entity.Chat{Members: []string{"u1", "u2"}}
	require.NoError(t, chats.Create(context.Background(), chat))

	now := time.Now()
	newer := &entity.Message{ID: "m-new", ChatID: chat.ID, CreatedAt: now}
	older := &entity.Message{ID: "m-old", ChatID: chat.ID, CreatedAt: now.Add(-time.Minute)}

	require.NoError(t, chats.SetLatestMessage(context.Background(), chat.ID, newer))
	require.NoError(t, chats.SetLatestMessage(context.Background(), chat.ID, older))

	stored, err := chats.GetByID(context.Background(), chat.ID)
	require.NoError(t, err)
	assert.Equal(t, "m-new", stored.LatestMessageID)
}
