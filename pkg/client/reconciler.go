package client

import (
	"sync"

	ws "chatwave/internal/infrastructure/websocket"
)

// Notification marks an unread message in a chat the user is not currently
// viewing.
type Notification struct {
	MessageID string     `json:"message_id"`
	ChatID    string     `json:"chat_id"`
	Sender    ws.UserRef `json:"sender"`
}

// Reconciler routes received messages into either the active chat's message
// list or the unread notification list. Retried deliveries are common on
// reconnect, so notifications are deduplicated by message ID.
type Reconciler struct {
	mu            sync.Mutex
	activeChat    string
	messages      []ws.MessagePayload
	notifications []Notification
	seen          map[string]struct{}
}

func NewReconciler() *Reconciler {
	return &Reconciler{
		seen: make(map[string]struct{}),
	}
}

// Receive files an incoming message. It returns true when the message was
// appended to the active chat, false when it became a notification (or was
// a duplicate).
func (r *Reconciler) Receive(msg *ws.MessagePayload) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.Chat.ID == r.activeChat && r.activeChat != "" {
		r.messages = append(r.messages, *msg)
		return true
	}

	if _, dup := r.seen[msg.ID]; dup {
		return false
	}
	r.seen[msg.ID] = struct{}{}
	r.notifications = append(r.notifications, Notification{
		MessageID: msg.ID,
		ChatID:    msg.Chat.ID,
		Sender:    msg.Sender,
	})
	return false
}

// Select makes chatID the active chat and clears its pending notifications.
// The caller is expected to load the chat's history separately.
func (r *Reconciler) Select(chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.activeChat = chatID
	r.messages = nil

	kept := r.notifications[:0]
	for _, n := range r.notifications {
		if n.ChatID == chatID {
			delete(r.seen, n.MessageID)
			continue
		}
		kept = append(kept, n)
	}
	r.notifications = kept
}

// ActiveChat returns the currently selected chat, or "" when none is open.
func (r *Reconciler) ActiveChat() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeChat
}

// Messages returns the messages appended to the active chat since it was
// selected.
func (r *Reconciler) Messages() []ws.MessagePayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ws.MessagePayload, len(r.messages))
	copy(out, r.messages)
	return out
}

// Notifications returns pending unread notifications, oldest first.
func (r *Reconciler) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}

// Badge is the unread count shown on the notification indicator. It is
// recomputed from the list rather than tracked incrementally.
func (r *Reconciler) Badge() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notifications)
}
