package client

import (
	"sync"
	"time"
)

// typingTTL bounds how long a typing indicator stays lit without a refresh.
// A sender that disconnects mid-keystroke never sends "stop typing", so the
// receiver expires the indicator on its own.
const typingTTL = 4 * time.Second

// TypingTracker maintains per-chat typing indicators on the receiving side.
type TypingTracker struct {
	mu     sync.Mutex
	ttl    time.Duration
	timers map[string]*time.Timer

	// onChange fires outside the lock whenever a chat's indicator flips.
	onChange func(chatID string, typing bool)
}

func NewTypingTracker(onChange func(chatID string, typing bool)) *TypingTracker {
	return &TypingTracker{
		ttl:      typingTTL,
		timers:   make(map[string]*time.Timer),
		onChange: onChange,
	}
}

// Typing lights the indicator for chatID and restarts its expiry clock.
func (t *TypingTracker) Typing(chatID string) {
	t.mu.Lock()
	timer, lit := t.timers[chatID]
	if lit {
		timer.Reset(t.ttl)
		t.mu.Unlock()
		return
	}
	t.timers[chatID] = time.AfterFunc(t.ttl, func() {
		t.expire(chatID)
	})
	t.mu.Unlock()

	if t.onChange != nil {
		t.onChange(chatID, true)
	}
}

// StopTyping clears the indicator immediately.
func (t *TypingTracker) StopTyping(chatID string) {
	t.mu.Lock()
	timer, lit := t.timers[chatID]
	if lit {
		timer.Stop()
		delete(t.timers, chatID)
	}
	t.mu.Unlock()

	if lit && t.onChange != nil {
		t.onChange(chatID, false)
	}
}

func (t *TypingTracker) expire(chatID string) {
	t.mu.Lock()
	_, lit := t.timers[chatID]
	delete(t.timers, chatID)
	t.mu.Unlock()

	if lit && t.onChange != nil {
		t.onChange(chatID, false)
	}
}

// IsTyping reports whether chatID's indicator is currently lit.
func (t *TypingTracker) IsTyping(chatID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, lit := t.timers[chatID]
	return lit
}

// Close clears every indicator without firing callbacks.
func (t *TypingTracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for chatID, timer := range t.timers {
		timer.Stop()
		delete(t.timers, chatID)
	}
}
