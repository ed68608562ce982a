package websocket

import (
	"sync"
	"time"
)

const (
	// Minimum gap between relayed "typing" events per chat. Keystrokes
	// inside the window refresh the stop timer but emit nothing.
	typingThrottle = 1000 * time.Millisecond

	// Quiet interval after the last keystroke before "stop typing" is
	// relayed on the sender's behalf.
	typingQuiet = 3000 * time.Millisecond
)

// typingCoordinator runs the IDLE/TYPING state machine for one connection.
// Each chat the connection types into gets its own session; sessions are
// ephemeral and die with the connection.
type typingCoordinator struct {
	mu       sync.Mutex
	throttle time.Duration
	quiet    time.Duration
	relay    func(chatID string, typing bool)
	sessions map[string]*typingSession
}

type typingSession struct {
	lastRelay time.Time
	stop      *time.Timer
}

func newTypingCoordinator(throttle, quiet time.Duration, relay func(chatID string, typing bool)) *typingCoordinator {
	return &typingCoordinator{
		throttle: throttle,
		quiet:    quiet,
		relay:    relay,
		sessions: make(map[string]*typingSession),
	}
}

// Keystroke records input activity for a chat. The first keystroke, and any
// keystroke after the throttle window, relays "typing"; every keystroke
// resets the single-shot stop timer.
func (t *typingCoordinator) Keystroke(chatID string) {
	t.mu.Lock()

	sess, ok := t.sessions[chatID]
	now := time.Now()

	relayStart := false
	if !ok {
		sess = &typingSession{lastRelay: now}
		sess.stop = time.AfterFunc(t.quiet, func() { t.expire(chatID) })
		t.sessions[chatID] = sess
		relayStart = true
	} else {
		if now.Sub(sess.lastRelay) > t.throttle {
			sess.lastRelay = now
			relayStart = true
		}
		sess.stop.Reset(t.quiet)
	}

	t.mu.Unlock()

	if relayStart {
		t.relay(chatID, true)
	}
}

// expire fires when the quiet interval elapses without a keystroke.
func (t *typingCoordinator) expire(chatID string) {
	t.mu.Lock()
	sess, ok := t.sessions[chatID]
	if ok {
		delete(t.sessions, chatID)
	}
	t.mu.Unlock()

	if ok && sess != nil {
		t.relay(chatID, false)
	}
}

// Stop forces TYPING back to IDLE, regardless of timer state. Used when the
// sender switches chats or explicitly stops. A chat that was already idle
// relays nothing.
func (t *typingCoordinator) Stop(chatID string) {
	t.mu.Lock()
	sess, ok := t.sessions[chatID]
	if ok {
		sess.stop.Stop()
		delete(t.sessions, chatID)
	}
	t.mu.Unlock()

	if ok {
		t.relay(chatID, false)
	}
}

// StopAll cancels every live session. Called on disconnect; the stop relays
// are best-effort since receivers expire stale indicators on their own.
func (t *typingCoordinator) StopAll() {
	t.mu.Lock()
	chats := make([]string, 0, len(t.sessions))
	for chatID, sess := range t.sessions {
		sess.stop.Stop()
		chats = append(chats, chatID)
	}
	t.sessions = make(map[string]*typingSession)
	t.mu.Unlock()

	for _, chatID := range chats {
		t.relay(chatID, false)
	}
}
