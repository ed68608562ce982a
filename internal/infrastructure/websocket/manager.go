package websocket

import (
	"sync"

	"github.com/gorilla/websocket"

	"chatwave/pkg/logger"
)

// Manager owns the room directory and the fan-out engine and dispatches
// every inbound frame for every connection. All connection state lives on
// the Client itself; the manager holds nothing per-user beyond room
// membership.
type Manager struct {
	rooms  *RoomDirectory
	fanout *Fanout

	mu      sync.Mutex
	clients map[*Client]struct{}
}

func NewManager() *Manager {
	rooms := NewRoomDirectory()
	return &Manager{
		rooms:   rooms,
		fanout:  NewFanout(rooms),
		clients: make(map[*Client]struct{}),
	}
}

// Rooms exposes the directory for tests and diagnostics.
func (m *Manager) Rooms() *RoomDirectory {
	return m.rooms
}

// Connect wraps an upgraded connection in a client session. userID is the
// identity verified at upgrade time, not whatever the peer later claims.
func (m *Manager) Connect(userID string, conn *websocket.Conn) *Client {
	c := &Client{
		UserID:  userID,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		manager: m,
	}
	c.typing = newTypingCoordinator(typingThrottle, typingQuiet, func(chatID string, typing bool) {
		m.relayTyping(c, chatID, typing)
	})

	m.mu.Lock()
	m.clients[c] = struct{}{}
	m.mu.Unlock()

	logger.Info("WebSocket: connection established for user %s", userID)
	return c
}

// Disconnect tears the session down: cancels typing timers, leaves every
// room, closes the outbound queue. Safe even if setup never completed.
func (m *Manager) Disconnect(c *Client) {
	m.mu.Lock()
	if _, ok := m.clients[c]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.clients, c)
	m.mu.Unlock()

	c.typing.StopAll()
	m.rooms.LeaveAll(c)
	c.close()

	logger.Info("WebSocket: connection closed for user %s", c.UserID)
}

// HandleFrame decodes and dispatches one inbound frame. Malformed payloads
// are logged and answered with an error frame; they never take the
// connection down.
func (m *Manager) HandleFrame(c *Client, raw []byte) {
	frame, err := DecodeFrame(raw)
	if err != nil {
		logger.Warn("WebSocket: dropping frame from user %s: %v", c.UserID, err)
		m.sendError(c, "malformed frame")
		return
	}

	payload, err := frame.Payload()
	if err != nil {
		logger.Warn("WebSocket: dropping %q from user %s: %v", frame.Event, c.UserID, err)
		m.sendError(c, "malformed payload")
		return
	}

	switch frame.Event {
	case EventSetup:
		m.handleSetup(c, payload.(*SetupPayload))
	case EventJoinChat:
		m.rooms.Join(c, payload.(*ChatPayload).ChatID)
	case EventTyping:
		c.typing.Keystroke(payload.(*ChatPayload).ChatID)
	case EventStopTyping:
		c.typing.Stop(payload.(*ChatPayload).ChatID)
	case EventNewMessage:
		m.handleNewMessage(c, payload.(*MessagePayload))
	default:
		// "message received" is server-to-client only
		logger.Warn("WebSocket: unexpected inbound event %q from user %s", frame.Event, c.UserID)
		m.sendError(c, "unexpected event")
	}
}

// handleSetup joins the personal room after checking the claimed identity
// against the one verified at upgrade. Idempotent; acked with "connected".
func (m *Manager) handleSetup(c *Client, p *SetupPayload) {
	if p.UserID != c.UserID {
		logger.Warn("WebSocket: setup user %s does not match authenticated user %s", p.UserID, c.UserID)
		m.sendError(c, "setup user mismatch")
		return
	}

	m.rooms.Join(c, c.UserID)

	ack, err := EncodeFrame(EventConnected, nil)
	if err != nil {
		logger.Error("WebSocket: failed to encode connected ack: %v", err)
		return
	}
	c.enqueue(ack)
}

// handleNewMessage re-broadcasts an already-persisted message. Fan-out
// failures are invisible to the sender: the send succeeded once persisted,
// and the live channel is best-effort.
func (m *Manager) handleNewMessage(c *Client, msg *MessagePayload) {
	if msg.Sender.ID != c.UserID {
		logger.Warn("WebSocket: user %s tried to fan out message %s for sender %s", c.UserID, msg.ID, msg.Sender.ID)
		return
	}

	if err := m.fanout.Deliver(msg); err != nil {
		logger.Error("WebSocket: fan-out aborted for message %s: %v", msg.ID, err)
	}
}

// relayTyping forwards a typing transition to the chat room, excluding the
// typist. Lossy by design; receivers expire stale indicators on their own.
func (m *Manager) relayTyping(c *Client, chatID string, typing bool) {
	event := EventTyping
	if !typing {
		event = EventStopTyping
	}

	data, err := EncodeFrame(event, &ChatPayload{ChatID: chatID})
	if err != nil {
		logger.Error("WebSocket: failed to encode %s: %v", event, err)
		return
	}

	m.rooms.EmitExcept(chatID, c, data)
}

func (m *Manager) sendError(c *Client, message string) {
	data, err := EncodeFrame(EventError, &ErrorPayload{Message: message})
	if err != nil {
		return
	}
	c.enqueue(data)
}
