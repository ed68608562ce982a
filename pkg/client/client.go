package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	gorillaws "github.com/gorilla/websocket"

	ws "chatwave/internal/infrastructure/websocket"
)

// Client is a realtime chat client: it dials the websocket endpoint,
// performs the setup handshake and routes incoming events into the
// Reconciler and TypingTracker.
type Client struct {
	UserID string

	Reconciler *Reconciler
	Typing     *TypingTracker

	conn *gorillaws.Conn

	mu     sync.Mutex // guards writes to conn
	closed bool

	connectedCh chan struct{}

	// OnError receives server-side error frames. Optional.
	OnError func(message string)
}

// Dial connects to the realtime endpoint, authenticating with the JWT and
// announcing the user via the setup handshake. It blocks until the server
// acknowledges with "connected" or ctx expires.
func Dial(ctx context.Context, url, token, userID string, onTyping func(chatID string, typing bool)) (*Client, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, _, err := gorillaws.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Client{
		UserID:      userID,
		Reconciler:  NewReconciler(),
		Typing:      NewTypingTracker(onTyping),
		conn:        conn,
		connectedCh: make(chan struct{}),
	}

	go c.readLoop()

	if err := c.send(ws.EventSetup, &ws.SetupPayload{UserID: userID}); err != nil {
		c.Close()
		return nil, err
	}

	select {
	case <-c.connectedCh:
	case <-ctx.Done():
		c.Close()
		return nil, ctx.Err()
	}

	return c, nil
}

// SelectChat opens a chat: joins its room for typing indicators and clears
// its notifications. Switching away from a chat ends any in-flight typing
// there immediately instead of waiting for the quiet timer; the server
// relays nothing if the session was already idle.
func (c *Client) SelectChat(chatID string) error {
	prev := c.Reconciler.ActiveChat()
	c.Reconciler.Select(chatID)

	if prev != "" && prev != chatID {
		if err := c.send(ws.EventStopTyping, &ws.ChatPayload{ChatID: prev}); err != nil {
			return err
		}
	}

	return c.send(ws.EventJoinChat, &ws.ChatPayload{ChatID: chatID})
}

// SendTyping signals a keystroke in the given chat.
func (c *Client) SendTyping(chatID string) error {
	return c.send(ws.EventTyping, &ws.ChatPayload{ChatID: chatID})
}

// SendStopTyping explicitly clears the caller's typing indicator.
func (c *Client) SendStopTyping(chatID string) error {
	return c.send(ws.EventStopTyping, &ws.ChatPayload{ChatID: chatID})
}

// EmitMessage hands an already-persisted message to the server for fan-out.
// Call it after the REST send succeeds, with the hydrated message the API
// returned.
func (c *Client) EmitMessage(msg *ws.MessagePayload) error {
	return c.send(ws.EventNewMessage, msg)
}

func (c *Client) send(event string, payload interface{}) error {
	raw, err := ws.EncodeFrame(event, payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("connection closed")
	}
	return c.conn.WriteMessage(gorillaws.TextMessage, raw)
}

func (c *Client) readLoop() {
	defer c.Close()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		frame, err := ws.DecodeFrame(raw)
		if err != nil {
			continue
		}

		switch frame.Event {
		case ws.EventConnected:
			select {
			case <-c.connectedCh:
			default:
				close(c.connectedCh)
			}

		case ws.EventMessageReceived:
			payload, err := frame.Payload()
			if err != nil {
				continue
			}
			msg := payload.(*ws.MessagePayload)
			c.Reconciler.Receive(msg)
			// A message from someone implies they are done typing.
			c.Typing.StopTyping(msg.Chat.ID)

		case ws.EventTyping:
			payload, err := frame.Payload()
			if err != nil {
				continue
			}
			c.Typing.Typing(payload.(*ws.ChatPayload).ChatID)

		case ws.EventStopTyping:
			payload, err := frame.Payload()
			if err != nil {
				continue
			}
			c.Typing.StopTyping(payload.(*ws.ChatPayload).ChatID)

		case ws.EventError:
			if c.OnError != nil && frame.Data != nil {
				var p ws.ErrorPayload
				if err := json.Unmarshal(frame.Data, &p); err == nil {
					c.OnError(p.Message)
				}
			}
		}
	}
}

// Close tears the connection down. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.Typing.Close()
	return c.conn.Close()
}
