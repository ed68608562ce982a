package websocket

import (
	"sync"

	"github.com/gorilla/websocket"

	"chatwave/pkg/logger"
)

const sendBufferSize = 256

// Client is the per-connection session: the verified user identity, the
// outbound queue, and the connection's own typing state machine. Nothing
// here is shared across connections.
type Client struct {
	UserID string

	conn    *websocket.Conn
	send    chan []byte
	typing  *typingCoordinator
	manager *Manager

	closeOnce sync.Once
}

// enqueue queues an outbound frame without blocking. A full buffer drops the
// frame; the realtime channel is advisory and history is the source of
// truth.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		logger.Warn("WebSocket: send buffer full for user %s, dropping frame", c.UserID)
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// ReadPump reads frames from the connection and hands them to the manager
// until the peer goes away. Runs as one goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.manager.Disconnect(c)
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket: read error for user %s: %v", c.UserID, err)
			}
			break
		}

		c.manager.HandleFrame(c, raw)
	}
}

// WritePump drains the send queue into the connection.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		data, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Warn("WebSocket: write error for user %s: %v", c.UserID, err)
			return
		}
	}
}
