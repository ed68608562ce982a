package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestClient(userID string) *Client {
	return &Client{
		UserID: userID,
		send:   make(chan []byte, 8),
	}
}

func drain(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case data := <-c.send:
			out = append(out, data)
		default:
			return out
		}
	}
}

func TestRoomDirectoryJoinAndEmit(t *testing.T) {
	d := NewRoomDirectory()
	a := newTestClient("user-a")
	b := newTestClient("user-b")

	d.Join(a, "chat-1")
	d.Join(b, "chat-1")

	delivered := d.Emit("chat-1", []byte("hello"))

	assert.Equal(t, 2, delivered)
	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
}

func TestRoomDirectoryJoinIsIdempotent(t *testing.T) {
	d := NewRoomDirectory()
	a := newTestClient("user-a")

	d.Join(a, "chat-1")
	d.Join(a, "chat-1")

	assert.Equal(t, 1, d.Subscribers("chat-1"))
	assert.Equal(t, 1, d.Emit("chat-1", []byte("x")))
}

func TestRoomDirectoryEmitExceptSkipsOriginator(t *testing.T) {
	d := NewRoomDirectory()
	a := newTestClient("user-a")
	b := newTestClient("user-b")

	d.Join(a, "chat-1")
	d.Join(b, "chat-1")

	delivered := d.EmitExcept("chat-1", a, []byte("typing"))

	assert.Equal(t, 1, delivered)
	assert.Empty(t, drain(a))
	assert.Len(t, drain(b), 1)
}

func TestRoomDirectoryEmitToEmptyRoom(t *testing.T) {
	d := NewRoomDirectory()

	assert.Equal(t, 0, d.Emit("nobody-home", []byte("x")))
}

func TestRoomDirectoryLeave(t *testing.T) {
	d := NewRoomDirectory()
	a := newTestClient("user-a")

	d.Join(a, "chat-1")
	d.Leave(a, "chat-1")

	assert.Equal(t, 0, d.Subscribers("chat-1"))

	// Leaving again, or leaving a room never joined, is harmless.
	d.Leave(a, "chat-1")
	d.Leave(a, "chat-2")
}

func TestRoomDirectoryLeaveAll(t *testing.T) {
	d := NewRoomDirectory()
	a := newTestClient("user-a")
	b := newTestClient("user-b")

	d.Join(a, "user-a")
	d.Join(a, "chat-1")
	d.Join(a, "chat-2")
	d.Join(b, "chat-1")

	d.LeaveAll(a)

	assert.Equal(t, 0, d.Subscribers("user-a"))
	assert.Equal(t, 1, d.Subscribers("chat-1"))
	assert.Equal(t, 0, d.Subscribers("chat-2"))
}

func TestRoomDirectoryLeaveAllBeforeHandshake(t *testing.T) {
	d := NewRoomDirectory()
	a := newTestClient("user-a")

	// Connection dropped before joining anything.
	d.LeaveAll(a)
}

func TestRoomDirectoryFullBufferDoesNotCountAsDelivered(t *testing.T) {
	d := NewRoomDirectory()
	a := &Client{UserID: "user-a", send: make(chan []byte, 1)}

	d.Join(a, "chat-1")

	assert.Equal(t, 1, d.Emit("chat-1", []byte("first")))
	assert.Equal(t, 0, d.Emit("chat-1", []byte("second")))
}
