package websocket

import (
	"sync"
)

// RoomDirectory maps logical room keys to the set of live connections
// subscribed to them. A room key is either a user ID (personal room) or a
// chat ID (conversation room); IDs are UUIDs so the two namespaces never
// collide.
type RoomDirectory struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	joined map[*Client]map[string]struct{}
}

func NewRoomDirectory() *RoomDirectory {
	return &RoomDirectory{
		rooms:  make(map[string]map[*Client]struct{}),
		joined: make(map[*Client]map[string]struct{}),
	}
}

// Join subscribes the connection to a room. Idempotent.
func (d *RoomDirectory) Join(c *Client, room string) {
	if room == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.rooms[room] == nil {
		d.rooms[room] = make(map[*Client]struct{})
	}
	d.rooms[room][c] = struct{}{}

	if d.joined[c] == nil {
		d.joined[c] = make(map[string]struct{})
	}
	d.joined[c][room] = struct{}{}
}

// Leave removes the connection from a single room. Unknown rooms and
// connections are ignored.
func (d *RoomDirectory) Leave(c *Client, room string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.removeLocked(c, room)

	if set, ok := d.joined[c]; ok {
		delete(set, room)
		if len(set) == 0 {
			delete(d.joined, c)
		}
	}
}

// LeaveAll removes the connection from every room it joined. Safe to call
// for a connection that never completed its handshake.
func (d *RoomDirectory) LeaveAll(c *Client) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for room := range d.joined[c] {
		d.removeLocked(c, room)
	}
	delete(d.joined, c)
}

func (d *RoomDirectory) removeLocked(c *Client, room string) {
	if set, ok := d.rooms[room]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(d.rooms, room)
		}
	}
}

// Emit queues data to every subscriber of the room and reports how many
// connections it reached. An empty room is a no-op, not an error: the
// recipient may simply be offline.
func (d *RoomDirectory) Emit(room string, data []byte) int {
	return d.EmitExcept(room, nil, data)
}

// EmitExcept is Emit minus one connection, used to relay events to everyone
// in a chat room but the originator.
func (d *RoomDirectory) EmitExcept(room string, except *Client, data []byte) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	delivered := 0
	for c := range d.rooms[room] {
		if c == except {
			continue
		}
		if c.enqueue(data) {
			delivered++
		}
	}
	return delivered
}

// Subscribers reports the number of live connections in a room.
func (d *RoomDirectory) Subscribers(room string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms[room])
}
