package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// Realtime channel event names. These are the wire-level contract with
// clients; the REST API never reuses them.
const (
	EventSetup           = "setup"
	EventConnected       = "connected"
	EventJoinChat        = "join chat"
	EventTyping          = "typing"
	EventStopTyping      = "stop typing"
	EventNewMessage      = "new message"
	EventMessageReceived = "message received"
	EventError           = "error"
)

// Frame is the envelope for every event on the realtime channel.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type SetupPayload struct {
	UserID string `json:"user_id"`
}

type ChatPayload struct {
	ChatID string `json:"chat_id"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type UserRef struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type ChatRef struct {
	ID      string    `json:"id"`
	Name    string    `json:"name,omitempty"`
	IsGroup bool      `json:"is_group"`
	Members []UserRef `json:"members"`
}

// MessagePayload is the full message object carried by "new message" and
// "message received" events. It must describe an already-persisted message;
// the channel never creates state from it.
type MessagePayload struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    UserRef   `json:"sender"`
	Chat      ChatRef   `json:"chat"`
	CreatedAt time.Time `json:"created_at"`
}

// DecodeFrame parses a raw websocket text frame into its envelope.
func DecodeFrame(raw []byte) (*Frame, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	if frame.Event == "" {
		return nil, fmt.Errorf("malformed frame: missing event name")
	}
	return &frame, nil
}

// Payload decodes the frame's data into the payload type its event name
// demands, validating required fields at the channel boundary. Events reach
// business logic only through the typed values returned here.
func (f *Frame) Payload() (interface{}, error) {
	switch f.Event {
	case EventSetup:
		var p SetupPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Event, err)
		}
		if p.UserID == "" {
			return nil, fmt.Errorf("%s: missing user_id", f.Event)
		}
		return &p, nil

	case EventJoinChat, EventTyping, EventStopTyping:
		var p ChatPayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Event, err)
		}
		if p.ChatID == "" {
			return nil, fmt.Errorf("%s: missing chat_id", f.Event)
		}
		return &p, nil

	case EventNewMessage, EventMessageReceived:
		var p MessagePayload
		if err := json.Unmarshal(f.Data, &p); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Event, err)
		}
		if p.ID == "" || p.Content == "" || p.Sender.ID == "" || p.Chat.ID == "" {
			return nil, fmt.Errorf("%s: missing required message fields", f.Event)
		}
		return &p, nil

	default:
		return nil, fmt.Errorf("unknown event %q", f.Event)
	}
}

// EncodeFrame marshals an outbound event. A nil payload produces a bare
// envelope (used by "connected").
func EncodeFrame(event string, payload interface{}) ([]byte, error) {
	frame := Frame{Event: event}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		frame.Data = data
	}

	return json.Marshal(frame)
}
