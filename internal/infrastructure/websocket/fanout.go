package websocket

import (
	"chatwave/pkg/errors"
	"chatwave/pkg/logger"
)

// Fanout delivers a persisted message to every member of its chat except the
// sender, via each member's personal room. Delivery is at-most-once and
// best-effort: an offline member's emit is a no-op and the message is only
// recovered by their next history fetch.
type Fanout struct {
	rooms *RoomDirectory
}

func NewFanout(rooms *RoomDirectory) *Fanout {
	return &Fanout{rooms: rooms}
}

// Deliver fans a message out to the personal rooms of the chat's other
// members. The message must already be durably stored; this function never
// touches persistence. A payload without populated members is rejected so
// the caller can log and drop it without tearing anything down.
func (f *Fanout) Deliver(msg *MessagePayload) error {
	if msg == nil {
		return errors.BadRequest("message payload is nil", nil)
	}
	if len(msg.Chat.Members) == 0 {
		return errors.BadRequest("chat members not populated", nil)
	}

	data, err := EncodeFrame(EventMessageReceived, msg)
	if err != nil {
		return errors.Internal("failed to encode message event", err)
	}

	for _, member := range msg.Chat.Members {
		if member.ID == msg.Sender.ID {
			continue
		}
		if n := f.rooms.Emit(member.ID, data); n == 0 {
			logger.Debug("Fanout: member %s offline for message %s", member.ID, msg.ID)
		}
	}

	return nil
}
