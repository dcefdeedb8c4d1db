package payload

import (
	"encoding/json"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

// ChatUserMessageStatus is a moderator's disposition of a held user
// chat message, default ChatUserMessageStatusInvalid for forward
// compatibility.
type ChatUserMessageStatus int

const (
	ChatUserMessageStatusInvalid ChatUserMessageStatus = iota
	ChatUserMessageStatusApproved
	ChatUserMessageStatusDenied
)

var chatUserMessageStatusTable = map[string]ChatUserMessageStatus{
	"approved": ChatUserMessageStatusApproved,
	"denied":   ChatUserMessageStatusDenied,
	"invalid":  ChatUserMessageStatusInvalid,
}

// ChannelChatUserMessageHoldEvent is the decoded event of a
// channel.chat.user_message_hold@1 notification.
type ChannelChatUserMessageHoldEvent struct {
	Broadcaster User
	User        User
	MessageID   string
	Message     StructuredMessage
}

// ChannelChatUserMessageHold is the full
// channel.chat.user_message_hold@1 notification payload.
type ChannelChatUserMessageHold struct {
	Subscription Subscription
	Event        ChannelChatUserMessageHoldEvent
}

// DecodeChannelChatUserMessageHold decodes a
// channel.chat.user_message_hold@1 notification payload.
func DecodeChannelChatUserMessageHold(raw json.RawMessage) (ChannelChatUserMessageHold, error) {
	root, err := codec.Object(raw, "payload")
	if err != nil {
		return ChannelChatUserMessageHold{}, err
	}
	subRaw, err := codec.RequiredRaw(root, "subscription", "payload.subscription")
	if err != nil {
		return ChannelChatUserMessageHold{}, err
	}
	sub, err := DecodeSubscription(subRaw, "payload.subscription")
	if err != nil {
		return ChannelChatUserMessageHold{}, err
	}
	eventRaw, err := codec.RequiredRaw(root, "event", "payload.event")
	if err != nil {
		return ChannelChatUserMessageHold{}, err
	}
	const field = "payload.event"
	obj, err := codec.Object(eventRaw, field)
	if err != nil {
		return ChannelChatUserMessageHold{}, err
	}
	broadcaster, err := requiredUser(obj, "broadcaster_user", field)
	if err != nil {
		return ChannelChatUserMessageHold{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return ChannelChatUserMessageHold{}, err
	}
	messageID, err := codec.RequiredString(obj, "message_id", field+".message_id")
	if err != nil {
		return ChannelChatUserMessageHold{}, err
	}
	messageRaw, err := codec.RequiredRaw(obj, "message", field+".message")
	if err != nil {
		return ChannelChatUserMessageHold{}, err
	}
	message, err := decodeStructuredMessage(messageRaw, field+".message")
	if err != nil {
		return ChannelChatUserMessageHold{}, err
	}
	return ChannelChatUserMessageHold{
		Subscription: sub,
		Event: ChannelChatUserMessageHoldEvent{
			Broadcaster: broadcaster,
			User:        user,
			MessageID:   messageID,
			Message:     message,
		},
	}, nil
}

// ChannelChatUserMessageUpdateEvent is the decoded event of a
// channel.chat.user_message_update@1 notification.
type ChannelChatUserMessageUpdateEvent struct {
	Broadcaster User
	User        User
	Status      ChatUserMessageStatus
	MessageID   string
	Message     StructuredMessage
}

// ChannelChatUserMessageUpdate is the full
// channel.chat.user_message_update@1 notification payload.
type ChannelChatUserMessageUpdate struct {
	Subscription Subscription
	Event        ChannelChatUserMessageUpdateEvent
}

// DecodeChannelChatUserMessageUpdate decodes a
// channel.chat.user_message_update@1 notification payload.
func DecodeChannelChatUserMessageUpdate(raw json.RawMessage) (ChannelChatUserMessageUpdate, error) {
	root, err := codec.Object(raw, "payload")
	if err != nil {
		return ChannelChatUserMessageUpdate{}, err
	}
	subRaw, err := codec.RequiredRaw(root, "subscription", "payload.subscription")
	if err != nil {
		return ChannelChatUserMessageUpdate{}, err
	}
	sub, err := DecodeSubscription(subRaw, "payload.subscription")
	if err != nil {
		return ChannelChatUserMessageUpdate{}, err
	}
	eventRaw, err := codec.RequiredRaw(root, "event", "payload.event")
	if err != nil {
		return ChannelChatUserMessageUpdate{}, err
	}
	const field = "payload.event"
	obj, err := codec.Object(eventRaw, field)
	if err != nil {
		return ChannelChatUserMessageUpdate{}, err
	}
	broadcaster, err := requiredUser(obj, "broadcaster_user", field)
	if err != nil {
		return ChannelChatUserMessageUpdate{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return ChannelChatUserMessageUpdate{}, err
	}
	status, err := codec.Enum(obj, "status", field+".status", chatUserMessageStatusTable, ChatUserMessageStatusInvalid)
	if err != nil {
		return ChannelChatUserMessageUpdate{}, err
	}
	messageID, err := codec.RequiredString(obj, "message_id", field+".message_id")
	if err != nil {
		return ChannelChatUserMessageUpdate{}, err
	}
	messageRaw, err := codec.RequiredRaw(obj, "message", field+".message")
	if err != nil {
		return ChannelChatUserMessageUpdate{}, err
	}
	message, err := decodeStructuredMessage(messageRaw, field+".message")
	if err != nil {
		return ChannelChatUserMessageUpdate{}, err
	}
	return ChannelChatUserMessageUpdate{
		Subscription: sub,
		Event: ChannelChatUserMessageUpdateEvent{
			Broadcaster: broadcaster,
			User:        user,
			Status:      status,
			MessageID:   messageID,
			Message:     message,
		},
	}, nil
}
