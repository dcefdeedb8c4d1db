package payload

import (
	"encoding/json"
	"time"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

// StreamOnlineEvent is the decoded event of a stream.online@1 notification.
type StreamOnlineEvent struct {
	ID          string
	Broadcaster User
	Type        string
	StartedAt   time.Time
}

// StreamOnline is the full stream.online@1 notification payload.
type StreamOnline struct {
	Subscription Subscription
	Event        StreamOnlineEvent
}

// DecodeStreamOnline decodes a stream.online@1 notification payload.
func DecodeStreamOnline(raw json.RawMessage) (StreamOnline, error) {
	root, err := codec.Object(raw, "payload")
	if err != nil {
		return StreamOnline{}, err
	}
	subRaw, err := codec.RequiredRaw(root, "subscription", "payload.subscription")
	if err != nil {
		return StreamOnline{}, err
	}
	sub, err := DecodeSubscription(subRaw, "payload.subscription")
	if err != nil {
		return StreamOnline{}, err
	}
	eventRaw, err := codec.RequiredRaw(root, "event", "payload.event")
	if err != nil {
		return StreamOnline{}, err
	}
	event, err := decodeStreamOnlineEvent(eventRaw)
	if err != nil {
		return StreamOnline{}, err
	}
	return StreamOnline{Subscription: sub, Event: event}, nil
}

func decodeStreamOnlineEvent(raw json.RawMessage) (StreamOnlineEvent, error) {
	const field = "payload.event"
	obj, err := codec.Object(raw, field)
	if err != nil {
		return StreamOnlineEvent{}, err
	}
	id, err := codec.RequiredString(obj, "id", field+".id")
	if err != nil {
		return StreamOnlineEvent{}, err
	}
	broadcaster, err := requiredUser(obj, "broadcaster_user", field)
	if err != nil {
		return StreamOnlineEvent{}, err
	}
	typ, err := codec.RequiredString(obj, "type", field+".type")
	if err != nil {
		return StreamOnlineEvent{}, err
	}
	startedAt, err := codec.RequiredTimestamp(obj, "started_at", field+".started_at")
	if err != nil {
		return StreamOnlineEvent{}, err
	}

	return StreamOnlineEvent{ID: id, Broadcaster: broadcaster, Type: typ, StartedAt: startedAt}, nil
}
