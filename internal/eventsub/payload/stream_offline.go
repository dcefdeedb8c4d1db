package payload

import (
	"encoding/json"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

// StreamOfflineEvent is the decoded event of a stream.offline@1 notification.
type StreamOfflineEvent struct {
	Broadcaster User
}

// StreamOffline is the full stream.offline@1 notification payload.
type StreamOffline struct {
	Subscription Subscription
	Event        StreamOfflineEvent
}

// DecodeStreamOffline decodes a stream.offline@1 notification payload.
func DecodeStreamOffline(raw json.RawMessage) (StreamOffline, error) {
	root, err := codec.Object(raw, "payload")
	if err != nil {
		return StreamOffline{}, err
	}
	subRaw, err := codec.RequiredRaw(root, "subscription", "payload.subscription")
	if err != nil {
		return StreamOffline{}, err
	}
	sub, err := DecodeSubscription(subRaw, "payload.subscription")
	if err != nil {
		return StreamOffline{}, err
	}
	eventRaw, err := codec.RequiredRaw(root, "event", "payload.event")
	if err != nil {
		return StreamOffline{}, err
	}
	const field = "payload.event"
	obj, err := codec.Object(eventRaw, field)
	if err != nil {
		return StreamOffline{}, err
	}
	broadcaster, err := requiredUser(obj, "broadcaster_user", field)
	if err != nil {
		return StreamOffline{}, err
	}
	return StreamOffline{Subscription: sub, Event: StreamOfflineEvent{Broadcaster: broadcaster}}, nil
}
