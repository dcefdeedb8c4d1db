package payload

import (
	"encoding/json"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

// ChannelUpdateEvent is the decoded event of a channel.update@1 notification.
type ChannelUpdateEvent struct {
	Broadcaster  User
	Title        string
	Language     string
	CategoryID   string
	CategoryName string
	IsMature     bool
}

// ChannelUpdate is the full channel.update@1 notification payload.
type ChannelUpdate struct {
	Subscription Subscription
	Event        ChannelUpdateEvent
}

// DecodeChannelUpdate decodes a channel.update@1 notification payload.
func DecodeChannelUpdate(raw json.RawMessage) (ChannelUpdate, error) {
	root, err := codec.Object(raw, "payload")
	if err != nil {
		return ChannelUpdate{}, err
	}
	subRaw, err := codec.RequiredRaw(root, "subscription", "payload.subscription")
	if err != nil {
		return ChannelUpdate{}, err
	}
	sub, err := DecodeSubscription(subRaw, "payload.subscription")
	if err != nil {
		return ChannelUpdate{}, err
	}
	eventRaw, err := codec.RequiredRaw(root, "event", "payload.event")
	if err != nil {
		return ChannelUpdate{}, err
	}
	event, err := decodeChannelUpdateEvent(eventRaw)
	if err != nil {
		return ChannelUpdate{}, err
	}
	return ChannelUpdate{Subscription: sub, Event: event}, nil
}

func decodeChannelUpdateEvent(raw json.RawMessage) (ChannelUpdateEvent, error) {
	const field = "payload.event"
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ChannelUpdateEvent{}, err
	}
	broadcaster, err := requiredUser(obj, "broadcaster_user", field)
	if err != nil {
		return ChannelUpdateEvent{}, err
	}
	title, err := codec.RequiredString(obj, "title", field+".title")
	if err != nil {
		return ChannelUpdateEvent{}, err
	}
	language, err := codec.RequiredString(obj, "language", field+".language")
	if err != nil {
		return ChannelUpdateEvent{}, err
	}
	categoryID, err := codec.RequiredString(obj, "category_id", field+".category_id")
	if err != nil {
		return ChannelUpdateEvent{}, err
	}
	categoryName, err := codec.RequiredString(obj, "category_name", field+".category_name")
	if err != nil {
		return ChannelUpdateEvent{}, err
	}
	isMature, err := codec.RequiredBool(obj, "is_mature", field+".is_mature")
	if err != nil {
		return ChannelUpdateEvent{}, err
	}

	return ChannelUpdateEvent{
		Broadcaster:  broadcaster,
		Title:        title,
		Language:     language,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		IsMature:     isMature,
	}, nil
}
