package payload

import (
	"encoding/json"
	"time"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

// ChannelBanEvent is the decoded event of a channel.ban@1 notification.
type ChannelBanEvent struct {
	Broadcaster User
	Moderator   User
	Target      User
	Reason      string
	IsPermanent bool
	BannedAt    time.Time
	EndsAt      time.Time
	HasEndsAt   bool
}

// TimeoutDuration returns the duration between BannedAt and EndsAt, and
// true, when the event describes a timeout. For a ban (IsPermanent) the
// second return is false and the duration is meaningless.
func (e ChannelBanEvent) TimeoutDuration() (time.Duration, bool) {
	if e.IsPermanent || !e.HasEndsAt {
		return 0, false
	}
	return e.EndsAt.Sub(e.BannedAt), true
}

// ChannelBan is the full channel.ban@1 notification payload.
type ChannelBan struct {
	Subscription Subscription
	Event        ChannelBanEvent
}

// DecodeChannelBan decodes a channel.ban@1 notification payload.
func DecodeChannelBan(raw json.RawMessage) (ChannelBan, error) {
	root, err := codec.Object(raw, "payload")
	if err != nil {
		return ChannelBan{}, err
	}
	subRaw, err := codec.RequiredRaw(root, "subscription", "payload.subscription")
	if err != nil {
		return ChannelBan{}, err
	}
	sub, err := DecodeSubscription(subRaw, "payload.subscription")
	if err != nil {
		return ChannelBan{}, err
	}
	eventRaw, err := codec.RequiredRaw(root, "event", "payload.event")
	if err != nil {
		return ChannelBan{}, err
	}
	event, err := decodeChannelBanEvent(eventRaw)
	if err != nil {
		return ChannelBan{}, err
	}
	return ChannelBan{Subscription: sub, Event: event}, nil
}

func decodeChannelBanEvent(raw json.RawMessage) (ChannelBanEvent, error) {
	const field = "payload.event"
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ChannelBanEvent{}, err
	}
	broadcaster, err := requiredUser(obj, "broadcaster_user", field)
	if err != nil {
		return ChannelBanEvent{}, err
	}
	moderator, err := requiredUser(obj, "moderator_user", field)
	if err != nil {
		return ChannelBanEvent{}, err
	}
	target, err := requiredUser(obj, "user", field)
	if err != nil {
		return ChannelBanEvent{}, err
	}
	reason, err := codec.RequiredString(obj, "reason", field+".reason")
	if err != nil {
		return ChannelBanEvent{}, err
	}
	isPermanent, err := codec.RequiredBool(obj, "is_permanent", field+".is_permanent")
	if err != nil {
		return ChannelBanEvent{}, err
	}
	bannedAt, err := codec.RequiredTimestamp(obj, "banned_at", field+".banned_at")
	if err != nil {
		return ChannelBanEvent{}, err
	}
	endsAt, hasEndsAt, err := codec.OptionalTimestamp(obj, "ends_at", field+".ends_at")
	if err != nil {
		return ChannelBanEvent{}, err
	}

	return ChannelBanEvent{
		Broadcaster: broadcaster,
		Moderator:   moderator,
		Target:      target,
		Reason:      reason,
		IsPermanent: isPermanent,
		BannedAt:    bannedAt,
		EndsAt:      endsAt,
		HasEndsAt:   hasEndsAt,
	}, nil
}
