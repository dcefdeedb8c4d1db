// Package listener defines the capability set an application implements
// to receive decoded EventSub notifications from a Session.
package listener

import (
	"encoding/json"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub"
	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/payload"
)

// Listener is the sink a Session dispatches decoded messages to.
// Methods are invoked on the Session's executor in the exact order
// frames are received; they must not block indefinitely — long work
// belongs on a caller-owned executor. A Session owns its Listener
// exclusively; its lifetime ends when the Session is destroyed.
type Listener interface {
	// OnSessionWelcome is invoked exactly once per Session, before any
	// notification, carrying the session_id subscriptions must be
	// created against.
	OnSessionWelcome(meta eventsub.Metadata, welcome payload.SessionWelcome)

	// OnNotification is invoked for every notification frame before
	// its typed dispatch below, with the still-raw event payload.
	OnNotification(meta eventsub.Metadata, raw json.RawMessage)

	OnChannelBan(meta eventsub.Metadata, event payload.ChannelBan)
	OnStreamOnline(meta eventsub.Metadata, event payload.StreamOnline)
	OnStreamOffline(meta eventsub.Metadata, event payload.StreamOffline)
	OnChannelChatNotification(meta eventsub.Metadata, event payload.ChannelChatNotification)
	OnChannelUpdate(meta eventsub.Metadata, event payload.ChannelUpdate)
	OnChannelChatMessage(meta eventsub.Metadata, event payload.ChannelChatMessage)
	OnChannelModerate(meta eventsub.Metadata, event payload.ChannelModerate)
	OnAutomodMessageHold(meta eventsub.Metadata, event payload.AutomodMessageHold)
	OnAutomodMessageUpdate(meta eventsub.Metadata, event payload.AutomodMessageUpdate)
	OnChannelSuspiciousUserMessage(meta eventsub.Metadata, event payload.ChannelSuspiciousUserMessage)
	OnChannelSuspiciousUserUpdate(meta eventsub.Metadata, event payload.ChannelSuspiciousUserUpdate)
	OnChannelChatUserMessageHold(meta eventsub.Metadata, event payload.ChannelChatUserMessageHold)
	OnChannelChatUserMessageUpdate(meta eventsub.Metadata, event payload.ChannelChatUserMessageUpdate)
}

// NopListener implements Listener with no-op methods. Embed it in an
// application listener to implement only the handlers it cares about.
type NopListener struct{}

func (NopListener) OnSessionWelcome(eventsub.Metadata, payload.SessionWelcome)                     {}
func (NopListener) OnNotification(eventsub.Metadata, json.RawMessage)                              {}
func (NopListener) OnChannelBan(eventsub.Metadata, payload.ChannelBan)                              {}
func (NopListener) OnStreamOnline(eventsub.Metadata, payload.StreamOnline)                          {}
func (NopListener) OnStreamOffline(eventsub.Metadata, payload.StreamOffline)                        {}
func (NopListener) OnChannelChatNotification(eventsub.Metadata, payload.ChannelChatNotification)    {}
func (NopListener) OnChannelUpdate(eventsub.Metadata, payload.ChannelUpdate)                        {}
func (NopListener) OnChannelChatMessage(eventsub.Metadata, payload.ChannelChatMessage)              {}
func (NopListener) OnChannelModerate(eventsub.Metadata, payload.ChannelModerate)                    {}
func (NopListener) OnAutomodMessageHold(eventsub.Metadata, payload.AutomodMessageHold)              {}
func (NopListener) OnAutomodMessageUpdate(eventsub.Metadata, payload.AutomodMessageUpdate)          {}
func (NopListener) OnChannelSuspiciousUserMessage(eventsub.Metadata, payload.ChannelSuspiciousUserMessage) {
}
func (NopListener) OnChannelSuspiciousUserUpdate(eventsub.Metadata, payload.ChannelSuspiciousUserUpdate) {
}
func (NopListener) OnChannelChatUserMessageHold(eventsub.Metadata, payload.ChannelChatUserMessageHold) {
}
func (NopListener) OnChannelChatUserMessageUpdate(eventsub.Metadata, payload.ChannelChatUserMessageUpdate) {
}

var _ Listener = NopListener{}

// Dispatch type-switches a value decoded through payload.Handlers and
// invokes the matching typed method on l. Unknown concrete types are
// ignored — callers that also need raw delivery rely on OnNotification,
// which the Session always invokes first.
func Dispatch(l Listener, meta eventsub.Metadata, decoded any) {
	switch v := decoded.(type) {
	case payload.ChannelBan:
		l.OnChannelBan(meta, v)
	case payload.StreamOnline:
		l.OnStreamOnline(meta, v)
	case payload.StreamOffline:
		l.OnStreamOffline(meta, v)
	case payload.ChannelChatNotification:
		l.OnChannelChatNotification(meta, v)
	case payload.ChannelUpdate:
		l.OnChannelUpdate(meta, v)
	case payload.ChannelChatMessage:
		l.OnChannelChatMessage(meta, v)
	case payload.ChannelModerate:
		l.OnChannelModerate(meta, v)
	case payload.AutomodMessageHold:
		l.OnAutomodMessageHold(meta, v)
	case payload.AutomodMessageUpdate:
		l.OnAutomodMessageUpdate(meta, v)
	case payload.ChannelSuspiciousUserMessage:
		l.OnChannelSuspiciousUserMessage(meta, v)
	case payload.ChannelSuspiciousUserUpdate:
		l.OnChannelSuspiciousUserUpdate(meta, v)
	case payload.ChannelChatUserMessageHold:
		l.OnChannelChatUserMessageHold(meta, v)
	case payload.ChannelChatUserMessageUpdate:
		l.OnChannelChatUserMessageUpdate(meta, v)
	}
}
