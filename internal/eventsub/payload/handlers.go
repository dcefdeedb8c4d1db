package payload

import "encoding/json"

// SubscriptionKey identifies a subscription type and version pair,
// e.g. {"channel.moderate", "2"}.
type SubscriptionKey struct {
	Type    string
	Version string
}

// DecodeFunc decodes a notification's raw event payload into its typed
// record. The concrete return type matches the subscription the
// SubscriptionKey names; callers type-switch on it to dispatch to a
// Listener method.
type DecodeFunc func(raw json.RawMessage) (any, error)

// Handlers maps every known subscription type/version pair to its
// decoder. A notification whose (type, version) is absent from this
// table is still delivered to Listener.OnNotification, just not typed.
var Handlers = map[SubscriptionKey]DecodeFunc{}

func register(typ, version string, fn func(json.RawMessage) (any, error)) {
	Handlers[SubscriptionKey{Type: typ, Version: version}] = fn
}

func init() {
	register("channel.ban", "1", func(raw json.RawMessage) (any, error) { return DecodeChannelBan(raw) })
	register("stream.online", "1", func(raw json.RawMessage) (any, error) { return DecodeStreamOnline(raw) })
	register("stream.offline", "1", func(raw json.RawMessage) (any, error) { return DecodeStreamOffline(raw) })
	register("channel.chat.notification", "1", func(raw json.RawMessage) (any, error) { return DecodeChannelChatNotification(raw) })
	register("channel.update", "1", func(raw json.RawMessage) (any, error) { return DecodeChannelUpdate(raw) })
	register("channel.chat.message", "1", func(raw json.RawMessage) (any, error) { return DecodeChannelChatMessage(raw) })
	register("channel.moderate", "2", func(raw json.RawMessage) (any, error) { return DecodeChannelModerate(raw) })
	register("automod.message.hold", "2", func(raw json.RawMessage) (any, error) { return DecodeAutomodMessageHold(raw) })
	register("automod.message.update", "2", func(raw json.RawMessage) (any, error) { return DecodeAutomodMessageUpdate(raw) })
	register("channel.suspicious_user.message", "1", func(raw json.RawMessage) (any, error) { return DecodeChannelSuspiciousUserMessage(raw) })
	register("channel.suspicious_user.update", "1", func(raw json.RawMessage) (any, error) { return DecodeChannelSuspiciousUserUpdate(raw) })
	register("channel.chat.user_message_hold", "1", func(raw json.RawMessage) (any, error) { return DecodeChannelChatUserMessageHold(raw) })
	register("channel.chat.user_message_update", "1", func(raw json.RawMessage) (any, error) { return DecodeChannelChatUserMessageUpdate(raw) })
}
