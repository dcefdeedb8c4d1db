package eventsub

import "encoding/json"

// MessageType enumerates the known top-level frame kinds.
type MessageType string

const (
	MessageTypeSessionWelcome   MessageType = "session_welcome"
	MessageTypeSessionKeepalive MessageType = "session_keepalive"
	MessageTypeSessionReconnect MessageType = "session_reconnect"
	MessageTypeNotification     MessageType = "notification"
	MessageTypeRevocation       MessageType = "revocation"
)

// Known reports whether t is one of the five message types the core
// recognizes.
func (t MessageType) Known() bool {
	switch t {
	case MessageTypeSessionWelcome, MessageTypeSessionKeepalive,
		MessageTypeSessionReconnect, MessageTypeNotification, MessageTypeRevocation:
		return true
	default:
		return false
	}
}

// Metadata is the envelope's metadata object, present on every frame.
type Metadata struct {
	MessageID            string
	MessageType          MessageType
	MessageTimestamp     string
	SubscriptionType      string
	SubscriptionVersion   string
	hasSubscriptionType   bool
	hasSubscriptionVersion bool
}

// HasSubscription reports whether both subscription_type and
// subscription_version were present on the frame (required when
// MessageType is "notification").
func (m Metadata) HasSubscription() bool {
	return m.hasSubscriptionType && m.hasSubscriptionVersion
}

// Envelope is a decoded top-level frame: metadata plus the raw,
// not-yet-typed payload.
type Envelope struct {
	Metadata Metadata
	Payload  json.RawMessage
}
