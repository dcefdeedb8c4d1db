package eventsub

import (
	"encoding/json"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

// DecodeEnvelope decodes a single WebSocket text frame into an Envelope.
// The root must be a JSON object with "metadata" and "payload" keys;
// anything else is a Protocol-kind Error (ExpectedObject), matching
// E2E-6's malformed-array case.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	obj, err := codec.Object(json.RawMessage(raw), "$")
	if err != nil {
		return Envelope{}, &Error{Kind: KindProtocol, Op: "DecodeEnvelope", Err: err}
	}

	metaRaw, err := codec.RequiredRaw(obj, "metadata", "metadata")
	if err != nil {
		return Envelope{}, &Error{Kind: KindProtocol, Op: "DecodeEnvelope", Err: err}
	}
	metaObj, err := codec.Object(metaRaw, "metadata")
	if err != nil {
		return Envelope{}, &Error{Kind: KindProtocol, Op: "DecodeEnvelope", Err: err}
	}

	messageID, err := codec.RequiredString(metaObj, "message_id", "metadata.message_id")
	if err != nil {
		return Envelope{}, &Error{Kind: KindProtocol, Op: "DecodeEnvelope", Err: err}
	}
	messageTypeStr, err := codec.RequiredString(metaObj, "message_type", "metadata.message_type")
	if err != nil {
		return Envelope{}, &Error{Kind: KindProtocol, Op: "DecodeEnvelope", Err: err}
	}
	messageTimestamp, err := codec.RequiredString(metaObj, "message_timestamp", "metadata.message_timestamp")
	if err != nil {
		return Envelope{}, &Error{Kind: KindProtocol, Op: "DecodeEnvelope", Err: err}
	}

	messageType := MessageType(messageTypeStr)
	if !messageType.Known() {
		return Envelope{}, &Error{Kind: KindProtocol, Op: "DecodeEnvelope", Err: ErrUnknownMessageType}
	}

	subType, hasSubType, err := codec.OptionalString(metaObj, "subscription_type", "metadata.subscription_type")
	if err != nil {
		return Envelope{}, &Error{Kind: KindProtocol, Op: "DecodeEnvelope", Err: err}
	}
	subVersion, hasSubVersion, err := codec.OptionalString(metaObj, "subscription_version", "metadata.subscription_version")
	if err != nil {
		return Envelope{}, &Error{Kind: KindProtocol, Op: "DecodeEnvelope", Err: err}
	}

	meta := Metadata{
		MessageID:              messageID,
		MessageType:            messageType,
		MessageTimestamp:       messageTimestamp,
		SubscriptionType:       subType,
		SubscriptionVersion:    subVersion,
		hasSubscriptionType:    hasSubType,
		hasSubscriptionVersion: hasSubVersion,
	}

	if messageType == MessageTypeNotification && !meta.HasSubscription() {
		return Envelope{}, &Error{Kind: KindProtocol, Op: "DecodeEnvelope", Err: ErrUnexpectedMessage}
	}

	payload, err := codec.RequiredRaw(obj, "payload", "payload")
	if err != nil {
		// An empty-object payload is valid (e.g. keepalive); RequiredRaw
		// only fails when the key is entirely absent or null.
		return Envelope{}, &Error{Kind: KindProtocol, Op: "DecodeEnvelope", Err: err}
	}

	return Envelope{Metadata: meta, Payload: payload}, nil
}
