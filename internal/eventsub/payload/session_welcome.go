package payload

import (
	"encoding/json"
	"time"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

// SessionWelcome is the payload of a session_welcome frame. Twitch
// nests the fields of interest under a "session" key.
type SessionWelcome struct {
	ID                      string
	Status                  string
	KeepaliveTimeoutSeconds int
	ReconnectURL            string
	HasReconnectURL         bool
	ConnectedAt             time.Time
}

// DecodeSessionWelcome decodes a session_welcome payload.
func DecodeSessionWelcome(raw json.RawMessage) (SessionWelcome, error) {
	root, err := codec.Object(raw, "payload")
	if err != nil {
		return SessionWelcome{}, err
	}
	sessionRaw, err := codec.RequiredRaw(root, "session", "payload.session")
	if err != nil {
		return SessionWelcome{}, err
	}
	session, err := codec.Object(sessionRaw, "payload.session")
	if err != nil {
		return SessionWelcome{}, err
	}

	id, err := codec.RequiredString(session, "id", "payload.session.id")
	if err != nil {
		return SessionWelcome{}, err
	}
	status, err := codec.RequiredString(session, "status", "payload.session.status")
	if err != nil {
		return SessionWelcome{}, err
	}
	keepalive, err := codec.RequiredInt(session, "keepalive_timeout_seconds", "payload.session.keepalive_timeout_seconds")
	if err != nil {
		return SessionWelcome{}, err
	}
	reconnectURL, hasReconnectURL, err := codec.OptionalString(session, "reconnect_url", "payload.session.reconnect_url")
	if err != nil {
		return SessionWelcome{}, err
	}
	connectedAt, err := codec.RequiredTimestamp(session, "connected_at", "payload.session.connected_at")
	if err != nil {
		return SessionWelcome{}, err
	}

	return SessionWelcome{
		ID:                      id,
		Status:                  status,
		KeepaliveTimeoutSeconds: keepalive,
		ReconnectURL:            reconnectURL,
		HasReconnectURL:         hasReconnectURL,
		ConnectedAt:             connectedAt,
	}, nil
}

// SessionReconnect is the payload of a session_reconnect frame. It
// shares the same "session" wrapper shape as SessionWelcome, but only
// id and reconnect_url are meaningful here.
type SessionReconnect struct {
	ID           string
	ReconnectURL string
}

// DecodeSessionReconnect decodes a session_reconnect payload.
func DecodeSessionReconnect(raw json.RawMessage) (SessionReconnect, error) {
	root, err := codec.Object(raw, "payload")
	if err != nil {
		return SessionReconnect{}, err
	}
	sessionRaw, err := codec.RequiredRaw(root, "session", "payload.session")
	if err != nil {
		return SessionReconnect{}, err
	}
	session, err := codec.Object(sessionRaw, "payload.session")
	if err != nil {
		return SessionReconnect{}, err
	}
	id, err := codec.RequiredString(session, "id", "payload.session.id")
	if err != nil {
		return SessionReconnect{}, err
	}
	reconnectURL, err := codec.RequiredString(session, "reconnect_url", "payload.session.reconnect_url")
	if err != nil {
		return SessionReconnect{}, err
	}
	return SessionReconnect{ID: id, ReconnectURL: reconnectURL}, nil
}
