package payload

import (
	"encoding/json"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

// Transport describes how a Subscription is delivered to the client.
type Transport struct {
	Method    string
	SessionID string
}

// Subscription echoes the server-side subscription record embedded in
// every notification payload alongside its event.
type Subscription struct {
	ID        string
	Status    string
	Type      string
	Version   string
	Transport Transport
	CreatedAt string
	Cost      int
}

// decodeTransport decodes a subscription's transport object.
func decodeTransport(raw json.RawMessage, field string) (Transport, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return Transport{}, err
	}
	method, err := codec.RequiredString(obj, "method", field+".method")
	if err != nil {
		return Transport{}, err
	}
	sessionID, err := codec.RequiredString(obj, "session_id", field+".session_id")
	if err != nil {
		return Transport{}, err
	}
	return Transport{Method: method, SessionID: sessionID}, nil
}

// DecodeSubscription decodes the "subscription" object shared by every
// notification payload.
func DecodeSubscription(raw json.RawMessage, field string) (Subscription, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return Subscription{}, err
	}
	id, err := codec.RequiredString(obj, "id", field+".id")
	if err != nil {
		return Subscription{}, err
	}
	status, err := codec.RequiredString(obj, "status", field+".status")
	if err != nil {
		return Subscription{}, err
	}
	typ, err := codec.RequiredString(obj, "type", field+".type")
	if err != nil {
		return Subscription{}, err
	}
	version, err := codec.RequiredString(obj, "version", field+".version")
	if err != nil {
		return Subscription{}, err
	}
	transportRaw, err := codec.RequiredRaw(obj, "transport", field+".transport")
	if err != nil {
		return Subscription{}, err
	}
	transport, err := decodeTransport(transportRaw, field+".transport")
	if err != nil {
		return Subscription{}, err
	}
	createdAt, err := codec.RequiredString(obj, "created_at", field+".created_at")
	if err != nil {
		return Subscription{}, err
	}
	cost, err := codec.RequiredInt(obj, "cost", field+".cost")
	if err != nil {
		return Subscription{}, err
	}

	return Subscription{
		ID:        id,
		Status:    status,
		Type:      typ,
		Version:   version,
		Transport: transport,
		CreatedAt: createdAt,
		Cost:      cost,
	}, nil
}
