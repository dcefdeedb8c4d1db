package payload

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

func TestDecodeChannelUpdate_OK(t *testing.T) {
	raw := json.RawMessage(`{
		"subscription": {
			"id": "sub-1", "status": "enabled", "type": "channel.update", "version": "1",
			"transport": {"method": "websocket", "session_id": "s1"},
			"created_at": "2023-07-19T14:56:51.616329898Z", "cost": 0
		},
		"event": {
			"broadcaster_user_id": "1", "broadcaster_user_login": "b", "broadcaster_user_name": "B",
			"title": "Writing a Go client", "language": "en",
			"category_id": "509670", "category_name": "Science & Technology",
			"is_mature": false
		}
	}`)
	out, err := DecodeChannelUpdate(raw)
	if err != nil {
		t.Fatalf("DecodeChannelUpdate: %v", err)
	}
	if out.Event.Title != "Writing a Go client" || out.Event.CategoryID != "509670" {
		t.Errorf("got %+v", out.Event)
	}
}

func TestDecodeChannelUpdate_MissingTitle(t *testing.T) {
	raw := json.RawMessage(`{
		"subscription": {
			"id": "sub-1", "status": "enabled", "type": "channel.update", "version": "1",
			"transport": {"method": "websocket", "session_id": "s1"},
			"created_at": "2023-07-19T14:56:51.616329898Z", "cost": 0
		},
		"event": {
			"broadcaster_user_id": "1", "broadcaster_user_login": "b", "broadcaster_user_name": "B",
			"language": "en", "category_id": "509670", "category_name": "Science & Technology",
			"is_mature": false
		}
	}`)
	_, err := DecodeChannelUpdate(raw)
	var cerr *codec.Error
	if !errors.As(err, &cerr) || cerr.Kind != codec.FieldMissing {
		t.Fatalf("err = %v, want FieldMissing", err)
	}
}

func TestDecodeStreamOnline_OK(t *testing.T) {
	raw := json.RawMessage(`{
		"subscription": {
			"id": "sub-1", "status": "enabled", "type": "stream.online", "version": "1",
			"transport": {"method": "websocket", "session_id": "s1"},
			"created_at": "2023-07-19T14:56:51.616329898Z", "cost": 0
		},
		"event": {
			"id": "9001", "broadcaster_user_id": "1", "broadcaster_user_login": "b", "broadcaster_user_name": "B",
			"type": "live", "started_at": "2023-07-19T14:56:51.616329898Z"
		}
	}`)
	out, err := DecodeStreamOnline(raw)
	if err != nil {
		t.Fatalf("DecodeStreamOnline: %v", err)
	}
	if out.Event.ID != "9001" || out.Event.Type != "live" || out.Event.StartedAt.IsZero() {
		t.Errorf("got %+v", out.Event)
	}
}

func TestDecodeStreamOnline_BadTimestamp(t *testing.T) {
	raw := json.RawMessage(`{
		"subscription": {
			"id": "sub-1", "status": "enabled", "type": "stream.online", "version": "1",
			"transport": {"method": "websocket", "session_id": "s1"},
			"created_at": "2023-07-19T14:56:51.616329898Z", "cost": 0
		},
		"event": {
			"id": "9001", "broadcaster_user_id": "1", "broadcaster_user_login": "b", "broadcaster_user_name": "B",
			"type": "live", "started_at": "not-a-timestamp"
		}
	}`)
	_, err := DecodeStreamOnline(raw)
	var cerr *codec.Error
	if !errors.As(err, &cerr) || cerr.Kind != codec.BadTimestamp {
		t.Fatalf("err = %v, want BadTimestamp", err)
	}
}

func TestDecodeStreamOffline_OK(t *testing.T) {
	raw := json.RawMessage(`{
		"subscription": {
			"id": "sub-1", "status": "enabled", "type": "stream.offline", "version": "1",
			"transport": {"method": "websocket", "session_id": "s1"},
			"created_at": "2023-07-19T14:56:51.616329898Z", "cost": 0
		},
		"event": {
			"broadcaster_user_id": "1", "broadcaster_user_login": "b", "broadcaster_user_name": "B"
		}
	}`)
	out, err := DecodeStreamOffline(raw)
	if err != nil {
		t.Fatalf("DecodeStreamOffline: %v", err)
	}
	if out.Event.Broadcaster.Login != "b" {
		t.Errorf("got %+v", out.Event)
	}
}
