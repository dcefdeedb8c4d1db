package payload

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

func chatMessagePayload(extraEvent string) json.RawMessage {
	return json.RawMessage(`{
		"subscription": {
			"id": "sub-1", "status": "enabled", "type": "channel.chat.message", "version": "1",
			"transport": {"method": "websocket", "session_id": "s1"},
			"created_at": "2023-07-19T14:56:51.616329898Z", "cost": 0
		},
		"event": {
			"broadcaster_user_id": "1", "broadcaster_user_login": "b", "broadcaster_user_name": "B",
			"chatter_user_id": "2", "chatter_user_login": "c", "chatter_user_name": "C",
			"color": "#FF0000",
			"badges": [{"set_id": "moderator", "id": "1", "info": ""}],
			"message_id": "msg-1",
			"message_type": "text",
			"message": {
				"text": "GG Kappa",
				"fragments": [
					{"type": "text", "text": "GG "},
					{"type": "emote", "text": "Kappa", "emote": {"id": "25", "emote_set_id": "0", "owner_id": "0", "format": ["static"]}}
				]
			}
			` + extraEvent + `
		}
	}`)
}

func TestDecodeChannelChatMessage_Basic(t *testing.T) {
	out, err := DecodeChannelChatMessage(chatMessagePayload(""))
	if err != nil {
		t.Fatalf("DecodeChannelChatMessage: %v", err)
	}
	if out.Event.HasCheer || out.Event.HasReply {
		t.Errorf("expected no cheer/reply, got HasCheer=%v HasReply=%v", out.Event.HasCheer, out.Event.HasReply)
	}
	if len(out.Event.Badges) != 1 || out.Event.Badges[0].SetID != "moderator" {
		t.Errorf("Badges = %+v", out.Event.Badges)
	}
	if len(out.Event.Message.Fragments) != 2 || !out.Event.Message.Fragments[1].HasEmote {
		t.Errorf("Message.Fragments = %+v", out.Event.Message.Fragments)
	}
	if out.Event.Message.Fragments[1].Emote.OwnerID != "0" {
		t.Errorf("Emote.OwnerID = %q, want 0 (chat fragments carry an owner, unlike structured_message)", out.Event.Message.Fragments[1].Emote.OwnerID)
	}
}

func TestDecodeChannelChatMessage_WithCheer(t *testing.T) {
	out, err := DecodeChannelChatMessage(chatMessagePayload(`, "cheer": {"bits": 100}`))
	if err != nil {
		t.Fatalf("DecodeChannelChatMessage: %v", err)
	}
	if !out.Event.HasCheer || out.Event.Cheer.Bits != 100 {
		t.Errorf("Cheer = %+v, HasCheer=%v", out.Event.Cheer, out.Event.HasCheer)
	}
}

func TestDecodeChannelChatMessage_WithReply(t *testing.T) {
	extra := `, "reply": {
		"parent_message_id": "p1", "parent_user_id": "9", "parent_user_login": "pu", "parent_user_name": "PU",
		"parent_message_body": "original", "thread_message_id": "t1", "thread_user_id": "10",
		"thread_user_login": "tu", "thread_user_name": "TU"
	}`
	out, err := DecodeChannelChatMessage(chatMessagePayload(extra))
	if err != nil {
		t.Fatalf("DecodeChannelChatMessage: %v", err)
	}
	if !out.Event.HasReply || out.Event.Reply.ParentMessageID != "p1" {
		t.Errorf("Reply = %+v, HasReply=%v", out.Event.Reply, out.Event.HasReply)
	}
}

func TestDecodeChannelChatMessage_UnknownFragmentTypeErrors(t *testing.T) {
	raw := json.RawMessage(`{
		"subscription": {
			"id": "sub-1", "status": "enabled", "type": "channel.chat.message", "version": "1",
			"transport": {"method": "websocket", "session_id": "s1"},
			"created_at": "2023-07-19T14:56:51.616329898Z", "cost": 0
		},
		"event": {
			"broadcaster_user_id": "1", "broadcaster_user_login": "b", "broadcaster_user_name": "B",
			"chatter_user_id": "2", "chatter_user_login": "c", "chatter_user_name": "C",
			"color": "#FF0000",
			"badges": [],
			"message_id": "msg-1",
			"message_type": "text",
			"message": {
				"text": "hi",
				"fragments": [{"type": "some_future_type", "text": "hi"}]
			}
		}
	}`)
	_, err := DecodeChannelChatMessage(raw)
	var codecErr *codec.Error
	if !errors.As(err, &codecErr) || codecErr.Kind != codec.UnknownVariant {
		t.Fatalf("err = %v, want UnknownVariant", err)
	}
}

func TestDecodeChannelChatMessage_ChannelPointsRewardOptional(t *testing.T) {
	out, err := DecodeChannelChatMessage(chatMessagePayload(`, "channel_points_custom_reward_id": "reward-1"`))
	if err != nil {
		t.Fatalf("DecodeChannelChatMessage: %v", err)
	}
	if !out.Event.HasChannelPointsCustomRewardID || out.Event.ChannelPointsCustomRewardID != "reward-1" {
		t.Errorf("ChannelPointsCustomRewardID = %q, has=%v", out.Event.ChannelPointsCustomRewardID, out.Event.HasChannelPointsCustomRewardID)
	}

	out2, err := DecodeChannelChatMessage(chatMessagePayload(""))
	if err != nil {
		t.Fatalf("DecodeChannelChatMessage: %v", err)
	}
	if out2.Event.HasChannelPointsCustomRewardID {
		t.Errorf("HasChannelPointsCustomRewardID = true when absent")
	}
}
