package payload

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

func TestDecodeStructuredMessage_TextAndEmoteFragments(t *testing.T) {
	raw := json.RawMessage(`{
		"text": "hello Kappa",
		"fragments": [
			{"type": "text", "text": "hello "},
			{"type": "emote", "text": "Kappa", "emote": {"id": "25", "emote_set_id": "0"}}
		]
	}`)
	msg, err := decodeStructuredMessage(raw, "event.message")
	if err != nil {
		t.Fatalf("decodeStructuredMessage: %v", err)
	}
	if len(msg.Fragments) != 2 {
		t.Fatalf("len(Fragments) = %d, want 2", len(msg.Fragments))
	}
	if msg.Fragments[0].HasEmote {
		t.Errorf("text fragment should not HasEmote")
	}
	if !msg.Fragments[1].HasEmote || msg.Fragments[1].Emote.ID != "25" {
		t.Errorf("emote fragment = %+v", msg.Fragments[1])
	}
}

func TestDecodeStructuredMessage_CheermoteFragment(t *testing.T) {
	raw := json.RawMessage(`{
		"text": "cheer100",
		"fragments": [{"type": "cheermote", "text": "cheer100", "cheermote": {"prefix": "cheer", "bits": 100, "tier": 1}}]
	}`)
	msg, err := decodeStructuredMessage(raw, "event.message")
	if err != nil {
		t.Fatalf("decodeStructuredMessage: %v", err)
	}
	if !msg.Fragments[0].HasCheermote || msg.Fragments[0].Cheermote.Bits != 100 {
		t.Errorf("Cheermote = %+v", msg.Fragments[0].Cheermote)
	}
}

func TestDecodeStructuredMessage_MentionFragment(t *testing.T) {
	raw := json.RawMessage(`{
		"text": "@someone hi",
		"fragments": [{"type": "mention", "text": "@someone", "mention": {"user_id": "9", "user_name": "Someone", "user_login": "someone"}}]
	}`)
	msg, err := decodeStructuredMessage(raw, "event.message")
	if err != nil {
		t.Fatalf("decodeStructuredMessage: %v", err)
	}
	if !msg.Fragments[0].HasMention || msg.Fragments[0].Mention.UserLogin != "someone" {
		t.Errorf("Mention = %+v", msg.Fragments[0].Mention)
	}
}

func TestDecodeStructuredMessage_UnknownFragmentTypeErrors(t *testing.T) {
	raw := json.RawMessage(`{
		"text": "x",
		"fragments": [{"type": "future_fragment_kind", "text": "x"}]
	}`)
	_, err := decodeStructuredMessage(raw, "event.message")
	var cerr *codec.Error
	if !errors.As(err, &cerr) || cerr.Kind != codec.UnknownVariant {
		t.Fatalf("err = %v, want UnknownVariant", err)
	}
}

func TestDecodeStructuredMessage_EmptyFragmentsOK(t *testing.T) {
	raw := json.RawMessage(`{"text": "", "fragments": []}`)
	msg, err := decodeStructuredMessage(raw, "event.message")
	if err != nil {
		t.Fatalf("decodeStructuredMessage: %v", err)
	}
	if len(msg.Fragments) != 0 {
		t.Errorf("len(Fragments) = %d, want 0", len(msg.Fragments))
	}
}
