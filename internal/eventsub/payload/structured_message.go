package payload

import (
	"encoding/json"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

// StructuredCheermote is the "cheermote" fragment variant of a
// structured message, used by automod and suspicious-user payloads.
type StructuredCheermote struct {
	Prefix string
	Bits   int
	Tier   int
}

// StructuredEmote is the "emote" fragment variant of a structured
// message. Unlike payload.ChatEmote (used by channel.chat.message),
// this shape carries no owner_id — Twitch does not include it on the
// automod/suspicious-user family of events.
type StructuredEmote struct {
	ID         string
	EmoteSetID string
}

// StructuredMention is the "mention" fragment variant of a structured message.
type StructuredMention struct {
	UserID    string
	UserName  string
	UserLogin string
}

// Fragment is one piece of a structured Message, tagged by Type.
type Fragment struct {
	Type string
	Text string

	Cheermote    StructuredCheermote
	HasCheermote bool

	Emote    StructuredEmote
	HasEmote bool

	Mention    StructuredMention
	HasMention bool
}

// StructuredMessage is the message shape shared by automod and
// suspicious-user payloads, distinct from channel.chat.message's own
// Message type because its Emote fragment lacks an owner.
type StructuredMessage struct {
	Text      string
	Fragments []Fragment
}

func decodeStructuredMessage(raw json.RawMessage, field string) (StructuredMessage, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return StructuredMessage{}, err
	}
	text, err := codec.RequiredString(obj, "text", field+".text")
	if err != nil {
		return StructuredMessage{}, err
	}
	fragRaw, err := codec.RequiredRaw(obj, "fragments", field+".fragments")
	if err != nil {
		return StructuredMessage{}, err
	}
	var rawFragments []json.RawMessage
	if err := json.Unmarshal(fragRaw, &rawFragments); err != nil {
		return StructuredMessage{}, codec.NewExpectedObject(field + ".fragments")
	}
	fragments := make([]Fragment, len(rawFragments))
	for i, r := range rawFragments {
		f, err := decodeFragment(r, arrayElemField(field+".fragments", i))
		if err != nil {
			return StructuredMessage{}, err
		}
		fragments[i] = f
	}
	return StructuredMessage{Text: text, Fragments: fragments}, nil
}

func decodeFragment(raw json.RawMessage, field string) (Fragment, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return Fragment{}, err
	}
	typ, err := codec.RequiredString(obj, "type", field+".type")
	if err != nil {
		return Fragment{}, err
	}
	text, err := codec.RequiredString(obj, "text", field+".text")
	if err != nil {
		return Fragment{}, err
	}
	fragment := Fragment{Type: typ, Text: text}

	if raw := codec.OptionalRaw(obj, "cheermote"); raw != nil {
		v, err := decodeStructuredCheermote(raw, field+".cheermote")
		if err != nil {
			return Fragment{}, err
		}
		fragment.Cheermote, fragment.HasCheermote = v, true
	}
	if raw := codec.OptionalRaw(obj, "emote"); raw != nil {
		v, err := decodeStructuredEmote(raw, field+".emote")
		if err != nil {
			return Fragment{}, err
		}
		fragment.Emote, fragment.HasEmote = v, true
	}
	if raw := codec.OptionalRaw(obj, "mention"); raw != nil {
		v, err := decodeStructuredMention(raw, field+".mention")
		if err != nil {
			return Fragment{}, err
		}
		fragment.Mention, fragment.HasMention = v, true
	}

	switch typ {
	case "text", "cheermote", "emote", "mention":
	default:
		return Fragment{}, codec.NewUnknownVariant(field+".type", typ)
	}

	return fragment, nil
}

func decodeStructuredCheermote(raw json.RawMessage, field string) (StructuredCheermote, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return StructuredCheermote{}, err
	}
	prefix, err := codec.RequiredString(obj, "prefix", field+".prefix")
	if err != nil {
		return StructuredCheermote{}, err
	}
	bits, err := codec.RequiredInt(obj, "bits", field+".bits")
	if err != nil {
		return StructuredCheermote{}, err
	}
	tier, err := codec.RequiredInt(obj, "tier", field+".tier")
	if err != nil {
		return StructuredCheermote{}, err
	}
	return StructuredCheermote{Prefix: prefix, Bits: bits, Tier: tier}, nil
}

func decodeStructuredEmote(raw json.RawMessage, field string) (StructuredEmote, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return StructuredEmote{}, err
	}
	id, err := codec.RequiredString(obj, "id", field+".id")
	if err != nil {
		return StructuredEmote{}, err
	}
	emoteSetID, err := codec.RequiredString(obj, "emote_set_id", field+".emote_set_id")
	if err != nil {
		return StructuredEmote{}, err
	}
	return StructuredEmote{ID: id, EmoteSetID: emoteSetID}, nil
}

func decodeStructuredMention(raw json.RawMessage, field string) (StructuredMention, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return StructuredMention{}, err
	}
	userID, err := codec.RequiredString(obj, "user_id", field+".user_id")
	if err != nil {
		return StructuredMention{}, err
	}
	userName, err := codec.RequiredString(obj, "user_name", field+".user_name")
	if err != nil {
		return StructuredMention{}, err
	}
	userLogin, err := codec.RequiredString(obj, "user_login", field+".user_login")
	if err != nil {
		return StructuredMention{}, err
	}
	return StructuredMention{UserID: userID, UserName: userName, UserLogin: userLogin}, nil
}
