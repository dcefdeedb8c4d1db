package payload

import (
	"encoding/json"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

// Boundary is a [start,end) character range into a message's text,
// used to locate the span automod or a blocked term matched.
type Boundary struct {
	StartPos int
	EndPos   int
}

// AutomodReason is the "automod" variant of an automod hold/update reason.
type AutomodReason struct {
	Category   string
	Level      int
	Boundaries []Boundary
}

// FoundTerm is one entry of a BlockedTermReason's term list.
type FoundTerm struct {
	TermID                    string
	Boundary                  Boundary
	OwnerBroadcasterUserID    string
	OwnerBroadcasterUserLogin string
	OwnerBroadcasterUserName  string
}

// BlockedTermReason is the "blocked_term" variant of an automod hold/update reason.
type BlockedTermReason struct {
	TermsFound []FoundTerm
}

// AutomodDecision is the reason a message was held or updated by
// automod, tagged by Type ("automod" or "blocked_term").
type AutomodDecision struct {
	Type string

	Automod    AutomodReason
	HasAutomod bool

	BlockedTerm    BlockedTermReason
	HasBlockedTerm bool
}

func decodeBoundary(raw json.RawMessage, field string) (Boundary, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return Boundary{}, err
	}
	start, err := codec.RequiredInt(obj, "start_pos", field+".start_pos")
	if err != nil {
		return Boundary{}, err
	}
	end, err := codec.RequiredInt(obj, "end_pos", field+".end_pos")
	if err != nil {
		return Boundary{}, err
	}
	return Boundary{StartPos: start, EndPos: end}, nil
}

func decodeAutomodReason(raw json.RawMessage, field string) (AutomodReason, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return AutomodReason{}, err
	}
	category, err := codec.RequiredString(obj, "category", field+".category")
	if err != nil {
		return AutomodReason{}, err
	}
	level, err := codec.RequiredInt(obj, "level", field+".level")
	if err != nil {
		return AutomodReason{}, err
	}
	boundariesRaw, err := codec.RequiredRaw(obj, "boundaries", field+".boundaries")
	if err != nil {
		return AutomodReason{}, err
	}
	var rawItems []json.RawMessage
	if err := json.Unmarshal(boundariesRaw, &rawItems); err != nil {
		return AutomodReason{}, codec.NewExpectedObject(field + ".boundaries")
	}
	boundaries := make([]Boundary, len(rawItems))
	for i, r := range rawItems {
		b, err := decodeBoundary(r, arrayElemField(field+".boundaries", i))
		if err != nil {
			return AutomodReason{}, err
		}
		boundaries[i] = b
	}
	return AutomodReason{Category: category, Level: level, Boundaries: boundaries}, nil
}

func decodeFoundTerm(raw json.RawMessage, field string) (FoundTerm, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return FoundTerm{}, err
	}
	termID, err := codec.RequiredString(obj, "term_id", field+".term_id")
	if err != nil {
		return FoundTerm{}, err
	}
	boundaryRaw, err := codec.RequiredRaw(obj, "boundary", field+".boundary")
	if err != nil {
		return FoundTerm{}, err
	}
	boundary, err := decodeBoundary(boundaryRaw, field+".boundary")
	if err != nil {
		return FoundTerm{}, err
	}
	ownerID, err := codec.RequiredString(obj, "owner_broadcaster_user_id", field+".owner_broadcaster_user_id")
	if err != nil {
		return FoundTerm{}, err
	}
	ownerLogin, err := codec.RequiredString(obj, "owner_broadcaster_user_login", field+".owner_broadcaster_user_login")
	if err != nil {
		return FoundTerm{}, err
	}
	ownerName, err := codec.RequiredString(obj, "owner_broadcaster_user_name", field+".owner_broadcaster_user_name")
	if err != nil {
		return FoundTerm{}, err
	}
	return FoundTerm{
		TermID:                    termID,
		Boundary:                  boundary,
		OwnerBroadcasterUserID:    ownerID,
		OwnerBroadcasterUserLogin: ownerLogin,
		OwnerBroadcasterUserName:  ownerName,
	}, nil
}

func decodeBlockedTermReason(raw json.RawMessage, field string) (BlockedTermReason, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return BlockedTermReason{}, err
	}
	termsRaw, err := codec.RequiredRaw(obj, "terms_found", field+".terms_found")
	if err != nil {
		return BlockedTermReason{}, err
	}
	var rawItems []json.RawMessage
	if err := json.Unmarshal(termsRaw, &rawItems); err != nil {
		return BlockedTermReason{}, codec.NewExpectedObject(field + ".terms_found")
	}
	terms := make([]FoundTerm, len(rawItems))
	for i, r := range rawItems {
		t, err := decodeFoundTerm(r, arrayElemField(field+".terms_found", i))
		if err != nil {
			return BlockedTermReason{}, err
		}
		terms[i] = t
	}
	return BlockedTermReason{TermsFound: terms}, nil
}

func decodeAutomodDecision(raw json.RawMessage, field string) (AutomodDecision, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return AutomodDecision{}, err
	}
	typ, err := codec.RequiredString(obj, "type", field+".type")
	if err != nil {
		return AutomodDecision{}, err
	}
	decision := AutomodDecision{Type: typ}
	if raw := codec.OptionalRaw(obj, "automod"); raw != nil {
		v, err := decodeAutomodReason(raw, field+".automod")
		if err != nil {
			return AutomodDecision{}, err
		}
		decision.Automod, decision.HasAutomod = v, true
	}
	if raw := codec.OptionalRaw(obj, "blocked_term"); raw != nil {
		v, err := decodeBlockedTermReason(raw, field+".blocked_term")
		if err != nil {
			return AutomodDecision{}, err
		}
		decision.BlockedTerm, decision.HasBlockedTerm = v, true
	}
	switch typ {
	case "automod", "blocked_term":
	default:
		return AutomodDecision{}, codec.NewUnknownVariant(field+".type", typ)
	}
	return decision, nil
}

// AutomodMessageHoldEvent is the decoded event of an
// automod.message.hold@2 notification.
type AutomodMessageHoldEvent struct {
	Broadcaster User
	User        User
	MessageID   string
	Message     StructuredMessage
	HeldAt      string
	Reason      AutomodDecision
}

// AutomodMessageHold is the full automod.message.hold@2 notification payload.
type AutomodMessageHold struct {
	Subscription Subscription
	Event        AutomodMessageHoldEvent
}

// DecodeAutomodMessageHold decodes an automod.message.hold@2 notification payload.
func DecodeAutomodMessageHold(raw json.RawMessage) (AutomodMessageHold, error) {
	root, err := codec.Object(raw, "payload")
	if err != nil {
		return AutomodMessageHold{}, err
	}
	subRaw, err := codec.RequiredRaw(root, "subscription", "payload.subscription")
	if err != nil {
		return AutomodMessageHold{}, err
	}
	sub, err := DecodeSubscription(subRaw, "payload.subscription")
	if err != nil {
		return AutomodMessageHold{}, err
	}
	eventRaw, err := codec.RequiredRaw(root, "event", "payload.event")
	if err != nil {
		return AutomodMessageHold{}, err
	}
	const field = "payload.event"
	obj, err := codec.Object(eventRaw, field)
	if err != nil {
		return AutomodMessageHold{}, err
	}
	broadcaster, err := requiredUser(obj, "broadcaster_user", field)
	if err != nil {
		return AutomodMessageHold{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return AutomodMessageHold{}, err
	}
	messageID, err := codec.RequiredString(obj, "message_id", field+".message_id")
	if err != nil {
		return AutomodMessageHold{}, err
	}
	messageRaw, err := codec.RequiredRaw(obj, "message", field+".message")
	if err != nil {
		return AutomodMessageHold{}, err
	}
	message, err := decodeStructuredMessage(messageRaw, field+".message")
	if err != nil {
		return AutomodMessageHold{}, err
	}
	heldAt, err := codec.RequiredString(obj, "held_at", field+".held_at")
	if err != nil {
		return AutomodMessageHold{}, err
	}
	reasonRaw, err := codec.RequiredRaw(obj, "reason", field+".reason")
	if err != nil {
		return AutomodMessageHold{}, err
	}
	reason, err := decodeAutomodDecision(reasonRaw, field+".reason")
	if err != nil {
		return AutomodMessageHold{}, err
	}
	return AutomodMessageHold{
		Subscription: sub,
		Event: AutomodMessageHoldEvent{
			Broadcaster: broadcaster,
			User:        user,
			MessageID:   messageID,
			Message:     message,
			HeldAt:      heldAt,
			Reason:      reason,
		},
	}, nil
}

// AutomodMessageUpdateEvent is the decoded event of an
// automod.message.update@2 notification.
type AutomodMessageUpdateEvent struct {
	Broadcaster User
	User        User
	Moderator   User
	MessageID   string
	Message     StructuredMessage
	Status      string
	HeldAt      string
	Reason      AutomodDecision
}

// AutomodMessageUpdate is the full automod.message.update@2 notification payload.
type AutomodMessageUpdate struct {
	Subscription Subscription
	Event        AutomodMessageUpdateEvent
}

// DecodeAutomodMessageUpdate decodes an automod.message.update@2 notification payload.
func DecodeAutomodMessageUpdate(raw json.RawMessage) (AutomodMessageUpdate, error) {
	root, err := codec.Object(raw, "payload")
	if err != nil {
		return AutomodMessageUpdate{}, err
	}
	subRaw, err := codec.RequiredRaw(root, "subscription", "payload.subscription")
	if err != nil {
		return AutomodMessageUpdate{}, err
	}
	sub, err := DecodeSubscription(subRaw, "payload.subscription")
	if err != nil {
		return AutomodMessageUpdate{}, err
	}
	eventRaw, err := codec.RequiredRaw(root, "event", "payload.event")
	if err != nil {
		return AutomodMessageUpdate{}, err
	}
	const field = "payload.event"
	obj, err := codec.Object(eventRaw, field)
	if err != nil {
		return AutomodMessageUpdate{}, err
	}
	broadcaster, err := requiredUser(obj, "broadcaster_user", field)
	if err != nil {
		return AutomodMessageUpdate{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return AutomodMessageUpdate{}, err
	}
	moderator, err := requiredUser(obj, "moderator_user", field)
	if err != nil {
		return AutomodMessageUpdate{}, err
	}
	messageID, err := codec.RequiredString(obj, "message_id", field+".message_id")
	if err != nil {
		return AutomodMessageUpdate{}, err
	}
	messageRaw, err := codec.RequiredRaw(obj, "message", field+".message")
	if err != nil {
		return AutomodMessageUpdate{}, err
	}
	message, err := decodeStructuredMessage(messageRaw, field+".message")
	if err != nil {
		return AutomodMessageUpdate{}, err
	}
	status, err := codec.RequiredString(obj, "status", field+".status")
	if err != nil {
		return AutomodMessageUpdate{}, err
	}
	heldAt, err := codec.RequiredString(obj, "held_at", field+".held_at")
	if err != nil {
		return AutomodMessageUpdate{}, err
	}
	reasonRaw, err := codec.RequiredRaw(obj, "reason", field+".reason")
	if err != nil {
		return AutomodMessageUpdate{}, err
	}
	reason, err := decodeAutomodDecision(reasonRaw, field+".reason")
	if err != nil {
		return AutomodMessageUpdate{}, err
	}
	return AutomodMessageUpdate{
		Subscription: sub,
		Event: AutomodMessageUpdateEvent{
			Broadcaster: broadcaster,
			User:        user,
			Moderator:   moderator,
			MessageID:   messageID,
			Message:     message,
			Status:      status,
			HeldAt:      heldAt,
			Reason:      reason,
		},
	}, nil
}
