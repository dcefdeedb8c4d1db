package payload

import (
	"encoding/json"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

// SuspiciousStatus is a user's low-trust monitoring status, default
// SuspiciousStatusNone for forward compatibility.
type SuspiciousStatus int

const (
	SuspiciousStatusNone SuspiciousStatus = iota
	SuspiciousStatusActiveMonitoring
	SuspiciousStatusRestricted
)

var suspiciousStatusTable = map[string]SuspiciousStatus{
	"none":              SuspiciousStatusNone,
	"active_monitoring": SuspiciousStatusActiveMonitoring,
	"restricted":        SuspiciousStatusRestricted,
}

// SuspiciousType is how a user came to be flagged, default
// SuspiciousTypeUnknown for forward compatibility.
type SuspiciousType int

const (
	SuspiciousTypeUnknown SuspiciousType = iota
	SuspiciousTypeManual
	SuspiciousTypeBanEvaderDetector
	SuspiciousTypeSharedChannelBan
)

var suspiciousTypeTable = map[string]SuspiciousType{
	"manual":              SuspiciousTypeManual,
	"ban_evader_detector": SuspiciousTypeBanEvaderDetector,
	"shared_channel_ban":  SuspiciousTypeSharedChannelBan,
}

// BanEvasionEvaluation is Twitch's confidence that a user is evading a
// ban, default BanEvasionEvaluationUnknown for forward compatibility.
type BanEvasionEvaluation int

const (
	BanEvasionEvaluationUnknown BanEvasionEvaluation = iota
	BanEvasionEvaluationPossible
	BanEvasionEvaluationLikely
)

var banEvasionEvaluationTable = map[string]BanEvasionEvaluation{
	"possible": BanEvasionEvaluationPossible,
	"likely":   BanEvasionEvaluationLikely,
}

func decodeSuspiciousTypes(obj map[string]json.RawMessage, key, field string) ([]SuspiciousType, error) {
	raw, ok := obj[key]
	if !ok || raw == nil || string(raw) == "null" {
		return nil, codec.NewExpectedObject(field)
	}
	var rawItems []json.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err != nil {
		return nil, codec.NewExpectedObject(field)
	}
	types := make([]SuspiciousType, len(rawItems))
	for i, r := range rawItems {
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			return nil, codec.NewExpectedObject(arrayElemField(field, i))
		}
		if v, found := suspiciousTypeTable[s]; found {
			types[i] = v
		} else {
			types[i] = SuspiciousTypeUnknown
		}
	}
	return types, nil
}

// ChannelSuspiciousUserMessageEvent is the decoded event of a
// channel.suspicious_user.message@1 notification.
type ChannelSuspiciousUserMessageEvent struct {
	Broadcaster          User
	User                 User
	LowTrustStatus       SuspiciousStatus
	SharedBanChannelIDs  []string
	Types                []SuspiciousType
	BanEvasionEvaluation BanEvasionEvaluation
	Message              StructuredMessage
}

// ChannelSuspiciousUserMessage is the full
// channel.suspicious_user.message@1 notification payload.
type ChannelSuspiciousUserMessage struct {
	Subscription Subscription
	Event        ChannelSuspiciousUserMessageEvent
}

// DecodeChannelSuspiciousUserMessage decodes a
// channel.suspicious_user.message@1 notification payload.
func DecodeChannelSuspiciousUserMessage(raw json.RawMessage) (ChannelSuspiciousUserMessage, error) {
	root, err := codec.Object(raw, "payload")
	if err != nil {
		return ChannelSuspiciousUserMessage{}, err
	}
	subRaw, err := codec.RequiredRaw(root, "subscription", "payload.subscription")
	if err != nil {
		return ChannelSuspiciousUserMessage{}, err
	}
	sub, err := DecodeSubscription(subRaw, "payload.subscription")
	if err != nil {
		return ChannelSuspiciousUserMessage{}, err
	}
	eventRaw, err := codec.RequiredRaw(root, "event", "payload.event")
	if err != nil {
		return ChannelSuspiciousUserMessage{}, err
	}
	const field = "payload.event"
	obj, err := codec.Object(eventRaw, field)
	if err != nil {
		return ChannelSuspiciousUserMessage{}, err
	}
	broadcaster, err := requiredUser(obj, "broadcaster_user", field)
	if err != nil {
		return ChannelSuspiciousUserMessage{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return ChannelSuspiciousUserMessage{}, err
	}
	lowTrustStatus, err := codec.Enum(obj, "low_trust_status", field+".low_trust_status", suspiciousStatusTable, SuspiciousStatusNone)
	if err != nil {
		return ChannelSuspiciousUserMessage{}, err
	}
	sharedBanChannelIDs, err := codec.RequiredStringSlice(obj, "shared_ban_channel_ids", field+".shared_ban_channel_ids")
	if err != nil {
		return ChannelSuspiciousUserMessage{}, err
	}
	types, err := decodeSuspiciousTypes(obj, "types", field+".types")
	if err != nil {
		return ChannelSuspiciousUserMessage{}, err
	}
	banEvasion, err := codec.Enum(obj, "ban_evasion_evaluation", field+".ban_evasion_evaluation", banEvasionEvaluationTable, BanEvasionEvaluationUnknown)
	if err != nil {
		return ChannelSuspiciousUserMessage{}, err
	}
	messageRaw, err := codec.RequiredRaw(obj, "message", field+".message")
	if err != nil {
		return ChannelSuspiciousUserMessage{}, err
	}
	message, err := decodeStructuredMessage(messageRaw, field+".message")
	if err != nil {
		return ChannelSuspiciousUserMessage{}, err
	}
	return ChannelSuspiciousUserMessage{
		Subscription: sub,
		Event: ChannelSuspiciousUserMessageEvent{
			Broadcaster:          broadcaster,
			User:                 user,
			LowTrustStatus:       lowTrustStatus,
			SharedBanChannelIDs:  sharedBanChannelIDs,
			Types:                types,
			BanEvasionEvaluation: banEvasion,
			Message:              message,
		},
	}, nil
}

// ChannelSuspiciousUserUpdateEvent is the decoded event of a
// channel.suspicious_user.update@1 notification.
type ChannelSuspiciousUserUpdateEvent struct {
	Broadcaster    User
	User           User
	Moderator      User
	LowTrustStatus SuspiciousStatus
}

// ChannelSuspiciousUserUpdate is the full
// channel.suspicious_user.update@1 notification payload.
type ChannelSuspiciousUserUpdate struct {
	Subscription Subscription
	Event        ChannelSuspiciousUserUpdateEvent
}

// DecodeChannelSuspiciousUserUpdate decodes a
// channel.suspicious_user.update@1 notification payload.
func DecodeChannelSuspiciousUserUpdate(raw json.RawMessage) (ChannelSuspiciousUserUpdate, error) {
	root, err := codec.Object(raw, "payload")
	if err != nil {
		return ChannelSuspiciousUserUpdate{}, err
	}
	subRaw, err := codec.RequiredRaw(root, "subscription", "payload.subscription")
	if err != nil {
		return ChannelSuspiciousUserUpdate{}, err
	}
	sub, err := DecodeSubscription(subRaw, "payload.subscription")
	if err != nil {
		return ChannelSuspiciousUserUpdate{}, err
	}
	eventRaw, err := codec.RequiredRaw(root, "event", "payload.event")
	if err != nil {
		return ChannelSuspiciousUserUpdate{}, err
	}
	const field = "payload.event"
	obj, err := codec.Object(eventRaw, field)
	if err != nil {
		return ChannelSuspiciousUserUpdate{}, err
	}
	broadcaster, err := requiredUser(obj, "broadcaster_user", field)
	if err != nil {
		return ChannelSuspiciousUserUpdate{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return ChannelSuspiciousUserUpdate{}, err
	}
	moderator, err := requiredUser(obj, "moderator_user", field)
	if err != nil {
		return ChannelSuspiciousUserUpdate{}, err
	}
	lowTrustStatus, err := codec.Enum(obj, "low_trust_status", field+".low_trust_status", suspiciousStatusTable, SuspiciousStatusNone)
	if err != nil {
		return ChannelSuspiciousUserUpdate{}, err
	}
	return ChannelSuspiciousUserUpdate{
		Subscription: sub,
		Event: ChannelSuspiciousUserUpdateEvent{
			Broadcaster:    broadcaster,
			User:           user,
			Moderator:      moderator,
			LowTrustStatus: lowTrustStatus,
		},
	}, nil
}
