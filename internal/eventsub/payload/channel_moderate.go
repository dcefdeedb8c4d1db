package payload

import (
	"encoding/json"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

// Action is the moderation action carried by a channel.moderate@2
// notification. Unrecognized actions decode to ActionUnknown so new
// Twitch actions don't break existing callers.
type Action int

const (
	ActionUnknown Action = iota
	ActionBan
	ActionTimeout
	ActionUnban
	ActionUntimeout
	ActionClear
	ActionEmoteonly
	ActionEmoteonlyoff
	ActionFollowers
	ActionFollowersoff
	ActionUniquechat
	ActionUniquechatoff
	ActionSlow
	ActionSlowoff
	ActionSubscribers
	ActionSubscribersoff
	ActionUnraid
	ActionDeleteMessage
	ActionUnvip
	ActionVip
	ActionRaid
	ActionAddBlockedTerm
	ActionAddPermittedTerm
	ActionRemoveBlockedTerm
	ActionRemovePermittedTerm
	ActionMod
	ActionUnmod
	ActionApproveUnbanRequest
	ActionDenyUnbanRequest
	ActionWarn
	ActionSharedChatBan
	ActionSharedChatTimeout
	ActionSharedChatUnban
	ActionSharedChatUntimeout
	ActionSharedChatDelete
)

var actionTable = map[string]Action{
	"ban":                    ActionBan,
	"timeout":                ActionTimeout,
	"unban":                  ActionUnban,
	"untimeout":              ActionUntimeout,
	"clear":                  ActionClear,
	"emoteonly":              ActionEmoteonly,
	"emoteonlyoff":           ActionEmoteonlyoff,
	"followers":              ActionFollowers,
	"followersoff":           ActionFollowersoff,
	"uniquechat":             ActionUniquechat,
	"uniquechatoff":          ActionUniquechatoff,
	"slow":                   ActionSlow,
	"slowoff":                ActionSlowoff,
	"subscribers":            ActionSubscribers,
	"subscribersoff":         ActionSubscribersoff,
	"unraid":                 ActionUnraid,
	"delete":                 ActionDeleteMessage,
	"unvip":                  ActionUnvip,
	"vip":                    ActionVip,
	"raid":                   ActionRaid,
	"add_blocked_term":       ActionAddBlockedTerm,
	"add_permitted_term":     ActionAddPermittedTerm,
	"remove_blocked_term":    ActionRemoveBlockedTerm,
	"remove_permitted_term":  ActionRemovePermittedTerm,
	"mod":                    ActionMod,
	"unmod":                  ActionUnmod,
	"approve_unban_request":  ActionApproveUnbanRequest,
	"deny_unban_request":     ActionDenyUnbanRequest,
	"warn":                   ActionWarn,
	"shared_chat_ban":        ActionSharedChatBan,
	"shared_chat_timeout":    ActionSharedChatTimeout,
	"shared_chat_unban":      ActionSharedChatUnban,
	"shared_chat_untimeout":  ActionSharedChatUntimeout,
	"shared_chat_delete":     ActionSharedChatDelete,
}

// ModerateFollowers is the sibling payload for the "followers" action.
type ModerateFollowers struct {
	FollowDurationMinutes int
}

// ModerateSlow is the sibling payload for the "slow" action.
type ModerateSlow struct {
	WaitTimeSeconds int
}

// ModerateVip is the sibling payload shared by the "vip" and "unvip" actions.
type ModerateVip struct {
	User User
}

// ModerateMod is the sibling payload shared by the "mod" and "unmod" actions.
type ModerateMod struct {
	User User
}

// ModerateBan is the sibling payload shared by "ban" and "shared_chat_ban".
type ModerateBan struct {
	User   User
	Reason string
}

// ModerateUnban is the sibling payload shared by "unban" and "shared_chat_unban".
type ModerateUnban struct {
	User User
}

// ModerateTimeout is the sibling payload shared by "timeout" and "shared_chat_timeout".
type ModerateTimeout struct {
	User      User
	Reason    string
	ExpiresAt string
}

// ModerateUntimeout is the sibling payload shared by "untimeout" and
// "shared_chat_untimeout".
type ModerateUntimeout struct {
	User User
}

// ModerateRaid is the sibling payload for the "raid" action.
type ModerateRaid struct {
	User        User
	ViewerCount int
}

// ModerateUnraid is the sibling payload for the "unraid" action.
type ModerateUnraid struct {
	User User
}

// ModerateDelete is the sibling payload shared by "delete" and "shared_chat_delete".
type ModerateDelete struct {
	User        User
	MessageID   string
	MessageBody string
}

// ModerateAutomodTerms is the sibling payload shared by the four
// automod term list actions (add/remove x blocked/permitted).
type ModerateAutomodTerms struct {
	Action       string
	List         string
	Terms        []string
	FromAutomod  bool
}

// ModerateUnbanRequest is the sibling payload shared by
// "approve_unban_request" and "deny_unban_request".
type ModerateUnbanRequest struct {
	IsApproved       bool
	User             User
	ModeratorMessage string
}

// ModerateWarn is the sibling payload for the "warn" action.
type ModerateWarn struct {
	User            User
	Reason          string
	ChatRulesCited  []string
}

// ChannelModerateEvent is the decoded event of a channel.moderate@2
// notification. At most one of the sibling fields is populated,
// selected by Action; which one is determined by HasXxx below.
// Actions that carry no payload (clear, followersoff, ...) populate none.
type ChannelModerateEvent struct {
	Broadcaster User

	SourceBroadcaster    User
	HasSourceBroadcaster bool

	Moderator User

	Action Action

	Followers    ModerateFollowers
	HasFollowers bool

	Slow    ModerateSlow
	HasSlow bool

	Vip    ModerateVip
	HasVip bool

	Unvip    ModerateVip
	HasUnvip bool

	Mod    ModerateMod
	HasMod bool

	Unmod    ModerateMod
	HasUnmod bool

	Ban    ModerateBan
	HasBan bool

	Unban    ModerateUnban
	HasUnban bool

	Timeout    ModerateTimeout
	HasTimeout bool

	Untimeout    ModerateUntimeout
	HasUntimeout bool

	Raid    ModerateRaid
	HasRaid bool

	Unraid    ModerateUnraid
	HasUnraid bool

	DeleteMessage    ModerateDelete
	HasDeleteMessage bool

	AutomodTerms    ModerateAutomodTerms
	HasAutomodTerms bool

	UnbanRequest    ModerateUnbanRequest
	HasUnbanRequest bool

	Warn    ModerateWarn
	HasWarn bool

	SharedChatBan    ModerateBan
	HasSharedChatBan bool

	SharedChatUnban    ModerateUnban
	HasSharedChatUnban bool

	SharedChatTimeout    ModerateTimeout
	HasSharedChatTimeout bool

	SharedChatUntimeout    ModerateUntimeout
	HasSharedChatUntimeout bool

	SharedChatDelete    ModerateDelete
	HasSharedChatDelete bool
}

// IsFromSharedChat reports whether the action originated in a shared
// chat session on a channel other than the subscribed broadcaster.
func (e ChannelModerateEvent) IsFromSharedChat() bool {
	switch e.Action {
	case ActionSharedChatBan, ActionSharedChatTimeout, ActionSharedChatUnban, ActionSharedChatUntimeout, ActionSharedChatDelete:
		return true
	default:
		return e.HasSourceBroadcaster && e.SourceBroadcaster.ID != e.Broadcaster.ID
	}
}

// ChannelModerate is the full channel.moderate@2 notification payload.
type ChannelModerate struct {
	Subscription Subscription
	Event        ChannelModerateEvent
}

// DecodeChannelModerate decodes a channel.moderate@2 notification payload.
func DecodeChannelModerate(raw json.RawMessage) (ChannelModerate, error) {
	root, err := codec.Object(raw, "payload")
	if err != nil {
		return ChannelModerate{}, err
	}
	subRaw, err := codec.RequiredRaw(root, "subscription", "payload.subscription")
	if err != nil {
		return ChannelModerate{}, err
	}
	sub, err := DecodeSubscription(subRaw, "payload.subscription")
	if err != nil {
		return ChannelModerate{}, err
	}
	eventRaw, err := codec.RequiredRaw(root, "event", "payload.event")
	if err != nil {
		return ChannelModerate{}, err
	}
	event, err := decodeChannelModerateEvent(eventRaw)
	if err != nil {
		return ChannelModerate{}, err
	}
	return ChannelModerate{Subscription: sub, Event: event}, nil
}

func decodeChannelModerateEvent(raw json.RawMessage) (ChannelModerateEvent, error) {
	const field = "payload.event"
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ChannelModerateEvent{}, err
	}

	broadcaster, err := requiredUser(obj, "broadcaster_user", field)
	if err != nil {
		return ChannelModerateEvent{}, err
	}
	sourceBroadcaster, hasSourceBroadcaster, err := optionalUser(obj, "source_broadcaster_user", field)
	if err != nil {
		return ChannelModerateEvent{}, err
	}
	moderator, err := requiredUser(obj, "moderator_user", field)
	if err != nil {
		return ChannelModerateEvent{}, err
	}
	actionStr, _, err := codec.OptionalString(obj, "action", field+".action")
	if err != nil {
		return ChannelModerateEvent{}, err
	}
	action := actionTable[actionStr] // zero value ActionUnknown for an unrecognized string

	event := ChannelModerateEvent{
		Broadcaster:          broadcaster,
		SourceBroadcaster:    sourceBroadcaster,
		HasSourceBroadcaster: hasSourceBroadcaster,
		Moderator:            moderator,
		Action:               action,
	}

	if err := decodeModerateSiblings(obj, field, actionStr, &event); err != nil {
		return ChannelModerateEvent{}, err
	}
	return event, nil
}

// decodeModerateSiblings reads only the sibling object action designates,
// per the action-sibling-union contract: exactly one sibling is non-null,
// selected by action, and it is an error for that sibling to be missing.
// Actions with no associated sibling (clear, emoteonly, slowoff, ...) and
// an unrecognized action string are left with every Has* flag false.
func decodeModerateSiblings(obj map[string]json.RawMessage, field, action string, event *ChannelModerateEvent) error {
	sibling := func(key string) (json.RawMessage, error) {
		raw := codec.OptionalRaw(obj, key)
		if raw == nil {
			return nil, codec.NewMissingVariantPayload(field+"."+key, action)
		}
		return raw, nil
	}

	switch action {
	case "followers":
		raw, err := sibling("followers")
		if err != nil {
			return err
		}
		v, err := decodeModerateFollowers(raw, field+".followers")
		if err != nil {
			return err
		}
		event.Followers, event.HasFollowers = v, true
	case "slow":
		raw, err := sibling("slow")
		if err != nil {
			return err
		}
		v, err := decodeModerateSlow(raw, field+".slow")
		if err != nil {
			return err
		}
		event.Slow, event.HasSlow = v, true
	case "vip":
		raw, err := sibling("vip")
		if err != nil {
			return err
		}
		v, err := decodeModerateVip(raw, field+".vip")
		if err != nil {
			return err
		}
		event.Vip, event.HasVip = v, true
	case "unvip":
		raw, err := sibling("unvip")
		if err != nil {
			return err
		}
		v, err := decodeModerateVip(raw, field+".unvip")
		if err != nil {
			return err
		}
		event.Unvip, event.HasUnvip = v, true
	case "mod":
		raw, err := sibling("mod")
		if err != nil {
			return err
		}
		v, err := decodeModerateMod(raw, field+".mod")
		if err != nil {
			return err
		}
		event.Mod, event.HasMod = v, true
	case "unmod":
		raw, err := sibling("unmod")
		if err != nil {
			return err
		}
		v, err := decodeModerateMod(raw, field+".unmod")
		if err != nil {
			return err
		}
		event.Unmod, event.HasUnmod = v, true
	case "ban":
		raw, err := sibling("ban")
		if err != nil {
			return err
		}
		v, err := decodeModerateBan(raw, field+".ban")
		if err != nil {
			return err
		}
		event.Ban, event.HasBan = v, true
	case "unban":
		raw, err := sibling("unban")
		if err != nil {
			return err
		}
		v, err := decodeModerateUnban(raw, field+".unban")
		if err != nil {
			return err
		}
		event.Unban, event.HasUnban = v, true
	case "timeout":
		raw, err := sibling("timeout")
		if err != nil {
			return err
		}
		v, err := decodeModerateTimeout(raw, field+".timeout")
		if err != nil {
			return err
		}
		event.Timeout, event.HasTimeout = v, true
	case "untimeout":
		raw, err := sibling("untimeout")
		if err != nil {
			return err
		}
		v, err := decodeModerateUntimeout(raw, field+".untimeout")
		if err != nil {
			return err
		}
		event.Untimeout, event.HasUntimeout = v, true
	case "raid":
		raw, err := sibling("raid")
		if err != nil {
			return err
		}
		v, err := decodeModerateRaid(raw, field+".raid")
		if err != nil {
			return err
		}
		event.Raid, event.HasRaid = v, true
	case "unraid":
		raw, err := sibling("unraid")
		if err != nil {
			return err
		}
		v, err := decodeModerateUnraid(raw, field+".unraid")
		if err != nil {
			return err
		}
		event.Unraid, event.HasUnraid = v, true
	case "delete":
		raw, err := sibling("delete")
		if err != nil {
			return err
		}
		v, err := decodeModerateDelete(raw, field+".delete")
		if err != nil {
			return err
		}
		event.DeleteMessage, event.HasDeleteMessage = v, true
	case "add_blocked_term", "add_permitted_term", "remove_blocked_term", "remove_permitted_term":
		raw, err := sibling("automod_terms")
		if err != nil {
			return err
		}
		v, err := decodeModerateAutomodTerms(raw, field+".automod_terms")
		if err != nil {
			return err
		}
		event.AutomodTerms, event.HasAutomodTerms = v, true
	case "approve_unban_request", "deny_unban_request":
		raw, err := sibling("unban_request")
		if err != nil {
			return err
		}
		v, err := decodeModerateUnbanRequest(raw, field+".unban_request")
		if err != nil {
			return err
		}
		event.UnbanRequest, event.HasUnbanRequest = v, true
	case "warn":
		raw, err := sibling("warn")
		if err != nil {
			return err
		}
		v, err := decodeModerateWarn(raw, field+".warn")
		if err != nil {
			return err
		}
		event.Warn, event.HasWarn = v, true
	case "shared_chat_ban":
		raw, err := sibling("shared_chat_ban")
		if err != nil {
			return err
		}
		v, err := decodeModerateBan(raw, field+".shared_chat_ban")
		if err != nil {
			return err
		}
		event.SharedChatBan, event.HasSharedChatBan = v, true
	case "shared_chat_unban":
		raw, err := sibling("shared_chat_unban")
		if err != nil {
			return err
		}
		v, err := decodeModerateUnban(raw, field+".shared_chat_unban")
		if err != nil {
			return err
		}
		event.SharedChatUnban, event.HasSharedChatUnban = v, true
	case "shared_chat_timeout":
		raw, err := sibling("shared_chat_timeout")
		if err != nil {
			return err
		}
		v, err := decodeModerateTimeout(raw, field+".shared_chat_timeout")
		if err != nil {
			return err
		}
		event.SharedChatTimeout, event.HasSharedChatTimeout = v, true
	case "shared_chat_untimeout":
		raw, err := sibling("shared_chat_untimeout")
		if err != nil {
			return err
		}
		v, err := decodeModerateUntimeout(raw, field+".shared_chat_untimeout")
		if err != nil {
			return err
		}
		event.SharedChatUntimeout, event.HasSharedChatUntimeout = v, true
	case "shared_chat_delete":
		raw, err := sibling("shared_chat_delete")
		if err != nil {
			return err
		}
		v, err := decodeModerateDelete(raw, field+".shared_chat_delete")
		if err != nil {
			return err
		}
		event.SharedChatDelete, event.HasSharedChatDelete = v, true
	default:
		// clear, emoteonly(off), followersoff, uniquechat(off), slowoff,
		// subscribers(off), and any action Twitch adds later carry no
		// sibling payload; nothing further to decode.
	}
	return nil
}

func decodeModerateFollowers(raw json.RawMessage, field string) (ModerateFollowers, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ModerateFollowers{}, err
	}
	minutes, err := codec.RequiredInt(obj, "follow_duration_minutes", field+".follow_duration_minutes")
	if err != nil {
		return ModerateFollowers{}, err
	}
	return ModerateFollowers{FollowDurationMinutes: minutes}, nil
}

func decodeModerateSlow(raw json.RawMessage, field string) (ModerateSlow, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ModerateSlow{}, err
	}
	seconds, err := codec.RequiredInt(obj, "wait_time_seconds", field+".wait_time_seconds")
	if err != nil {
		return ModerateSlow{}, err
	}
	return ModerateSlow{WaitTimeSeconds: seconds}, nil
}

func decodeModerateVip(raw json.RawMessage, field string) (ModerateVip, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ModerateVip{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return ModerateVip{}, err
	}
	return ModerateVip{User: user}, nil
}

func decodeModerateMod(raw json.RawMessage, field string) (ModerateMod, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ModerateMod{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return ModerateMod{}, err
	}
	return ModerateMod{User: user}, nil
}

func decodeModerateBan(raw json.RawMessage, field string) (ModerateBan, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ModerateBan{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return ModerateBan{}, err
	}
	reason, _, err := codec.OptionalString(obj, "reason", field+".reason")
	if err != nil {
		return ModerateBan{}, err
	}
	return ModerateBan{User: user, Reason: reason}, nil
}

func decodeModerateUnban(raw json.RawMessage, field string) (ModerateUnban, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ModerateUnban{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return ModerateUnban{}, err
	}
	return ModerateUnban{User: user}, nil
}

func decodeModerateTimeout(raw json.RawMessage, field string) (ModerateTimeout, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ModerateTimeout{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return ModerateTimeout{}, err
	}
	reason, _, err := codec.OptionalString(obj, "reason", field+".reason")
	if err != nil {
		return ModerateTimeout{}, err
	}
	expiresAt, err := codec.RequiredString(obj, "expires_at", field+".expires_at")
	if err != nil {
		return ModerateTimeout{}, err
	}
	return ModerateTimeout{User: user, Reason: reason, ExpiresAt: expiresAt}, nil
}

func decodeModerateUntimeout(raw json.RawMessage, field string) (ModerateUntimeout, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ModerateUntimeout{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return ModerateUntimeout{}, err
	}
	return ModerateUntimeout{User: user}, nil
}

func decodeModerateRaid(raw json.RawMessage, field string) (ModerateRaid, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ModerateRaid{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return ModerateRaid{}, err
	}
	count, err := codec.RequiredInt(obj, "viewer_count", field+".viewer_count")
	if err != nil {
		return ModerateRaid{}, err
	}
	return ModerateRaid{User: user, ViewerCount: count}, nil
}

func decodeModerateUnraid(raw json.RawMessage, field string) (ModerateUnraid, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ModerateUnraid{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return ModerateUnraid{}, err
	}
	return ModerateUnraid{User: user}, nil
}

func decodeModerateDelete(raw json.RawMessage, field string) (ModerateDelete, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ModerateDelete{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return ModerateDelete{}, err
	}
	messageID, err := codec.RequiredString(obj, "message_id", field+".message_id")
	if err != nil {
		return ModerateDelete{}, err
	}
	messageBody, err := codec.RequiredString(obj, "message_body", field+".message_body")
	if err != nil {
		return ModerateDelete{}, err
	}
	return ModerateDelete{User: user, MessageID: messageID, MessageBody: messageBody}, nil
}

func decodeModerateAutomodTerms(raw json.RawMessage, field string) (ModerateAutomodTerms, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ModerateAutomodTerms{}, err
	}
	action, err := codec.RequiredString(obj, "action", field+".action")
	if err != nil {
		return ModerateAutomodTerms{}, err
	}
	list, err := codec.RequiredString(obj, "list", field+".list")
	if err != nil {
		return ModerateAutomodTerms{}, err
	}
	terms, err := codec.OptionalStringSlice(obj, "terms", field+".terms")
	if err != nil {
		return ModerateAutomodTerms{}, err
	}
	fromAutomod, err := codec.RequiredBool(obj, "from_automod", field+".from_automod")
	if err != nil {
		return ModerateAutomodTerms{}, err
	}
	return ModerateAutomodTerms{Action: action, List: list, Terms: terms, FromAutomod: fromAutomod}, nil
}

func decodeModerateUnbanRequest(raw json.RawMessage, field string) (ModerateUnbanRequest, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ModerateUnbanRequest{}, err
	}
	isApproved, err := codec.RequiredBool(obj, "is_approved", field+".is_approved")
	if err != nil {
		return ModerateUnbanRequest{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return ModerateUnbanRequest{}, err
	}
	message, _, err := codec.OptionalString(obj, "moderator_message", field+".moderator_message")
	if err != nil {
		return ModerateUnbanRequest{}, err
	}
	return ModerateUnbanRequest{IsApproved: isApproved, User: user, ModeratorMessage: message}, nil
}

func decodeModerateWarn(raw json.RawMessage, field string) (ModerateWarn, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ModerateWarn{}, err
	}
	user, err := requiredUser(obj, "user", field)
	if err != nil {
		return ModerateWarn{}, err
	}
	reason, _, err := codec.OptionalString(obj, "reason", field+".reason")
	if err != nil {
		return ModerateWarn{}, err
	}
	cited, err := codec.OptionalStringSlice(obj, "chat_rules_cited", field+".chat_rules_cited")
	if err != nil {
		return ModerateWarn{}, err
	}
	return ModerateWarn{User: user, Reason: reason, ChatRulesCited: cited}, nil
}
