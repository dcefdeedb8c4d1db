package payload

import (
	"encoding/json"
	"strconv"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

// ChatBadge is a chat badge a user was wearing when a message was sent.
type ChatBadge struct {
	SetID string
	ID    string
	Info  string
}

// ChatCheermote describes the cheermote a chat message fragment renders.
type ChatCheermote struct {
	Prefix string
	Bits   int
	Tier   int
}

// ChatEmote describes the emote a chat message fragment renders. Unlike
// structured_message's Emote, this variant carries OwnerID — the
// channel.chat.message/channel.chat.notification schema includes it,
// the automod/suspicious/hold family's schema omits it entirely.
type ChatEmote struct {
	ID         string
	EmoteSetID string
	OwnerID    string
	Format     []string
}

// ChatMention identifies a user @-mentioned in a chat message.
type ChatMention struct {
	UserID    string
	UserName  string
	UserLogin string
}

// ChatMessageFragment is one fragment of a chat Message. At most one of
// Cheermote, Emote, Mention is present, selected by Type.
type ChatMessageFragment struct {
	Type      string
	Text      string
	Cheermote ChatCheermote
	HasCheermote bool
	Emote     ChatEmote
	HasEmote  bool
	Mention   ChatMention
	HasMention bool
}

// ChatMessage is the text plus fragment breakdown of a chat message.
type ChatMessage struct {
	Text      string
	Fragments []ChatMessageFragment
}

// ChatCheer carries the number of bits cheered alongside a message.
type ChatCheer struct {
	Bits int
}

// ChatReply links a message to the message and thread it replies to.
type ChatReply struct {
	ParentMessageID   string
	ParentUserID      string
	ParentUserLogin   string
	ParentUserName    string
	ParentMessageBody string
	ThreadMessageID   string
	ThreadUserID      string
	ThreadUserLogin   string
	ThreadUserName    string
}

// ChannelChatMessageEvent is the decoded event of a
// channel.chat.message@1 notification.
type ChannelChatMessageEvent struct {
	Broadcaster                 User
	Chatter                     User
	Color                       string
	Badges                      []ChatBadge
	MessageID                   string
	MessageType                 string
	Message                     ChatMessage
	Cheer                       ChatCheer
	HasCheer                    bool
	Reply                       ChatReply
	HasReply                    bool
	ChannelPointsCustomRewardID string
	HasChannelPointsCustomRewardID bool
}

// ChannelChatMessage is the full channel.chat.message@1 notification payload.
type ChannelChatMessage struct {
	Subscription Subscription
	Event        ChannelChatMessageEvent
}

// DecodeChannelChatMessage decodes a channel.chat.message@1 notification
// payload.
func DecodeChannelChatMessage(raw json.RawMessage) (ChannelChatMessage, error) {
	root, err := codec.Object(raw, "payload")
	if err != nil {
		return ChannelChatMessage{}, err
	}
	subRaw, err := codec.RequiredRaw(root, "subscription", "payload.subscription")
	if err != nil {
		return ChannelChatMessage{}, err
	}
	sub, err := DecodeSubscription(subRaw, "payload.subscription")
	if err != nil {
		return ChannelChatMessage{}, err
	}
	eventRaw, err := codec.RequiredRaw(root, "event", "payload.event")
	if err != nil {
		return ChannelChatMessage{}, err
	}
	event, err := decodeChannelChatMessageEvent(eventRaw, "payload.event")
	if err != nil {
		return ChannelChatMessage{}, err
	}
	return ChannelChatMessage{Subscription: sub, Event: event}, nil
}

func decodeChannelChatMessageEvent(raw json.RawMessage, field string) (ChannelChatMessageEvent, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ChannelChatMessageEvent{}, err
	}
	broadcaster, err := requiredUser(obj, "broadcaster_user", field)
	if err != nil {
		return ChannelChatMessageEvent{}, err
	}
	chatter, err := requiredUser(obj, "chatter_user", field)
	if err != nil {
		return ChannelChatMessageEvent{}, err
	}
	color, err := codec.RequiredString(obj, "color", field+".color")
	if err != nil {
		return ChannelChatMessageEvent{}, err
	}
	badgesRaw, err := codec.RequiredRaw(obj, "badges", field+".badges")
	if err != nil {
		return ChannelChatMessageEvent{}, err
	}
	badges, err := decodeChatBadges(badgesRaw, field+".badges")
	if err != nil {
		return ChannelChatMessageEvent{}, err
	}
	messageID, err := codec.RequiredString(obj, "message_id", field+".message_id")
	if err != nil {
		return ChannelChatMessageEvent{}, err
	}
	messageType, err := codec.RequiredString(obj, "message_type", field+".message_type")
	if err != nil {
		return ChannelChatMessageEvent{}, err
	}
	messageRaw, err := codec.RequiredRaw(obj, "message", field+".message")
	if err != nil {
		return ChannelChatMessageEvent{}, err
	}
	message, err := decodeChatMessage(messageRaw, field+".message")
	if err != nil {
		return ChannelChatMessageEvent{}, err
	}

	event := ChannelChatMessageEvent{
		Broadcaster: broadcaster,
		Chatter:     chatter,
		Color:       color,
		Badges:      badges,
		MessageID:   messageID,
		MessageType: messageType,
		Message:     message,
	}

	if cheerRaw := codec.OptionalRaw(obj, "cheer"); cheerRaw != nil {
		cheer, err := decodeChatCheer(cheerRaw, field+".cheer")
		if err != nil {
			return ChannelChatMessageEvent{}, err
		}
		event.Cheer, event.HasCheer = cheer, true
	}
	if replyRaw := codec.OptionalRaw(obj, "reply"); replyRaw != nil {
		reply, err := decodeChatReply(replyRaw, field+".reply")
		if err != nil {
			return ChannelChatMessageEvent{}, err
		}
		event.Reply, event.HasReply = reply, true
	}
	rewardID, hasRewardID, err := codec.OptionalString(obj, "channel_points_custom_reward_id", field+".channel_points_custom_reward_id")
	if err != nil {
		return ChannelChatMessageEvent{}, err
	}
	event.ChannelPointsCustomRewardID, event.HasChannelPointsCustomRewardID = rewardID, hasRewardID

	return event, nil
}

func decodeChatBadges(raw json.RawMessage, field string) ([]ChatBadge, error) {
	var rawList []json.RawMessage
	if err := json.Unmarshal(raw, &rawList); err != nil {
		return nil, codec.NewExpectedObject(field)
	}
	badges := make([]ChatBadge, 0, len(rawList))
	for i, item := range rawList {
		itemField := arrayElemField(field, i)
		obj, err := codec.Object(item, itemField)
		if err != nil {
			return nil, err
		}
		setID, err := codec.RequiredString(obj, "set_id", itemField+".set_id")
		if err != nil {
			return nil, err
		}
		id, err := codec.RequiredString(obj, "id", itemField+".id")
		if err != nil {
			return nil, err
		}
		info, err := codec.RequiredString(obj, "info", itemField+".info")
		if err != nil {
			return nil, err
		}
		badges = append(badges, ChatBadge{SetID: setID, ID: id, Info: info})
	}
	return badges, nil
}

func decodeChatMessage(raw json.RawMessage, field string) (ChatMessage, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ChatMessage{}, err
	}
	text, err := codec.RequiredString(obj, "text", field+".text")
	if err != nil {
		return ChatMessage{}, err
	}
	fragmentsRaw, err := codec.RequiredRaw(obj, "fragments", field+".fragments")
	if err != nil {
		return ChatMessage{}, err
	}
	var rawList []json.RawMessage
	if err := json.Unmarshal(fragmentsRaw, &rawList); err != nil {
		return ChatMessage{}, codec.NewExpectedObject(field + ".fragments")
	}
	fragments := make([]ChatMessageFragment, 0, len(rawList))
	for i, item := range rawList {
		frag, err := decodeChatMessageFragment(item, arrayElemField(field+".fragments", i))
		if err != nil {
			return ChatMessage{}, err
		}
		fragments = append(fragments, frag)
	}
	return ChatMessage{Text: text, Fragments: fragments}, nil
}

func decodeChatMessageFragment(raw json.RawMessage, field string) (ChatMessageFragment, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ChatMessageFragment{}, err
	}
	typ, err := codec.RequiredString(obj, "type", field+".type")
	if err != nil {
		return ChatMessageFragment{}, err
	}
	text, err := codec.RequiredString(obj, "text", field+".text")
	if err != nil {
		return ChatMessageFragment{}, err
	}
	frag := ChatMessageFragment{Type: typ, Text: text}

	if cheermoteRaw := codec.OptionalRaw(obj, "cheermote"); cheermoteRaw != nil {
		c, err := decodeChatCheermote(cheermoteRaw, field+".cheermote")
		if err != nil {
			return ChatMessageFragment{}, err
		}
		frag.Cheermote, frag.HasCheermote = c, true
	}
	if emoteRaw := codec.OptionalRaw(obj, "emote"); emoteRaw != nil {
		e, err := decodeChatEmote(emoteRaw, field+".emote")
		if err != nil {
			return ChatMessageFragment{}, err
		}
		frag.Emote, frag.HasEmote = e, true
	}
	if mentionRaw := codec.OptionalRaw(obj, "mention"); mentionRaw != nil {
		m, err := decodeChatMention(mentionRaw, field+".mention")
		if err != nil {
			return ChatMessageFragment{}, err
		}
		frag.Mention, frag.HasMention = m, true
	}

	switch typ {
	case "text", "cheermote", "emote", "mention":
	default:
		return ChatMessageFragment{}, codec.NewUnknownVariant(field+".type", typ)
	}

	return frag, nil
}

func decodeChatCheermote(raw json.RawMessage, field string) (ChatCheermote, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ChatCheermote{}, err
	}
	prefix, err := codec.RequiredString(obj, "prefix", field+".prefix")
	if err != nil {
		return ChatCheermote{}, err
	}
	bits, err := codec.RequiredInt(obj, "bits", field+".bits")
	if err != nil {
		return ChatCheermote{}, err
	}
	tier, err := codec.RequiredInt(obj, "tier", field+".tier")
	if err != nil {
		return ChatCheermote{}, err
	}
	return ChatCheermote{Prefix: prefix, Bits: bits, Tier: tier}, nil
}

func decodeChatEmote(raw json.RawMessage, field string) (ChatEmote, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ChatEmote{}, err
	}
	id, err := codec.RequiredString(obj, "id", field+".id")
	if err != nil {
		return ChatEmote{}, err
	}
	emoteSetID, err := codec.RequiredString(obj, "emote_set_id", field+".emote_set_id")
	if err != nil {
		return ChatEmote{}, err
	}
	ownerID, err := codec.RequiredString(obj, "owner_id", field+".owner_id")
	if err != nil {
		return ChatEmote{}, err
	}
	format, err := codec.RequiredStringSlice(obj, "format", field+".format")
	if err != nil {
		return ChatEmote{}, err
	}
	return ChatEmote{ID: id, EmoteSetID: emoteSetID, OwnerID: ownerID, Format: format}, nil
}

func decodeChatMention(raw json.RawMessage, field string) (ChatMention, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ChatMention{}, err
	}
	userID, err := codec.RequiredString(obj, "user_id", field+".user_id")
	if err != nil {
		return ChatMention{}, err
	}
	userName, err := codec.RequiredString(obj, "user_name", field+".user_name")
	if err != nil {
		return ChatMention{}, err
	}
	userLogin, err := codec.RequiredString(obj, "user_login", field+".user_login")
	if err != nil {
		return ChatMention{}, err
	}
	return ChatMention{UserID: userID, UserName: userName, UserLogin: userLogin}, nil
}

func decodeChatCheer(raw json.RawMessage, field string) (ChatCheer, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ChatCheer{}, err
	}
	bits, err := codec.RequiredInt(obj, "bits", field+".bits")
	if err != nil {
		return ChatCheer{}, err
	}
	return ChatCheer{Bits: bits}, nil
}

func decodeChatReply(raw json.RawMessage, field string) (ChatReply, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ChatReply{}, err
	}
	fields := map[string]*string{}
	reply := ChatReply{}
	fields["parent_message_id"] = &reply.ParentMessageID
	fields["parent_user_id"] = &reply.ParentUserID
	fields["parent_user_login"] = &reply.ParentUserLogin
	fields["parent_user_name"] = &reply.ParentUserName
	fields["parent_message_body"] = &reply.ParentMessageBody
	fields["thread_message_id"] = &reply.ThreadMessageID
	fields["thread_user_id"] = &reply.ThreadUserID
	fields["thread_user_login"] = &reply.ThreadUserLogin
	fields["thread_user_name"] = &reply.ThreadUserName
	for key, dst := range fields {
		v, err := codec.RequiredString(obj, key, field+"."+key)
		if err != nil {
			return ChatReply{}, err
		}
		*dst = v
	}
	return reply, nil
}

func arrayElemField(field string, i int) string {
	return field + "[" + strconv.Itoa(i) + "]"
}
