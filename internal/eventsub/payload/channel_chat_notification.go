package payload

import (
	"encoding/json"

	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/codec"
)

// NotificationSub is the notice payload when NoticeType == "sub".
type NotificationSub struct {
	SubTier        string
	IsPrime        bool
	DurationMonths int
}

// NotificationResub is the notice payload when NoticeType == "resub".
type NotificationResub struct {
	CumulativeMonths int
	DurationMonths   int
	StreakMonths     int
	HasStreakMonths  bool
	SubTier          string
	IsPrime          bool
	IsGift           bool
	GifterIsAnonymous bool
	Gifter           User
	HasGifter        bool
}

// NotificationSubGift is the notice payload when NoticeType == "sub_gift".
type NotificationSubGift struct {
	DurationMonths   int
	CumulativeTotal  int
	HasCumulativeTotal bool
	StreakMonths     int
	HasStreakMonths  bool
	Recipient        User
	SubTier          string
	CommunityGiftID  string
	HasCommunityGiftID bool
}

// NotificationCommunitySubGift is the notice payload when
// NoticeType == "community_sub_gift".
type NotificationCommunitySubGift struct {
	ID              string
	Total           int
	SubTier         string
	CumulativeTotal int
	HasCumulativeTotal bool
}

// NotificationGiftPaidUpgrade is the notice payload when
// NoticeType == "gift_paid_upgrade".
type NotificationGiftPaidUpgrade struct {
	GifterIsAnonymous bool
	Gifter            User
	HasGifter         bool
}

// NotificationPrimePaidUpgrade is the notice payload when
// NoticeType == "prime_paid_upgrade".
type NotificationPrimePaidUpgrade struct {
	SubTier string
}

// NotificationRaid is the notice payload when NoticeType == "raid".
type NotificationRaid struct {
	User             User
	ViewerCount      int
	ProfileImageURL  string
}

// NotificationUnraid is the notice payload when NoticeType == "unraid".
// It carries no fields; its presence alone is the signal.
type NotificationUnraid struct{}

// NotificationPayItForward is the notice payload when
// NoticeType == "pay_it_forward".
type NotificationPayItForward struct {
	GifterIsAnonymous bool
	Gifter            User
	HasGifter         bool
}

// NotificationAnnouncement is the notice payload when
// NoticeType == "announcement".
type NotificationAnnouncement struct {
	Color string
}

// NotificationCharityDonation is the notice payload when
// NoticeType == "charity_donation".
type NotificationCharityDonation struct {
	CharityName string
	Value       int
	DecimalPlaces int
	Currency    string
}

// NotificationBitsBadgeTier is the notice payload when
// NoticeType == "bits_badge_tier".
type NotificationBitsBadgeTier struct {
	Tier int
}

// ChannelChatNotificationEvent is the decoded event of a
// channel.chat.notification@1 notification. Exactly one of the
// Notification* fields is populated, selected by NoticeType.
type ChannelChatNotificationEvent struct {
	Broadcaster       User
	Chatter           User
	ChatterIsAnonymous bool
	Color             string
	Badges            []ChatBadge
	SystemMessage     string
	MessageID         string
	Message           ChatMessage
	NoticeType        string

	Sub              NotificationSub
	HasSub           bool
	Resub            NotificationResub
	HasResub         bool
	SubGift          NotificationSubGift
	HasSubGift       bool
	CommunitySubGift NotificationCommunitySubGift
	HasCommunitySubGift bool
	GiftPaidUpgrade  NotificationGiftPaidUpgrade
	HasGiftPaidUpgrade bool
	PrimePaidUpgrade NotificationPrimePaidUpgrade
	HasPrimePaidUpgrade bool
	Raid             NotificationRaid
	HasRaid          bool
	Unraid           NotificationUnraid
	HasUnraid        bool
	PayItForward     NotificationPayItForward
	HasPayItForward  bool
	Announcement     NotificationAnnouncement
	HasAnnouncement  bool
	CharityDonation  NotificationCharityDonation
	HasCharityDonation bool
	BitsBadgeTier    NotificationBitsBadgeTier
	HasBitsBadgeTier bool
}

// ChannelChatNotification is the full channel.chat.notification@1
// notification payload.
type ChannelChatNotification struct {
	Subscription Subscription
	Event        ChannelChatNotificationEvent
}

// DecodeChannelChatNotification decodes a channel.chat.notification@1
// notification payload.
func DecodeChannelChatNotification(raw json.RawMessage) (ChannelChatNotification, error) {
	root, err := codec.Object(raw, "payload")
	if err != nil {
		return ChannelChatNotification{}, err
	}
	subRaw, err := codec.RequiredRaw(root, "subscription", "payload.subscription")
	if err != nil {
		return ChannelChatNotification{}, err
	}
	sub, err := DecodeSubscription(subRaw, "payload.subscription")
	if err != nil {
		return ChannelChatNotification{}, err
	}
	eventRaw, err := codec.RequiredRaw(root, "event", "payload.event")
	if err != nil {
		return ChannelChatNotification{}, err
	}
	event, err := decodeChannelChatNotificationEvent(eventRaw, "payload.event")
	if err != nil {
		return ChannelChatNotification{}, err
	}
	return ChannelChatNotification{Subscription: sub, Event: event}, nil
}

func decodeChannelChatNotificationEvent(raw json.RawMessage, field string) (ChannelChatNotificationEvent, error) {
	obj, err := codec.Object(raw, field)
	if err != nil {
		return ChannelChatNotificationEvent{}, err
	}
	broadcaster, err := requiredUser(obj, "broadcaster_user", field)
	if err != nil {
		return ChannelChatNotificationEvent{}, err
	}
	chatter, err := requiredUser(obj, "chatter_user", field)
	if err != nil {
		return ChannelChatNotificationEvent{}, err
	}
	chatterIsAnon, err := codec.RequiredBool(obj, "chatter_is_anonymous", field+".chatter_is_anonymous")
	if err != nil {
		return ChannelChatNotificationEvent{}, err
	}
	color, err := codec.RequiredString(obj, "color", field+".color")
	if err != nil {
		return ChannelChatNotificationEvent{}, err
	}
	badgesRaw, err := codec.RequiredRaw(obj, "badges", field+".badges")
	if err != nil {
		return ChannelChatNotificationEvent{}, err
	}
	badges, err := decodeChatBadges(badgesRaw, field+".badges")
	if err != nil {
		return ChannelChatNotificationEvent{}, err
	}
	systemMessage, err := codec.RequiredString(obj, "system_message", field+".system_message")
	if err != nil {
		return ChannelChatNotificationEvent{}, err
	}
	messageID, err := codec.RequiredString(obj, "message_id", field+".message_id")
	if err != nil {
		return ChannelChatNotificationEvent{}, err
	}
	messageRaw, err := codec.RequiredRaw(obj, "message", field+".message")
	if err != nil {
		return ChannelChatNotificationEvent{}, err
	}
	message, err := decodeChatMessage(messageRaw, field+".message")
	if err != nil {
		return ChannelChatNotificationEvent{}, err
	}
	noticeType, err := codec.RequiredString(obj, "notice_type", field+".notice_type")
	if err != nil {
		return ChannelChatNotificationEvent{}, err
	}

	event := ChannelChatNotificationEvent{
		Broadcaster:        broadcaster,
		Chatter:            chatter,
		ChatterIsAnonymous: chatterIsAnon,
		Color:              color,
		Badges:             badges,
		SystemMessage:      systemMessage,
		MessageID:          messageID,
		Message:            message,
		NoticeType:         noticeType,
	}

	if err := decodeNotificationSiblings(obj, field, noticeType, &event); err != nil {
		return ChannelChatNotificationEvent{}, err
	}

	return event, nil
}

// decodeNotificationSiblings reads only the sibling object notice_type
// designates, per the tag-union contract: notice_type names exactly one
// of the twelve sibling objects below, and it is an error for that
// sibling to be absent or for notice_type to name none of them.
func decodeNotificationSiblings(obj map[string]json.RawMessage, field, noticeType string, event *ChannelChatNotificationEvent) error {
	sibling := func(key string) (json.RawMessage, error) {
		raw := codec.OptionalRaw(obj, key)
		if raw == nil {
			return nil, codec.NewMissingVariantPayload(field+"."+key, noticeType)
		}
		return raw, nil
	}

	switch noticeType {
	case "sub", "resub", "sub_gift", "community_sub_gift", "gift_paid_upgrade",
		"prime_paid_upgrade", "raid", "unraid", "pay_it_forward", "announcement",
		"charity_donation", "bits_badge_tier":
	default:
		return codec.NewUnknownVariant(field+".notice_type", noticeType)
	}

	if noticeType == "sub" {
		raw, err := sibling("sub")
		if err != nil {
			return err
		}
		o, err := codec.Object(raw, field+".sub")
		if err != nil {
			return err
		}
		subTier, err := codec.RequiredString(o, "sub_tier", field+".sub.sub_tier")
		if err != nil {
			return err
		}
		isPrime, err := codec.RequiredBool(o, "is_prime", field+".sub.is_prime")
		if err != nil {
			return err
		}
		duration, err := codec.RequiredInt(o, "duration_months", field+".sub.duration_months")
		if err != nil {
			return err
		}
		event.Sub, event.HasSub = NotificationSub{SubTier: subTier, IsPrime: isPrime, DurationMonths: duration}, true
	}

	if noticeType == "resub" {
		raw, err := sibling("resub")
		if err != nil {
			return err
		}
		o, err := codec.Object(raw, field+".resub")
		if err != nil {
			return err
		}
		resub := NotificationResub{}
		resub.CumulativeMonths, err = codec.RequiredInt(o, "cumulative_months", field+".resub.cumulative_months")
		if err != nil {
			return err
		}
		resub.DurationMonths, err = codec.RequiredInt(o, "duration_months", field+".resub.duration_months")
		if err != nil {
			return err
		}
		resub.StreakMonths, resub.HasStreakMonths, err = codec.OptionalInt(o, "streak_months", field+".resub.streak_months")
		if err != nil {
			return err
		}
		resub.SubTier, err = codec.RequiredString(o, "sub_tier", field+".resub.sub_tier")
		if err != nil {
			return err
		}
		resub.IsPrime, err = codec.RequiredBool(o, "is_prime", field+".resub.is_prime")
		if err != nil {
			return err
		}
		resub.IsGift, err = codec.RequiredBool(o, "is_gift", field+".resub.is_gift")
		if err != nil {
			return err
		}
		resub.GifterIsAnonymous, err = codec.RequiredBool(o, "gifter_is_anonymous", field+".resub.gifter_is_anonymous")
		if err != nil {
			return err
		}
		resub.Gifter, resub.HasGifter, err = optionalUser(o, "gifter_user", field+".resub")
		if err != nil {
			return err
		}
		event.Resub, event.HasResub = resub, true
	}

	if noticeType == "sub_gift" {
		raw, err := sibling("sub_gift")
		if err != nil {
			return err
		}
		o, err := codec.Object(raw, field+".sub_gift")
		if err != nil {
			return err
		}
		gift := NotificationSubGift{}
		gift.DurationMonths, err = codec.RequiredInt(o, "duration_months", field+".sub_gift.duration_months")
		if err != nil {
			return err
		}
		gift.CumulativeTotal, gift.HasCumulativeTotal, err = codec.OptionalInt(o, "cumulative_total", field+".sub_gift.cumulative_total")
		if err != nil {
			return err
		}
		gift.StreakMonths, gift.HasStreakMonths, err = codec.OptionalInt(o, "streak_months", field+".sub_gift.streak_months")
		if err != nil {
			return err
		}
		gift.Recipient, err = requiredUser(o, "recipient_user", field+".sub_gift")
		if err != nil {
			return err
		}
		gift.SubTier, err = codec.RequiredString(o, "sub_tier", field+".sub_gift.sub_tier")
		if err != nil {
			return err
		}
		gift.CommunityGiftID, gift.HasCommunityGiftID, err = codec.OptionalString(o, "community_gift_id", field+".sub_gift.community_gift_id")
		if err != nil {
			return err
		}
		event.SubGift, event.HasSubGift = gift, true
	}

	if noticeType == "community_sub_gift" {
		raw, err := sibling("community_sub_gift")
		if err != nil {
			return err
		}
		o, err := codec.Object(raw, field+".community_sub_gift")
		if err != nil {
			return err
		}
		csg := NotificationCommunitySubGift{}
		csg.ID, err = codec.RequiredString(o, "id", field+".community_sub_gift.id")
		if err != nil {
			return err
		}
		csg.Total, err = codec.RequiredInt(o, "total", field+".community_sub_gift.total")
		if err != nil {
			return err
		}
		csg.SubTier, err = codec.RequiredString(o, "sub_tier", field+".community_sub_gift.sub_tier")
		if err != nil {
			return err
		}
		csg.CumulativeTotal, csg.HasCumulativeTotal, err = codec.OptionalInt(o, "cumulative_total", field+".community_sub_gift.cumulative_total")
		if err != nil {
			return err
		}
		event.CommunitySubGift, event.HasCommunitySubGift = csg, true
	}

	if noticeType == "gift_paid_upgrade" {
		raw, err := sibling("gift_paid_upgrade")
		if err != nil {
			return err
		}
		o, err := codec.Object(raw, field+".gift_paid_upgrade")
		if err != nil {
			return err
		}
		gpu := NotificationGiftPaidUpgrade{}
		gpu.GifterIsAnonymous, err = codec.RequiredBool(o, "gifter_is_anonymous", field+".gift_paid_upgrade.gifter_is_anonymous")
		if err != nil {
			return err
		}
		gpu.Gifter, gpu.HasGifter, err = optionalUser(o, "gifter_user", field+".gift_paid_upgrade")
		if err != nil {
			return err
		}
		event.GiftPaidUpgrade, event.HasGiftPaidUpgrade = gpu, true
	}

	if noticeType == "prime_paid_upgrade" {
		raw, err := sibling("prime_paid_upgrade")
		if err != nil {
			return err
		}
		o, err := codec.Object(raw, field+".prime_paid_upgrade")
		if err != nil {
			return err
		}
		subTier, err := codec.RequiredString(o, "sub_tier", field+".prime_paid_upgrade.sub_tier")
		if err != nil {
			return err
		}
		event.PrimePaidUpgrade, event.HasPrimePaidUpgrade = NotificationPrimePaidUpgrade{SubTier: subTier}, true
	}

	if noticeType == "raid" {
		raw, err := sibling("raid")
		if err != nil {
			return err
		}
		o, err := codec.Object(raw, field+".raid")
		if err != nil {
			return err
		}
		raidUser, err := requiredUser(o, "user", field+".raid")
		if err != nil {
			return err
		}
		viewerCount, err := codec.RequiredInt(o, "viewer_count", field+".raid.viewer_count")
		if err != nil {
			return err
		}
		profileImageURL, err := codec.RequiredString(o, "profile_image_url", field+".raid.profile_image_url")
		if err != nil {
			return err
		}
		event.Raid, event.HasRaid = NotificationRaid{User: raidUser, ViewerCount: viewerCount, ProfileImageURL: profileImageURL}, true
	}

	if noticeType == "unraid" {
		raw, err := sibling("unraid")
		if err != nil {
			return err
		}
		if _, err := codec.Object(raw, field+".unraid"); err != nil {
			return err
		}
		event.Unraid, event.HasUnraid = NotificationUnraid{}, true
	}

	if noticeType == "pay_it_forward" {
		raw, err := sibling("pay_it_forward")
		if err != nil {
			return err
		}
		o, err := codec.Object(raw, field+".pay_it_forward")
		if err != nil {
			return err
		}
		pif := NotificationPayItForward{}
		pif.GifterIsAnonymous, err = codec.RequiredBool(o, "gifter_is_anonymous", field+".pay_it_forward.gifter_is_anonymous")
		if err != nil {
			return err
		}
		pif.Gifter, pif.HasGifter, err = optionalUser(o, "gifter_user", field+".pay_it_forward")
		if err != nil {
			return err
		}
		event.PayItForward, event.HasPayItForward = pif, true
	}

	if noticeType == "announcement" {
		raw, err := sibling("announcement")
		if err != nil {
			return err
		}
		o, err := codec.Object(raw, field+".announcement")
		if err != nil {
			return err
		}
		color, err := codec.RequiredString(o, "color", field+".announcement.color")
		if err != nil {
			return err
		}
		event.Announcement, event.HasAnnouncement = NotificationAnnouncement{Color: color}, true
	}

	if noticeType == "charity_donation" {
		raw, err := sibling("charity_donation")
		if err != nil {
			return err
		}
		o, err := codec.Object(raw, field+".charity_donation")
		if err != nil {
			return err
		}
		charityName, err := codec.RequiredString(o, "charity_name", field+".charity_donation.charity_name")
		if err != nil {
			return err
		}
		amountRaw, err := codec.RequiredRaw(o, "amount", field+".charity_donation.amount")
		if err != nil {
			return err
		}
		amountObj, err := codec.Object(amountRaw, field+".charity_donation.amount")
		if err != nil {
			return err
		}
		value, err := codec.RequiredInt(amountObj, "value", field+".charity_donation.amount.value")
		if err != nil {
			return err
		}
		decimalPlaces, err := codec.RequiredInt(amountObj, "decimal_places", field+".charity_donation.amount.decimal_places")
		if err != nil {
			return err
		}
		currency, err := codec.RequiredString(amountObj, "currency", field+".charity_donation.amount.currency")
		if err != nil {
			return err
		}
		event.CharityDonation, event.HasCharityDonation = NotificationCharityDonation{
			CharityName: charityName, Value: value, DecimalPlaces: decimalPlaces, Currency: currency,
		}, true
	}

	if noticeType == "bits_badge_tier" {
		raw, err := sibling("bits_badge_tier")
		if err != nil {
			return err
		}
		o, err := codec.Object(raw, field+".bits_badge_tier")
		if err != nil {
			return err
		}
		tier, err := codec.RequiredInt(o, "tier", field+".bits_badge_tier.tier")
		if err != nil {
			return err
		}
		event.BitsBadgeTier, event.HasBitsBadgeTier = NotificationBitsBadgeTier{Tier: tier}, true
	}

	return nil
}
