package payload

import "testing"

func TestHandlers_RegistersEveryKnownSubscriptionOnce(t *testing.T) {
	want := []SubscriptionKey{
		{Type: "channel.ban", Version: "1"},
		{Type: "stream.online", Version: "1"},
		{Type: "stream.offline", Version: "1"},
		{Type: "channel.chat.notification", Version: "1"},
		{Type: "channel.update", Version: "1"},
		{Type: "channel.chat.message", Version: "1"},
		{Type: "channel.moderate", Version: "2"},
		{Type: "automod.message.hold", Version: "2"},
		{Type: "automod.message.update", Version: "2"},
		{Type: "channel.suspicious_user.message", Version: "1"},
		{Type: "channel.suspicious_user.update", Version: "1"},
		{Type: "channel.chat.user_message_hold", Version: "1"},
		{Type: "channel.chat.user_message_update", Version: "1"},
	}
	if len(Handlers) != len(want) {
		t.Fatalf("len(Handlers) = %d, want %d", len(Handlers), len(want))
	}
	for _, k := range want {
		if _, ok := Handlers[k]; !ok {
			t.Errorf("Handlers missing %+v", k)
		}
	}
}

func TestHandlers_ChannelBanDecodeFuncReturnsChannelBan(t *testing.T) {
	fn, ok := Handlers[SubscriptionKey{Type: "channel.ban", Version: "1"}]
	if !ok {
		t.Fatal("no handler for channel.ban@1")
	}
	out, err := fn(channelBanPayload(`"is_permanent": true, "ends_at": null`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := out.(ChannelBan); !ok {
		t.Errorf("decoded type = %T, want ChannelBan", out)
	}
}
