package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nugget/twitch-eventsub-ws/internal/clock"
	"github.com/nugget/twitch-eventsub-ws/internal/eventsub"
	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/listener"
	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/payload"
)

// recordingListener tracks every call it receives, in order, so tests
// can assert both occurrence and ordering (e.g. OnNotification must
// precede the typed dispatch for the same frame).
type recordingListener struct {
	listener.NopListener
	calls []string

	welcomes []payload.SessionWelcome
	bans     []payload.ChannelBan
}

func (l *recordingListener) OnSessionWelcome(_ eventsub.Metadata, w payload.SessionWelcome) {
	l.calls = append(l.calls, "welcome")
	l.welcomes = append(l.welcomes, w)
}

func (l *recordingListener) OnNotification(_ eventsub.Metadata, _ json.RawMessage) {
	l.calls = append(l.calls, "notification")
}

func (l *recordingListener) OnChannelBan(_ eventsub.Metadata, b payload.ChannelBan) {
	l.calls = append(l.calls, "channel_ban")
	l.bans = append(l.bans, b)
}

// fakeConn is a transport.Conn double; Close just records that it was
// called so tests can assert keepalive/handshake timeout shuts the
// connection down.
type fakeConn struct {
	closed bool
}

func (c *fakeConn) Connect(ctx context.Context) error                    { return nil }
func (c *fakeConn) ReadMessage(ctx context.Context) ([]byte, error)      { return nil, errors.New("unused") }
func (c *fakeConn) WriteMessage(ctx context.Context, data []byte) error { return nil }
func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

const welcomeFrame = `{
	"metadata": {
		"message_id": "96a3f3b5-5dec-4eed-908e-e11ee657416c",
		"message_type": "session_welcome",
		"message_timestamp": "2023-07-19T14:56:51.634234626Z"
	},
	"payload": {
		"session": {
			"id": "44f8cbce_c7ee958a",
			"status": "connected",
			"keepalive_timeout_seconds": 10,
			"reconnect_url": null,
			"connected_at": "2023-07-19T14:56:51.616329898Z"
		}
	}
}`

const keepaliveFrame = `{
	"metadata": {
		"message_id": "84c1e79a-2a4b-4c13-ba0b-4312293e9308",
		"message_type": "session_keepalive",
		"message_timestamp": "2023-07-19T10:11:12.634234626Z"
	},
	"payload": {}
}`

const reconnectFrame = `{
	"metadata": {
		"message_id": "84c1e79a-2a4b-4c13-ba0b-4312293e9309",
		"message_type": "session_reconnect",
		"message_timestamp": "2023-07-19T10:11:12.634234626Z"
	},
	"payload": {
		"session": {
			"id": "44f8cbce_c7ee958a",
			"reconnect_url": "wss://eventsub.wss.twitch.tv?..."
		}
	}
}`

const revocationFrame = `{
	"metadata": {
		"message_id": "84c1e79a-2a4b-4c13-ba0b-4312293e9310",
		"message_type": "revocation",
		"message_timestamp": "2023-07-19T10:11:12.634234626Z",
		"subscription_type": "channel.ban",
		"subscription_version": "1"
	},
	"payload": {
		"subscription": {
			"id": "f1c2a387-161a-49f9-a165-0f21d7a4e1c4",
			"status": "authorization_revoked",
			"type": "channel.ban",
			"version": "1",
			"cost": 0,
			"condition": {},
			"transport": {
				"method": "websocket",
				"session_id": "44f8cbce_c7ee958a"
			},
			"created_at": "2023-07-19T14:56:51.616329898Z"
		}
	}
}`

func channelBanFrame(subType, subVersion string) string {
	return `{
		"metadata": {
			"message_id": "5e225e2f-6ad4-4d9c-8827-ba375023b9e5",
			"message_type": "notification",
			"message_timestamp": "2023-07-19T14:56:51.634234626Z",
			"subscription_type": "` + subType + `",
			"subscription_version": "` + subVersion + `"
		},
		"payload": {
			"subscription": {
				"id": "f1c2a387-161a-49f9-a165-0f21d7a4e1c4",
				"status": "enabled",
				"type": "channel.ban",
				"version": "1",
				"cost": 0,
				"transport": {
					"method": "websocket",
					"session_id": "44f8cbce_c7ee958a"
				},
				"created_at": "2023-07-19T14:56:51.616329898Z"
			},
			"event": {
				"broadcaster_user_id": "12826",
				"broadcaster_user_login": "twitch",
				"broadcaster_user_name": "twitch",
				"moderator_user_id": "423374343",
				"moderator_user_login": "glowillig",
				"moderator_user_name": "glowillig",
				"user_id": "1336",
				"user_login": "cool_user",
				"user_name": "Cool_User",
				"reason": "Offensive language",
				"banned_at": "2023-07-19T23:21:12.732Z",
				"ends_at": "2023-07-19T23:31:12.732Z",
				"is_permanent": false
			}
		}
	}`
}

func newReadySession(l listener.Listener, c clock.Clock, conn *fakeConn) *Session {
	s := New(conn, l, WithClock(c))
	if err := s.HandleMessage([]byte(welcomeFrame)); err != nil {
		panic(err)
	}
	return s
}

func TestHandleMessage_SessionWelcome(t *testing.T) {
	l := &recordingListener{}
	s := New(&fakeConn{}, l)

	if err := s.HandleMessage([]byte(welcomeFrame)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	if s.State() != StateReady {
		t.Fatalf("state = %v, want Ready", s.State())
	}
	if s.SessionID() != "44f8cbce_c7ee958a" {
		t.Fatalf("SessionID = %q", s.SessionID())
	}
	if len(l.welcomes) != 1 {
		t.Fatalf("got %d welcomes, want 1", len(l.welcomes))
	}
	if l.welcomes[0].KeepaliveTimeoutSeconds != 10 {
		t.Fatalf("KeepaliveTimeoutSeconds = %d, want 10", l.welcomes[0].KeepaliveTimeoutSeconds)
	}
}

func TestHandleMessage_DuplicateWelcomeRejected(t *testing.T) {
	l := &recordingListener{}
	s := New(&fakeConn{}, l)

	if err := s.HandleMessage([]byte(welcomeFrame)); err != nil {
		t.Fatalf("first HandleMessage: %v", err)
	}
	err := s.HandleMessage([]byte(welcomeFrame))
	if !errors.Is(err, eventsub.ErrUnexpectedMessage) {
		t.Fatalf("err = %v, want ErrUnexpectedMessage", err)
	}
}

func TestHandleMessage_Keepalive(t *testing.T) {
	l := &recordingListener{}
	s := newReadySession(l, clock.Real{}, &fakeConn{})

	if err := s.HandleMessage([]byte(keepaliveFrame)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if s.State() != StateReady {
		t.Fatalf("state = %v, want Ready", s.State())
	}
}

func TestHandleMessage_Reconnect(t *testing.T) {
	l := &recordingListener{}
	var gotURL string
	conn := &fakeConn{}
	s := New(conn, l, WithOnReconnect(func(url string) { gotURL = url }))
	if err := s.HandleMessage([]byte(welcomeFrame)); err != nil {
		t.Fatalf("welcome: %v", err)
	}

	if err := s.HandleMessage([]byte(reconnectFrame)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if s.State() != StateReconnecting {
		t.Fatalf("state = %v, want Reconnecting", s.State())
	}
	if gotURL != "wss://eventsub.wss.twitch.tv?..." {
		t.Fatalf("onReconnect url = %q", gotURL)
	}
}

func TestHandleMessage_Revocation(t *testing.T) {
	l := &recordingListener{}
	s := newReadySession(l, clock.Real{}, &fakeConn{})

	if err := s.HandleMessage([]byte(revocationFrame)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(l.calls) == 0 || l.calls[len(l.calls)-1] != "notification" {
		t.Fatalf("calls = %v, want trailing notification", l.calls)
	}
	if len(l.bans) != 0 {
		t.Fatalf("revocation must not trigger typed dispatch, got %d bans", len(l.bans))
	}
}

func TestHandleMessage_NotificationOrderingAndDispatch(t *testing.T) {
	l := &recordingListener{}
	s := newReadySession(l, clock.Real{}, &fakeConn{})

	if err := s.HandleMessage([]byte(channelBanFrame("channel.ban", "1"))); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	want := []string{"welcome", "notification", "channel_ban"}
	if len(l.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", l.calls, want)
	}
	for i := range want {
		if l.calls[i] != want[i] {
			t.Fatalf("calls[%d] = %q, want %q", i, l.calls[i], want[i])
		}
	}
	if len(l.bans) != 1 || l.bans[0].Event.Target.Login != "cool_user" {
		t.Fatalf("bans = %+v", l.bans)
	}
}

func TestHandleMessage_UnknownSubscriptionTypeStillRaw(t *testing.T) {
	l := &recordingListener{}
	s := newReadySession(l, clock.Real{}, &fakeConn{})

	if err := s.HandleMessage([]byte(channelBanFrame("channel.follow", "1"))); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if len(l.bans) != 0 {
		t.Fatalf("unknown subscription type must not dispatch typed, got %d bans", len(l.bans))
	}
	if l.calls[len(l.calls)-1] != "notification" {
		t.Fatalf("calls = %v, want trailing notification", l.calls)
	}
}

func TestHandleMessage_SchemaErrorDropsNotificationAndContinues(t *testing.T) {
	l := &recordingListener{}
	s := newReadySession(l, clock.Real{}, &fakeConn{})

	// channel.ban@1's event.reason is required; omit it so DecodeChannelBan
	// fails with a Schema-kind codec error.
	badFrame := `{
		"metadata": {
			"message_id": "5e225e2f-6ad4-4d9c-8827-ba375023b9e5",
			"message_type": "notification",
			"message_timestamp": "2023-07-19T14:56:51.634234626Z",
			"subscription_type": "channel.ban",
			"subscription_version": "1"
		},
		"payload": {
			"subscription": {
				"id": "f1c2a387-161a-49f9-a165-0f21d7a4e1c4",
				"status": "enabled",
				"type": "channel.ban",
				"version": "1",
				"cost": 0,
				"transport": {"method": "websocket", "session_id": "44f8cbce_c7ee958a"},
				"created_at": "2023-07-19T14:56:51.616329898Z"
			},
			"event": {
				"broadcaster_user_id": "12826", "broadcaster_user_login": "twitch", "broadcaster_user_name": "twitch",
				"moderator_user_id": "423374343", "moderator_user_login": "glowillig", "moderator_user_name": "glowillig",
				"user_id": "1336", "user_login": "cool_user", "user_name": "Cool_User",
				"banned_at": "2023-07-19T23:21:12.732Z", "ends_at": "2023-07-19T23:31:12.732Z", "is_permanent": false
			}
		}
	}`

	if err := s.HandleMessage([]byte(badFrame)); err != nil {
		t.Fatalf("HandleMessage returned %v, want nil (Schema errors are local to a frame)", err)
	}
	if s.State() != StateReady {
		t.Fatalf("state = %v, want Ready (session must survive a bad notification)", s.State())
	}
	if len(l.bans) != 0 {
		t.Fatalf("expected no typed dispatch for an undecodable event, got %d bans", len(l.bans))
	}
	if l.calls[len(l.calls)-1] != "notification" {
		t.Fatalf("calls = %v, want trailing raw notification", l.calls)
	}

	// The session keeps working after the dropped frame.
	if err := s.HandleMessage([]byte(channelBanFrame("channel.ban", "1"))); err != nil {
		t.Fatalf("HandleMessage after schema error: %v", err)
	}
	if len(l.bans) != 1 {
		t.Fatalf("got %d bans after recovery, want 1", len(l.bans))
	}
}

func TestHandleMessage_KeepaliveBeforeWelcomeIsProtocolViolation(t *testing.T) {
	l := &recordingListener{}
	s := New(&fakeConn{}, l)

	err := s.HandleMessage([]byte(keepaliveFrame))
	if !errors.Is(err, eventsub.ErrUnexpectedMessage) {
		t.Fatalf("err = %v, want ErrUnexpectedMessage", err)
	}
	if s.State() != StateConnecting {
		t.Fatalf("state = %v, want unchanged Connecting", s.State())
	}
}

func TestHandleMessage_ReconnectBeforeWelcomeIsProtocolViolation(t *testing.T) {
	l := &recordingListener{}
	s := New(&fakeConn{}, l)

	err := s.HandleMessage([]byte(reconnectFrame))
	if !errors.Is(err, eventsub.ErrUnexpectedMessage) {
		t.Fatalf("err = %v, want ErrUnexpectedMessage", err)
	}
}

func TestHandleMessage_NotificationBeforeWelcomeIsProtocolViolation(t *testing.T) {
	l := &recordingListener{}
	s := New(&fakeConn{}, l)

	err := s.HandleMessage([]byte(channelBanFrame("channel.ban", "1")))
	if !errors.Is(err, eventsub.ErrUnexpectedMessage) {
		t.Fatalf("err = %v, want ErrUnexpectedMessage", err)
	}
	if len(l.calls) != 0 {
		t.Fatalf("listener should not have been invoked, got %v", l.calls)
	}
}

func TestHandleMessage_ReconnectWhileAlreadyReconnectingIsProtocolViolation(t *testing.T) {
	l := &recordingListener{}
	s := newReadySession(l, clock.Real{}, &fakeConn{})

	if err := s.HandleMessage([]byte(reconnectFrame)); err != nil {
		t.Fatalf("first reconnect: %v", err)
	}
	if s.State() != StateReconnecting {
		t.Fatalf("state = %v, want Reconnecting", s.State())
	}

	err := s.HandleMessage([]byte(reconnectFrame))
	if !errors.Is(err, eventsub.ErrUnexpectedMessage) {
		t.Fatalf("err = %v, want ErrUnexpectedMessage", err)
	}
}

func TestHandleMessage_MalformedTopLevelArray(t *testing.T) {
	l := &recordingListener{}
	s := New(&fakeConn{}, l)

	err := s.HandleMessage([]byte(`[1, 2, 3]`))
	if err == nil {
		t.Fatal("expected error for malformed top-level array")
	}
	var eerr *eventsub.Error
	if !errors.As(err, &eerr) {
		t.Fatalf("err = %v, want *eventsub.Error", err)
	}
	if eerr.Kind != eventsub.KindProtocol {
		t.Fatalf("kind = %v, want KindProtocol", eerr.Kind)
	}
}

func TestKeepaliveTimeout_FakeClock(t *testing.T) {
	l := &recordingListener{}
	fc := clock.NewFake(time.Unix(0, 0))
	conn := &fakeConn{}
	s := newReadySession(l, fc, conn)

	fc.Advance(10*time.Second + keepaliveSlack + time.Second)

	if s.State() != StateClosed {
		t.Fatalf("state = %v, want Closed", s.State())
	}
	if !errors.Is(s.ClosedReason(), eventsub.ErrKeepaliveTimeout) {
		t.Fatalf("ClosedReason = %v, want ErrKeepaliveTimeout", s.ClosedReason())
	}
	if !conn.closed {
		t.Fatal("expected conn.Close to be called on keepalive timeout")
	}
}

func TestKeepaliveTimeout_ResetByActivity(t *testing.T) {
	l := &recordingListener{}
	fc := clock.NewFake(time.Unix(0, 0))
	s := newReadySession(l, fc, &fakeConn{})

	fc.Advance(8 * time.Second)
	if err := s.HandleMessage([]byte(keepaliveFrame)); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	fc.Advance(8 * time.Second)

	if s.State() != StateReady {
		t.Fatalf("state = %v, want Ready (timer should have reset)", s.State())
	}
}

func TestHandlerTableCoversEveryListenerNotification(t *testing.T) {
	want := []payload.SubscriptionKey{
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
	for _, key := range want {
		if _, ok := payload.Handlers[key]; !ok {
			t.Errorf("payload.Handlers missing %+v", key)
		}
	}
	if len(payload.Handlers) != len(want) {
		t.Errorf("payload.Handlers has %d entries, want %d", len(payload.Handlers), len(want))
	}
}
