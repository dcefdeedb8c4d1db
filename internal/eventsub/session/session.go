// Package session implements the per-connection EventSub state machine:
// one live WebSocket, keepalive enforcement, envelope decode, and
// dispatch to a Listener.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nugget/twitch-eventsub-ws/internal/clock"
	"github.com/nugget/twitch-eventsub-ws/internal/eventsub"
	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/listener"
	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/payload"
	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/transport"
)

// State is a Session's position in its lifecycle.
type State int

const (
	StateConnecting State = iota
	StateHandshaking
	StateReady
	StateReconnecting
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateReconnecting:
		return "reconnecting"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	handshakeTimeout = 30 * time.Second
	keepaliveSlack   = 5 * time.Second
)

// Session owns one live WebSocket connection and the Listener that
// receives its decoded messages. Mutable fields are guarded by mu, since
// timer callbacks and Close touch them from other goroutines; Close marks
// the Session Closing and closes conn, which ends the reader loop in Run.
type Session struct {
	conn        transport.Conn
	listener    listener.Listener
	clock       clock.Clock
	logger      *slog.Logger
	onReconnect func(url string)

	mu               sync.Mutex
	state            State
	sessionID        string
	keepaliveTimeout time.Duration
	reconnectURL     string
	hasReconnectURL  bool
	lastActivity     time.Time
	closedReason     error

	keepaliveTimer clock.Timer
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithClock overrides the real clock, used by tests to fake keepalive
// and handshake deadlines without sleeping.
func WithClock(c clock.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithOnReconnect registers the callback invoked when a
// session_reconnect frame arrives, carrying the new reconnect_url.
// Session itself never constructs a replacement Session, and the
// Controller does not install this callback.
func WithOnReconnect(fn func(url string)) Option {
	return func(s *Session) { s.onReconnect = fn }
}

// WithLogger sets the structured logger used for dropped-notification
// diagnostics. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New builds a Session bound to conn and l. conn is expected to be
// pre-configured with the target host/port/path (see
// transport.WebSocketConn); Session only calls Connect/ReadMessage/
// WriteMessage/Close on it.
func New(conn transport.Conn, l listener.Listener, opts ...Option) *Session {
	s := &Session{
		conn:     conn,
		listener: l,
		clock:    clock.Real{},
		logger:   slog.Default(),
		state:    StateConnecting,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the Session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SessionID reports the session_id assigned by the server's welcome
// message, or "" before Ready.
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// ClosedReason reports why the Session stopped, or nil if it has not
// closed yet.
func (s *Session) ClosedReason() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closedReason
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Close asks the Session to stop. The reader loop in Run observes the
// resulting read error and exits.
func (s *Session) Close() error {
	s.setState(StateClosing)
	return s.conn.Close()
}

func (s *Session) fail(kind eventsub.ErrorKind, op string, err error) error {
	wrapped := &eventsub.Error{Kind: kind, Op: op, Err: err}
	s.mu.Lock()
	if s.closedReason == nil {
		s.closedReason = wrapped
	}
	s.state = StateClosed
	if s.keepaliveTimer != nil {
		s.keepaliveTimer.Stop()
	}
	s.mu.Unlock()
	return wrapped
}

// Run dials conn, waits for session_welcome within the handshake
// deadline, then reads frames until the connection fails or Close is
// called. It returns the terminal error, matching ClosedReason.
func (s *Session) Run(ctx context.Context) error {
	s.setState(StateConnecting)
	if err := s.conn.Connect(ctx); err != nil {
		return s.fail(eventsub.KindTransport, "Session.Run", err)
	}
	s.setState(StateHandshaking)

	handshakeTimer := s.clock.AfterFunc(handshakeTimeout, func() {
		if s.State() == StateHandshaking {
			s.fail(eventsub.KindProtocol, "Session.Run", eventsub.ErrHandshakeTimeout)
			s.conn.Close()
		}
	})
	defer handshakeTimer.Stop()

	for {
		raw, err := s.conn.ReadMessage(ctx)
		if err != nil {
			if s.State() == StateClosed {
				return s.ClosedReason()
			}
			return s.fail(eventsub.KindTransport, "Session.Run", err)
		}
		if err := s.HandleMessage(raw); err != nil {
			s.mu.Lock()
			if s.closedReason == nil {
				s.closedReason = err
			}
			s.state = StateClosed
			s.mu.Unlock()
			s.conn.Close()
			return err
		}
		if s.State() != StateHandshaking {
			handshakeTimer.Stop()
		}
	}
}

// HandleMessage is the pure decode-and-dispatch step Session.Run drives
// from the network: decode the envelope, classify by message_type,
// decode the typed payload via payload.Handlers, and invoke the
// Listener. It performs no I/O, so tests call it directly with literal
// frame bytes.
func (s *Session) HandleMessage(raw []byte) error {
	env, err := eventsub.DecodeEnvelope(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.lastActivity = s.clock.Now()
	timer := s.keepaliveTimer
	timeout := s.keepaliveTimeout
	s.mu.Unlock()
	if timer != nil && timeout > 0 {
		timer.Reset(timeout + keepaliveSlack)
	}

	switch env.Metadata.MessageType {
	case eventsub.MessageTypeSessionWelcome:
		return s.handleWelcome(env)
	case eventsub.MessageTypeSessionKeepalive:
		if s.State() != StateReady {
			return s.unexpectedState("session_keepalive")
		}
		return nil
	case eventsub.MessageTypeSessionReconnect:
		if s.State() != StateReady {
			return s.unexpectedState("session_reconnect")
		}
		return s.handleReconnect(env)
	case eventsub.MessageTypeNotification:
		if s.State() != StateReady {
			return s.unexpectedState("notification")
		}
		return s.handleNotification(env)
	case eventsub.MessageTypeRevocation:
		if s.State() != StateReady {
			return s.unexpectedState("revocation")
		}
		s.listener.OnNotification(env.Metadata, env.Payload)
		return nil
	default:
		return &eventsub.Error{Kind: eventsub.KindProtocol, Op: "Session.HandleMessage", Err: eventsub.ErrUnknownMessageType}
	}
}

// unexpectedState reports a message_type arriving outside the state the
// required-state table demands for it.
func (s *Session) unexpectedState(messageType string) error {
	return &eventsub.Error{Kind: eventsub.KindProtocol, Op: fmt.Sprintf("Session.HandleMessage[%s]", messageType), Err: eventsub.ErrUnexpectedMessage}
}

func (s *Session) handleWelcome(env eventsub.Envelope) error {
	if s.State() != StateHandshaking {
		return s.unexpectedState("session_welcome")
	}

	welcome, err := payload.DecodeSessionWelcome(env.Payload)
	if err != nil {
		return &eventsub.Error{Kind: eventsub.KindSchema, Op: "Session.HandleMessage", Err: err}
	}

	keepalive := time.Duration(welcome.KeepaliveTimeoutSeconds) * time.Second

	s.mu.Lock()
	s.sessionID = welcome.ID
	s.keepaliveTimeout = keepalive
	s.reconnectURL = welcome.ReconnectURL
	s.hasReconnectURL = welcome.HasReconnectURL
	s.state = StateReady
	if s.keepaliveTimer == nil {
		s.keepaliveTimer = s.clock.AfterFunc(keepalive+keepaliveSlack, s.onKeepaliveExpired)
	} else {
		s.keepaliveTimer.Reset(keepalive + keepaliveSlack)
	}
	s.mu.Unlock()

	s.listener.OnSessionWelcome(env.Metadata, welcome)
	return nil
}

func (s *Session) onKeepaliveExpired() {
	if s.State() == StateClosed {
		return
	}
	s.fail(eventsub.KindKeepalive, "Session.keepalive", eventsub.ErrKeepaliveTimeout)
	s.conn.Close()
}

func (s *Session) handleReconnect(env eventsub.Envelope) error {
	reconnect, err := payload.DecodeSessionReconnect(env.Payload)
	if err != nil {
		return &eventsub.Error{Kind: eventsub.KindSchema, Op: "Session.HandleMessage", Err: err}
	}

	s.mu.Lock()
	s.reconnectURL = reconnect.ReconnectURL
	s.hasReconnectURL = true
	s.state = StateReconnecting
	s.mu.Unlock()

	if s.onReconnect != nil {
		s.onReconnect(reconnect.ReconnectURL)
	}
	return nil
}

func (s *Session) handleNotification(env eventsub.Envelope) error {
	s.listener.OnNotification(env.Metadata, env.Payload)

	key := payload.SubscriptionKey{Type: env.Metadata.SubscriptionType, Version: env.Metadata.SubscriptionVersion}
	decode, known := payload.Handlers[key]
	if !known {
		return nil
	}

	decoded, err := decode(env.Payload)
	if err != nil {
		s.logger.Warn("dropping notification with unparseable payload",
			"type", key.Type, "version", key.Version, "error", err)
		return nil
	}
	listener.Dispatch(s.listener, env.Metadata, decoded)
	return nil
}
