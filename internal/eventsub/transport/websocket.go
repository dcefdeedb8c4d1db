package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocketConn is the production Conn, dialing Twitch's EventSub
// WebSocket endpoint with gorilla/websocket.
type WebSocketConn struct {
	Host      string
	Port      int
	Path      string
	UserAgent string

	mu   sync.Mutex
	conn *websocket.Conn
}

var _ Conn = (*WebSocketConn)(nil)

// Connect dials the configured endpoint. Twitch always serves EventSub
// over TLS, so the scheme is unconditionally wss.
func (c *WebSocketConn) Connect(ctx context.Context) error {
	u := url.URL{
		Scheme: "wss",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Path,
	}

	header := http.Header{}
	if c.UserAgent != "" {
		header.Set("User-Agent", c.UserAgent)
	}

	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return fmt.Errorf("dial eventsub websocket: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// ReadMessage blocks for the next text frame. It does not itself honor
// ctx cancellation beyond what the underlying connection supports;
// callers close the Conn to unblock a pending read.
func (c *WebSocketConn) ReadMessage(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil, fmt.Errorf("eventsub websocket: not connected")
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *WebSocketConn) WriteMessage(ctx context.Context, data []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("eventsub websocket: not connected")
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (c *WebSocketConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
