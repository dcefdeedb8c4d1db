// Package transport implements the WebSocket Conn a Session drives.
package transport

import "context"

// Conn is the channel-like abstraction a Session reads frames from and
// writes text frames to. Session depends only on this
// interface so tests can substitute a fake without a real socket.
type Conn interface {
	Connect(ctx context.Context) error
	ReadMessage(ctx context.Context) ([]byte, error)
	WriteMessage(ctx context.Context, data []byte) error
	Close() error
}
