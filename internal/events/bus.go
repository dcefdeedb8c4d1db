// Package events provides a publish/subscribe event bus for operational
// observability. Events flow from components (Session, Controller) to
// subscribers (a demo dashboard, future metrics collector). The bus is
// nil-safe: calling Publish on a nil *Bus is a no-op, so components do
// not need guard checks.
package events

import (
	"sync"
	"time"
)

// Source constants identify which component published an event.
const (
	// SourceSession identifies events from a Session's reader loop.
	SourceSession = "session"
	// SourceController identifies events from the subscription Controller.
	SourceController = "controller"
)

// Kind constants describe the type of event within a source.
const (
	// KindWelcome signals a Session received session_welcome.
	// Data: session_id, keepalive_timeout_seconds.
	KindWelcome = "welcome"
	// KindReconnect signals a Session received session_reconnect.
	// Data: session_id, reconnect_url.
	KindReconnect = "reconnect"
	// KindKeepaliveTimeout signals a Session's keepalive deadline expired.
	// Data: session_id, last_activity.
	KindKeepaliveTimeout = "keepalive_timeout"

	// KindSubscriptionPlaced signals the Controller successfully created
	// a subscription on a session. Data: type, version, session_id.
	KindSubscriptionPlaced = "subscription_placed"
	// KindSubscriptionFailed signals a subscription create attempt was
	// classified as a permanent failure. Data: type, version, reason.
	KindSubscriptionFailed = "subscription_failed"
	// KindSubscriptionRevoked signals a notification carried
	// message_type=revocation for a known subscription.
	// Data: type, version, subscription_id.
	KindSubscriptionRevoked = "subscription_revoked"
)

// Event represents a single operational event published by a component.
type Event struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"ts"`
	// Source identifies the component that published the event.
	Source string `json:"source"`
	// Kind describes the type of event within the source.
	Kind string `json:"kind"`
	// Data holds event-specific key/value pairs.
	Data map[string]any `json:"data,omitempty"`
}

// Bus is a non-blocking broadcast event bus. Subscribers receive events
// on buffered channels; slow subscribers miss events rather than
// blocking publishers.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
	// recvToSend maps the receive-only channel returned by Subscribe
	// back to the bidirectional channel stored in subs. This allows
	// Unsubscribe to accept <-chan Event (the caller's view) without
	// an illegal type conversion.
	recvToSend map[<-chan Event]chan Event
}

// New creates a new event bus ready for use.
func New() *Bus {
	return &Bus{
		subs:       make(map[chan Event]struct{}),
		recvToSend: make(map[<-chan Event]chan Event),
	}
}

// Publish sends an event to all subscribers. Non-blocking: if a
// subscriber's channel is full, the event is dropped for that
// subscriber. Safe to call on a nil receiver (no-op).
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Subscriber is full — drop the event rather than block.
		}
	}
}

// Subscribe returns a channel that receives published events. The
// caller must eventually call Unsubscribe to avoid resource leaks.
// bufSize controls the channel buffer; 64 is a reasonable default for
// WebSocket consumers.
func (b *Bus) Subscribe(bufSize int) <-chan Event {
	ch := make(chan Event, bufSize)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[ch] = struct{}{}
	b.recvToSend[ch] = ch
	return ch
}

// Unsubscribe removes a subscription and closes the channel. Safe to
// call with a channel that is already unsubscribed (no-op).
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sendCh, ok := b.recvToSend[ch]
	if !ok {
		return
	}
	delete(b.subs, sendCh)
	delete(b.recvToSend, ch)
	close(sendCh)
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
