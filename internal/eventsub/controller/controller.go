// Package controller implements the fleet-level Controller: it
// multiplexes Request subscriptions across a pool of Sessions bounded
// by MaxSessions, creating and tearing down server-side subscriptions
// through a RESTClient and retrying transient failures with backoff.
package controller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/nugget/twitch-eventsub-ws/internal/clock"
	"github.com/nugget/twitch-eventsub-ws/internal/events"
	"github.com/nugget/twitch-eventsub-ws/internal/eventsub/session"
)

// Config bounds the session pool and tunes retry timing. The zero
// value is not usable; build one with DefaultConfig and override
// fields as needed.
type Config struct {
	MaxSessions                int
	MaxSubscriptionsPerSession int
	BackoffInitial             time.Duration
	BackoffMax                 time.Duration
	PlaceRetryShortDelay       time.Duration
	PlaceRetryLongDelay        time.Duration
}

// DefaultConfig returns the defaults spec.md §4.4 names: a saturation
// threshold of 100, backoff from 2s to 60s, and the 250ms/500ms
// retry-scheduling delays for the not-yet-ready and no-sessions cases.
func DefaultConfig() Config {
	return Config{
		MaxSessions:                3,
		MaxSubscriptionsPerSession: 100,
		BackoffInitial:             2 * time.Second,
		BackoffMax:                 60 * time.Second,
		PlaceRetryShortDelay:       250 * time.Millisecond,
		PlaceRetryLongDelay:        500 * time.Millisecond,
	}
}

// SessionFactory dials and starts a new Session. target is empty for
// the fleet's default endpoint, or a reconnect_url to dial instead; the
// Controller always passes an empty target, and does not dial a
// reconnect_url or close a superseded Session when a session_reconnect
// frame arrives. The Controller does not otherwise know how
// to reach the WebSocket endpoint; the caller's factory closes over
// that configuration.
type SessionFactory func(ctx context.Context, target string) (*session.Session, error)

type sessionEntry struct {
	sess              *session.Session
	subscriptionCount int
}

// Ready reports whether e can accept one more subscription.
func (e *sessionEntry) Ready(capacity int) bool {
	return e.sess.State() == session.StateReady && e.subscriptionCount < capacity
}

// Controller owns the session pool and the subscription table. All
// mutation happens on the single goroutine draining tasks, so the
// mutex below only needs to guard the handful of fields external
// callers (Sessions, Subscriptions) read without going through that
// queue.
type Controller struct {
	cfg     Config
	rest    RESTClient
	factory SessionFactory
	clock   clock.Clock
	logger  *slog.Logger
	bus     *events.Bus

	mu       sync.Mutex
	sessions []*sessionEntry
	records  map[string]*activeRecord

	tasks chan func()
	quit  chan struct{}
	done  chan struct{}
}

// Option configures a Controller at construction time.
type Option func(*Controller)

// WithClock overrides the real clock used for retry/backoff timers.
func WithClock(c clock.Clock) Option {
	return func(ctrl *Controller) { ctrl.clock = c }
}

// WithLogger sets the structured logger used for placement and retry
// diagnostics. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(ctrl *Controller) { ctrl.logger = l }
}

// WithEventBus attaches a nil-safe sink for operational observability
// (subscription placed/failed/revoked). Purely ambient — no Listener
// contract depends on it.
func WithEventBus(b *events.Bus) Option {
	return func(ctrl *Controller) { ctrl.bus = b }
}

// New builds a Controller. rest issues the REST create/delete calls;
// factory dials new Sessions on demand, up to cfg.MaxSessions.
func New(cfg Config, rest RESTClient, factory SessionFactory, opts ...Option) *Controller {
	ctrl := &Controller{
		cfg:     cfg,
		rest:    rest,
		factory: factory,
		clock:   clock.Real{},
		logger:  slog.Default(),
		records: make(map[string]*activeRecord),
		tasks:   make(chan func(), 64),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ctrl)
	}
	go ctrl.run()
	return ctrl
}

func (c *Controller) run() {
	defer close(c.done)
	for {
		select {
		case task := <-c.tasks:
			task()
		case <-c.quit:
			return
		}
	}
}

func (c *Controller) submit(fn func()) {
	select {
	case c.tasks <- fn:
	case <-c.quit:
	}
}

// Subscribe registers req. If an equal Request is already active or
// pending, its refcount is incremented and no network action is taken;
// otherwise a new record is created and placement begins.
func (c *Controller) Subscribe(req Request) *Handle {
	result := make(chan *Handle, 1)
	c.submit(func() {
		key := req.Key()
		rec, ok := c.records[key]
		if !ok {
			rec = &activeRecord{request: req, state: recordPending}
			c.mu.Lock()
			c.records[key] = rec
			c.mu.Unlock()
		}
		rec.refcount++
		h := &Handle{id: uuid.NewString(), key: key, ctrl: c}
		if rec.refcount == 1 {
			c.place(key)
		}
		result <- h
	})
	return <-result
}

func (c *Controller) removeRef(key string) {
	c.submit(func() {
		rec, ok := c.records[key]
		if !ok {
			return
		}
		rec.refcount--
		if rec.refcount > 0 {
			return
		}

		if rec.retryTimer != nil {
			rec.retryTimer.Stop()
		}
		rec.state = recordReleasing

		if rec.hasServerSubscriptionID {
			if err := c.rest.DeleteSubscription(context.Background(), rec.serverSubscriptionID); err != nil {
				c.logger.Warn("delete subscription failed", "type", rec.request.Type, "version", rec.request.Version, "error", err)
			}
			c.releaseSlot(rec.boundSessionID)
		}

		c.mu.Lock()
		delete(c.records, key)
		c.mu.Unlock()
	})
}

func (c *Controller) releaseSlot(sessionID string) {
	for _, e := range c.sessions {
		if e.sess.SessionID() == sessionID {
			if e.subscriptionCount > 0 {
				e.subscriptionCount--
			}
			return
		}
	}
}

// place implements spec.md §4.4 step 3: bucket sessions, pick a ready
// one and create the subscription, or schedule a retry. It must only
// ever run on the task-queue goroutine.
func (c *Controller) place(key string) {
	rec, ok := c.records[key]
	if !ok || rec.refcount == 0 {
		return
	}

	c.pruneClosedSessions()

	var ready *sessionEntry
	anyNotYetReady := false
	for _, e := range c.sessions {
		switch {
		case e.Ready(c.cfg.MaxSubscriptionsPerSession):
			if ready == nil {
				ready = e
			}
		case e.sess.State() != session.StateClosed && e.sess.State() != session.StateClosing:
			anyNotYetReady = true
		}
	}

	switch {
	case ready != nil:
		c.createOn(key, rec, ready)
	case anyNotYetReady:
		c.scheduleRetry(key, c.cfg.PlaceRetryShortDelay)
	case len(c.sessions) < c.cfg.MaxSessions:
		c.dialNewSession("")
		c.scheduleRetry(key, c.cfg.PlaceRetryLongDelay)
	default:
		// Pool is full and saturated; wait for capacity to free up.
		c.scheduleRetry(key, c.cfg.PlaceRetryLongDelay)
	}
}

func (c *Controller) pruneClosedSessions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	live := c.sessions[:0]
	for _, e := range c.sessions {
		if e.sess.State() == session.StateClosed {
			continue
		}
		live = append(live, e)
	}
	c.sessions = live
}

func (c *Controller) createOn(key string, rec *activeRecord, entry *sessionEntry) {
	rec.state = recordCreating
	rec.boundSessionID = entry.sess.SessionID()
	entry.subscriptionCount++

	serverID, err := c.rest.CreateSubscription(context.Background(), rec.request, entry.sess.SessionID())
	if err != nil {
		entry.subscriptionCount--
		c.handlePlacementError(key, rec, err)
		return
	}

	if rec.refcount == 0 {
		// Dropped while Creating: tear it back down rather than leak it.
		_ = c.rest.DeleteSubscription(context.Background(), serverID)
		entry.subscriptionCount--
		return
	}

	rec.serverSubscriptionID = serverID
	rec.hasServerSubscriptionID = true
	rec.state = recordActive
	rec.attempts = 0
	if rec.boff != nil {
		rec.boff.Reset()
	}
	c.bus.Publish(events.Event{Timestamp: c.clock.Now(), Source: events.SourceController, Kind: events.KindSubscriptionPlaced,
		Data: map[string]any{"type": rec.request.Type, "version": rec.request.Version, "session_id": entry.sess.SessionID()}})
}

func (c *Controller) handlePlacementError(key string, rec *activeRecord, err error) {
	class := classify(err)
	rec.lastErr = err

	if class.Permanent() {
		rec.state = recordFailed
		c.logger.Error("subscription placement failed permanently", "type", rec.request.Type, "version", rec.request.Version, "class", class.String(), "error", err)
		c.bus.Publish(events.Event{Timestamp: c.clock.Now(), Source: events.SourceController, Kind: events.KindSubscriptionFailed,
			Data: map[string]any{"type": rec.request.Type, "version": rec.request.Version, "reason": err.Error()}})
		return
	}

	if class == ErrClassConflict {
		// Twitch already considers the subscription live; treat it as
		// active even though we were not handed a server id.
		rec.state = recordActive
		c.logger.Warn("subscription create returned conflict, marking active", "type", rec.request.Type, "version", rec.request.Version)
		return
	}

	rec.attempts++
	if rec.boff == nil {
		rec.boff = backoff.NewExponentialBackOff()
		rec.boff.InitialInterval = c.cfg.BackoffInitial
		rec.boff.MaxInterval = c.cfg.BackoffMax
		rec.boff.Reset()
	}
	delay := rec.boff.NextBackOff()
	if delay == backoff.Stop {
		delay = c.cfg.BackoffMax
	}

	c.logger.Warn("subscription create failed, retrying", "type", rec.request.Type, "version", rec.request.Version, "class", class.String(), "attempt", rec.attempts, "delay", delay, "error", err)
	rec.state = recordPending
	c.scheduleRetry(key, delay)
}

func (c *Controller) scheduleRetry(key string, delay time.Duration) {
	rec, ok := c.records[key]
	if !ok {
		return
	}
	rec.retryTimer = c.clock.AfterFunc(delay, func() {
		c.submit(func() { c.place(key) })
	})
}

// dialNewSession must only be called from the task-queue goroutine
// (i.e. from within place()); it blocks that goroutine for the
// duration of the dial, same as the REST call in createOn.
func (c *Controller) dialNewSession(target string) {
	sess, err := c.factory(context.Background(), target)
	if err != nil {
		c.logger.Error("dial session failed", "target", target, "error", err)
		return
	}
	c.mu.Lock()
	c.sessions = append(c.sessions, &sessionEntry{sess: sess})
	c.mu.Unlock()
}

// Sessions reports the number of sessions currently in the pool,
// including ones still handshaking.
func (c *Controller) Sessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// Subscriptions reports the number of records the Controller is
// currently tracking (Pending through Releasing).
func (c *Controller) Subscriptions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// Shutdown cancels all retry timers, closes every Session, and waits
// for the task-queue goroutine to drain, bounded by ctx.
func (c *Controller) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	c.submit(func() {
		for _, rec := range c.records {
			if rec.retryTimer != nil {
				rec.retryTimer.Stop()
			}
		}
		for _, e := range c.sessions {
			e.sess.Close()
		}
		close(done)
	})

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	close(c.quit)
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
