// Package clock abstracts time so Session and Controller timers
// (keepalive deadlines, reconnect backoff, place() retry delays) can be
// driven deterministically in tests instead of waiting on real sleeps.
package clock

import "time"

// Timer is the handle returned by Clock.AfterFunc, mirroring the
// subset of *time.Timer that Session and Controller rely on.
type Timer interface {
	Stop() bool
	Reset(d time.Duration) bool
}

// Clock is the time source used throughout internal/eventsub.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real is the production Clock, backed directly by the time package.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

var _ Clock = Real{}
