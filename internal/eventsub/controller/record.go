package controller

import (
	"github.com/cenkalti/backoff/v5"

	"github.com/nugget/twitch-eventsub-ws/internal/clock"
)

// recordState is an activeRecord's position in the placement lifecycle.
type recordState int

const (
	recordPending recordState = iota
	recordCreating
	recordActive
	recordFailed
	recordReleasing
)

func (s recordState) String() string {
	switch s {
	case recordPending:
		return "pending"
	case recordCreating:
		return "creating"
	case recordActive:
		return "active"
	case recordFailed:
		return "failed"
	case recordReleasing:
		return "releasing"
	default:
		return "unknown"
	}
}

// activeRecord is the Controller's bookkeeping for one Request. It is
// touched only from the Controller's task-queue goroutine.
type activeRecord struct {
	request Request

	refcount int
	state    recordState

	boundSessionID          string
	serverSubscriptionID    string
	hasServerSubscriptionID bool

	retryTimer clock.Timer
	boff       *backoff.ExponentialBackOff
	attempts   int
	lastErr    error
}
