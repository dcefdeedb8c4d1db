package controller

import "sync/atomic"

// Handle is the caller-facing token returned by Controller.Subscribe.
// Its zero value is not usable; only values returned by Subscribe are
// valid. Release is idempotent — calling it more than once after the
// first has no further effect.
type Handle struct {
	id       string
	key      string
	ctrl     *Controller
	released atomic.Bool
}

// ID is a debug identifier logged alongside refcount changes.
func (h *Handle) ID() string { return h.id }

// Release drops this Handle's reference to its Request. When the last
// reference is dropped, the Controller issues a REST delete (if a
// server subscription id was recorded for it) and purges the record.
func (h *Handle) Release() {
	if h == nil || !h.released.CompareAndSwap(false, true) {
		return
	}
	h.ctrl.removeRef(h.key)
}
