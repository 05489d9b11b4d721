package capture

import (
	"sync/atomic"
	"time"
)

// Window is the timing state machine for one capture: it stamps samples
// with seconds elapsed since Start and decides when acquisition stops.
// Cancellation is one-way; once requested, ShouldContinue reports false
// for the rest of the session.
//
// The time source is injectable so tests can drive the window without
// sleeping.
type Window struct {
	duration  time.Duration
	now       func() time.Time
	start     time.Time
	started   bool
	cancelled atomic.Bool
}

// NewWindow creates a window for the given capture duration. A duration
// of zero means capture nothing.
func NewWindow(duration time.Duration) *Window {
	return &Window{duration: duration, now: time.Now}
}

// NewWindowAt is NewWindow with an explicit time source, for tests.
func NewWindowAt(duration time.Duration, now func() time.Time) *Window {
	return &Window{duration: duration, now: now}
}

// Start records the capture-start instant. The first sample after Start
// is stamped at (near) zero; any pre-roll delay happens before Start.
func (w *Window) Start() {
	w.start = w.now()
	w.started = true
}

// Elapsed returns seconds since Start as a float. Zero before Start.
func (w *Window) Elapsed() float64 {
	if !w.started {
		return 0
	}
	return w.now().Sub(w.start).Seconds()
}

// ShouldContinue reports whether the capture window is still open: the
// configured duration has not elapsed and nobody has cancelled.
func (w *Window) ShouldContinue() bool {
	if w.cancelled.Load() {
		return false
	}
	if !w.started {
		return false
	}
	return w.now().Sub(w.start) < w.duration
}

// Cancel closes the window permanently. There is no un-cancel.
func (w *Window) Cancel() {
	w.cancelled.Store(true)
}

// Cancelled reports whether Cancel was called.
func (w *Window) Cancelled() bool {
	return w.cancelled.Load()
}
