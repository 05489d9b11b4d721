package capture

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hta-lab/fsr-capture/pkg/output"
	"github.com/hta-lab/fsr-capture/pkg/sensor"
)

// Firmware control bytes: start and end streaming.
const (
	cmdStart = 's'
	cmdStop  = 'e'
)

// Session is the run-scoped context for one capture: how long to wait
// before capturing, how long to capture, and how long a single device
// read may block. One Session value is created per invocation and
// passed through the loop explicitly.
type Session struct {
	ID          string
	Delay       time.Duration
	Duration    time.Duration
	ReadTimeout time.Duration
}

// NewSession builds a session with a fresh ID. Delay and Duration must
// be non-negative and ReadTimeout positive; the config layer validates
// that before we get here.
func NewSession(delay, duration, readTimeout time.Duration) Session {
	return Session{
		ID:          uuid.NewString(),
		Delay:       delay,
		Duration:    duration,
		ReadTimeout: readTimeout,
	}
}

// Summary describes what a finished session actually captured.
type Summary struct {
	RawLines  int
	CleanRows int
	Elapsed   float64
	Cancelled bool
}

// Run drives one capture session through its states: pre-roll delay,
// capture window, drain, close.
//
// Each capture cycle reads at most one line (bounded by the session's
// read timeout), stamps it with elapsed time, appends it to the raw log,
// and appends a clean row iff the line parsed. A read timeout just
// re-checks the window. A device read error or a sink write error ends
// the session early; the outputs are closed before the error is
// returned, so everything captured so far is flushed. Cancellation of
// ctx is observed once per cycle and drains the same way.
//
// Run always closes out exactly once. The line source belongs to the
// caller and is left open.
func Run(ctx context.Context, sess Session, src sensor.LineSource, out output.Output) (Summary, error) {
	var sum Summary

	// PreRoll
	if sess.Delay > 0 {
		log.Printf("waiting %s before capture", sess.Delay)
		select {
		case <-time.After(sess.Delay):
		case <-ctx.Done():
		}
	}

	win := NewWindow(sess.Duration)
	var fatal error
	started := false

	if ctx.Err() == nil {
		started = true
		if cw, ok := src.(sensor.CommandWriter); ok {
			if err := cw.WriteCommand(cmdStart); err != nil {
				log.Printf("start command failed: %v", err)
			}
		}
		log.Printf("capture started, window %s", sess.Duration)
		win.Start()
		fatal = capture(ctx, win, sess.ReadTimeout, src, out, &sum)
	}

	// Draining: no further reads; tell the device to stop streaming and
	// flush and close both sinks on every exit path.
	if cw, ok := src.(sensor.CommandWriter); ok && started {
		if err := cw.WriteCommand(cmdStop); err != nil {
			log.Printf("stop command failed: %v", err)
		}
	}
	sum.Elapsed = win.Elapsed()
	sum.Cancelled = ctx.Err() != nil

	closeErr := out.Close()

	// Closed
	return sum, errors.Join(fatal, closeErr)
}

// capture runs the read-stamp-parse-write cycles until the window closes
// or a fatal error occurs. Parse failures are line-local and never stop
// the loop.
func capture(ctx context.Context, win *Window, readTimeout time.Duration, src sensor.LineSource, out output.Output, sum *Summary) error {
	for win.ShouldContinue() {
		select {
		case <-ctx.Done():
			win.Cancel()
			return nil
		default:
		}

		line, err := src.ReadLine(readTimeout)
		if errors.Is(err, sensor.ErrReadTimeout) {
			continue
		}
		if err != nil {
			win.Cancel()
			return err
		}

		elapsed := win.Elapsed()
		entry := sensor.RawEntry{Timestamp: time.Now(), Text: line}
		if werr := out.AppendRaw(entry); werr != nil {
			win.Cancel()
			return werr
		}
		sum.RawLines++

		if r, ok := sensor.ParseLine(line); ok {
			r.Elapsed = elapsed
			if werr := out.AppendClean(r); werr != nil {
				win.Cancel()
				return werr
			}
			sum.CleanRows++
		}
	}
	return nil
}
