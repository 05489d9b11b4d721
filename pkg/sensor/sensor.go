package sensor

import (
	"errors"
	"strconv"
	"time"
)

// Reading is one validated sample from the device. Elapsed is stamped by
// the capture clock, not parsed from the device line.
type Reading struct {
	Elapsed    float64 `json:"elapsed"`
	Force      float64 `json:"force"`
	DeltaForce float64 `json:"delta_force"`
	FSR1       int     `json:"fsr1"`
	FSR2       int     `json:"fsr2"`
	FSR3       int     `json:"fsr3"`
}

// RawEntry pairs a host timestamp with the exact text received from the
// device. One is created for every line read, parseable or not.
type RawEntry struct {
	Timestamp time.Time
	Text      string
}

// ErrReadTimeout is returned by ReadLine when no complete line arrived
// within the timeout. It is not a device failure; callers re-check their
// capture window and try again.
var ErrReadTimeout = errors.New("sensor: read timeout")

// LineSource is a line-oriented device connection with bounded reads.
type LineSource interface {
	// ReadLine blocks until a complete line is available, the timeout
	// expires (ErrReadTimeout), or the source fails.
	ReadLine(timeout time.Duration) (string, error)
	Close() error
}

// CommandWriter is implemented by sources that accept single-byte control
// commands (the firmware understands 's' to start streaming and 'e' to
// stop). The capture loop uses it when available.
type CommandWriter interface {
	WriteCommand(cmd byte) error
}

// CleanRecord returns the reading as clean-CSV fields in the fixed column
// order Time(s),Force(N),DeltaF(N),FSR1,FSR2,FSR3. Time uses two decimal
// places; Force and DeltaF use the shortest representation that parses
// back to the same value, so a clean row round-trips through ParseLine.
func (r Reading) CleanRecord() []string {
	return []string{
		strconv.FormatFloat(r.Elapsed, 'f', 2, 64),
		strconv.FormatFloat(r.Force, 'f', -1, 64),
		strconv.FormatFloat(r.DeltaForce, 'f', -1, 64),
		strconv.Itoa(r.FSR1),
		strconv.Itoa(r.FSR2),
		strconv.Itoa(r.FSR3),
	}
}

// CleanHeader is the clean-CSV header row.
func CleanHeader() []string {
	return []string{"Time(s)", "Force(N)", "DeltaF(N)", "FSR1", "FSR2", "FSR3"}
}
