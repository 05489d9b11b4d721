package sensor

import (
	"io"
	"sync"
	"time"
)

// FakeStep is one scripted ReadLine outcome for a FakeSource.
type FakeStep struct {
	Line    string
	Timeout bool
	Err     error
}

// FakeSource replays a scripted sequence of lines, timeouts and errors,
// so the capture loop can be exercised without a device. Once the script
// is exhausted every further read times out, keeping the loop alive
// until its window expires.
type FakeSource struct {
	mu       sync.Mutex
	steps    []FakeStep
	pos      int
	delay    time.Duration
	closed   bool
	Commands []byte
}

// NewFakeSource builds a source that replays steps in order. delay is
// slept before each outcome to simulate the device's line rate.
func NewFakeSource(steps []FakeStep, delay time.Duration) *FakeSource {
	return &FakeSource{steps: steps, delay: delay}
}

func (f *FakeSource) ReadLine(timeout time.Duration) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", io.ErrClosedPipe
	}
	if f.pos >= len(f.steps) {
		return "", ErrReadTimeout
	}
	step := f.steps[f.pos]
	f.pos++
	switch {
	case step.Timeout:
		return "", ErrReadTimeout
	case step.Err != nil:
		return "", step.Err
	default:
		return step.Line, nil
	}
}

// WriteCommand records control bytes so tests can assert the loop sent
// the start/stop commands.
func (f *FakeSource) WriteCommand(cmd byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Commands = append(f.Commands, cmd)
	return nil
}

func (f *FakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
