package output

import (
	"errors"

	"github.com/hta-lab/fsr-capture/pkg/sensor"
)

// Output receives every raw line and every validated reading produced by
// a capture session. AppendRaw is called exactly once per line read from
// the device; AppendClean only for lines that parsed. Close is called
// once when the session ends, on every exit path.
type Output interface {
	AppendRaw(e sensor.RawEntry) error
	AppendClean(r sensor.Reading) error
	Close() error
}

// Multi fans out to several outputs in order. A write error from any
// destination is returned immediately; Close closes every destination
// regardless of individual failures.
type Multi []Output

func (m Multi) AppendRaw(e sensor.RawEntry) error {
	for _, o := range m {
		if err := o.AppendRaw(e); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) AppendClean(r sensor.Reading) error {
	for _, o := range m {
		if err := o.AppendClean(r); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var errs []error
	for _, o := range m {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
