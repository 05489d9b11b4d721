// Package csvpair writes the two correlated session logs: a raw CSV of
// every line received from the device and a clean CSV of the validated
// samples. Both files belong to one session and are closed together.
package csvpair

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/hta-lab/fsr-capture/pkg/output"
	"github.com/hta-lab/fsr-capture/pkg/sensor"
)

// rawTimeLayout is the host timestamp format in the raw log.
const rawTimeLayout = "2006-01-02 15:04:05.000"

type Pair struct {
	rawFile   *os.File
	cleanFile *os.File
	raw       *csv.Writer
	clean     *csv.Writer
	closed    bool
}

// Open creates the raw and clean files and writes their header rows.
// Either path may be empty to disable that sink; with both empty the
// pair is a no-op output. On any open failure nothing is left behind
// half-created.
func Open(rawPath, cleanPath string) (*Pair, error) {
	p := &Pair{}
	if rawPath != "" {
		f, err := os.Create(rawPath)
		if err != nil {
			return nil, fmt.Errorf("create raw log: %w", err)
		}
		p.rawFile = f
		p.raw = csv.NewWriter(f)
		if err := p.writeRaw([]string{"Timestamp", "Line"}); err != nil {
			f.Close()
			return nil, err
		}
	}
	if cleanPath != "" {
		f, err := os.Create(cleanPath)
		if err != nil {
			if p.rawFile != nil {
				p.rawFile.Close()
			}
			return nil, fmt.Errorf("create clean log: %w", err)
		}
		p.cleanFile = f
		p.clean = csv.NewWriter(f)
		if err := p.writeClean(sensor.CleanHeader()); err != nil {
			f.Close()
			if p.rawFile != nil {
				p.rawFile.Close()
			}
			return nil, err
		}
	}
	return p, nil
}

// AppendRaw writes one raw entry and flushes it to the file, so an
// interrupted session loses at most the line in flight.
func (p *Pair) AppendRaw(e sensor.RawEntry) error {
	if p.raw == nil {
		return nil
	}
	return p.writeRaw([]string{e.Timestamp.Format(rawTimeLayout), e.Text})
}

// AppendClean writes one reading in the fixed clean-CSV column order and
// flushes it.
func (p *Pair) AppendClean(r sensor.Reading) error {
	if p.clean == nil {
		return nil
	}
	return p.writeClean(r.CleanRecord())
}

// Close flushes and closes both files together. Safe to call once per
// session; it runs on every exit path, including cancellation.
func (p *Pair) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	var errs []error
	if p.raw != nil {
		p.raw.Flush()
		if err := p.raw.Error(); err != nil {
			errs = append(errs, err)
		}
		if err := p.rawFile.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.clean != nil {
		p.clean.Flush()
		if err := p.clean.Error(); err != nil {
			errs = append(errs, err)
		}
		if err := p.cleanFile.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Pair) writeRaw(record []string) error {
	if err := p.raw.Write(record); err != nil {
		return fmt.Errorf("raw log: %w", err)
	}
	p.raw.Flush()
	if err := p.raw.Error(); err != nil {
		return fmt.Errorf("raw log: %w", err)
	}
	return nil
}

func (p *Pair) writeClean(record []string) error {
	if err := p.clean.Write(record); err != nil {
		return fmt.Errorf("clean log: %w", err)
	}
	p.clean.Flush()
	if err := p.clean.Error(); err != nil {
		return fmt.Errorf("clean log: %w", err)
	}
	return nil
}

var _ output.Output = (*Pair)(nil)
