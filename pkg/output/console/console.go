package console

import (
	"fmt"

	"github.com/hta-lab/fsr-capture/pkg/output"
	"github.com/hta-lab/fsr-capture/pkg/sensor"
)

// ConsoleOutput echoes raw device traffic to stdout as it arrives, the
// only visibility the operator gets when file logging is disabled.
type ConsoleOutput struct{}

func NewConsole() output.Output { return &ConsoleOutput{} }

func (c *ConsoleOutput) AppendRaw(e sensor.RawEntry) error {
	fmt.Printf("[%s] %s\n", e.Timestamp.Format("15:04:05"), e.Text)
	return nil
}

func (c *ConsoleOutput) AppendClean(r sensor.Reading) error { return nil }

func (c *ConsoleOutput) Close() error { return nil }
