// Package io controls the host GPIO side of a PCA9685 board through the
// kernel GPIO character device.
package io

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// OutputEnable drives the chip's active-low /OE pin. Holding /OE high blanks
// all 16 outputs at once without touching any register, which is the safe
// state to sit in while reprogramming the chip.
type OutputEnable struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewOutputEnable requests the GPIO line wired to /OE on the named chip
// (e.g. "gpiochip0"). The line starts high, outputs blanked.
func NewOutputEnable(chipName string, lineOffset int) (*OutputEnable, error) {
	c, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("failed to open GPIO chip: %w", err)
	}
	line, err := c.RequestLine(lineOffset, gpiocdev.AsOutput(1))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to request /OE line: %w", err)
	}
	return &OutputEnable{chip: c, line: line}, nil
}

// Enable pulls /OE low, handing the outputs back to the PWM counters.
func (o *OutputEnable) Enable() error {
	return o.line.SetValue(0)
}

// Disable pulls /OE high, blanking all outputs.
func (o *OutputEnable) Disable() error {
	return o.line.SetValue(1)
}

// Close blanks the outputs, releases the line as an input and closes the
// chip handle.
func (o *OutputEnable) Close() error {
	_ = o.line.SetValue(1)
	_ = o.line.Reconfigure(gpiocdev.AsInput)
	if err := o.line.Close(); err != nil {
		return err
	}
	return o.chip.Close()
}
