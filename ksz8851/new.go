package ksz8851

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/tve/ksz8851snl"
)

// New resets and initializes a KSZ8851SNL attached via spi, with intr as its
// active-low interrupt line and rst as its active-low reset line, then
// programs mac as the device's hardware address. It returns a Device for
// the upstream stack and a Runner whose Run method the caller must start in
// its own goroutine.
func New(spi devices.SPIDevice, intr devices.InterruptPin, rst devices.ResetPin, mac [6]byte, opts *Opts) (*Device, *Runner, error) {
	o := opts.orDefault()

	if err := rst.Out(devices.High); err != nil {
		return nil, nil, fmt.Errorf("ksz8851: deassert reset: %w", err)
	}
	time.Sleep(10 * time.Millisecond)

	if err := intr.In(devices.FallingEdge); err != nil {
		return nil, nil, fmt.Errorf("ksz8851: configure interrupt pin: %w", err)
	}

	c := &chip{spi: spi, opts: o}
	if err := c.init(); err != nil {
		return nil, nil, err
	}
	if err := c.setMAC(mac); err != nil {
		return nil, nil, err
	}

	device := newDevice(mac, o)
	runner := &Runner{
		chip:   c,
		device: device,
		intr:   intr,
		opts:   o,
		logger: log.New(io.Discard, "", 0),
	}
	return device, runner, nil
}

// SetLogger replaces the runner's logger, which otherwise discards output.
func (r *Runner) SetLogger(l *log.Logger) { r.logger = l }
