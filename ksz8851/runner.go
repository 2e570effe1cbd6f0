package ksz8851

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tve/ksz8851snl"
	"github.com/tve/ksz8851snl/ksz8851/registers"
	"github.com/tve/ksz8851snl/rtsched"
)

// Runner drives the chip: Run must be called in its own goroutine for the
// Device returned alongside it to do anything.
type Runner struct {
	chip   *chip
	device *Device
	intr   devices.InterruptPin
	opts   Opts
	logger *log.Logger
}

// Run is the event loop: a single goroutine selecting over the interrupt
// pin, a gated TX request, a gated RX slot, and a periodic tick. It returns
// when ctx is canceled or a fatal error occurs.
func (r *Runner) Run(ctx context.Context) error {
	if r.opts.Realtime {
		if err := rtsched.Pin(); err != nil {
			r.logger.Printf("ksz8851: realtime scheduling unavailable: %v", err)
		}
	}

	intrChan := make(chan struct{})
	intrStop := make(chan struct{})
	go r.watchInterrupt(intrChan, intrStop)
	defer close(intrStop)

	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	txSpaceAvailable := true
	txDone := true
	var rxPending uint8
	var pendingFrame []byte // a frame pulled off txQueue that the chip had no room for; retried once txSpaceAvailable is re-armed, never re-queued and never dropped

	for {
		if pendingFrame != nil && txSpaceAvailable && txDone {
			ready, err := r.chip.readyTX(len(pendingFrame))
			if err != nil {
				return fmt.Errorf("ksz8851: tx: %w", err)
			}
			if ready {
				if err := r.chip.tx(pendingFrame); err != nil {
					return fmt.Errorf("ksz8851: tx: %w", err)
				}
				txDone = false
				pendingFrame = nil
				r.device.txAck <- struct{}{}
			} else {
				txSpaceAvailable = false
			}
			continue
		}

		var txArm <-chan []byte
		if txSpaceAvailable && txDone && pendingFrame == nil {
			txArm = r.device.txQueue
		}
		var rxArm <-chan []byte
		if rxPending > 0 {
			rxArm = r.device.rxQueue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-intrChan:
			if err := r.handleInterrupt(&rxPending, &txSpaceAvailable, &txDone); err != nil {
				return err
			}

		case frame := <-txArm:
			ready, err := r.chip.readyTX(len(frame))
			if err != nil {
				return fmt.Errorf("ksz8851: tx: %w", err)
			}
			if ready {
				if err := r.chip.tx(frame); err != nil {
					return fmt.Errorf("ksz8851: tx: %w", err)
				}
				txDone = false
				r.device.txAck <- struct{}{}
			} else {
				// The chip had no room; hold onto the frame and retry once
				// TransmitSpaceAvailable fires, instead of acknowledging a
				// frame that was never actually sent.
				txSpaceAvailable = false
				pendingFrame = frame
			}

		case buf := <-rxArm:
			n, err := r.chip.rx(buf)
			switch err.(type) {
			case nil:
				rxPending--
				r.device.rxAck <- n
			case *RxFrameInvalid:
				rxPending--
				r.device.rxAck <- 0
			case *RxNoFrameAvailable:
				rxPending = 0
				r.device.rxAck <- 0
			default:
				return fmt.Errorf("ksz8851: rx: %w", err)
			}
			if rxPending == 0 {
				if err := r.enableReceive(); err != nil {
					return err
				}
			}

		case <-tick.C:
			state, err := r.chip.linkState()
			if err != nil {
				return fmt.Errorf("ksz8851: link state poll: %w", err)
			}
			r.device.setLinkState(state)
		}
	}
}

// handleInterrupt reads and acknowledges ISR, updating driver state. The
// frame counter is only re-read from the chip after the receive bit has
// been acknowledged, since the chip doesn't update it until then.
func (r *Runner) handleInterrupt(rxPending *uint8, txSpaceAvailable *bool, txDone *bool) error {
	v, err := r.chip.readReg(registers.ISRAddr)
	if err != nil {
		return fmt.Errorf("ksz8851: isr read: %w", err)
	}
	isr := registers.ISR(v).Status()

	var clear registers.ISRClearMask

	if isr.LinkChange {
		state, err := r.chip.linkState()
		if err != nil {
			return fmt.Errorf("ksz8851: link state: %w", err)
		}
		r.device.setLinkState(state)
		clear = clear.WithLinkChange(true)
	}
	if isr.Transmit {
		clear = clear.WithTransmit(true)
		*txDone = true
	}
	if isr.SPIBusError {
		r.logger.Printf("ksz8851: spi bus error reported by chip")
		return fmt.Errorf("ksz8851: fatal spi bus error")
	}
	if isr.ReceiveOverrun {
		return fmt.Errorf("ksz8851: fatal receive overrun")
	}
	if isr.Receive {
		if err := r.disableReceive(); err != nil {
			return err
		}
		clear = clear.WithReceive(true)
	}
	if isr.TransmitSpaceAvailable {
		clear = clear.WithTransmitSpaceAvailable(true)
		*txSpaceAvailable = true
	}

	if err := r.chip.writeReg(registers.ISRAddr, uint16(clear.ISR())); err != nil {
		return fmt.Errorf("ksz8851: isr clear: %w", err)
	}

	if isr.Receive {
		fc, err := r.chip.readReg(registers.RXFCTRAddr)
		if err != nil {
			return fmt.Errorf("ksz8851: rx frame counter: %w", err)
		}
		count := registers.RXFCTR(fc).RxFrameCount()
		if *rxPending != 0 {
			r.logger.Printf("ksz8851: receive interrupt while %d frames already pending", *rxPending)
		} else {
			*rxPending = count
		}
		if *rxPending == 0 {
			if err := r.enableReceive(); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *Runner) disableReceive() error {
	v, err := r.chip.readReg(registers.IERAddr)
	if err != nil {
		return err
	}
	return r.chip.writeReg(registers.IERAddr, uint16(registers.IER(v).WithReceiveEnable(false)))
}

func (r *Runner) enableReceive() error {
	v, err := r.chip.readReg(registers.IERAddr)
	if err != nil {
		return err
	}
	return r.chip.writeReg(registers.IERAddr, uint16(registers.IER(v).WithReceiveEnable(true)))
}

// watchInterrupt translates level-triggered WaitForEdge polling into a
// channel the select loop can wait on, the same adapter shape used to turn
// a blocking gpio wait into a channel event.
func (r *Runner) watchInterrupt(out chan<- struct{}, stop <-chan struct{}) {
	for {
		if r.intr.WaitForEdge(time.Second) {
			select {
			case out <- struct{}{}:
			case <-stop:
				return
			}
		}
		select {
		case <-stop:
			return
		default:
		}
	}
}
