package ksz8851

import (
	"context"
	"sync"
)

// Device is the handle an upstream network stack uses to exchange frames
// with the driver. The event loop run by a Runner is the only other party
// touching the two internal queues; Device itself only needs a lock around
// the link-state slot, since that may be polled from any goroutine at any
// time.
type Device struct {
	mac [6]byte

	txQueue chan []byte // stack -> driver
	txAck   chan struct{}
	rxQueue chan []byte // driver -> stack, each slot borrowed then returned via RXDone
	rxAck   chan int

	mu        sync.Mutex
	linkState LinkState
}

func newDevice(mac [6]byte, opts Opts) *Device {
	return &Device{
		mac:     mac,
		txQueue: make(chan []byte, opts.TxQueueDepth),
		txAck:   make(chan struct{}),
		rxQueue: make(chan []byte, opts.RxQueueDepth),
		rxAck:   make(chan int),
	}
}

// HardwareAddress returns the MAC address programmed into the chip at
// construction time.
func (d *Device) HardwareAddress() [6]byte { return d.mac }

// LinkState returns the most recently observed link state.
func (d *Device) LinkState() LinkState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.linkState
}

func (d *Device) setLinkState(s LinkState) {
	d.mu.Lock()
	d.linkState = s
	d.mu.Unlock()
}

// TXBuf hands frame to the driver for transmission. It blocks until the
// runner accepts the frame (or ctx is done), returning false on
// cancellation. frame must not be reused by the caller until a later TXBuf
// call's happens-before relationship guarantees the driver is done with it
// -- in practice, callers should hand over an owned buffer each call.
func (d *Device) TXBuf(ctx context.Context, frame []byte) bool {
	select {
	case d.txQueue <- frame:
	case <-ctx.Done():
		return false
	}
	select {
	case <-d.txAck:
		return true
	case <-ctx.Done():
		return false
	}
}

// RXBuf blocks until the driver has delivered an inbound frame into buf,
// returning the number of bytes written. buf must be at least MTU bytes.
func (d *Device) RXBuf(ctx context.Context, buf []byte) (int, bool) {
	select {
	case d.rxQueue <- buf:
	case <-ctx.Done():
		return 0, false
	}
	select {
	case n := <-d.rxAck:
		return n, true
	case <-ctx.Done():
		return 0, false
	}
}
