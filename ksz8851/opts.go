package ksz8851

import "time"

// Opts configures a Device. A nil Opts passed to New is equivalent to
// DefaultOpts.
type Opts struct {
	// ReceiveBroadcast and ReceiveMulticast control whether Init enables
	// reception of broadcast/multicast frames in addition to frames
	// addressed to this device's own MAC. Both default to false: the most
	// conservative policy, left to the caller to opt into.
	ReceiveBroadcast bool
	ReceiveMulticast bool

	// RxDurationThreshold bounds how long the chip coalesces before raising
	// a receive interrupt for a buffered frame.
	RxDurationThreshold time.Duration

	// TxQueueDepth and RxQueueDepth size the channel adapter's two queues.
	TxQueueDepth int
	RxQueueDepth int

	// LEDOff disables the integrated PHY status LEDs, matching boards that
	// wire those pins to something else.
	LEDOff bool

	// Realtime, if true, elevates the event loop goroutine to round-robin
	// realtime scheduling to bound interrupt-to-SPI-transaction latency.
	// Linux only: rtsched has no variant for other systems, so this package
	// builds only on Linux.
	Realtime bool
}

// DefaultOpts is used by New when Opts is nil.
var DefaultOpts = Opts{
	ReceiveBroadcast:     false,
	ReceiveMulticast:     false,
	RxDurationThreshold:  time.Millisecond,
	TxQueueDepth:         4,
	RxQueueDepth:         4,
	LEDOff:               true,
	Realtime:             false,
}

func (o *Opts) orDefault() Opts {
	if o == nil {
		return DefaultOpts
	}
	return *o
}
