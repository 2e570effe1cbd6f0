package devices

import "time"

// SPIDevice is a point to point SPI connection to a single chip select.
// Callers perform a transaction as one or more back to back Tx calls writing
// a command header and then reading or writing the data phase, mirroring
// how the underlying periph.io and embd transports expose a bus.
type SPIDevice interface {
	Tx(w, r []byte) error
}

// InterruptPin is a gpio input used as a level-triggered interrupt line from
// an attached chip. WaitForEdge blocks until the edge configured via In
// occurs or timeout elapses, returning false on timeout.
type InterruptPin interface {
	In(edge Edge) error
	Read() Level
	WaitForEdge(timeout time.Duration) bool
}

// ResetPin is a gpio output used to drive a chip's reset line.
type ResetPin interface {
	Out(l Level) error
}

// Level is the electrical level of a gpio pin.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// Edge selects which pin transitions WaitForEdge watches for.
type Edge int

const (
	NoEdge Edge = iota
	RisingEdge
	FallingEdge
	BothEdges
)
