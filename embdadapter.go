package devices

import (
	"fmt"
	"time"

	"github.com/kidoman/embd"
)

// EmbdSPI adapts a github.com/kidoman/embd SPI bus to SPIDevice.
type EmbdSPI struct {
	bus embd.SPIBus
}

// NewEmbdSPI opens channel chan on speed hz (8 bits per word, SPI mode 0) via embd.
func NewEmbdSPI(channel byte, hz int) *EmbdSPI {
	return &EmbdSPI{bus: embd.NewSPIBus(embd.SPIMode0, channel, hz, 8, 0)}
}

func (s *EmbdSPI) Tx(w, r []byte) error {
	buf := make([]byte, len(w))
	copy(buf, w)
	if err := s.bus.TransferAndReceiveData(buf); err != nil {
		return fmt.Errorf("embd spi: %w", err)
	}
	copy(r, buf)
	return nil
}

// EmbdPin adapts a github.com/kidoman/embd digital pin to InterruptPin and
// ResetPin. WaitForEdge is implemented the way shim.go did it: embd delivers
// edges via an asynchronous callback (Watch), which this type buffers into a
// channel for WaitForEdge to block on.
type EmbdPin struct {
	pin  embd.DigitalPin
	edge chan struct{}
}

// NewEmbdPin opens the named gpio line (e.g. "GPIO17") via embd.
func NewEmbdPin(name string) (*EmbdPin, error) {
	p, err := embd.NewDigitalPin(name)
	if err != nil {
		return nil, fmt.Errorf("embd pin %s: %w", name, err)
	}
	return &EmbdPin{pin: p, edge: make(chan struct{}, 1)}, nil
}

var embdEdges = [...]embd.Edge{embd.EdgeNone, embd.EdgeRising, embd.EdgeFalling, embd.EdgeBoth}

func (g *EmbdPin) In(edge Edge) error {
	if err := g.pin.SetDirection(embd.In); err != nil {
		return fmt.Errorf("embd pin direction: %w", err)
	}
	if edge == NoEdge {
		return nil
	}
	return g.pin.Watch(embdEdges[edge], g.edgeCB)
}

func (g *EmbdPin) Read() Level {
	v, _ := g.pin.Read()
	return v != 0
}

func (g *EmbdPin) WaitForEdge(timeout time.Duration) bool {
	select {
	case <-g.edge:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (g *EmbdPin) Out(l Level) error {
	if err := g.pin.SetDirection(embd.Out); err != nil {
		return fmt.Errorf("embd pin direction: %w", err)
	}
	v := 0
	if l {
		v = 1
	}
	return g.pin.Write(v)
}

func (g *EmbdPin) edgeCB(embd.DigitalPin) {
	select {
	case g.edge <- struct{}{}:
	default:
	}
}
