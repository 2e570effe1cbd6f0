package devices

import (
	"fmt"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/spi"
)

// PeriphSPI adapts a periph.io/x/periph/conn/spi.Conn to SPIDevice.
type PeriphSPI struct {
	conn spi.Conn
}

// NewPeriphSPI wraps an already-configured periph SPI connection.
func NewPeriphSPI(conn spi.Conn) *PeriphSPI {
	return &PeriphSPI{conn: conn}
}

func (s *PeriphSPI) Tx(w, r []byte) error {
	if err := s.conn.Tx(w, r); err != nil {
		return fmt.Errorf("periph spi: %w", err)
	}
	return nil
}

// PeriphPin adapts a periph.io/x/periph/conn/gpio.PinIO to InterruptPin and
// ResetPin.
type PeriphPin struct {
	pin gpio.PinIO
}

// NewPeriphPin wraps a periph gpio pin.
func NewPeriphPin(pin gpio.PinIO) *PeriphPin {
	return &PeriphPin{pin: pin}
}

var periphEdges = [...]gpio.Edge{gpio.NoEdge, gpio.RisingEdge, gpio.FallingEdge, gpio.BothEdges}

func (p *PeriphPin) In(edge Edge) error {
	if err := p.pin.In(gpio.PullNoChange, periphEdges[edge]); err != nil {
		return fmt.Errorf("periph pin in: %w", err)
	}
	return nil
}

func (p *PeriphPin) Read() Level {
	return Level(p.pin.Read())
}

func (p *PeriphPin) WaitForEdge(timeout time.Duration) bool {
	return p.pin.WaitForEdge(timeout)
}

func (p *PeriphPin) Out(l Level) error {
	if err := p.pin.Out(gpio.Level(l)); err != nil {
		return fmt.Errorf("periph pin out: %w", err)
	}
	return nil
}
