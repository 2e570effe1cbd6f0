package ksz8851

import (
	"fmt"

	"github.com/tve/ksz8851snl"
)

// readRegister performs a full register-read SPI transaction: write the
// command header, then clock in the 2 data bytes.
func readRegister(spi devices.SPIDevice, addr byte) (uint16, error) {
	cmd := commandHeader(opRegRead, addr)
	if err := spi.Tx(cmd[:], nil); err != nil {
		return 0, fmt.Errorf("ksz8851: register %#x read command: %w", addr, err)
	}
	var data [2]byte
	if err := spi.Tx(make([]byte, 2), data[:]); err != nil {
		return 0, fmt.Errorf("ksz8851: register %#x read data: %w", addr, err)
	}
	return uint16(data[0])<<8 | uint16(data[1]), nil
}

// writeRegister performs a full register-write SPI transaction.
func writeRegister(spi devices.SPIDevice, addr byte, value uint16) error {
	cmd := commandHeader(opRegWrite, addr)
	if err := spi.Tx(cmd[:], nil); err != nil {
		return fmt.Errorf("ksz8851: register %#x write command: %w", addr, err)
	}
	data := [2]byte{byte(value >> 8), byte(value)}
	if err := spi.Tx(data[:], make([]byte, 2)); err != nil {
		return fmt.Errorf("ksz8851: register %#x write data: %w", addr, err)
	}
	return nil
}
