package ksz8851

import (
	"errors"
	"testing"

	"github.com/tve/ksz8851snl/ksz8851/registers"
)

// boolFromReg reads bit `top` (counted from bit 15 down) of a raw register
// value, mirroring registers.boolBit without reaching into that package's
// unexported helpers.
func boolFromReg(v uint16, top uint) bool {
	shift := 16 - top - 1
	return (v>>shift)&1 != 0
}

// seedHealthyChip populates the registers init() reads on a freshly reset,
// working chip: correct chip id, clean BIST, everything else zeroed so
// init's read-modify-write sequence starts from a known state.
func seedHealthyChip(f *fakeSPI) {
	f.set(registers.CIDERAddr, uint16(chipIDFamily)<<8|uint16(chipIDChip)<<4)
}

func newTestChip(f *fakeSPI) *chip {
	return &chip{spi: f, opts: DefaultOpts}
}

func TestChipInitSuccess(t *testing.T) {
	f := newFakeSPI(t)
	seedHealthyChip(f)
	c := newTestChip(f)
	if err := c.init(); err != nil {
		t.Fatalf("init() = %v, want nil", err)
	}
	if !boolFromReg(f.regs[registers.TXCRAddr], 15) {
		t.Fatal("expected TransmitEnable bit set on TXCR after init")
	}
	if !boolFromReg(f.regs[registers.RXCR1Addr], 15) {
		t.Fatal("expected ReceiveEnable bit set on RXCR1 after init")
	}
	if !boolFromReg(f.regs[registers.TXFDPRAddr], 1) {
		t.Fatal("expected AutoIncrement bit set on TXFDPR after init")
	}
	if !boolFromReg(f.regs[registers.IERAddr], 2) {
		t.Fatal("expected ReceiveEnable bit set on IER after init")
	}
}

func TestChipInitBadChipID(t *testing.T) {
	f := newFakeSPI(t)
	f.set(registers.CIDERAddr, uint16(0x55)<<8|uint16(0x3)<<4) // wrong family/chip
	c := newTestChip(f)
	err := c.init()
	var badID *BadChipID
	if !errors.As(err, &badID) {
		t.Fatalf("init() = %v, want *BadChipID", err)
	}
}

func TestChipInitFailedSelfTest(t *testing.T) {
	f := newFakeSPI(t)
	seedHealthyChip(f)
	f.set(registers.MBIRAddr, 1<<3) // rx bist fail, per MBIR's bit layout
	c := newTestChip(f)
	err := c.init()
	var bist *FailedSelfTest
	if !errors.As(err, &bist) {
		t.Fatalf("init() = %v, want *FailedSelfTest", err)
	}
	if !bist.RxBISTFailed || bist.TxBISTFailed {
		t.Fatalf("FailedSelfTest = %+v, want only RxBISTFailed set", bist)
	}
}

func TestChipReadyTXSpaceAvailable(t *testing.T) {
	f := newFakeSPI(t)
	f.set(registers.TXMIRAddr, 2000) // plenty of room
	c := newTestChip(f)
	ok, err := c.readyTX(64)
	if err != nil {
		t.Fatalf("readyTX() err = %v", err)
	}
	if !ok {
		t.Fatal("readyTX() = false, want true with ample chip memory")
	}
}

func TestChipReadyTXInsufficientSpace(t *testing.T) {
	f := newFakeSPI(t)
	f.set(registers.TXMIRAddr, 100) // not enough for a 1400 byte frame
	c := newTestChip(f)
	ok, err := c.readyTX(1400)
	if err != nil {
		t.Fatalf("readyTX() err = %v", err)
	}
	if ok {
		t.Fatal("readyTX() = true, want false when chip reports insufficient memory")
	}
	if nt := f.regs[registers.TXNTFSRAddr]; nt != 1404 {
		t.Fatalf("TXNTFSR = %d, want 1404", nt)
	}
	if !boolFromReg(f.regs[registers.TXQCRAddr], 14) {
		t.Fatal("expected TXQMemoryAvailableMonitor bit to be armed")
	}
}

func TestChipReadyTXPacketTooBig(t *testing.T) {
	f := newFakeSPI(t)
	c := newTestChip(f)
	_, err := c.readyTX(maxTxSize + 1)
	var tooBig *TxPacketTooBig
	if !errors.As(err, &tooBig) {
		t.Fatalf("readyTX() err = %v, want *TxPacketTooBig", err)
	}
}

func TestChipTX(t *testing.T) {
	f := newFakeSPI(t)
	c := newTestChip(f)
	c.nextFrameID = 5

	frame := make([]byte, 64)
	for i := range frame {
		frame[i] = byte(i)
	}

	if err := c.tx(frame); err != nil {
		t.Fatalf("tx() = %v", err)
	}
	if len(f.lastFrame) != len(frame) {
		t.Fatalf("captured frame length = %d, want %d", len(f.lastFrame), len(frame))
	}
	for i := range frame {
		if f.lastFrame[i] != frame[i] {
			t.Fatalf("captured frame differs at byte %d: got %#x want %#x", i, f.lastFrame[i], frame[i])
		}
	}
	if c.nextFrameID != 6 {
		t.Fatalf("nextFrameID = %d, want 6", c.nextFrameID)
	}
}

func TestChipTXFrameIDWraps(t *testing.T) {
	f := newFakeSPI(t)
	c := newTestChip(f)
	c.nextFrameID = 0x1f

	if err := c.tx([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("tx() = %v", err)
	}
	if c.nextFrameID != 0 {
		t.Fatalf("nextFrameID = %d, want wraparound to 0", c.nextFrameID)
	}
}

func TestChipRXValidFrame(t *testing.T) {
	f := newFakeSPI(t)
	c := newTestChip(f)

	payload := make([]byte, 60)
	for i := range payload {
		payload[i] = byte(i + 1)
	}
	f.rxPayload = payload
	f.set(registers.RXFHSRAddr, 1<<15) // frame_valid only
	f.set(registers.RXFHBCRAddr, uint16(len(payload)+4))

	buf := make([]byte, MTU)
	n, err := c.rx(buf)
	if err != nil {
		t.Fatalf("rx() = %v", err)
	}
	if n != len(payload) {
		t.Fatalf("rx() n = %d, want %d", n, len(payload))
	}
	for i := range payload {
		if buf[i] != payload[i] {
			t.Fatalf("rx() payload differs at byte %d: got %#x want %#x", i, buf[i], payload[i])
		}
	}
}

func TestChipRXCRCErrorDiscarded(t *testing.T) {
	f := newFakeSPI(t)
	c := newTestChip(f)

	f.set(registers.RXFHSRAddr, 1<<15|1) // frame_valid + crc_error
	f.set(registers.RXFHBCRAddr, 64)

	buf := make([]byte, MTU)
	n, err := c.rx(buf)
	var invalid *RxFrameInvalid
	if !errors.As(err, &invalid) {
		t.Fatalf("rx() err = %v, want *RxFrameInvalid", err)
	}
	if n != 0 {
		t.Fatalf("rx() n = %d, want 0 on a discarded frame", n)
	}
	if !boolFromReg(f.regs[registers.RXQCRAddr], 0) {
		t.Fatal("expected ReleaseRXErrorFrame bit to be set on an invalid frame")
	}
}

func TestChipRXNoFrameAvailable(t *testing.T) {
	f := newFakeSPI(t)
	c := newTestChip(f)
	f.set(registers.RXFHSRAddr, 0) // frame_valid clear

	buf := make([]byte, MTU)
	_, err := c.rx(buf)
	var none *RxNoFrameAvailable
	if !errors.As(err, &none) {
		t.Fatalf("rx() err = %v, want *RxNoFrameAvailable", err)
	}
}
