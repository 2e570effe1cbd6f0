package ksz8851

import (
	"fmt"
	"time"

	"github.com/tve/ksz8851snl"
	"github.com/tve/ksz8851snl/ksz8851/registers"
)

// txCtrlWord is the 2-byte preamble written ahead of every TX frame's
// payload: a completion-interrupt request flag and a 6-bit frame id the
// chip echoes back on the transmit-complete interrupt.
type txCtrlWord uint16

func newTxCtrlWord(interruptOnCompletion bool, frameID byte) txCtrlWord {
	var v uint16
	if interruptOnCompletion {
		v |= 1 << 15
	}
	v |= uint16(frameID & 0x3f)
	return txCtrlWord(v)
}

func (c txCtrlWord) bytes() [2]byte { return [2]byte{byte(c >> 8), byte(c)} }

// chip owns the SPI device and drives the KSZ8851SNL's register and DMA
// protocol. It is not safe for concurrent use: the event loop (runner.go)
// is its sole caller.
type chip struct {
	spi devices.SPIDevice

	nextFrameID   byte
	lastUnackedID byte // carried from the original design; never consulted (see DESIGN.md)

	opts Opts
}

func (c *chip) readReg(addr byte) (uint16, error) {
	v, err := readRegister(c.spi, addr)
	if err != nil {
		return 0, &SPIError{Err: err}
	}
	return v, nil
}

func (c *chip) writeReg(addr byte, v uint16) error {
	if err := writeRegister(c.spi, addr, v); err != nil {
		return &SPIError{Err: err}
	}
	return nil
}

// init brings the chip up: verifies its identity, checks its self test,
// and programs the registers needed for normal TX/RX operation.
func (c *chip) init() error {
	if err := c.writeReg(registers.GRRAddr, uint16(registers.GRR(0).WithGlobalSoftReset(true))); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	if err := c.writeReg(registers.GRRAddr, 0); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)

	cider, err := c.readReg(registers.CIDERAddr)
	if err != nil {
		return err
	}
	id := registers.CIDER(cider)
	if id.ChipID() != chipIDChip || id.FamilyID() != chipIDFamily {
		return &BadChipID{
			ExpectedFamily: chipIDFamily,
			ActualFamily:   id.FamilyID(),
			ExpectedChip:   chipIDChip,
			ActualChip:     id.ChipID(),
		}
	}

	mbir, err := c.readReg(registers.MBIRAddr)
	if err != nil {
		return err
	}
	if m := registers.MBIR(mbir); m.RxMemoryBISTFail() || m.TxMemoryBISTFail() {
		return &FailedSelfTest{RxBISTFailed: m.RxMemoryBISTFail(), TxBISTFailed: m.TxMemoryBISTFail()}
	}

	txfdpr, err := c.readReg(registers.TXFDPRAddr)
	if err != nil {
		return err
	}
	if err := c.writeReg(registers.TXFDPRAddr, uint16(registers.TXFDPR(txfdpr).WithAutoIncrement(true))); err != nil {
		return err
	}

	txcr, err := c.readReg(registers.TXCRAddr)
	if err != nil {
		return err
	}
	txcrV := registers.TXCR(txcr).
		WithChecksumGenICMP(false).
		WithChecksumGenTCP(false).
		WithChecksumGenIP(false).
		WithFlowControlEnable(false).
		WithPaddingEnable(true).
		WithCRCEnable(true)
	if err := c.writeReg(registers.TXCRAddr, uint16(txcrV)); err != nil {
		return err
	}

	thresholdUs := uint16(c.opts.RxDurationThreshold.Microseconds())
	if err := c.writeReg(registers.RXDTTRAddr, uint16(registers.RXDTTR(0).WithThreshold(thresholdUs))); err != nil {
		return err
	}

	rxqcr, err := c.readReg(registers.RXQCRAddr)
	if err != nil {
		return err
	}
	rxqcrV := registers.RXQCR(rxqcr).
		WithRxDurationTimerThresholdEnable(true).
		WithRxIPHeaderTwoByteOffsetEnable(false).
		WithAutoDequeueRXQFrameEnable(true)
	if err := c.writeReg(registers.RXQCRAddr, uint16(rxqcrV)); err != nil {
		return err
	}

	rxfdpr, err := c.readReg(registers.RXFDPRAddr)
	if err != nil {
		return err
	}
	if err := c.writeReg(registers.RXFDPRAddr, uint16(registers.RXFDPR(rxfdpr).WithAutoIncrement(true))); err != nil {
		return err
	}

	rxcr1, err := c.readReg(registers.RXCR1Addr)
	if err != nil {
		return err
	}
	rxcr1V := registers.RXCR1(rxcr1).
		WithReceiveBroadcastEnable(c.opts.ReceiveBroadcast).
		WithReceiveMulticastEnable(c.opts.ReceiveMulticast).
		WithReceiveUnicastEnable(true)
	if err := c.writeReg(registers.RXCR1Addr, uint16(rxcr1V)); err != nil {
		return err
	}

	rxcr2, err := c.readReg(registers.RXCR2Addr)
	if err != nil {
		return err
	}
	rxcr2V := registers.RXCR2(rxcr2).
		WithIP4IP6UDPFragmentFramePass(true).
		WithReceiveIP4IP6UDPFrameChecksumEqualZero(true).
		WithUDPLiteFrameEnable(true).
		WithReceiveICMPFrameChecksumCheckEnable(true).
		WithSPIReceiveDataBurstLength(registers.BurstSingleFrame)
	if err := c.writeReg(registers.RXCR2Addr, uint16(rxcr2V)); err != nil {
		return err
	}

	ier, err := c.readReg(registers.IERAddr)
	if err != nil {
		return err
	}
	ierV := registers.IER(ier).
		WithLinkChangeEnable(true).
		WithTransmitEnable(true).
		WithReceiveEnable(true).
		WithTransmitSpaceAvailableEnable(true).
		WithReceiveOverrunEnable(true).
		WithSPIBusErrorEnable(true)
	if err := c.writeReg(registers.IERAddr, uint16(ierV)); err != nil {
		return err
	}

	p1cr, err := c.readReg(registers.P1CRAddr)
	if err != nil {
		return err
	}
	if err := c.writeReg(registers.P1CRAddr, uint16(registers.P1CR(p1cr).WithLEDOff(c.opts.LEDOff))); err != nil {
		return err
	}

	txcr, err = c.readReg(registers.TXCRAddr)
	if err != nil {
		return err
	}
	if err := c.writeReg(registers.TXCRAddr, uint16(registers.TXCR(txcr).WithTransmitEnable(true))); err != nil {
		return err
	}

	rxcr1, err = c.readReg(registers.RXCR1Addr)
	if err != nil {
		return err
	}
	return c.writeReg(registers.RXCR1Addr, uint16(registers.RXCR1(rxcr1).WithReceiveEnable(true)))
}

func (c *chip) setMAC(mac [6]byte) error {
	if err := c.writeReg(registers.MARHAddr, uint16(registers.NewMARH([2]byte{mac[0], mac[1]}))); err != nil {
		return err
	}
	if err := c.writeReg(registers.MARMAddr, uint16(registers.NewMARM([2]byte{mac[2], mac[3]}))); err != nil {
		return err
	}
	return c.writeReg(registers.MARLAddr, uint16(registers.NewMARL([2]byte{mac[4], mac[5]})))
}

func (c *chip) mac() ([6]byte, error) {
	var mac [6]byte
	h, err := c.readReg(registers.MARHAddr)
	if err != nil {
		return mac, err
	}
	m, err := c.readReg(registers.MARMAddr)
	if err != nil {
		return mac, err
	}
	l, err := c.readReg(registers.MARLAddr)
	if err != nil {
		return mac, err
	}
	hb, mb, lb := registers.MARH(h).Bytes(), registers.MARM(m).Bytes(), registers.MARL(l).Bytes()
	copy(mac[0:2], hb[:])
	copy(mac[2:4], mb[:])
	copy(mac[4:6], lb[:])
	return mac, nil
}

// LinkState reports whether the PHY currently sees an active link.
type LinkState int

const (
	LinkDown LinkState = iota
	LinkUp
)

func (s LinkState) String() string {
	if s == LinkUp {
		return "up"
	}
	return "down"
}

func (c *chip) linkState() (LinkState, error) {
	v, err := c.readReg(registers.P1SRAddr)
	if err != nil {
		return LinkDown, err
	}
	if registers.P1SR(v).LinkGood() {
		return LinkUp, nil
	}
	return LinkDown, nil
}

// readyTX checks whether the chip has room to accept a frame of txLen
// bytes. If not, it arms the chip's memory-available monitor so the
// TransmitSpaceAvailable interrupt fires once room exists.
func (c *chip) readyTX(txLen int) (bool, error) {
	if txLen > maxTxSize {
		return false, &TxPacketTooBig{Size: txLen, Max: maxTxSize}
	}
	v, err := c.readReg(registers.TXMIRAddr)
	if err != nil {
		return false, err
	}
	available := registers.TXMIR(v).TXMAMemoryAvailable()
	if uint16(txLen+4) > available {
		if err := c.writeReg(registers.TXNTFSRAddr, uint16(registers.NewTXNTFSR(uint16(txLen+4)))); err != nil {
			return false, err
		}
		tq, err := c.readReg(registers.TXQCRAddr)
		if err != nil {
			return false, err
		}
		if err := c.writeReg(registers.TXQCRAddr, uint16(registers.TXQCR(tq).WithTXQMemoryAvailableMonitor(true))); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// tx transmits buf immediately. The caller must have observed a true result
// from readyTX for a frame of this size first.
func (c *chip) tx(buf []byte) error {
	ier, err := c.readReg(registers.IERAddr)
	if err != nil {
		return err
	}
	if err := c.writeReg(registers.IERAddr, 0); err != nil {
		return err
	}

	rxqcr, err := c.readReg(registers.RXQCRAddr)
	if err != nil {
		return err
	}
	if err := c.writeReg(registers.RXQCRAddr, uint16(registers.RXQCR(rxqcr).WithStartDMAAccess(true))); err != nil {
		return err
	}

	ctrl := newTxCtrlWord(true, c.nextFrameID)
	ctrlBytes := ctrl.bytes()
	byteCount := [2]byte{byte(len(buf)), byte(len(buf) >> 8)} // little-endian, per the chip's DMA framing
	pad := make([]byte, (4-len(buf)%4)%4)

	if err := c.spi.Tx([]byte{bulkCommand(opTXWrite)}, nil); err != nil {
		return &SPIError{Err: err}
	}
	if err := c.spi.Tx(ctrlBytes[:], nil); err != nil {
		return &SPIError{Err: err}
	}
	if err := c.spi.Tx(byteCount[:], nil); err != nil {
		return &SPIError{Err: err}
	}
	if err := c.spi.Tx(buf, nil); err != nil {
		return &SPIError{Err: err}
	}
	if len(pad) > 0 {
		if err := c.spi.Tx(pad, nil); err != nil {
			return &SPIError{Err: err}
		}
	}

	if c.nextFrameID == 0x1f {
		c.nextFrameID = 0
	} else {
		c.nextFrameID++
	}

	rxqcr, err = c.readReg(registers.RXQCRAddr)
	if err != nil {
		return err
	}
	if err := c.writeReg(registers.RXQCRAddr, uint16(registers.RXQCR(rxqcr).WithStartDMAAccess(false))); err != nil {
		return err
	}

	txqcr, err := c.readReg(registers.TXQCRAddr)
	if err != nil {
		return err
	}
	if err := c.writeReg(registers.TXQCRAddr, uint16(registers.TXQCR(txqcr).WithManualEnqueueTXQFrameEnable(true))); err != nil {
		return err
	}
	for {
		v, err := c.readReg(registers.TXQCRAddr)
		if err != nil {
			return err
		}
		if !registers.TXQCR(v).ManualEnqueueTXQFrameEnable() {
			break
		}
	}

	return c.writeReg(registers.IERAddr, ier)
}

// rx drains a single frame from the chip's receive queue into buf, which
// must be at least MTU bytes. It returns the payload length. The caller
// must already know (via the rxPending count) that a frame is available.
func (c *chip) rx(buf []byte) (int, error) {
	ier, err := c.readReg(registers.IERAddr)
	if err != nil {
		return 0, err
	}
	if err := c.writeReg(registers.IERAddr, 0); err != nil {
		return 0, err
	}

	statusV, err := c.readReg(registers.RXFHSRAddr)
	if err != nil {
		return 0, err
	}
	status := registers.RXFHSR(statusV).Status()

	bcV, err := c.readReg(registers.RXFHBCRAddr)
	if err != nil {
		return 0, err
	}
	byteCount := registers.RXFHBCR(bcV).ReceiveByteCount()

	if !status.FrameValid {
		_ = c.writeReg(registers.IERAddr, ier)
		return 0, &RxNoFrameAvailable{}
	}

	if status.Invalid() {
		rxqcr, err := c.readReg(registers.RXQCRAddr)
		if err != nil {
			return 0, err
		}
		if err := c.writeReg(registers.RXQCRAddr, uint16(registers.RXQCR(rxqcr).WithReleaseRXErrorFrame(true))); err != nil {
			return 0, err
		}
		_ = c.writeReg(registers.IERAddr, ier)
		return 0, &RxFrameInvalid{}
	}

	if int(byteCount)-4 > len(buf) {
		panic(fmt.Sprintf("ksz8851: rx frame %d bytes exceeds buffer %d bytes", byteCount-4, len(buf)))
	}

	rxfdpr, err := c.readReg(registers.RXFDPRAddr)
	if err != nil {
		return 0, err
	}
	if err := c.writeReg(registers.RXFDPRAddr, uint16(registers.RXFDPR(rxfdpr).WithFramePointer(0))); err != nil {
		return 0, err
	}

	rxqcr, err := c.readReg(registers.RXQCRAddr)
	if err != nil {
		return 0, err
	}
	if err := c.writeReg(registers.RXQCRAddr, uint16(registers.RXQCR(rxqcr).WithStartDMAAccess(true))); err != nil {
		return 0, err
	}

	pad := make([]byte, (4-byteCount%4)%4)

	if err := c.spi.Tx([]byte{bulkCommand(opRXRead)}, nil); err != nil {
		return 0, &SPIError{Err: err}
	}
	discard4 := make([]byte, 4)
	if err := c.spi.Tx(make([]byte, 4), discard4); err != nil {
		return 0, &SPIError{Err: err}
	}
	var statusReadback [2]byte
	if err := c.spi.Tx(make([]byte, 2), statusReadback[:]); err != nil {
		return 0, &SPIError{Err: err}
	}
	var bcReadback [2]byte
	if err := c.spi.Tx(make([]byte, 2), bcReadback[:]); err != nil {
		return 0, &SPIError{Err: err}
	}
	payloadLen := int(byteCount) - 4
	if err := c.spi.Tx(make([]byte, payloadLen), buf[:payloadLen]); err != nil {
		return 0, &SPIError{Err: err}
	}
	if len(pad) > 0 {
		if err := c.spi.Tx(make([]byte, len(pad)), pad); err != nil {
			return 0, &SPIError{Err: err}
		}
	}
	crc := make([]byte, 4)
	if err := c.spi.Tx(make([]byte, 4), crc); err != nil {
		return 0, &SPIError{Err: err}
	}

	gotStatus := registers.RXFHSR(uint16(statusReadback[0])<<8 | uint16(statusReadback[1])).Status()
	gotByteCount := registers.RXFHBCR(uint16(bcReadback[0])<<8 | uint16(bcReadback[1])).ReceiveByteCount()
	if gotStatus != status || gotByteCount != byteCount {
		panic("ksz8851: rx readback mismatch, chip and driver disagree on frame header")
	}

	rxqcr, err = c.readReg(registers.RXQCRAddr)
	if err != nil {
		return 0, err
	}
	if err := c.writeReg(registers.RXQCRAddr, uint16(registers.RXQCR(rxqcr).WithStartDMAAccess(false))); err != nil {
		return 0, err
	}

	if err := c.writeReg(registers.IERAddr, ier); err != nil {
		return 0, err
	}

	return payloadLen, nil
}
