package ksz8851

import (
	"testing"

	"github.com/tve/ksz8851snl/ksz8851/registers"
)

// fakeSPI is a minimal register-aware SPI recorder/playback fake, in the
// spirit of periph.io/x/periph/conn/spi/spitest's Record/Playback: it
// decodes the 2-byte register command header well enough to route reads
// and writes to an in-memory register file, and special-cases the 1-byte
// bulk RX/TX commands used for frame transfer.
type fakeSPI struct {
	t    *testing.T
	regs map[byte]uint16

	pendingAddr  byte
	pendingRead  bool
	haveCommand  bool

	bulkTX    bool
	txBuf     []byte
	lastFrame []byte

	bulkRX    bool
	rxCallSeq int
	rxPayload []byte
}

func newFakeSPI(t *testing.T) *fakeSPI {
	return &fakeSPI{t: t, regs: map[byte]uint16{}}
}

// set seeds a register's value.
func (f *fakeSPI) set(addr byte, v uint16) { f.regs[addr] = v }

func (f *fakeSPI) Tx(w, r []byte) error {
	switch {
	case f.bulkTX:
		return f.txData(w)
	case f.bulkRX:
		return f.rxData(r)
	case !f.haveCommand && len(w) == 2:
		return f.command(w)
	case !f.haveCommand && len(w) == 1:
		return f.bulkCommand(w[0])
	case f.haveCommand && f.pendingRead:
		return f.readData(r)
	case f.haveCommand && !f.pendingRead:
		return f.writeData(w)
	default:
		f.t.Fatalf("fakeSPI: unexpected Tx(w=%x len(r)=%d)", w, len(r))
		return nil
	}
}

func (f *fakeSPI) command(w []byte) error {
	opc := opcode(w[0] >> 6)
	// Recover which register this is by matching against the known table;
	// tests only ever touch registers this driver knows about.
	for _, addr := range knownAddrs {
		hdr := commandHeader(opc, addr)
		if hdr == [2]byte{w[0], w[1]} {
			f.pendingAddr = addr
			f.pendingRead = opc == opRegRead
			f.haveCommand = true
			return nil
		}
	}
	f.t.Fatalf("fakeSPI: unrecognized register command %x", w)
	return nil
}

func (f *fakeSPI) bulkCommand(b byte) error {
	switch opcode(b >> 6) {
	case opTXWrite:
		f.bulkTX = true
		f.txBuf = nil
	case opRXRead:
		f.bulkRX = true
		f.rxCallSeq = 0
	default:
		f.t.Fatalf("fakeSPI: unexpected bulk opcode %#x", b)
	}
	return nil
}

func (f *fakeSPI) readData(r []byte) error {
	v := f.regs[f.pendingAddr]
	r[0], r[1] = byte(v>>8), byte(v)
	f.haveCommand = false
	return nil
}

func (f *fakeSPI) writeData(w []byte) error {
	v := uint16(w[0])<<8 | uint16(w[1])
	if f.pendingAddr == registers.TXQCRAddr {
		// the real chip clears ManualEnqueueTXQFrameEnable (bit 0, per this
		// register's layout) once the queue accepts the frame; simulate
		// that completing instantly so tx()'s poll loop observes it cleared
		// on the very next read.
		v &^= 1
	}
	f.regs[f.pendingAddr] = v
	f.haveCommand = false
	return nil
}

func (f *fakeSPI) txData(w []byte) error {
	f.txBuf = append(f.txBuf, w...)
	// byte_count is bytes [2:4] of the bulk write; once we've received at
	// least that many payload+header bytes we consider the frame complete.
	if len(f.txBuf) >= 4 {
		bc := int(f.txBuf[2]) | int(f.txBuf[3])<<8
		pad := (4 - bc%4) % 4
		if len(f.txBuf) >= 4+bc+pad {
			f.lastFrame = append([]byte(nil), f.txBuf[4:4+bc]...)
			f.bulkTX = false
		}
	}
	return nil
}

func (f *fakeSPI) rxData(r []byte) error {
	switch f.rxCallSeq {
	case 0: // 4 ignored bytes
	case 1: // status readback
		v := f.regs[registers.RXFHSRAddr]
		r[0], r[1] = byte(v>>8), byte(v)
	case 2: // byte count readback
		v := f.regs[registers.RXFHBCRAddr]
		r[0], r[1] = byte(v>>8), byte(v)
	case 3: // payload
		copy(r, f.rxPayload)
	default: // pad and/or trailing crc: zeros
	}
	f.rxCallSeq++
	if f.rxCallSeq > 3 && len(r) == 4 {
		// the trailing 4-byte CRC read always ends the bulk transaction
		f.bulkRX = false
	}
	return nil
}

var knownAddrs = []byte{
	registers.MARLAddr, registers.MARMAddr, registers.MARHAddr,
	registers.MBIRAddr, registers.GRRAddr,
	registers.TXCRAddr, registers.RXCR1Addr, registers.RXCR2Addr,
	registers.TXMIRAddr, registers.RXFHSRAddr, registers.RXFHBCRAddr,
	registers.TXQCRAddr, registers.RXQCRAddr,
	registers.TXFDPRAddr, registers.RXFDPRAddr,
	registers.RXDTTRAddr, registers.IERAddr, registers.ISRAddr,
	registers.RXFCTRAddr, registers.TXNTFSRAddr, registers.CIDERAddr,
	registers.P1CRAddr, registers.P1SRAddr,
}
