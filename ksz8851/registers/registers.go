// Package registers describes the KSZ8851SNL's register map: each register
// is a 16-bit word at a fixed, 2-byte-aligned address (the SPI codec reaches
// it through the enclosing 4-byte-aligned word), with typed
// accessors for the bit layout documented by the datasheet. Fields are
// numbered MSB-first within the 16-bit word, matching how the datasheet
// diagrams them.
//
// Only the accessors the driver actually needs are exposed; the remaining
// reserved/unused bits are preserved across a read-modify-write but have no
// named field, the same way the original firmware left them nameless.
package registers

// bits extracts an n-bit field whose most significant bit sits `top` bits
// below bit 15 of a 16-bit register value.
func bits(v uint16, top, n uint) uint16 {
	shift := 16 - top - n
	return (v >> shift) & ((1 << n) - 1)
}

// withBits returns v with the n-bit field at `top` replaced by val.
func withBits(v uint16, top, n uint, val uint16) uint16 {
	shift := 16 - top - n
	mask := uint16((1<<n)-1) << shift
	return (v &^ mask) | ((val << shift) & mask)
}

func boolBit(v uint16, top uint) bool  { return bits(v, top, 1) != 0 }
func withBool(v uint16, top uint, b bool) uint16 {
	var x uint16
	if b {
		x = 1
	}
	return withBits(v, top, 1, x)
}

// ---- MARL / MARM / MARH: MAC address halves ----

const (
	MARLAddr = 0x10
	MARMAddr = 0x12
	MARHAddr = 0x14
)

type MARL uint16
type MARM uint16
type MARH uint16

func (r MARL) Bytes() [2]byte { return [2]byte{byte(r >> 8), byte(r)} }
func (r MARM) Bytes() [2]byte { return [2]byte{byte(r >> 8), byte(r)} }
func (r MARH) Bytes() [2]byte { return [2]byte{byte(r >> 8), byte(r)} }

func NewMARL(b [2]byte) MARL { return MARL(uint16(b[0])<<8 | uint16(b[1])) }
func NewMARM(b [2]byte) MARM { return MARM(uint16(b[0])<<8 | uint16(b[1])) }
func NewMARH(b [2]byte) MARH { return MARH(uint16(b[0])<<8 | uint16(b[1])) }

// ---- MBIR: memory BIST info ----

const MBIRAddr = 0x24

type MBIR uint16

func (r MBIR) TxMemoryBISTFail() bool { return boolBit(uint16(r), 4) }
func (r MBIR) RxMemoryBISTFail() bool { return boolBit(uint16(r), 12) }

// ---- GRR: global reset ----

const GRRAddr = 0x26

type GRR uint16

func (r GRR) WithGlobalSoftReset(b bool) GRR   { return GRR(withBool(uint16(r), 15, b)) }
func (r GRR) WithQMUModuleSoftReset(b bool) GRR { return GRR(withBool(uint16(r), 14, b)) }

// ---- TXCR: transmit control ----

const TXCRAddr = 0x70

type TXCR uint16

func (r TXCR) WithChecksumGenICMP(b bool) TXCR       { return TXCR(withBool(uint16(r), 7, b)) }
func (r TXCR) WithChecksumGenTCP(b bool) TXCR        { return TXCR(withBool(uint16(r), 9, b)) }
func (r TXCR) WithChecksumGenIP(b bool) TXCR         { return TXCR(withBool(uint16(r), 10, b)) }
func (r TXCR) WithFlowControlEnable(b bool) TXCR     { return TXCR(withBool(uint16(r), 12, b)) }
func (r TXCR) WithPaddingEnable(b bool) TXCR         { return TXCR(withBool(uint16(r), 13, b)) }
func (r TXCR) WithCRCEnable(b bool) TXCR             { return TXCR(withBool(uint16(r), 14, b)) }
func (r TXCR) WithTransmitEnable(b bool) TXCR        { return TXCR(withBool(uint16(r), 15, b)) }

// ---- RXCR1: receive control 1 ----

const RXCR1Addr = 0x74

type RXCR1 uint16

func (r RXCR1) WithReceiveBroadcastEnable(b bool) RXCR1 { return RXCR1(withBool(uint16(r), 8, b)) }
func (r RXCR1) WithReceiveMulticastEnable(b bool) RXCR1 { return RXCR1(withBool(uint16(r), 9, b)) }
func (r RXCR1) WithReceiveUnicastEnable(b bool) RXCR1   { return RXCR1(withBool(uint16(r), 10, b)) }
func (r RXCR1) WithReceiveEnable(b bool) RXCR1          { return RXCR1(withBool(uint16(r), 15, b)) }

// ---- RXCR2: receive control 2 ----

const RXCR2Addr = 0x76

// SPIRxDataBurstLength selects how many bytes the chip auto-increments per
// SPI burst read of the RX buffer.
type SPIRxDataBurstLength uint16

const (
	Burst4Byte SPIRxDataBurstLength = iota
	Burst8Byte
	Burst16Byte
	Burst32Byte
	BurstSingleFrame
)

type RXCR2 uint16

func (r RXCR2) WithSPIReceiveDataBurstLength(v SPIRxDataBurstLength) RXCR2 {
	return RXCR2(withBits(uint16(r), 8, 3, uint16(v)))
}
func (r RXCR2) WithIP4IP6UDPFragmentFramePass(b bool) RXCR2 {
	return RXCR2(withBool(uint16(r), 11, b))
}
func (r RXCR2) WithReceiveIP4IP6UDPFrameChecksumEqualZero(b bool) RXCR2 {
	return RXCR2(withBool(uint16(r), 12, b))
}
func (r RXCR2) WithUDPLiteFrameEnable(b bool) RXCR2 { return RXCR2(withBool(uint16(r), 13, b)) }
func (r RXCR2) WithReceiveICMPFrameChecksumCheckEnable(b bool) RXCR2 {
	return RXCR2(withBool(uint16(r), 14, b))
}
func (r RXCR2) WithReceiveSourceAddressFiltering(b bool) RXCR2 {
	return RXCR2(withBool(uint16(r), 15, b))
}

// ---- TXMIR: transmit memory info ----

const TXMIRAddr = 0x78

type TXMIR uint16

func (r TXMIR) TXMAMemoryAvailable() uint16 { return bits(uint16(r), 3, 13) }

// ---- RXFHSR: receive frame header status ----

const RXFHSRAddr = 0x7C

// FrameStatus is the decoded RXFHSR status word describing the frame
// currently at the head of the receive queue.
type FrameStatus struct {
	FrameValid         bool
	ICMPChecksumStatus bool
	IPChecksumStatus   bool
	TCPChecksumStatus  bool
	UDPChecksumStatus  bool
	BroadcastFrame     bool
	MulticastFrame     bool
	UnicastFrame       bool
	MIIError           bool
	FrameTooLong       bool
	RuntFrame          bool
	CRCError           bool
}

// Invalid reports whether the chip flagged any error condition on this
// frame that means it must be discarded rather than delivered upstream.
func (s FrameStatus) Invalid() bool {
	return s.CRCError || s.RuntFrame || s.FrameTooLong || s.MIIError ||
		s.UDPChecksumStatus || s.TCPChecksumStatus || s.IPChecksumStatus || s.ICMPChecksumStatus
}

type RXFHSR uint16

func (r RXFHSR) Status() FrameStatus {
	v := uint16(r)
	return FrameStatus{
		FrameValid:         boolBit(v, 0),
		ICMPChecksumStatus: boolBit(v, 2),
		IPChecksumStatus:   boolBit(v, 3),
		TCPChecksumStatus:  boolBit(v, 4),
		UDPChecksumStatus:  boolBit(v, 5),
		BroadcastFrame:     boolBit(v, 8),
		MulticastFrame:     boolBit(v, 9),
		UnicastFrame:       boolBit(v, 10),
		MIIError:           boolBit(v, 11),
		FrameTooLong:       boolBit(v, 13),
		RuntFrame:          boolBit(v, 14),
		CRCError:           boolBit(v, 15),
	}
}

// ---- RXFHBCR: receive frame header byte count ----

const RXFHBCRAddr = 0x7E

type RXFHBCR uint16

func (r RXFHBCR) ReceiveByteCount() uint16 { return bits(uint16(r), 4, 12) }

// ---- TXQCR: transmit queue control ----

const TXQCRAddr = 0x80

type TXQCR uint16

func (r TXQCR) WithTXQMemoryAvailableMonitor(b bool) TXQCR {
	return TXQCR(withBool(uint16(r), 14, b))
}
func (r TXQCR) WithManualEnqueueTXQFrameEnable(b bool) TXQCR {
	return TXQCR(withBool(uint16(r), 15, b))
}
func (r TXQCR) ManualEnqueueTXQFrameEnable() bool { return boolBit(uint16(r), 15) }

// ---- RXQCR: receive queue control ----

const RXQCRAddr = 0x82

type RXQCR uint16

func (r RXQCR) WithRxDurationTimerThresholdEnable(b bool) RXQCR {
	return RXQCR(withBool(uint16(r), 7, b))
}
func (r RXQCR) WithRxIPHeaderTwoByteOffsetEnable(b bool) RXQCR {
	return RXQCR(withBool(uint16(r), 9, b))
}
func (r RXQCR) WithAutoDequeueRXQFrameEnable(b bool) RXQCR {
	return RXQCR(withBool(uint16(r), 4, b))
}
func (r RXQCR) WithStartDMAAccess(b bool) RXQCR { return RXQCR(withBool(uint16(r), 3, b)) }
func (r RXQCR) WithReleaseRXErrorFrame(b bool) RXQCR {
	return RXQCR(withBool(uint16(r), 0, b))
}

// ---- TXFDPR / RXFDPR: frame data pointers ----

const (
	TXFDPRAddr = 0x84
	RXFDPRAddr = 0x86
)

type TXFDPR uint16
type RXFDPR uint16

func (r TXFDPR) WithAutoIncrement(b bool) TXFDPR { return TXFDPR(withBool(uint16(r), 1, b)) }
func (r RXFDPR) WithAutoIncrement(b bool) RXFDPR { return RXFDPR(withBool(uint16(r), 1, b)) }
func (r RXFDPR) WithFramePointer(p uint16) RXFDPR { return RXFDPR(withBits(uint16(r), 5, 11, p)) }

// ---- RXDTTR / RXDBCTR: coalescing thresholds ----

const (
	RXDTTRAddr  = 0x8C
	RXDBCTRAddr = 0x8E
)

type RXDTTR uint16
type RXDBCTR uint16

func (r RXDTTR) WithThreshold(us uint16) RXDTTR { return RXDTTR(us) }

// ---- IER / ISR: interrupt enable / status ----

const (
	IERAddr = 0x90
	ISRAddr = 0x92
)

type IER uint16

func (r IER) WithLinkChangeEnable(b bool) IER           { return IER(withBool(uint16(r), 0, b)) }
func (r IER) WithTransmitEnable(b bool) IER             { return IER(withBool(uint16(r), 1, b)) }
func (r IER) WithReceiveEnable(b bool) IER              { return IER(withBool(uint16(r), 2, b)) }
func (r IER) WithReceiveOverrunEnable(b bool) IER       { return IER(withBool(uint16(r), 4, b)) }
func (r IER) WithTransmitSpaceAvailableEnable(b bool) IER {
	return IER(withBool(uint16(r), 9, b))
}
func (r IER) WithSPIBusErrorEnable(b bool) IER { return IER(withBool(uint16(r), 14, b)) }
func (r IER) ReceiveEnable() bool              { return boolBit(uint16(r), 2) }

// ISRStatus is the decoded ISR interrupt status word.
type ISRStatus struct {
	LinkChange             bool
	Transmit               bool
	Receive                bool
	ReceiveOverrun          bool
	TransmitProcessStopped  bool
	ReceiveProcessStopped   bool
	TransmitSpaceAvailable  bool
	SPIBusError             bool
}

type ISR uint16

func (r ISR) Status() ISRStatus {
	v := uint16(r)
	return ISRStatus{
		LinkChange:             boolBit(v, 0),
		Transmit:               boolBit(v, 1),
		Receive:                boolBit(v, 2),
		ReceiveOverrun:          boolBit(v, 4),
		TransmitProcessStopped:  boolBit(v, 6),
		ReceiveProcessStopped:   boolBit(v, 7),
		TransmitSpaceAvailable:  boolBit(v, 9),
		SPIBusError:             boolBit(v, 14),
	}
}

// ISRClearMask accumulates the bits to write back to ISR in order to
// acknowledge the interrupts that have been serviced this pass.
type ISRClearMask struct {
	v uint16
}

func (m ISRClearMask) WithLinkChange(b bool) ISRClearMask {
	m.v = withBool(m.v, 0, b)
	return m
}
func (m ISRClearMask) WithTransmit(b bool) ISRClearMask {
	m.v = withBool(m.v, 1, b)
	return m
}
func (m ISRClearMask) WithReceive(b bool) ISRClearMask {
	m.v = withBool(m.v, 2, b)
	return m
}
func (m ISRClearMask) WithTransmitSpaceAvailable(b bool) ISRClearMask {
	m.v = withBool(m.v, 9, b)
	return m
}
func (m ISRClearMask) WithSPIBusError(b bool) ISRClearMask {
	m.v = withBool(m.v, 14, b)
	return m
}

func (m ISRClearMask) ISR() ISR { return ISR(m.v) }

// ---- RXFCTR: receive frame count ----

const RXFCTRAddr = 0x9C

type RXFCTR uint16

func (r RXFCTR) RxFrameCount() uint8 { return uint8(r >> 8) }

// ---- TXNTFSR: next TX total frame size ----

const TXNTFSRAddr = 0x9E

type TXNTFSR uint16

func NewTXNTFSR(size uint16) TXNTFSR { return TXNTFSR(size) }

// ---- CIDER: chip ID ----

const CIDERAddr = 0xC0

type CIDER uint16

func (r CIDER) FamilyID() byte   { return byte(bits(uint16(r), 0, 8)) }
func (r CIDER) ChipID() byte     { return byte(bits(uint16(r), 8, 4)) }
func (r CIDER) RevisionID() byte { return byte(bits(uint16(r), 12, 3)) }

// ---- P1CR / P1SR: PHY port 1 control / status ----

const (
	P1CRAddr = 0xF6
	P1SRAddr = 0xF8
)

type P1CR uint16

func (r P1CR) WithLEDOff(b bool) P1CR { return P1CR(withBool(uint16(r), 0, b)) }

// LinkSpeed is the negotiated/forced PHY speed.
type LinkSpeed uint16

const (
	Speed10 LinkSpeed = iota
	Speed100
)

type P1SR uint16

func (r P1SR) LinkGood() bool     { return boolBit(uint16(r), 5) }
func (r P1SR) Speed() LinkSpeed   { return LinkSpeed(bits(uint16(r), 6, 1)) }
func (r P1SR) FullDuplex() bool   { return boolBit(uint16(r), 7) }
