package ksz8851

import "fmt"

// BadChipID is returned from New (via the chip's init) when the attached chip doesn't identify
// itself as a KSZ8851SNL.
type BadChipID struct {
	ExpectedFamily, ActualFamily byte
	ExpectedChip, ActualChip     byte
}

func (e *BadChipID) Error() string {
	return fmt.Sprintf("ksz8851: bad chip id: family %#x chip %#x, want family %#x chip %#x",
		e.ActualFamily, e.ActualChip, e.ExpectedFamily, e.ExpectedChip)
}

// FailedSelfTest is returned from New (via the chip's init) when the chip's built-in RAM self
// test reports a failure.
type FailedSelfTest struct {
	RxBISTFailed, TxBISTFailed bool
}

func (e *FailedSelfTest) Error() string {
	return fmt.Sprintf("ksz8851: built-in self test failed: rx=%v tx=%v", e.RxBISTFailed, e.TxBISTFailed)
}

// TxPacketTooBig is returned from readyTX when a frame exceeds the chip's
// maximum transmit size; Runner.Run returns it wrapped as a fatal error.
type TxPacketTooBig struct {
	Size, Max int
}

func (e *TxPacketTooBig) Error() string {
	return fmt.Sprintf("ksz8851: tx packet too big: %d bytes, max %d", e.Size, e.Max)
}

// RxFrameInvalid is returned from rx when the chip flagged the frame at the
// head of the queue as errored (CRC, runt, oversize, MII, or checksum
// error). The frame has already been released on-chip.
type RxFrameInvalid struct{}

func (e *RxFrameInvalid) Error() string { return "ksz8851: rx frame invalid, discarded" }

// RxNoFrameAvailable is returned from rx when the frame counter indicated a
// frame but the chip's status word disagreed; the caller should treat the
// queue as drained.
type RxNoFrameAvailable struct{}

func (e *RxNoFrameAvailable) Error() string { return "ksz8851: rx frame count stale, no frame available" }

// SPIError wraps any error returned by the underlying SPI transport.
type SPIError struct {
	Err error
}

func (e *SPIError) Error() string { return fmt.Sprintf("ksz8851: spi error: %v", e.Err) }
func (e *SPIError) Unwrap() error { return e.Err }
