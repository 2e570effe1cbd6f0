package registers

import "testing"

func TestTXCRRoundTrip(t *testing.T) {
	v := TXCR(0).
		WithChecksumGenICMP(true).
		WithPaddingEnable(true).
		WithCRCEnable(true).
		WithTransmitEnable(true)
	if !boolBit(uint16(v), 7) {
		t.Fatal("checksum_gen_icmp bit not set")
	}
	if !boolBit(uint16(v), 13) {
		t.Fatal("padding_enable bit not set")
	}
	if !boolBit(uint16(v), 14) {
		t.Fatal("crc_enable bit not set")
	}
	if !boolBit(uint16(v), 15) {
		t.Fatal("transmit_enable bit not set")
	}
	if boolBit(uint16(v), 9) {
		t.Fatal("checksum_gen_tcp bit should remain clear")
	}
}

func TestCIDERFields(t *testing.T) {
	// family=0x88, chip=0x7, revision=0b001
	v := CIDER(withBits(withBits(withBits(0, 0, 8, 0x88), 8, 4, 0x7), 12, 3, 0b001))
	if v.FamilyID() != 0x88 {
		t.Fatalf("FamilyID() = %#x, want 0x88", v.FamilyID())
	}
	if v.ChipID() != 0x7 {
		t.Fatalf("ChipID() = %#x, want 0x7", v.ChipID())
	}
	if v.RevisionID() != 0b001 {
		t.Fatalf("RevisionID() = %#b, want 0b001", v.RevisionID())
	}
}

func TestMACRegisterRoundTrip(t *testing.T) {
	b := [2]byte{0xDE, 0xAD}
	if got := NewMARL(b).Bytes(); got != b {
		t.Fatalf("MARL round trip = %x, want %x", got, b)
	}
}

func TestRXFHSRStatus(t *testing.T) {
	v := RXFHSR(1) // crc_error bit
	s := v.Status()
	if !s.CRCError {
		t.Fatal("expected CRCError set")
	}
	if !s.Invalid() {
		t.Fatal("expected frame marked invalid")
	}
	v2 := RXFHSR(1 << 15) // frame_valid bit only
	s2 := v2.Status()
	if !s2.FrameValid || s2.Invalid() {
		t.Fatal("expected a valid, non-errored frame")
	}
}

func TestISRClearMask(t *testing.T) {
	m := ISRClearMask{}.WithLinkChange(true).WithReceive(true)
	got := m.ISR()
	status := got.Status()
	if !status.LinkChange || !status.Receive {
		t.Fatal("expected LinkChange and Receive bits set in clear mask")
	}
	if status.Transmit {
		t.Fatal("Transmit bit should not be set")
	}
}
