package ksz8851

// MTU is the maximum Ethernet frame size (header + payload, excluding
// preamble and FCS) this driver will pass upstream or accept for
// transmission.
const MTU = 1514

// maxTxSize is the largest frame the chip will accept in one TX call.
const maxTxSize = 2000

const chipIDFamily = 0x88
const chipIDChip = 0x7
