// Package ksz8851 drives a Micrel/Microchip KSZ8851SNL SPI-attached Ethernet
// MAC/PHY. New constructs a Device (the handle given to an upstream network
// stack) and a Runner whose Run method must be started in its own goroutine
// to actually drive the chip.
package ksz8851
