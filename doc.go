// github.com/tve/ksz8851snl contains a driver for the Micrel/Microchip KSZ8851SNL
// SPI-attached Ethernet MAC/PHY, plus the hardware abstraction this package
// (devices) exposes so the driver in ksz8851/ never has to import a specific
// SPI/gpio library directly. It uses periph.io and kidoman/embd for the low
// level access to the hardware pins; a simple command to exercise the device
// can be found in the cmd directory tree.
package devices
