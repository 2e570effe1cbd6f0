package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/tve/ksz8851snl"
	"github.com/tve/ksz8851snl/ksz8851"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/host"
)

func run(intrPinName, rstPinName string, mac [6]byte) error {
	if _, err := host.Init(); err != nil {
		return err
	}

	intrGpio := gpio.ByName(intrPinName)
	if intrGpio == nil {
		return fmt.Errorf("cannot open pin %s", intrPinName)
	}
	rstGpio := gpio.ByName(rstPinName)
	if rstGpio == nil {
		return fmt.Errorf("cannot open pin %s", rstPinName)
	}

	spiPort, err := spi.New(-1, 0)
	if err != nil {
		return err
	}
	spiConn, err := spiPort.Connect(1*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return err
	}

	log.Printf("Initializing ksz8851...")
	t0 := time.Now()
	dev, runner, err := ksz8851.New(
		devices.NewPeriphSPI(spiConn),
		devices.NewPeriphPin(intrGpio),
		devices.NewPeriphPin(rstGpio),
		mac,
		nil,
	)
	if err != nil {
		return err
	}
	runner.SetLogger(log.Default())
	log.Printf("Ready (%.1fms)", time.Since(t0).Seconds()*1000)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	go func() {
		if err := runner.Run(ctx); err != nil {
			log.Printf("runner stopped: %v", err)
		}
	}()

	buf := make([]byte, ksz8851.MTU)
	last := dev.LinkState()
	log.Printf("Link state: %s", last)
	for ctx.Err() == nil {
		n, ok := dev.RXBuf(ctx, buf)
		if !ok {
			break
		}
		if s := dev.LinkState(); s != last {
			log.Printf("Link state: %s", s)
			last = s
		}
		log.Printf("Received %d byte frame", n)
	}
	return nil
}

func main() {
	intrPin := flag.String("intr", "GPIO7", "ksz8851 interrupt pin name")
	rstPin := flag.String("rst", "GPIO10", "ksz8851 reset pin name")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s:\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	flag.Parse()

	mac := [6]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	if err := run(*intrPin, *rstPin, mac); err != nil {
		fmt.Fprintf(os.Stderr, "Exiting due to error: %s\n", err)
		os.Exit(2)
	}
}
