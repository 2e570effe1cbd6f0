// Package rtsched optionally elevates the calling goroutine's OS thread to
// realtime scheduling, used to bound interrupt-to-SPI-transaction latency in
// the ksz8851 driver's event loop.
package rtsched

import (
	"runtime"
	"syscall"
	"unsafe"
)

// Pin locks the calling goroutine to its own kernel thread and elevates that
// thread's priority to round-robin realtime at priority level 10 (lower
// middle of the range). Intended to be called once, at the top of the
// goroutine that will run the event loop for the rest of its life.
func Pin() error {
	runtime.LockOSThread()
	tid := syscall.Gettid()
	res, _, err := syscall.RawSyscall(syscall.SYS_SCHED_SETSCHEDULER, uintptr(tid),
		uintptr(schedRR), uintptr(unsafe.Pointer(&schedParam{10})))
	if res == 0 {
		return nil
	}
	return err
}

const schedRR = 2 // round-robin scheduling policy

type schedParam struct {
	Priority int
}
