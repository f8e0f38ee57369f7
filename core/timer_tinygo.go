//go:build tinygo

package core

import "sync/atomic"

var microsValue uint32

// getSystemTicks returns the current system time in microseconds
func getSystemTicks() uint32 {
	return atomic.LoadUint32(&microsValue)
}

// setSystemTicks stores the system time; written from the main loop,
// read from anywhere
func setSystemTicks(ticks uint32) {
	atomic.StoreUint32(&microsValue, ticks)
}
