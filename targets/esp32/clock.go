//go:build esp32

package main

import (
	"time"

	"gostepper/core"
)

// TinyGo's ESP32 runtime keeps time from the CPU cycle counter; the core
// clock is derived from it in microseconds.
var bootTime time.Time

// InitClock starts the microsecond clock
func InitClock() {
	bootTime = time.Now()
	core.SetTime(0)
}

// GetHardwareTime returns microseconds since InitClock, wrapping at 2^32
func GetHardwareTime() uint32 {
	return uint32(time.Since(bootTime).Microseconds())
}

// UpdateSystemTime updates the core timer with hardware time
// Called from the main loop before the motors are serviced
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime())
}
