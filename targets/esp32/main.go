//go:build esp32

// Firmware for the ESP32 controller board: up to five 28BYJ-48 steppers on
// ULN2003 drivers, commanded by text lines over UART0.
package main

import (
	"time"

	"gostepper/config"
	"gostepper/control"
	"gostepper/core"
	"gostepper/protocol"
)

var (
	ctl *control.Controller

	// Debug counters
	rxOverruns  uint32
	writeErrors uint32
	panics      uint32
)

func main() {
	cfg := config.Default()

	if err := InitSerial(cfg.Baud); err != nil {
		return
	}
	InitDebug()

	InitClock()
	core.TimerInit()

	gpioDriver := NewESPGPIODriver()
	core.SetGPIODriver(gpioDriver)

	var err error
	ctl, _, err = control.NewFromConfig(cfg, gpioDriver)
	if err != nil {
		// Nothing can move; report and idle
		for {
			SerialWriteBytes([]byte("# init failed: " + err.Error() + "\n"))
			time.Sleep(2 * time.Second)
		}
	}

	ctl.SendResponse(protocol.Banner())
	writeOutput()

	// Main loop
	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					panics++
					core.DebugPrintln("[MAIN] recovered panic")
					core.DumpEventRing()
				}
			}()

			UpdateSystemTime()
			readInput()
			ctl.Tick()
			writeOutput()
		}()
	}
}

// readInput moves buffered UART bytes into the controller. Bytes that do
// not fit stay in the UART buffer until the next pass.
func readInput() {
	for SerialAvailable() > 0 && ctl.Free() > 0 {
		b, err := SerialRead()
		if err != nil {
			return
		}
		if !ctl.FeedByte(b) {
			rxOverruns++
			return
		}
	}
}

// writeOutput sends queued status lines to the host
func writeOutput() {
	out := ctl.Output()
	if len(out) == 0 {
		return
	}
	if _, err := SerialWriteBytes(out); err != nil {
		writeErrors++
	}
}
