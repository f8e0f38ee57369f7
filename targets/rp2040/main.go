//go:build rp2040

// Firmware for a Raspberry Pi Pico controller board, commanded over USB CDC.
// Same protocol and motor table as the ESP32 board.
package main

import (
	"machine"
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

// ledBlink blinks the LED a specific number of times for diagnostics
func ledBlink(count int) {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for i := 0; i < count; i++ {
		led.High()
		time.Sleep(150 * time.Millisecond)
		led.Low()
		time.Sleep(150 * time.Millisecond)
	}
}

func main() {
	if err := InitUSB(); err != nil {
		return
	}

	UpdateSystemTime()
	core.TimerInit()

	cfg := config.Pico()
	gpioDriver := NewRPGPIODriver()
	core.SetGPIODriver(gpioDriver)

	var err error
	ctl, _, err = control.NewFromConfig(cfg, gpioDriver)
	if err != nil {
		// DIAGNOSTIC: continuous 3 blinks = motor setup failed
		for {
			ledBlink(3)
			time.Sleep(time.Second)
		}
	}

	// DIAGNOSTIC: 1 blink = motors initialized
	ledBlink(1)

	ctl.SendResponse(protocol.Banner())

	// Start USB reader goroutine
	go usbReaderLoop()

	// Main loop
	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					panics++
				}
			}()

			UpdateSystemTime()
			ctl.Tick()
			writeUSB()
		}()

		// Yield to the reader goroutine
		time.Sleep(10 * time.Microsecond)
	}
}

// usbReaderLoop runs in a goroutine to continuously read USB data. It
// pauses while the controller input is full so bytes wait in the USB buffer.
func usbReaderLoop() {
	for {
		for USBAvailable() > 0 && ctl.Free() > 0 {
			b, err := USBRead()
			if err != nil {
				break
			}
			if !ctl.FeedByte(b) {
				rxOverruns++
			}
		}
		// Yield to avoid a busy loop
		time.Sleep(100 * time.Microsecond)
	}
}

// writeUSB sends queued status lines to the host
func writeUSB() {
	out := ctl.Output()
	written := 0
	for written < len(out) {
		n, err := USBWriteBytes(out[written:])
		if err != nil {
			writeErrors++
			return
		}
		written += n
	}
}
