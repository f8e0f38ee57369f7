//go:build esp32

package main

import (
	"gostepper/core"
)

// debugOutput enables debug lines on the command link. Set it with
// -ldflags "-X main.debugOutput=on". The host client hands these lines to
// its line handler, so they do not disturb status parsing.
var debugOutput = "off"

// InitDebug routes core debug output to the serial link
func InitDebug() {
	core.SetDebugWriter(func(s string) {
		SerialWriteBytes([]byte("# " + s + "\n"))
	})
	core.SetDebugEnabled(debugOutput == "on")
}
