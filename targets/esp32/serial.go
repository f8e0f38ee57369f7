//go:build esp32

package main

import (
	"machine"
)

// The command link is UART0, wired to the board's USB-UART bridge

// InitSerial configures UART0 at the given baud rate
func InitSerial(baud int) error {
	return machine.Serial.Configure(machine.UARTConfig{BaudRate: uint32(baud)})
}

// SerialAvailable returns the number of bytes waiting in the UART buffer
func SerialAvailable() int {
	return machine.Serial.Buffered()
}

// SerialRead reads a single byte from the UART buffer
func SerialRead() (byte, error) {
	return machine.Serial.ReadByte()
}

// SerialWriteBytes writes multiple bytes to the UART
func SerialWriteBytes(data []byte) (int, error) {
	return machine.Serial.Write(data)
}
