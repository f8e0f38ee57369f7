// Package protocol implements the line-oriented serial link: byte buffering,
// line framing and the output queue for status lines.
package protocol

// Version represents the gostepper firmware version
const Version = "0.3.0"

// Banner is the line the firmware prints once it accepts commands
func Banner() string {
	return "gostepper " + Version + " ready"
}

// Link constants
const (
	DefaultBaud = 250000 // Baud rate of the hand controller host tools
	InputMax    = 256    // Longest accepted line, excluding its terminator
	MessageMax  = 512    // Output buffer capacity per control cycle

	// Line terminators; either one ends a line, empty lines are skipped
	LineFeed       = '\n'
	CarriageReturn = '\r'
)
