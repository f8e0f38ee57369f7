//go:build tinygo

package core

import "runtime/interrupt"

// State is the saved interrupt state
type State = interrupt.State

// DisableInterrupts disables interrupts and returns the previous state.
// Used around the input FIFO so a UART interrupt can feed bytes while the
// control cycle consumes lines.
func DisableInterrupts() State {
	return interrupt.Disable()
}

// RestoreInterrupts restores the interrupt state
func RestoreInterrupts(state State) {
	interrupt.Restore(state)
}
