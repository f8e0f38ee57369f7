package control

import (
	"gostepper/command"
	"gostepper/core"
	"gostepper/protocol"
)

// Controller runs the cooperative control cycle of the firmware. The board
// loop feeds it received bytes, calls Tick as often as it can and flushes
// Output to the serial link.
type Controller struct {
	table  *Table
	parser *command.Parser

	// Serial interface
	input  *protocol.FifoBuffer
	output *protocol.ScratchOutput

	// Statistics
	lines   uint32
	ignored uint32
}

// NewController creates a controller for motors 1..len(motors)
func NewController(motors ...Motor) (*Controller, error) {
	table, err := NewTable(motors...)
	if err != nil {
		return nil, err
	}

	return &Controller{
		table:  table,
		parser: command.NewParser(table.Len()),
		input:  protocol.NewFifoBuffer(protocol.InputMax + 2), // line, terminator, reserved slot
		output: protocol.NewScratchOutput(),
	}, nil
}

// Table returns the motor state table
func (c *Controller) Table() *Table {
	return c.table
}

// Feed queues received bytes. It is safe to call from a UART interrupt.
// Returns the number of bytes accepted; the rest are lost.
func (c *Controller) Feed(data []byte) int {
	state := core.DisableInterrupts()
	n := c.input.Write(data)
	core.RestoreInterrupts(state)
	return n
}

// FeedByte queues a single received byte. When the buffer has no room the
// byte is lost, so the line it belongs to is dropped through its terminator
// and false is returned.
func (c *Controller) FeedByte(b byte) bool {
	state := core.DisableInterrupts()
	n := c.input.Write([]byte{b})
	if n == 0 {
		c.input.DropLine()
		c.input.Write([]byte{b})
	}
	core.RestoreInterrupts(state)
	return n == 1
}

// Free returns how many bytes can be fed before the input buffer is full.
// Board loops stop draining the UART at zero and leave the rest in the
// hardware buffer until a Tick makes room.
func (c *Controller) Free() int {
	state := core.DisableInterrupts()
	n := c.input.Free()
	core.RestoreInterrupts(state)
	return n
}

// Tick runs one pass of the control cycle: step running motors, clear the
// ones that arrived, then handle at most one buffered line. It never blocks.
func (c *Controller) Tick() {
	c.table.Service()

	state := core.DisableInterrupts()
	line, ok := c.input.ReadLine()
	core.RestoreInterrupts(state)

	if ok && len(line) > 0 {
		c.ProcessLine(line)
	}
}

// ProcessLine parses and dispatches one command line, queueing its status
// lines for output
func (c *Controller) ProcessLine(line string) {
	c.lines++
	cmd := c.parser.ParseLine(line)
	if cmd.Op == command.OpUnknown {
		c.ignored++
		core.DebugPrintln("[CTL] ignored: " + line)
		return
	}

	core.DebugPrintln("[CTL] " + cmd.Op.String() + " motors=" + core.Itoa(int64(cmd.Selector.Count())))
	for _, status := range Dispatch(cmd, c.table) {
		c.output.WriteLine(status)
	}
}

// SendResponse queues a raw response line to be sent to the host
func (c *Controller) SendResponse(response string) {
	c.output.WriteLine(response)
}

// Output returns any pending output and clears the buffer
func (c *Controller) Output() []byte {
	result := c.output.Result()
	if len(result) == 0 {
		return nil
	}

	if dropped := c.output.Dropped(); dropped > 0 {
		core.DebugPrintln("[CTL] output overflow, dropped " + core.Itoa(int64(dropped)) + " bytes")
	}

	out := make([]byte, len(result))
	copy(out, result)
	c.output.Reset()
	return out
}

// Lines returns how many non-empty lines were processed
func (c *Controller) Lines() uint32 {
	return c.lines
}

// Ignored returns how many lines carried an unknown operation
func (c *Controller) Ignored() uint32 {
	return c.ignored
}

// Pending returns how many received bytes wait to be processed
func (c *Controller) Pending() int {
	state := core.DisableInterrupts()
	n := c.input.Available()
	core.RestoreInterrupts(state)
	return n
}

// Discarded returns how many input bytes were dropped as overlong or
// damaged lines
func (c *Controller) Discarded() int {
	return c.input.Discarded()
}
