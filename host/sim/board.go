// Package sim runs the controller firmware on the host with virtual motors
// and the wall clock, for bench testing without hardware.
package sim

import (
	"context"
	"fmt"
	"io"
	"time"

	"gostepper/config"
	"gostepper/control"
	"gostepper/core"
	"gostepper/protocol"
	"gostepper/stepgen"
)

// DefaultIdle is the pause between control cycles
const DefaultIdle = 100 * time.Microsecond

// Board is a simulated controller board
type Board struct {
	ctl      *control.Controller
	steppers []*stepgen.Stepper
	idle     time.Duration
}

// NewBoard builds a board from cfg. Every motor is virtual.
func NewBoard(cfg *config.Config) (*Board, error) {
	ctl, steppers, err := control.NewFromConfig(cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build controller: %w", err)
	}

	return &Board{
		ctl:      ctl,
		steppers: steppers,
		idle:     DefaultIdle,
	}, nil
}

// Controller returns the board's controller
func (b *Board) Controller() *control.Controller {
	return b.ctl
}

// Steppers returns the board's motors, motor 1 first
func (b *Board) Steppers() []*stepgen.Stepper {
	return b.steppers
}

// SetIdle sets the pause between control cycles
func (b *Board) SetIdle(idle time.Duration) {
	b.idle = idle
}

// Run prints the ready banner and runs the control loop, reading commands
// from in and writing status lines to out. It returns nil once in is
// exhausted, every line is handled and no motor runs, or ctx.Err() when ctx
// ends first.
func (b *Board) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	rx := make(chan []byte, 16)
	go readInput(ctx, in, rx)

	start := time.Now()
	core.SetTime(0)
	core.TimerInit()

	b.ctl.SendResponse(protocol.Banner())

	var pending []byte
	eof := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if len(pending) == 0 && !eof {
			select {
			case data, ok := <-rx:
				if !ok {
					eof = true
				} else {
					pending = data
				}
			default:
			}
		}
		if len(pending) > 0 {
			n := b.ctl.Feed(pending)
			pending = pending[n:]
		}

		core.SetTime(uint32(time.Since(start).Microseconds()))
		b.ctl.Tick()

		if output := b.ctl.Output(); output != nil {
			if _, err := out.Write(output); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}

		if eof && len(pending) == 0 && b.ctl.Pending() == 0 && !b.ctl.Table().AnyRunning() {
			return nil
		}

		if b.idle > 0 {
			time.Sleep(b.idle)
		}
	}
}

// readInput forwards chunks of in until it fails or ctx ends, then closes rx
func readInput(ctx context.Context, in io.Reader, rx chan<- []byte) {
	defer close(rx)

	buffer := make([]byte, 256)
	for {
		n, err := in.Read(buffer)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buffer[:n])
			select {
			case rx <- data:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			return
		}
	}
}
