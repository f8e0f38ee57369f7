// Package monitor watches motor positions over the controller link and
// renders them as a live terminal chart.
package monitor

import (
	"context"
	"fmt"
	"time"

	"gostepper/command"
)

// Source answers GET queries, typically a *client.Client
type Source interface {
	Query(ctx context.Context, sel command.Selector, field command.Field) ([]command.Status, error)
}

// State is one poll of the selected motors
type State struct {
	Time      time.Time
	Positions map[command.MotorID]int64
	Running   map[command.MotorID]bool
}

// Poller queries positions and run state at a fixed rate
type Poller struct {
	src    Source
	sel    command.Selector
	hz     int
	states chan State
	logs   chan string
}

// NewPoller creates a poller for the selected motors
func NewPoller(src Source, sel command.Selector, hz int) *Poller {
	if hz < 1 {
		hz = 1
	}
	return &Poller{
		src:    src,
		sel:    sel,
		hz:     hz,
		states: make(chan State, 1),
		logs:   make(chan string, 16),
	}
}

// Hz returns the poll rate
func (p *Poller) Hz() int {
	return p.hz
}

// Selector returns the watched motors
func (p *Poller) Selector() command.Selector {
	return p.sel
}

// States delivers poll results; a slow reader only sees the latest one
func (p *Poller) States() <-chan State {
	return p.states
}

// Logs delivers poll errors as text
func (p *Poller) Logs() <-chan string {
	return p.logs
}

// Poll queries the motors once
func (p *Poller) Poll(ctx context.Context) (State, error) {
	st := State{
		Time:      time.Now(),
		Positions: make(map[command.MotorID]int64),
		Running:   make(map[command.MotorID]bool),
	}

	positions, err := p.src.Query(ctx, p.sel, command.FieldPos)
	if err != nil {
		return st, fmt.Errorf("query positions: %w", err)
	}
	for _, s := range positions {
		v, err := s.Int()
		if err != nil {
			return st, fmt.Errorf("motor %d position %q: %w", s.Motor, s.Value, err)
		}
		st.Positions[s.Motor] = v
	}

	states, err := p.src.Query(ctx, p.sel, command.FieldState)
	if err != nil {
		return st, fmt.Errorf("query run state: %w", err)
	}
	for _, s := range states {
		v, err := s.Bool()
		if err != nil {
			return st, fmt.Errorf("motor %d state %q: %w", s.Motor, s.Value, err)
		}
		st.Running[s.Motor] = v
	}

	return st, nil
}

// Start polls until ctx is done
func (p *Poller) Start(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(p.hz))
	defer ticker.Stop()

	for {
		st, err := p.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.log(err.Error())
		} else {
			p.publish(st)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Poller) publish(st State) {
	select {
	case p.states <- st:
	default:
		// Replace the unread state
		select {
		case <-p.states:
		default:
		}
		select {
		case p.states <- st:
		default:
		}
	}
}

func (p *Poller) log(msg string) {
	select {
	case p.logs <- msg:
	default:
	}
}
