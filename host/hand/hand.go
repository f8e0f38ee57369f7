// Package hand drives the four finger motors of the rock-paper-scissors
// robot hand. Finger n is motor n; a goal of 0 is an open finger.
package hand

import (
	"context"
	"fmt"
	"time"

	"gostepper/command"
)

// Finger positions in steps
const (
	Open        = 0
	Closed      = 2000
	Overtravel  = 5000 // past the end stop, used to find it
	FingerCount = 4
)

// IdlePoll is how often Recalibrate checks whether the fingers stopped
const IdlePoll = 50 * time.Millisecond

// Link is the controller connection the hand runs on
type Link interface {
	Exec(ctx context.Context, cmd command.Command) ([]command.Status, error)
	WaitIdle(ctx context.Context, sel command.Selector, poll time.Duration) error
}

// Gesture is a named hand pose
type Gesture string

// Known gestures
const (
	Rock        Gesture = "rock"
	Paper       Gesture = "paper"
	Scissors    Gesture = "scissors"
	Recalibrate Gesture = "recalibrate"
)

// Gestures lists every gesture Perform accepts
var Gestures = []Gesture{Rock, Paper, Scissors, Recalibrate}

// Fingers selects all four fingers
func Fingers() command.Selector {
	return command.SelectAll(FingerCount)
}

// Finger selects one finger, 1..4
func Finger(n int) (command.Selector, error) {
	if n < 1 || n > FingerCount {
		return 0, fmt.Errorf("finger %d out of range 1..%d", n, FingerCount)
	}
	return command.SelectMotor(command.MotorID(n)), nil
}

// Hand performs gestures on a link
type Hand struct {
	link Link
}

// New creates a hand on the given link
func New(link Link) *Hand {
	return &Hand{link: link}
}

// Perform runs the named gesture
func (h *Hand) Perform(ctx context.Context, g Gesture) error {
	switch g {
	case Rock:
		return h.Rock(ctx)
	case Paper:
		return h.Paper(ctx)
	case Scissors:
		return h.Scissors(ctx)
	case Recalibrate:
		return h.Recalibrate(ctx)
	default:
		return fmt.Errorf("unknown gesture %q", g)
	}
}

// Rock closes every finger
func (h *Hand) Rock(ctx context.Context) error {
	return h.pose(ctx, Fingers(), Closed)
}

// Paper opens every finger
func (h *Hand) Paper(ctx context.Context) error {
	return h.pose(ctx, Fingers(), Open)
}

// Scissors closes fingers 3 and 4 and leaves 1 and 2 where they are
func (h *Hand) Scissors(ctx context.Context) error {
	return h.pose(ctx, command.SelectMotor(3)|command.SelectMotor(4), Closed)
}

// Recalibrate drives every finger into its end stop, waits for the motors
// to stop and makes that position 0
func (h *Hand) Recalibrate(ctx context.Context) error {
	if err := h.pose(ctx, Fingers(), Overtravel); err != nil {
		return err
	}
	if err := h.link.WaitIdle(ctx, Fingers(), IdlePoll); err != nil {
		return fmt.Errorf("recalibrate: %w", err)
	}
	if _, err := h.link.Exec(ctx, command.Zero()); err != nil {
		return fmt.Errorf("recalibrate: %w", err)
	}
	return nil
}

// Reading is the state of one finger
type Reading struct {
	Finger int
	Pos    int64
	Speed  float64
	Goal   int64
}

// Read returns position, speed and goal of one finger
func (h *Hand) Read(ctx context.Context, finger int) (Reading, error) {
	sel, err := Finger(finger)
	if err != nil {
		return Reading{}, err
	}

	r := Reading{Finger: finger}
	for _, field := range []command.Field{command.FieldPos, command.FieldSpeed, command.FieldGoal} {
		statuses, err := h.link.Exec(ctx, command.Query(sel, field))
		if err != nil {
			return Reading{}, fmt.Errorf("finger %d %s: %w", finger, field, err)
		}
		if len(statuses) != 1 {
			return Reading{}, fmt.Errorf("finger %d %s: expected 1 status, got %d", finger, field, len(statuses))
		}

		st := statuses[0]
		switch field {
		case command.FieldPos:
			r.Pos, err = st.Int()
		case command.FieldSpeed:
			r.Speed, err = st.Float()
		case command.FieldGoal:
			r.Goal, err = st.Int()
		}
		if err != nil {
			return Reading{}, fmt.Errorf("finger %d %s: %w", finger, field, err)
		}
	}
	return r, nil
}

// pose sets the goal of the selected fingers and starts them
func (h *Hand) pose(ctx context.Context, sel command.Selector, goal int64) error {
	if _, err := h.link.Exec(ctx, command.SetGoal(sel, goal)); err != nil {
		return err
	}
	_, err := h.link.Exec(ctx, command.SetRunState(sel, command.RunMove))
	return err
}
